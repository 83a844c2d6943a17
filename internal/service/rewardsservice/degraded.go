package rewardsservice

import (
	"context"
	"errors"
	"expvar"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/tiers"
)

// SyntheticPoints is the balance shown on the placeholder view.
const SyntheticPoints int64 = 250

var degradedViews = expvar.NewMap("rewards_degraded_views")

// SyntheticStrategy serves a fixed sample view marked IsSynthetic. Every use
// is logged and counted by reason.
type SyntheticStrategy struct {
	catalog *tiers.Catalog
}

func NewSyntheticStrategy(catalog *tiers.Catalog) *SyntheticStrategy {
	return &SyntheticStrategy{catalog: catalog}
}

func (s *SyntheticStrategy) Fallback(_ context.Context, reason error) *domain.RewardsView {
	label := ReasonLabel(reason)
	degradedViews.Add(label, 1)
	if label == "unauthenticated" {
		zap.L().Debug("serving synthetic rewards view", zap.String("reason", label))
	} else {
		zap.L().Warn("serving synthetic rewards view", zap.String("reason", label), zap.Error(reason))
	}

	view := tierView(s.catalog, SyntheticPoints)
	view.IsSynthetic = true
	view.Transactions = sampleTransactions()
	view.Redeemable = Redeemable(sampleRewards, SyntheticPoints)
	view.Redemptions = []domain.Redemption{}
	return view
}

func ReasonLabel(reason error) string {
	switch {
	case errors.Is(reason, domain.ErrAuthentication):
		return "unauthenticated"
	case errors.Is(reason, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(reason, context.Canceled):
		return "canceled"
	case errors.Is(reason, domain.ErrBackingStore):
		return "store"
	default:
		return "error"
	}
}

// DegradedCount reports how many synthetic views were served for label.
func DegradedCount(label string) int64 {
	v, ok := degradedViews.Get(label).(*expvar.Int)
	if !ok {
		return 0
	}
	return v.Value()
}

var sampleRewards = []domain.RewardItem{
	{ID: 1, Name: "Free Protein Sample", Description: "A single-serve sample of any protein blend", PointsCost: 100, IsActive: true},
	{ID: 2, Name: "10% Off Next Order", Description: "One-time discount on your next order", PointsCost: 200, IsActive: true},
	{ID: 3, Name: "Free Shipping", Description: "Free standard shipping on one order", PointsCost: 300, IsActive: true},
}

// sampleTransactions has fixed timestamps so repeated synthetic views are
// identical.
func sampleTransactions() []domain.Transaction {
	return []domain.Transaction{
		{ID: 2, PointsDelta: 150, Description: "Purchase reward", Source: domain.SourcePurchase, CreatedAt: time.Date(2024, time.January, 3, 12, 0, 0, 0, time.UTC)},
		{ID: 1, PointsDelta: 100, Description: "Welcome bonus", Source: domain.SourceSystem, CreatedAt: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)},
	}
}
