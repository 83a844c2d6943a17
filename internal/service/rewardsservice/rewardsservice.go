package rewardsservice

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/tiers"
)

const (
	DefaultViewTimeout = 8 * time.Second

	recentTransactions = 10
	recentRedemptions  = 10
)

type Ledger interface {
	EnsureAccount(ctx context.Context, accountID int) (*domain.Account, error)
	History(ctx context.Context, accountID int, cursor string, limit int) (*domain.TransactionPage, error)
	Reconcile(ctx context.Context, accountID int) (*domain.ReconcileReport, error)
}

type Redeemer interface {
	Redeem(ctx context.Context, accountID, rewardItemID int, idempotencyKey string) (*domain.Redemption, error)
	ListRedemptions(ctx context.Context, accountID, limit int) ([]domain.Redemption, error)
}

type RewardRepo interface {
	ListActiveRewards(ctx context.Context) ([]domain.RewardItem, error)
}

// DegradedReadStrategy produces the view served when the real one can't be
// built. reason is never nil.
type DegradedReadStrategy interface {
	Fallback(ctx context.Context, reason error) *domain.RewardsView
}

type Service struct {
	ledger   Ledger
	redeemer Redeemer
	rewards  RewardRepo
	catalog  *tiers.Catalog
	degraded DegradedReadStrategy
	timeout  time.Duration
}

func New(ledger Ledger, redeemer Redeemer, rewards RewardRepo, catalog *tiers.Catalog, degraded DegradedReadStrategy, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultViewTimeout
	}
	return &Service{
		ledger:   ledger,
		redeemer: redeemer,
		rewards:  rewards,
		catalog:  catalog,
		degraded: degraded,
		timeout:  timeout,
	}
}

// GetRewardsView never fails: anything that prevents building the real view
// sends the request through the degraded strategy.
func (s *Service) GetRewardsView(ctx context.Context, accountID int) *domain.RewardsView {
	view, err := s.load(ctx, accountID)
	if err != nil {
		return s.degraded.Fallback(ctx, err)
	}
	return view
}

func (s *Service) AnonymousView(ctx context.Context) *domain.RewardsView {
	return s.degraded.Fallback(ctx, domain.ErrAuthentication)
}

func (s *Service) load(ctx context.Context, accountID int) (*domain.RewardsView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.ledger.EnsureAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var (
		page        *domain.TransactionPage
		items       []domain.RewardItem
		redemptions []domain.Redemption
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.ledger.History(gctx, accountID, "", recentTransactions)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.rewards.ListActiveRewards(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		redemptions, err = s.redeemer.ListRedemptions(gctx, accountID, recentRedemptions)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	view := tierView(s.catalog, account.PointsBalance)
	view.AccountID = accountID
	view.Transactions = page.Transactions
	view.Redeemable = Redeemable(items, account.PointsBalance)
	view.Redemptions = redemptions
	if view.Redemptions == nil {
		view.Redemptions = []domain.Redemption{}
	}
	return view, nil
}

func tierView(catalog *tiers.Catalog, points int64) *domain.RewardsView {
	tier := catalog.TierForPoints(points)
	next, _ := catalog.NextTier(tier.ID)
	return &domain.RewardsView{
		Points:       points,
		Tier:         tier,
		Level:        catalog.Level(tier.ID),
		NextTier:     next,
		PointsToNext: catalog.PointsToNext(points, next),
	}
}

// Redeemable keeps active items the balance can pay for, cheapest first.
func Redeemable(items []domain.RewardItem, balance int64) []domain.RewardItem {
	out := make([]domain.RewardItem, 0, len(items))
	for _, item := range items {
		if item.IsActive && item.PointsCost <= balance {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PointsCost == out[j].PointsCost {
			return out[i].ID < out[j].ID
		}
		return out[i].PointsCost < out[j].PointsCost
	})
	return out
}

func (s *Service) Claim(ctx context.Context, accountID, rewardItemID int, idempotencyKey string) (*domain.Redemption, error) {
	return s.redeemer.Redeem(ctx, accountID, rewardItemID, idempotencyKey)
}

func (s *Service) History(ctx context.Context, accountID int, cursor string, limit int) (*domain.TransactionPage, error) {
	return s.ledger.History(ctx, accountID, cursor, limit)
}

func (s *Service) Reconcile(ctx context.Context, accountID int) (*domain.ReconcileReport, error) {
	return s.ledger.Reconcile(ctx, accountID)
}
