package rewardsservice

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/tiers"
)

func TestSyntheticStrategy_Fallback(t *testing.T) {
	catalog, err := tiers.Load("")
	require.NoError(t, err)
	strategy := NewSyntheticStrategy(catalog)
	before := DegradedCount("unauthenticated")

	view := strategy.Fallback(context.Background(), domain.ErrAuthentication)

	assert.True(t, view.IsSynthetic)
	assert.Equal(t, SyntheticPoints, view.Points)
	assert.Equal(t, "Bronze", view.Tier.Name)
	require.NotNil(t, view.NextTier)
	assert.Equal(t, int64(750), view.PointsToNext)
	assert.NotEmpty(t, view.Transactions)
	assert.NotNil(t, view.Redemptions)
	for _, item := range view.Redeemable {
		assert.LessOrEqual(t, item.PointsCost, SyntheticPoints)
	}

	var sum int64
	for _, tx := range view.Transactions {
		sum += tx.PointsDelta
	}
	assert.Equal(t, SyntheticPoints, sum)
	assert.Equal(t, before+1, DegradedCount("unauthenticated"))
}

func TestSyntheticStrategy_FallbackIsStable(t *testing.T) {
	catalog, err := tiers.Load("")
	require.NoError(t, err)
	strategy := NewSyntheticStrategy(catalog)

	first := strategy.Fallback(context.Background(), domain.ErrAuthentication)
	time.Sleep(10 * time.Millisecond)
	second := strategy.Fallback(context.Background(), domain.ErrAuthentication)

	assert.Equal(t, first, second)
	require.Len(t, first.Transactions, 2)
	assert.True(t, first.Transactions[0].CreatedAt.After(first.Transactions[1].CreatedAt))

	first.Transactions[0].PointsDelta = 0
	third := strategy.Fallback(context.Background(), domain.ErrAuthentication)
	assert.Equal(t, int64(150), third.Transactions[0].PointsDelta)
}

func TestReasonLabel(t *testing.T) {
	tests := []struct {
		reason error
		label  string
	}{
		{domain.ErrAuthentication, "unauthenticated"},
		{fmt.Errorf("load: %w", context.DeadlineExceeded), "timeout"},
		{context.Canceled, "canceled"},
		{domain.StoreError("get account", errors.New("refused")), "store"},
		{errors.New("other"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.label, ReasonLabel(tt.reason))
		})
	}
}
