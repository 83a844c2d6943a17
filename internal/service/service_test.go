package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/rewardsledger/internal/config"
	"github.com/GlebRadaev/rewardsledger/internal/memstore"
	"github.com/GlebRadaev/rewardsledger/internal/repo"
	"github.com/GlebRadaev/rewardsledger/internal/tiers"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "secret",
		TokenTTL:      time.Hour,
		ViewTimeout:   time.Second,
		WriteTimeout:  time.Second,
		PointsPerUnit: decimal.NewFromInt(1),
	}
}

func TestNew(t *testing.T) {
	catalog, err := tiers.Load("")
	require.NoError(t, err)

	services := New(repo.NewMemory(memstore.New()), catalog, testConfig())

	assert.NotNil(t, services.AuthService)
	assert.NotNil(t, services.RewardsService)
	assert.NotNil(t, services.PurchaseService)
	assert.NotNil(t, services.Health)
	assert.NotNil(t, services.JWTService)
}

func TestRegisteredUserGetsAccount(t *testing.T) {
	catalog, err := tiers.Load("")
	require.NoError(t, err)
	services := New(repo.NewMemory(memstore.New()), catalog, testConfig())
	ctx := context.Background()

	user, err := services.AuthService.Register(ctx, "alice", "password")
	require.NoError(t, err)

	view := services.RewardsService.GetRewardsView(ctx, user.ID)
	assert.False(t, view.IsSynthetic)
	assert.Equal(t, int64(0), view.Points)
	assert.Equal(t, catalog.Lowest().ID, view.Tier.ID)

	token, err := services.AuthService.GenerateToken(user.ID)
	require.NoError(t, err)
	claims, err := services.JWTService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}
