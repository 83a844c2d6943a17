package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
)

func TestNewRewardsViewDTO(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	view := &domain.RewardsView{
		Points:       250,
		Tier:         domain.Tier{ID: "bronze", Name: "Bronze", Benefits: []string{"Birthday reward"}},
		Level:        1,
		NextTier:     &domain.Tier{ID: "silver", Name: "Silver", MinPoints: 1000},
		PointsToNext: 750,
		Transactions: []domain.Transaction{{ID: 1, PointsDelta: 250, Description: "Welcome bonus", Source: domain.SourceSystem, CreatedAt: created}},
		Redeemable:   []domain.RewardItem{{ID: 1, Name: "Free Protein Sample", PointsCost: 100, IsActive: true}},
	}

	raw, err := json.Marshal(NewRewardsViewDTO(view))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"points": 250,
		"tier": "Bronze",
		"level": 1,
		"nextLevel": "Silver",
		"pointsToNextLevel": 750,
		"transactions": [{"id": 1, "pointsDelta": 250, "description": "Welcome bonus", "source": "system", "createdAt": "2024-05-01T12:00:00Z"}],
		"redeemableRewards": [{"id": 1, "name": "Free Protein Sample", "description": "", "pointsCost": 100}],
		"redemptionHistory": [],
		"tierBenefits": ["Birthday reward"],
		"isSynthetic": false
	}`, string(raw))
}

func TestNewRewardsViewDTOTopTier(t *testing.T) {
	view := &domain.RewardsView{Points: 5000, Tier: domain.Tier{ID: "platinum", Name: "Platinum"}, Level: 4}

	raw, err := json.Marshal(NewRewardsViewDTO(view))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["nextLevel"])
	assert.Equal(t, []any{}, decoded["tierBenefits"])
	assert.Equal(t, []any{}, decoded["transactions"])
}
