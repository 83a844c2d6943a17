package tiers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
)

func ptr(v int64) *int64 { return &v }

func testTiers() []domain.Tier {
	return []domain.Tier{
		{ID: "silver", Name: "Silver", MinPoints: 1000, MaxPoints: ptr(1999)},
		{ID: "bronze", Name: "Bronze", MinPoints: 0, MaxPoints: ptr(999)},
		{ID: "gold", Name: "Gold", MinPoints: 2000},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		tiers     []domain.Tier
		expectErr bool
	}{
		{name: "Valid unsorted catalog", tiers: testTiers()},
		{name: "Single unbounded tier", tiers: []domain.Tier{{ID: "all", MinPoints: 0}}},
		{name: "Empty catalog", tiers: nil, expectErr: true},
		{
			name:      "Does not start at zero",
			tiers:     []domain.Tier{{ID: "a", MinPoints: 1}},
			expectErr: true,
		},
		{
			name: "Gap between tiers",
			tiers: []domain.Tier{
				{ID: "a", MinPoints: 0, MaxPoints: ptr(99)},
				{ID: "b", MinPoints: 101},
			},
			expectErr: true,
		},
		{
			name: "Overlapping tiers",
			tiers: []domain.Tier{
				{ID: "a", MinPoints: 0, MaxPoints: ptr(100)},
				{ID: "b", MinPoints: 100},
			},
			expectErr: true,
		},
		{
			name: "Bounded top tier",
			tiers: []domain.Tier{
				{ID: "a", MinPoints: 0, MaxPoints: ptr(99)},
				{ID: "b", MinPoints: 100, MaxPoints: ptr(199)},
			},
			expectErr: true,
		},
		{
			name: "Unbounded middle tier",
			tiers: []domain.Tier{
				{ID: "a", MinPoints: 0},
				{ID: "b", MinPoints: 100},
			},
			expectErr: true,
		},
		{
			name: "Duplicate ids",
			tiers: []domain.Tier{
				{ID: "a", MinPoints: 0, MaxPoints: ptr(99)},
				{ID: "a", MinPoints: 100},
			},
			expectErr: true,
		},
		{
			name: "Max below min",
			tiers: []domain.Tier{
				{ID: "a", MinPoints: 0, MaxPoints: ptr(-5)},
				{ID: "b", MinPoints: -4},
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.tiers)
			if tt.expectErr {
				var cfgErr *domain.ConfigError
				assert.ErrorAs(t, err, &cfgErr)
				assert.Nil(t, c)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestTierForPointsIsTotal(t *testing.T) {
	c, err := New(testTiers())
	require.NoError(t, err)

	for points := int64(0); points <= 10000; points++ {
		matches := 0
		for _, tier := range c.Tiers() {
			if tier.Contains(points) {
				matches++
			}
		}
		require.Equal(t, 1, matches, "points %d", points)
		require.True(t, c.TierForPoints(points).Contains(points), "points %d", points)
	}
}

func TestTierForPoints(t *testing.T) {
	c, err := New(testTiers())
	require.NoError(t, err)

	tests := []struct {
		points   int64
		expected string
	}{
		{points: -10, expected: "bronze"},
		{points: 0, expected: "bronze"},
		{points: 250, expected: "bronze"},
		{points: 999, expected: "bronze"},
		{points: 1000, expected: "silver"},
		{points: 1999, expected: "silver"},
		{points: 2000, expected: "gold"},
		{points: 1 << 40, expected: "gold"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, c.TierForPoints(tt.points).ID, "points %d", tt.points)
	}
}

func TestNextTierAndPointsToNext(t *testing.T) {
	c, err := New(testTiers())
	require.NoError(t, err)

	next, ok := c.NextTier("bronze")
	require.True(t, ok)
	assert.Equal(t, "Silver", next.Name)
	assert.Equal(t, int64(750), c.PointsToNext(250, next))
	assert.Equal(t, int64(0), c.PointsToNext(1500, next))

	_, ok = c.NextTier("gold")
	assert.False(t, ok)
	_, ok = c.NextTier("unknown")
	assert.False(t, ok)
	assert.Equal(t, int64(0), c.PointsToNext(10, nil))

	assert.Equal(t, 1, c.Level("bronze"))
	assert.Equal(t, 3, c.Level("gold"))
	assert.Equal(t, 0, c.Level("unknown"))
	assert.Equal(t, "bronze", c.Lowest().ID)
}

func TestLoad(t *testing.T) {
	t.Run("Embedded default", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Len(t, c.Tiers(), 4)
		assert.Equal(t, "silver", c.TierForPoints(1000).ID)
		assert.Equal(t, "gold", c.TierForPoints(2000).ID)
		assert.Equal(t, "platinum", c.TierForPoints(3000).ID)
	})

	t.Run("File from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tiers.yaml")
		data := []byte("tiers:\n  - id: member\n    name: Member\n    min_points: 0\n")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "member", c.TierForPoints(123456).ID)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		var cfgErr *domain.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("Malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("tiers: [oops"))
		var cfgErr *domain.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})
}
