// Package tiers holds the ordered tier catalog. A Catalog is immutable once
// built and is shared between requests without locking.
package tiers

import (
	_ "embed"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
)

//go:embed default_tiers.yaml
var defaultTiers []byte

type file struct {
	Tiers []domain.Tier `yaml:"tiers"`
}

type Catalog struct {
	tiers []domain.Tier
	index map[string]int
}

// Load reads a YAML tier catalog from path, or the embedded default when path
// is empty.
func Load(path string) (*Catalog, error) {
	data := defaultTiers
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, domain.NewConfigError("read tiers file %s: %v", path, err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, domain.NewConfigError("parse tiers: %v", err)
	}
	return New(f.Tiers)
}

// New validates that tiers partition the non-negative integers: sorted by
// MinPoints, starting at zero, contiguous, and unbounded only at the top.
func New(tiers []domain.Tier) (*Catalog, error) {
	if len(tiers) == 0 {
		return nil, domain.NewConfigError("tier catalog is empty")
	}
	sorted := make([]domain.Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinPoints < sorted[j].MinPoints
	})

	if sorted[0].MinPoints != 0 {
		return nil, domain.NewConfigError("lowest tier %q must start at 0, got %d", sorted[0].ID, sorted[0].MinPoints)
	}

	index := make(map[string]int, len(sorted))
	last := len(sorted) - 1
	for i, t := range sorted {
		if t.ID == "" {
			return nil, domain.NewConfigError("tier at position %d has no id", i)
		}
		if _, dup := index[t.ID]; dup {
			return nil, domain.NewConfigError("duplicate tier id %q", t.ID)
		}
		index[t.ID] = i

		if i == last {
			if t.MaxPoints != nil {
				return nil, domain.NewConfigError("top tier %q must be unbounded", t.ID)
			}
			break
		}
		if t.MaxPoints == nil {
			return nil, domain.NewConfigError("tier %q is unbounded but is not the top tier", t.ID)
		}
		if *t.MaxPoints < t.MinPoints {
			return nil, domain.NewConfigError("tier %q has max %d below min %d", t.ID, *t.MaxPoints, t.MinPoints)
		}
		if next := sorted[i+1]; *t.MaxPoints+1 != next.MinPoints {
			return nil, domain.NewConfigError("tiers %q and %q are not contiguous", t.ID, next.ID)
		}
	}

	return &Catalog{tiers: sorted, index: index}, nil
}

// TierForPoints returns the tier whose range contains points. Negative input
// is treated as zero.
func (c *Catalog) TierForPoints(points int64) domain.Tier {
	if points < 0 {
		points = 0
	}
	i := sort.Search(len(c.tiers), func(i int) bool {
		return c.tiers[i].MinPoints > points
	})
	return c.tiers[i-1]
}

func (c *Catalog) NextTier(tierID string) (*domain.Tier, bool) {
	i, ok := c.index[tierID]
	if !ok || i+1 >= len(c.tiers) {
		return nil, false
	}
	next := c.tiers[i+1]
	return &next, true
}

func (c *Catalog) PointsToNext(points int64, next *domain.Tier) int64 {
	if next == nil {
		return 0
	}
	return max(0, next.MinPoints-points)
}

func (c *Catalog) Lowest() domain.Tier {
	return c.tiers[0]
}

// Level is the 1-based position of the tier, 0 for unknown ids.
func (c *Catalog) Level(tierID string) int {
	i, ok := c.index[tierID]
	if !ok {
		return 0
	}
	return i + 1
}

func (c *Catalog) Tiers() []domain.Tier {
	out := make([]domain.Tier, len(c.tiers))
	copy(out, c.tiers)
	return out
}
