// Package quality holds the ordered quality tier table and the manager that
// moves between tiers.
package quality

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/meadow/config"
)

// Tier identifies one quality profile. Tiers are ordered from lowest to
// highest capability.
type Tier int

const (
	TierMinimal Tier = iota
	TierLow
	TierMedium
	TierHigh
	TierUltra

	// TierCount is the number of tiers.
	TierCount
)

var tierNames = [TierCount]string{
	TierMinimal: "minimal",
	TierLow:     "low",
	TierMedium:  "medium",
	TierHigh:    "high",
	TierUltra:   "ultra",
}

// String returns the configuration name of the tier.
func (t Tier) String() string {
	if t < 0 || t >= TierCount {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return t >= 0 && t < TierCount
}

// ParseTier returns the tier with the given configuration name.
func ParseTier(name string) (Tier, error) {
	for t, n := range tierNames {
		if n == name {
			return Tier(t), nil
		}
	}
	return 0, fmt.Errorf("unknown quality tier %q", name)
}

// Features are the per-tier shader and simulation toggles.
type Features struct {
	Glow       bool
	Turbulence bool
	Wind       bool
}

// Profile is an immutable quality configuration bundle.
type Profile struct {
	Tier          Tier
	Instances     int
	SimResolution int
	DPRCap        float32
	ClumpSize     int
	Features      Features
}

// LogValue implements slog.LogValuer for structured logging.
func (p Profile) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("tier", p.Tier.String()),
		slog.Int("instances", p.Instances),
		slog.Int("sim_resolution", p.SimResolution),
		slog.Float64("dpr_cap", float64(p.DPRCap)),
		slog.Int("clump_size", p.ClumpSize),
	)
}

// RequiresRebuild reports whether moving between the two profiles changes
// the blade geometry topology. Instance count changes never do.
func RequiresRebuild(from, to Profile) bool {
	return from.ClumpSize != to.ClumpSize
}

// Table is the complete ordered profile set, indexed by tier.
type Table [TierCount]Profile

// NewTable builds the profile table from configuration. Every tier must be
// present exactly once; configuration order is irrelevant.
func NewTable(cfg config.QualityConfig) (Table, error) {
	var table Table
	var found [TierCount]bool

	for _, tc := range cfg.Tiers {
		tier, err := ParseTier(tc.Name)
		if err != nil {
			return table, fmt.Errorf("building quality table: %w", err)
		}
		if found[tier] {
			return table, fmt.Errorf("building quality table: duplicate tier %q", tc.Name)
		}
		found[tier] = true
		table[tier] = Profile{
			Tier:          tier,
			Instances:     tc.Instances,
			SimResolution: tc.SimResolution,
			DPRCap:        float32(tc.DPRCap),
			ClumpSize:     tc.ClumpSize,
			Features: Features{
				Glow:       tc.Glow,
				Turbulence: tc.Turbulence,
				Wind:       tc.Wind,
			},
		}
	}

	for t, ok := range found {
		if !ok {
			return table, fmt.Errorf("building quality table: missing tier %q", Tier(t))
		}
	}
	for t := TierLow; t < TierCount; t++ {
		if table[t].Instances < table[t-1].Instances {
			return table, fmt.Errorf("building quality table: tier %q has fewer instances than %q", t, t-1)
		}
	}

	return table, nil
}

// MaxInstances returns the largest instance budget across all tiers. This
// is the size the instance buffers are allocated with.
func (t *Table) MaxInstances() int {
	n := 0
	for _, p := range t {
		if p.Instances > n {
			n = p.Instances
		}
	}
	return n
}

// MaxSimResolution returns the largest simulation resolution across all tiers.
func (t *Table) MaxSimResolution() int {
	n := 0
	for _, p := range t {
		if p.SimResolution > n {
			n = p.SimResolution
		}
	}
	return n
}

// InitialTier picks a starting tier from viewport size and pixel ratio
// before any frame timing exists. The calibration benchmark overrides it.
func InitialTier(viewportWidth, dpr float32, cfg config.InitialConfig) Tier {
	var t Tier
	switch {
	case float64(viewportWidth) < cfg.SmallWidth:
		t = TierLow
	case float64(viewportWidth) < cfg.LargeWidth:
		t = TierMedium
	default:
		t = TierHigh
	}

	// Dense displays fill more pixels per logical pixel
	if cfg.HighDPR > 0 && float64(dpr) >= cfg.HighDPR && t > TierMinimal {
		t--
	}
	return t
}
