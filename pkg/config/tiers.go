package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// RefreshTier identifies one of the three recompute cadences.
type RefreshTier string

const (
	TierLight  RefreshTier = "light"
	TierMedium RefreshTier = "medium"
	TierHeavy  RefreshTier = "heavy"
)

// Tiers returns all tiers in cadence order, fastest first.
func Tiers() []RefreshTier {
	return []RefreshTier{TierLight, TierMedium, TierHeavy}
}

// TierAssignment maps each refresh tier to the metric types it recomputes.
// The mapping is external, versionable configuration, never derived at
// runtime: it is layered from compiled-in defaults, an optional YAML file,
// and COURSEPULSE_-prefixed environment variables.
type TierAssignment struct {
	Light  []string `koanf:"light"`
	Medium []string `koanf:"medium"`
	Heavy  []string `koanf:"heavy"`
}

// DefaultTierAssignment returns the compiled-in tier mapping.
func DefaultTierAssignment() *TierAssignment {
	return &TierAssignment{
		Light:  []string{"popular_content_daily"},
		Medium: []string{"commitment", "consistency"},
		Heavy:  []string{"aha_moments", "content_pathways", "feedback_themes"},
	}
}

// LoadTierAssignment builds the tier mapping by layering defaults, the
// optional YAML file at path, and environment overrides.
func LoadTierAssignment(path string) (*TierAssignment, error) {
	assignment := DefaultTierAssignment()

	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load tier config %s: %w", path, err)
			}
		}
	}

	// COURSEPULSE_TIERS_LIGHT="popular_content_daily,commitment" etc.
	envProvider := env.Provider("COURSEPULSE_TIERS_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "coursepulse_tiers_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load tier env overrides: %w", err)
	}

	if err := k.UnmarshalWithConf("", assignment, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tier config: %w", err)
	}

	if err := assignment.validate(); err != nil {
		return nil, err
	}
	return assignment, nil
}

// MetricTypes returns the metric types assigned to a tier.
func (ta *TierAssignment) MetricTypes(tier RefreshTier) []string {
	switch tier {
	case TierLight:
		return ta.Light
	case TierMedium:
		return ta.Medium
	case TierHeavy:
		return ta.Heavy
	}
	return nil
}

// TierTTL returns how long a row computed by a tier stays fresh.
func TierTTL(tier RefreshTier) time.Duration {
	switch tier {
	case TierLight:
		return LightTierTTL
	case TierMedium:
		return MediumTierTTL
	case TierHeavy:
		return HeavyTierTTL
	}
	return MediumTierTTL
}

// TierInterval returns the recompute cadence for a tier.
func TierInterval(tier RefreshTier) time.Duration {
	switch tier {
	case TierLight:
		return LightTierInterval
	case TierMedium:
		return MediumTierInterval
	case TierHeavy:
		return HeavyTierInterval
	}
	return MediumTierInterval
}

// validate rejects a mapping that assigns one metric type to multiple tiers.
func (ta *TierAssignment) validate() error {
	seen := make(map[string]RefreshTier)
	for _, tier := range Tiers() {
		for _, metricType := range ta.MetricTypes(tier) {
			if metricType == "" {
				return fmt.Errorf("tier %s contains an empty metric type", tier)
			}
			if prev, exists := seen[metricType]; exists {
				return fmt.Errorf("metric type %s assigned to both %s and %s tiers", metricType, prev, tier)
			}
			seen[metricType] = tier
		}
	}
	if len(seen) == 0 {
		return fmt.Errorf("tier assignment maps no metric types")
	}
	return nil
}
