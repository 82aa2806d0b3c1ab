package services

import (
	"math"

	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

// NeutralScore is returned when no preference factor is comparable
// between two profiles, including when either profile is absent.
const NeutralScore = 0.5

// CompatibilityScorer computes a pairwise similarity in [0,1] between
// two preference profiles. Each factor is scored only when both sides
// report it; the result is the arithmetic mean of the defined factors.
// Pure function, no state.
type CompatibilityScorer struct{}

// NewCompatibilityScorer creates a scorer
func NewCompatibilityScorer() *CompatibilityScorer {
	return &CompatibilityScorer{}
}

// Score returns the mean of all comparable factor sub-scores, or
// NeutralScore when nothing is comparable.
func (s *CompatibilityScorer) Score(a, b *valueobjects.PreferenceProfile) float64 {
	if a == nil || b == nil {
		return NeutralScore
	}

	var sum float64
	factors := 0

	if a.VibePreference != nil && b.VibePreference != nil {
		sum += vibeFactor(*a.VibePreference, *b.VibePreference)
		factors++
	}

	if a.AgeRange != nil && b.AgeRange != nil {
		if f, ok := ageRangeFactor(*a.AgeRange, *b.AgeRange); ok {
			sum += f
			factors++
		}
	}

	if a.Area != nil && b.Area != nil {
		sum += areaFactor(*a.Area, *b.Area)
		factors++
	}

	if len(a.QuestTypeInterests) > 0 && len(b.QuestTypeInterests) > 0 {
		sum += overlapFactor(a.QuestTypeInterests, b.QuestTypeInterests)
		factors++
	}

	if len(a.ContextTags) > 0 && len(b.ContextTags) > 0 {
		sum += overlapFactor(a.ContextTags, b.ContextTags)
		factors++
	}

	if factors == 0 {
		return NeutralScore
	}
	return sum / float64(factors)
}

// vibeFactor compares two 0-100 sliders linearly.
func vibeFactor(a, b int) float64 {
	return 1 - math.Abs(float64(a-b))/100
}

// ageRangeFactor compares the ordinal positions of two age buckets.
// Adjacent buckets score 0.75, opposite ends score 0.
func ageRangeFactor(a, b valueobjects.AgeRange) (float64, bool) {
	pa, okA := a.Ordinal()
	pb, okB := b.Ordinal()
	if !okA || !okB {
		return 0, false
	}
	d := pa - pb
	if d < 0 {
		d = -d
	}
	return float64(valueobjects.MaxAgeRangeOrdinal-d) / float64(valueobjects.MaxAgeRangeOrdinal), true
}

// areaFactor scores 1.0 for the same zone, 0.7 when b is in a's
// adjacency list, 0.3 otherwise. The adjacency lookup is directional.
func areaFactor(a, b valueobjects.Area) float64 {
	switch {
	case a == b:
		return 1.0
	case a.IsNearby(b):
		return 0.7
	default:
		return 0.3
	}
}

// overlapFactor scores two non-empty tag sets by intersection size over
// the larger set.
func overlapFactor(a, b []string) float64 {
	seen := make(map[string]struct{}, len(a))
	for _, t := range a {
		seen[t] = struct{}{}
	}
	shared := 0
	counted := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := counted[t]; dup {
			continue
		}
		counted[t] = struct{}{}
		if _, ok := seen[t]; ok {
			shared++
		}
	}
	larger := len(seen)
	if len(counted) > larger {
		larger = len(counted)
	}
	return float64(shared) / float64(larger)
}
