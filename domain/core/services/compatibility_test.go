package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

func intPtr(v int) *int { return &v }

func agePtr(r valueobjects.AgeRange) *valueobjects.AgeRange { return &r }

func areaPtr(a valueobjects.Area) *valueobjects.Area { return &a }

func TestScore_MissingProfiles(t *testing.T) {
	scorer := NewCompatibilityScorer()

	assert.Equal(t, NeutralScore, scorer.Score(nil, nil))
	assert.Equal(t, NeutralScore, scorer.Score(&valueobjects.PreferenceProfile{}, nil))
	assert.Equal(t, NeutralScore, scorer.Score(nil, &valueobjects.PreferenceProfile{}))
}

func TestScore_NoComparableFactors(t *testing.T) {
	scorer := NewCompatibilityScorer()

	// Disjoint fields: a has only vibe, b has only an area.
	a := &valueobjects.PreferenceProfile{VibePreference: intPtr(40)}
	b := &valueobjects.PreferenceProfile{Area: areaPtr(valueobjects.AreaDowntown)}

	assert.Equal(t, NeutralScore, scorer.Score(a, b))
	assert.Equal(t, NeutralScore, scorer.Score(&valueobjects.PreferenceProfile{}, &valueobjects.PreferenceProfile{}))
}

func TestScore_VibeFactor(t *testing.T) {
	scorer := NewCompatibilityScorer()

	cases := []struct {
		a, b     int
		expected float64
	}{
		{50, 50, 1.0},
		{50, 70, 0.8},
		{0, 100, 0.0},
		{100, 0, 0.0},
	}
	for _, tc := range cases {
		a := &valueobjects.PreferenceProfile{VibePreference: intPtr(tc.a)}
		b := &valueobjects.PreferenceProfile{VibePreference: intPtr(tc.b)}
		assert.InDelta(t, tc.expected, scorer.Score(a, b), 1e-9, "vibe %d vs %d", tc.a, tc.b)
	}
}

func TestScore_AgeRangeFactor(t *testing.T) {
	scorer := NewCompatibilityScorer()

	cases := []struct {
		a, b     valueobjects.AgeRange
		expected float64
	}{
		{valueobjects.AgeRange25To34, valueobjects.AgeRange25To34, 1.0},
		{valueobjects.AgeRange18To24, valueobjects.AgeRange25To34, 0.75},
		{valueobjects.AgeRange18To24, valueobjects.AgeRange35To44, 0.5},
		{valueobjects.AgeRange18To24, valueobjects.AgeRange55Plus, 0.0},
	}
	for _, tc := range cases {
		a := &valueobjects.PreferenceProfile{AgeRange: agePtr(tc.a)}
		b := &valueobjects.PreferenceProfile{AgeRange: agePtr(tc.b)}
		assert.InDelta(t, tc.expected, scorer.Score(a, b), 1e-9, "%s vs %s", tc.a, tc.b)
	}
}

func TestScore_AreaFactor(t *testing.T) {
	scorer := NewCompatibilityScorer()

	same := scorer.Score(
		&valueobjects.PreferenceProfile{Area: areaPtr(valueobjects.AreaDowntown)},
		&valueobjects.PreferenceProfile{Area: areaPtr(valueobjects.AreaDowntown)},
	)
	assert.InDelta(t, 1.0, same, 1e-9)

	nearby := scorer.Score(
		&valueobjects.PreferenceProfile{Area: areaPtr(valueobjects.AreaDowntown)},
		&valueobjects.PreferenceProfile{Area: areaPtr(valueobjects.AreaMidtown)},
	)
	assert.InDelta(t, 0.7, nearby, 1e-9)

	far := scorer.Score(
		&valueobjects.PreferenceProfile{Area: areaPtr(valueobjects.AreaEastside)},
		&valueobjects.PreferenceProfile{Area: areaPtr(valueobjects.AreaWestside)},
	)
	assert.InDelta(t, 0.3, far, 1e-9)
}

func TestScore_AreaFactorIsDirectional(t *testing.T) {
	scorer := NewCompatibilityScorer()

	// Suburban users consider downtown an easy trip; the reverse does
	// not hold, and the score reflects the scoring user's perspective.
	suburb := &valueobjects.PreferenceProfile{Area: areaPtr(valueobjects.AreaSuburbsNorth)}
	downtown := &valueobjects.PreferenceProfile{Area: areaPtr(valueobjects.AreaDowntown)}

	assert.InDelta(t, 0.7, scorer.Score(suburb, downtown), 1e-9)
	assert.InDelta(t, 0.3, scorer.Score(downtown, suburb), 1e-9)
}

func TestScore_QuestTypeOverlap(t *testing.T) {
	scorer := NewCompatibilityScorer()

	a := &valueobjects.PreferenceProfile{QuestTypeInterests: []string{"hiking", "food"}}
	b := &valueobjects.PreferenceProfile{QuestTypeInterests: []string{"food", "art", "music"}}

	// One shared tag over the larger set of three.
	assert.InDelta(t, 1.0/3.0, scorer.Score(a, b), 1e-9)
	assert.InDelta(t, 1.0/3.0, scorer.Score(b, a), 1e-9)

	identical := &valueobjects.PreferenceProfile{QuestTypeInterests: []string{"food", "hiking"}}
	assert.InDelta(t, 1.0, scorer.Score(a, identical), 1e-9)

	disjoint := &valueobjects.PreferenceProfile{QuestTypeInterests: []string{"climbing"}}
	assert.InDelta(t, 0.0, scorer.Score(a, disjoint), 1e-9)
}

func TestScore_OverlapIgnoresDuplicateTags(t *testing.T) {
	scorer := NewCompatibilityScorer()

	a := &valueobjects.PreferenceProfile{QuestTypeInterests: []string{"food", "food", "food"}}
	b := &valueobjects.PreferenceProfile{QuestTypeInterests: []string{"food"}}

	assert.InDelta(t, 1.0, scorer.Score(a, b), 1e-9)
}

func TestScore_ContextTags(t *testing.T) {
	scorer := NewCompatibilityScorer()

	a := &valueobjects.PreferenceProfile{ContextTags: []string{"new-to-town"}}
	b := &valueobjects.PreferenceProfile{ContextTags: []string{"new-to-town"}}

	assert.InDelta(t, 1.0, scorer.Score(a, b), 1e-9)
}

func TestScore_MeanOverDefinedFactors(t *testing.T) {
	scorer := NewCompatibilityScorer()

	// vibe 0.8 and same-area 1.0; age only on one side is skipped.
	a := &valueobjects.PreferenceProfile{
		VibePreference: intPtr(50),
		Area:           areaPtr(valueobjects.AreaMidtown),
		AgeRange:       agePtr(valueobjects.AgeRange25To34),
	}
	b := &valueobjects.PreferenceProfile{
		VibePreference: intPtr(70),
		Area:           areaPtr(valueobjects.AreaMidtown),
	}

	assert.InDelta(t, 0.9, scorer.Score(a, b), 1e-9)
}

func TestScore_SymmetricOutsideDirectionalAreas(t *testing.T) {
	scorer := NewCompatibilityScorer()

	a := &valueobjects.PreferenceProfile{
		VibePreference:     intPtr(30),
		AgeRange:           agePtr(valueobjects.AgeRange25To34),
		Area:               areaPtr(valueobjects.AreaDowntown),
		QuestTypeInterests: []string{"food", "games"},
		ContextTags:        []string{"regular"},
	}
	b := &valueobjects.PreferenceProfile{
		VibePreference:     intPtr(80),
		AgeRange:           agePtr(valueobjects.AgeRange45To54),
		Area:               areaPtr(valueobjects.AreaMidtown),
		QuestTypeInterests: []string{"games"},
		ContextTags:        []string{"regular", "host"},
	}

	assert.InDelta(t, scorer.Score(a, b), scorer.Score(b, a), 1e-9)
}

func TestScore_StaysInRange(t *testing.T) {
	scorer := NewCompatibilityScorer()

	profiles := []*valueobjects.PreferenceProfile{
		nil,
		{},
		{VibePreference: intPtr(0)},
		{VibePreference: intPtr(100), AgeRange: agePtr(valueobjects.AgeRange55Plus)},
		{Area: areaPtr(valueobjects.AreaSuburbsSouth), QuestTypeInterests: []string{"food"}},
		{ContextTags: []string{"a", "b", "c"}},
	}

	for i, a := range profiles {
		for j, b := range profiles {
			s := scorer.Score(a, b)
			require.GreaterOrEqual(t, s, 0.0, "pair %d,%d", i, j)
			require.LessOrEqual(t, s, 1.0, "pair %d,%d", i, j)
		}
	}
}
