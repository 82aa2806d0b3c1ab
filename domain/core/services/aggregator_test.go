package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

func newAggregator() *ResultAggregator {
	return NewResultAggregator(NewCompatibilityScorer())
}

func testEventID(t *testing.T) valueobjects.EventID {
	t.Helper()
	id, err := valueobjects.NewEventID("event-1")
	require.NoError(t, err)
	return id
}

func placed(c *entities.CandidateSignup, fromCluster bool) PlacedCandidate {
	return PlacedCandidate{Candidate: c, FromReferralCluster: fromCluster}
}

func TestAggregate_NamesSquadsSequentially(t *testing.T) {
	aggregator := newAggregator()
	pool := poolOf(t, 6)

	squads := []FormedSquad{
		{Members: []PlacedCandidate{placed(pool[0], false), placed(pool[1], false), placed(pool[2], false)}},
		{Members: []PlacedCandidate{placed(pool[3], false), placed(pool[4], false), placed(pool[5], false)}},
	}

	result, err := aggregator.Aggregate(testEventID(t), squads, nil, 6)
	require.NoError(t, err)

	require.Len(t, result.Squads, 2)
	assert.Equal(t, "Squad A", result.Squads[0].SuggestedName)
	assert.Equal(t, "Squad B", result.Squads[1].SuggestedName)
	assert.NotEqual(t, result.Squads[0].ID, result.Squads[1].ID)
}

func TestSquadName_PastTheAlphabet(t *testing.T) {
	assert.Equal(t, "Squad A", squadName(0))
	assert.Equal(t, "Squad Z", squadName(25))
	assert.Equal(t, "Squad AA", squadName(26))
	assert.Equal(t, "Squad AB", squadName(27))
}

func TestAggregate_ScoreIsPairwiseMeanRounded(t *testing.T) {
	aggregator := newAggregator()

	a := testCandidate(t, "u1")
	a.Profile = &valueobjects.PreferenceProfile{VibePreference: intPtr(50)}
	b := testCandidate(t, "u2")
	b.Profile = &valueobjects.PreferenceProfile{VibePreference: intPtr(70)}
	c := testCandidate(t, "u3")
	c.Profile = &valueobjects.PreferenceProfile{VibePreference: intPtr(90)}

	// Pairwise scores 0.8, 0.6, 0.8; mean 0.7333 rounds to 0.73.
	squads := []FormedSquad{
		{Members: []PlacedCandidate{placed(a, false), placed(b, false), placed(c, false)}},
	}

	result, err := aggregator.Aggregate(testEventID(t), squads, nil, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.73, result.Squads[0].CompatibilityScore, 1e-9)
}

func TestAggregate_SingleMemberScoresNeutral(t *testing.T) {
	aggregator := newAggregator()
	pool := poolOf(t, 1)

	squads := []FormedSquad{
		{Members: []PlacedCandidate{placed(pool[0], false)}},
	}

	result, err := aggregator.Aggregate(testEventID(t), squads, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, NeutralScore, result.Squads[0].CompatibilityScore)
}

func TestAggregate_CountsReferralBonds(t *testing.T) {
	aggregator := newAggregator()
	pool := poolOf(t, 3)

	squads := []FormedSquad{
		{Members: []PlacedCandidate{placed(pool[0], true), placed(pool[1], true), placed(pool[2], false)}},
	}

	result, err := aggregator.Aggregate(testEventID(t), squads, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Squads[0].ReferralBonds)
}

func TestAggregate_MapsUnassignedCandidates(t *testing.T) {
	aggregator := newAggregator()
	pool := poolOf(t, 2)

	result, err := aggregator.Aggregate(testEventID(t), nil, pool, 2)
	require.NoError(t, err)

	assert.Empty(t, result.Squads)
	require.Len(t, result.Unassigned, 2)
	assert.Equal(t, pool[0].UserID, result.Unassigned[0].UserID)
	assert.Equal(t, pool[0].SignupID, result.Unassigned[0].SignupID)
	assert.Equal(t, pool[1].UserID, result.Unassigned[1].UserID)
	assert.Equal(t, 2, result.TotalPending)
}

func TestAggregate_RejectsBrokenAccounting(t *testing.T) {
	aggregator := newAggregator()
	pool := poolOf(t, 3)

	squads := []FormedSquad{
		{Members: []PlacedCandidate{placed(pool[0], false), placed(pool[1], false), placed(pool[2], false)}},
	}

	_, err := aggregator.Aggregate(testEventID(t), squads, nil, 5)
	assert.Error(t, err)
}
