package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

func newAssembler() *SquadAssembler {
	return NewSquadAssembler(NewCompatibilityScorer())
}

func poolOf(t *testing.T, n int) []*entities.CandidateSignup {
	t.Helper()
	pool := make([]*entities.CandidateSignup, n)
	for i := range pool {
		pool[i] = testCandidate(t, fmt.Sprintf("u%d", i+1))
	}
	return pool
}

func memberNames(squad FormedSquad) []string {
	names := make([]string, len(squad.Members))
	for i, m := range squad.Members {
		names[i] = m.Candidate.UserID.String()
	}
	return names
}

func TestThreshold(t *testing.T) {
	assert.Equal(t, 3, Threshold(6))
	assert.Equal(t, 3, Threshold(3))
	assert.Equal(t, 2, Threshold(2))
}

func TestAssemble_ReferralPairStaysTogether(t *testing.T) {
	// Nine candidates without profiles, one referral pair, squads of
	// three: everyone gets placed and the pair shares the first squad.
	assembler := newAssembler()
	builder := NewReferralGraphBuilder()
	pool := poolOf(t, 9)
	edges := []entities.ReferralEdge{testEdge(t, "u1", "u2")}

	clusters := builder.BuildClusters(edges, pool)
	squads, unassigned := assembler.Assemble(pool, clusters, 3)

	require.Len(t, squads, 3)
	assert.Empty(t, unassigned)

	assert.Equal(t, []string{"u1", "u2", "u3"}, memberNames(squads[0]))
	assert.True(t, squads[0].Members[0].FromReferralCluster)
	assert.True(t, squads[0].Members[1].FromReferralCluster)
	assert.False(t, squads[0].Members[2].FromReferralCluster)

	assert.Equal(t, []string{"u4", "u5", "u6"}, memberNames(squads[1]))
	assert.Equal(t, []string{"u7", "u8", "u9"}, memberNames(squads[2]))
}

func TestAssemble_PoolBelowThreshold(t *testing.T) {
	assembler := newAssembler()
	pool := poolOf(t, 2)

	squads, unassigned := assembler.Assemble(pool, nil, 6)

	assert.Empty(t, squads)
	require.Len(t, unassigned, 2)
	assert.Equal(t, "u1", unassigned[0].UserID.String())
	assert.Equal(t, "u2", unassigned[1].UserID.String())
}

func TestAssemble_LargeClusterSplitsNeverMerges(t *testing.T) {
	// A cluster of eight with squads of five splits 5+3; the remainder
	// is its own squad, never blended into another cluster's chunk.
	assembler := newAssembler()
	pool := poolOf(t, 8)
	clusters := make(map[valueobjects.UserID]valueobjects.ClusterID, len(pool))
	for _, c := range pool {
		clusters[c.UserID] = 0
	}

	squads, unassigned := assembler.Assemble(pool, clusters, 5)

	require.Len(t, squads, 2)
	assert.Empty(t, unassigned)
	assert.Equal(t, []string{"u1", "u2", "u3", "u4", "u5"}, memberNames(squads[0]))
	assert.Equal(t, []string{"u6", "u7", "u8"}, memberNames(squads[1]))
	for _, squad := range squads {
		for _, m := range squad.Members {
			assert.True(t, m.FromReferralCluster)
		}
	}
}

func TestAssemble_SmallClusterChunkDissolves(t *testing.T) {
	// A lone clustered pair with nothing to fill from dissolves into
	// the unassigned list instead of forming an undersized squad.
	assembler := newAssembler()
	pool := poolOf(t, 2)
	clusters := map[valueobjects.UserID]valueobjects.ClusterID{
		pool[0].UserID: 0,
		pool[1].UserID: 0,
	}

	squads, unassigned := assembler.Assemble(pool, clusters, 5)

	assert.Empty(t, squads)
	require.Len(t, unassigned, 2)
}

func TestAssemble_ClusterChunkFilledFromUnclustered(t *testing.T) {
	assembler := newAssembler()
	builder := NewReferralGraphBuilder()
	pool := poolOf(t, 4)
	edges := []entities.ReferralEdge{testEdge(t, "u1", "u2")}

	clusters := builder.BuildClusters(edges, pool)
	squads, unassigned := assembler.Assemble(pool, clusters, 4)

	require.Len(t, squads, 1)
	assert.Empty(t, unassigned)
	assert.Equal(t, []string{"u1", "u2", "u3", "u4"}, memberNames(squads[0]))
}

func TestAssemble_GreedyFillPicksBestScore(t *testing.T) {
	assembler := newAssembler()

	seed := testCandidate(t, "u1")
	seed.Profile = &valueobjects.PreferenceProfile{VibePreference: intPtr(50)}
	distant := testCandidate(t, "u2")
	distant.Profile = &valueobjects.PreferenceProfile{VibePreference: intPtr(90)}
	near := testCandidate(t, "u3")
	near.Profile = &valueobjects.PreferenceProfile{VibePreference: intPtr(60)}

	pool := []*entities.CandidateSignup{seed, distant, near}
	squads, unassigned := assembler.Assemble(pool, nil, 2)

	require.Len(t, squads, 1)
	assert.Equal(t, []string{"u1", "u3"}, memberNames(squads[0]))
	require.Len(t, unassigned, 1)
	assert.Equal(t, "u2", unassigned[0].UserID.String())
}

func TestAssemble_TieKeepsEarliestCandidate(t *testing.T) {
	// All profiles missing, every pairing scores the neutral default,
	// so fill order matches pool order.
	assembler := newAssembler()
	pool := poolOf(t, 6)

	squads, unassigned := assembler.Assemble(pool, nil, 6)

	require.Len(t, squads, 1)
	assert.Empty(t, unassigned)
	assert.Equal(t, []string{"u1", "u2", "u3", "u4", "u5", "u6"}, memberNames(squads[0]))
}

func TestAssemble_LeftoverBelowThresholdUnassigned(t *testing.T) {
	assembler := newAssembler()
	pool := poolOf(t, 8)

	squads, unassigned := assembler.Assemble(pool, nil, 6)

	require.Len(t, squads, 1)
	assert.Len(t, squads[0].Members, 6)
	require.Len(t, unassigned, 2)
	assert.Equal(t, "u7", unassigned[0].UserID.String())
	assert.Equal(t, "u8", unassigned[1].UserID.String())
}

func TestAssemble_RepeatRunsProduceIdenticalOutput(t *testing.T) {
	// Identical inputs assemble identically: same squads, same member
	// order, same unassigned list, down to every field.
	assembler := newAssembler()
	builder := NewReferralGraphBuilder()
	pool := poolOf(t, 11)
	pool[0].Profile = &valueobjects.PreferenceProfile{VibePreference: intPtr(40)}
	pool[4].Profile = &valueobjects.PreferenceProfile{VibePreference: intPtr(55)}
	pool[9].Profile = &valueobjects.PreferenceProfile{VibePreference: intPtr(80)}
	edges := []entities.ReferralEdge{testEdge(t, "u2", "u3"), testEdge(t, "u7", "u8")}

	firstSquads, firstUnassigned := assembler.Assemble(pool, builder.BuildClusters(edges, pool), 4)
	secondSquads, secondUnassigned := assembler.Assemble(pool, builder.BuildClusters(edges, pool), 4)

	require.Equal(t, firstSquads, secondSquads)
	require.Equal(t, firstUnassigned, secondUnassigned)
}

func TestAssemble_AccountsForEveryCandidate(t *testing.T) {
	assembler := newAssembler()
	builder := NewReferralGraphBuilder()

	for _, n := range []int{1, 3, 7, 10, 23} {
		pool := poolOf(t, n)
		var edges []entities.ReferralEdge
		if n >= 4 {
			edges = append(edges, testEdge(t, "u1", "u4"))
		}
		clusters := builder.BuildClusters(edges, pool)

		squads, unassigned := assembler.Assemble(pool, clusters, 4)

		placed := 0
		for _, s := range squads {
			placed += len(s.Members)
		}
		assert.Equal(t, n, placed+len(unassigned), "pool of %d", n)
	}
}
