package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

func testCandidate(t *testing.T, user string) *entities.CandidateSignup {
	t.Helper()
	userID, err := valueobjects.NewUserID(user)
	require.NoError(t, err)
	signupID, err := valueobjects.NewSignupID("signup-" + user)
	require.NoError(t, err)
	c, err := entities.NewCandidateSignup(signupID, userID, "User "+user, user+"@example.com", nil)
	require.NoError(t, err)
	return c
}

func testEdge(t *testing.T, a, b string) entities.ReferralEdge {
	t.Helper()
	userA, err := valueobjects.NewUserID(a)
	require.NoError(t, err)
	userB, err := valueobjects.NewUserID(b)
	require.NoError(t, err)
	edge, err := entities.NewReferralEdge(userA, userB)
	require.NoError(t, err)
	return edge
}

func TestBuildClusters_NoEdges(t *testing.T) {
	builder := NewReferralGraphBuilder()
	pool := []*entities.CandidateSignup{
		testCandidate(t, "u1"),
		testCandidate(t, "u2"),
	}

	clusters := builder.BuildClusters(nil, pool)
	assert.Empty(t, clusters)
}

func TestBuildClusters_ChainFormsOneComponent(t *testing.T) {
	builder := NewReferralGraphBuilder()
	pool := []*entities.CandidateSignup{
		testCandidate(t, "u1"),
		testCandidate(t, "u2"),
		testCandidate(t, "u3"),
	}
	edges := []entities.ReferralEdge{
		testEdge(t, "u1", "u2"),
		testEdge(t, "u2", "u3"),
	}

	clusters := builder.BuildClusters(edges, pool)

	require.Len(t, clusters, 3)
	id := clusters[pool[0].UserID]
	assert.Equal(t, valueobjects.ClusterID(0), id)
	assert.Equal(t, id, clusters[pool[1].UserID])
	assert.Equal(t, id, clusters[pool[2].UserID])
}

func TestBuildClusters_NumberedInPoolOrder(t *testing.T) {
	builder := NewReferralGraphBuilder()
	pool := []*entities.CandidateSignup{
		testCandidate(t, "u1"),
		testCandidate(t, "u2"),
		testCandidate(t, "u3"),
		testCandidate(t, "u4"),
	}
	// Edge order intentionally lists the later pair first: cluster
	// numbering follows pool order, not edge order.
	edges := []entities.ReferralEdge{
		testEdge(t, "u3", "u4"),
		testEdge(t, "u1", "u2"),
	}

	clusters := builder.BuildClusters(edges, pool)

	require.Len(t, clusters, 4)
	assert.Equal(t, valueobjects.ClusterID(0), clusters[pool[0].UserID])
	assert.Equal(t, valueobjects.ClusterID(0), clusters[pool[1].UserID])
	assert.Equal(t, valueobjects.ClusterID(1), clusters[pool[2].UserID])
	assert.Equal(t, valueobjects.ClusterID(1), clusters[pool[3].UserID])
}

func TestBuildClusters_DropsEdgesOutsidePool(t *testing.T) {
	builder := NewReferralGraphBuilder()
	pool := []*entities.CandidateSignup{
		testCandidate(t, "u1"),
		testCandidate(t, "u2"),
	}
	edges := []entities.ReferralEdge{
		testEdge(t, "u1", "ghost"),
		testEdge(t, "u1", "u2"),
	}

	clusters := builder.BuildClusters(edges, pool)

	require.Len(t, clusters, 2)
	ghostID, _ := valueobjects.NewUserID("ghost")
	_, present := clusters[ghostID]
	assert.False(t, present)
}

func TestBuildClusters_Deterministic(t *testing.T) {
	builder := NewReferralGraphBuilder()
	pool := []*entities.CandidateSignup{
		testCandidate(t, "u1"),
		testCandidate(t, "u2"),
		testCandidate(t, "u3"),
		testCandidate(t, "u4"),
		testCandidate(t, "u5"),
	}
	edges := []entities.ReferralEdge{
		testEdge(t, "u2", "u5"),
		testEdge(t, "u1", "u3"),
	}

	first := builder.BuildClusters(edges, pool)
	second := builder.BuildClusters(edges, pool)
	assert.Equal(t, first, second)
}
