package services

import (
	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

// ReferralGraphBuilder extracts connected components ("clusters") from
// the referral edges over a candidate pool. Users with no surviving
// edge get no cluster and are treated as unclustered downstream.
type ReferralGraphBuilder struct{}

// NewReferralGraphBuilder creates a builder
func NewReferralGraphBuilder() *ReferralGraphBuilder {
	return &ReferralGraphBuilder{}
}

// BuildClusters assigns an incrementing ClusterID to every connected
// component of the referral graph restricted to the pool. Traversal
// follows pool order and edge insertion order, so cluster numbering is
// reproducible for identical input.
func (b *ReferralGraphBuilder) BuildClusters(edges []entities.ReferralEdge, pool []*entities.CandidateSignup) map[valueobjects.UserID]valueobjects.ClusterID {
	inPool := make(map[valueobjects.UserID]struct{}, len(pool))
	for _, c := range pool {
		inPool[c.UserID] = struct{}{}
	}

	// Adjacency lists keep edge insertion order so BFS visits
	// neighbors deterministically.
	adjacency := make(map[valueobjects.UserID][]valueobjects.UserID)
	for _, e := range edges {
		if _, ok := inPool[e.UserA]; !ok {
			continue
		}
		if _, ok := inPool[e.UserB]; !ok {
			continue
		}
		adjacency[e.UserA] = append(adjacency[e.UserA], e.UserB)
		adjacency[e.UserB] = append(adjacency[e.UserB], e.UserA)
	}

	clusters := make(map[valueobjects.UserID]valueobjects.ClusterID)
	next := valueobjects.ClusterID(0)

	for _, c := range pool {
		if _, connected := adjacency[c.UserID]; !connected {
			continue
		}
		if _, assigned := clusters[c.UserID]; assigned {
			continue
		}

		queue := []valueobjects.UserID{c.UserID}
		clusters[c.UserID] = next
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, neighbor := range adjacency[current] {
				if _, assigned := clusters[neighbor]; assigned {
					continue
				}
				clusters[neighbor] = next
				queue = append(queue, neighbor)
			}
		}
		next++
	}

	return clusters
}
