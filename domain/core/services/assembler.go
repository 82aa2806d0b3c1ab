package services

import (
	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

// MinViableSquadSize is the floor below which a group is dissolved back
// into the unassigned pool instead of being emitted as a squad. The
// effective threshold for a run is min(MinViableSquadSize, squadSize).
const MinViableSquadSize = 3

// PlacedCandidate is a candidate inside a squad under assembly, tagged
// with how it got there.
type PlacedCandidate struct {
	Candidate           *entities.CandidateSignup
	FromReferralCluster bool
}

// FormedSquad is a finalized group of threshold..squadSize members, in
// placement order.
type FormedSquad struct {
	Members []PlacedCandidate
}

// SquadAssembler packs clustered and unclustered candidates into squads.
// Referral clusters are protected first; compatibility scoring only
// fills gaps and groups the remainder. Single greedy pass, no
// backtracking, fully deterministic for identical input order.
type SquadAssembler struct {
	scorer *CompatibilityScorer
}

// NewSquadAssembler creates an assembler around a scorer
func NewSquadAssembler(scorer *CompatibilityScorer) *SquadAssembler {
	return &SquadAssembler{scorer: scorer}
}

// Threshold returns the minimum viable squad size for a target size
func Threshold(squadSize int) int {
	if squadSize < MinViableSquadSize {
		return squadSize
	}
	return MinViableSquadSize
}

// Assemble partitions the pool into squads and a residual unassigned
// list. Clusters are processed in increasing ClusterID order, chunked
// to squadSize, greedily topped up from the unclustered pool, then the
// remaining unclustered candidates are grouped the same way.
func (a *SquadAssembler) Assemble(pool []*entities.CandidateSignup, clusters map[valueobjects.UserID]valueobjects.ClusterID, squadSize int) ([]FormedSquad, []*entities.CandidateSignup) {
	threshold := Threshold(squadSize)

	clusterMembers := make(map[valueobjects.ClusterID][]*entities.CandidateSignup)
	maxCluster := valueobjects.ClusterID(-1)
	var unclustered []*entities.CandidateSignup
	for _, c := range pool {
		if id, ok := clusters[c.UserID]; ok {
			clusterMembers[id] = append(clusterMembers[id], c)
			if id > maxCluster {
				maxCluster = id
			}
		} else {
			unclustered = append(unclustered, c)
		}
	}

	var squads []FormedSquad
	var unassigned []*entities.CandidateSignup

	for id := valueobjects.ClusterID(0); id <= maxCluster; id++ {
		members := clusterMembers[id]
		for start := 0; start < len(members); start += squadSize {
			end := start + squadSize
			if end > len(members) {
				end = len(members)
			}

			squad := make([]PlacedCandidate, 0, squadSize)
			for _, m := range members[start:end] {
				squad = append(squad, PlacedCandidate{Candidate: m, FromReferralCluster: true})
			}

			squad, unclustered = a.fill(squad, unclustered, squadSize)

			if len(squad) >= threshold {
				squads = append(squads, FormedSquad{Members: squad})
			} else {
				for _, m := range squad {
					unassigned = append(unassigned, m.Candidate)
				}
			}
		}
	}

	for len(unclustered) >= threshold {
		seed := unclustered[0]
		unclustered = unclustered[1:]
		squad := []PlacedCandidate{{Candidate: seed}}

		squad, unclustered = a.fill(squad, unclustered, squadSize)

		if len(squad) >= threshold {
			squads = append(squads, FormedSquad{Members: squad})
		} else {
			for _, m := range squad {
				unassigned = append(unassigned, m.Candidate)
			}
		}
	}

	unassigned = append(unassigned, unclustered...)
	return squads, unassigned
}

// fill tops up a squad-in-progress from the unclustered pool, always
// taking the candidate with the highest mean compatibility against the
// current members. Ties keep the earliest candidate in pool order.
func (a *SquadAssembler) fill(squad []PlacedCandidate, unclustered []*entities.CandidateSignup, squadSize int) ([]PlacedCandidate, []*entities.CandidateSignup) {
	for len(squad) < squadSize && len(unclustered) > 0 {
		best := 0
		bestScore := a.meanScore(unclustered[0], squad)
		for i := 1; i < len(unclustered); i++ {
			if score := a.meanScore(unclustered[i], squad); score > bestScore {
				best = i
				bestScore = score
			}
		}
		squad = append(squad, PlacedCandidate{Candidate: unclustered[best]})
		unclustered = append(unclustered[:best], unclustered[best+1:]...)
	}
	return squad, unclustered
}

func (a *SquadAssembler) meanScore(candidate *entities.CandidateSignup, squad []PlacedCandidate) float64 {
	if len(squad) == 0 {
		return NeutralScore
	}
	var sum float64
	for _, m := range squad {
		sum += a.scorer.Score(candidate.Profile, m.Candidate.Profile)
	}
	return sum / float64(len(squad))
}
