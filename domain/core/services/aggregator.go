package services

import (
	"fmt"
	"math"

	"github.com/OpenClique85/openclique-sub009/domain/core/aggregates"
	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

// ResultAggregator turns assembled squads into the reported result:
// display names, audit-facing compatibility scores recomputed over all
// member pairs, referral-bond counts, and the pending-candidate totals.
type ResultAggregator struct {
	scorer *CompatibilityScorer
}

// NewResultAggregator creates an aggregator around a scorer
func NewResultAggregator(scorer *CompatibilityScorer) *ResultAggregator {
	return &ResultAggregator{scorer: scorer}
}

// Aggregate builds the EngineResult for one run. totalPending is the
// size of the original candidate pool.
func (r *ResultAggregator) Aggregate(eventID valueobjects.EventID, squads []FormedSquad, leftovers []*entities.CandidateSignup, totalPending int) (*aggregates.EngineResult, error) {
	proposals := make([]*aggregates.SquadProposal, 0, len(squads))
	for i, squad := range squads {
		members := make([]aggregates.SquadMember, len(squad.Members))
		bonds := 0
		for j, m := range squad.Members {
			members[j] = aggregates.SquadMember{
				UserID:              m.Candidate.UserID,
				SignupID:            m.Candidate.SignupID,
				DisplayName:         m.Candidate.DisplayName,
				Email:               m.Candidate.Email,
				FromReferralCluster: m.FromReferralCluster,
			}
			if m.FromReferralCluster {
				bonds++
			}
		}

		proposal, err := aggregates.NewSquadProposal(
			eventID,
			squadName(i),
			members,
			r.squadScore(squad),
			bonds,
		)
		if err != nil {
			return nil, fmt.Errorf("aggregating squad %d: %w", i, err)
		}
		proposals = append(proposals, proposal)
	}

	unassigned := make([]aggregates.UnassignedCandidate, len(leftovers))
	for i, c := range leftovers {
		unassigned[i] = aggregates.UnassignedCandidate{
			UserID:      c.UserID,
			SignupID:    c.SignupID,
			DisplayName: c.DisplayName,
			Email:       c.Email,
		}
	}

	result := &aggregates.EngineResult{
		Squads:       proposals,
		Unassigned:   unassigned,
		TotalPending: totalPending,
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// squadScore is the mean compatibility over all unordered member pairs,
// rounded to 2 decimals. This is recomputed globally rather than reusing
// the seed-relative scores from assembly.
func (r *ResultAggregator) squadScore(squad FormedSquad) float64 {
	var sum float64
	pairs := 0
	for i := 0; i < len(squad.Members); i++ {
		for j := i + 1; j < len(squad.Members); j++ {
			sum += r.scorer.Score(squad.Members[i].Candidate.Profile, squad.Members[j].Candidate.Profile)
			pairs++
		}
	}
	if pairs == 0 {
		return NeutralScore
	}
	return math.Round(sum/float64(pairs)*100) / 100
}

// squadName labels squads "Squad A", "Squad B", ... continuing with
// "Squad AA" past the alphabet.
func squadName(index int) string {
	letters := ""
	n := index
	for {
		letters = string(rune('A'+n%26)) + letters
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return "Squad " + letters
}
