package queries

import (
	"errors"

	"github.com/OpenClique85/openclique-sub009/domain/core/aggregates"
)

// ProposeSquadsQuery asks the engine to partition an event's pending
// signups into squad proposals. It is a pure read: nothing is persisted
// and re-asking with identical upstream data yields an identical result.
type ProposeSquadsQuery struct {
	EventID             string
	SquadSize           int
	PrioritizeReferrals bool
}

// Validate validates the ProposeSquadsQuery
func (q ProposeSquadsQuery) Validate() error {
	if q.EventID == "" {
		return errors.New("event ID is required")
	}
	if q.SquadSize < 0 {
		return errors.New("squad size cannot be negative")
	}
	return nil
}

// ProposeSquadsResult is the engine output returned to the caller.
// Message is populated, and Squads empty, when there are no pending
// candidates.
type ProposeSquadsResult struct {
	Success         bool                             `json:"success"`
	Squads          []*aggregates.SquadProposal      `json:"squads"`
	UnassignedUsers []aggregates.UnassignedCandidate `json:"unassigned_users"`
	TotalPending    int                              `json:"total_pending"`
	Message         string                           `json:"message,omitempty"`
}
