package aggregates

import (
	"fmt"
	"time"

	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
	"github.com/OpenClique85/openclique-sub009/domain/events"
)

// SquadMember is one person placed into a squad, with enough display
// fields for an organizer to act on the proposal.
type SquadMember struct {
	UserID      valueobjects.UserID   `json:"user_id"`
	SignupID    valueobjects.SignupID `json:"signup_id"`
	DisplayName string                `json:"display_name"`
	Email       string                `json:"email"`
	// FromReferralCluster marks members placed via cluster protection
	// rather than greedy compatibility fill.
	FromReferralCluster bool `json:"from_referral_cluster"`
}

// SquadProposal is one suggested squad for an event. Proposals are
// ephemeral: they live for a single engine run until an organizer
// confirms one, at which point it becomes a durable squad record.
type SquadProposal struct {
	ID                 valueobjects.SquadID `json:"id"`
	EventID            valueobjects.EventID `json:"event_id"`
	SuggestedName      string               `json:"suggested_name"`
	Members            []SquadMember        `json:"members"`
	CompatibilityScore float64              `json:"compatibility_score"`
	ReferralBonds      int                  `json:"referral_bonds"`
	ProposedAt         time.Time            `json:"proposed_at"`

	uncommittedEvents []events.DomainEvent
}

// NewSquadProposal creates a proposal with a fresh squad ID
func NewSquadProposal(eventID valueobjects.EventID, suggestedName string, members []SquadMember, compatibilityScore float64, referralBonds int) (*SquadProposal, error) {
	if eventID.IsZero() {
		return nil, fmt.Errorf("squad proposal requires an event ID")
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("squad proposal requires at least one member")
	}
	if compatibilityScore < 0 || compatibilityScore > 1 {
		return nil, fmt.Errorf("compatibility score %f out of range", compatibilityScore)
	}
	return &SquadProposal{
		ID:                 valueobjects.GenerateSquadID(),
		EventID:            eventID,
		SuggestedName:      suggestedName,
		Members:            members,
		CompatibilityScore: compatibilityScore,
		ReferralBonds:      referralBonds,
		ProposedAt:         time.Now().UTC(),
	}, nil
}

// Size returns the member count
func (s *SquadProposal) Size() int {
	return len(s.Members)
}

// MemberIDs returns the member user IDs in squad order
func (s *SquadProposal) MemberIDs() []valueobjects.UserID {
	ids := make([]valueobjects.UserID, len(s.Members))
	for i, m := range s.Members {
		ids[i] = m.UserID
	}
	return ids
}

// Confirm marks the proposal accepted and raises SquadConfirmed. The
// caller persists the record and publishes the event.
func (s *SquadProposal) Confirm(name string) error {
	if name == "" {
		name = s.SuggestedName
	}
	s.addEvent(events.NewSquadConfirmed(s.ID, s.EventID, name, s.MemberIDs(), time.Now().UTC()))
	return nil
}

func (s *SquadProposal) addEvent(event events.DomainEvent) {
	s.uncommittedEvents = append(s.uncommittedEvents, event)
}

// GetUncommittedEvents returns events raised since the last clear
func (s *SquadProposal) GetUncommittedEvents() []events.DomainEvent {
	return s.uncommittedEvents
}

// ClearEvents discards the uncommitted event list after publication
func (s *SquadProposal) ClearEvents() {
	s.uncommittedEvents = nil
}

// SquadRecord is the stored summary of a confirmed squad, as listed
// for an event. Member attachments live on the proposal, not here.
type SquadRecord struct {
	ID                 valueobjects.SquadID `json:"id"`
	EventID            valueobjects.EventID `json:"event_id"`
	Name               string               `json:"name"`
	MemberCount        int                  `json:"member_count"`
	CompatibilityScore float64              `json:"compatibility_score"`
	ReferralBonds      int                  `json:"referral_bonds"`
	ConfirmedAt        string               `json:"confirmed_at"`
}

// UnassignedCandidate is a candidate the engine could not place, with
// display fields for manual follow-up.
type UnassignedCandidate struct {
	UserID      valueobjects.UserID   `json:"user_id"`
	SignupID    valueobjects.SignupID `json:"signup_id"`
	DisplayName string                `json:"display_name"`
	Email       string                `json:"email"`
}

// EngineResult is the complete output of one squad-formation run.
// Invariant: TotalPending == sum of squad sizes + len(Unassigned).
type EngineResult struct {
	Squads       []*SquadProposal      `json:"squads"`
	Unassigned   []UnassignedCandidate `json:"unassigned_users"`
	TotalPending int                   `json:"total_pending"`
}

// Validate checks the accounting invariant over the result
func (r *EngineResult) Validate() error {
	assigned := 0
	for _, s := range r.Squads {
		assigned += s.Size()
	}
	if got := assigned + len(r.Unassigned); got != r.TotalPending {
		return fmt.Errorf("engine result accounts for %d candidates but total_pending is %d", got, r.TotalPending)
	}
	return nil
}
