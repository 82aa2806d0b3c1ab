package events

import (
	"time"

	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Matching Events

// SquadsProposed is raised when an engine run produces a set of squad
// proposals for an event.
type SquadsProposed struct {
	BaseEvent
	EventID         valueobjects.EventID `json:"event_id"`
	SquadCount      int                  `json:"squad_count"`
	UnassignedCount int                  `json:"unassigned_count"`
	TotalPending    int                  `json:"total_pending"`
}

// NewSquadsProposed creates a SquadsProposed event
func NewSquadsProposed(eventID valueobjects.EventID, squadCount, unassignedCount, totalPending int, timestamp time.Time) SquadsProposed {
	return SquadsProposed{
		BaseEvent: BaseEvent{
			AggregateID: eventID.String(),
			EventType:   "squads.proposed",
			Timestamp:   timestamp,
			Version:     1,
		},
		EventID:         eventID,
		SquadCount:      squadCount,
		UnassignedCount: unassignedCount,
		TotalPending:    totalPending,
	}
}

// SquadConfirmed is raised when an organizer accepts a proposal and the
// squad becomes a durable record.
type SquadConfirmed struct {
	BaseEvent
	SquadID   valueobjects.SquadID  `json:"squad_id"`
	EventID   valueobjects.EventID  `json:"event_id"`
	Name      string                `json:"name"`
	MemberIDs []valueobjects.UserID `json:"member_ids"`
}

// NewSquadConfirmed creates a SquadConfirmed event
func NewSquadConfirmed(squadID valueobjects.SquadID, eventID valueobjects.EventID, name string, memberIDs []valueobjects.UserID, timestamp time.Time) SquadConfirmed {
	return SquadConfirmed{
		BaseEvent: BaseEvent{
			AggregateID: squadID.String(),
			EventType:   "squad.confirmed",
			Timestamp:   timestamp,
			Version:     1,
		},
		SquadID:   squadID,
		EventID:   eventID,
		Name:      name,
		MemberIDs: memberIDs,
	}
}

// SquadMemberNotified is raised after the dispatcher delivers a
// confirmation push to a member.
type SquadMemberNotified struct {
	BaseEvent
	SquadID valueobjects.SquadID `json:"squad_id"`
	UserID  valueobjects.UserID  `json:"user_id"`
	Channel string               `json:"channel"`
}

// NewSquadMemberNotified creates a SquadMemberNotified event
func NewSquadMemberNotified(squadID valueobjects.SquadID, userID valueobjects.UserID, channel string, timestamp time.Time) SquadMemberNotified {
	return SquadMemberNotified{
		BaseEvent: BaseEvent{
			AggregateID: squadID.String(),
			EventType:   "squad.member_notified",
			Timestamp:   timestamp,
			Version:     1,
		},
		SquadID: squadID,
		UserID:  userID,
		Channel: channel,
	}
}
