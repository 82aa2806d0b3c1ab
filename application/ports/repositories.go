package ports

import (
	"context"
	"time"

	"github.com/OpenClique85/openclique-sub009/domain/core/aggregates"
	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
	"github.com/OpenClique85/openclique-sub009/domain/events"
)

// SignupRepository provides read access to pending event signups.
// This is a port in hexagonal architecture - the domain doesn't know
// about the implementation.
type SignupRepository interface {
	// GetPendingByEvent retrieves pending signups for an event in a
	// stable order (signup creation order).
	GetPendingByEvent(ctx context.Context, eventID valueobjects.EventID) ([]*entities.CandidateSignup, error)

	// MarkAssigned transitions signups out of pending after a squad is
	// confirmed. Used by the squad writer's transaction, exposed here
	// for callers that manage their own batches.
	MarkAssigned(ctx context.Context, signupIDs []valueobjects.SignupID, squadID valueobjects.SquadID) error
}

// ProfileRepository provides read access to preference profiles.
type ProfileRepository interface {
	// GetByUserIDs retrieves profiles for the given users. Users with
	// no stored profile are simply absent from the result.
	GetByUserIDs(ctx context.Context, userIDs []valueobjects.UserID) (map[valueobjects.UserID]*valueobjects.PreferenceProfile, error)
}

// ReferralRepository provides read access to referral edges.
type ReferralRepository interface {
	// GetByEvent retrieves referral edges recorded for an event, in
	// creation order.
	GetByEvent(ctx context.Context, eventID valueobjects.EventID) ([]entities.ReferralEdge, error)
}

// SquadWriter persists an accepted squad proposal: squad record,
// member attachments, and signup status transitions in one transaction.
// The formation engine never calls this; only the confirm step does.
type SquadWriter interface {
	// SaveConfirmed writes the squad and its members atomically.
	SaveConfirmed(ctx context.Context, proposal *aggregates.SquadProposal) error

	// GetByID retrieves a confirmed squad.
	GetByID(ctx context.Context, squadID valueobjects.SquadID) (*aggregates.SquadProposal, error)

	// ListByEvent retrieves the confirmed squads for an event in
	// confirmation order. Member attachments are not loaded.
	ListByEvent(ctx context.Context, eventID valueobjects.EventID) ([]aggregates.SquadRecord, error)
}

// ConfirmationLock serializes squad confirmations per event so two
// organizers cannot race on the same pending signups.
type ConfirmationLock interface {
	// Acquire takes the lock for the event, or fails fast when another
	// confirmation holds it.
	Acquire(ctx context.Context, eventID valueobjects.EventID, owner string, hold time.Duration) (LockHandle, error)
}

// LockHandle releases an acquired confirmation lock.
type LockHandle interface {
	Release(ctx context.Context) error
}

// NotificationDispatcher informs members after a squad is confirmed.
type NotificationDispatcher interface {
	// NotifySquadConfirmed pushes a confirmation to every member that
	// has an open channel. Missing channels are skipped, not errors.
	NotifySquadConfirmed(ctx context.Context, proposal *aggregates.SquadProposal) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
