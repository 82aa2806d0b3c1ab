package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/domain/core/aggregates"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
	"github.com/OpenClique85/openclique-sub009/domain/events"
)

// ConfirmSquadCommand accepts one engine proposal and makes it durable:
// squad record, member attachments, signup status transitions, event
// publication, and member notification. This is the confirmation step
// that lives outside the formation engine.
type ConfirmSquadCommand struct {
	EventID            string                   `json:"event_id" validate:"required"`
	SquadID            string                   `json:"squad_id" validate:"omitempty,uuid"`
	Name               string                   `json:"name" validate:"max=100"`
	SuggestedName      string                   `json:"suggested_name"`
	Members            []aggregates.SquadMember `json:"members" validate:"required,min=1"`
	CompatibilityScore float64                  `json:"compatibility_score"`
	ReferralBonds      int                      `json:"referral_bonds"`
}

// Validate validates the command
func (cmd ConfirmSquadCommand) Validate() error {
	if cmd.EventID == "" {
		return errors.New("event ID is required")
	}
	if len(cmd.Members) == 0 {
		return errors.New("squad must have at least one member")
	}
	if cmd.CompatibilityScore < 0 || cmd.CompatibilityScore > 1 {
		return errors.New("compatibility score must be between 0 and 1")
	}
	return nil
}

// confirmationHold bounds how long one confirmation can hold the
// per-event lock before an expired lock becomes reclaimable.
const confirmationHold = 30 * time.Second

// ConfirmSquadHandler handles the ConfirmSquadCommand
type ConfirmSquadHandler struct {
	squadWriter ports.SquadWriter
	lock        ports.ConfirmationLock
	eventBus    ports.EventBus
	dispatcher  ports.NotificationDispatcher
	logger      *zap.Logger
}

// NewConfirmSquadHandler creates a new handler instance
func NewConfirmSquadHandler(
	squadWriter ports.SquadWriter,
	lock ports.ConfirmationLock,
	eventBus ports.EventBus,
	dispatcher ports.NotificationDispatcher,
	logger *zap.Logger,
) *ConfirmSquadHandler {
	return &ConfirmSquadHandler{
		squadWriter: squadWriter,
		lock:        lock,
		eventBus:    eventBus,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// Handle executes the confirm squad command
func (h *ConfirmSquadHandler) Handle(ctx context.Context, cmd ConfirmSquadCommand) (*aggregates.SquadProposal, error) {
	eventID, err := valueobjects.NewEventID(cmd.EventID)
	if err != nil {
		return nil, err
	}

	suggestedName := cmd.SuggestedName
	if suggestedName == "" {
		suggestedName = cmd.Name
	}

	proposal, err := aggregates.NewSquadProposal(
		eventID,
		suggestedName,
		cmd.Members,
		cmd.CompatibilityScore,
		cmd.ReferralBonds,
	)
	if err != nil {
		return nil, err
	}

	// Reuse the proposal ID from the formation run when the caller
	// supplies one, so the confirmed squad keeps the proposed identity.
	if cmd.SquadID != "" {
		id, err := valueobjects.NewSquadID(cmd.SquadID)
		if err != nil {
			return nil, err
		}
		proposal.ID = id
	}

	if err := proposal.Confirm(cmd.Name); err != nil {
		return nil, err
	}

	// One confirmation per event at a time. Concurrent confirmations
	// could both pass validation and then race on the same pending
	// signups inside the write transaction.
	handle, err := h.lock.Acquire(ctx, eventID, proposal.ID.String(), confirmationHold)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := handle.Release(ctx); releaseErr != nil {
			h.logger.Warn("Failed to release confirmation lock",
				zap.String("event_id", eventID.String()),
				zap.Error(releaseErr),
			)
		}
	}()

	if err := h.squadWriter.SaveConfirmed(ctx, proposal); err != nil {
		return nil, err
	}

	if err := h.eventBus.PublishBatch(ctx, proposal.GetUncommittedEvents()); err != nil {
		// Events can be replayed from the squad record; the write
		// already succeeded, so don't fail the confirmation.
		h.logger.Warn("Failed to publish squad events",
			zap.String("squad_id", proposal.ID.String()),
			zap.Error(err),
		)
	}
	proposal.ClearEvents()

	if err := h.dispatcher.NotifySquadConfirmed(ctx, proposal); err != nil {
		h.logger.Warn("Failed to notify squad members",
			zap.String("squad_id", proposal.ID.String()),
			zap.Error(err),
		)
	} else {
		now := time.Now().UTC()
		notified := make([]events.DomainEvent, 0, proposal.Size())
		for _, userID := range proposal.MemberIDs() {
			notified = append(notified, events.NewSquadMemberNotified(proposal.ID, userID, "websocket", now))
		}
		if err := h.eventBus.PublishBatch(ctx, notified); err != nil {
			h.logger.Warn("Failed to publish member notification events",
				zap.String("squad_id", proposal.ID.String()),
				zap.Error(err),
			)
		}
	}

	h.logger.Info("Squad confirmed",
		zap.String("squad_id", proposal.ID.String()),
		zap.String("event_id", eventID.String()),
		zap.Int("members", proposal.Size()),
	)

	return proposal, nil
}
