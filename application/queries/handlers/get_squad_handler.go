package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/application/queries"
	"github.com/OpenClique85/openclique-sub009/domain/core/aggregates"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

// GetSquadHandler handles GetSquadQuery
type GetSquadHandler struct {
	squadWriter ports.SquadWriter
	logger      *zap.Logger
}

// NewGetSquadHandler creates a new handler instance
func NewGetSquadHandler(squadWriter ports.SquadWriter, logger *zap.Logger) *GetSquadHandler {
	return &GetSquadHandler{
		squadWriter: squadWriter,
		logger:      logger,
	}
}

// Handle executes the query
func (h *GetSquadHandler) Handle(ctx context.Context, query queries.GetSquadQuery) (*aggregates.SquadProposal, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	squadID, err := valueobjects.NewSquadID(query.SquadID)
	if err != nil {
		return nil, err
	}

	squad, err := h.squadWriter.GetByID(ctx, squadID)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("Squad retrieved",
		zap.String("squad_id", squadID.String()),
		zap.Int("members", squad.Size()),
	)
	return squad, nil
}
