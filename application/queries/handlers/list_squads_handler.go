package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/application/queries"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
	"github.com/OpenClique85/openclique-sub009/pkg/common"
)

// ListSquadsHandler handles ListSquadsQuery
type ListSquadsHandler struct {
	squadWriter ports.SquadWriter
	logger      *zap.Logger
}

// NewListSquadsHandler creates a new handler instance
func NewListSquadsHandler(squadWriter ports.SquadWriter, logger *zap.Logger) *ListSquadsHandler {
	return &ListSquadsHandler{
		squadWriter: squadWriter,
		logger:      logger,
	}
}

// Handle executes the query. The storage layer returns the full set
// for the event; squads per event are bounded by the candidate pool
// cap, so slicing the page in memory is fine.
func (h *ListSquadsHandler) Handle(ctx context.Context, query queries.ListSquadsQuery) (*common.PaginatedResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	eventID, err := valueobjects.NewEventID(query.EventID)
	if err != nil {
		return nil, err
	}

	records, err := h.squadWriter.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	total := len(records)
	offset := query.Pagination.CalculateOffset()
	if offset > total {
		offset = total
	}
	end := offset + query.Pagination.PageSize
	if end > total {
		end = total
	}
	page := records[offset:end]

	h.logger.Debug("Squads listed",
		zap.String("event_id", eventID.String()),
		zap.Int("total", total),
		zap.Int("returned", len(page)),
	)

	return common.NewPaginatedResult(page, query.Pagination.Page, query.Pagination.PageSize, total), nil
}
