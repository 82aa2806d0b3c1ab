package queries

import (
	"errors"

	"github.com/OpenClique85/openclique-sub009/pkg/common"
)

// ListSquadsQuery fetches the confirmed squads for an event, paginated
// in confirmation order.
type ListSquadsQuery struct {
	EventID    string                  `json:"event_id"`
	Pagination common.PaginationParams `json:"pagination"`
}

// Validate validates the query
func (q ListSquadsQuery) Validate() error {
	if q.EventID == "" {
		return errors.New("event ID is required")
	}
	if q.Pagination.Page < 1 {
		return errors.New("page must be at least 1")
	}
	if q.Pagination.PageSize < 1 {
		return errors.New("page size must be at least 1")
	}
	return nil
}
