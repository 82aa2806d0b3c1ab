package queries

import "errors"

// GetSquadQuery fetches one confirmed squad with its members
type GetSquadQuery struct {
	SquadID string `json:"squad_id"`
}

// Validate validates the query
func (q GetSquadQuery) Validate() error {
	if q.SquadID == "" {
		return errors.New("squad ID is required")
	}
	return nil
}
