package validators

import (
	"github.com/OpenClique85/openclique-sub009/domain/config"
	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
	"github.com/OpenClique85/openclique-sub009/pkg/errors"
)

// PoolValidator checks the candidate pool and referral edges before an
// engine run. Missing preference data is fine (the scorer degrades to
// the neutral default); structurally bad input is not.
type PoolValidator struct {
	maxCandidates int
	maxEdges      int
}

// NewPoolValidator creates a validator from the domain config limits
func NewPoolValidator(cfg *config.DomainConfig) *PoolValidator {
	return &PoolValidator{
		maxCandidates: cfg.MaxCandidatesPerEvent,
		maxEdges:      cfg.MaxReferralEdges,
	}
}

// ValidatePool checks pool size, duplicate users, and per-candidate
// preference values.
func (v *PoolValidator) ValidatePool(pool []*entities.CandidateSignup) error {
	if len(pool) > v.maxCandidates {
		return errors.ErrPoolTooLarge.
			WithDetail("count", len(pool)).
			WithDetail("limit", v.maxCandidates)
	}

	validationErrors := errors.NewValidationErrors()
	seen := make(map[valueobjects.UserID]struct{}, len(pool))
	for _, c := range pool {
		if c.SignupID.IsZero() || c.UserID.IsZero() {
			validationErrors.Add("pool", "candidate is missing signup or user ID")
			continue
		}
		if _, dup := seen[c.UserID]; dup {
			validationErrors.AddError(errors.ErrDuplicateSignup.
				WithDetail("user_id", c.UserID.String()))
			continue
		}
		seen[c.UserID] = struct{}{}

		if c.Profile != nil {
			if err := c.Profile.Validate(); err != nil {
				validationErrors.Add("profile", err.Error())
			}
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}
	return nil
}

// ValidateEdges checks referral edges for missing endpoints and
// self-loops. Edges pointing outside the pool are legal; the graph
// builder drops them silently.
func (v *PoolValidator) ValidateEdges(edges []entities.ReferralEdge) error {
	if len(edges) > v.maxEdges {
		return errors.ErrPoolTooLarge.
			WithDetail("edge_count", len(edges)).
			WithDetail("limit", v.maxEdges)
	}

	for i, e := range edges {
		if e.UserA.IsZero() || e.UserB.IsZero() {
			return errors.ErrMalformedReferralEdge.WithDetail("index", i)
		}
		if e.UserA.Equals(e.UserB) {
			return errors.ErrMalformedReferralEdge.
				WithDetail("index", i).
				WithDetail("user_id", e.UserA.String())
		}
	}
	return nil
}

// ValidateSquadSize checks a requested squad size against config bounds
func (v *PoolValidator) ValidateSquadSize(size int, cfg *config.DomainConfig) error {
	if size < cfg.MinSquadSize || size > cfg.MaxSquadSize {
		return errors.ErrInvalidSquadSize.
			WithDetail("requested", size).
			WithDetail("min", cfg.MinSquadSize).
			WithDetail("max", cfg.MaxSquadSize)
	}
	return nil
}
