package entities

import (
	"fmt"

	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

// CandidateSignup is one pending participant for an event. It is a read
// model built from the signup and profile stores; the engine never
// mutates it.
type CandidateSignup struct {
	SignupID    valueobjects.SignupID
	UserID      valueobjects.UserID
	DisplayName string
	Email       string
	Profile     *valueobjects.PreferenceProfile
}

// NewCandidateSignup constructs a candidate, validating identity fields
// and whatever preference data is present.
func NewCandidateSignup(signupID valueobjects.SignupID, userID valueobjects.UserID, displayName, email string, profile *valueobjects.PreferenceProfile) (*CandidateSignup, error) {
	if signupID.IsZero() {
		return nil, fmt.Errorf("candidate requires a signup ID")
	}
	if userID.IsZero() {
		return nil, fmt.Errorf("candidate requires a user ID")
	}
	if profile != nil {
		if err := profile.Validate(); err != nil {
			return nil, fmt.Errorf("invalid preference profile for user %s: %w", userID, err)
		}
	}
	return &CandidateSignup{
		SignupID:    signupID,
		UserID:      userID,
		DisplayName: displayName,
		Email:       email,
		Profile:     profile,
	}, nil
}

// HasProfile reports whether the candidate submitted any preferences
func (c *CandidateSignup) HasProfile() bool {
	return c.Profile != nil && !c.Profile.IsEmpty()
}

// ReferralEdge records that one candidate referred another for this
// event. The relation is treated as undirected when clustering.
type ReferralEdge struct {
	UserA valueobjects.UserID
	UserB valueobjects.UserID
}

// NewReferralEdge constructs an edge, rejecting self-referrals and
// missing endpoints.
func NewReferralEdge(a, b valueobjects.UserID) (ReferralEdge, error) {
	if a.IsZero() || b.IsZero() {
		return ReferralEdge{}, fmt.Errorf("referral edge requires both endpoints")
	}
	if a.Equals(b) {
		return ReferralEdge{}, fmt.Errorf("referral edge cannot be a self-loop: %s", a)
	}
	return ReferralEdge{UserA: a, UserB: b}, nil
}
