package valueobjects

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UserID uniquely identifies a user across the platform.
type UserID struct {
	value string
}

// NewUserID creates a UserID from an existing identifier string
func NewUserID(value string) (UserID, error) {
	if value == "" {
		return UserID{}, fmt.Errorf("user ID cannot be empty")
	}
	return UserID{value: value}, nil
}

// String returns the string representation of the UserID
func (id UserID) String() string {
	return id.value
}

// Equals checks if two UserIDs are equal
func (id UserID) Equals(other UserID) bool {
	return id.value == other.value
}

// IsZero checks if the UserID is zero value
func (id UserID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements JSON marshaling
func (id UserID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements JSON unmarshaling
func (id *UserID) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := NewUserID(value)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// SignupID uniquely identifies a pending event signup.
type SignupID struct {
	value string
}

// NewSignupID creates a SignupID from an existing identifier string
func NewSignupID(value string) (SignupID, error) {
	if value == "" {
		return SignupID{}, fmt.Errorf("signup ID cannot be empty")
	}
	return SignupID{value: value}, nil
}

// GenerateSignupID creates a new random SignupID
func GenerateSignupID() SignupID {
	return SignupID{value: uuid.New().String()}
}

// String returns the string representation of the SignupID
func (id SignupID) String() string {
	return id.value
}

// Equals checks if two SignupIDs are equal
func (id SignupID) Equals(other SignupID) bool {
	return id.value == other.value
}

// IsZero checks if the SignupID is zero value
func (id SignupID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements JSON marshaling
func (id SignupID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// EventID identifies the event whose signups are being grouped.
type EventID struct {
	value string
}

// NewEventID creates an EventID from an existing identifier string
func NewEventID(value string) (EventID, error) {
	if value == "" {
		return EventID{}, fmt.Errorf("event ID cannot be empty")
	}
	return EventID{value: value}, nil
}

// String returns the string representation of the EventID
func (id EventID) String() string {
	return id.value
}

// Equals checks if two EventIDs are equal
func (id EventID) Equals(other EventID) bool {
	return id.value == other.value
}

// IsZero checks if the EventID is zero value
func (id EventID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements JSON marshaling
func (id EventID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// SquadID identifies a proposed or confirmed squad.
type SquadID struct {
	value string
}

// NewSquadID creates a SquadID, validating UUID format
func NewSquadID(value string) (SquadID, error) {
	if value == "" {
		return SquadID{}, fmt.Errorf("squad ID cannot be empty")
	}
	if _, err := uuid.Parse(value); err != nil {
		return SquadID{}, fmt.Errorf("squad ID must be a valid UUID: %w", err)
	}
	return SquadID{value: value}, nil
}

// GenerateSquadID creates a new random SquadID
func GenerateSquadID() SquadID {
	return SquadID{value: uuid.New().String()}
}

// String returns the string representation of the SquadID
func (id SquadID) String() string {
	return id.value
}

// Equals checks if two SquadIDs are equal
func (id SquadID) Equals(other SquadID) bool {
	return id.value == other.value
}

// IsZero checks if the SquadID is zero value
func (id SquadID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements JSON marshaling
func (id SquadID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// ClusterID numbers a connected component of the referral graph.
// IDs are assigned sequentially during graph traversal, so they are
// only meaningful within a single engine run.
type ClusterID int
