package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID    ID
	SampleID ID
	EventID  ID
)

// String conversions for domain IDs
func (id RunID) String() string    { return ID(id).String() }
func (id SampleID) String() string { return ID(id).String() }
func (id EventID) String() string  { return ID(id).String() }

// ParseRunID parses a string into RunID. Run IDs are always generated
// UUIDs, so the format is enforced here.
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid run ID %q: %w", s, err)
	}
	return RunID(s), nil
}

// ParseEventID parses a string into EventID
func ParseEventID(s string) (EventID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("event ID cannot be empty")
	}
	return EventID(s), nil
}

// ParseSampleID parses a string into SampleID
func ParseSampleID(s string) (SampleID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("sample ID cannot be empty")
	}
	return SampleID(s), nil
}
