package types

import (
	"strings"
	"time"
)

// Person represents a contact owned by a user. The Name field doubles as the
// match key for entity linking: extracted person names are compared against it
// case-insensitively, exact match only.
type Person struct {
	ID        string    `json:"id"`       // Unique identifier (format: person:<uuid8>)
	OwnerID   string    `json:"owner_id"` // Opaque owner identifier
	Name      string    `json:"name"`     // Display name; duplicates resolve to the earliest-created record
	Email     string    `json:"email,omitempty"`
	Company   string    `json:"company,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Linking fields (maintained by the engine)
	LinkedNoteIDs    []string `json:"linked_note_ids,omitempty"`    // Notes that mention this person
	LinkedMeetingIDs []string `json:"linked_meeting_ids,omitempty"` // Meetings that mention this person
}

// MatchKey returns the normalized form of the name used for matching.
func (p *Person) MatchKey() string {
	return strings.ToLower(strings.TrimSpace(p.Name))
}
