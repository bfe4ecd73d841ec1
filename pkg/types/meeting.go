package types

import "time"

// Meeting represents a scheduled meeting with free-form notes. Action items
// are derived from the text by the engine and replaced wholesale on each
// derivation pass; they are never user-authored.
type Meeting struct {
	ID          string    `json:"id"`           // Unique identifier (format: meeting:<uuid8>)
	OwnerID     string    `json:"owner_id"`     // Opaque owner identifier
	Title       string    `json:"title"`        // Short title
	Text        string    `json:"text"`         // Meeting notes / description / agenda
	ScheduledAt time.Time `json:"scheduled_at"` // When the meeting takes place
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Derived fields (maintained by the engine)
	ActionItems   []string `json:"action_items,omitempty"`    // Derived actionable statements, ordered
	LinkedNoteIDs []string `json:"linked_note_ids,omitempty"` // Notes related by similarity
}

// Content returns the text used for extraction and embedding.
func (m *Meeting) Content() string {
	if m.Title == "" {
		return m.Text
	}
	return m.Title + "\n" + m.Text
}
