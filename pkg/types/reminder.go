package types

import "time"

// Linked entity types for reminders.
const (
	EntityTypeNote    = "note"
	EntityTypePerson  = "person"
	EntityTypeMeeting = "meeting"
)

// Reminder priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Reminder represents a dated follow-up obligation. Reminders are created
// either explicitly by the user or by the engine from meeting action items;
// once created they are owned by the user (completion toggling is external
// to the engine).
type Reminder struct {
	ID               string    `json:"id"`                 // Unique identifier (format: reminder:<uuid8>)
	OwnerID          string    `json:"owner_id"`           // Opaque owner identifier
	Title            string    `json:"title"`              // The actionable statement
	DueDate          time.Time `json:"due_date"`           // Always in the future relative to creation
	Priority         string    `json:"priority"`           // low, medium, high
	LinkedEntityID   string    `json:"linked_entity_id,omitempty"`   // Record this reminder was derived from
	LinkedEntityType string    `json:"linked_entity_type,omitempty"` // note, person, or meeting
	Completed        bool      `json:"completed"`          // Default false
	CreatedAt        time.Time `json:"created_at"`
}
