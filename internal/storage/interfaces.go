// Package storage provides composable storage interfaces for Loom.
//
// The storage layer is designed with small, focused interfaces that can be
// implemented independently and composed as needed. Link operations use
// atomic add-to-set semantics: re-linking the same pair of records is a
// no-op, which is what makes the linking pipeline safely re-runnable.
package storage

import (
	"context"
	"time"

	"github.com/loomknot/loom/pkg/types"
)

// NoteStore provides persistence for notes and note links.
type NoteStore interface {
	// StoreNote creates or updates a note (upsert semantics).
	StoreNote(ctx context.Context, note *types.Note) error

	// GetNote retrieves a note by ID with its link collections populated.
	// Returns ErrNotFound if the note doesn't exist.
	GetNote(ctx context.Context, id string) (*types.Note, error)

	// RecentNotes returns up to limit notes for the owner, newest first,
	// excluding excludeID. This is the bounded candidate window for
	// similarity matching; embeddings are included when present.
	RecentNotes(ctx context.Context, ownerID string, limit int, excludeID string) ([]types.Note, error)

	// NotesInWindow returns the owner's notes created in [start, end],
	// oldest first.
	NotesInWindow(ctx context.Context, ownerID string, start, end time.Time) ([]types.Note, error)

	// SetNoteEmbedding stores the embedding vector and content hash for a
	// note. Returns ErrNotFound if the note doesn't exist.
	SetNoteEmbedding(ctx context.Context, id string, embedding []float32, model string, contentHash string) error

	// LinkNotes records a similarity link between two notes. The link is a
	// single undirected edge: both notes discover each other through it.
	// Re-linking an existing pair is a no-op.
	LinkNotes(ctx context.Context, noteID, relatedID string) error

	// LinkNotePerson records that a note mentions a person. The edge is
	// visible from both sides (note.LinkedPersonIDs and person.LinkedNoteIDs).
	// Re-linking an existing pair is a no-op.
	LinkNotePerson(ctx context.Context, noteID, personID string) error
}

// PersonStore provides persistence for people.
type PersonStore interface {
	// StorePerson creates or updates a person (upsert semantics).
	StorePerson(ctx context.Context, person *types.Person) error

	// GetPerson retrieves a person by ID with link collections populated.
	// Returns ErrNotFound if the person doesn't exist.
	GetPerson(ctx context.Context, id string) (*types.Person, error)

	// FindPersonByName returns the owner's person whose name matches exactly
	// (case-insensitive). When duplicate names exist, the earliest-created
	// record wins. Returns ErrNotFound when no name matches.
	FindPersonByName(ctx context.Context, ownerID, name string) (*types.Person, error)
}

// MeetingStore provides persistence for meetings and meeting links.
type MeetingStore interface {
	// StoreMeeting creates or updates a meeting (upsert semantics).
	StoreMeeting(ctx context.Context, meeting *types.Meeting) error

	// GetMeeting retrieves a meeting by ID with link collections populated.
	// Returns ErrNotFound if the meeting doesn't exist.
	GetMeeting(ctx context.Context, id string) (*types.Meeting, error)

	// RecentMeetings returns up to limit meetings for the owner, newest
	// first, excluding excludeID.
	RecentMeetings(ctx context.Context, ownerID string, limit int, excludeID string) ([]types.Meeting, error)

	// MeetingsInWindow returns the owner's meetings scheduled in
	// [start, end], oldest first.
	MeetingsInWindow(ctx context.Context, ownerID string, start, end time.Time) ([]types.Meeting, error)

	// ReplaceActionItems overwrites the meeting's derived action items
	// wholesale. Returns ErrNotFound if the meeting doesn't exist.
	ReplaceActionItems(ctx context.Context, meetingID string, items []string) error

	// LinkMeetingNote records a similarity link between a meeting and a
	// note, visible from both sides. Re-linking an existing pair is a no-op.
	LinkMeetingNote(ctx context.Context, meetingID, noteID string) error

	// LinkMeetingPerson records that a meeting mentions a person, visible
	// from both sides. Re-linking an existing pair is a no-op.
	LinkMeetingPerson(ctx context.Context, meetingID, personID string) error
}

// ReminderStore provides persistence for reminders.
type ReminderStore interface {
	// StoreReminder creates or updates a reminder (upsert semantics).
	StoreReminder(ctx context.Context, reminder *types.Reminder) error

	// ListReminders returns the owner's reminders ordered by due date.
	ListReminders(ctx context.Context, ownerID string) ([]types.Reminder, error)

	// RemindersForEntity returns the reminders linked to a specific record,
	// ordered by creation time.
	RemindersForEntity(ctx context.Context, entityType, entityID string) ([]types.Reminder, error)
}

// Store composes all record stores behind one backend.
type Store interface {
	NoteStore
	PersonStore
	MeetingStore
	ReminderStore

	// Close releases any resources held by the store.
	Close() error
}
