package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pgvector/pgvector-go"

	"github.com/loomknot/loom/internal/storage"
	"github.com/loomknot/loom/pkg/types"
)

// Store implements storage.Store using PostgreSQL with pgvector.
type Store struct {
	db *sql.DB
}

// NewStore connects to PostgreSQL and creates the schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Notes
// ---------------------------------------------------------------------------

// StoreNote creates or updates a note.
func (s *Store) StoreNote(ctx context.Context, note *types.Note) error {
	if note.ID == "" || note.OwnerID == "" {
		return storage.ErrInvalidInput
	}

	tagsJSON, err := json.Marshal(noteTags(note))
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO notes (id, owner_id, title, body, tags, embedding, embedding_model, embedding_dimension, content_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			tags = EXCLUDED.tags,
			embedding = EXCLUDED.embedding,
			embedding_model = EXCLUDED.embedding_model,
			embedding_dimension = EXCLUDED.embedding_dimension,
			content_hash = EXCLUDED.content_hash,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, query,
		note.ID, note.OwnerID, note.Title, note.Text, string(tagsJSON),
		embeddingValue(note.Embedding), note.EmbeddingModel, note.EmbeddingDimension,
		note.ContentHash, note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store note: %w", err)
	}
	return nil
}

// GetNote retrieves a note by ID with link collections populated.
func (s *Store) GetNote(ctx context.Context, id string) (*types.Note, error) {
	query := `
		SELECT id, owner_id, title, body, tags, embedding, embedding_model, embedding_dimension, content_hash, created_at, updated_at
		FROM notes WHERE id = $1
	`
	note, err := scanNote(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	note.LinkedRecordIDs, err = s.queryIDs(ctx, `
		SELECT related_id FROM note_links WHERE note_id = $1
		UNION
		SELECT note_id FROM note_links WHERE related_id = $2
	`, id, id)
	if err != nil {
		return nil, err
	}

	note.LinkedPersonIDs, err = s.queryIDs(ctx,
		`SELECT person_id FROM note_people WHERE note_id = $1 ORDER BY person_id`, id)
	if err != nil {
		return nil, err
	}

	return note, nil
}

// RecentNotes returns the bounded candidate window for similarity matching.
func (s *Store) RecentNotes(ctx context.Context, ownerID string, limit int, excludeID string) ([]types.Note, error) {
	limit = storage.NormalizeLimit(limit)
	query := `
		SELECT id, owner_id, title, body, tags, embedding, embedding_model, embedding_dimension, content_hash, created_at, updated_at
		FROM notes
		WHERE owner_id = $1 AND id != $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	return s.queryNotes(ctx, query, ownerID, excludeID, limit)
}

// NotesInWindow returns the owner's notes created in [start, end], oldest first.
func (s *Store) NotesInWindow(ctx context.Context, ownerID string, start, end time.Time) ([]types.Note, error) {
	query := `
		SELECT id, owner_id, title, body, tags, embedding, embedding_model, embedding_dimension, content_hash, created_at, updated_at
		FROM notes
		WHERE owner_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at ASC, id ASC
	`
	return s.queryNotes(ctx, query, ownerID, start, end)
}

// SetNoteEmbedding stores the embedding vector and content hash for a note.
func (s *Store) SetNoteEmbedding(ctx context.Context, id string, embedding []float32, model string, contentHash string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notes
		SET embedding = $1, embedding_model = $2, embedding_dimension = $3, content_hash = $4, updated_at = $5
		WHERE id = $6
	`, embeddingValue(embedding), model, len(embedding), contentHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set note embedding: %w", err)
	}
	return requireRowAffected(result)
}

// LinkNotes records an undirected similarity link between two notes. The edge
// is stored once with the lower ID first.
func (s *Store) LinkNotes(ctx context.Context, noteID, relatedID string) error {
	if noteID == "" || relatedID == "" || noteID == relatedID {
		return storage.ErrInvalidInput
	}
	a, b := noteID, relatedID
	if b < a {
		a, b = b, a
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO note_links (note_id, related_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, a, b, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to link notes: %w", err)
	}
	return nil
}

// LinkNotePerson records that a note mentions a person.
func (s *Store) LinkNotePerson(ctx context.Context, noteID, personID string) error {
	if noteID == "" || personID == "" {
		return storage.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO note_people (note_id, person_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, noteID, personID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to link note to person: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// People
// ---------------------------------------------------------------------------

// StorePerson creates or updates a person.
func (s *Store) StorePerson(ctx context.Context, person *types.Person) error {
	if person.ID == "" || person.OwnerID == "" || person.Name == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO people (id, owner_id, name, email, company, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			company = EXCLUDED.company,
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now().UTC()
	if person.CreatedAt.IsZero() {
		person.CreatedAt = now
	}
	person.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, query,
		person.ID, person.OwnerID, person.Name, person.Email, person.Company,
		person.Role, person.CreatedAt, person.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store person: %w", err)
	}
	return nil
}

// GetPerson retrieves a person by ID with link collections populated.
func (s *Store) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	query := `SELECT id, owner_id, name, email, company, role, created_at, updated_at FROM people WHERE id = $1`

	person := &types.Person{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&person.ID, &person.OwnerID, &person.Name, &person.Email,
		&person.Company, &person.Role, &person.CreatedAt, &person.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}

	person.LinkedNoteIDs, err = s.queryIDs(ctx,
		`SELECT note_id FROM note_people WHERE person_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	person.LinkedMeetingIDs, err = s.queryIDs(ctx,
		`SELECT meeting_id FROM meeting_people WHERE person_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}

	return person, nil
}

// FindPersonByName returns the owner's person whose name matches exactly,
// case-insensitive. Duplicate names resolve to the earliest-created record.
func (s *Store) FindPersonByName(ctx context.Context, ownerID, name string) (*types.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, storage.ErrNotFound
	}

	query := `
		SELECT id FROM people
		WHERE owner_id = $1 AND LOWER(name) = LOWER($2)
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	var id string
	err := s.db.QueryRowContext(ctx, query, ownerID, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find person by name: %w", err)
	}
	return s.GetPerson(ctx, id)
}

// ---------------------------------------------------------------------------
// Meetings
// ---------------------------------------------------------------------------

// StoreMeeting creates or updates a meeting.
func (s *Store) StoreMeeting(ctx context.Context, meeting *types.Meeting) error {
	if meeting.ID == "" || meeting.OwnerID == "" {
		return storage.ErrInvalidInput
	}

	itemsJSON, err := json.Marshal(meetingItems(meeting))
	if err != nil {
		return fmt.Errorf("failed to marshal action items: %w", err)
	}

	query := `
		INSERT INTO meetings (id, owner_id, title, body, scheduled_at, action_items, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			scheduled_at = EXCLUDED.scheduled_at,
			action_items = EXCLUDED.action_items,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now().UTC()
	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = now
	}
	meeting.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, query,
		meeting.ID, meeting.OwnerID, meeting.Title, meeting.Text,
		meeting.ScheduledAt, string(itemsJSON), meeting.CreatedAt, meeting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store meeting: %w", err)
	}
	return nil
}

// GetMeeting retrieves a meeting by ID with link collections populated.
func (s *Store) GetMeeting(ctx context.Context, id string) (*types.Meeting, error) {
	query := `SELECT id, owner_id, title, body, scheduled_at, action_items, created_at, updated_at FROM meetings WHERE id = $1`

	meeting := &types.Meeting{}
	var itemsJSON string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&meeting.ID, &meeting.OwnerID, &meeting.Title, &meeting.Text,
		&meeting.ScheduledAt, &itemsJSON, &meeting.CreatedAt, &meeting.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &meeting.ActionItems); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action items: %w", err)
	}

	meeting.LinkedNoteIDs, err = s.queryIDs(ctx,
		`SELECT note_id FROM meeting_notes WHERE meeting_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}

	return meeting, nil
}

// RecentMeetings returns up to limit meetings for the owner, newest first.
func (s *Store) RecentMeetings(ctx context.Context, ownerID string, limit int, excludeID string) ([]types.Meeting, error) {
	limit = storage.NormalizeLimit(limit)
	query := `
		SELECT id FROM meetings
		WHERE owner_id = $1 AND id != $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	ids, err := s.queryIDs(ctx, query, ownerID, excludeID, limit)
	if err != nil {
		return nil, err
	}
	return s.meetingsByID(ctx, ids)
}

// MeetingsInWindow returns the owner's meetings scheduled in [start, end], oldest first.
func (s *Store) MeetingsInWindow(ctx context.Context, ownerID string, start, end time.Time) ([]types.Meeting, error) {
	query := `
		SELECT id FROM meetings
		WHERE owner_id = $1 AND scheduled_at >= $2 AND scheduled_at <= $3
		ORDER BY scheduled_at ASC, id ASC
	`
	ids, err := s.queryIDs(ctx, query, ownerID, start, end)
	if err != nil {
		return nil, err
	}
	return s.meetingsByID(ctx, ids)
}

// ReplaceActionItems overwrites the meeting's derived action items wholesale.
func (s *Store) ReplaceActionItems(ctx context.Context, meetingID string, items []string) error {
	if items == nil {
		items = []string{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal action items: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE meetings SET action_items = $1, updated_at = $2 WHERE id = $3`,
		string(itemsJSON), time.Now().UTC(), meetingID)
	if err != nil {
		return fmt.Errorf("failed to replace action items: %w", err)
	}
	return requireRowAffected(result)
}

// LinkMeetingNote records a similarity link between a meeting and a note.
func (s *Store) LinkMeetingNote(ctx context.Context, meetingID, noteID string) error {
	if meetingID == "" || noteID == "" {
		return storage.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meeting_notes (meeting_id, note_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, meetingID, noteID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to link meeting to note: %w", err)
	}
	return nil
}

// LinkMeetingPerson records that a meeting mentions a person.
func (s *Store) LinkMeetingPerson(ctx context.Context, meetingID, personID string) error {
	if meetingID == "" || personID == "" {
		return storage.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meeting_people (meeting_id, person_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, meetingID, personID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to link meeting to person: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reminders
// ---------------------------------------------------------------------------

// StoreReminder creates or updates a reminder.
func (s *Store) StoreReminder(ctx context.Context, reminder *types.Reminder) error {
	if reminder.ID == "" || reminder.OwnerID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO reminders (id, owner_id, title, due_date, priority, linked_entity_id, linked_entity_type, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			due_date = EXCLUDED.due_date,
			priority = EXCLUDED.priority,
			completed = EXCLUDED.completed
	`
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		reminder.ID, reminder.OwnerID, reminder.Title, reminder.DueDate,
		reminder.Priority, reminder.LinkedEntityID, reminder.LinkedEntityType,
		reminder.Completed, reminder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store reminder: %w", err)
	}
	return nil
}

// ListReminders returns the owner's reminders ordered by due date.
func (s *Store) ListReminders(ctx context.Context, ownerID string) ([]types.Reminder, error) {
	query := `
		SELECT id, owner_id, title, due_date, priority, linked_entity_id, linked_entity_type, completed, created_at
		FROM reminders WHERE owner_id = $1
		ORDER BY due_date ASC, id ASC
	`
	return s.queryReminders(ctx, query, ownerID)
}

// RemindersForEntity returns the reminders linked to a specific record.
func (s *Store) RemindersForEntity(ctx context.Context, entityType, entityID string) ([]types.Reminder, error) {
	query := `
		SELECT id, owner_id, title, due_date, priority, linked_entity_id, linked_entity_type, completed, created_at
		FROM reminders WHERE linked_entity_type = $1 AND linked_entity_id = $2
		ORDER BY created_at ASC, id ASC
	`
	return s.queryReminders(ctx, query, entityType, entityID)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner) (*types.Note, error) {
	note := &types.Note{}
	var tagsJSON string
	var embedding pgvector.Vector
	var hasEmbedding sql.NullString

	// pgvector scans through its text representation; a NULL column needs
	// the NullString indirection before decoding.
	err := row.Scan(
		&note.ID, &note.OwnerID, &note.Title, &note.Text, &tagsJSON,
		&hasEmbedding, &note.EmbeddingModel, &note.EmbeddingDimension,
		&note.ContentHash, &note.CreatedAt, &note.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}

	if err := json.Unmarshal([]byte(tagsJSON), &note.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if hasEmbedding.Valid && hasEmbedding.String != "" {
		if err := embedding.Scan([]byte(hasEmbedding.String)); err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
		note.Embedding = embedding.Slice()
	}
	return note, nil
}

func (s *Store) queryNotes(ctx context.Context, query string, args ...interface{}) ([]types.Note, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []types.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *note)
	}
	return notes, rows.Err()
}

func (s *Store) meetingsByID(ctx context.Context, ids []string) ([]types.Meeting, error) {
	meetings := make([]types.Meeting, 0, len(ids))
	for _, id := range ids {
		meeting, err := s.GetMeeting(ctx, id)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, *meeting)
	}
	return meetings, nil
}

func (s *Store) queryReminders(ctx context.Context, query string, args ...interface{}) ([]types.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []types.Reminder
	for rows.Next() {
		var r types.Reminder
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Title, &r.DueDate, &r.Priority,
			&r.LinkedEntityID, &r.LinkedEntityType, &r.Completed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

func (s *Store) queryIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func embeddingValue(embedding []float32) interface{} {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}

func requireRowAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func noteTags(note *types.Note) []string {
	if note.Tags == nil {
		return []string{}
	}
	return note.Tags
}

func meetingItems(meeting *types.Meeting) []string {
	if meeting.ActionItems == nil {
		return []string{}
	}
	return meeting.ActionItems
}

var _ storage.Store = (*Store)(nil)
