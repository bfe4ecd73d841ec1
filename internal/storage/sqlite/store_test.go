package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomknot/loom/internal/storage"
	"github.com/loomknot/loom/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNoteRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	note := &types.Note{
		ID: "note:1", OwnerID: "owner1", Title: "Groceries",
		Text: "buy milk", Tags: []string{"errand"},
		Embedding: []float32{0.1, 0.2, 0.3},
	}
	require.NoError(t, store.StoreNote(ctx, note))

	got, err := store.GetNote(ctx, "note:1")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Title)
	assert.Equal(t, []string{"errand"}, got.Tags)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got.Embedding)
}

func TestNoteUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	note := &types.Note{ID: "note:1", OwnerID: "owner1", Title: "v1", Text: "first"}
	require.NoError(t, store.StoreNote(ctx, note))
	created := note.CreatedAt

	note.Title = "v2"
	require.NoError(t, store.StoreNote(ctx, note))

	got, err := store.GetNote(ctx, "note:1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)
	assert.WithinDuration(t, created, got.CreatedAt, time.Second)
}

func TestGetNoteNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetNote(context.Background(), "note:missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLinkNotesUndirectedAndIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"note:a", "note:b"} {
		require.NoError(t, store.StoreNote(ctx, &types.Note{ID: id, OwnerID: "owner1", Text: id}))
	}

	// Same edge written repeatedly and from both directions.
	require.NoError(t, store.LinkNotes(ctx, "note:a", "note:b"))
	require.NoError(t, store.LinkNotes(ctx, "note:a", "note:b"))
	require.NoError(t, store.LinkNotes(ctx, "note:b", "note:a"))

	a, err := store.GetNote(ctx, "note:a")
	require.NoError(t, err)
	assert.Equal(t, []string{"note:b"}, a.LinkedRecordIDs)

	b, err := store.GetNote(ctx, "note:b")
	require.NoError(t, err)
	assert.Equal(t, []string{"note:a"}, b.LinkedRecordIDs)
}

func TestLinkNotesRejectsSelfLink(t *testing.T) {
	store := newTestStore(t)
	err := store.LinkNotes(context.Background(), "note:a", "note:a")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestRecentNotesWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"note:old", "note:mid", "note:new"} {
		note := &types.Note{ID: id, OwnerID: "owner1", Text: id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, store.StoreNote(ctx, note))
	}
	require.NoError(t, store.StoreNote(ctx, &types.Note{ID: "note:other", OwnerID: "owner2", Text: "x"}))

	notes, err := store.RecentNotes(ctx, "owner1", 2, "note:new")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "note:mid", notes[0].ID)
	assert.Equal(t, "note:old", notes[1].ID)
}

func TestSetNoteEmbedding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreNote(ctx, &types.Note{ID: "note:1", OwnerID: "owner1", Text: "x"}))
	require.NoError(t, store.SetNoteEmbedding(ctx, "note:1", []float32{1, 2}, "test-model", "hash1"))

	got, err := store.GetNote(ctx, "note:1")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, got.Embedding)
	assert.Equal(t, "test-model", got.EmbeddingModel)
	assert.Equal(t, 2, got.EmbeddingDimension)
	assert.Equal(t, "hash1", got.ContentHash)

	err = store.SetNoteEmbedding(ctx, "note:missing", []float32{1}, "m", "h")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindPersonByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := &types.Person{ID: "person:1", OwnerID: "owner1", Name: "John Smith",
		CreatedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &types.Person{ID: "person:2", OwnerID: "owner1", Name: "john smith"}
	require.NoError(t, store.StorePerson(ctx, older))
	require.NoError(t, store.StorePerson(ctx, newer))

	// Case-insensitive, earliest created wins for duplicate names.
	got, err := store.FindPersonByName(ctx, "owner1", "JOHN SMITH")
	require.NoError(t, err)
	assert.Equal(t, "person:1", got.ID)

	_, err = store.FindPersonByName(ctx, "owner1", "Nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.FindPersonByName(ctx, "owner2", "John Smith")
	assert.ErrorIs(t, err, storage.ErrNotFound, "lookups must be owner-scoped")
}

func TestMeetingActionItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meeting := &types.Meeting{
		ID: "meeting:1", OwnerID: "owner1", Title: "Sync",
		ScheduledAt: time.Now().UTC(), ActionItems: []string{"old"},
	}
	require.NoError(t, store.StoreMeeting(ctx, meeting))

	require.NoError(t, store.ReplaceActionItems(ctx, "meeting:1", []string{"new a", "new b"}))

	got, err := store.GetMeeting(ctx, "meeting:1")
	require.NoError(t, err)
	assert.Equal(t, []string{"new a", "new b"}, got.ActionItems)

	require.NoError(t, store.ReplaceActionItems(ctx, "meeting:1", nil))
	got, err = store.GetMeeting(ctx, "meeting:1")
	require.NoError(t, err)
	assert.Empty(t, got.ActionItems)

	err = store.ReplaceActionItems(ctx, "meeting:missing", []string{"x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMeetingPersonLinksVisibleFromBothSides(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreMeeting(ctx, &types.Meeting{
		ID: "meeting:1", OwnerID: "owner1", ScheduledAt: time.Now().UTC(), Title: "1:1"}))
	require.NoError(t, store.StorePerson(ctx, &types.Person{
		ID: "person:1", OwnerID: "owner1", Name: "Sarah"}))

	require.NoError(t, store.LinkMeetingPerson(ctx, "meeting:1", "person:1"))
	require.NoError(t, store.LinkMeetingPerson(ctx, "meeting:1", "person:1"))

	person, err := store.GetPerson(ctx, "person:1")
	require.NoError(t, err)
	assert.Equal(t, []string{"meeting:1"}, person.LinkedMeetingIDs)
}

func TestReminders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	later := &types.Reminder{
		ID: "reminder:2", OwnerID: "owner1", Title: "later",
		DueDate: time.Now().UTC().Add(48 * time.Hour), Priority: types.PriorityLow,
	}
	sooner := &types.Reminder{
		ID: "reminder:1", OwnerID: "owner1", Title: "sooner",
		DueDate: time.Now().UTC().Add(24 * time.Hour), Priority: types.PriorityHigh,
		LinkedEntityID: "meeting:1", LinkedEntityType: types.EntityTypeMeeting,
	}
	require.NoError(t, store.StoreReminder(ctx, later))
	require.NoError(t, store.StoreReminder(ctx, sooner))

	all, err := store.ListReminders(ctx, "owner1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "sooner", all[0].Title)

	linked, err := store.RemindersForEntity(ctx, types.EntityTypeMeeting, "meeting:1")
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "reminder:1", linked[0].ID)
}

func TestNotesInWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	inside := &types.Note{ID: "note:in", OwnerID: "owner1", Text: "in", CreatedAt: now}
	outside := &types.Note{ID: "note:out", OwnerID: "owner1", Text: "out", CreatedAt: now.Add(-48 * time.Hour)}
	require.NoError(t, store.StoreNote(ctx, inside))
	require.NoError(t, store.StoreNote(ctx, outside))

	notes, err := store.NotesInWindow(ctx, "owner1", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "note:in", notes[0].ID)
}
