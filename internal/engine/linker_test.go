package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/loomknot/loom/internal/storage"
	"github.com/loomknot/loom/internal/storage/sqlite"
	"github.com/loomknot/loom/pkg/types"
)

// mockCapability is a configurable stand-in for the remote model.
type mockCapability struct {
	bag        types.EntityBag
	bagErr     error
	embedding  []float32
	embedErr   error
	items      []string
	itemsErr   error
	summary    string
	summaryErr error

	extractCalls   int
	embedCalls     int
	itemCalls      int
	summarizeCalls int
}

func (m *mockCapability) ExtractEntities(ctx context.Context, text string) (types.EntityBag, error) {
	m.extractCalls++
	return m.bag, m.bagErr
}

func (m *mockCapability) Embed(ctx context.Context, text string) ([]float32, error) {
	m.embedCalls++
	return m.embedding, m.embedErr
}

func (m *mockCapability) DeriveActionItems(ctx context.Context, text string) ([]string, error) {
	m.itemCalls++
	return m.items, m.itemsErr
}

func (m *mockCapability) Summarize(ctx context.Context, text string) (string, error) {
	m.summarizeCalls++
	return m.summary, m.summaryErr
}

func (m *mockCapability) EmbeddingModel() string { return "mock-embed" }

func setupTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.NewStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func storeTestNote(t *testing.T, store storage.Store, id, owner, title, text string, embedding []float32) {
	t.Helper()
	note := &types.Note{
		ID: id, OwnerID: owner, Title: title, Text: text,
		Embedding: embedding,
	}
	if err := store.StoreNote(context.Background(), note); err != nil {
		t.Fatalf("failed to store note %s: %v", id, err)
	}
}

func TestLinkNoteResolvesPersonMentions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	person := &types.Person{ID: "person:1", OwnerID: "owner1", Name: "John Smith"}
	if err := store.StorePerson(ctx, person); err != nil {
		t.Fatalf("failed to store person: %v", err)
	}
	storeTestNote(t, store, "note:1", "owner1", "", "Met with John Smith about the budget", nil)

	capability := &mockCapability{
		bag:       types.EntityBag{People: []string{"John Smith"}, Topics: []string{"budget"}},
		embedding: []float32{1, 0, 0},
	}
	linker := NewLinker(store, capability)

	result, err := linker.LinkNote(ctx, "note:1")
	if err != nil {
		t.Fatalf("LinkNote failed: %v", err)
	}
	if len(result.PersonIDs) != 1 || result.PersonIDs[0] != "person:1" {
		t.Errorf("expected person:1 linked, got %v", result.PersonIDs)
	}

	// Edge must be visible from both sides.
	note, err := store.GetNote(ctx, "note:1")
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if len(note.LinkedPersonIDs) != 1 || note.LinkedPersonIDs[0] != "person:1" {
		t.Errorf("note side missing person link: %v", note.LinkedPersonIDs)
	}
	got, err := store.GetPerson(ctx, "person:1")
	if err != nil {
		t.Fatalf("GetPerson failed: %v", err)
	}
	if len(got.LinkedNoteIDs) != 1 || got.LinkedNoteIDs[0] != "note:1" {
		t.Errorf("person side missing note link: %v", got.LinkedNoteIDs)
	}
}

func TestLinkNoteMatchingIsCaseInsensitive(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.StorePerson(ctx, &types.Person{ID: "person:1", OwnerID: "owner1", Name: "John Smith"}); err != nil {
		t.Fatalf("failed to store person: %v", err)
	}
	storeTestNote(t, store, "note:1", "owner1", "", "talked to JOHN SMITH", nil)

	capability := &mockCapability{bag: types.EntityBag{People: []string{"JOHN SMITH"}}}
	linker := NewLinker(store, capability)

	result, err := linker.LinkNote(ctx, "note:1")
	if err != nil {
		t.Fatalf("LinkNote failed: %v", err)
	}
	if len(result.PersonIDs) != 1 {
		t.Errorf("expected case-insensitive match, got %v", result.PersonIDs)
	}
}

func TestLinkNoteDiscardsUnknownNames(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	storeTestNote(t, store, "note:1", "owner1", "", "Met with Jane Doe", nil)

	capability := &mockCapability{bag: types.EntityBag{People: []string{"Jane Doe"}}}
	linker := NewLinker(store, capability)

	result, err := linker.LinkNote(ctx, "note:1")
	if err != nil {
		t.Fatalf("LinkNote failed: %v", err)
	}
	if len(result.PersonIDs) != 0 {
		t.Errorf("unknown names must be discarded, got %v", result.PersonIDs)
	}
}

func TestLinkNoteSimilarityThreshold(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// One candidate well above the threshold, one well below, one without
	// an embedding at all.
	storeTestNote(t, store, "note:similar", "owner1", "", "close", []float32{0.9, 0.1, 0})
	storeTestNote(t, store, "note:far", "owner1", "", "far", []float32{0, 1, 0})
	storeTestNote(t, store, "note:bare", "owner1", "", "no embedding", nil)
	storeTestNote(t, store, "note:new", "owner1", "", "the new note", nil)

	capability := &mockCapability{embedding: []float32{1, 0, 0}}
	linker := NewLinker(store, capability)

	result, err := linker.LinkNote(ctx, "note:new")
	if err != nil {
		t.Fatalf("LinkNote failed: %v", err)
	}
	if len(result.RelatedNoteIDs) != 1 || result.RelatedNoteIDs[0] != "note:similar" {
		t.Errorf("expected only note:similar above threshold, got %v", result.RelatedNoteIDs)
	}

	note, err := store.GetNote(ctx, "note:new")
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	for _, id := range note.LinkedRecordIDs {
		if id == "note:new" {
			t.Error("note must never link to itself")
		}
	}
}

func TestLinkNoteIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.StorePerson(ctx, &types.Person{ID: "person:1", OwnerID: "owner1", Name: "John Smith"}); err != nil {
		t.Fatalf("failed to store person: %v", err)
	}
	storeTestNote(t, store, "note:other", "owner1", "", "sibling", []float32{1, 0, 0})
	storeTestNote(t, store, "note:1", "owner1", "", "Met with John Smith", nil)

	capability := &mockCapability{
		bag:       types.EntityBag{People: []string{"John Smith"}},
		embedding: []float32{1, 0, 0},
	}
	linker := NewLinker(store, capability)

	for i := 0; i < 3; i++ {
		if _, err := linker.LinkNote(ctx, "note:1"); err != nil {
			t.Fatalf("LinkNote pass %d failed: %v", i, err)
		}
	}

	note, err := store.GetNote(ctx, "note:1")
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if len(note.LinkedRecordIDs) != 1 {
		t.Errorf("expected 1 note link after repeated passes, got %d", len(note.LinkedRecordIDs))
	}
	if len(note.LinkedPersonIDs) != 1 {
		t.Errorf("expected 1 person link after repeated passes, got %d", len(note.LinkedPersonIDs))
	}
}

func TestLinkNoteSkipsEmbeddingWhenContentUnchanged(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	storeTestNote(t, store, "note:1", "owner1", "", "stable content", nil)

	capability := &mockCapability{embedding: []float32{1, 0, 0}}
	linker := NewLinker(store, capability)

	if _, err := linker.LinkNote(ctx, "note:1"); err != nil {
		t.Fatalf("first LinkNote failed: %v", err)
	}
	if _, err := linker.LinkNote(ctx, "note:1"); err != nil {
		t.Fatalf("second LinkNote failed: %v", err)
	}
	if capability.embedCalls != 1 {
		t.Errorf("expected embedding computed once for unchanged content, got %d calls", capability.embedCalls)
	}
}

func TestLinkNoteSurvivesCapabilityFailure(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	storeTestNote(t, store, "note:1", "owner1", "", "some text", nil)

	capability := &mockCapability{
		bagErr:   errors.New("model timeout"),
		embedErr: errors.New("model timeout"),
	}
	linker := NewLinker(store, capability)

	result, err := linker.LinkNote(ctx, "note:1")
	if err != nil {
		t.Fatalf("LinkNote must absorb capability failures, got: %v", err)
	}
	if len(result.PersonIDs) != 0 || len(result.RelatedNoteIDs) != 0 {
		t.Errorf("expected empty result after capability failure, got %+v", result)
	}
}

func TestLinkNoteEmptyTextShortCircuits(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	storeTestNote(t, store, "note:1", "owner1", "", "   ", nil)

	capability := &mockCapability{embedding: []float32{1, 0, 0}}
	linker := NewLinker(store, capability)

	result, err := linker.LinkNote(ctx, "note:1")
	if err != nil {
		t.Fatalf("LinkNote failed: %v", err)
	}
	if len(result.PersonIDs) != 0 || len(result.RelatedNoteIDs) != 0 {
		t.Errorf("empty text must produce no mutations, got %+v", result)
	}
	if capability.extractCalls != 0 || capability.embedCalls != 0 {
		t.Errorf("empty text must not reach the model, got extract=%d embed=%d",
			capability.extractCalls, capability.embedCalls)
	}
}

func TestLinkNoteInvalidInput(t *testing.T) {
	store := setupTestStore(t)
	linker := NewLinker(store, &mockCapability{})

	if _, err := linker.LinkNote(context.Background(), ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank ID, got %v", err)
	}
	if _, err := linker.LinkNote(context.Background(), "note:missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing note, got %v", err)
	}
}

func TestLinkMeetingDerivesActionItemsAndReminders(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	meeting := &types.Meeting{
		ID: "meeting:1", OwnerID: "owner1",
		Title: "Planning", Text: "Send proposal. Review budget.",
		ScheduledAt: time.Now().UTC(),
	}
	if err := store.StoreMeeting(ctx, meeting); err != nil {
		t.Fatalf("failed to store meeting: %v", err)
	}

	capability := &mockCapability{
		items: []string{"Send the proposal by Friday", "Review the budget"},
	}
	linker := NewLinker(store, capability)

	before := time.Now().UTC()
	result, err := linker.LinkMeeting(ctx, "meeting:1")
	if err != nil {
		t.Fatalf("LinkMeeting failed: %v", err)
	}
	if len(result.ActionItems) != 2 {
		t.Fatalf("expected 2 action items, got %v", result.ActionItems)
	}
	if len(result.ReminderIDs) != 2 {
		t.Fatalf("expected 2 reminders, got %v", result.ReminderIDs)
	}

	stored, err := store.GetMeeting(ctx, "meeting:1")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if len(stored.ActionItems) != 2 || stored.ActionItems[0] != "Send the proposal by Friday" {
		t.Errorf("action items not replaced: %v", stored.ActionItems)
	}

	reminders, err := store.RemindersForEntity(ctx, types.EntityTypeMeeting, "meeting:1")
	if err != nil {
		t.Fatalf("RemindersForEntity failed: %v", err)
	}
	if len(reminders) != 2 {
		t.Fatalf("expected 2 reminders linked to meeting, got %d", len(reminders))
	}
	for _, r := range reminders {
		if r.Priority != types.PriorityHigh {
			t.Errorf("expected high priority, got %q", r.Priority)
		}
		if r.LinkedEntityType != types.EntityTypeMeeting || r.LinkedEntityID != "meeting:1" {
			t.Errorf("reminder not linked to meeting: %+v", r)
		}
		if r.Completed {
			t.Error("derived reminder must start incomplete")
		}
		wantDue := before.Add(ReminderDueOffset)
		if r.DueDate.Before(wantDue.Add(-time.Minute)) || r.DueDate.After(wantDue.Add(time.Minute)) {
			t.Errorf("due date %v not ~72h out from %v", r.DueDate, before)
		}
	}
}

func TestLinkMeetingReplacesOldActionItems(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	meeting := &types.Meeting{
		ID: "meeting:1", OwnerID: "owner1", Title: "Sync",
		Text: "nothing actionable", ScheduledAt: time.Now().UTC(),
		ActionItems: []string{"stale item"},
	}
	if err := store.StoreMeeting(ctx, meeting); err != nil {
		t.Fatalf("failed to store meeting: %v", err)
	}

	capability := &mockCapability{items: []string{}}
	linker := NewLinker(store, capability)

	result, err := linker.LinkMeeting(ctx, "meeting:1")
	if err != nil {
		t.Fatalf("LinkMeeting failed: %v", err)
	}
	if len(result.ReminderIDs) != 0 {
		t.Errorf("zero items must produce zero reminders, got %v", result.ReminderIDs)
	}

	stored, err := store.GetMeeting(ctx, "meeting:1")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if len(stored.ActionItems) != 0 {
		t.Errorf("expected stale items replaced with empty list, got %v", stored.ActionItems)
	}
}

func TestLinkMeetingKeepsItemsWhenDerivationFails(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	meeting := &types.Meeting{
		ID: "meeting:1", OwnerID: "owner1", Title: "Sync",
		Text: "text", ScheduledAt: time.Now().UTC(),
		ActionItems: []string{"existing item"},
	}
	if err := store.StoreMeeting(ctx, meeting); err != nil {
		t.Fatalf("failed to store meeting: %v", err)
	}

	capability := &mockCapability{itemsErr: errors.New("circuit open")}
	linker := NewLinker(store, capability)

	if _, err := linker.LinkMeeting(ctx, "meeting:1"); err != nil {
		t.Fatalf("LinkMeeting must absorb derivation failure, got: %v", err)
	}

	stored, err := store.GetMeeting(ctx, "meeting:1")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if len(stored.ActionItems) != 1 || stored.ActionItems[0] != "existing item" {
		t.Errorf("derivation failure must leave existing items untouched, got %v", stored.ActionItems)
	}
}

func TestLinkMeetingLinksSimilarNotes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	storeTestNote(t, store, "note:related", "owner1", "", "budget planning", []float32{1, 0, 0})
	meeting := &types.Meeting{
		ID: "meeting:1", OwnerID: "owner1", Title: "Budget review",
		Text: "quarterly budget", ScheduledAt: time.Now().UTC(),
	}
	if err := store.StoreMeeting(ctx, meeting); err != nil {
		t.Fatalf("failed to store meeting: %v", err)
	}

	capability := &mockCapability{embedding: []float32{0.95, 0.05, 0}}
	linker := NewLinker(store, capability)

	result, err := linker.LinkMeeting(ctx, "meeting:1")
	if err != nil {
		t.Fatalf("LinkMeeting failed: %v", err)
	}
	if len(result.RelatedNoteIDs) != 1 || result.RelatedNoteIDs[0] != "note:related" {
		t.Errorf("expected note:related linked, got %v", result.RelatedNoteIDs)
	}

	stored, err := store.GetMeeting(ctx, "meeting:1")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if len(stored.LinkedNoteIDs) != 1 {
		t.Errorf("meeting side missing note link: %v", stored.LinkedNoteIDs)
	}
}

func TestLinkPersonBackfillsMentions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	storeTestNote(t, store, "note:1", "owner1", "", "Lunch with Sarah Chen yesterday", nil)
	storeTestNote(t, store, "note:2", "owner1", "", "unrelated errand list", nil)
	meeting := &types.Meeting{
		ID: "meeting:1", OwnerID: "owner1", Title: "1:1 with sarah chen",
		Text: "career chat", ScheduledAt: time.Now().UTC(),
	}
	if err := store.StoreMeeting(ctx, meeting); err != nil {
		t.Fatalf("failed to store meeting: %v", err)
	}
	person := &types.Person{ID: "person:1", OwnerID: "owner1", Name: "Sarah Chen"}
	if err := store.StorePerson(ctx, person); err != nil {
		t.Fatalf("failed to store person: %v", err)
	}

	linker := NewLinker(store, &mockCapability{})

	if _, err := linker.LinkPerson(ctx, "person:1"); err != nil {
		t.Fatalf("LinkPerson failed: %v", err)
	}

	got, err := store.GetPerson(ctx, "person:1")
	if err != nil {
		t.Fatalf("GetPerson failed: %v", err)
	}
	if len(got.LinkedNoteIDs) != 1 || got.LinkedNoteIDs[0] != "note:1" {
		t.Errorf("expected only note:1 backfilled, got %v", got.LinkedNoteIDs)
	}
	if len(got.LinkedMeetingIDs) != 1 || got.LinkedMeetingIDs[0] != "meeting:1" {
		t.Errorf("expected meeting:1 backfilled, got %v", got.LinkedMeetingIDs)
	}
}

func TestLinkerEmitsEvents(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.StorePerson(ctx, &types.Person{ID: "person:1", OwnerID: "owner1", Name: "John Smith"}); err != nil {
		t.Fatalf("failed to store person: %v", err)
	}
	storeTestNote(t, store, "note:1", "owner1", "", "Met with John Smith", nil)

	capability := &mockCapability{bag: types.EntityBag{People: []string{"John Smith"}}}
	linker := NewLinker(store, capability)

	var events []LinkEvent
	linker.Notify = func(e LinkEvent) { events = append(events, e) }

	if _, err := linker.LinkNote(ctx, "note:1"); err != nil {
		t.Fatalf("LinkNote failed: %v", err)
	}
	if len(events) != 1 || events[0].Type != "note_person" {
		t.Errorf("expected one note_person event, got %+v", events)
	}
}
