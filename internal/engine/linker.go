package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"

	"github.com/loomknot/loom/internal/storage"
	"github.com/loomknot/loom/pkg/types"
)

// LinkEvent describes one edge the linker wrote, for live feeds.
type LinkEvent struct {
	Type     string  `json:"type"`      // note_note, note_person, meeting_note, meeting_person, reminder
	SourceID string  `json:"source_id"` // record the linking pass ran for
	TargetID string  `json:"target_id"` // record it was linked to
	Score    float64 `json:"score,omitempty"`
}

// LinkResult summarizes what one linking pass produced.
type LinkResult struct {
	RecordID       string   `json:"record_id"`
	RelatedNoteIDs []string `json:"related_note_ids,omitempty"`
	PersonIDs      []string `json:"person_ids,omitempty"`
	ActionItems    []string `json:"action_items,omitempty"`
	ReminderIDs    []string `json:"reminder_ids,omitempty"`
}

// Linker runs the automatic linking pass over stored records. Each pass is
// single-shot: no internal retries, no queues. All mutations are idempotent
// add-to-set operations, so re-running a pass over the same record converges
// to the same state.
type Linker struct {
	store      storage.Store
	capability Capability

	// Notify, when set, receives an event for every link written.
	// Called synchronously; keep it fast.
	Notify func(LinkEvent)
}

// NewLinker creates a Linker over the given store and capability.
func NewLinker(store storage.Store, capability Capability) *Linker {
	return &Linker{store: store, capability: capability}
}

// LinkNote runs the full linking pass for a note: extract entities, resolve
// person mentions, embed the content, and link similar sibling notes.
// Sub-step failures are logged and absorbed; only a missing or invalid note
// ID is returned as an error.
func (l *Linker) LinkNote(ctx context.Context, noteID string) (*LinkResult, error) {
	if strings.TrimSpace(noteID) == "" {
		return nil, storage.ErrInvalidInput
	}
	note, err := l.store.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	result := &LinkResult{RecordID: note.ID}
	content := note.Content()
	if strings.TrimSpace(content) == "" {
		// Nothing to extract or match; empty text is not an error.
		return result, nil
	}

	bag := l.extractEntities(ctx, note.ID, content)
	for _, person := range l.resolvePeople(ctx, note.OwnerID, bag.People) {
		if err := l.store.LinkNotePerson(ctx, note.ID, person.ID); err != nil {
			log.Printf("Linker: failed to link note %s to person %s: %v", note.ID, person.ID, err)
			continue
		}
		result.PersonIDs = append(result.PersonIDs, person.ID)
		l.notify(LinkEvent{Type: "note_person", SourceID: note.ID, TargetID: person.ID})
	}

	embedding := l.ensureNoteEmbedding(ctx, note, content)
	if len(embedding) == 0 {
		return result, nil
	}

	candidates, err := l.store.RecentNotes(ctx, note.OwnerID, CandidateWindow, note.ID)
	if err != nil {
		log.Printf("Linker: failed to load candidate notes for %s: %v", note.ID, err)
		return result, nil
	}

	vectors := make([][]float32, len(candidates))
	for i := range candidates {
		vectors[i] = candidates[i].Embedding
	}
	for _, match := range Rank(embedding, vectors) {
		if match.Score <= LinkThreshold {
			break
		}
		related := candidates[match.Index]
		if err := l.store.LinkNotes(ctx, note.ID, related.ID); err != nil {
			log.Printf("Linker: failed to link notes %s and %s: %v", note.ID, related.ID, err)
			continue
		}
		result.RelatedNoteIDs = append(result.RelatedNoteIDs, related.ID)
		l.notify(LinkEvent{Type: "note_note", SourceID: note.ID, TargetID: related.ID, Score: match.Score})
	}

	return result, nil
}

// LinkMeeting runs the full linking pass for a meeting: resolve person
// mentions, link related notes by similarity, and derive action items with
// their reminders.
func (l *Linker) LinkMeeting(ctx context.Context, meetingID string) (*LinkResult, error) {
	if strings.TrimSpace(meetingID) == "" {
		return nil, storage.ErrInvalidInput
	}
	meeting, err := l.store.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	result := &LinkResult{RecordID: meeting.ID}
	content := meeting.Content()
	if strings.TrimSpace(content) == "" {
		return result, nil
	}

	bag := l.extractEntities(ctx, meeting.ID, content)
	for _, person := range l.resolvePeople(ctx, meeting.OwnerID, bag.People) {
		if err := l.store.LinkMeetingPerson(ctx, meeting.ID, person.ID); err != nil {
			log.Printf("Linker: failed to link meeting %s to person %s: %v", meeting.ID, person.ID, err)
			continue
		}
		result.PersonIDs = append(result.PersonIDs, person.ID)
		l.notify(LinkEvent{Type: "meeting_person", SourceID: meeting.ID, TargetID: person.ID})
	}

	if embedding := l.embedContent(ctx, meeting.ID, content); len(embedding) > 0 {
		candidates, err := l.store.RecentNotes(ctx, meeting.OwnerID, CandidateWindow, "")
		if err != nil {
			log.Printf("Linker: failed to load candidate notes for meeting %s: %v", meeting.ID, err)
		} else {
			vectors := make([][]float32, len(candidates))
			for i := range candidates {
				vectors[i] = candidates[i].Embedding
			}
			for _, match := range Rank(embedding, vectors) {
				if match.Score <= LinkThreshold {
					break
				}
				related := candidates[match.Index]
				if err := l.store.LinkMeetingNote(ctx, meeting.ID, related.ID); err != nil {
					log.Printf("Linker: failed to link meeting %s to note %s: %v", meeting.ID, related.ID, err)
					continue
				}
				result.RelatedNoteIDs = append(result.RelatedNoteIDs, related.ID)
				l.notify(LinkEvent{Type: "meeting_note", SourceID: meeting.ID, TargetID: related.ID, Score: match.Score})
			}
		}
	}

	items, reminderIDs := l.deriveActionItems(ctx, meeting)
	result.ActionItems = items
	result.ReminderIDs = reminderIDs

	return result, nil
}

// LinkPerson backfills links for a person record by scanning recent notes and
// meetings for mentions of the person's name. Used when a person is created
// after the notes that mention them.
func (l *Linker) LinkPerson(ctx context.Context, personID string) (*LinkResult, error) {
	if strings.TrimSpace(personID) == "" {
		return nil, storage.ErrInvalidInput
	}
	person, err := l.store.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	result := &LinkResult{RecordID: person.ID}
	name := person.MatchKey()
	if name == "" {
		return result, nil
	}

	notes, err := l.store.RecentNotes(ctx, person.OwnerID, CandidateWindow, "")
	if err != nil {
		log.Printf("Linker: failed to load notes for person %s: %v", person.ID, err)
	} else {
		for i := range notes {
			if !strings.Contains(strings.ToLower(notes[i].Content()), name) {
				continue
			}
			if err := l.store.LinkNotePerson(ctx, notes[i].ID, person.ID); err != nil {
				log.Printf("Linker: failed to link note %s to person %s: %v", notes[i].ID, person.ID, err)
				continue
			}
			result.RelatedNoteIDs = append(result.RelatedNoteIDs, notes[i].ID)
			l.notify(LinkEvent{Type: "note_person", SourceID: notes[i].ID, TargetID: person.ID})
		}
	}

	meetings, err := l.store.RecentMeetings(ctx, person.OwnerID, CandidateWindow, "")
	if err != nil {
		log.Printf("Linker: failed to load meetings for person %s: %v", person.ID, err)
	} else {
		for i := range meetings {
			if !strings.Contains(strings.ToLower(meetings[i].Content()), name) {
				continue
			}
			if err := l.store.LinkMeetingPerson(ctx, meetings[i].ID, person.ID); err != nil {
				log.Printf("Linker: failed to link meeting %s to person %s: %v", meetings[i].ID, person.ID, err)
				continue
			}
			l.notify(LinkEvent{Type: "meeting_person", SourceID: meetings[i].ID, TargetID: person.ID})
		}
	}

	return result, nil
}

// extractEntities runs entity extraction and absorbs failures into an empty bag.
func (l *Linker) extractEntities(ctx context.Context, recordID, content string) types.EntityBag {
	bag, err := l.capability.ExtractEntities(ctx, content)
	if err != nil {
		if !recoverable(err) {
			log.Printf("Linker: entity extraction rejected input for %s: %v", recordID, err)
		} else {
			log.Printf("Linker: entity extraction unavailable for %s: %v", recordID, err)
		}
		return types.EntityBag{}
	}
	return bag
}

// embedContent runs embedding and absorbs failures into a nil vector.
func (l *Linker) embedContent(ctx context.Context, recordID, content string) []float32 {
	embedding, err := l.capability.Embed(ctx, content)
	if err != nil {
		log.Printf("Linker: embedding unavailable for %s: %v", recordID, err)
		return nil
	}
	return embedding
}

// ensureNoteEmbedding returns the note's embedding, computing and persisting
// it only when the content hash changed since the last pass.
func (l *Linker) ensureNoteEmbedding(ctx context.Context, note *types.Note, content string) []float32 {
	hash := contentHash(content)
	if note.ContentHash == hash && len(note.Embedding) > 0 {
		return note.Embedding
	}

	embedding := l.embedContent(ctx, note.ID, content)
	if len(embedding) == 0 {
		return nil
	}
	if err := l.store.SetNoteEmbedding(ctx, note.ID, embedding, l.capability.EmbeddingModel(), hash); err != nil {
		log.Printf("Linker: failed to persist embedding for %s: %v", note.ID, err)
	}
	return embedding
}

func (l *Linker) notify(event LinkEvent) {
	if l.Notify != nil {
		l.Notify(event)
	}
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
