package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/loomknot/loom/internal/storage"
	"github.com/loomknot/loom/pkg/types"
)

type createNoteRequest struct {
	OwnerID string   `json:"owner_id"`
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Tags    []string `json:"tags"`
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OwnerID == "" || strings.TrimSpace(req.Title+req.Text) == "" {
		writeError(w, http.StatusBadRequest, "owner_id and title or text are required")
		return
	}

	note := &types.Note{
		ID:      types.NewID("note"),
		OwnerID: req.OwnerID,
		Title:   req.Title,
		Text:    req.Text,
		Tags:    req.Tags,
	}
	if err := s.store.StoreNote(r.Context(), note); err != nil {
		log.Printf("Server: failed to store note: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store note")
		return
	}

	// The linking pass runs after the write commits; its failures never
	// fail the create.
	if _, err := s.linker.LinkNote(r.Context(), note.ID); err != nil {
		log.Printf("Server: linking failed for %s: %v", note.ID, err)
	}

	linked, err := s.store.GetNote(r.Context(), note.ID)
	if err != nil {
		linked = note
	}
	writeJSON(w, http.StatusCreated, linked)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.store.GetNote(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		log.Printf("Server: failed to get note: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get note")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notes, err := s.store.RecentNotes(r.Context(), ownerID, limit, "")
	if err != nil {
		log.Printf("Server: failed to list notes: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notes": notes})
}

type searchRequest struct {
	OwnerID string `json:"owner_id"`
	Query   string `json:"query"`
	Limit   int    `json:"limit"`
}

func (s *Server) handleSearchNotes(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	results, err := s.linker.SearchNotes(r.Context(), req.OwnerID, req.Query, req.Limit)
	if errors.Is(err, storage.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if err != nil {
		log.Printf("Server: search failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "search unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

type createPersonRequest struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Role    string `json:"role"`
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req createPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OwnerID == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "owner_id and name are required")
		return
	}

	person := &types.Person{
		ID:      types.NewID("person"),
		OwnerID: req.OwnerID,
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Company: req.Company,
		Role:    req.Role,
	}
	if err := s.store.StorePerson(r.Context(), person); err != nil {
		log.Printf("Server: failed to store person: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store person")
		return
	}

	if _, err := s.linker.LinkPerson(r.Context(), person.ID); err != nil {
		log.Printf("Server: linking failed for %s: %v", person.ID, err)
	}

	linked, err := s.store.GetPerson(r.Context(), person.ID)
	if err != nil {
		linked = person
	}
	writeJSON(w, http.StatusCreated, linked)
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	person, err := s.store.GetPerson(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}
	if err != nil {
		log.Printf("Server: failed to get person: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get person")
		return
	}
	writeJSON(w, http.StatusOK, person)
}

type createMeetingRequest struct {
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req createMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OwnerID == "" || strings.TrimSpace(req.Title+req.Text) == "" {
		writeError(w, http.StatusBadRequest, "owner_id and title or text are required")
		return
	}

	scheduledAt := time.Now().UTC()
	if req.ScheduledAt != nil {
		scheduledAt = req.ScheduledAt.UTC()
	}

	meeting := &types.Meeting{
		ID:          types.NewID("meeting"),
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Text:        req.Text,
		ScheduledAt: scheduledAt,
	}
	if err := s.store.StoreMeeting(r.Context(), meeting); err != nil {
		log.Printf("Server: failed to store meeting: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store meeting")
		return
	}

	if _, err := s.linker.LinkMeeting(r.Context(), meeting.ID); err != nil {
		log.Printf("Server: linking failed for %s: %v", meeting.ID, err)
	}

	linked, err := s.store.GetMeeting(r.Context(), meeting.ID)
	if err != nil {
		linked = meeting
	}
	writeJSON(w, http.StatusCreated, linked)
}

func (s *Server) handleGetMeeting(w http.ResponseWriter, r *http.Request) {
	meeting, err := s.store.GetMeeting(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "meeting not found")
		return
	}
	if err != nil {
		log.Printf("Server: failed to get meeting: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get meeting")
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	reminders, err := s.store.ListReminders(r.Context(), ownerID)
	if err != nil {
		log.Printf("Server: failed to list reminders: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reminders": reminders})
}

// handleDigest compiles the daily digest. The window defaults to today (UTC)
// and can be shifted with a date=YYYY-MM-DD query parameter.
func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)

	digest, err := s.linker.CompileDigest(r.Context(), ownerID, start, end)
	if err != nil {
		log.Printf("Server: digest failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to compile digest")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"date":   start.Format("2006-01-02"),
		"digest": digest,
	})
}
