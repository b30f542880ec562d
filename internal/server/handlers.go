package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/murmurhq/murmur/internal/ingest"
	"github.com/murmurhq/murmur/internal/notes"
	"github.com/murmurhq/murmur/internal/synthesis"
)

// maxAudioUpload caps audio uploads at 25 MB, matching typical hosted
// transcription API limits.
const maxAudioUpload = 25 << 20

// userContextParams are the optional per-request user settings accepted by
// note operations, as form fields or JSON.
type userContextParams struct {
	Timezone    string   `json:"timezone"`
	CurrentDate string   `json:"current_date"`
	Folders     []string `json:"folders"`
}

func (p *userContextParams) toUserContext() *synthesis.UserContext {
	if p == nil || (p.Timezone == "" && p.CurrentDate == "" && len(p.Folders) == 0) {
		return nil
	}
	return &synthesis.UserContext{
		Timezone:    p.Timezone,
		CurrentDate: p.CurrentDate,
		Folders:     p.Folders,
	}
}

// noteResponse is the wire shape for a note.
type noteResponse struct {
	*notes.Note

	// Decision is present on append responses only.
	Decision *synthesis.UpdateDecision `json:"decision,omitempty"`
}

// createNoteRequest is the JSON body for text-only note creation. Audio
// uploads use multipart/form-data instead.
type createNoteRequest struct {
	Text        string            `json:"text"`
	UserContext userContextParams `json:"user_context"`
}

// handleCreateNote creates a note from typed text (JSON) or an audio upload
// (multipart). Both inputs may be present in the multipart form.
func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	text, audioInput, uc, ok := s.readNoteContent(w, r)
	if !ok {
		return
	}

	var history []notes.Input
	audioTranscript := ""
	if audioInput != nil {
		audioTranscript = audioInput.Content
		history = append(history, notes.Input{ID: ulid.Make().String(), RawInput: *audioInput})
	}
	if text != "" {
		history = append(history, notes.Input{ID: ulid.Make().String(), RawInput: s.ingester.IngestText(text)})
	}
	if len(history) == 0 {
		writeError(w, http.StatusBadRequest, "request carries neither text nor audio")
		return
	}

	result, err := s.engine.Synthesize(r.Context(), text, audioTranscript, uc)
	if err != nil {
		s.serviceUnavailable(w, r, "synthesize", err)
		return
	}

	note := &notes.Note{ID: uuid.New(), History: history}
	note.ApplyResult(result)
	s.attachEmbedding(r, note)

	if err := s.store.Create(r.Context(), note); err != nil {
		s.logger.ErrorContext(r.Context(), "store create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store note")
		return
	}
	writeJSON(w, http.StatusCreated, noteResponse{Note: note})
}

// handleAppendNote adds new content to an existing note. The synthesis
// engine decides whether to append or regenerate; the response carries both
// the updated note and the decision.
func (s *Server) handleAppendNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNoteID(w, r)
	if !ok {
		return
	}

	text, audioInput, uc, ok := s.readNoteContent(w, r)
	if !ok {
		return
	}
	newContent := text
	var newInputs []notes.Input
	if audioInput != nil {
		if newContent != "" {
			newContent += "\n\n"
		}
		newContent += audioInput.Content
		newInputs = append(newInputs, notes.Input{ID: ulid.Make().String(), RawInput: *audioInput})
	}
	if text != "" {
		newInputs = append(newInputs, notes.Input{ID: ulid.Make().String(), RawInput: s.ingester.IngestText(text)})
	}
	if len(newInputs) == 0 {
		writeError(w, http.StatusBadRequest, "request carries neither text nor audio")
		return
	}

	s.noteLocks.Lock(id.String())
	defer s.noteLocks.Unlock(id.String())

	note, err := s.store.Get(r.Context(), id)
	if errors.Is(err, notes.ErrNotFound) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "store get failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load note")
		return
	}

	note.History = append(note.History, newInputs...)

	update, err := s.engine.DecideAndUpdate(r.Context(), newContent,
		note.Narrative, note.Title, note.Summary, note.RawHistory(), uc)
	if err != nil {
		s.serviceUnavailable(w, r, "smart_update", err)
		return
	}
	note.ApplyResult(&update.Result)
	s.attachEmbedding(r, note)

	if err := s.store.Update(r.Context(), note); err != nil {
		s.logger.ErrorContext(r.Context(), "store update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store note")
		return
	}
	writeJSON(w, http.StatusOK, noteResponse{Note: note, Decision: &update.Decision})
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNoteID(w, r)
	if !ok {
		return
	}
	note, err := s.store.Get(r.Context(), id)
	if errors.Is(err, notes.ErrNotFound) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "store get failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load note")
		return
	}
	writeJSON(w, http.StatusOK, noteResponse{Note: note})
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNoteID(w, r)
	if !ok {
		return
	}
	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, notes.ErrNotFound) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "store delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	list, err := s.store.List(r.Context(), r.URL.Query().Get("folder"), limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "store list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": list})
}

func (s *Server) handleSearchNotes(w http.ResponseWriter, r *http.Request) {
	if s.embedder == nil {
		writeError(w, http.StatusNotImplemented, "semantic search is not configured")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	vec, err := s.embedder.Embed(r.Context(), query)
	if err != nil {
		s.serviceUnavailable(w, r, "embed_query", err)
		return
	}
	hits, err := s.store.SearchSimilar(r.Context(), vec, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "store search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to search notes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

// emailDraftRequest is the JSON body for standalone email drafting.
type emailDraftRequest struct {
	Context   string `json:"context"`
	Recipient string `json:"recipient"`
	Purpose   string `json:"purpose"`
}

func (s *Server) handleEmailDraft(w http.ResponseWriter, r *http.Request) {
	var req emailDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Context == "" || req.Purpose == "" {
		writeError(w, http.StatusBadRequest, "context and purpose are required")
		return
	}
	msg, err := s.engine.GenerateEmailDraft(r.Context(), req.Context, req.Recipient, req.Purpose)
	if err != nil {
		s.serviceUnavailable(w, r, "email_draft", err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// readNoteContent extracts text, an optional transcribed audio input, and
// the user context from a create or append request. On failure it writes an
// error response and returns ok=false.
func (s *Server) readNoteContent(w http.ResponseWriter, r *http.Request) (string, *synthesis.RawInput, *synthesis.UserContext, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return s.readMultipartContent(w, r)
	}

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return "", nil, nil, false
	}
	return req.Text, nil, s.applyDefaults(req.UserContext.toUserContext()), true
}

func (s *Server) readMultipartContent(w http.ResponseWriter, r *http.Request) (string, *synthesis.RawInput, *synthesis.UserContext, bool) {
	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return "", nil, nil, false
	}

	uc := s.applyDefaults((&userContextParams{
		Timezone:    r.FormValue("timezone"),
		CurrentDate: r.FormValue("current_date"),
		Folders:     r.MultipartForm.Value["folders"],
	}).toUserContext())
	text := r.FormValue("text")

	file, header, err := r.FormFile("audio")
	if errors.Is(err, http.ErrMissingFile) {
		return text, nil, uc, true
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid audio upload")
		return "", nil, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAudioUpload))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio upload")
		return "", nil, nil, false
	}

	duration := 0
	if v := r.FormValue("duration_seconds"); v != "" {
		duration, _ = strconv.Atoi(v)
	}
	in, err := s.ingester.IngestAudio(r.Context(), ingest.Audio{
		Data:            data,
		Filename:        header.Filename,
		ContentType:     header.Header.Get("Content-Type"),
		DurationSeconds: duration,
	})
	if errors.Is(err, ingest.ErrNoTranscriber) {
		writeError(w, http.StatusNotImplemented, "audio ingestion is not configured")
		return "", nil, nil, false
	}
	if err != nil {
		s.serviceUnavailable(w, r, "ingest_audio", err)
		return "", nil, nil, false
	}
	return text, &in, uc, true
}

// applyDefaults merges server-level user-context defaults into a request's
// context. Request values always win.
func (s *Server) applyDefaults(uc *synthesis.UserContext) *synthesis.UserContext {
	if s.defaults == nil {
		return uc
	}
	if uc == nil {
		merged := *s.defaults
		return &merged
	}
	if uc.Timezone == "" {
		uc.Timezone = s.defaults.Timezone
	}
	if len(uc.Folders) == 0 {
		uc.Folders = s.defaults.Folders
	}
	return uc
}

func parseNoteID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return uuid.UUID{}, false
	}
	return id, true
}

// attachEmbedding computes a summary embedding when an embedder is
// configured. Embedding failures are logged and skipped: a note is never
// lost because semantic indexing was unavailable.
func (s *Server) attachEmbedding(r *http.Request, note *notes.Note) {
	if s.embedder == nil || note.Summary == "" {
		return
	}
	vec, err := s.embedder.Embed(r.Context(), note.Summary)
	if err != nil {
		s.logger.WarnContext(r.Context(), "summary embedding failed", "note", note.ID, "error", err)
		return
	}
	note.SummaryEmbedding = vec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
