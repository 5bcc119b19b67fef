package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/homilyhq/homily/internal/models"
	"github.com/homilyhq/homily/internal/stream"
	"github.com/homilyhq/homily/internal/synthesis"
	"golang.org/x/sync/errgroup"
)

// SermonStore is the persistence surface the handlers use. *db.DB
// satisfies it; tests substitute a fake.
type SermonStore interface {
	CreateSermon(ctx context.Context, sermon *models.Sermon) error
	GetSermon(ctx context.Context, id uuid.UUID) (*models.Sermon, error)
	ListSermons(ctx context.Context, ownerID string, limit, offset int) ([]models.Sermon, error)
	CountSermons(ctx context.Context, ownerID string) (int, error)
	UpdateSermon(ctx context.Context, id uuid.UUID, title, body *string) error
	DeleteSermon(ctx context.Context, id uuid.UUID) error
	ReplaceSermonChunks(ctx context.Context, id uuid.UUID, chunks models.SavedChunkList) error
}

// RunLocker serializes synthesis runs per sermon (Redis-backed in
// production). Nil disables locking.
type RunLocker interface {
	AcquireRun(ctx context.Context, sermonID uuid.UUID) (bool, error)
	ReleaseRun(ctx context.Context, sermonID uuid.UUID) error
}

type Handler struct {
	store    SermonStore
	locks    RunLocker
	pipeline *synthesis.Pipeline
}

func NewHandler(store SermonStore, locks RunLocker, pipeline *synthesis.Pipeline) *Handler {
	return &Handler{
		store:    store,
		locks:    locks,
		pipeline: pipeline,
	}
}

// CreateSermon handles POST /v1/sermons
func (h *Handler) CreateSermon(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSermonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.OwnerID == "" {
		respondError(w, http.StatusBadRequest, "owner_id is required")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	sermon := &models.Sermon{
		ID:       uuid.New(),
		OwnerID:  req.OwnerID,
		SeriesID: req.SeriesID,
		Title:    req.Title,
		Body:     req.Body,
	}

	if err := h.store.CreateSermon(r.Context(), sermon); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create sermon")
		return
	}

	respondJSON(w, http.StatusCreated, sermon)
}

// ListSermons handles GET /v1/sermons?owner=...&limit=...&offset=...
func (h *Handler) ListSermons(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner")
	if ownerID == "" {
		respondError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	total, err := h.store.CountSermons(r.Context(), ownerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count sermons")
		return
	}

	sermons, err := h.store.ListSermons(r.Context(), ownerID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list sermons")
		return
	}

	respondJSON(w, http.StatusOK, models.ListSermonsResponse{
		Sermons: sermons,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

// GetSermon handles GET /v1/sermons/{id}
func (h *Handler) GetSermon(w http.ResponseWriter, r *http.Request) {
	sermonID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid sermon ID")
		return
	}

	sermon, err := h.store.GetSermon(r.Context(), sermonID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Sermon not found")
		return
	}

	respondJSON(w, http.StatusOK, sermon)
}

// UpdateSermon handles PUT /v1/sermons/{id}
func (h *Handler) UpdateSermon(w http.ResponseWriter, r *http.Request) {
	sermonID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid sermon ID")
		return
	}

	var req models.UpdateSermonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.store.GetSermon(r.Context(), sermonID); err != nil {
		respondError(w, http.StatusNotFound, "Sermon not found")
		return
	}

	if err := h.store.UpdateSermon(r.Context(), sermonID, req.Title, req.Body); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update sermon")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteSermon handles DELETE /v1/sermons/{id}
func (h *Handler) DeleteSermon(w http.ResponseWriter, r *http.Request) {
	sermonID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid sermon ID")
		return
	}

	if err := h.store.DeleteSermon(r.Context(), sermonID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete sermon")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SaveChunks handles PUT /v1/sermons/{id}/chunks — the chunk-optimization
// step writes its ordered (text, sectionId, index) tuples here.
func (h *Handler) SaveChunks(w http.ResponseWriter, r *http.Request) {
	sermonID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid sermon ID")
		return
	}

	var req models.SaveChunksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sermon, err := h.store.GetSermon(r.Context(), sermonID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Sermon not found")
		return
	}
	if sermon.OwnerID != req.OwnerID {
		respondError(w, http.StatusForbidden, "Sermon belongs to a different owner")
		return
	}

	for i, chunk := range req.Chunks {
		if chunk.Text == "" {
			respondError(w, http.StatusBadRequest, "chunk "+strconv.Itoa(i)+" has empty text")
			return
		}
	}

	if err := h.store.ReplaceSermonChunks(r.Context(), sermonID, req.Chunks); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save chunks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"saved": len(req.Chunks)})
}

// chanSink bridges the pipeline goroutine to the handler's write loop.
type chanSink chan<- stream.Event

func (c chanSink) Emit(ev stream.Event) error {
	c <- ev
	return nil
}

// GenerateSermonAudio handles POST /v1/sermons/{id}/audio — the synthesis
// pipeline endpoint. Pre-stream validation failures use conventional status
// codes; everything after the stream starts is reported in-stream,
// including synthesis and concatenation failures.
func (h *Handler) GenerateSermonAudio(w http.ResponseWriter, r *http.Request) {
	sermonID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid sermon ID")
		return
	}

	// Body parse failure before any business logic is a setup failure.
	var req models.GenerateAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	run, err := h.pipeline.Prepare(r.Context(), sermonID, req)
	if err != nil {
		respondError(w, prepareStatus(err), err.Error())
		return
	}

	if h.locks != nil {
		acquired, err := h.locks.AcquireRun(r.Context(), sermonID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to acquire run lock")
			return
		}
		if !acquired {
			respondError(w, http.StatusConflict, "Audio generation already in progress for this sermon")
			return
		}
		defer func() {
			if err := h.locks.ReleaseRun(context.WithoutCancel(r.Context()), sermonID); err != nil {
				log.Printf("[API] Failed to release run lock for sermon %s: %v", sermonID, err)
			}
		}()
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	encoder := stream.NewEncoder(w)

	// The pipeline produces events on its own goroutine; the handler
	// goroutine is the stream's single writer. The loop keeps draining
	// after a write failure so the producer never blocks on a dead client.
	events := make(chan stream.Event, 16)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		defer close(events)
		return h.pipeline.Execute(gctx, run, chanSink(events))
	})

	var writeErr error
	for ev := range events {
		if writeErr != nil {
			continue
		}
		writeErr = encoder.Emit(ev)
	}

	if err := g.Wait(); err != nil {
		log.Printf("[API] Synthesis run for sermon %s ended with error: %v", sermonID, err)
	}
	if writeErr != nil {
		log.Printf("[API] Stream write failed for sermon %s: %v", sermonID, writeErr)
	}
}

// prepareStatus maps pipeline precondition/authorization outcomes to
// status codes. These all fire before the stream starts.
func prepareStatus(err error) int {
	switch {
	case errors.Is(err, synthesis.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, synthesis.ErrSermonNotFound):
		return http.StatusNotFound
	case errors.Is(err, synthesis.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, synthesis.ErrPrecondition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
