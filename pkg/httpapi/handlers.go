package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/kumarsatyam444/Learning-Management-System/pkg/queue"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/store"
)

// TranscriptEnqueuer schedules transcript generation for a new lesson.
// *queue.Producer satisfies it; it returns nil when the queue is down,
// which handlers treat as success (transcripts are best-effort).
type TranscriptEnqueuer interface {
	Enqueue(ctx context.Context, payload queue.TranscriptPayload) *asynq.TaskInfo
}

// Handlers holds the dependencies of the business route handlers.
type Handlers struct {
	store  store.Store
	queue  TranscriptEnqueuer
	logger zerolog.Logger
}

// NewHandlers constructs the handler set.
func NewHandlers(st store.Store, q TranscriptEnqueuer, logger zerolog.Logger) *Handlers {
	return &Handlers{store: st, queue: q, logger: logger}
}

func (h *Handlers) health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type createCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handlers) createCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeFieldRequired, "body", "Invalid JSON body")
		return
	}
	if req.Title == "" {
		WriteError(w, http.StatusBadRequest, CodeFieldRequired, "title", "Title is required")
		return
	}

	course := &store.Course{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   UserID(r.Context()),
		Status:      "draft",
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.CreateCourse(r.Context(), course); err != nil {
		h.logger.Error().Err(err).Msg("Failed to create course")
		WriteError(w, http.StatusInternalServerError, CodeInternal, "", "Failed to create course")
		return
	}

	WriteJSON(w, http.StatusCreated, course)
}

func (h *Handlers) getCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.store.GetCourse(r.Context(), chi.URLParam(r, "courseID"))
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, http.StatusNotFound, CodeNotFound, "", "Course not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load course")
		WriteError(w, http.StatusInternalServerError, CodeInternal, "", "Failed to load course")
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

type createLessonRequest struct {
	Title    string `json:"title"`
	VideoURL string `json:"videoUrl"`
	Order    *int   `json:"order"`
}

func (h *Handlers) createLesson(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	course, err := h.store.GetCourse(r.Context(), courseID)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, http.StatusNotFound, CodeNotFound, "", "Course not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load course")
		WriteError(w, http.StatusInternalServerError, CodeInternal, "", "Failed to load course")
		return
	}
	if course.CreatorID != UserID(r.Context()) && Role(r.Context()) != "admin" {
		WriteError(w, http.StatusForbidden, CodeForbidden, "", "You do not have permission to add lessons to this course")
		return
	}

	var req createLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeFieldRequired, "body", "Invalid JSON body")
		return
	}
	if req.Title == "" {
		WriteError(w, http.StatusBadRequest, CodeFieldRequired, "title", "Title is required")
		return
	}
	if req.VideoURL == "" {
		WriteError(w, http.StatusBadRequest, CodeFieldRequired, "videoUrl", "Video URL is required")
		return
	}
	if req.Order == nil {
		WriteError(w, http.StatusBadRequest, CodeFieldRequired, "order", "Order is required")
		return
	}

	lesson := &store.Lesson{
		ID:         uuid.NewString(),
		CourseID:   courseID,
		Title:      req.Title,
		VideoURL:   req.VideoURL,
		Order:      *req.Order,
		Transcript: store.Transcript{Status: store.TranscriptPending},
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.store.CreateLesson(r.Context(), lesson); err != nil {
		h.logger.Error().Err(err).Msg("Failed to create lesson")
		WriteError(w, http.StatusInternalServerError, CodeInternal, "", "Failed to create lesson")
		return
	}

	// Best-effort: a dead queue must not fail lesson creation.
	h.queue.Enqueue(r.Context(), queue.TranscriptPayload{
		LessonID: lesson.ID,
		VideoURL: lesson.VideoURL,
	})

	WriteJSON(w, http.StatusCreated, lesson)
}

func (h *Handlers) getLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.store.GetLesson(r.Context(), chi.URLParam(r, "lessonID"))
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, http.StatusNotFound, CodeNotFound, "", "Lesson not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load lesson")
		WriteError(w, http.StatusInternalServerError, CodeInternal, "", "Failed to load lesson")
		return
	}
	WriteJSON(w, http.StatusOK, lesson)
}

type applyCreatorRequest struct {
	Bio string `json:"bio"`
}

func (h *Handlers) applyCreator(w http.ResponseWriter, r *http.Request) {
	var req applyCreatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeFieldRequired, "body", "Invalid JSON body")
		return
	}
	if req.Bio == "" {
		WriteError(w, http.StatusBadRequest, CodeFieldRequired, "bio", "Bio is required")
		return
	}

	application := &store.CreatorApplication{
		ID:        uuid.NewString(),
		UserID:    UserID(r.Context()),
		Bio:       req.Bio,
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateCreatorApplication(r.Context(), application); err != nil {
		h.logger.Error().Err(err).Msg("Failed to create creator application")
		WriteError(w, http.StatusInternalServerError, CodeInternal, "", "Failed to submit application")
		return
	}

	WriteJSON(w, http.StatusCreated, application)
}

func (h *Handlers) enroll(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	if _, err := h.store.GetCourse(r.Context(), courseID); errors.Is(err, store.ErrNotFound) {
		WriteError(w, http.StatusNotFound, CodeNotFound, "", "Course not found")
		return
	} else if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load course")
		WriteError(w, http.StatusInternalServerError, CodeInternal, "", "Failed to load course")
		return
	}

	enrollment := &store.Enrollment{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		UserID:    UserID(r.Context()),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateEnrollment(r.Context(), enrollment); err != nil {
		h.logger.Error().Err(err).Msg("Failed to create enrollment")
		WriteError(w, http.StatusInternalServerError, CodeInternal, "", "Failed to enroll")
		return
	}

	WriteJSON(w, http.StatusCreated, enrollment)
}
