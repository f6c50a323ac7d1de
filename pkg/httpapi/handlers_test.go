package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/kumarsatyam444/Learning-Management-System/pkg/queue"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/store"
)

// captureQueue records enqueued payloads without a Redis backend.
type captureQueue struct {
	payloads []queue.TranscriptPayload
}

func (q *captureQueue) Enqueue(_ context.Context, payload queue.TranscriptPayload) *asynq.TaskInfo {
	q.payloads = append(q.payloads, payload)
	return nil
}

type testAPI struct {
	store  *store.MemoryStore
	queue  *captureQueue
	router http.Handler
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()

	st := store.NewMemoryStore()
	q := &captureQueue{}
	h := NewHandlers(st, q, zerolog.Nop())

	router := NewRouter(RouterConfig{
		Handlers:     h,
		OptionalAuth: OptionalAuth(testSecret),
	})

	return &testAPI{store: st, queue: q, router: router}
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func mintTestToken(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := MintToken(testSecret, userID, role)
	if err != nil {
		t.Fatalf("MintToken failed: %v", err)
	}
	return token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestHealth(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestCreateCourse(t *testing.T) {
	api := setupTestAPI(t)
	creator := mintTestToken(t, "creator-1", "creator")

	t.Run("anonymous_rejected", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/courses", "", `{"title":"Go 101"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("learner_forbidden", func(t *testing.T) {
		learner := mintTestToken(t, "learner-1", "learner")
		rec := api.do(t, http.MethodPost, "/api/courses", learner, `{"title":"Go 101"}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.Code)
		}
	})

	t.Run("title_required", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/courses", creator, `{"description":"no title"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", rec.Code)
		}
		detail := decodeError(t, rec)
		if detail.Code != CodeFieldRequired {
			t.Errorf("Expected code %q, got %q", CodeFieldRequired, detail.Code)
		}
		if detail.Field != "title" {
			t.Errorf("Expected field title, got %q", detail.Field)
		}
	})

	t.Run("created", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/courses", creator, `{"title":"Go 101","description":"Intro"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var course store.Course
		if err := json.Unmarshal(rec.Body.Bytes(), &course); err != nil {
			t.Fatalf("Failed to decode course: %v", err)
		}
		if course.ID == "" {
			t.Error("Expected a generated course id")
		}
		if course.CreatorID != "creator-1" {
			t.Errorf("Expected creator id creator-1, got %q", course.CreatorID)
		}
		if course.Status != "draft" {
			t.Errorf("Expected draft status, got %q", course.Status)
		}

		if _, err := api.store.GetCourse(context.Background(), course.ID); err != nil {
			t.Errorf("Expected course to be persisted: %v", err)
		}
	})
}

func TestGetCourse(t *testing.T) {
	api := setupTestAPI(t)

	t.Run("not_found", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/courses/missing", "", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("Expected 404, got %d", rec.Code)
		}
		if detail := decodeError(t, rec); detail.Code != CodeNotFound {
			t.Errorf("Expected code %q, got %q", CodeNotFound, detail.Code)
		}
	})

	t.Run("found", func(t *testing.T) {
		seedCourse(t, api.store, "course-1", "creator-1")
		rec := api.do(t, http.MethodGet, "/api/courses/course-1", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
	})
}

func seedCourse(t *testing.T, st *store.MemoryStore, id, creatorID string) {
	t.Helper()
	err := st.CreateCourse(context.Background(), &store.Course{
		ID:        id,
		Title:     "Seeded",
		CreatorID: creatorID,
		Status:    "draft",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to seed course: %v", err)
	}
}

func TestCreateLesson(t *testing.T) {
	api := setupTestAPI(t)
	seedCourse(t, api.store, "course-1", "creator-1")
	owner := mintTestToken(t, "creator-1", "creator")

	t.Run("course_not_found", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/courses/missing/lessons", owner,
			`{"title":"L1","videoUrl":"https://v/1","order":1}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})

	t.Run("non_owner_forbidden", func(t *testing.T) {
		other := mintTestToken(t, "creator-2", "creator")
		rec := api.do(t, http.MethodPost, "/api/courses/course-1/lessons", other,
			`{"title":"L1","videoUrl":"https://v/1","order":1}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.Code)
		}
	})

	t.Run("admin_allowed", func(t *testing.T) {
		admin := mintTestToken(t, "admin-1", "admin")
		rec := api.do(t, http.MethodPost, "/api/courses/course-1/lessons", admin,
			`{"title":"Admin lesson","videoUrl":"https://v/a","order":9}`)
		if rec.Code != http.StatusCreated {
			t.Errorf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("field_validation", func(t *testing.T) {
		tests := []struct {
			name  string
			body  string
			field string
		}{
			{"missing_title", `{"videoUrl":"https://v/1","order":1}`, "title"},
			{"missing_video_url", `{"title":"L1","order":1}`, "videoUrl"},
			{"missing_order", `{"title":"L1","videoUrl":"https://v/1"}`, "order"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := api.do(t, http.MethodPost, "/api/courses/course-1/lessons", owner, tt.body)
				if rec.Code != http.StatusBadRequest {
					t.Fatalf("Expected 400, got %d", rec.Code)
				}
				detail := decodeError(t, rec)
				if detail.Code != CodeFieldRequired || detail.Field != tt.field {
					t.Errorf("Expected FIELD_REQUIRED on %q, got %s/%s", tt.field, detail.Code, detail.Field)
				}
			})
		}
	})

	t.Run("zero_order_valid", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/courses/course-1/lessons", owner,
			`{"title":"First","videoUrl":"https://v/0","order":0}`)
		if rec.Code != http.StatusCreated {
			t.Errorf("Expected order 0 to be accepted, got %d", rec.Code)
		}
	})

	t.Run("created_pending_and_enqueued", func(t *testing.T) {
		before := len(api.queue.payloads)
		rec := api.do(t, http.MethodPost, "/api/courses/course-1/lessons", owner,
			`{"title":"L1","videoUrl":"https://v/1","order":1}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var lesson store.Lesson
		if err := json.Unmarshal(rec.Body.Bytes(), &lesson); err != nil {
			t.Fatalf("Failed to decode lesson: %v", err)
		}
		if lesson.Transcript.Status != store.TranscriptPending {
			t.Errorf("Expected pending transcript, got %q", lesson.Transcript.Status)
		}

		if len(api.queue.payloads) != before+1 {
			t.Fatalf("Expected one enqueued job, got %d", len(api.queue.payloads)-before)
		}
		payload := api.queue.payloads[len(api.queue.payloads)-1]
		if payload.LessonID != lesson.ID {
			t.Errorf("Expected job for lesson %q, got %q", lesson.ID, payload.LessonID)
		}
		if payload.VideoURL != "https://v/1" {
			t.Errorf("Expected job video url, got %q", payload.VideoURL)
		}
	})
}

func TestGetLesson(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/lessons/missing", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestApplyCreator(t *testing.T) {
	api := setupTestAPI(t)
	learner := mintTestToken(t, "learner-1", "learner")

	t.Run("anonymous_rejected", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/creator/apply", "", `{"bio":"I teach Go"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("bio_required", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/creator/apply", learner, `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", rec.Code)
		}
		if detail := decodeError(t, rec); detail.Field != "bio" {
			t.Errorf("Expected field bio, got %q", detail.Field)
		}
	})

	t.Run("created", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/creator/apply", learner, `{"bio":"I teach Go"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", rec.Code)
		}

		var app store.CreatorApplication
		if err := json.Unmarshal(rec.Body.Bytes(), &app); err != nil {
			t.Fatalf("Failed to decode application: %v", err)
		}
		if app.UserID != "learner-1" {
			t.Errorf("Expected applicant learner-1, got %q", app.UserID)
		}
		if app.Status != "pending" {
			t.Errorf("Expected pending status, got %q", app.Status)
		}
	})
}

func TestEnroll(t *testing.T) {
	api := setupTestAPI(t)
	seedCourse(t, api.store, "course-1", "creator-1")
	learner := mintTestToken(t, "learner-1", "learner")

	t.Run("anonymous_rejected", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/courses/course-1/enroll", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("course_not_found", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/courses/missing/enroll", learner, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})

	t.Run("created", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/courses/course-1/enroll", learner, "")
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", rec.Code)
		}
		if api.store.CountEnrollments() != 1 {
			t.Errorf("Expected one enrollment, got %d", api.store.CountEnrollments())
		}
	})
}
