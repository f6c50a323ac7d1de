// Package store provides the document store for courses, lessons,
// enrollments and creator applications, with a MongoDB adapter for
// production and an in-memory adapter for tests and local runs.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// TranscriptStatus tracks the lifecycle of a lesson's generated transcript.
type TranscriptStatus string

const (
	TranscriptPending    TranscriptStatus = "pending"
	TranscriptProcessing TranscriptStatus = "processing"
	TranscriptCompleted  TranscriptStatus = "completed"
	TranscriptFailed     TranscriptStatus = "failed"
)

// Transcript is the worker-owned portion of a lesson document.
// The status is advisory: a crash mid-attempt can leave it at
// "processing" until the next attempt overwrites it.
type Transcript struct {
	Text   string           `bson:"text" json:"text"`
	Status TranscriptStatus `bson:"status" json:"status"`
}

// Course is a creator-authored course document.
type Course struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	CreatorID   string    `bson:"creator_id" json:"creatorId"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// Lesson is a single video lesson within a course.
type Lesson struct {
	ID         string     `bson:"_id" json:"id"`
	CourseID   string     `bson:"course_id" json:"courseId"`
	Title      string     `bson:"title" json:"title"`
	VideoURL   string     `bson:"video_url" json:"videoUrl"`
	Order      int        `bson:"order" json:"order"`
	Transcript Transcript `bson:"transcript" json:"transcript"`
	CreatedAt  time.Time  `bson:"created_at" json:"createdAt"`
}

// Enrollment links a learner to a course.
type Enrollment struct {
	ID        string    `bson:"_id" json:"id"`
	CourseID  string    `bson:"course_id" json:"courseId"`
	UserID    string    `bson:"user_id" json:"userId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// CreatorApplication is a learner's request for the creator role.
type CreatorApplication struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	Bio       string    `bson:"bio" json:"bio"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// LessonStore is the subset of the store the transcript worker needs.
// A missing lesson is a retryable failure for the worker, so GetLesson
// returns ErrNotFound rather than (nil, nil).
type LessonStore interface {
	GetLesson(ctx context.Context, id string) (*Lesson, error)

	// SetTranscriptStatus overwrites only the transcript status.
	SetTranscriptStatus(ctx context.Context, id string, status TranscriptStatus) error

	// CompleteTranscript writes the generated text and marks the
	// transcript completed in a single update.
	CompleteTranscript(ctx context.Context, id, text string) error
}

// Store is the full document store surface consumed by the HTTP handlers.
type Store interface {
	LessonStore

	CreateCourse(ctx context.Context, c *Course) error
	GetCourse(ctx context.Context, id string) (*Course, error)
	CreateLesson(ctx context.Context, l *Lesson) error
	CreateEnrollment(ctx context.Context, e *Enrollment) error
	CreateCreatorApplication(ctx context.Context, a *CreatorApplication) error
}
