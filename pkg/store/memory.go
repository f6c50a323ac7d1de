package store

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory Store used by tests and by
// local runs without a MongoDB instance.
type MemoryStore struct {
	mu           sync.RWMutex
	courses      map[string]Course
	lessons      map[string]Lesson
	enrollments  map[string]Enrollment
	applications map[string]CreatorApplication
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		courses:      make(map[string]Course),
		lessons:      make(map[string]Lesson),
		enrollments:  make(map[string]Enrollment),
		applications: make(map[string]CreatorApplication),
	}
}

func (s *MemoryStore) CreateCourse(_ context.Context, c *Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[c.ID] = *c
	return nil
}

func (s *MemoryStore) GetCourse(_ context.Context, id string) (*Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) CreateLesson(_ context.Context, l *Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lessons[l.ID] = *l
	return nil
}

func (s *MemoryStore) GetLesson(_ context.Context, id string) (*Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lessons[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (s *MemoryStore) SetTranscriptStatus(_ context.Context, id string, status TranscriptStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lessons[id]
	if !ok {
		return ErrNotFound
	}
	l.Transcript.Status = status
	s.lessons[id] = l
	return nil
}

func (s *MemoryStore) CompleteTranscript(_ context.Context, id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lessons[id]
	if !ok {
		return ErrNotFound
	}
	l.Transcript.Text = text
	l.Transcript.Status = TranscriptCompleted
	s.lessons[id] = l
	return nil
}

func (s *MemoryStore) CreateEnrollment(_ context.Context, e *Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments[e.ID] = *e
	return nil
}

func (s *MemoryStore) CreateCreatorApplication(_ context.Context, a *CreatorApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[a.ID] = *a
	return nil
}

// CountEnrollments reports the number of stored enrollments.
// Test helper for verifying at-most-once handler execution.
func (s *MemoryStore) CountEnrollments() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.enrollments)
}

// CountCourses reports the number of stored courses.
func (s *MemoryStore) CountCourses() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses)
}
