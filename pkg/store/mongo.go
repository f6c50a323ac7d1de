package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names within the LMS database.
const (
	collCourses      = "courses"
	collLessons      = "lessons"
	collEnrollments  = "enrollments"
	collApplications = "creator_applications"
)

// MongoStore implements Store on MongoDB.
type MongoStore struct {
	db *mongo.Database
}

// ConnectMongo connects to MongoDB and returns a store bound to dbName.
// Unlike the Redis adapter the document store is required: a connection
// failure here is fatal to the caller.
func ConnectMongo(ctx context.Context, url, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &MongoStore{db: client.Database(dbName)}, nil
}

// NewMongoStore wraps an existing database handle. Used by tests.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func (s *MongoStore) CreateCourse(ctx context.Context, c *Course) error {
	if _, err := s.db.Collection(collCourses).InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

func (s *MongoStore) GetCourse(ctx context.Context, id string) (*Course, error) {
	var c Course
	err := s.db.Collection(collCourses).FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &c, nil
}

func (s *MongoStore) CreateLesson(ctx context.Context, l *Lesson) error {
	if _, err := s.db.Collection(collLessons).InsertOne(ctx, l); err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}
	return nil
}

func (s *MongoStore) GetLesson(ctx context.Context, id string) (*Lesson, error) {
	var l Lesson
	err := s.db.Collection(collLessons).FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lesson: %w", err)
	}
	return &l, nil
}

func (s *MongoStore) SetTranscriptStatus(ctx context.Context, id string, status TranscriptStatus) error {
	res, err := s.db.Collection(collLessons).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"transcript.status": status}},
	)
	if err != nil {
		return fmt.Errorf("update transcript status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CompleteTranscript(ctx context.Context, id, text string) error {
	res, err := s.db.Collection(collLessons).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"transcript.text":   text,
			"transcript.status": TranscriptCompleted,
		}},
	)
	if err != nil {
		return fmt.Errorf("complete transcript: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreateEnrollment(ctx context.Context, e *Enrollment) error {
	if _, err := s.db.Collection(collEnrollments).InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateCreatorApplication(ctx context.Context, a *CreatorApplication) error {
	if _, err := s.db.Collection(collApplications).InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert creator application: %w", err)
	}
	return nil
}
