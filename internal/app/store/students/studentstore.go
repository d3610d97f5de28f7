// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/festhub/internal/app/system/normalize"
	"github.com/dalemusser/festhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c             *mongo.Collection
	registrations *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:             db.Collection("students"),
		registrations: db.Collection("program_registrations"),
	}
}

// DuplicateChestError reports a chest number already held by another student.
type DuplicateChestError struct {
	ChestNumber string
	HolderName  string
}

func (e *DuplicateChestError) Error() string {
	if e.HolderName != "" {
		return fmt.Sprintf("Chest number %q is already registered to student %q.", e.ChestNumber, e.HolderName)
	}
	return fmt.Sprintf("Chest number %q is already registered.", e.ChestNumber)
}

// ErrNotFound is returned by GetByID for unknown student ids.
var ErrNotFound = mongo.ErrNoDocuments

// GetByID returns a single student.
func (s *Store) GetByID(ctx context.Context, id string) (models.Student, error) {
	var st models.Student
	if err := s.c.FindOne(ctx, bson.M{"id": id}).Decode(&st); err != nil {
		return models.Student{}, err
	}
	return st, nil
}

// List returns all students, or one team's students when teamID is non-empty.
func (s *Store) List(ctx context.Context, teamID string) ([]models.Student, error) {
	filter := bson.M{}
	if teamID != "" {
		filter["team_id"] = teamID
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var students []models.Student
	if err := cur.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// UpsertInput is the student data accepted from the team portal.
type UpsertInput struct {
	ID          string // empty for a new student
	Name        string
	ChestNumber string
	TeamID      string
	Category    string
}

// Upsert creates or updates a student, normalizing the chest number. A
// pre-check produces a friendly error naming the current holder; the unique
// index on chest_no remains the final arbiter when two upserts race, and its
// duplicate-key error is translated the same way.
//
// Returns the student id and whether the student was newly created.
func (s *Store) Upsert(ctx context.Context, in UpsertInput) (string, bool, error) {
	chest := normalize.ChestNumber(in.ChestNumber)

	dupFilter := bson.M{"chest_no": chest}
	if in.ID != "" {
		dupFilter["id"] = bson.M{"$ne": in.ID}
	}
	var holder models.Student
	err := s.c.FindOne(ctx, dupFilter).Decode(&holder)
	if err == nil {
		return "", false, &DuplicateChestError{ChestNumber: chest, HolderName: holder.Name}
	}
	if err != mongo.ErrNoDocuments {
		return "", false, err
	}

	id := in.ID
	isNew := id == ""
	if isNew {
		id = uuid.NewString()
	}
	name := normalize.Name(in.Name)
	now := time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"name":       name,
			"name_ci":    text.Fold(name),
			"chest_no":   chest,
			"team_id":    in.TeamID,
			"category":   in.Category,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"id":           id,
			"total_points": 0,
			"created_at":   now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := s.c.UpdateOne(ctx, bson.M{"id": id}, update, opts); err != nil {
		if wafflemongo.IsDup(err) {
			return "", false, &DuplicateChestError{ChestNumber: chest}
		}
		return "", false, err
	}
	return id, isNew, nil
}

// Delete removes a student and cascades to their registrations. It returns
// the deleted student's team id (for the deletion notification), or "" when
// the student did not exist.
func (s *Store) Delete(ctx context.Context, id string) (string, error) {
	var st models.Student
	err := s.c.FindOne(ctx, bson.M{"id": id}).Decode(&st)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if _, err := s.c.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return "", err
	}
	if _, err := s.registrations.DeleteMany(ctx, bson.M{"studentId": id}); err != nil {
		return "", err
	}
	return st.TeamID, nil
}
