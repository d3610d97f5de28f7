// internal/app/store/registrations/registrationstore.go
package registrationstore

// Concurrency note: the unique index on (programId, studentId) is the only
// guard against two callers registering the same seat at once. Handler-side
// window and quota checks are optimizations; the duplicate-key error from
// Insert is the authoritative outcome.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/festhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("program_registrations")}
}

// ErrSeatNotFound is returned by SwapStudent when no registration holds the
// (program, student) pair being replaced.
var ErrSeatNotFound = errors.New("no registration exists for that program and student")

// DuplicateError reports that a (program, student) seat is already taken.
type DuplicateError struct {
	StudentName string
	ProgramName string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("Student %q is already registered for program %q.", e.StudentName, e.ProgramName)
}

// Entry is the caller-supplied data for a new registration. Name, chest, and
// team fields are snapshots taken by the caller at registration time.
type Entry struct {
	ProgramID    string
	ProgramName  string
	StudentID    string
	StudentName  string
	StudentChest string
	TeamID       string
	TeamName     string
}

// Insert creates the registration with a fresh id and current timestamp.
// A duplicate-key violation on (programId, studentId) is translated into a
// *DuplicateError naming the student and program.
func (s *Store) Insert(ctx context.Context, entry Entry) (models.ProgramRegistration, error) {
	record := models.ProgramRegistration{
		ID:           uuid.NewString(),
		ProgramID:    entry.ProgramID,
		ProgramName:  entry.ProgramName,
		StudentID:    entry.StudentID,
		StudentName:  entry.StudentName,
		StudentChest: entry.StudentChest,
		TeamID:       entry.TeamID,
		TeamName:     entry.TeamName,
		Timestamp:    time.Now().UTC(),
	}

	if _, err := s.c.InsertOne(ctx, record); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ProgramRegistration{}, &DuplicateError{
				StudentName: entry.StudentName,
				ProgramName: entry.ProgramName,
			}
		}
		return models.ProgramRegistration{}, err
	}
	return record, nil
}

// Filter narrows List results. Zero-value fields are ignored.
type Filter struct {
	ProgramID string
	StudentID string
	TeamID    string
}

// List returns registrations matching the filter, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]models.ProgramRegistration, error) {
	filter := bson.M{}
	if f.ProgramID != "" {
		filter["programId"] = f.ProgramID
	}
	if f.StudentID != "" {
		filter["studentId"] = f.StudentID
	}
	if f.TeamID != "" {
		filter["teamId"] = f.TeamID
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var regs []models.ProgramRegistration
	if err := cur.All(ctx, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// GetByID returns one registration, or (zero, false) when it does not exist.
func (s *Store) GetByID(ctx context.Context, id string) (models.ProgramRegistration, bool, error) {
	var reg models.ProgramRegistration
	err := s.c.FindOne(ctx, bson.M{"id": id}).Decode(&reg)
	if err == mongo.ErrNoDocuments {
		return models.ProgramRegistration{}, false, nil
	}
	if err != nil {
		return models.ProgramRegistration{}, false, err
	}
	return reg, true, nil
}

// FindByProgramStudent returns the registration holding a given seat, or
// (zero, false) when the seat is empty.
func (s *Store) FindByProgramStudent(ctx context.Context, programID, studentID string) (models.ProgramRegistration, bool, error) {
	var reg models.ProgramRegistration
	err := s.c.FindOne(ctx, bson.M{"programId": programID, "studentId": studentID}).Decode(&reg)
	if err == mongo.ErrNoDocuments {
		return models.ProgramRegistration{}, false, nil
	}
	if err != nil {
		return models.ProgramRegistration{}, false, err
	}
	return reg, true, nil
}

// Delete removes a registration by id. It returns the deleted record so the
// caller can emit the deletion event; deleting a non-existent registration
// is a no-op and returns found=false.
func (s *Store) Delete(ctx context.Context, id string) (models.ProgramRegistration, bool, error) {
	reg, found, err := s.GetByID(ctx, id)
	if err != nil {
		return models.ProgramRegistration{}, false, err
	}
	if _, err := s.c.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return models.ProgramRegistration{}, false, err
	}
	return reg, found, nil
}

// DeleteByProgram removes every registration for a retired program and
// returns the removed records so the caller can emit deletion events.
func (s *Store) DeleteByProgram(ctx context.Context, programID string) ([]models.ProgramRegistration, error) {
	regs, err := s.List(ctx, Filter{ProgramID: programID})
	if err != nil {
		return nil, err
	}
	if _, err := s.c.DeleteMany(ctx, bson.M{"programId": programID}); err != nil {
		return nil, err
	}
	return regs, nil
}

// SwapStudent rewrites the student fields of the registration holding
// (programID, oldStudentID) in a single atomic update, preserving the
// record's id and timestamp. Used by replacement approval. Returns
// ErrSeatNotFound when the seat no longer exists, so an approval against a
// registration deleted after submission fails loudly instead of approving
// with nothing swapped.
func (s *Store) SwapStudent(ctx context.Context, programID, oldStudentID, newStudentID, newStudentName, newStudentChest string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"programId": programID, "studentId": oldStudentID},
		bson.M{"$set": bson.M{
			"studentId":    newStudentID,
			"studentName":  newStudentName,
			"studentChest": newStudentChest,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSeatNotFound
	}
	return nil
}
