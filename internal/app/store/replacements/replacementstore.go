// internal/app/store/replacements/replacementstore.go
package replacementstore

// Request lifecycle: pending → approved | rejected. Both outcomes are
// terminal; a processed request is never mutated again.
//
// Approval touches two documents and Mongo standalone deployments give us no
// multi-document transaction, so the registration swap is applied first and
// the status flip second. A crash between the two leaves a recoverable state
// (seat swapped, request still pending); re-running approval detects the
// already-swapped seat and short-circuits to flipping the status.

import (
	"context"
	"errors"
	"fmt"
	"time"

	registrationstore "github.com/dalemusser/festhub/internal/app/store/registrations"
	"github.com/dalemusser/festhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c             *mongo.Collection
	registrations *registrationstore.Store
}

var (
	// ErrNotFound is returned when the request id does not exist.
	ErrNotFound = errors.New("replacement request not found")

	// ErrAlreadyProcessed is returned when approving or rejecting a request
	// that is no longer pending. Callers should surface it as a conflict.
	ErrAlreadyProcessed = errors.New("request has already been processed")

	// ErrSeatConflict is returned when the replacement student registered for
	// the program on their own after the request was submitted. The swap can
	// no longer be applied; the request stays pending for the admin to reject.
	ErrSeatConflict = errors.New("the replacement student now holds their own seat in this program")
)

func New(db *mongo.Database) *Store {
	return &Store{
		c:             db.Collection("replacement_requests"),
		registrations: registrationstore.New(db),
	}
}

// DuplicateError reports that a pending request already exists for the seat.
type DuplicateError struct {
	OldStudentName string
	ProgramName    string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("A pending replacement request already exists for %q in program %q.", e.OldStudentName, e.ProgramName)
}

// Input is the caller-supplied data for a new request. Name and chest fields
// are snapshots taken by the caller at submission time; eligibility of the
// new student must be checked by the caller (quotapolicy.EvaluateReplacement)
// before submitting.
type Input struct {
	ProgramID       string
	ProgramName     string
	OldStudentID    string
	OldStudentName  string
	OldStudentChest string
	NewStudentID    string
	NewStudentName  string
	NewStudentChest string
	TeamID          string
	TeamName        string
	Reason          string
}

// Create inserts a pending request. A duplicate-key violation on the partial
// unique index (programId, oldStudentId, status=pending) is translated into a
// *DuplicateError; this is what stops two simultaneous swap requests for the
// same seat.
func (s *Store) Create(ctx context.Context, in Input) (models.ReplacementRequest, error) {
	record := models.ReplacementRequest{
		ID:              uuid.NewString(),
		ProgramID:       in.ProgramID,
		ProgramName:     in.ProgramName,
		OldStudentID:    in.OldStudentID,
		OldStudentName:  in.OldStudentName,
		OldStudentChest: in.OldStudentChest,
		NewStudentID:    in.NewStudentID,
		NewStudentName:  in.NewStudentName,
		NewStudentChest: in.NewStudentChest,
		TeamID:          in.TeamID,
		TeamName:        in.TeamName,
		Reason:          in.Reason,
		Status:          models.ReplacementPending,
		SubmittedAt:     time.Now().UTC(),
	}

	if _, err := s.c.InsertOne(ctx, record); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ReplacementRequest{}, &DuplicateError{
				OldStudentName: in.OldStudentName,
				ProgramName:    in.ProgramName,
			}
		}
		return models.ReplacementRequest{}, err
	}
	return record, nil
}

// GetByID returns one request.
func (s *Store) GetByID(ctx context.Context, id string) (models.ReplacementRequest, error) {
	var req models.ReplacementRequest
	err := s.c.FindOne(ctx, bson.M{"id": id}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return models.ReplacementRequest{}, ErrNotFound
	}
	if err != nil {
		return models.ReplacementRequest{}, err
	}
	return req, nil
}

// List returns requests newest first, optionally scoped to one team.
func (s *Store) List(ctx context.Context, teamID string) ([]models.ReplacementRequest, error) {
	filter := bson.M{}
	if teamID != "" {
		filter["teamId"] = teamID
	}
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var requests []models.ReplacementRequest
	if err := cur.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// Approve transitions a pending request to approved and rewrites the target
// registration's student fields, preserving the registration's id and
// timestamp. Returns the approved request.
//
// The swap is skipped only when the old student's seat is gone and the new
// student's is present, which is the crash-recovery re-entry state (see
// package comment). The new student holding a seat while the old student's
// still exists means they registered on their own after submission; applying
// the swap would then violate the seat index, so that case is ErrSeatConflict.
// Both seats missing means the target registration was deleted after
// submission and the approval fails with registrationstore.ErrSeatNotFound.
func (s *Store) Approve(ctx context.Context, requestID, reviewedBy string) (models.ReplacementRequest, error) {
	req, err := s.GetByID(ctx, requestID)
	if err != nil {
		return models.ReplacementRequest{}, err
	}
	if !req.IsPending() {
		return models.ReplacementRequest{}, ErrAlreadyProcessed
	}

	_, oldHeld, err := s.registrations.FindByProgramStudent(ctx, req.ProgramID, req.OldStudentID)
	if err != nil {
		return models.ReplacementRequest{}, err
	}
	_, newHeld, err := s.registrations.FindByProgramStudent(ctx, req.ProgramID, req.NewStudentID)
	if err != nil {
		return models.ReplacementRequest{}, err
	}

	switch {
	case oldHeld && newHeld:
		return models.ReplacementRequest{}, ErrSeatConflict
	case !oldHeld && newHeld:
		// Already swapped; fall through to the status flip.
	default:
		// Covers the normal case and, via ErrSeatNotFound, the seat having
		// been deleted after submission.
		if err := s.registrations.SwapStudent(ctx, req.ProgramID, req.OldStudentID,
			req.NewStudentID, req.NewStudentName, req.NewStudentChest); err != nil {
			return models.ReplacementRequest{}, err
		}
	}

	return s.finish(ctx, req, models.ReplacementApproved, reviewedBy)
}

// Reject transitions a pending request to rejected. No registration is
// touched. Rejecting a processed request is ErrAlreadyProcessed, not a
// silent success.
func (s *Store) Reject(ctx context.Context, requestID, reviewedBy string) (models.ReplacementRequest, error) {
	req, err := s.GetByID(ctx, requestID)
	if err != nil {
		return models.ReplacementRequest{}, err
	}
	if !req.IsPending() {
		return models.ReplacementRequest{}, ErrAlreadyProcessed
	}
	return s.finish(ctx, req, models.ReplacementRejected, reviewedBy)
}

// finish flips a pending request to its terminal status with audit fields,
// in one atomic update guarded on status so a concurrent reviewer loses.
func (s *Store) finish(ctx context.Context, req models.ReplacementRequest, status, reviewedBy string) (models.ReplacementRequest, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"id": req.ID, "status": models.ReplacementPending},
		bson.M{"$set": bson.M{
			"status":     status,
			"reviewedAt": now,
			"reviewedBy": reviewedBy,
		}},
	)
	if err != nil {
		return models.ReplacementRequest{}, err
	}
	if res.MatchedCount == 0 {
		// Another reviewer processed it between our read and this write.
		return models.ReplacementRequest{}, ErrAlreadyProcessed
	}

	req.Status = status
	req.ReviewedAt = &now
	req.ReviewedBy = reviewedBy
	return req, nil
}
