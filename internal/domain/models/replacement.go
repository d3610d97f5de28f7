// internal/domain/models/replacement.go
package models

import "time"

// Replacement request statuses. Pending is the only non-terminal state;
// approved and rejected requests are immutable.
const (
	ReplacementPending  = "pending"
	ReplacementApproved = "approved"
	ReplacementRejected = "rejected"
)

// ReplacementRequest is a team's proposal to swap one registered student for
// another within the same program. At most one pending request may exist per
// (programId, oldStudentId); the store enforces this with a partial unique
// index scoped to status == "pending".
//
// Name and chest fields are snapshots taken at submission time, mirroring the
// snapshot semantics of ProgramRegistration.
type ReplacementRequest struct {
	ID              string `bson:"id" json:"id"`
	ProgramID       string `bson:"programId" json:"program_id"`
	ProgramName     string `bson:"programName" json:"program_name"`
	OldStudentID    string `bson:"oldStudentId" json:"old_student_id"`
	OldStudentName  string `bson:"oldStudentName" json:"old_student_name"`
	OldStudentChest string `bson:"oldStudentChest" json:"old_student_chest"`
	NewStudentID    string `bson:"newStudentId" json:"new_student_id"`
	NewStudentName  string `bson:"newStudentName" json:"new_student_name"`
	NewStudentChest string `bson:"newStudentChest" json:"new_student_chest"`
	TeamID          string `bson:"teamId" json:"team_id"`
	TeamName        string `bson:"teamName" json:"team_name"`
	Reason          string `bson:"reason" json:"reason"`

	Status      string     `bson:"status" json:"status"`
	SubmittedAt time.Time  `bson:"submittedAt" json:"submitted_at"`
	ReviewedAt  *time.Time `bson:"reviewedAt,omitempty" json:"reviewed_at,omitempty"`
	ReviewedBy  string     `bson:"reviewedBy,omitempty" json:"reviewed_by,omitempty"`
}

// IsPending reports whether the request can still be approved or rejected.
func (r ReplacementRequest) IsPending() bool {
	return r.Status == ReplacementPending
}
