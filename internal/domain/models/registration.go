// internal/domain/models/registration.go
package models

import "time"

// ProgramRegistration records one student's enrollment in one program.
//
// ProgramName, StudentName, StudentChest, and TeamName are snapshots taken at
// registration time. They are deliberately NOT kept in sync with later edits
// to the student or team; approval of a replacement request is the only
// mutation that rewrites the student fields.
//
// Uniqueness on (programId, studentId) is enforced by the store's composite
// unique index, which is the final arbiter under concurrent registration.
type ProgramRegistration struct {
	ID           string    `bson:"id" json:"id"`
	ProgramID    string    `bson:"programId" json:"program_id"`
	ProgramName  string    `bson:"programName" json:"program_name"`
	StudentID    string    `bson:"studentId" json:"student_id"`
	StudentName  string    `bson:"studentName" json:"student_name"`
	StudentChest string    `bson:"studentChest" json:"student_chest"`
	TeamID       string    `bson:"teamId" json:"team_id"`
	TeamName     string    `bson:"teamName" json:"team_name"`
	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`
}
