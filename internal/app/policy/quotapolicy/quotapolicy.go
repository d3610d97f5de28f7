// Package quotapolicy decides whether a student may hold a seat in a program.
//
// Quota rules:
//   - Hifz programs are exempt: they never require headroom and their
//     registrations never count toward any bucket.
//   - Non-Hifz on-stage programs (stage == true) share one bucket of 4.
//   - Non-Hifz off-stage programs (stage == false) share one bucket of 6.
//
// The same rules apply to new registrations and to replacement candidates;
// replacement candidacy adds exclusions for the outgoing student and for
// students already registered in the target program.
//
// All functions are pure. Callers supply the current program catalog and the
// current registration list; decisions are only as fresh as those reads, and
// the store's unique indexes remain the final arbiter under races.
package quotapolicy

import (
	"fmt"

	"github.com/dalemusser/festhub/internal/domain/models"
)

// Bucket limits for non-Hifz programs.
const (
	MaxStageItems    = 4
	MaxOffStageItems = 6
)

// Decision is the outcome of a quota evaluation. CurrentCount and MaxCount
// describe the bucket the target program falls in and are populated even when
// the decision is Allowed, for observability. For Hifz programs both are zero
// and Allowed is always true.
type Decision struct {
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason,omitempty"`
	CurrentCount int    `json:"current_count"`
	MaxCount     int    `json:"max_count"`
}

// Evaluate reports whether studentID may register for target.
//
// registrations may be the full registration list or any superset of the
// student's registrations; entries for other students are ignored. An entry
// whose program no longer resolves in allPrograms is skipped defensively.
// An existing registration in target itself is excluded from the count so
// that re-evaluating an already-held seat does not double-count it.
func Evaluate(studentID string, target models.Program, allPrograms []models.Program, registrations []models.ProgramRegistration) Decision {
	if target.IsHifz() {
		return Decision{Allowed: true}
	}

	count := countBucket(studentID, target.Stage, target.ID, allPrograms, registrations)

	if target.Stage {
		if count >= MaxStageItems {
			return Decision{
				Allowed:      false,
				Reason:       fmt.Sprintf("Maximum limit of %d stage items reached (excluding Hifz).", MaxStageItems),
				CurrentCount: count,
				MaxCount:     MaxStageItems,
			}
		}
		return Decision{Allowed: true, CurrentCount: count, MaxCount: MaxStageItems}
	}

	if count >= MaxOffStageItems {
		return Decision{
			Allowed:      false,
			Reason:       fmt.Sprintf("Maximum limit of %d off-stage items reached (excluding Hifz).", MaxOffStageItems),
			CurrentCount: count,
			MaxCount:     MaxOffStageItems,
		}
	}
	return Decision{Allowed: true, CurrentCount: count, MaxCount: MaxOffStageItems}
}

// EvaluateReplacement reports whether candidateID may take over oldStudentID's
// seat in target.
//
// Beyond the registration quota rules, a candidate is rejected when they are
// the student being replaced, or when they already hold their own seat in the
// target program (swapping a registered student in for another would leave the
// program with a duplicate entry).
func EvaluateReplacement(candidateID, oldStudentID string, target models.Program, allPrograms []models.Program, registrations []models.ProgramRegistration) Decision {
	if candidateID == oldStudentID {
		return Decision{Allowed: false, Reason: "Replacement candidate is the student being replaced."}
	}
	for _, reg := range registrations {
		if reg.ProgramID == target.ID && reg.StudentID == candidateID {
			return Decision{Allowed: false, Reason: fmt.Sprintf("Student is already registered for program %q.", target.Name)}
		}
	}
	// The candidate holds no seat in target, so no self-exclusion applies:
	// count every existing registration in the bucket.
	return Evaluate(candidateID, target, allPrograms, registrations)
}

// countBucket counts the student's non-Hifz registrations whose program is in
// the stage (or off-stage) bucket, excluding any registration in excludeID.
func countBucket(studentID string, stage bool, excludeID string, allPrograms []models.Program, registrations []models.ProgramRegistration) int {
	byID := make(map[string]models.Program, len(allPrograms))
	for _, p := range allPrograms {
		byID[p.ID] = p
	}

	count := 0
	for _, reg := range registrations {
		if reg.StudentID != studentID || reg.ProgramID == excludeID {
			continue
		}
		p, ok := byID[reg.ProgramID]
		if !ok {
			// Program retired after the registration was taken; ignore.
			continue
		}
		if p.IsHifz() || p.Stage != stage {
			continue
		}
		count++
	}
	return count
}
