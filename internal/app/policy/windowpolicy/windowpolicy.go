// Package windowpolicy decides whether the registration window is open.
//
// The schedule must be re-read from the store on every check; admins can move
// the window at any time and a cached copy would let registrations slip
// through after closing.
package windowpolicy

import (
	"time"

	"github.com/dalemusser/festhub/internal/domain/models"
)

// IsOpen reports whether now falls inside the schedule, boundaries included:
// start <= now <= end.
func IsOpen(now time.Time, schedule models.RegistrationSchedule) bool {
	return !now.Before(schedule.StartDateTime) && !now.After(schedule.EndDateTime)
}
