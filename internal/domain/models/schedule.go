// internal/domain/models/schedule.go
package models

import "time"

// ScheduleKeyGlobal identifies the single registration schedule document.
const ScheduleKeyGlobal = "global"

// RegistrationSchedule is the singleton window during which new program
// registrations may be created. It does not gate replacement requests.
//
// Admins can change the window at any time, so callers must re-read the
// schedule on every check rather than caching it in memory.
type RegistrationSchedule struct {
	Key           string    `bson:"key" json:"-"`
	StartDateTime time.Time `bson:"startDateTime" json:"start_date_time"`
	EndDateTime   time.Time `bson:"endDateTime" json:"end_date_time"`
}
