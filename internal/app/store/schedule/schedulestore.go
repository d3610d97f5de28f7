// internal/app/store/schedule/schedulestore.go
package schedulestore

import (
	"context"
	"time"

	"github.com/dalemusser/festhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the registration_schedule collection, which holds
// a single document keyed "global". Window checks must call Get on every
// check; the document is never cached because admins can move the window at
// any time.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("registration_schedule")}
}

// Get returns the registration schedule. On first read, when no schedule has
// been configured yet, a default window of now..now+1h is persisted and
// returned so a fresh deployment is immediately usable.
func (s *Store) Get(ctx context.Context) (models.RegistrationSchedule, error) {
	var schedule models.RegistrationSchedule
	err := s.c.FindOne(ctx, bson.M{"key": models.ScheduleKeyGlobal}).Decode(&schedule)
	if err == nil {
		return schedule, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.RegistrationSchedule{}, err
	}

	now := time.Now().UTC()
	schedule = models.RegistrationSchedule{
		Key:           models.ScheduleKeyGlobal,
		StartDateTime: now,
		EndDateTime:   now.Add(time.Hour),
	}
	// Upsert so a concurrent first read cannot insert twice (the unique
	// index on key backs this up).
	if err := s.Save(ctx, schedule); err != nil {
		return models.RegistrationSchedule{}, err
	}
	return schedule, nil
}

// Save upserts the schedule document.
func (s *Store) Save(ctx context.Context, schedule models.RegistrationSchedule) error {
	update := bson.M{
		"$set": bson.M{
			"startDateTime": schedule.StartDateTime.UTC(),
			"endDateTime":   schedule.EndDateTime.UTC(),
		},
		"$setOnInsert": bson.M{"key": models.ScheduleKeyGlobal},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{"key": models.ScheduleKeyGlobal}, update, opts)
	return err
}
