// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup (EnsureSchema hook). Each ensure* function is
idempotent. Errors are aggregated so every problem is visible and startup can
fail fast.

The unique indexes here are load-bearing: duplicate-key rejection on these
composite keys is the only concurrency control for registrations, replacement
requests, and chest numbers. Nothing in the application layer locks.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureTeams(ctx, db); err != nil {
		problems = append(problems, "teams: "+err.Error())
	}
	if err := ensureStudents(ctx, db); err != nil {
		problems = append(problems, "students: "+err.Error())
	}
	if err := ensurePrograms(ctx, db); err != nil {
		problems = append(problems, "programs: "+err.Error())
	}
	if err := ensureRegistrations(ctx, db); err != nil {
		problems = append(problems, "program_registrations: "+err.Error())
	}
	if err := ensureReplacementRequests(ctx, db); err != nil {
		problems = append(problems, "replacement_requests: "+err.Error())
	}
	if err := ensureSchedule(ctx, db); err != nil {
		problems = append(problems, "registration_schedule: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureTeams(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("teams"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("uniq_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("uniq_name_ci").SetUnique(true),
		},
	})
}

func ensureStudents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("students"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("uniq_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "chest_no", Value: 1}},
			Options: options.Index().SetName("uniq_chest_no").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}},
			Options: options.Index().SetName("by_team"),
		},
	})
}

func ensurePrograms(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("programs"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("uniq_id").SetUnique(true),
		},
	})
}

func ensureRegistrations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("program_registrations"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("uniq_id").SetUnique(true),
		},
		{
			// One seat per (program, student). The insert path relies on the
			// duplicate-key error from this index.
			Keys:    bson.D{{Key: "programId", Value: 1}, {Key: "studentId", Value: 1}},
			Options: options.Index().SetName("uniq_program_student").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "teamId", Value: 1}},
			Options: options.Index().SetName("by_team"),
		},
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}},
			Options: options.Index().SetName("by_student"),
		},
	})
}

func ensureReplacementRequests(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("replacement_requests"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("uniq_id").SetUnique(true),
		},
		{
			// At most one PENDING request per seat. Partial so approved and
			// rejected history for the same seat can accumulate.
			Keys: bson.D{{Key: "programId", Value: 1}, {Key: "oldStudentId", Value: 1}},
			Options: options.Index().
				SetName("uniq_pending_seat").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "pending"}),
		},
		{
			Keys:    bson.D{{Key: "teamId", Value: 1}, {Key: "submittedAt", Value: -1}},
			Options: options.Index().SetName("by_team_recent"),
		},
	})
}

func ensureSchedule(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("registration_schedule"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetName("uniq_key").SetUnique(true),
		},
	})
}

// ensureIndexSet creates each desired index, tolerating the cases Mongo
// reports when an equivalent index already exists.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}

		start := time.Now()
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isIndexConflictErr(err) {
				// Same keys under a different name or options; leave it to a
				// manual migration rather than dropping indexes at boot.
				zap.L().Warn("index conflicts with an existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", name),
					zap.Error(err))
				continue
			}
			errs = append(errs, coll.Name()+"("+name+"): "+err.Error())
			continue
		}

		zap.L().Info("ensured index",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Mongo/DocDB returns IndexOptionsConflict or IndexKeySpecsConflict when an
// index with the same keys already exists under different options.
func isIndexConflictErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "IndexOptionsConflict") || strings.Contains(s, "IndexKeySpecsConflict")
}
