// internal/app/store/programs/programstore.go
package programstore

import (
	"context"
	"errors"

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

var (
	ErrNotFound           = errors.New("program not found")
	ErrDuplicateProgramID = errors.New("a program with this id already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("programs")}
}

// List returns the full program catalog. Programs written before candidate
// limits existed get the default limit of 1.
func (s *Store) List(ctx context.Context) ([]models.Program, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var programs []models.Program
	if err := cur.All(ctx, &programs); err != nil {
		return nil, err
	}
	for i := range programs {
		if programs[i].CandidateLimit <= 0 {
			programs[i].CandidateLimit = 1
		}
	}
	return programs, nil
}

// GetByID returns one catalog entry.
func (s *Store) GetByID(ctx context.Context, id string) (models.Program, error) {
	var p models.Program
	err := s.c.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Program{}, ErrNotFound
	}
	if err != nil {
		return models.Program{}, err
	}
	if p.CandidateLimit <= 0 {
		p.CandidateLimit = 1
	}
	return p, nil
}

// Save upserts a catalog entry, assigning a fresh id for new programs.
func (s *Store) Save(ctx context.Context, p models.Program) (models.Program, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CandidateLimit <= 0 {
		p.CandidateLimit = 1
	}

	update := bson.M{"$set": bson.M{
		"name":           p.Name,
		"section":        p.Section,
		"type":           p.Type,
		"stage":          p.Stage,
		"candidateLimit": p.CandidateLimit,
	}, "$setOnInsert": bson.M{"id": p.ID}}

	opts := options.Update().SetUpsert(true)
	if _, err := s.c.UpdateOne(ctx, bson.M{"id": p.ID}, update, opts); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Program{}, ErrDuplicateProgramID
		}
		return models.Program{}, err
	}
	return p, nil
}

// Delete retires a program from the catalog. Callers are responsible for
// clearing its registrations (registrationstore.DeleteByProgram).
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"id": id})
	return err
}
