// internal/app/store/teams/teamstore.go
package teamstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/festhub/internal/app/system/normalize"
	"github.com/dalemusser/festhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	c             *mongo.Collection
	students      *mongo.Collection
	registrations *mongo.Collection
}

var (
	ErrDuplicateTeamName = errors.New("a team with this name already exists")
	ErrNotFound          = errors.New("team not found")
)

func New(db *mongo.Database) *Store {
	return &Store{
		c:             db.Collection("teams"),
		students:      db.Collection("students"),
		registrations: db.Collection("program_registrations"),
	}
}

// List returns all teams with portal passwords blanked.
func (s *Store) List(ctx context.Context) ([]models.Team, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var teams []models.Team
	if err := cur.All(ctx, &teams); err != nil {
		return nil, err
	}
	for i := range teams {
		teams[i].PortalPassword = ""
	}
	return teams, nil
}

// GetByID returns the team including its password hash (for login checks).
func (s *Store) GetByID(ctx context.Context, id string) (models.Team, error) {
	var t models.Team
	err := s.c.FindOne(ctx, bson.M{"id": id}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return models.Team{}, ErrNotFound
	}
	if err != nil {
		return models.Team{}, err
	}
	return t, nil
}

// GetByName looks a team up by its case-folded name (for login).
func (s *Store) GetByName(ctx context.Context, name string) (models.Team, error) {
	var t models.Team
	err := s.c.FindOne(ctx, bson.M{"name_ci": text.Fold(name)}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return models.Team{}, ErrNotFound
	}
	if err != nil {
		return models.Team{}, err
	}
	return t, nil
}

// SaveInput is the team data accepted from the admin registry. Password is
// the new plain-text portal password; leave it empty to keep the current one.
type SaveInput struct {
	ID             string
	Name           string
	Leader         string
	Color          string
	Password       string
	Place          string
	District       string
	WhatsAppNumber string
	PrincipalName  string
	PrincipalPhone string
}

// Save upserts a team by id, assigning a fresh id for new teams. The portal
// password is bcrypt-hashed when a new one is supplied; values that already
// look like bcrypt hashes (seed imports) are stored as-is.
func (s *Store) Save(ctx context.Context, in SaveInput) (string, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	name := normalize.Name(in.Name)
	now := time.Now().UTC()

	set := bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"leader":     normalize.Name(in.Leader),
		"color":      normalize.HexColor(in.Color, models.DefaultTeamColor),
		"updated_at": now,
	}
	if in.Place != "" {
		set["place"] = in.Place
	}
	if in.District != "" {
		set["district"] = in.District
	}
	if in.WhatsAppNumber != "" {
		set["whatsapp_number"] = in.WhatsAppNumber
	}
	if in.PrincipalName != "" {
		set["principal_name"] = in.PrincipalName
	}
	if in.PrincipalPhone != "" {
		set["principal_phone"] = in.PrincipalPhone
	}

	if pw := strings.TrimSpace(in.Password); pw != "" {
		if strings.HasPrefix(pw, "$2") {
			set["portal_password"] = pw
		} else {
			hashed, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
			if err != nil {
				return "", err
			}
			set["portal_password"] = string(hashed)
		}
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"id":           id,
			"description":  name + " squad",
			"contact":      strings.ReplaceAll(strings.ToLower(name), " ", "") + "@fest.edu",
			"total_points": 0,
			"created_at":   now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := s.c.UpdateOne(ctx, bson.M{"id": id}, update, opts); err != nil {
		if wafflemongo.IsDup(err) {
			return "", ErrDuplicateTeamName
		}
		return "", err
	}
	return id, nil
}

// Delete removes a team and cascades to its students and registrations.
// Deleting a non-existent team is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.c.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return err
	}
	if _, err := s.students.DeleteMany(ctx, bson.M{"team_id": id}); err != nil {
		return err
	}
	_, err := s.registrations.DeleteMany(ctx, bson.M{"teamId": id})
	return err
}

// CheckPassword verifies a plain-text portal password against the stored
// bcrypt hash. Teams without a password set can never sign in.
func (s *Store) CheckPassword(team models.Team, password string) bool {
	if team.PortalPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(team.PortalPassword), []byte(password)) == nil
}
