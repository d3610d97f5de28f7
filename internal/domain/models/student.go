// internal/domain/models/student.go
package models

import "time"

// Student categories.
const (
	CategoryJunior = "junior"
	CategorySenior = "senior"
)

// IsValidCategory checks if a value is a valid student category.
func IsValidCategory(value string) bool {
	return value == CategoryJunior || value == CategorySenior
}

// Student is a registered participant belonging to a team.
//
// ChestNumber is the festival-wide competitor number printed on the chest
// card. It is stored trimmed and upper-cased and is unique across all teams
// (enforced by a unique index on chest_no).
type Student struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	NameCI      string `bson:"name_ci" json:"-"`
	TeamID      string `bson:"team_id" json:"team_id"`
	ChestNumber string `bson:"chest_no" json:"chest_number"`
	Category    string `bson:"category" json:"category"`
	TotalPoints int    `bson:"total_points" json:"total_points"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
