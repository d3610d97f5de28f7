// internal/domain/models/team.go
package models

import "time"

// Terminology: Entity Identifiers
//   - ID / id: the application-level UUID string carried on every record and
//     exposed to clients. All cross-collection references (team_id, program_id,
//     student_id) use these, never the raw Mongo _id.

// DefaultTeamColor is used when a team has no theme color or an invalid one.
const DefaultTeamColor = "#0ea5e9"

// Team is a participating institution's squad in the festival.
//
// PortalPassword holds the bcrypt hash the team leader signs in with. It is
// never serialized to JSON; list endpoints return teams with the hash blanked.
type Team struct {
	ID     string `bson:"id" json:"id"`
	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"-"`
	Leader string `bson:"leader" json:"leader"`

	// Color is the team's theme color as a #RGB or #RRGGBB hex string.
	Color       string `bson:"color" json:"color"`
	Description string `bson:"description" json:"description"`
	Contact     string `bson:"contact" json:"contact"`
	TotalPoints int    `bson:"total_points" json:"total_points"`

	PortalPassword string `bson:"portal_password,omitempty" json:"-"`

	// Registration-time details supplied by the institution.
	Place           string `bson:"place,omitempty" json:"place,omitempty"`
	District        string `bson:"district,omitempty" json:"district,omitempty"`
	WhatsAppNumber  string `bson:"whatsapp_number,omitempty" json:"whatsapp_number,omitempty"`
	PrincipalName   string `bson:"principal_name,omitempty" json:"principal_name,omitempty"`
	PrincipalPhone  string `bson:"principal_phone,omitempty" json:"principal_phone,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
