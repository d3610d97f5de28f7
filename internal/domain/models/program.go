// internal/domain/models/program.go
package models

// Program sections. SectionHifz programs are exempt from all participation
// quota accounting: registrations in them neither require quota headroom nor
// count toward the stage/off-stage buckets.
const (
	SectionJunior  = "junior"
	SectionSenior  = "senior"
	SectionGeneral = "general"
	SectionHifz    = "hifz"
)

// Program types.
const (
	ProgramTypeSingle = "single"
	ProgramTypeGroup  = "group"
)

// IsValidSection checks if a value is a valid program section.
func IsValidSection(value string) bool {
	switch value {
	case SectionJunior, SectionSenior, SectionGeneral, SectionHifz:
		return true
	}
	return false
}

// Program is an immutable catalog entry for a single competitive event.
//
// Stage distinguishes on-stage performance events from off-stage events; the
// two have separate participation quota buckets.
type Program struct {
	ID      string `bson:"id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Section string `bson:"section" json:"section"`
	Type    string `bson:"type" json:"type"`
	Stage   bool   `bson:"stage" json:"stage"`

	// CandidateLimit is how many candidates one team may field for this
	// program. Documents written before the field existed are treated as 1.
	CandidateLimit int `bson:"candidateLimit,omitempty" json:"candidate_limit"`
}

// IsHifz reports whether registrations in this program are quota-exempt.
func (p Program) IsHifz() bool {
	return p.Section == SectionHifz
}
