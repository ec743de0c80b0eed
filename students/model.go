package students

import (
	"fmt"

	"github.com/uptrace/bun"
)

// School is immutable once stored; the store only reads schools or creates them
// transitively when a student is inserted with an unknown school.
type School struct {
	bun.BaseModel `bun:"table:schools,alias:sc"`

	ID      int64  `bun:"id,pk,autoincrement"`
	Name    string `bun:"name,notnull"`
	Address string `bun:"address,notnull"`
}

// Student is a stored student record.
type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID        int64   `bun:"id,pk,autoincrement"`
	FirstName string  `bun:"first_name,notnull"`
	LastName  string  `bun:"last_name,notnull"`
	GPA       float64 `bun:"gpa,notnull"`
	Age       int     `bun:"age,notnull"`
	SchoolID  *int64  `bun:"school_id"`
	School    *School `bun:"rel:belongs-to,join:school_id=id"`
}

// NaturalKey identifies a student independently of its generated id.
type NaturalKey struct {
	FirstName     string
	LastName      string
	GPA           float64
	SchoolName    string
	SchoolAddress string
	HasSchool     bool
}

// NaturalKey returns the deduplication key of s. A student without an embedded
// school has HasSchool unset and only matches other school-less students.
func (s Student) NaturalKey() NaturalKey {
	key := NaturalKey{
		FirstName: s.FirstName,
		LastName:  s.LastName,
		GPA:       s.GPA,
	}
	if s.School != nil {
		key.SchoolName = s.School.Name
		key.SchoolAddress = s.School.Address
		key.HasSchool = true
	}
	return key
}

// AttachSchool points s at the stored school, discarding any embedded values.
func (s *Student) AttachSchool(school School) {
	id := school.ID
	s.SchoolID = &id
	s.School = &school
}

func (s Student) String() string {
	if s.School == nil {
		return fmt.Sprintf("student %d %s %s gpa=%g", s.ID, s.FirstName, s.LastName, s.GPA)
	}
	return fmt.Sprintf("student %d %s %s gpa=%g school=%q@%q",
		s.ID, s.FirstName, s.LastName, s.GPA, s.School.Name, s.School.Address)
}
