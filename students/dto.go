package students

// SchoolDTO is the external representation of a school.
type SchoolDTO struct {
	ID      int64  `json:"id" msgpack:"id"`
	Name    string `json:"name" msgpack:"name" validate:"required"`
	Address string `json:"address" msgpack:"address" validate:"required"`
}

// StudentDTO is the external representation of a student. SchoolID and School
// are both optional; when both are set School wins on create and update.
type StudentDTO struct {
	ID        int64      `json:"id" msgpack:"id" validate:"gte=0"`
	FirstName string     `json:"first_name" msgpack:"first_name" validate:"required"`
	LastName  string     `json:"last_name" msgpack:"last_name" validate:"required"`
	GPA       float64    `json:"gpa" msgpack:"gpa" validate:"gte=0"`
	Age       int        `json:"age" msgpack:"age" validate:"gte=0"`
	SchoolID  *int64     `json:"school_id,omitempty" msgpack:"school_id,omitempty" validate:"omitempty,gte=1"`
	School    *SchoolDTO `json:"school,omitempty" msgpack:"school,omitempty"`
}

// ToDTO converts a stored school.
func (s School) ToDTO() SchoolDTO {
	return SchoolDTO{ID: s.ID, Name: s.Name, Address: s.Address}
}

// ToModel converts an external school.
func (d SchoolDTO) ToModel() School {
	return School{ID: d.ID, Name: d.Name, Address: d.Address}
}

// ToDTO converts a stored student. The school id is taken from the relation
// when SchoolID is not set so both fields agree.
func (s Student) ToDTO() StudentDTO {
	dto := StudentDTO{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		GPA:       s.GPA,
		Age:       s.Age,
	}
	if s.SchoolID != nil {
		id := *s.SchoolID
		dto.SchoolID = &id
	}
	if s.School != nil {
		school := s.School.ToDTO()
		dto.School = &school
		if dto.SchoolID == nil && school.ID != 0 {
			id := school.ID
			dto.SchoolID = &id
		}
	}
	return dto
}

// ToModel converts an external student.
func (d StudentDTO) ToModel() Student {
	s := Student{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		GPA:       d.GPA,
		Age:       d.Age,
	}
	if d.SchoolID != nil {
		id := *d.SchoolID
		s.SchoolID = &id
	}
	if d.School != nil {
		school := d.School.ToModel()
		s.School = &school
	}
	return s
}
