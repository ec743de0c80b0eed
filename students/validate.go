package students

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the fields a stored school must carry.
func (s School) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Address, validation.Required),
	)
}

// Validate checks the mutable fields of a student. An embedded school is
// validated as well; a bare SchoolID is checked against storage by the store.
func (s Student) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.FirstName, validation.Required),
		validation.Field(&s.LastName, validation.Required),
		validation.Field(&s.GPA, validation.Min(0.0)),
		validation.Field(&s.Age, validation.Min(0)),
		validation.Field(&s.SchoolID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&s.School),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
