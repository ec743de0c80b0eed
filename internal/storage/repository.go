package storage

import (
	"github.com/google/uuid"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-students-cache/students"
)

// Students and schools use database generated integer ids, so the uuid
// handlers of the repository never assign one.

func newSchoolRepository(db *bun.DB) repository.Repository[*students.School] {
	return repository.NewRepository(db, repository.ModelHandlers[*students.School]{
		NewRecord:     func() *students.School { return &students.School{} },
		GetID:         func(*students.School) uuid.UUID { return uuid.Nil },
		SetID:         func(*students.School, uuid.UUID) {},
		GetIdentifier: func() string { return "name" },
	})
}

func newStudentRepository(db *bun.DB) repository.Repository[*students.Student] {
	return repository.NewRepository(db, repository.ModelHandlers[*students.Student]{
		NewRecord:     func() *students.Student { return &students.Student{} },
		GetID:         func(*students.Student) uuid.UUID { return uuid.Nil },
		SetID:         func(*students.Student, uuid.UUID) {},
		GetIdentifier: func() string { return "id" },
	})
}

func schoolWhereID(id int64) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("sc.id = ?", id)
	}
}

func studentWhereID(id int64) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("s.id = ?", id)
	}
}

func studentNaturalKey(key students.NaturalKey) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("s.first_name = ?", key.FirstName).
			Where("s.last_name = ?", key.LastName).
			Where("s.gpa = ?", key.GPA)
		if !key.HasSchool {
			return q.Where("s.school_id IS NULL")
		}
		return q.Where("school.name = ?", key.SchoolName).
			Where("school.address = ?", key.SchoolAddress)
	}
}

func oldestStudentFirst(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("s.id ASC")
}

// skipExistingSchool turns a school insert that hits schools_name_address_uidx
// into a no-op, leaving the record without an id.
func skipExistingSchool(q *bun.InsertQuery) *bun.InsertQuery {
	return q.On("CONFLICT (name, address) DO NOTHING")
}

// studentMutableColumns writes every mutable column, zero values and a NULL
// school included.
func studentMutableColumns(student *students.Student) []repository.UpdateCriteria {
	return []repository.UpdateCriteria{
		repository.UpdateSetColumn("first_name", student.FirstName),
		repository.UpdateSetColumn("last_name", student.LastName),
		repository.UpdateSetColumn("gpa", student.GPA),
		repository.UpdateSetColumn("age", student.Age),
		repository.UpdateSetColumn("school_id", student.SchoolID),
	}
}

// isDuplicate reports whether err was raised by a unique index or key.
func isDuplicate(driver string, err error) bool {
	if err == nil {
		return false
	}
	return repository.IsDuplicatedKey(repository.MapDatabaseError(err, driver))
}
