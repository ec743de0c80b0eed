package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-students-cache/students"
)

// StudentStore reads and writes students, deduplicating them by natural key.
type StudentStore struct {
	db      *bun.DB
	repo    repository.Repository[*students.Student]
	driver  string
	schools *SchoolResolver
	logger  *slog.Logger

	// beforeInsert runs between the natural-key lookup and the insert.
	beforeInsert func(ctx context.Context)
}

// NewStudentStore returns a store on db. A nil logger selects slog.Default.
func NewStudentStore(db *bun.DB, logger *slog.Logger) *StudentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &StudentStore{
		db:      db,
		repo:    newStudentRepository(db),
		driver:  repository.DetectDriver(db),
		schools: NewSchoolResolver(db, logger),
		logger:  logger,
	}
}

// Schools returns the resolver the store attaches schools with.
func (s *StudentStore) Schools() *SchoolResolver {
	return s.schools
}

// GetByID returns the student stored under id with its school attached.
func (s *StudentStore) GetByID(ctx context.Context, id int64) (students.Student, error) {
	student, err := s.repo.GetTx(ctx, s.db,
		repository.SelectRelation("School"),
		studentWhereID(id),
	)
	if repository.IsRecordNotFound(err) {
		return students.Student{}, students.ErrNotFound
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "student read failed",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		return students.Student{}, students.NewStorageError("get student", err)
	}
	return normalize(*student), nil
}

// Add stores candidate unless a student with the same natural key exists, in
// which case the stored student is returned unchanged. An unknown school is
// created alongside the student; a known one is reused.
func (s *StudentStore) Add(ctx context.Context, candidate students.Student) (students.Student, error) {
	if err := candidate.Validate(); err != nil {
		return students.Student{}, err
	}
	candidate.ID = 0

	if err := s.hydrateSchool(ctx, &candidate); err != nil {
		return students.Student{}, err
	}

	existing, err := s.findByNaturalKey(ctx, candidate.NaturalKey())
	if err == nil {
		s.logger.InfoContext(ctx, "student already exists",
			slog.Int64("id", existing.ID),
			slog.String("first_name", existing.FirstName),
			slog.String("last_name", existing.LastName))
		return existing, nil
	}
	if !errors.Is(err, students.ErrNotFound) {
		return students.Student{}, err
	}

	if s.beforeInsert != nil {
		s.beforeInsert(ctx)
	}

	created, err := s.insert(ctx, candidate)
	if err == nil {
		return created, nil
	}

	if errors.Is(err, students.ErrConflict) {
		return students.Student{}, err
	}
	if !isDuplicate(s.driver, err) {
		s.logger.ErrorContext(ctx, "student insert failed",
			slog.String("student", candidate.String()),
			slog.String("error", err.Error()))
		return students.Student{}, students.NewStorageError("add student", err)
	}

	// Another writer stored the same natural key first.
	existing, err = s.findByNaturalKey(ctx, candidate.NaturalKey())
	if errors.Is(err, students.ErrNotFound) {
		s.logger.WarnContext(ctx, "natural key conflict without a stored row",
			slog.String("student", candidate.String()))
		return students.Student{}, fmt.Errorf("%w: %s", students.ErrConflict, candidate)
	}
	if err != nil {
		return students.Student{}, err
	}
	s.logger.InfoContext(ctx, "student stored concurrently",
		slog.Int64("id", existing.ID))
	return existing, nil
}

// Update replaces the mutable fields of the student with student.ID and returns
// the stored result.
func (s *StudentStore) Update(ctx context.Context, student students.Student) (students.Student, error) {
	if student.ID < 1 {
		return students.Student{}, fmt.Errorf("%w: id must be at least 1", students.ErrInvalid)
	}
	if err := student.Validate(); err != nil {
		return students.Student{}, err
	}
	if err := s.hydrateSchool(ctx, &student); err != nil {
		return students.Student{}, err
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.attachSchool(ctx, tx, &student); err != nil {
			return err
		}
		_, err := s.repo.UpdateTx(ctx, tx, &student, studentMutableColumns(&student)...)
		return err
	})
	switch {
	case err == nil:
	case repository.IsSQLExpectedCountViolation(err):
		return students.Student{}, students.ErrNotFound
	case errors.Is(err, students.ErrConflict):
		return students.Student{}, err
	case isDuplicate(s.driver, err):
		return students.Student{}, fmt.Errorf("%w: %s", students.ErrConflict, student)
	default:
		s.logger.ErrorContext(ctx, "student update failed",
			slog.String("student", student.String()),
			slog.String("error", err.Error()))
		return students.Student{}, students.NewStorageError("update student", err)
	}

	return s.GetByID(ctx, student.ID)
}

// DeleteByID removes the student stored under id. It reports false when no
// such student exists.
func (s *StudentStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		student, err := s.repo.GetTx(ctx, tx, studentWhereID(id))
		if repository.IsRecordNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.repo.DeleteTx(ctx, tx, student); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "student delete failed",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		return false, students.NewStorageError("delete student", err)
	}
	return deleted, nil
}

// hydrateSchool loads the school referenced by a bare school_id so the natural
// key can be compared by name and address.
func (s *StudentStore) hydrateSchool(ctx context.Context, student *students.Student) error {
	if student.School != nil || student.SchoolID == nil {
		return nil
	}

	school, err := s.schools.SchoolByID(ctx, *student.SchoolID)
	if errors.Is(err, students.ErrNotFound) {
		return fmt.Errorf("%w: school %d does not exist", students.ErrInvalid, *student.SchoolID)
	}
	if err != nil {
		return err
	}
	student.AttachSchool(school)
	return nil
}

// attachSchool points student at a stored school, creating it within tx when needed.
func (s *StudentStore) attachSchool(ctx context.Context, tx bun.IDB, student *students.Student) error {
	if student.School == nil {
		student.SchoolID = nil
		return nil
	}

	school, err := s.schools.WithDB(tx).Resolve(ctx, *student.School)
	if err != nil {
		return err
	}
	student.AttachSchool(school)
	return nil
}

func (s *StudentStore) insert(ctx context.Context, candidate students.Student) (students.Student, error) {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.attachSchool(ctx, tx, &candidate); err != nil {
			return err
		}
		_, err := s.repo.CreateTx(ctx, tx, &candidate)
		return err
	})
	if err != nil {
		return students.Student{}, err
	}

	s.logger.InfoContext(ctx, "student created",
		slog.Int64("id", candidate.ID),
		slog.String("first_name", candidate.FirstName),
		slog.String("last_name", candidate.LastName))
	return normalize(candidate), nil
}

func (s *StudentStore) findByNaturalKey(ctx context.Context, key students.NaturalKey) (students.Student, error) {
	student, err := s.repo.GetTx(ctx, s.db,
		repository.SelectRelation("School"),
		studentNaturalKey(key),
		oldestStudentFirst,
	)
	if repository.IsRecordNotFound(err) {
		return students.Student{}, students.ErrNotFound
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "natural key lookup failed",
			slog.String("first_name", key.FirstName),
			slog.String("last_name", key.LastName),
			slog.Float64("gpa", key.GPA),
			slog.String("school_name", key.SchoolName),
			slog.String("school_address", key.SchoolAddress),
			slog.String("error", err.Error()))
		return students.Student{}, students.NewStorageError("find student", err)
	}
	return normalize(*student), nil
}

// normalize drops the empty school bun allocates for a NULL join.
func normalize(student students.Student) students.Student {
	if student.SchoolID == nil {
		student.School = nil
	}
	return student
}
