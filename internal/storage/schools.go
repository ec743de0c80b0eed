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

// SchoolResolver finds stored schools so students can reuse them.
type SchoolResolver struct {
	repo   repository.Repository[*students.School]
	db     bun.IDB
	driver string
	logger *slog.Logger

	// beforeCreate runs between the lookup and the insert in Resolve.
	beforeCreate func(ctx context.Context, db bun.IDB)
}

// NewSchoolResolver returns a resolver reading from db. A nil logger selects slog.Default.
func NewSchoolResolver(db *bun.DB, logger *slog.Logger) *SchoolResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchoolResolver{
		repo:   newSchoolRepository(db),
		db:     db,
		driver: repository.DetectDriver(db),
		logger: logger,
	}
}

// WithDB returns a resolver bound to db, usually a transaction.
func (r *SchoolResolver) WithDB(db bun.IDB) *SchoolResolver {
	bound := *r
	bound.db = db
	return &bound
}

// FindSchool returns the school with exactly this name and address. When more
// than one row matches, the lowest id wins. An absent school is students.ErrNotFound.
func (r *SchoolResolver) FindSchool(ctx context.Context, name, address string) (students.School, error) {
	school, err := r.repo.GetTx(ctx, r.db,
		repository.SelectBy("name", "=", name),
		repository.SelectBy("address", "=", address),
		repository.SelectOrderAsc("sc.id"),
	)
	if repository.IsRecordNotFound(err) {
		return students.School{}, students.ErrNotFound
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "school lookup failed",
			slog.String("name", name),
			slog.String("address", address),
			slog.String("error", err.Error()))
		return students.School{}, students.NewStorageError("find school", err)
	}
	return *school, nil
}

// SchoolByID returns the school stored under id.
func (r *SchoolResolver) SchoolByID(ctx context.Context, id int64) (students.School, error) {
	school, err := r.repo.GetTx(ctx, r.db, schoolWhereID(id))
	if repository.IsRecordNotFound(err) {
		return students.School{}, students.ErrNotFound
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "school read failed",
			slog.Int64("school_id", id),
			slog.String("error", err.Error()))
		return students.School{}, students.NewStorageError("school by id", err)
	}
	return *school, nil
}

// Resolve returns the stored school matching school, inserting it when absent.
// A school stored by another writer after the lookup is read back rather than
// reported as a conflict.
func (r *SchoolResolver) Resolve(ctx context.Context, school students.School) (students.School, error) {
	existing, err := r.FindSchool(ctx, school.Name, school.Address)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, students.ErrNotFound) {
		return students.School{}, err
	}

	if r.beforeCreate != nil {
		r.beforeCreate(ctx, r.db)
	}

	created := &students.School{Name: school.Name, Address: school.Address}
	if _, err := r.repo.CreateTx(ctx, r.db, created, skipExistingSchool); err != nil {
		if isDuplicate(r.driver, err) {
			return students.School{}, fmt.Errorf("%w: school %q at %q", students.ErrConflict, school.Name, school.Address)
		}
		r.logger.ErrorContext(ctx, "school insert failed",
			slog.String("name", school.Name),
			slog.String("address", school.Address),
			slog.String("error", err.Error()))
		return students.School{}, students.NewStorageError("create school", err)
	}

	if created.ID == 0 {
		existing, err := r.FindSchool(ctx, school.Name, school.Address)
		if errors.Is(err, students.ErrNotFound) {
			return students.School{}, fmt.Errorf("%w: school %q at %q", students.ErrConflict, school.Name, school.Address)
		}
		if err != nil {
			return students.School{}, err
		}
		r.logger.InfoContext(ctx, "school stored concurrently",
			slog.Int64("school_id", existing.ID),
			slog.String("name", existing.Name))
		return existing, nil
	}

	r.logger.InfoContext(ctx, "school created",
		slog.Int64("school_id", created.ID),
		slog.String("name", created.Name))
	return *created, nil
}
