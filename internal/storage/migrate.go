package storage

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-students-cache/students"
)

// Migrate creates the schools and students tables and their unique indexes.
// It is safe to run on every start.
func Migrate(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*students.School)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("storage: create schools: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*students.Student)(nil)).
		IfNotExists().
		ForeignKey(`("school_id") REFERENCES "schools" ("id") ON DELETE SET NULL`).
		Exec(ctx); err != nil {
		return fmt.Errorf("storage: create students: %w", err)
	}

	if _, err := db.NewCreateIndex().
		Model((*students.School)(nil)).
		Unique().
		IfNotExists().
		Index("schools_name_address_uidx").
		Column("name", "address").
		Exec(ctx); err != nil {
		return fmt.Errorf("storage: index schools: %w", err)
	}

	if _, err := db.NewCreateIndex().
		Model((*students.Student)(nil)).
		Unique().
		IfNotExists().
		Index("students_natural_key_uidx").
		Column("first_name", "last_name", "gpa", "school_id").
		Exec(ctx); err != nil {
		return fmt.Errorf("storage: index students: %w", err)
	}

	return nil
}
