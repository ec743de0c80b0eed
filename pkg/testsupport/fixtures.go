package testsupport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-students-cache/internal/storage"
	"github.com/goliatone/go-students-cache/students"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// LoadStudents loads a JSON array of student DTOs.
func LoadStudents(t *testing.T, path string) []students.StudentDTO {
	t.Helper()

	var out []students.StudentDTO
	LoadFixtureJSON(t, path, &out)
	return out
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenMemoryDB opens a migrated in-memory SQLite database that is closed when
// the test ends. Foreign keys are enforced.
func OpenMemoryDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := storage.Open(storage.Config{
		Driver: storage.DriverSQLite,
		DSN:    "file::memory:?_foreign_keys=on",
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return db
}

// CountRows returns the number of rows in the table backing model.
func CountRows(t *testing.T, db bun.IDB, model any) int {
	t.Helper()

	n, err := db.NewSelect().Model(model).Count(context.Background())
	if err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}
