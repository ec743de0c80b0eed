// Package students defines the student and school records shared by the store,
// the cache-aside service and the HTTP layer.
//
// # Records
//
// Student and School are bun models. A student optionally references a school by
// SchoolID; when loaded through the store the School relation is populated too.
//
// # Natural key
//
// Two students are the same record when first name, last name, GPA and the
// school's (name, address) pair match exactly. Comparison is case-sensitive and
// GPA uses exact float equality:
//
//	a.NaturalKey() == b.NaturalKey()
//
// # Wire shape
//
// StudentDTO is the only external representation. ToDTO and ToModel convert
// between the two shapes; the cache stores DTO snapshots.
//
// # Errors
//
// Callers branch on the error class rather than on nil results:
//
//	switch {
//	case errors.Is(err, students.ErrNotFound):
//	case errors.Is(err, students.ErrInvalid):
//	case errors.Is(err, students.ErrStorage):
//	}
package students
