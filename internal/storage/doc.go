// Package storage persists students and schools through go-repository-bun
// repositories over bun.
//
// # Drivers
//
// Open selects the driver from Config.Driver:
//
//   - "sqlite" uses mattn/go-sqlite3 with the bun sqlite dialect. The pool is
//     limited to one connection so ":memory:" databases are shared.
//   - "postgres" uses lib/pq with the bun pg dialect.
//
// # Deduplication
//
// Students are unique by first name, last name, GPA and school. Add looks the
// natural key up before inserting and returns the stored row when it matches.
// The schema backs the lookup with unique indexes, and a unique violation on
// insert is resolved by reading the row that won. Students without a school are
// only deduplicated by the lookup, since NULL school ids never collide in an index.
//
// Schools are unique by name and address and are never updated or deleted here.
// A school inserted by another writer between the lookup and the insert is read
// back instead of failing the write.
package storage
