package storage

import (
	"context"

	"github.com/uptrace/bun"
)

// SetBeforeInsert installs a hook that runs between the lookup and the insert in Add.
func (s *StudentStore) SetBeforeInsert(fn func(ctx context.Context)) {
	s.beforeInsert = fn
}

// SetBeforeCreate installs a hook that runs between the lookup and the insert in Resolve.
func (r *SchoolResolver) SetBeforeCreate(fn func(ctx context.Context, db bun.IDB)) {
	r.beforeCreate = fn
}

var IsDuplicate = isDuplicate
