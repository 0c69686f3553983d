package cache

import (
	"context"

	"github.com/cursolab/cursolab-backend/internal/types"
)

// CourseCache is the opportunistic local persistence layer. Whole-document
// replace, last write wins; the in-memory course stays authoritative, so
// callers never depend on durability here.
type CourseCache interface {
	Put(ctx context.Context, course *types.Course) error
	Get(ctx context.Context, id string) (*types.Course, error) // (nil, nil) when absent
}
