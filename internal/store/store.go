package store

import (
	"context"

	"github.com/pulsefeed/autopub/internal/domain"
)

// PostStore defines all persistence operations for queued posts.
// The pgx implementation is in pg_post_store.go.
// Tests use a hand-written mock (mock_post_store.go).
//
// DequeueNext is a pure read: selection and the status transition are kept
// separate so the scheduler controls the transition relative to dispatch.
type PostStore interface {
	// Enqueue assigns a new ID, sets status=pending and both timestamps,
	// and persists the post. Persistence errors propagate to the caller.
	Enqueue(ctx context.Context, p *domain.Post) error

	// DequeueNext returns the oldest pending post (created_at ascending,
	// ties broken by id ascending) without mutating it.
	// Returns domain.ErrNoPending when the queue is empty.
	DequeueNext(ctx context.Context) (*domain.Post, error)

	// UpdateStatus sets status and updated_at.
	// Returns domain.ErrNotFound when no post has the given ID.
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error

	// SetResult records a terminal dispatch outcome: status plus the
	// adapter's external reference (on success) or error message (on failure).
	SetResult(ctx context.Context, id int64, status domain.Status, externalRef, errMsg *string) error

	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Post, int, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}
