package repository

import (
	"context"
	"time"

	"github.com/and161185/neuralpress/internal/model"
	"github.com/gofrs/uuid/v5"
)

// PostRepository provides access to posts.
type PostRepository interface {
	// Publish atomically admits p against the owner's daily limit and stores it.
	// limit nil means unbounded; day is the UTC day the counter is attributed to.
	// The post is stored and the counters incremented, or neither.
	Publish(ctx context.Context, p *model.Post, limit *int, day time.Time) error

	// ListPublished returns a page of published posts matching f, newest first.
	ListPublished(ctx context.Context, f model.PostFilter) ([]model.Post, int64, error)
	// GetPublishedAndCount loads a published post by id or slug and increments its views.
	GetPublishedAndCount(ctx context.Context, id *uuid.UUID, slug string) (*model.Post, error)

	// ListAll returns the latest posts of any status.
	ListAll(ctx context.Context, limit int) ([]model.Post, error)
	// SetStatus moderates a post.
	SetStatus(ctx context.Context, id uuid.UUID, status model.PostStatus) error
}
