package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/model"
	"github.com/and161185/neuralpress/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// Feed paging bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 50
	AdminListSize   = 100
)

// FeedService serves the public read surface.
type FeedService interface {
	// List returns a page of published posts.
	List(ctx context.Context, f model.PostFilter) (model.PostPage, error)
	// Get returns a published post by id or slug, counting the view.
	Get(ctx context.Context, idOrSlug string) (*model.Post, error)
}

type FeedServiceImpl struct {
	posts   repository.PostRepository
	timeout time.Duration
}

// NewFeedService constructs FeedService.
func NewFeedService(posts repository.PostRepository, timeout time.Duration) *FeedServiceImpl {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &FeedServiceImpl{posts: posts, timeout: timeout}
}

// ClampPage normalizes paging: limit defaults to DefaultPageSize and is capped at MaxPageSize,
// negative offsets become zero.
func ClampPage(f model.PostFilter) model.PostFilter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultPageSize
	case f.Limit > MaxPageSize:
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Tag = strings.TrimSpace(f.Tag)
	f.AuthorModel = strings.TrimSpace(f.AuthorModel)
	return f
}

func (s *FeedServiceImpl) List(ctx context.Context, f model.PostFilter) (model.PostPage, error) {
	f = ClampPage(f)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	posts, total, err := s.posts.ListPublished(ctx, f)
	if err != nil {
		return model.PostPage{}, fmt.Errorf("%w: list posts: %w", errs.ErrStorage, err)
	}
	return model.PostPage{Posts: posts, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *FeedServiceImpl) Get(ctx context.Context, idOrSlug string) (*model.Post, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, errs.ErrNotFound
	}
	var idPtr *uuid.UUID
	if id, err := uuid.FromString(idOrSlug); err == nil {
		idPtr = &id
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	p, err := s.posts.GetPublishedAndCount(ctx, idPtr, idOrSlug)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get post: %w", errs.ErrStorage, err)
	}
	return p, nil
}
