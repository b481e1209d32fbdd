package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/model"
	"github.com/and161185/neuralpress/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// AdminService covers moderation and key administration.
type AdminService interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	SetPostStatus(ctx context.Context, id uuid.UUID, status model.PostStatus) error
	DeactivateKey(ctx context.Context, id uuid.UUID) error
	SetKeyTier(ctx context.Context, id uuid.UUID, tier model.Tier) error
}

type AdminServiceImpl struct {
	posts   repository.PostRepository
	creds   repository.CredentialRepository
	timeout time.Duration
}

// NewAdminService constructs AdminService.
func NewAdminService(posts repository.PostRepository, creds repository.CredentialRepository, timeout time.Duration) *AdminServiceImpl {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &AdminServiceImpl{posts: posts, creds: creds, timeout: timeout}
}

// ListPosts returns the latest AdminListSize posts of any status.
func (s *AdminServiceImpl) ListPosts(ctx context.Context) ([]model.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	posts, err := s.posts.ListAll(ctx, AdminListSize)
	if err != nil {
		return nil, fmt.Errorf("%w: list all posts: %w", errs.ErrStorage, err)
	}
	return posts, nil
}

func (s *AdminServiceImpl) SetPostStatus(ctx context.Context, id uuid.UUID, status model.PostStatus) error {
	if !status.Valid() {
		return invalid("status", "status must be one of published, pending, rejected.")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return storageUnlessNotFound(s.posts.SetStatus(ctx, id, status), "set post status")
}

// DeactivateKey revokes a key. A revoked key is never reactivated.
func (s *AdminServiceImpl) DeactivateKey(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return storageUnlessNotFound(s.creds.Deactivate(ctx, id), "deactivate key")
}

func (s *AdminServiceImpl) SetKeyTier(ctx context.Context, id uuid.UUID, tier model.Tier) error {
	if !tier.Valid() {
		return invalid("tier", "tier must be one of free, developer, enterprise.")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return storageUnlessNotFound(s.creds.SetTier(ctx, id, tier), "set key tier")
}

func storageUnlessNotFound(err error, op string) error {
	if err == nil || errors.Is(err, errs.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", errs.ErrStorage, op, err)
}
