package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/model"
	"github.com/and161185/neuralpress/internal/quota"
	"github.com/and161185/neuralpress/internal/repository"
	"github.com/and161185/neuralpress/internal/slug"
	"github.com/gofrs/uuid/v5"
)

// PublishService turns validated requests into stored posts.
type PublishService interface {
	// Publish validates req, derives computed fields and commits the post together with the
	// credential's usage counters.
	Publish(ctx context.Context, cred *model.Credential, req model.PublishRequest) (model.PublishedPost, error)
}

type PublishServiceImpl struct {
	posts   repository.PostRepository
	slugs   *slug.Generator
	baseURL string
	timeout time.Duration
	now     func() time.Time
}

// NewPublishService constructs PublishService. baseURL prefixes canonical post URLs.
func NewPublishService(posts repository.PostRepository, slugs *slug.Generator, baseURL string, timeout time.Duration) *PublishServiceImpl {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &PublishServiceImpl{
		posts:   posts,
		slugs:   slugs,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		now:     time.Now,
	}
}

// Publish runs validation and the advisory quota check before any mutation, then hands the
// post to the repository, whose conditional counter update is the authoritative admission.
func (s *PublishServiceImpl) Publish(ctx context.Context, cred *model.Credential, req model.PublishRequest) (model.PublishedPost, error) {
	if err := ValidatePublish(req); err != nil {
		return model.PublishedPost{}, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	if err := quota.CheckAdmission(cred, now); err != nil {
		return model.PublishedPost{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return model.PublishedPost{}, err
	}
	p := &model.Post{
		ID:              id,
		APIKeyID:        cred.ID,
		Slug:            s.slugs.Generate(req.Title),
		Title:           req.Title,
		Content:         req.Content,
		Excerpt:         Excerpt(req.Excerpt, req.Content),
		AuthorModel:     authorModelOrDefault(req.AuthorModel),
		Tags:            normalizeTags(req.Tags),
		ReadTimeMinutes: ReadTimeMinutes(req.Content),
		Status:          model.StatusPublished,
		PublishedAt:     now,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.posts.Publish(ctx, p, quota.LimitArg(cred.Tier), quota.Day(now)); err != nil {
		switch {
		case errors.Is(err, errs.ErrQuotaExceeded):
			return model.PublishedPost{}, &quota.ExceededError{Tier: cred.Tier, Limit: quota.DailyLimit(cred.Tier)}
		case errors.Is(err, errs.ErrInvalidCredential):
			return model.PublishedPost{}, err
		default:
			return model.PublishedPost{}, fmt.Errorf("%w: publish: %w", errs.ErrStorage, err)
		}
	}

	return model.PublishedPost{
		ID:              p.ID,
		Slug:            p.Slug,
		URL:             s.PostURL(p.Slug),
		Title:           p.Title,
		PublishedAt:     p.PublishedAt,
		Status:          p.Status,
		ReadTimeMinutes: p.ReadTimeMinutes,
	}, nil
}

// PostURL builds the canonical public URL of a slug.
func (s *PublishServiceImpl) PostURL(postSlug string) string {
	return s.baseURL + "/post/" + postSlug
}
