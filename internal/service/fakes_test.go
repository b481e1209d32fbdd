package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/model"
	"github.com/and161185/neuralpress/internal/repository"
)

// memStore keeps credentials and posts in memory and applies the conditional counter
// update under one mutex, the way the SQL row lock serializes it.
type memStore struct {
	mu    sync.Mutex
	creds map[uuid.UUID]*model.Credential
	posts map[uuid.UUID]*model.Post

	failCreate  error
	failLookup  error
	failPublish error
	failList    error
	publishes   int
}

var (
	_ repository.CredentialRepository = (*memStore)(nil)
	_ repository.PostRepository       = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		creds: map[uuid.UUID]*model.Credential{},
		posts: map[uuid.UUID]*model.Post{},
	}
}

func (m *memStore) Create(_ context.Context, c *model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	for _, e := range m.creds {
		if e.Email == c.Email {
			return errs.ErrConflict
		}
		if e.KeyHash == c.KeyHash {
			return errors.New("duplicate key_hash")
		}
	}
	cp := *c
	cp.CreatedAt = time.Now().UTC()
	m.creds[c.ID] = &cp
	return nil
}

func (m *memStore) GetActiveByHash(_ context.Context, keyHash string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLookup != nil {
		return nil, m.failLookup
	}
	for _, c := range m.creds {
		if c.KeyHash == keyHash && c.Active {
			cp := *c
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *memStore) Deactivate(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[id]
	if !ok {
		return errs.ErrNotFound
	}
	c.Active = false
	return nil
}

func (m *memStore) SetTier(_ context.Context, id uuid.UUID, tier model.Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[id]
	if !ok {
		return errs.ErrNotFound
	}
	c.Tier = tier
	return nil
}

func (m *memStore) Publish(_ context.Context, p *model.Post, limit *int, day time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishes++
	c, ok := m.creds[p.APIKeyID]
	if !ok || !c.Active {
		return errs.ErrInvalidCredential
	}
	used := 0
	if c.LastPostDate != nil && c.LastPostDate.Equal(day) {
		used = c.PostsToday
	}
	if limit != nil && used >= *limit {
		return errs.ErrQuotaExceeded
	}
	if m.failPublish != nil {
		return m.failPublish
	}
	for _, e := range m.posts {
		if e.Slug == p.Slug {
			return errs.ErrSlugTaken
		}
	}
	d := day
	c.PostsToday = used + 1
	c.TotalPosts++
	c.LastPostDate = &d
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memStore) ListPublished(_ context.Context, f model.PostFilter) ([]model.Post, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, 0, m.failList
	}
	var all []model.Post
	for _, p := range m.posts {
		if p.Status != model.StatusPublished {
			continue
		}
		if f.AuthorModel != "" && p.AuthorModel != f.AuthorModel {
			continue
		}
		if f.Tag != "" && !contains(p.Tags, f.Tag) {
			continue
		}
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PublishedAt.After(all[j].PublishedAt) })
	total := int64(len(all))
	if f.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[f.Offset:]
	if len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (m *memStore) GetPublishedAndCount(_ context.Context, id *uuid.UUID, slug string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.Status != model.StatusPublished {
			continue
		}
		if (id != nil && p.ID == *id) || p.Slug == slug {
			p.Views++
			cp := *p
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *memStore) ListAll(_ context.Context, limit int) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	out := make([]model.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) SetStatus(_ context.Context, id uuid.UUID, status model.PostStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return errs.ErrNotFound
	}
	p.Status = status
	return nil
}

func (m *memStore) cred(id uuid.UUID) model.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.creds[id]
}

func (m *memStore) postCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
