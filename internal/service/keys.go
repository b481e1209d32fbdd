// Package service contains application services for key issuance, publishing and the feed.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/neuralpress/internal/crypto"
	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/model"
	"github.com/and161185/neuralpress/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// DefaultStoreTimeout bounds a single service call against the store.
const DefaultStoreTimeout = 5 * time.Second

// KeyService issues and verifies API keys.
type KeyService interface {
	// Issue creates a free-tier key. The raw key is only ever returned here.
	Issue(ctx context.Context, ownerName, email string) (model.IssuedKey, error)
	// Authenticate resolves a presented raw key to its active credential.
	Authenticate(ctx context.Context, presented string) (*model.Credential, error)
}

type KeyServiceImpl struct {
	creds   repository.CredentialRepository
	hasher  crypto.Hasher
	timeout time.Duration
}

// NewKeyService constructs KeyService. A non-positive timeout selects DefaultStoreTimeout.
func NewKeyService(creds repository.CredentialRepository, hasher crypto.Hasher, timeout time.Duration) *KeyServiceImpl {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &KeyServiceImpl{creds: creds, hasher: hasher, timeout: timeout}
}

// Issue requires non-blank owner data, generates a key and stores only its digest.
func (s *KeyServiceImpl) Issue(ctx context.Context, ownerName, email string) (model.IssuedKey, error) {
	ownerName = strings.TrimSpace(ownerName)
	email = strings.TrimSpace(email)
	if ownerName == "" || email == "" {
		return model.IssuedKey{}, invalid("owner_name", "owner_name and email are required.")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return model.IssuedKey{}, err
	}
	raw, err := crypto.NewKey()
	if err != nil {
		return model.IssuedKey{}, err
	}
	c := &model.Credential{
		ID:        id,
		KeyHash:   s.hasher.Hash(raw),
		KeyPrefix: crypto.DisplayPrefix(raw),
		OwnerName: ownerName,
		Email:     email,
		Tier:      model.TierFree,
		Active:    true,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.creds.Create(ctx, c); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return model.IssuedKey{}, err
		}
		return model.IssuedKey{}, fmt.Errorf("%w: create key: %w", errs.ErrStorage, err)
	}
	return model.IssuedKey{ID: id, Key: raw, KeyPrefix: c.KeyPrefix, Tier: c.Tier}, nil
}

// Authenticate hashes the presented key and looks up an active credential.
// Unknown and revoked keys both yield errs.ErrInvalidCredential.
func (s *KeyServiceImpl) Authenticate(ctx context.Context, presented string) (*model.Credential, error) {
	if !crypto.HasKeyFormat(presented) {
		return nil, errs.ErrMissingCredential
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	c, err := s.creds.GetActiveByHash(ctx, s.hasher.Hash(presented))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrInvalidCredential
		}
		return nil, fmt.Errorf("%w: lookup key: %w", errs.ErrStorage, err)
	}
	return c, nil
}
