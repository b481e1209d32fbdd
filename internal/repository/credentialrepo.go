// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/neuralpress/internal/model"
	"github.com/gofrs/uuid/v5"
)

// CredentialRepository provides access to issued API keys.
type CredentialRepository interface {
	// Create inserts a new credential. Duplicate email yields errs.ErrConflict.
	Create(ctx context.Context, c *model.Credential) error
	// GetActiveByHash loads an active credential by key digest.
	GetActiveByHash(ctx context.Context, keyHash string) (*model.Credential, error)
	// Deactivate revokes a credential.
	Deactivate(ctx context.Context, id uuid.UUID) error
	// SetTier applies an administrative tier override.
	SetTier(ctx context.Context, id uuid.UUID, tier model.Tier) error
}
