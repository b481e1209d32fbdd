package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// CredentialRepo implements CredentialRepository using PostgreSQL.
type CredentialRepo struct{ db *DB }

// NewCredentialRepo constructs a credential repository.
func NewCredentialRepo(db *DB) *CredentialRepo { return &CredentialRepo{db: db} }

const emailConstraint = "api_keys_email_key"

// Create inserts a new api_keys row. Only a duplicate email is a conflict.
func (r *CredentialRepo) Create(ctx context.Context, c *model.Credential) error {
	const q = `
INSERT INTO api_keys (id, key_hash, key_prefix, owner_name, email, tier)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, c.ID, c.KeyHash, c.KeyPrefix, c.OwnerName, c.Email, string(c.Tier))
	if violatedConstraint(err) == emailConstraint {
		return errs.ErrConflict
	}
	return err
}

// GetActiveByHash selects an active credential by key digest.
func (r *CredentialRepo) GetActiveByHash(ctx context.Context, keyHash string) (*model.Credential, error) {
	const q = `
SELECT id, key_hash, key_prefix, owner_name, email, tier, is_active,
       posts_today, total_posts, last_post_date, created_at
FROM api_keys WHERE key_hash=$1 AND is_active`
	var (
		c    model.Credential
		tier string
		last *time.Time
	)
	err := r.db.Pool.QueryRow(ctx, q, keyHash).Scan(
		&c.ID, &c.KeyHash, &c.KeyPrefix, &c.OwnerName, &c.Email, &tier, &c.Active,
		&c.PostsToday, &c.TotalPosts, &last, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	c.Tier = model.Tier(tier)
	c.LastPostDate = last
	return &c, nil
}

// Deactivate revokes a credential. Revocation is one-way.
func (r *CredentialRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE api_keys SET is_active = false WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetTier changes the tier of a credential.
func (r *CredentialRepo) SetTier(ctx context.Context, id uuid.UUID, tier model.Tier) error {
	const q = `UPDATE api_keys SET tier = $2 WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, id, string(tier))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
