package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var credentialCols = []string{
	"id", "key_hash", "key_prefix", "owner_name", "email", "tier", "is_active",
	"posts_today", "total_posts", "last_post_date", "created_at",
}

func TestCredentialRepo_Create_OK_and_DuplicateEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCredentialRepo(db)
	ctx := context.Background()
	c := &model.Credential{
		ID:        uuid.Must(uuid.NewV4()),
		KeyHash:   "abc",
		KeyPrefix: "np_sk_012345",
		OwnerName: "owner",
		Email:     "a@b.c",
		Tier:      model.TierFree,
	}

	mock.ExpectExec(`INSERT INTO api_keys \(id, key_hash, key_prefix, owner_name, email, tier\) VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)`).
		WithArgs(c.ID, c.KeyHash, c.KeyPrefix, c.OwnerName, c.Email, "free").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, c))

	mock.ExpectExec(`INSERT INTO api_keys`).
		WithArgs(c.ID, c.KeyHash, c.KeyPrefix, c.OwnerName, c.Email, "free").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "api_keys_email_key"})
	require.ErrorIs(t, r.Create(ctx, c), errs.ErrConflict)

	mock.ExpectExec(`INSERT INTO api_keys`).
		WithArgs(c.ID, c.KeyHash, c.KeyPrefix, c.OwnerName, c.Email, "free").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "api_keys_key_hash_key"})
	err := r.Create(ctx, c)
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrConflict, "a key hash collision is not a duplicate email")

	mock.ExpectExec(`INSERT INTO api_keys`).
		WithArgs(c.ID, c.KeyHash, c.KeyPrefix, c.OwnerName, c.Email, "free").
		WillReturnError(errors.New("conn reset"))
	err = r.Create(ctx, c)
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrConflict)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepo_GetActiveByHash(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCredentialRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	created := time.Now()

	mock.ExpectQuery(`SELECT id, key_hash, key_prefix, owner_name, email, tier, is_active, posts_today, total_posts, last_post_date, created_at FROM api_keys WHERE key_hash=\$1 AND is_active`).
		WithArgs("h").
		WillReturnRows(pgxmock.NewRows(credentialCols).
			AddRow(id, "h", "np_sk_0123", "o", "e@x.io", "developer", true, 7, int64(42), &day, created))
	c, err := r.GetActiveByHash(ctx, "h")
	require.NoError(t, err)
	require.Equal(t, id, c.ID)
	require.Equal(t, model.TierDeveloper, c.Tier)
	require.Equal(t, 7, c.PostsToday)
	require.Equal(t, int64(42), c.TotalPosts)
	require.NotNil(t, c.LastPostDate)
	require.True(t, c.LastPostDate.Equal(day))

	mock.ExpectQuery(`FROM api_keys WHERE key_hash=\$1 AND is_active`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetActiveByHash(ctx, "nope")
	require.ErrorIs(t, err, errs.ErrNotFound)

	mock.ExpectQuery(`FROM api_keys WHERE key_hash=\$1 AND is_active`).
		WithArgs("boom").
		WillReturnError(errors.New("boom"))
	_, err = r.GetActiveByHash(ctx, "boom")
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestCredentialRepo_Deactivate(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCredentialRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE api_keys SET is_active = false WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.Deactivate(ctx, id))

	mock.ExpectExec(`UPDATE api_keys SET is_active = false WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.Deactivate(ctx, id), errs.ErrNotFound)
}

func TestCredentialRepo_SetTier(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCredentialRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE api_keys SET tier = \$2 WHERE id = \$1`).
		WithArgs(id, "enterprise").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.SetTier(ctx, id, model.TierEnterprise))

	mock.ExpectExec(`UPDATE api_keys SET tier = \$2 WHERE id = \$1`).
		WithArgs(id, "developer").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.SetTier(ctx, id, model.TierDeveloper), errs.ErrNotFound)
}

func TestDB_Ping(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()

	mock.ExpectExec(`SELECT 1`).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	require.NoError(t, db.Ping(context.Background()))

	mock.ExpectExec(`SELECT 1`).WillReturnError(errors.New("down"))
	require.Error(t, db.Ping(context.Background()))
}
