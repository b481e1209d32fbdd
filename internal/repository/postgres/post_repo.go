package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

const slugConstraint = "posts_slug_key"

const postColumns = `id, api_key_id, slug, title, content, excerpt, author_model, tags,
       read_time_minutes, status, published_at, views`

// PostRepo implements PostRepository using PostgreSQL.
type PostRepo struct{ db *DB }

// NewPostRepo constructs a post repository.
func NewPostRepo(db *DB) *PostRepo { return &PostRepo{db: db} }

// Publish admits and stores a post in one transaction.
//
// The counter update is conditional: it only matches an active key whose usage for day is
// below limit, and it takes the row lock, so concurrent publishes on the same key are
// serialized and each re-evaluates the condition against the committed counter.
// A stored day older than day resets posts_today before counting.
func (r *PostRepo) Publish(ctx context.Context, p *model.Post, limit *int, day time.Time) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const admit = `
UPDATE api_keys
SET posts_today = CASE WHEN last_post_date = $2 THEN posts_today + 1 ELSE 1 END,
    total_posts = total_posts + 1,
    last_post_date = $2
WHERE id = $1 AND is_active
  AND ($3::int IS NULL OR (CASE WHEN last_post_date = $2 THEN posts_today ELSE 0 END) < $3::int)
RETURNING posts_today`
	const owner = `SELECT is_active FROM api_keys WHERE id=$1`
	const ins = `
INSERT INTO posts (id, api_key_id, slug, title, content, excerpt, author_model, tags,
                   read_time_minutes, status, published_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

	var postsToday int
	if err = tx.QueryRow(ctx, admit, p.APIKeyID, day, limit).Scan(&postsToday); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("admit: %w", err)
		}
		var active bool
		switch e := tx.QueryRow(ctx, owner, p.APIKeyID).Scan(&active); {
		case errors.Is(e, pgx.ErrNoRows), e == nil && !active:
			err = errs.ErrInvalidCredential
		case e != nil:
			err = fmt.Errorf("owner lookup: %w", e)
		default:
			err = errs.ErrQuotaExceeded
		}
		return err
	}

	if _, err = tx.Exec(ctx, ins,
		p.ID, p.APIKeyID, p.Slug, p.Title, p.Content, p.Excerpt, p.AuthorModel, p.Tags,
		p.ReadTimeMinutes, string(p.Status), p.PublishedAt,
	); err != nil {
		if violatedConstraint(err) == slugConstraint {
			return errs.ErrSlugTaken
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// ListPublished returns published posts filtered by tag and author model.
func (r *PostRepo) ListPublished(ctx context.Context, f model.PostFilter) ([]model.Post, int64, error) {
	where := []string{"status = 'published'"}
	var args []any
	if f.Tag != "" {
		args = append(args, f.Tag)
		where = append(where, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}
	if f.AuthorModel != "" {
		args = append(args, f.AuthorModel)
		where = append(where, fmt.Sprintf("author_model = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM posts WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	q := fmt.Sprintf("SELECT %s FROM posts WHERE %s ORDER BY published_at DESC LIMIT $%d OFFSET $%d",
		postColumns, cond, len(args)-1, len(args))
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// GetPublishedAndCount loads a published post by id or slug and bumps its view counter.
func (r *PostRepo) GetPublishedAndCount(ctx context.Context, id *uuid.UUID, slug string) (*model.Post, error) {
	q := `
UPDATE posts SET views = views + 1
WHERE (id = $1 OR slug = $2) AND status = 'published'
RETURNING ` + postColumns
	p, err := scanPost(r.db.Pool.QueryRow(ctx, q, id, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListAll returns the latest posts regardless of status.
func (r *PostRepo) ListAll(ctx context.Context, limit int) ([]model.Post, error) {
	q := "SELECT " + postColumns + " FROM posts ORDER BY published_at DESC LIMIT $1"
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// SetStatus updates the moderation status of a post.
func (r *PostRepo) SetStatus(ctx context.Context, id uuid.UUID, status model.PostStatus) error {
	const q = `UPDATE posts SET status = $2 WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var (
		p      model.Post
		status string
	)
	if err := row.Scan(
		&p.ID, &p.APIKeyID, &p.Slug, &p.Title, &p.Content, &p.Excerpt, &p.AuthorModel, &p.Tags,
		&p.ReadTimeMinutes, &status, &p.PublishedAt, &p.Views,
	); err != nil {
		return nil, err
	}
	p.Status = model.PostStatus(status)
	return &p, nil
}
