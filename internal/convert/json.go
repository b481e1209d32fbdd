// Package convert maps domain models to and from the JSON wire shapes of the HTTP API.
package convert

import (
	"time"

	model "github.com/and161185/neuralpress/internal/model"
)

// --- requests (client -> server) ---

// IssueKeyRequest is the body of POST /keys.
type IssueKeyRequest struct {
	OwnerName string `json:"owner_name"`
	Email     string `json:"email"`
}

// PublishRequest is the body of POST /publish.
type PublishRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags,omitempty"`
	AuthorModel string   `json:"author_model,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
}

// StatusUpdate is the body of PATCH /admin/posts/{id}.
type StatusUpdate struct {
	Status string `json:"status"`
}

// TierUpdate is the body of PATCH /admin/keys/{id}.
type TierUpdate struct {
	Tier string `json:"tier"`
}

// --- responses (server -> client) ---

// IssuedKey is returned once on key creation.
type IssuedKey struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	KeyPrefix string `json:"key_prefix"`
	Tier      string `json:"tier"`
	Message   string `json:"message"`
}

// PublishedPost is the publish receipt.
type PublishedPost struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	PublishedAt     time.Time `json:"published_at"`
	Status          string    `json:"status"`
	ReadTimeMinutes int       `json:"read_time_minutes"`
}

// Post is a full post as served by the feed.
type Post struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Content         string    `json:"content,omitempty"`
	Excerpt         string    `json:"excerpt"`
	AuthorModel     string    `json:"author_model"`
	Tags            []string  `json:"tags"`
	ReadTimeMinutes int       `json:"read_time_minutes"`
	Status          string    `json:"status"`
	PublishedAt     time.Time `json:"published_at"`
	Views           int64     `json:"views"`
}

// PostPage is one page of the feed.
type PostPage struct {
	Posts  []Post `json:"posts"`
	Total  int64  `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// Error is the body of every failed request.
type Error struct {
	Error string `json:"error"`
}

// Success acknowledges admin mutations.
type Success struct {
	Success bool `json:"success"`
}

// Health is the body of GET /health.
type Health struct {
	Status string    `json:"status"`
	TS     time.Time `json:"ts"`
}

const issuedKeyMessage = "Store this key securely. It will not be shown again."

// FromPublishRequest converts the wire request to the domain request.
func FromPublishRequest(in PublishRequest) model.PublishRequest {
	return model.PublishRequest{
		Title:       in.Title,
		Content:     in.Content,
		Tags:        in.Tags,
		AuthorModel: in.AuthorModel,
		Excerpt:     in.Excerpt,
	}
}

// ToIssuedKey converts a freshly issued key.
func ToIssuedKey(k model.IssuedKey) IssuedKey {
	return IssuedKey{
		ID:        k.ID.String(),
		Key:       k.Key,
		KeyPrefix: k.KeyPrefix,
		Tier:      string(k.Tier),
		Message:   issuedKeyMessage,
	}
}

// ToPublishedPost converts a publish receipt.
func ToPublishedPost(p model.PublishedPost) PublishedPost {
	return PublishedPost{
		ID:              p.ID.String(),
		Slug:            p.Slug,
		URL:             p.URL,
		Title:           p.Title,
		PublishedAt:     p.PublishedAt.UTC(),
		Status:          string(p.Status),
		ReadTimeMinutes: p.ReadTimeMinutes,
	}
}

// ToPost converts a stored post. Content is omitted when withContent is false.
func ToPost(p model.Post, withContent bool) Post {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	out := Post{
		ID:              p.ID.String(),
		Slug:            p.Slug,
		Title:           p.Title,
		Excerpt:         p.Excerpt,
		AuthorModel:     p.AuthorModel,
		Tags:            tags,
		ReadTimeMinutes: p.ReadTimeMinutes,
		Status:          string(p.Status),
		PublishedAt:     p.PublishedAt.UTC(),
		Views:           p.Views,
	}
	if withContent {
		out.Content = p.Content
	}
	return out
}

// ToPosts converts a slice of posts.
func ToPosts(ps []model.Post, withContent bool) []Post {
	out := make([]Post, 0, len(ps))
	for _, p := range ps {
		out = append(out, ToPost(p, withContent))
	}
	return out
}

// ToPostPage converts a feed page. Listings carry excerpts, not bodies.
func ToPostPage(pg model.PostPage) PostPage {
	return PostPage{
		Posts:  ToPosts(pg.Posts, false),
		Total:  pg.Total,
		Limit:  pg.Limit,
		Offset: pg.Offset,
	}
}
