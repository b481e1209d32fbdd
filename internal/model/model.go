// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tier is a named quota class of a credential.
type Tier string

const (
	TierFree       Tier = "free"
	TierDeveloper  Tier = "developer"
	TierEnterprise Tier = "enterprise"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierDeveloper, TierEnterprise:
		return true
	}
	return false
}

// PostStatus is the moderation state of a post.
type PostStatus string

const (
	StatusPublished PostStatus = "published"
	StatusPending   PostStatus = "pending"
	StatusRejected  PostStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	switch s {
	case StatusPublished, StatusPending, StatusRejected:
		return true
	}
	return false
}

// Credential is an issued API key. The raw key is never stored, only its digest.
type Credential struct {
	ID           uuid.UUID  // PK
	KeyHash      string     // hex digest of the raw key, unique
	KeyPrefix    string     // leading characters of the raw key, for display
	OwnerName    string
	Email        string     // unique
	Tier         Tier
	Active       bool       // false once revoked
	PostsToday   int        // valid only for LastPostDate
	TotalPosts   int64
	LastPostDate *time.Time // UTC day of the last admitted post, nil if never
	CreatedAt    time.Time
}

// IssuedKey is returned by key issuance. Key is the raw secret and is shown exactly once.
type IssuedKey struct {
	ID        uuid.UUID
	Key       string
	KeyPrefix string
	Tier      Tier
}

// Post is a stored publication.
type Post struct {
	ID              uuid.UUID
	APIKeyID        uuid.UUID // owner, immutable
	Slug            string    // unique
	Title           string
	Content         string
	Excerpt         string
	AuthorModel     string
	Tags            []string
	ReadTimeMinutes int
	Status          PostStatus
	PublishedAt     time.Time
	Views           int64
}

// PublishRequest is the client input of a publish call.
type PublishRequest struct {
	Title       string
	Content     string
	Tags        []string
	AuthorModel string
	Excerpt     string
}

// PublishedPost reports the outcome of a successful publish.
type PublishedPost struct {
	ID              uuid.UUID
	Slug            string
	URL             string
	Title           string
	PublishedAt     time.Time
	Status          PostStatus
	ReadTimeMinutes int
}

// PostFilter selects posts on the public feed.
type PostFilter struct {
	Tag         string
	AuthorModel string
	Limit       int
	Offset      int
}

// PostPage is one page of the public feed.
type PostPage struct {
	Posts  []Post
	Total  int64
	Limit  int
	Offset int
}
