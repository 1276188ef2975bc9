// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article, Slug and TagSet, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// ArticleID is the store-generated identifier of an article row.
type ArticleID int64

// UserID identifies the user owning an article.
type UserID int64

// StorePrecision is the timestamp resolution of TIMESTAMPTZ columns.
// Timestamps are truncated to it before they are written so that a value read
// back compares equal to the value that was inserted.
const StorePrecision = time.Microsecond

// Article represents a published article together with its tags.
type Article struct {
	ID          ArticleID
	AuthorID    UserID
	Slug        Slug
	Title       string
	Description string
	Body        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tags        TagSet
}

// NormalizeTimestamp truncates t to StorePrecision, keeping its offset.
func NormalizeTimestamp(t time.Time) time.Time {
	return t.Truncate(StorePrecision)
}
