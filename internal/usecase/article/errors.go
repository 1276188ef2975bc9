// Package article provides the publish workflow for articles: input
// validation, slug allocation and persistence through the article store.
package article

import "errors"

// Sentinel errors for article use case operations.
var (
	// ErrArticleNotFound indicates that no article is stored under the requested slug.
	ErrArticleNotFound = errors.New("article not found")

	// ErrSlugUnavailable indicates that every candidate slug derived from the
	// title was already taken.
	ErrSlugUnavailable = errors.New("no free slug available for title")
)
