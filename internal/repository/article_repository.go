package repository

import (
	"context"
	"database/sql"
	"time"

	"conduit/internal/domain/entity"
)

// NewArticle carries the values of an article to be created.
type NewArticle struct {
	AuthorID    entity.UserID
	Slug        entity.Slug
	Title       string
	Description string
	Body        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// Tags are stored as normalised by entity.NewTagSet: trimmed, without
	// empty values or duplicates.
	Tags entity.TagSet
}

// ArticlePersistence stores articles and their tags.
// Every error returned by an implementation is an *entity.UnexpectedError,
// except FindBySlug which returns entity.ErrNotFound for a missing slug.
type ArticlePersistence interface {
	// Create persists the article and all of its tags atomically and returns
	// the generated identifier. Slug uniqueness is not checked here.
	Create(ctx context.Context, article NewArticle) (entity.ArticleID, error)
	// Exists reports whether an article with the given slug exists.
	Exists(ctx context.Context, slug entity.Slug) (bool, error)
	// FindBySlug loads an article and its tags.
	FindBySlug(ctx context.Context, slug entity.Slug) (*entity.Article, error)
}

// StatementExecutor runs parameterised statements. *sql.DB, *sql.Tx and
// the circuit breaker wrapper all satisfy it. There is no single-row variant:
// *sql.Row defers its error to Scan, where a circuit breaker cannot see it.
type StatementExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// TransactionalStore runs a unit of work atomically. The work commits when fn
// returns nil and rolls back otherwise; the executor handed to fn is only
// valid for the duration of the call.
type TransactionalStore interface {
	StatementExecutor
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx StatementExecutor) error) error
}
