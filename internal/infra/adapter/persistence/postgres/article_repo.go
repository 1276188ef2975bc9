// Package postgres implements the article persistence port on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"conduit/internal/domain/entity"
	"conduit/internal/observability/logging"
	"conduit/internal/observability/metrics"
	"conduit/internal/observability/tracing"
	"conduit/internal/repository"
)

const (
	opCreate     = "create"
	opExists     = "exists"
	opFindBySlug = "find_by_slug"
)

const insertArticleQuery = `
INSERT INTO articles
       (slug, title, description, body, author_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// selectArticleIDQuery finds the row just written by insertArticleQuery.
// It matches on every inserted value, so two identical concurrent inserts
// are reported as ambiguous rather than resolved to the wrong row.
const selectArticleIDQuery = `
SELECT id
FROM articles
WHERE slug        = $1
  AND title       = $2
  AND description = $3
  AND body        = $4
  AND author_id   = $5
  AND created_at  = $6
  AND updated_at  = $7`

const insertTagQuery = `INSERT INTO tags (article_id, tag) VALUES ($1, $2)`

const slugExistsQuery = `SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)`

const selectArticleBySlugQuery = `
SELECT id, slug, title, description, body, author_id, created_at, updated_at
FROM articles
WHERE slug = $1
LIMIT 1`

const selectTagsQuery = `
SELECT tag
FROM tags
WHERE article_id = $1
ORDER BY tag`

type ArticleRepo struct {
	store repository.TransactionalStore
}

func NewArticleRepo(store repository.TransactionalStore) repository.ArticlePersistence {
	return &ArticleRepo{store: store}
}

// Create inserts the article, resolves its id and inserts one row per tag,
// all inside a single transaction.
func (repo *ArticleRepo) Create(ctx context.Context, in repository.NewArticle) (id entity.ArticleID, err error) {
	tags := in.Tags.Values()
	ctx, span := tracing.Start(ctx, "ArticleRepo.Create",
		attribute.String("article.slug", in.Slug.String()),
		attribute.Int64("article.author_id", int64(in.AuthorID)),
		attribute.Int("article.tag_count", len(tags)))
	start := time.Now()
	defer func() {
		metrics.RecordOperationDuration("create_article", time.Since(start))
		metrics.RecordStoreOperation(opCreate, err)
		tracing.End(span, err)
	}()

	values := []any{
		in.Slug.String(), in.Title, in.Description, in.Body, int64(in.AuthorID),
		entity.NormalizeTimestamp(in.CreatedAt), entity.NormalizeTimestamp(in.UpdatedAt),
	}

	var created entity.ArticleID
	txErr := repo.store.WithinTx(ctx, func(ctx context.Context, tx repository.StatementExecutor) error {
		if _, err := tx.ExecContext(ctx, insertArticleQuery, values...); err != nil {
			return fmt.Errorf("insert article: %w", err)
		}

		articleID, err := resolveArticleID(ctx, tx, values)
		if err != nil {
			return err
		}

		for _, tag := range tags {
			if _, err := tx.ExecContext(ctx, insertTagQuery, int64(articleID), tag); err != nil {
				return fmt.Errorf("insert tag %q: %w", tag, err)
			}
		}

		created = articleID
		return nil
	})
	if txErr != nil {
		return 0, repo.unexpected(ctx, opCreate, txErr,
			"failed to create article: %d:%s:%v", in.AuthorID, in.Title, in.Tags)
	}

	metrics.RecordTagsWritten(len(tags))
	return created, nil
}

// resolveArticleID looks up the id of the row inserted with values.
// Exactly one match is required.
func resolveArticleID(ctx context.Context, tx repository.StatementExecutor, values []any) (entity.ArticleID, error) {
	rows, err := tx.QueryContext(ctx, selectArticleIDQuery, values...)
	if err != nil {
		return 0, fmt.Errorf("resolve article id: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0, 1)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("resolve article id: Scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("resolve article id: %w", err)
	}

	switch len(ids) {
	case 0:
		return 0, fmt.Errorf("resolve article id: %w", entity.ErrArticleIDNotResolved)
	case 1:
		return entity.ArticleID(ids[0]), nil
	default:
		return 0, fmt.Errorf("resolve article id: %w (%d rows)", entity.ErrArticleIDAmbiguous, len(ids))
	}
}

// Exists reports whether an article with slug exists.
func (repo *ArticleRepo) Exists(ctx context.Context, slug entity.Slug) (exists bool, err error) {
	ctx, span := tracing.Start(ctx, "ArticleRepo.Exists", attribute.String("article.slug", slug.String()))
	start := time.Now()
	defer func() {
		metrics.RecordOperationDuration("slug_exists", time.Since(start))
		metrics.RecordStoreOperation(opExists, err)
		tracing.End(span, err)
	}()

	exists, qErr := queryBool(ctx, repo.store, slugExistsQuery, slug.String())
	if qErr != nil {
		return false, repo.unexpected(ctx, opExists, qErr, "failed to check existence of %s", slug)
	}
	return exists, nil
}

func queryBool(ctx context.Context, exec repository.StatementExecutor, query string, args ...any) (bool, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("queryBool: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return false, fmt.Errorf("queryBool: %w", err)
		}
		return false, errors.New("queryBool: no result row")
	}
	var value bool
	if err := rows.Scan(&value); err != nil {
		return false, fmt.Errorf("queryBool: Scan: %w", err)
	}
	return value, rows.Err()
}

// FindBySlug loads the article stored under slug together with its tags.
// It returns entity.ErrNotFound when no such article exists.
func (repo *ArticleRepo) FindBySlug(ctx context.Context, slug entity.Slug) (article *entity.Article, err error) {
	ctx, span := tracing.Start(ctx, "ArticleRepo.FindBySlug", attribute.String("article.slug", slug.String()))
	start := time.Now()
	defer func() {
		metrics.RecordOperationDuration("find_article_by_slug", time.Since(start))
		metrics.RecordStoreOperation(opFindBySlug, err)
		tracing.End(span, err)
	}()

	article, qErr := findBySlug(ctx, repo.store, slug)
	if errors.Is(qErr, entity.ErrNotFound) {
		return nil, qErr
	}
	if qErr != nil {
		return nil, repo.unexpected(ctx, opFindBySlug, qErr, "failed to find article %s", slug)
	}
	return article, nil
}

func findBySlug(ctx context.Context, exec repository.StatementExecutor, slug entity.Slug) (*entity.Article, error) {
	rows, err := exec.QueryContext(ctx, selectArticleBySlugQuery, slug.String())
	if err != nil {
		return nil, fmt.Errorf("FindBySlug: %w", err)
	}

	var (
		a        entity.Article
		id       int64
		rawSlug  string
		authorID int64
		found    bool
	)
	if rows.Next() {
		found = true
		err = rows.Scan(&id, &rawSlug, &a.Title, &a.Description, &a.Body,
			&authorID, &a.CreatedAt, &a.UpdatedAt)
	}
	if err == nil {
		err = rows.Err()
	}
	_ = rows.Close()
	if err != nil {
		return nil, fmt.Errorf("FindBySlug: Scan: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("FindBySlug %s: %w", slug, entity.ErrNotFound)
	}

	a.ID = entity.ArticleID(id)
	a.AuthorID = entity.UserID(authorID)
	if a.Slug, err = entity.NewSlug(rawSlug); err != nil {
		return nil, fmt.Errorf("FindBySlug: stored slug: %w", err)
	}

	tags, err := queryTags(ctx, exec, a.ID)
	if err != nil {
		return nil, err
	}
	a.Tags = entity.NewTagSet(tags...)
	return &a, nil
}

func queryTags(ctx context.Context, exec repository.StatementExecutor, id entity.ArticleID) ([]string, error) {
	rows, err := exec.QueryContext(ctx, selectTagsQuery, int64(id))
	if err != nil {
		return nil, fmt.Errorf("queryTags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tags := make([]string, 0, 8)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("queryTags: Scan: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// unexpected wraps cause as an UnexpectedError and logs it.
func (repo *ArticleRepo) unexpected(ctx context.Context, op string, cause error, format string, args ...any) error {
	uErr := entity.NewUnexpected(cause, format, args...)
	logging.FromContext(ctx).Error("article store operation failed",
		slog.String("operation", op),
		slog.String("description", uErr.Description),
		slog.Any("error", cause))
	return uErr
}
