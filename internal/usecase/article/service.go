package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"conduit/internal/domain/entity"
	"conduit/internal/observability/logging"
	"conduit/internal/repository"
)

// DefaultMaxSlugAttempts is used when Service.MaxSlugAttempts is not set.
const DefaultMaxSlugAttempts = 5

// slugSuffixLength is the number of random characters appended on collision.
const slugSuffixLength = 8

// PublishInput represents the input parameters for publishing a new article.
type PublishInput struct {
	AuthorID    int64
	Title       string
	Description string
	Body        string
	Tags        []string
}

// Service provides article use cases on top of the article store.
type Service struct {
	Repo repository.ArticlePersistence

	// MaxSlugAttempts bounds how many slugs are tried before giving up.
	MaxSlugAttempts int

	// Now returns the creation time. Defaults to time.Now.
	Now func() time.Time
}

// Publish validates in, allocates a free slug derived from the title and
// stores the article with its tags.
//
// The slug check and the insert are separate calls, so a concurrent writer
// can still take the slug in between. The store does not enforce slug
// uniqueness.
func (s *Service) Publish(ctx context.Context, in PublishInput) (*entity.Article, error) {
	if err := validatePublish(in); err != nil {
		return nil, err
	}
	tags := entity.NewTagSet(in.Tags...)
	if err := tags.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}

	base, err := entity.Slugify(in.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}

	slug, err := s.allocateSlug(ctx, base)
	if err != nil {
		return nil, err
	}

	now := entity.NormalizeTimestamp(s.now())
	id, err := s.Repo.Create(ctx, repository.NewArticle{
		AuthorID:    entity.UserID(in.AuthorID),
		Slug:        slug,
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        tags,
	})
	if err != nil {
		return nil, fmt.Errorf("publish article: %w", err)
	}

	logging.FromContext(ctx).Info("article published",
		slog.Int64("article_id", int64(id)),
		slog.String("slug", slug.String()),
		slog.Int("tag_count", tags.Len()))

	return &entity.Article{
		ID:          id,
		AuthorID:    entity.UserID(in.AuthorID),
		Slug:        slug,
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        tags,
	}, nil
}

// Get returns the article stored under rawSlug.
func (s *Service) Get(ctx context.Context, rawSlug string) (*entity.Article, error) {
	slug, err := entity.NewSlug(rawSlug)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}
	a, err := s.Repo.FindBySlug(ctx, slug)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

// SlugTaken reports whether rawSlug is already used by an article.
func (s *Service) SlugTaken(ctx context.Context, rawSlug string) (bool, error) {
	slug, err := entity.NewSlug(rawSlug)
	if err != nil {
		return false, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}
	taken, err := s.Repo.Exists(ctx, slug)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return taken, nil
}

func (s *Service) allocateSlug(ctx context.Context, base entity.Slug) (entity.Slug, error) {
	candidate := base
	for attempt := 1; attempt <= s.maxAttempts(); attempt++ {
		taken, err := s.Repo.Exists(ctx, candidate)
		if err != nil {
			return entity.Slug{}, fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}

		logging.FromContext(ctx).Debug("slug taken, trying suffix",
			slog.String("slug", candidate.String()),
			slog.Int("attempt", attempt))

		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLength]
		if candidate, err = base.WithSuffix(suffix); err != nil {
			return entity.Slug{}, fmt.Errorf("suffix slug: %w", err)
		}
	}
	return entity.Slug{}, fmt.Errorf("%w: %s", ErrSlugUnavailable, base)
}

func (s *Service) maxAttempts() int {
	if s.MaxSlugAttempts > 0 {
		return s.MaxSlugAttempts
	}
	return DefaultMaxSlugAttempts
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func validatePublish(in PublishInput) error {
	switch {
	case in.AuthorID <= 0:
		return fmt.Errorf("%w: %w", entity.ErrInvalidInput,
			&entity.ValidationError{Field: "authorID", Message: "must be positive"})
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: %w", entity.ErrInvalidInput,
			&entity.ValidationError{Field: "title", Message: "is required"})
	case strings.TrimSpace(in.Description) == "":
		return fmt.Errorf("%w: %w", entity.ErrInvalidInput,
			&entity.ValidationError{Field: "description", Message: "is required"})
	case strings.TrimSpace(in.Body) == "":
		return fmt.Errorf("%w: %w", entity.ErrInvalidInput,
			&entity.ValidationError{Field: "body", Message: "is required"})
	}
	return nil
}
