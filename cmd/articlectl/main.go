// Package main provides a CLI for the article store.
// Usage:
//
//	articlectl create --author 1 --title "Hello" --description "d" --body "b" --tag go --tag rust
//	articlectl exists hello-world
//	articlectl get hello-world
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"conduit/internal/config"
	"conduit/internal/domain/entity"
	"conduit/internal/infra/adapter/persistence/postgres"
	"conduit/internal/infra/db"
	"conduit/internal/observability/logging"
	"conduit/internal/repository"
	"conduit/internal/resilience/circuitbreaker"
	artUC "conduit/internal/usecase/article"
)

// ArticleOutput is the JSON form of a stored article.
type ArticleOutput struct {
	ID          int64     `json:"id"`
	AuthorID    int64     `json:"author_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Body        string    `json:"body,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExistsOutput is the JSON result of the exists subcommand.
type ExistsOutput struct {
	Slug   string `json:"slug"`
	Exists bool   `json:"exists"`
}

// tagList collects repeated --tag flags.
type tagList []string

func (t *tagList) String() string     { return strings.Join(*t, ",") }
func (t *tagList) Set(v string) error { *t = append(*t, v); return nil }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger := logging.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", slog.String("command", os.Args[1]), slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "create":
		return runCreate(ctx, args)
	case "exists":
		return runExists(ctx, args)
	case "get":
		return runGet(ctx, args)
	case "-h", "--help", "help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: articlectl <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  create   publish an article (slug derived from title)")
	fmt.Fprintln(os.Stderr, "  exists   report whether a slug is taken")
	fmt.Fprintln(os.Stderr, "  get      print the article stored under a slug")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment: DATABASE_URL (required), LOG_LEVEL, DB_* pool and breaker settings")
}

func runCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	var (
		in   artUC.PublishInput
		tags tagList
	)
	fs.Int64Var(&in.AuthorID, "author", 0, "Author user id")
	fs.StringVar(&in.Title, "title", "", "Article title")
	fs.StringVar(&in.Description, "description", "", "Article description")
	fs.StringVar(&in.Body, "body", "", "Article body")
	fs.Var(&tags, "tag", "Tag (repeatable)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}
	in.Tags = tags

	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	a, err := svc.Publish(ctx, in)
	if err != nil {
		return err
	}
	return writeJSON(toOutput(a))
}

func runExists(ctx context.Context, args []string) error {
	slug, err := slugArg("exists", args)
	if err != nil {
		return err
	}
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	taken, err := svc.SlugTaken(ctx, slug)
	if err != nil {
		return err
	}
	return writeJSON(ExistsOutput{Slug: slug, Exists: taken})
}

func runGet(ctx context.Context, args []string) error {
	slug, err := slugArg("get", args)
	if err != nil {
		return err
	}
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	a, err := svc.Get(ctx, slug)
	if err != nil {
		return err
	}
	return writeJSON(toOutput(a))
}

func slugArg(cmd string, args []string) (string, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: %s: exactly one slug argument is required", entity.ErrInvalidInput, cmd)
	}
	return fs.Arg(0), nil
}

// newService wires config, pool, breaker and store into the publish service.
func newService(ctx context.Context) (*artUC.Service, func(), error) {
	cfg, err := config.LoadStoreConfig()
	if err != nil {
		return nil, nil, err
	}

	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := conn.Close(); err != nil {
			logging.FromContext(ctx).Error("failed to close database", slog.Any("error", err))
		}
	}

	return &artUC.Service{
		Repo:            postgres.NewArticleRepo(guard(cfg, conn)),
		MaxSlugAttempts: cfg.Publish.MaxSlugAttempts,
	}, closeFn, nil
}

func guard(cfg *config.StoreConfig, conn *sql.DB) repository.TransactionalStore {
	store := db.NewTxStore(conn)
	if !cfg.CircuitBreaker.Enabled {
		return store
	}
	return circuitbreaker.NewDBCircuitBreakerWithConfig(store,
		circuitbreaker.FromStoreConfig("articles-db", cfg.CircuitBreaker))
}

func toOutput(a *entity.Article) ArticleOutput {
	return ArticleOutput{
		ID:          int64(a.ID),
		AuthorID:    int64(a.AuthorID),
		Slug:        a.Slug.String(),
		Title:       a.Title,
		Description: a.Description,
		Body:        a.Body,
		Tags:        a.Tags.Values(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// exitCode maps errors to process exit codes: 1 for store failures,
// 2 for bad input, 3 for a missing article.
func exitCode(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, flag.ErrHelp):
		return 2
	case errors.Is(err, artUC.ErrArticleNotFound):
		return 3
	default:
		return 1
	}
}
