package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/romangod6/niente/internal/models"
)

var (
	// ErrConflict is returned when a full-row update matched no row.
	ErrConflict = errors.New("storage: concurrent modification")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("storage: duplicate key")
)

type Store interface {
	Initialize(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error

	// Article operations
	ListArticles(ctx context.Context) ([]*models.Article, error)
	ListPreviewArticles(ctx context.Context, limit int) ([]*models.Article, error)
	GetArticle(ctx context.Context, id int64) (*models.Article, error)
	ArticleExists(ctx context.Context, id int64) (bool, error)
	TitleExists(ctx context.Context, title string, exceptID int64) (bool, error)
	CreateArticle(ctx context.Context, article *models.Article) error
	UpdateArticle(ctx context.Context, article *models.Article) error
}

// Options tunes the connection pool and the ORM logger.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
	// Logger receives ORM output. Nil means slog.Default().
	Logger *slog.Logger
}
