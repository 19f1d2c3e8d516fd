package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/romangod6/niente/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pgUniqueViolation is the SQLSTATE postgres reports for unique constraint violations.
const pgUniqueViolation = "23505"

// GormStore persists articles through gorm. The dialect is picked by the constructor.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func newGormStore(dialector gorm.Dialector, opts Options) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(opts),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	configurePool(sqlDB, opts)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormStore{db: db, now: time.Now}, nil
}

func configurePool(sqlDB *sql.DB, opts Options) {
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
}

// newGormLogger sends ORM output through the application's slog handler, so
// it follows the configured format and log file.
func newGormLogger(opts Options) logger.Interface {
	base := opts.Logger
	if base == nil {
		base = slog.Default()
	}
	return logger.New(slog.NewLogLogger(base.Handler(), slog.LevelInfo), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLogLevel(opts.LogLevel),
		IgnoreRecordNotFoundError: true,
	})
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}

func (s *GormStore) Initialize(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.Article{}); err != nil {
		return fmt.Errorf("error migrating articles table: %w", err)
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) ListArticles(ctx context.Context) ([]*models.Article, error) {
	var articles []*models.Article
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

func (s *GormStore) ListPreviewArticles(ctx context.Context, limit int) ([]*models.Article, error) {
	query := s.db.WithContext(ctx).
		Where("display_level = ? AND status = ?", models.DisplayLevelDefault, models.StatusVisible).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var articles []*models.Article
	if err := query.Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

func (s *GormStore) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	article := &models.Article{}
	err := s.db.WithContext(ctx).Where("id = ?", id).First(article).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return article, nil
}

func (s *GormStore) ArticleExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// TitleExists reports whether another article (not exceptID) already uses title.
func (s *GormStore) TitleExists(ctx context.Context, title string, exceptID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Article{}).
		Where("title = ? AND id <> ?", title, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) CreateArticle(ctx context.Context, article *models.Article) error {
	now := s.now()
	if article.CreateAt.IsZero() {
		article.CreateAt = now
	}
	if article.LastEditAt.IsZero() {
		article.LastEditAt = article.CreateAt
	}
	if article.ImageURIs == nil {
		article.ImageURIs = models.URIList{}
	}

	return translateError(s.db.WithContext(ctx).Create(article).Error)
}

// UpdateArticle replaces every column of the row with article's primary key.
func (s *GormStore) UpdateArticle(ctx context.Context, article *models.Article) error {
	if article.LastEditAt.IsZero() {
		article.LastEditAt = s.now()
	}
	if article.ImageURIs == nil {
		article.ImageURIs = models.URIList{}
	}

	result := s.db.WithContext(ctx).Model(article).Select("*").Omit("id").Updates(article)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}
