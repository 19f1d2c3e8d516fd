// Package service holds the article rules: title uniqueness, preview
// filtering, non-blank edit merging and soft deletion.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/romangod6/niente/internal/content"
	"github.com/romangod6/niente/internal/models"
	"github.com/romangod6/niente/internal/storage"
)

// Caller identifies who issued a request. The transport layer fills it in.
type Caller struct {
	Address   string
	Principal string
	RequestID string
}

type ArticleService struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewArticleService(store storage.Store, logger *slog.Logger) *ArticleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArticleService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// List returns every stored article, hidden ones included.
func (s *ArticleService) List(ctx context.Context, caller Caller) ([]*models.Article, error) {
	log := s.opLogger(caller, "list")

	articles, err := s.store.ListArticles(ctx)
	if err != nil {
		log.ErrorContext(ctx, "failed to list articles", slog.String("error", err.Error()))
		return nil, fmt.Errorf("list articles: %w", err)
	}
	if articles == nil {
		articles = []*models.Article{}
	}

	log.InfoContext(ctx, "articles sent to the client",
		slog.String("result", "ok"),
		slog.Int("count", len(articles)),
	)
	return articles, nil
}

func (s *ArticleService) Get(ctx context.Context, caller Caller, id int64) (*models.ArticleView, error) {
	log := s.opLogger(caller, "get").With(slog.Int64("id", id))

	article, err := s.store.GetArticle(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "failed to fetch article", slog.String("error", err.Error()))
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	if article == nil {
		log.InfoContext(ctx, "entry not found", slog.String("result", "not_found"))
		return nil, ErrNotFound
	}

	log.InfoContext(ctx, "entry found, article sent to the client", slog.String("result", "ok"))
	return article.ToView(), nil
}

// ListPreviews returns up to limit visible, default-level articles ordered by id.
// A limit below 1 returns all of them.
func (s *ArticleService) ListPreviews(ctx context.Context, caller Caller, limit int) ([]models.ArticlePreview, error) {
	log := s.opLogger(caller, "list_previews").With(slog.Int("limit", limit))

	articles, err := s.store.ListPreviewArticles(ctx, limit)
	if err != nil {
		log.ErrorContext(ctx, "failed to list article previews", slog.String("error", err.Error()))
		return nil, fmt.Errorf("list previews: %w", err)
	}

	previews := make([]models.ArticlePreview, 0, len(articles))
	for _, article := range articles {
		previews = append(previews, article.ToPreview())
	}

	log.InfoContext(ctx, "article previews sent to the client",
		slog.String("result", "ok"),
		slog.Int("count", len(previews)),
	)
	return previews, nil
}

func (s *ArticleService) Create(ctx context.Context, caller Caller, req models.ArticlePostRequest) (*models.Article, error) {
	log := s.opLogger(caller, "create").With(slog.String("title", req.Title))

	article := models.NewArticle(s.clock())
	article.Title = strings.TrimSpace(req.Title)
	article.Body = strings.TrimSpace(req.Body)
	article.PreviewText = strings.TrimSpace(req.PreviewText)
	article.PreviewImageURI = strings.TrimSpace(req.PreviewImageURI)

	if err := validateRequired(article); err != nil {
		log.WarnContext(ctx, "bad request", slog.String("result", "bad_request"), slog.String("error", err.Error()))
		return nil, err
	}

	taken, err := s.store.TitleExists(ctx, article.Title, 0)
	if err != nil {
		log.ErrorContext(ctx, "failed to check title", slog.String("error", err.Error()))
		return nil, fmt.Errorf("check title: %w", err)
	}
	if taken {
		log.WarnContext(ctx, ErrDuplicateTitle.Error(), slog.String("result", "duplicate_title"))
		return nil, ErrDuplicateTitle
	}

	article.ImageURIs = content.ExtractImageURIs(article.Body)

	if err := s.store.CreateArticle(ctx, article); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			log.WarnContext(ctx, ErrDuplicateTitle.Error(), slog.String("result", "duplicate_title"))
			return nil, ErrDuplicateTitle
		}
		log.ErrorContext(ctx, "failed to save article", slog.String("error", err.Error()))
		return nil, fmt.Errorf("create article: %w", err)
	}

	log.InfoContext(ctx, "article saved in the database",
		slog.String("result", "ok"),
		slog.Int64("id", article.ID),
	)
	return article, nil
}

// Update merges patch into the stored article. A field replaces the stored
// value only when it is non-blank after trimming. Display level, images,
// status and language cannot be changed here.
func (s *ArticleService) Update(ctx context.Context, caller Caller, id int64, patch models.ArticleEditRequest) (*models.Article, error) {
	log := s.opLogger(caller, "update").With(slog.Int64("id", id))

	current, err := s.store.GetArticle(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "failed to fetch article", slog.String("error", err.Error()))
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	if current == nil {
		log.InfoContext(ctx, "the article does not exist", slog.String("result", "not_found"))
		return nil, ErrNotFound
	}

	entry := &models.Article{
		ID:              current.ID,
		Title:           mergeField(patch.Title, current.Title),
		Body:            mergeField(patch.Body, current.Body),
		PreviewText:     mergeField(patch.PreviewText, current.PreviewText),
		PreviewImageURI: mergeField(patch.PreviewImageURI, current.PreviewImageURI),
		ImageURIs:       current.ImageURIs,
		CreateAt:        current.CreateAt,
		LastEditAt:      s.editStamp(current.LastEditAt),
		DisplayLevel:    current.DisplayLevel,
		Status:          current.Status,
		Language:        current.Language,
	}

	if entry.Title != current.Title {
		taken, err := s.store.TitleExists(ctx, entry.Title, id)
		if err != nil {
			log.ErrorContext(ctx, "failed to check title", slog.String("error", err.Error()))
			return nil, fmt.Errorf("check title: %w", err)
		}
		if taken {
			log.WarnContext(ctx, ErrDuplicateTitle.Error(), slog.String("result", "duplicate_title"))
			return nil, ErrDuplicateTitle
		}
	}

	if err := s.store.UpdateArticle(ctx, entry); err != nil {
		return nil, s.resolveWriteError(ctx, log, id, err)
	}

	log.InfoContext(ctx, "article has been updated", slog.String("result", "ok"))
	return entry, nil
}

// SoftDelete hides the article. The row is kept.
func (s *ArticleService) SoftDelete(ctx context.Context, caller Caller, id int64) (*models.Article, error) {
	log := s.opLogger(caller, "delete").With(slog.Int64("id", id))

	article, err := s.store.GetArticle(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "failed to fetch article", slog.String("error", err.Error()))
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	if article == nil {
		log.InfoContext(ctx, "not found", slog.String("result", "not_found"))
		return nil, ErrNotFound
	}

	article.Status = models.StatusHidden

	if err := s.store.UpdateArticle(ctx, article); err != nil {
		return nil, s.resolveWriteError(ctx, log, id, err)
	}

	log.InfoContext(ctx, "article has been hidden", slog.String("result", "ok"))
	return article, nil
}

// resolveWriteError classifies a failed full-row update. A conflict on a row
// that no longer exists is a plain not-found; a conflict on a live row is
// returned as is and never retried.
func (s *ArticleService) resolveWriteError(ctx context.Context, log *slog.Logger, id int64, err error) error {
	if errors.Is(err, storage.ErrDuplicate) {
		log.WarnContext(ctx, ErrDuplicateTitle.Error(), slog.String("result", "duplicate_title"))
		return ErrDuplicateTitle
	}

	if !errors.Is(err, storage.ErrConflict) {
		log.ErrorContext(ctx, "failed to save article", slog.String("error", err.Error()))
		return fmt.Errorf("update article %d: %w", id, err)
	}

	exists, existsErr := s.store.ArticleExists(ctx, id)
	if existsErr != nil {
		log.ErrorContext(ctx, "failed to re-check article", slog.String("error", existsErr.Error()))
		return fmt.Errorf("update article %d: %w", id, errors.Join(err, existsErr))
	}
	if !exists {
		log.WarnContext(ctx, "the article does not exist", slog.String("result", "not_found"))
		return ErrNotFound
	}

	log.WarnContext(ctx, "the database is busy", slog.String("result", "conflict"))
	return fmt.Errorf("update article %d: %w", id, err)
}

func (s *ArticleService) opLogger(caller Caller, op string) *slog.Logger {
	return s.logger.With(
		slog.String("op", op),
		slog.String("remote_addr", caller.Address),
		slog.String("principal", caller.Principal),
		slog.String("request_id", caller.RequestID),
	)
}

// clock returns now at the precision postgres keeps.
func (s *ArticleService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// editStamp returns a modification time strictly after previous.
func (s *ArticleService) editStamp(previous time.Time) time.Time {
	now := s.clock()
	if !now.After(previous) {
		now = previous.Add(time.Microsecond)
	}
	return now
}

func mergeField(patch *string, current string) string {
	if patch != nil {
		if trimmed := strings.TrimSpace(*patch); trimmed != "" {
			return trimmed
		}
	}
	return strings.TrimSpace(current)
}

func validateRequired(article *models.Article) error {
	fields := make(map[string]string)
	if article.Title == "" {
		fields["title"] = "required"
	}
	if article.Body == "" {
		fields["body"] = "required"
	}
	if article.PreviewText == "" {
		fields["previewText"] = "required"
	}
	if article.PreviewImageURI == "" {
		fields["previewImageUri"] = "required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
