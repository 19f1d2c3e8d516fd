package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/romangod6/niente/config"
	"github.com/romangod6/niente/internal/models"
	"github.com/romangod6/niente/internal/service"
	"github.com/romangod6/niente/internal/storage"
)

const (
	duplicateTitleMessage = "An article with the exact same title already exists"
	malformedJSONMessage  = "malformed JSON body"
)

type Handler struct {
	articles *service.ArticleService
	store    storage.Store
	api      config.APIConfig
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func NewHandler(articles *service.ArticleService, store storage.Store, api config.APIConfig) *Handler {
	return &Handler{articles: articles, store: store, api: api}
}

func (h *Handler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, h.api.WelcomeMessage)
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) ListArticles(c *gin.Context) {
	articles, err := h.articles.List(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, articles)
}

func (h *Handler) GetArticle(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	article, err := h.articles.Get(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *Handler) ListPreviews(c *gin.Context) {
	limit := h.api.DefaultPreviewLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ValidationErrorResponse{
				Error:  "invalid request",
				Fields: map[string]string{"limit": "must be an integer"},
			})
			return
		}
		limit = parsed
	}

	previews, err := h.articles.ListPreviews(c.Request.Context(), callerFrom(c), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, previews)
}

func (h *Handler) CreateArticle(c *gin.Context) {
	var req models.ArticlePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	article, err := h.articles.Create(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/Articles/%d", article.ID))
	c.JSON(http.StatusCreated, article)
}

func (h *Handler) UpdateArticle(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	var req models.ArticleEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	article, err := h.articles.Update(c.Request.Context(), callerFrom(c), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *Handler) DeleteArticle(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	article, err := h.articles.SoftDelete(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// Utility functions
func articleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "invalid request",
			Fields: map[string]string{"id": "must be an integer"},
		})
		return 0, false
	}
	return id, true
}

// writeError maps service errors to responses. Anything unclassified,
// unresolved write conflicts included, is a server error.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{Error: "invalid request", Fields: verr.Fields})
	case errors.Is(err, service.ErrDuplicateTitle):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: duplicateTitleMessage})
	case errors.Is(err, service.ErrNotFound):
		c.Status(http.StatusNotFound)
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// writeBindingError reports field errors under "fields". A body that is not
// JSON at all gets a plain error so it cannot be mistaken for a field named body.
func writeBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: malformedJSONMessage})
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describeFieldError(fe)
	}
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{Error: "invalid request", Fields: fields})
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// registerJSONFieldNames makes validation errors report JSON field names.
func registerJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
}
