package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/romangod6/niente/config"
	"github.com/romangod6/niente/internal/auth"
	"github.com/romangod6/niente/internal/service"
	"github.com/romangod6/niente/internal/storage"
)

type Server struct {
	router *gin.Engine
	cfg    config.ServerConfig
	server *http.Server
}

func NewServer(cfg *config.Config, store storage.Store, articles *service.ArticleService, verifier *auth.Verifier, logger *slog.Logger) *Server {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Warn("ignoring invalid trusted proxies", slog.String("error", err.Error()))
	}
	registerJSONFieldNames()

	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(logger))

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Location", requestIDHeader},
		AllowCredentials: !allowsAnyOrigin(cfg.Server.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// Create handler
	handler := NewHandler(articles, store, cfg.API)
	requireAuth := RequireAuth(verifier, logger)

	// Setup routes
	api := router.Group("/api")
	{
		api.GET("/", handler.Welcome)

		// Health check
		api.GET("/health", handler.Health)

		api.GET("/articlepreviews", handler.ListPreviews)

		// Clients use both spellings of the resource name.
		for _, prefix := range []string{"/Articles", "/articles"} {
			articles := api.Group(prefix)
			{
				articles.GET("/:id", handler.GetArticle)
				articles.GET("", requireAuth, handler.ListArticles)
				articles.POST("", requireAuth, handler.CreateArticle)
				articles.PUT("/:id", requireAuth, handler.UpdateArticle)
				articles.DELETE("/:id", requireAuth, handler.DeleteArticle)
			}
		}
	}

	return &Server{
		router: router,
		cfg:    cfg.Server,
	}
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
