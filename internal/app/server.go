package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/content-processor/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/content-processor/internal/api/middlewares"
	"github.com/markdave123-py/content-processor/internal/config"
	"github.com/markdave123-py/content-processor/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, svc *services.DocumentService, logger *slog.Logger) *Server {
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &Server{httpServer: httpSrv, logger: logger}
}

// NewRouter returns the API routes.
func NewRouter(cfg *config.Config, svc *services.DocumentService, logger *slog.Logger) http.Handler {
	docHandler := handlers.NewDocumentHandler(svc, cfg.MaxFileSize, logger)
	healthHandler := handlers.NewHealthHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(api chi.Router) {
		api.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))

		api.Get("/formats", docHandler.SupportedFormats)
		api.Route("/documents", func(docs chi.Router) {
			docs.Post("/upload", docHandler.UploadDocument)
			docs.Get("/", docHandler.ListDocuments)
			docs.Get("/{id}", docHandler.GetDocument)
			docs.Delete("/{id}", docHandler.DeleteDocument)
			docs.Get("/{id}/chunks", docHandler.GetDocumentChunks)
			docs.Get("/{id}/file", docHandler.DownloadDocument)
			docs.Post("/{id}/reprocess", docHandler.ReprocessDocument)
			docs.Get("/{id}/search", docHandler.SearchDocument)
		})
	})

	return r
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
