package ui

import (
	"context"
	"log"
	"net/http"
	"time"

	"coachlens/app"
	"coachlens/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// DefaultUserID scopes requests that carry no X-User-ID header. Matches the
// development user seeded by migrations.
var DefaultUserID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

// Server is the HTTP API over the analysis pipeline.
type Server struct {
	router   *chi.Mux
	analysis *app.AnalysisService
	data     ports.BusinessDataRepository
	bcgItems ports.BCGItemRepository
	httpSrv  *http.Server
}

// Config holds server configuration
type Config struct {
	Port string
}

// NewServer wires routes over the analysis service and repositories.
func NewServer(cfg Config, analysis *app.AnalysisService, data ports.BusinessDataRepository, bcgItems ports.BCGItemRepository) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		analysis: analysis,
		data:     data,
		bcgItems: bcgItems,
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.httpSrv = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(2 * time.Minute))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/data", func(r chi.Router) {
			r.Post("/", s.handleCreateData)
			r.Post("/upload", s.handleUploadData)
			r.Get("/", s.handleListData)
			r.Get("/{dataID}", s.handleGetData)
			r.Put("/{dataID}", s.handleUpdateData)
			r.Delete("/{dataID}", s.handleDeleteData)
		})

		r.Route("/analysis", func(r chi.Router) {
			r.Post("/strategies", s.handleGenerateStrategies)
			r.Post("/strategies/draft", s.handleSaveStrategyDraft)
			r.Post("/prototype", s.handleGeneratePrototype)
			r.Post("/market-research", s.handleMarketResearch)
			r.Post("/bcg", s.handleGenerateBCG)

			r.Get("/", s.handleListAnalyses)
			r.Get("/{analysisID}", s.handleGetAnalysis)
			r.Get("/{analysisID}/report", s.handleAnalysisReport)
			r.Put("/{analysisID}", s.handleUpdateAnalysis)
			r.Delete("/{analysisID}", s.handleDeleteAnalysis)
		})

		r.Route("/bcg-matrix", func(r chi.Router) {
			r.Get("/summary", s.handleBCGSummary)
			r.Get("/{analysisID}/items", s.handleListBCGItems)
			r.Post("/{analysisID}/items", s.handleCreateBCGItem)
			r.Put("/items/{itemID}", s.handleUpdateBCGItem)
			r.Delete("/items/{itemID}", s.handleDeleteBCGItem)
		})
	})
}

// Start runs the server until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Printf("[Server] Listening on %s", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestUser resolves the acting user from the X-User-ID header, falling
// back to the development user. Auth proper lives in front of this service.
func requestUser(r *http.Request) (uuid.UUID, error) {
	header := r.Header.Get("X-User-ID")
	if header == "" {
		return DefaultUserID, nil
	}
	return uuid.Parse(header)
}
