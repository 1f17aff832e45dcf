package http

import (
	"context"
	"net/http"
	"time"

	"github.com/civicworks/mdi/pkg/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server represents the HTTP server
type Server struct {
	*http.Server
	router chi.Router
}

// NewServer creates a new HTTP server exposing the debt, score,
// simulation, explanation and snapshot operations
func NewServer(
	ctx context.Context,
	addr string,
	debtUC usecase.Debt,
	scoreUC usecase.Score,
	simUC usecase.Simulation,
	explainUC usecase.Explain,
	snapshotUC usecase.Snapshot,
) (*Server, error) {
	router := chi.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	h := &handlers{
		debt:     debtUC,
		score:    scoreUC,
		sim:      simUC,
		explain:  explainUC,
		snapshot: snapshotUC,
	}

	// Health check
	router.Get("/health", handleHealth)

	// API routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/debt/assets/{assetID}", h.handleAssetDebt)
		r.Get("/debt/issues/{issueID}", h.handleIssueDebt)
		r.Get("/scores/wards/{wardID}", h.handleWardScore)
		r.Get("/scores/city", h.handleCityScore)
		r.Get("/history/{entityType}/{entityID}", h.handleHistory)
		r.Post("/simulate", h.handleSimulate)
		r.Get("/explain/{entityType}/{entityID}", h.handleExplain)
		r.Post("/snapshots/run", h.handleSnapshotRun)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router: router,
	}

	return server, nil
}

// Router returns the underlying router for testing
func (s *Server) Router() http.Handler {
	return s.router
}
