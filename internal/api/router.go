package api

import (
	"context"
	"net/http"
	"time"

	"github.com/hackguide/advisor/internal/advisor"
	"github.com/hackguide/advisor/internal/catalog"
	"github.com/hackguide/advisor/internal/chread"
	"go.uber.org/zap"
)

// OutcomeReader serves advice analytics. *chread.Reader implements it.
type OutcomeReader interface {
	GetOutcomes(ctx context.Context, days int) (*chread.OutcomeReport, error)
}

// Dependencies holds shared state injected into all HTTP handlers.
type Dependencies struct {
	Advisor *advisor.Service
	Catalog *catalog.Index
	// Reader is nil when ClickHouse is unavailable.
	Reader         OutcomeReader
	AdminTokenHash string
	CacheTTL       time.Duration
	Logger         *zap.Logger
}

// NewRouter builds the HTTP mux with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", deps.handleChat)

	// Catalog (no auth)
	mux.HandleFunc("GET /api/tools", deps.handleListTools)
	mux.HandleFunc("GET /api/tools/{tool_id}", deps.handleGetTool)
	mux.HandleFunc("GET /api/sections", deps.handleListSections)

	// Analytics (admin bearer token)
	if deps.Reader != nil && deps.AdminTokenHash != "" {
		mux.HandleFunc("GET /api/advice/outcomes", deps.adminMiddleware(deps.handleGetOutcomes))
	}

	// Health check
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return corsMiddleware(requestLogging(mux, deps.Logger))
}
