package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/services"
)

// Server exposes the JSON API. Handlers delegate to the services and
// only deal with parsing, status codes, and cache invalidation.
type Server struct {
	http.Server

	ledger        *services.LedgerService
	budgets       *services.BudgetService
	dashboard     *services.DashboardService
	categories    services.CategoryStore
	family        services.FamilyStore
	notifications services.NotificationStore

	rateLimiter *rateLimiter
	recentLimit int
	now         func() time.Time
	ready       func(ctx context.Context) error

	shutdownOnce sync.Once
}

type ServerOptions struct {
	Addr          string
	Ledger        *services.LedgerService
	Budgets       *services.BudgetService
	Dashboard     *services.DashboardService
	Categories    services.CategoryStore
	Family        services.FamilyStore
	Notifications services.NotificationStore
	RecentLimit   int
	// Ready reports whether downstream dependencies answer; used by
	// the readiness probe. Optional.
	Ready func(ctx context.Context) error
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(opts ServerOptions) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ledger:        opts.Ledger,
		budgets:       opts.Budgets,
		dashboard:     opts.Dashboard,
		categories:    opts.Categories,
		family:        opts.Family,
		notifications: opts.Notifications,
		rateLimiter:   newRateLimiter(),
		recentLimit:   opts.RecentLimit,
		now:           time.Now,
		ready:         opts.Ready,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("PUT /transactions/{id}", s.withMiddleware(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("POST /categories", s.withMiddleware(s.handleCreateCategory))
	mux.HandleFunc("GET /categories", s.withMiddleware(s.handleListCategories))
	mux.HandleFunc("DELETE /categories/{id}", s.withMiddleware(s.handleDeleteCategory))

	mux.HandleFunc("PUT /budgets", s.withMiddleware(s.handleUpsertBudget))
	mux.HandleFunc("GET /budgets", s.withMiddleware(s.handleListBudgets))

	mux.HandleFunc("POST /family-members", s.withMiddleware(s.handleCreateFamilyMember))
	mux.HandleFunc("GET /family-members", s.withMiddleware(s.handleListFamilyMembers))
	mux.HandleFunc("DELETE /family-members/{id}", s.withMiddleware(s.handleDeleteFamilyMember))

	mux.HandleFunc("GET /dashboard/overview", s.withMiddleware(s.handleOverview))
	mux.HandleFunc("GET /dashboard/progress", s.withMiddleware(s.handleProgress))
	mux.HandleFunc("GET /dashboard/trend", s.withMiddleware(s.handleTrend))
	mux.HandleFunc("GET /dashboard/breakdown", s.withMiddleware(s.handleBreakdown))
	mux.HandleFunc("GET /dashboard/rollups", s.withMiddleware(s.handleRollups))
	mux.HandleFunc("GET /alerts", s.withMiddleware(s.handleAlerts))

	mux.HandleFunc("GET /notifications", s.withMiddleware(s.handleListNotifications))
	mux.HandleFunc("POST /notifications/{id}/read", s.withMiddleware(s.handleMarkNotificationRead))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "not ready"})
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
