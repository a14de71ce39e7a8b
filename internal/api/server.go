// Package api exposes the hearthledger HTTP API: JSON over chi routes,
// bearer-token auth, and a Prometheus metrics endpoint. Handlers decode
// tagged request variants (each split method carries only the input
// field it needs), call the services, and translate typed domain errors
// into 4xx responses.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hearthledger/hearthledger/internal/auth"
	"github.com/hearthledger/hearthledger/internal/middleware"
	"github.com/hearthledger/hearthledger/internal/service"
)

// Server is the hearthledger HTTP API server.
type Server struct {
	auth        *service.AuthService
	obligations *service.ObligationService
	ledger      *service.LedgerService
	households  *service.HouseholdService
	jwt         *auth.JWTManager
}

// NewServer creates a new API server over the given services.
func NewServer(
	authSvc *service.AuthService,
	obligations *service.ObligationService,
	ledger *service.LedgerService,
	households *service.HouseholdService,
	jwt *auth.JWTManager,
) *Server {
	return &Server{
		auth:        authSvc,
		obligations: obligations,
		ledger:      ledger,
		households:  households,
		jwt:         jwt,
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Logging)
	r.Use(instrument)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwt))

			r.Get("/me", s.handleCurrentUser)

			r.Post("/splits/preview", s.handlePreviewSplit)

			r.Post("/obligations", s.handleCreateObligation)
			r.Get("/obligations/{id}", s.handleGetObligation)
			r.Patch("/obligations/{id}", s.handleUpdateObligation)
			r.Post("/obligations/{id}/payments", s.handleRecordPayment)
			r.Post("/obligations/{id}/participants/{userID}/settle", s.handleSettle)

			r.Post("/households", s.handleCreateHousehold)
			r.Get("/households/{id}", s.handleGetHousehold)
			r.Post("/households/{id}/members", s.handleAddMembers)
			r.Delete("/households/{id}/members/{userID}", s.handleRemoveMember)
			r.Get("/households/{id}/obligations", s.handleListObligations)
			r.Get("/households/{id}/balances", s.handleHouseholdBalances)
		})
	})

	return r
}
