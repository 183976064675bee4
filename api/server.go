/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. zerolog:    Structured request logging
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/accounts/*      Savings accounts
  /api/bills/*         Bill reserves
  /api/transactions/*  Transaction log
  /api/paychecks       Paycheck processing
  /api/rollovers/*     Rollover sweeps
  /api/weeks/*         Weeks and summaries

SECURITY NOTE:
  No authentication middleware. Single-user tool; all endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/{id}/history", h.AccountHistory)
			r.Post("/{id}/default", h.SetDefaultSavings)
		})

		r.Route("/bills", func(r chi.Router) {
			r.Get("/", h.ListBills)
			r.Post("/", h.CreateBill)
			r.Get("/{id}/history", h.BillHistory)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", h.RecordTransaction)
			r.Put("/{id}", h.AmendTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
		})
		r.Post("/transfers", h.Transfer)

		r.Post("/paychecks", h.ProcessPaycheck)
		r.Post("/rollovers/sweep", h.SweepRollovers)

		r.Route("/weeks", func(r chi.Router) {
			r.Get("/", h.ListWeeks)
			r.Get("/{number}", h.GetWeek)
			r.Get("/{number}/transactions", h.WeekTransactions)
			r.Get("/{number}/summary", h.WeekSummary)
			r.Get("/{number}/rollover", h.WeekRollover)
		})
		r.Get("/periods/{number}", h.PeriodSummary)
		r.Get("/totals", h.Totals)

		r.Get("/scenarios", h.ListScenarios)
		r.Post("/scenarios/load", h.LoadScenario)
	})

	return r
}

// requestLogger logs each request with method, path, status, and duration.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
