package main

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/go-tickets/internal/apierr"
	"github.com/diewo77/go-tickets/internal/config"
	"github.com/diewo77/go-tickets/internal/handlers"
	"github.com/diewo77/go-tickets/internal/policy"
	"gorm.io/gorm"
)

// App is the main application handler: it owns the route table and
// converts router misses (unknown path, wrong method) into the same
// error envelope every other fault uses.
type App struct {
	mux    *http.ServeMux
	errors *apierr.Classifier
}

func NewApp(db *gorm.DB, cfg config.Config, log *slog.Logger) *App {
	classifier := apierr.NewClassifier(log)
	api := handlers.NewAPI(db, policy.NewGate(), classifier, log)

	authHandler := handlers.NewAuthHandler(api, cfg.TokenTTL)
	tickets := handlers.NewTicketHandler(api)
	authorTickets := handlers.NewAuthorTicketsHandler(api)
	users := handlers.NewUserHandler(api)

	mux := http.NewServeMux()

	// Auth
	mux.Handle("POST /api/register", api.Handle(authHandler.Register))
	mux.Handle("POST /api/login", api.Handle(authHandler.Login))
	mux.Handle("POST /api/logout", api.Handle(authHandler.Logout))
	mux.Handle("GET /api/user", api.Handle(authHandler.Me))

	// Tickets
	mux.Handle("GET /api/v1/tickets", api.Handle(tickets.Index))
	mux.Handle("POST /api/v1/tickets", api.Handle(tickets.Store))
	mux.Handle("GET /api/v1/tickets/{id}", api.Handle(tickets.Show))
	mux.Handle("PUT /api/v1/tickets/{id}", api.Handle(tickets.Replace))
	mux.Handle("PATCH /api/v1/tickets/{id}", api.Handle(tickets.Update))
	mux.Handle("DELETE /api/v1/tickets/{id}", api.Handle(tickets.Destroy))

	// Author-scoped tickets
	mux.Handle("GET /api/v1/authors/{author_id}/tickets", api.Handle(authorTickets.Index))
	mux.Handle("POST /api/v1/authors/{author_id}/tickets", api.Handle(authorTickets.Store))
	mux.Handle("GET /api/v1/authors/{author_id}/tickets/{id}", api.Handle(authorTickets.Show))
	mux.Handle("PUT /api/v1/authors/{author_id}/tickets/{id}", api.Handle(authorTickets.Replace))
	mux.Handle("PATCH /api/v1/authors/{author_id}/tickets/{id}", api.Handle(authorTickets.Update))
	mux.Handle("DELETE /api/v1/authors/{author_id}/tickets/{id}", api.Handle(authorTickets.Destroy))

	// Users
	mux.Handle("GET /api/v1/users", api.Handle(users.Index))
	mux.Handle("POST /api/v1/users", api.Handle(users.Store))
	mux.Handle("GET /api/v1/users/{id}", api.Handle(users.Show))
	mux.Handle("PUT /api/v1/users/{id}", api.Handle(users.Replace))
	mux.Handle("PATCH /api/v1/users/{id}", api.Handle(users.Update))
	mux.Handle("DELETE /api/v1/users/{id}", api.Handle(users.Destroy))

	return &App{mux: mux, errors: classifier}
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if miss, pattern := a.mux.Handler(r); pattern == "" {
		a.missing(w, r, miss)
		return
	}
	a.mux.ServeHTTP(w, r)
}

// missing replays the router's fallback handler into a throwaway
// recorder to learn whether the miss is a bad path or a bad method,
// then answers with the proper envelope. The recorder also yields the
// Allow header for the 405 case.
func (a *App) missing(w http.ResponseWriter, r *http.Request, miss http.Handler) {
	probe := &probeRecorder{header: make(http.Header), status: http.StatusOK}
	miss.ServeHTTP(probe, r)

	if probe.status == http.StatusMethodNotAllowed {
		a.errors.Respond(w, r, apierr.MethodNotAllowed(r.Method, probe.header.Get("Allow")))
		return
	}
	a.errors.Respond(w, r, apierr.RouteNotFound(r.URL.RequestURI()))
}

// probeRecorder captures status and headers, discarding the body.
type probeRecorder struct {
	header http.Header
	status int
}

func (p *probeRecorder) Header() http.Header         { return p.header }
func (p *probeRecorder) WriteHeader(code int)        { p.status = code }
func (p *probeRecorder) Write(b []byte) (int, error) { return len(b), nil }
