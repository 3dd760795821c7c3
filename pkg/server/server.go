// Package server exposes one discovery session over HTTP.
//
// The service is meant for a single local viewer: it owns one deck and the
// client behind it, so every request acts on the same profile.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oceanbase/cinedeck-go/pkg/core"
	"github.com/oceanbase/cinedeck-go/pkg/logging"
)

const (
	// DefaultDeckLimit is the number of upcoming cards returned by GET /deck.
	DefaultDeckLimit = 20

	// MaxDeckLimit caps the limit query parameter.
	MaxDeckLimit = 100

	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves the cinedeck HTTP API.
type Server struct {
	client  *core.Client
	session *core.Session
	router  chi.Router
}

// New creates a server for client and its session.
func New(client *core.Client, session *core.Session) *Server {
	s := &Server{client: client, session: session}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(requestTimeout))

		r.Get("/deck", s.getDeck)
		r.Post("/deck/swipe", s.swipe)
		r.Post("/deck/hide", s.hide)
		r.Put("/filters", s.putFilters)
		r.Get("/filters", s.getFilters)
		r.Get("/profile", s.getProfile)

		r.Get("/lists/{name}", s.getList)
		r.Delete("/lists/{name}/{type}/{id}", s.deleteListEntry)

		r.Get("/catalog/{type}/genres", s.getGenres)
		r.Get("/catalog/{type}/providers", s.getProviders)
		r.Get("/titles/{type}/{id}", s.getTitle)
		r.Get("/titles/{type}/{id}/providers", s.getAvailability)

		r.Post("/mood", s.interpretMood)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Str("session", s.session.ID()).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logging.Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
