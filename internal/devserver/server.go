// ABOUTME: Local stub of the support bot REST API for development and tests
// ABOUTME: Declares the route table and serves it on a chi router

package devserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
)

// Options configures a Server
type Options struct {
	TokenTTL   time.Duration
	FAQ        []FAQEntry
	BcryptCost int
	Logger     *slog.Logger
}

// Route defines an API endpoint with its HTTP method and handler
type Route struct {
	Method        string
	Path          string
	Handler       http.HandlerFunc
	Authenticated bool
}

type Server struct {
	store     *Store
	tokens    *TokenService
	retriever *Retriever
	logger    *slog.Logger
}

func New(opts Options) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 30 * time.Minute
	}
	if opts.FAQ == nil {
		opts.FAQ = DefaultFAQ()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		store:     NewStore(opts.BcryptCost),
		tokens:    NewTokenService(opts.TokenTTL),
		retriever: NewRetriever(opts.FAQ),
		logger:    opts.Logger,
	}
}

// Routes returns all API routes for registration
func (s *Server) Routes() []Route {
	return []Route{
		// Auth
		{Method: http.MethodPost, Path: client.PathRegister, Handler: s.handleRegister},
		{Method: http.MethodPost, Path: client.PathLogin, Handler: s.handleLogin},

		// Chat
		{Method: http.MethodPost, Path: client.PathAsk, Handler: s.handleAsk, Authenticated: true},
		{Method: http.MethodGet, Path: client.PathHistory, Handler: s.handleHistory, Authenticated: true},
		{Method: http.MethodGet, Path: client.PathConversations, Handler: s.handleConversations, Authenticated: true},
	}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LogRequest(s.logger))
	r.Use(middleware.Recoverer)

	auth := RequireToken(s.tokens)
	for _, route := range s.Routes() {
		var h http.Handler = route.Handler
		if route.Authenticated {
			h = auth(h)
		}
		r.Method(route.Method, route.Path, h)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, "Not Found", http.StatusNotFound)
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Close releases background resources
func (s *Server) Close() {
	s.tokens.Close()
}
