// Package api serves statute classification and IUCR category lookups
// over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/coolbeans/convictions/pkg/iucr"
	"github.com/coolbeans/convictions/pkg/statute"
)

// Resolver classifies a raw statute and returns every resolution stage.
type Resolver interface {
	Resolve(raw string) (*statute.Resolution, error)
}

// OffenseCodes looks up an IUCR offense by code.
type OffenseCodes interface {
	LookupCode(code string) (iucr.Offense, bool)
}

// Server is the lookup API.
type Server struct {
	resolver   Resolver
	registry   *iucr.Registry
	offenses   OffenseCodes
	logger     *zap.Logger
	router     *mux.Router
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(server *Server) {
		server.logger = logger
	}
}

// NewServer creates a server over a resolver, the category registry and the
// offense table.
func NewServer(resolver Resolver, registry *iucr.Registry, offenses OffenseCodes, opts ...Option) *Server {
	server := &Server{
		resolver: resolver,
		registry: registry,
		offenses: offenses,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.setupRoutes()
	return server
}

func (server *Server) setupRoutes() {
	server.router = mux.NewRouter()

	api := server.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/statutes/classify", server.classify).Methods(http.MethodGet)
	api.HandleFunc("/categories", server.categories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{code}", server.categoriesForCode).Methods(http.MethodGet)

	server.router.HandleFunc("/healthz", server.healthz).Methods(http.MethodGet)
	server.router.Use(server.requestLogging)
}

// Handler returns the server's HTTP handler.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Config holds listener settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ListenAndServe serves on config.Addr until ctx is done, then shuts down
// gracefully.
func (server *Server) ListenAndServe(ctx context.Context, config Config) error {
	listener, err := net.Listen("tcp", config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", config.Addr, err)
	}
	return server.Serve(ctx, listener, config)
}

// Serve serves on listener until ctx is done.
func (server *Server) Serve(ctx context.Context, listener net.Listener, config Config) error {
	server.httpServer = &http.Server{
		Handler:      server.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		server.logger.Info("Starting server", zap.String("addr", listener.Addr().String()))
		errs <- server.httpServer.Serve(listener)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	server.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-errs
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(status int) {
	recorder.status = status
	recorder.ResponseWriter.WriteHeader(status)
}

func (server *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		server.logger.Debug("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(start)))
	})
}
