// Package server publishes a [provider.Provider] over HTTP as a catalog.
//
// Routes:
//
//	GET /healthz          liveness and build version
//	GET /packages         names of every package, when the provider can list them
//	GET /packages/{name}  the package definition as JSON
//
// Every response carries an X-Request-ID header, taken from the request when
// present and generated otherwise. The integrations/catalog client speaks
// this protocol.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/filearts/corral/pkg/buildinfo"
	"github.com/filearts/corral/pkg/cache"
	cerrors "github.com/filearts/corral/pkg/errors"
	"github.com/filearts/corral/pkg/provider"
)

const (
	// HeaderRequestID carries the request ID.
	HeaderRequestID = "X-Request-ID"

	shutdownTimeout = 10 * time.Second
)

// Lister is implemented by providers that can enumerate their packages.
type Lister interface {
	Names() []string
}

// Options configures a Server.
type Options struct {
	Logger *log.Logger

	// Cache, when set, stores definitions the provider returned.
	Cache    cache.Cache
	Keyer    cache.Keyer
	CacheTTL time.Duration
}

// Server serves package definitions.
type Server struct {
	provider provider.Provider
	lister   Lister
	logger   *log.Logger
	router   chi.Router
}

// New creates a server for p.
func New(p provider.Provider, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	lister, _ := p.(Lister)
	if opts.Cache != nil {
		p = provider.NewCached(p, opts.Cache, opts.Keyer, "server", opts.CacheTTL)
	}

	s := &Server{provider: p, lister: lister, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/packages", s.handleList)
	r.Get("/packages/{name}", s.handlePackage)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("catalog server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.lister == nil {
		writeError(w, http.StatusNotImplemented, cerrors.New(cerrors.ErrCodeUnsupported, "provider cannot list packages"))
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"packages": s.lister.Names()})
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := cerrors.ValidatePackageName(name); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	def, err := s.provider.Fetch(r.Context(), name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, def)
	case provider.IsNotFound(err):
		writeError(w, http.StatusNotFound, err)
	default:
		s.logger.Warn("provider failed", "package", name, "request_id", w.Header().Get(HeaderRequestID), "err", err)
		writeError(w, http.StatusBadGateway, err)
	}
}

type errorBody struct {
	Error string       `json:"error"`
	Code  cerrors.Code `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: cerrors.UserMessage(err), Code: cerrors.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestID echoes the caller's X-Request-ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", ww.Header().Get(HeaderRequestID),
		)
	})
}
