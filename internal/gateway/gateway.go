// Package gateway fronts a compute unit with an HTTP server for local
// development: every incoming request becomes one invocation against the
// current binding environment.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edgekit/bindlike"
)

// Unit handles one invocation. The wasm host's Unit satisfies this, as does
// any in-process Go handler wrapped in UnitFunc.
type Unit interface {
	Invoke(ctx context.Context, env *bindlike.Environment, w http.ResponseWriter, r *http.Request) error
}

// UnitFunc adapts a function to the Unit interface.
type UnitFunc func(ctx context.Context, env *bindlike.Environment, w http.ResponseWriter, r *http.Request) error

func (f UnitFunc) Invoke(ctx context.Context, env *bindlike.Environment, w http.ResponseWriter, r *http.Request) error {
	return f(ctx, env, w, r)
}

// EnvironmentSource supplies the environment for each new invocation. The
// host's Reloader is one; Static pins a fixed environment.
type EnvironmentSource interface {
	Environment() *bindlike.Environment
}

// Static is an EnvironmentSource that always returns the same environment.
type Static struct {
	Env *bindlike.Environment
}

func (s Static) Environment() *bindlike.Environment { return s.Env }

// Server dispatches incoming requests to a compute unit.
type Server struct {
	unit   Unit
	src    EnvironmentSource
	log    zerolog.Logger
	router chi.Router
}

// New builds a gateway around unit. Environments are pulled from src per
// invocation, so a reload between requests takes effect on the next one.
func New(unit Unit, src EnvironmentSource, log zerolog.Logger) *Server {
	s := &Server{unit: unit, src: src, log: log}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.HandleFunc("/*", s.invoke)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	log := s.log.With().
		Str("invocation", id).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Logger()
	start := time.Now()

	ww := &statusWriter{ResponseWriter: w}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Any("panic", rec).Msg("unit panicked")
			if !ww.wrote {
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}
	}()

	err := s.unit.Invoke(r.Context(), s.src.Environment(), ww, r)
	if err != nil {
		s.fail(ww, log, err)
		return
	}
	log.Info().Int("status", ww.status()).Dur("elapsed", time.Since(start)).Msg("invocation complete")
}

// fail maps invocation errors onto downstream statuses: binding problems are
// the operator's misconfiguration (500, naming the binding), transport
// failures upstream are a bad gateway (502).
func (s *Server) fail(ww *statusWriter, log zerolog.Logger, err error) {
	var (
		missing   *bindlike.BindingMissingError
		wrongType *bindlike.BindingTypeError
		transport *bindlike.TransportError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &missing), errors.As(err, &wrongType):
		status = http.StatusInternalServerError
	case errors.As(err, &transport):
		status = http.StatusBadGateway
	}

	log.Error().Err(err).Int("status", status).Msg("invocation failed")
	if !ww.wrote {
		http.Error(ww.ResponseWriter, err.Error(), status)
	}
}

// statusWriter records whether and what the unit wrote, so error mapping
// never stomps a response already in flight.
type statusWriter struct {
	http.ResponseWriter
	code  int
	wrote bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wrote {
		w.wrote = true
		w.code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if !w.wrote {
		w.wrote = true
		w.code = http.StatusOK
	}
	return w.ResponseWriter.Write(p)
}

func (w *statusWriter) status() int {
	if !w.wrote {
		return http.StatusOK
	}
	return w.code
}
