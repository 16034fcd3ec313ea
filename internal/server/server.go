// Package server exposes the parts engine over HTTP.
//
// Routes:
//
//	POST /v1/parts                 resolve one component
//	POST /v1/parts/batch           resolve a JSON array of components
//	POST /v1/footprints/normalize  translate a footprint to its package token
//	GET  /healthz                  liveness
//	GET  /metrics                  Prometheus metrics, when configured
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/partsengine/pkg/engine"
	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
	"github.com/matzehuels/partsengine/pkg/footprint"
	"github.com/matzehuels/partsengine/pkg/pipeline"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// MaxBatchItems bounds the number of items in one batch request.
const MaxBatchItems = 500

// RequestTimeout bounds a single request, including catalog round trips.
const RequestTimeout = 60 * time.Second

// Server routes HTTP requests to an engine.
type Server struct {
	Engine  *engine.Engine
	Runner  *pipeline.Runner
	Metrics http.Handler // optional; /metrics is not mounted when nil
	Logger  *log.Logger
}

// New creates a server. A nil runner gets a default runner over e; a nil
// logger selects log.Default().
func New(e *engine.Engine, runner *pipeline.Runner, metrics http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(e, pipeline.DefaultConcurrency, logger)
	}
	return &Server{Engine: e, Runner: runner, Metrics: metrics, Logger: logger}
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(RequestTimeout))
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/parts", s.handleFindPart)
		r.Post("/parts/batch", s.handleBatch)
		r.Post("/footprints/normalize", s.handleNormalize)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFindPart(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := pkgerrors.ValidateFootprint(req.FootprinterString); err != nil {
		s.writeError(w, err)
		return
	}

	parts, err := s.Engine.FindPart(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parts)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	items, err := pipeline.ParseItems(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(items) > MaxBatchItems {
		s.writeError(w, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "batch too large (max %d items)", MaxBatchItems))
		return
	}

	result, err := s.Runner.Run(r.Context(), items)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type normalizeRequest struct {
	Footprint string `json:"footprint"`
}

type normalizeResponse struct {
	Package  string `json:"package"`
	Notation string `json:"notation"`
	Matched  bool   `json:"matched"`
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := pkgerrors.ValidateFootprint(req.Footprint); err != nil {
		s.writeError(w, err)
		return
	}

	tr := footprint.Translate(req.Footprint)
	writeJSON(w, http.StatusOK, normalizeResponse{
		Package:  tr.Package,
		Notation: string(tr.Notation),
		Matched:  tr.Matched,
	})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if pkgerrors.GetCode(err) != "" {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := pkgerrors.GetCode(err)
	if code == "" {
		code = pkgerrors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: pkgerrors.UserMessage(err)})
}

// statusFor maps an error to an HTTP status: input errors are the caller's
// fault, catalog failures are an upstream fault. A deadline wins over the
// catalog code it is wrapped in.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	}
	switch pkgerrors.GetCode(err) {
	case pkgerrors.ErrCodeInvalidInput, pkgerrors.ErrCodeInvalidComponent,
		pkgerrors.ErrCodeInvalidFootprint, pkgerrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case pkgerrors.ErrCodeCatalogUnavailable, pkgerrors.ErrCodeCatalogMalformed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
