package server

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/thinkscotty/explainer/internal/config"
	"github.com/thinkscotty/explainer/internal/explain"
	"github.com/thinkscotty/explainer/internal/models"
)

// Explainer runs one explain request. Ready returns an error that applies to
// every request regardless of its body, such as a missing API key.
type Explainer interface {
	Ready() error
	Explain(ctx context.Context, req explain.Request) (*explain.Result, error)
}

// Store is the usage log. *database.DB implements it.
type Store interface {
	LogExplain(entry models.ExplainLog) error
	GetStats() (models.Stats, error)
	RecentExplains(limit int) ([]models.ExplainLog, error)
}

type Server struct {
	cfg       config.Config
	explainer Explainer
	store     Store
	validate  *validator.Validate
	version   string
	httpSrv   *http.Server
}

// New creates a Server. store may be nil, which disables the usage log and
// the stats endpoint.
func New(cfg config.Config, ex Explainer, store Store, version string) *Server {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Server{
		cfg:       cfg,
		explainer: ex,
		store:     store,
		validate:  v,
		version:   version,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.routes(mux)
	return recoveryMiddleware(loggingMiddleware(s.cors(mux)))
}

// Start sets up routes and starts the HTTP server.
func (s *Server) Start() error {
	addr := s.cfg.Server.Addr()
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout(),
		WriteTimeout: s.cfg.Server.WriteTimeout(),
	}

	slog.Info("Starting server", "addr", addr, "version", s.version)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.Handle("POST /api/explain", s.requireAccessKey(http.HandlerFunc(s.handleExplain)))
	mux.HandleFunc("OPTIONS /api/explain", handlePreflight)
	mux.HandleFunc("/api/explain", handleMethodNotAllowed)

	mux.Handle("GET /api/stats", s.requireAccessKey(http.HandlerFunc(s.handleStats)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"})
}

func handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "POST, OPTIONS")
	jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
}
