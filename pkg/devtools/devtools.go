package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/navcore/pkg/route"
	"github.com/vango-dev/navcore/pkg/router"
)

var errBadRequest = errors.New("bad request")

// Config configures the devtools handler.
type Config struct {
	// Router is the router inspected and driven.
	Router *router.Router

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Remote serves /ws, typically a *remote.Backend. Nil disables it.
	Remote http.Handler

	// NavigateTimeout bounds how long /navigate waits for guards.
	// Default: 10s.
	NavigateTimeout time.Duration

	// Logger logs requests. Default: slog.Default().
	Logger *slog.Logger
}

// Handler is the devtools HTTP surface.
type Handler struct {
	config Config
	mux    chi.Router
	logger *slog.Logger
}

// New builds the devtools handler.
func New(config Config) *Handler {
	if config.NavigateTimeout <= 0 {
		config.NavigateTimeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	h := &Handler{config: config, logger: config.Logger.With("component", "devtools")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/route", h.currentRoute)
	r.Get("/routes", h.routes)
	r.Post("/navigate", h.navigate)
	r.Post("/go", h.goN)
	r.Post("/back", h.step(-1))
	r.Post("/forward", h.step(1))
	if config.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	}
	if config.Remote != nil {
		r.Handle("/ws", config.Remote)
	}

	h.mux = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

// =============================================================================
// Handlers
// =============================================================================

// RouteView is the JSON form of a route.
type RouteView struct {
	Name           string              `json:"name,omitempty"`
	Path           string              `json:"path"`
	FullPath       string              `json:"fullPath"`
	Hash           string              `json:"hash,omitempty"`
	Params         map[string]string   `json:"params,omitempty"`
	Query          map[string][]string `json:"query,omitempty"`
	Matched        []string            `json:"matched"`
	Meta           map[string]any      `json:"meta,omitempty"`
	RedirectedFrom string              `json:"redirectedFrom,omitempty"`
}

// NewRouteView converts r to its JSON form.
func NewRouteView(r *route.Route) RouteView {
	v := RouteView{
		Name:           r.Name,
		Path:           r.Path,
		FullPath:       r.FullPath,
		Hash:           r.Hash,
		Params:         r.Params,
		Query:          r.Query,
		Matched:        make([]string, 0, len(r.Matched)),
		Meta:           r.Meta,
		RedirectedFrom: r.RedirectedFrom,
	}
	for _, rec := range r.Matched {
		v.Matched = append(v.Matched, rec.Path)
	}
	return v
}

// RecordView is the JSON form of a route record.
type RecordView struct {
	Path     string   `json:"path"`
	Name     string   `json:"name,omitempty"`
	Parent   string   `json:"parent,omitempty"`
	Slots    []string `json:"slots,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
	Guarded  bool     `json:"guarded,omitempty"`
}

// NewRecordView converts rec to its JSON form.
func NewRecordView(rec *route.Record) RecordView {
	v := RecordView{
		Path:    rec.Path,
		Name:    rec.Name,
		Slots:   rec.Slots(),
		Guarded: rec.BeforeEnter != nil,
	}
	if rec.Parent != nil {
		v.Parent = rec.Parent.Path
	}
	if rec.Redirect != nil {
		v.Redirect = rec.Redirect.String()
	}
	return v
}

func (h *Handler) currentRoute(w http.ResponseWriter, _ *http.Request) {
	OK(NewRouteView(h.config.Router.Current())).Write(w)
}

func (h *Handler) routes(w http.ResponseWriter, _ *http.Request) {
	records := h.config.Router.Matcher().Records()
	out := make([]RecordView, 0, len(records))
	for _, rec := range records {
		out = append(out, NewRecordView(rec))
	}
	OK(out).WithMeta("count", len(out)).Write(w)
}

// NavigateRequest is the body of POST /navigate.
type NavigateRequest struct {
	Path    string `json:"path"`
	Replace bool   `json:"replace,omitempty"`
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		Fail(errors.Join(errBadRequest, err)).Write(w)
		return
	}
	if req.Path == "" {
		Fail(errors.Join(errBadRequest, errors.New("path is required"))).Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.NavigateTimeout)
	defer cancel()

	var opts []router.NavigateOption
	if req.Replace {
		opts = append(opts, router.WithReplace())
	}
	rt, err := h.config.Router.Navigate(ctx, req.Path, opts...)
	if err != nil {
		h.logger.Debug("navigate failed", "path", req.Path, "error", err)
		Fail(err).Write(w)
		return
	}
	OK(NewRouteView(rt)).Write(w)
}

func (h *Handler) goN(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil {
		Fail(errors.Join(errBadRequest, err)).Write(w)
		return
	}
	h.config.Router.Go(n)
	OK(NewRouteView(h.config.Router.Current())).Write(w)
}

func (h *Handler) step(n int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		h.config.Router.Go(n)
		OK(NewRouteView(h.config.Router.Current())).Write(w)
	}
}
