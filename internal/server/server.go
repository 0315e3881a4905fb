package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/delicom/internal/telemetry"
	"github.com/tournevent/delicom/pkg/plugin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultShopLimit = 10

// Server is the HTTP server exposing the registered carrier libraries.
type Server struct {
	port     int
	registry *plugin.Registry
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
	handler  http.Handler
}

// Config holds server configuration.
type Config struct {
	Port int

	// Metrics and Gatherer are created on a private registry when nil.
	Metrics  *telemetry.Metrics
	Gatherer prometheus.Gatherer
}

// New creates a new server instance.
func New(cfg Config, registry *plugin.Registry, logger *otelzap.Logger) *Server {
	metrics, gatherer := cfg.Metrics, cfg.Gatherer
	if metrics == nil || gatherer == nil {
		reg := prometheus.NewRegistry()
		metrics = telemetry.NewMetrics(reg)
		gatherer = reg
	}

	s := &Server{
		port:     cfg.Port,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		gatherer: gatherer,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Plugin contract
	mux.HandleFunc("GET /v1/carriers", s.handleCarriers)
	mux.HandleFunc("GET /v1/carriers/{carrier}/configuration", s.handleConfiguration)
	mux.HandleFunc("GET /v1/carriers/{carrier}/configuration/schema", s.handleSchema)
	mux.HandleFunc("GET /v1/carriers/{carrier}/services", s.handleServices)
	mux.HandleFunc("GET /v1/carriers/{carrier}/shops", s.handleShops)
	mux.HandleFunc("POST /v1/carriers/{carrier}/labels", s.handleLabels)
	mux.HandleFunc("GET /v1/carriers/{carrier}/tracking/{number}", s.handleTracking)

	return s.withRequestID(mux)
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"carriers": s.registry.Names(),
	})
}

func (s *Server) handleConfiguration(w http.ResponseWriter, r *http.Request) {
	lib, ok := s.library(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"carrier": lib.Name(),
		"fields":  lib.Configuration(),
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	lib, ok := s.library(w, r)
	if !ok {
		return
	}
	sp, ok := lib.(plugin.SchemaProvider)
	if !ok {
		writeError(w, http.StatusNotFound, "no settings schema for carrier "+lib.Name())
		return
	}
	writeJSON(w, http.StatusOK, sp.SettingsSchema())
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	lib, ok := s.library(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"carrier":  lib.Name(),
		"services": lib.Services(),
	})
}

func (s *Server) handleShops(w http.ResponseWriter, r *http.Request) {
	lib, ok := s.library(w, r)
	if !ok {
		return
	}

	loc, limit, err := parseShopQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	shops, err := lib.ListShops(r.Context(), loc, limit)
	s.record(r.Context(), "list_shops", lib.Name(), start, err)
	if err != nil {
		s.writeCarrierError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"carrier": lib.Name(),
		"shops":   shops,
	})
}

type labelsRequest struct {
	Format plugin.LabelFormat `json:"format"`
	Orders []*plugin.Order    `json:"orders"`
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	lib, ok := s.library(w, r)
	if !ok {
		return
	}

	var req labelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if len(req.Orders) == 0 {
		writeError(w, http.StatusBadRequest, "at least one order is required")
		return
	}
	if req.Format == "" {
		req.Format = plugin.LabelPDF
	}

	start := time.Now()
	var labels []*plugin.Label
	var err error
	if len(req.Orders) == 1 {
		var label *plugin.Label
		label, err = lib.IssueLabel(r.Context(), req.Orders[0], req.Format)
		if label != nil {
			labels = []*plugin.Label{label}
		}
	} else {
		labels, err = lib.IssueLabels(r.Context(), req.Orders, req.Format)
	}
	s.record(r.Context(), "issue_labels", lib.Name(), start, err)
	if err != nil {
		s.writeCarrierError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"carrier": lib.Name(),
		"labels":  labels,
	})
}

func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	lib, ok := s.library(w, r)
	if !ok {
		return
	}

	start := time.Now()
	tracking, err := lib.TrackingInfo(r.Context(), &plugin.Label{Number: r.PathValue("number")})
	s.record(r.Context(), "tracking_info", lib.Name(), start, err)
	if err != nil {
		s.writeCarrierError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tracking)
}

// ============================================================================
// Helpers
// ============================================================================

func (s *Server) library(w http.ResponseWriter, r *http.Request) (plugin.Library, bool) {
	lib, err := s.registry.Get(r.PathValue("carrier"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return lib, true
}

func (s *Server) record(ctx context.Context, operation, carrier string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		s.metrics.RecordError(carrier, errorType(err))
		s.logger.Ctx(ctx).Warn("Carrier operation failed",
			zap.String("operation", operation),
			zap.String("carrier", carrier),
			zap.Error(err),
		)
	}
	s.metrics.RecordRequest(operation, carrier, status, time.Since(start).Seconds())
}

func (s *Server) writeCarrierError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, plugin.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, plugin.ErrUnresolvableLocation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, plugin.ErrAuthenticationFailed), errors.Is(err, plugin.ErrGateway):
		return http.StatusBadGateway
	case errors.Is(err, plugin.ErrCarrierNotFound):
		return http.StatusNotFound
	case errors.Is(err, plugin.ErrInvalidConfiguration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, plugin.ErrUnsupported):
		return "unsupported"
	case errors.Is(err, plugin.ErrUnresolvableLocation):
		return "unresolvable_location"
	case errors.Is(err, plugin.ErrAuthenticationFailed):
		return "authentication"
	case errors.Is(err, plugin.ErrGateway):
		return "gateway"
	default:
		return "internal"
	}
}

func parseShopQuery(r *http.Request) (*plugin.Location, int, error) {
	q := r.URL.Query()

	loc := &plugin.Location{
		Route:        q.Get("route"),
		StreetNumber: q.Get("number"),
		Locality:     q.Get("locality"),
		PostalCode:   q.Get("postal_code"),
		CountryCode:  q.Get("country"),
	}

	lat, lng := q.Get("lat"), q.Get("lng")
	switch {
	case lat != "" && lng != "":
		latF, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid lat %q", lat)
		}
		lngF, err := strconv.ParseFloat(lng, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid lng %q", lng)
		}
		loc.SetCoordinates(lngF, latF)
	case lat != "" || lng != "":
		return nil, 0, fmt.Errorf("lat and lng must be given together")
	}

	limit := defaultShopLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid limit %q", v)
		}
		limit = n
	}
	return loc, limit, nil
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
