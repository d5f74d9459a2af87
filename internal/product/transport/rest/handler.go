// Package rest exposes the product gateway over net/http.
package rest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/abgdnv/marketplace/internal/product/gateway"
	"github.com/abgdnv/marketplace/pkg/web"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	entryQuery  = "query"
	entryUpdate = "update"
)

// Handler adapts net/http requests to the gateway's Query and Update entry points.
type Handler struct {
	gateway      *gateway.Gateway
	maxBodyBytes int64
	requests     metric.Int64Counter
	logger       *slog.Logger
}

// NewHandler creates a new Handler. Requests are counted with a counter created from meter.
func NewHandler(gw *gateway.Gateway, meter metric.Meter, maxBodyBytes int64, logger *slog.Logger) (*Handler, error) {
	requests, err := meter.Int64Counter("marketplace_requests",
		metric.WithDescription("Total number of requests dispatched to the product gateway"))
	if err != nil {
		return nil, fmt.Errorf("failed to create marketplace_requests counter: %w", err)
	}
	return &Handler{
		gateway:      gw,
		maxBodyBytes: maxBodyBytes,
		requests:     requests,
		logger:       logger.With("component", "rest"),
	}, nil
}

// RegisterRoutes registers the product routes together with the health and metrics endpoints.
// Every path the mux does not know is handed to the gateway, which answers with its own 400.
func (h *Handler) RegisterRoutes(r *chi.Mux, metricsHandler http.Handler) {
	r.Get("/healthz", h.HealthCheck)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}
	r.HandleFunc("/marketplace", h.Dispatch)
	r.HandleFunc("/marketplace/*", h.Dispatch)
	r.NotFound(h.Dispatch)
	r.MethodNotAllowed(h.Dispatch)
}

// Dispatch runs the request through Query and replays it through Update when Query asks for an upgrade.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.logger.WarnContext(ctx, "Request body too large", "limit", maxBytesErr.Limit)
			web.RespondError(w, h.logger, http.StatusBadRequest, "invalid request body: request body too large")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to read request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	req := gateway.HTTPRequest{
		Method:  r.Method,
		URL:     r.URL.RequestURI(),
		Headers: toPairs(r.Header),
		Body:    body,
	}

	entry := entryQuery
	resp := h.gateway.Query(ctx, req)
	if resp.Upgrade != nil && *resp.Upgrade {
		h.logger.DebugContext(ctx, "Upgrading request to update", "method", r.Method, "url", req.URL)
		entry = entryUpdate
		resp = h.gateway.Update(ctx, req)
	}
	h.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entry", entry),
		attribute.Int("status", resp.StatusCode),
	))

	for _, header := range resp.Headers {
		w.Header().Add(header[0], header[1])
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		h.logger.WarnContext(ctx, "Failed to write response body", "error", err)
	}
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// toPairs flattens headers into name/value pairs ordered by name.
func toPairs(header http.Header) [][2]string {
	pairs := make([][2]string, 0, len(header))
	for _, name := range slices.Sorted(maps.Keys(header)) {
		for _, value := range header[name] {
			pairs = append(pairs, [2]string{name, value})
		}
	}
	return pairs
}
