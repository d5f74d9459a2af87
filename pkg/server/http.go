// Package server builds the HTTP servers and routers used by the marketplace binaries.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	// registers the profiling handlers on http.DefaultServeMux
	_ "net/http/pprof"

	"github.com/abgdnv/marketplace/pkg/config"
	"github.com/abgdnv/marketplace/pkg/web"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const pprofReadHeaderTimeout = 5 * time.Second

// NewHTTPServer creates an HTTP server from the server section of the configuration.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// NewPprofServer serves the runtime profiles on addr.
func NewPprofServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: pprofReadHeaderTimeout,
	}
}

// NewChiRouter creates a chi router that tags every request with an id,
// writes one access log record per request and turns panics into 500s.
func NewChiRouter(logger *slog.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(
		web.RequestIDInjector,
		web.AccessLog(logger),
		web.Recoverer(logger),
	)
	return mux
}

// WithTracing wraps handler so that every request starts a server span named after operation.
func WithTracing(handler http.Handler, operation string) http.Handler {
	return otelhttp.NewHandler(handler, operation)
}
