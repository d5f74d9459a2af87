// Package gateway implements the two entry points of the product service.
// Query serves side effect free requests and flags mutating ones for an
// upgrade; Update serves the mutating ones.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/abgdnv/marketplace/internal/product/router"
	"github.com/abgdnv/marketplace/internal/product/service"
	"github.com/abgdnv/marketplace/pkg/web"
)

const (
	msgInvalidGetMethod      = "invalid get method"
	msgGetHandlerNotFound    = "get handler not found"
	msgInvalidUpdateMethod   = "invalid update method"
	msgUpdateHandlerNotFound = "update handler not found"
	msgInternalError         = "internal error"
)

// HeaderContentType is the header name set on every response.
const HeaderContentType = "Content-type"

// HTTPRequest is an HTTP request as seen by the entry points.
// URL is the request URI, path plus optional query string.
type HTTPRequest struct {
	Method  string
	URL     string
	Headers [][2]string
	Body    []byte
	Upgrade *bool
}

// HTTPResponse is the record produced by the entry points.
// Upgrade is set by Query when the request has to be replayed through Update.
type HTTPResponse struct {
	StatusCode int
	Headers    [][2]string
	Body       []byte
	Upgrade    *bool
}

// Gateway dispatches HTTP records through the router.
type Gateway struct {
	router *router.Router
	logger *slog.Logger
}

// New creates a Gateway.
func New(r *router.Router, logger *slog.Logger) *Gateway {
	return &Gateway{
		router: r,
		logger: logger.With("component", "gateway"),
	}
}

// Query is the read-only entry point.
func (g *Gateway) Query(ctx context.Context, req HTTPRequest) HTTPResponse {
	if isMutating(req.Method) {
		upgrade := true
		return HTTPResponse{
			StatusCode: http.StatusOK,
			Headers:    jsonHeaders(),
			Body:       []byte{},
			Upgrade:    &upgrade,
		}
	}
	if req.Method != http.MethodGet {
		return g.respond(ctx, http.StatusBadRequest, service.Message{Msg: msgInvalidGetMethod})
	}

	handler, ok := g.router.MatchQuery(req.Method, req.URL)
	if !ok {
		return g.respond(ctx, http.StatusBadRequest, service.Message{Msg: msgGetHandlerNotFound})
	}
	return g.invoke(ctx, req, handler)
}

// Update is the mutating entry point.
func (g *Gateway) Update(ctx context.Context, req HTTPRequest) HTTPResponse {
	if !isMutating(req.Method) {
		return g.respond(ctx, http.StatusBadRequest, service.Message{Msg: msgInvalidUpdateMethod})
	}

	handler, ok, err := g.router.MatchUpdate(req.Method, req.URL, req.Body)
	if err != nil {
		g.logger.WarnContext(ctx, "Failed to decode request body", "method", req.Method, "url", req.URL, "error", err)
		return g.respond(ctx, http.StatusBadRequest, service.Message{Msg: err.Error()})
	}
	if !ok {
		return g.respond(ctx, http.StatusBadRequest, service.Message{Msg: msgUpdateHandlerNotFound})
	}
	return g.invoke(ctx, req, handler)
}

func (g *Gateway) invoke(ctx context.Context, req HTTPRequest, handler router.Handler) HTTPResponse {
	resp, err := handler(ctx)
	if err != nil {
		g.logger.ErrorContext(ctx, "Failed to handle request", "method", req.Method, "url", req.URL, "error", err)
		return g.respond(ctx, http.StatusInternalServerError, service.Message{Msg: msgInternalError})
	}
	return g.respond(ctx, http.StatusOK, resp)
}

func (g *Gateway) respond(ctx context.Context, status int, payload any) HTTPResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		g.logger.ErrorContext(ctx, "Error encoding response to JSON", "error", err)
		status = http.StatusInternalServerError
		body = []byte(`{"msg":"` + msgInternalError + `"}`)
	}
	return HTTPResponse{
		StatusCode: status,
		Headers:    jsonHeaders(),
		Body:       body,
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPut, http.MethodPost, http.MethodDelete:
		return true
	}
	return false
}

func jsonHeaders() [][2]string {
	return [][2]string{{HeaderContentType, web.ContentTypeJSON}}
}
