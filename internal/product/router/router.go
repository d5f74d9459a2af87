// Package router maps a method and a URL path onto a bound product handler.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"unicode/utf8"

	perrors "github.com/abgdnv/marketplace/internal/product/errors"
	"github.com/abgdnv/marketplace/internal/product/service"
	"github.com/abgdnv/marketplace/internal/product/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	CollectionPattern = "/marketplace/products"
	ItemPattern       = "/marketplace/products/{id}"
)

// Handler is a service operation with its request already bound.
type Handler func(ctx context.Context) (*service.Response, error)

// Router holds the query and update routing tables.
// It keeps no per-request state and is safe for concurrent use.
type Router struct {
	svc      service.ProductService
	patterns *chi.Mux
	validate *validator.Validate
}

// New creates a Router dispatching to svc.
func New(svc service.ProductService) *Router {
	patterns := chi.NewRouter()
	// the mux is only used for matching; its handlers are never served
	noop := func(http.ResponseWriter, *http.Request) {}
	patterns.HandleFunc(CollectionPattern, noop)
	patterns.HandleFunc(ItemPattern, noop)

	return &Router{
		svc:      svc,
		patterns: patterns,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MatchQuery resolves read-only routes: GET on the collection lists products,
// GET on an item fetches one.
func (r *Router) MatchQuery(method, rawURL string) (Handler, bool) {
	pattern, id := r.match(rawURL)
	switch pattern {
	case CollectionPattern:
		if method == http.MethodGet {
			return func(ctx context.Context) (*service.Response, error) {
				return r.svc.ListProducts(ctx, service.ListRequest{})
			}, true
		}
	case ItemPattern:
		if method == http.MethodGet {
			return func(ctx context.Context) (*service.Response, error) {
				return r.svc.GetProduct(ctx, service.GetRequest{ID: id})
			}, true
		}
	}
	return nil, false
}

// MatchUpdate resolves mutating routes. POST on the collection adds a product,
// PUT on an item replaces it and DELETE on an item removes it.
// A body that cannot be decoded yields an error wrapping ErrInvalidBody.
func (r *Router) MatchUpdate(method, rawURL string, body []byte) (Handler, bool, error) {
	pattern, id := r.match(rawURL)
	switch pattern {
	case CollectionPattern:
		if method == http.MethodPost {
			product, err := r.decode(body)
			if err != nil {
				return nil, true, err
			}
			if err = r.validate.Var(product.ID, "required"); err != nil {
				return nil, true, fmt.Errorf("%w: id is required", perrors.ErrInvalidBody)
			}
			return func(ctx context.Context) (*service.Response, error) {
				return r.svc.AddProduct(ctx, service.AddRequest{Product: product})
			}, true, nil
		}
	case ItemPattern:
		switch method {
		case http.MethodPut:
			product, err := r.decode(body)
			if err != nil {
				return nil, true, err
			}
			return func(ctx context.Context) (*service.Response, error) {
				return r.svc.UpdateProduct(ctx, service.UpdateRequest{ID: id, Product: product})
			}, true, nil
		case http.MethodDelete:
			return func(ctx context.Context) (*service.Response, error) {
				return r.svc.DeleteProduct(ctx, service.DeleteRequest{ID: id})
			}, true, nil
		}
	}
	return nil, false, nil
}

// match returns the pattern the path of rawURL belongs to, trying the collection
// first, along with the unescaped id for item paths. The query string is ignored.
func (r *Router) match(rawURL string) (pattern, id string) {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return "", ""
	}
	rctx := chi.NewRouteContext()
	pattern = r.patterns.Find(rctx, http.MethodGet, u.EscapedPath())
	if pattern != ItemPattern {
		return pattern, ""
	}
	id = rctx.URLParam("id")
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	return pattern, id
}

func (r *Router) decode(body []byte) (store.Product, error) {
	var product store.Product
	if !utf8.Valid(body) {
		return product, fmt.Errorf("%w: body is not valid UTF-8", perrors.ErrInvalidBody)
	}
	if err := json.Unmarshal(body, &product); err != nil {
		return product, fmt.Errorf("%w: %v", perrors.ErrInvalidBody, err)
	}
	return product, nil
}
