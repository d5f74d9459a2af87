package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/abgdnv/marketplace/internal/product/router"
	"github.com/abgdnv/marketplace/internal/product/service"
	"github.com/abgdnv/marketplace/internal/product/store"
	"github.com/abgdnv/marketplace/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chairJSON = `{"id":"1","name":"Chair","price":"10","location":"Kyiv","description":"oak","image":"chair.png","owner":"alice"}`

func newTestGateway(productStore store.ProductStore) *Gateway {
	svc := service.NewService(productStore, messaging.NopPublisher{}, slog.New(slog.DiscardHandler))
	return New(router.New(svc), slog.New(slog.DiscardHandler))
}

func request(method, url, body string) HTTPRequest {
	return HTTPRequest{Method: method, URL: url, Body: []byte(body)}
}

// dispatch performs the query then update sequence the REST adapter performs.
func dispatch(g *Gateway, req HTTPRequest) HTTPResponse {
	resp := g.Query(context.Background(), req)
	if resp.Upgrade != nil && *resp.Upgrade {
		return g.Update(context.Background(), req)
	}
	return resp
}

func assertJSONResponse(t *testing.T, resp HTTPResponse, status int, body string) {
	t.Helper()
	assert.Equal(t, status, resp.StatusCode)
	assert.Equal(t, [][2]string{{"Content-type", "application/json"}}, resp.Headers)
	assert.JSONEq(t, body, string(resp.Body))
}

func Test_Gateway_Query(t *testing.T) {
	testCases := []struct {
		name           string
		req            HTTPRequest
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "list on empty store",
			req:            request("GET", "/marketplace/products", ""),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":[]}`,
		},
		{
			name:           "get missing product",
			req:            request("GET", "/marketplace/products/1", ""),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":{"msg":"a product with id=1 not found"}}`,
		},
		{
			name:           "unknown path",
			req:            request("GET", "/marketplace/unknown", ""),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"msg":"get handler not found"}`,
		},
		{
			name:           "patch is not a query",
			req:            request("PATCH", "/marketplace/products", ""),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"msg":"invalid get method"}`,
		},
		{
			name:           "head is not a query",
			req:            request("HEAD", "/marketplace/products", ""),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"msg":"invalid get method"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			g := newTestGateway(store.NewMemoryStore())
			// when
			resp := g.Query(context.Background(), tc.req)
			// then
			assertJSONResponse(t, resp, tc.expectedStatus, tc.expectedBody)
			assert.Nil(t, resp.Upgrade)
		})
	}
}

func Test_Gateway_Query_UpgradesMutations(t *testing.T) {
	for _, method := range []string{"PUT", "POST", "DELETE"} {
		t.Run(method, func(t *testing.T) {
			// given
			memory := store.NewMemoryStore()
			g := newTestGateway(memory)
			// when
			resp := g.Query(context.Background(), request(method, "/marketplace/products", chairJSON))
			// then
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, [][2]string{{"Content-type", "application/json"}}, resp.Headers)
			assert.Empty(t, resp.Body)
			require.NotNil(t, resp.Upgrade)
			assert.True(t, *resp.Upgrade)

			values, err := memory.Values(context.Background())
			require.NoError(t, err)
			assert.Empty(t, values)
		})
	}
}

func Test_Gateway_Update(t *testing.T) {
	testCases := []struct {
		name           string
		req            HTTPRequest
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "get is not an update",
			req:            request("GET", "/marketplace/products", ""),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"msg":"invalid update method"}`,
		},
		{
			name:           "patch is not an update",
			req:            request("PATCH", "/marketplace/products/1", chairJSON),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"msg":"invalid update method"}`,
		},
		{
			name:           "unknown path",
			req:            request("POST", "/marketplace/orders", chairJSON),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"msg":"update handler not found"}`,
		},
		{
			name:           "post on item",
			req:            request("POST", "/marketplace/products/1", chairJSON),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"msg":"update handler not found"}`,
		},
		{
			name:           "malformed json",
			req:            request("POST", "/marketplace/products", `{"id":`),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"msg":"invalid request body: unexpected end of JSON input"}`,
		},
		{
			name:           "missing id",
			req:            request("POST", "/marketplace/products", `{"name":"Chair"}`),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"msg":"invalid request body: id is required"}`,
		},
		{
			name:           "update missing product",
			req:            request("PUT", "/marketplace/products/9", chairJSON),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":{"msg":"couldn't update a product with id=9. product not found"}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			g := newTestGateway(store.NewMemoryStore())
			// when
			resp := g.Update(context.Background(), tc.req)
			// then
			assertJSONResponse(t, resp, tc.expectedStatus, tc.expectedBody)
			assert.Nil(t, resp.Upgrade)
		})
	}
}

func Test_Gateway_ProductLifecycle(t *testing.T) {
	g := newTestGateway(store.NewMemoryStore())

	steps := []struct {
		name           string
		req            HTTPRequest
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "add",
			req:            request("POST", "/marketplace/products", chairJSON),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":{"product":` + chairJSON + `}}`,
		},
		{
			name:           "add again",
			req:            request("POST", "/marketplace/products", chairJSON),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":{"msg":"a product id=1 already exists"}}`,
		},
		{
			name:           "get",
			req:            request("GET", "/marketplace/products/1", ""),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":` + chairJSON + `}`,
		},
		{
			name:           "update with foreign payload id",
			req:            request("PUT", "/marketplace/products/1", `{"id":"B","name":"Sofa"}`),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":{"product":{"id":"1","name":"Sofa","price":"","location":"","description":"","image":"","owner":""}}}`,
		},
		{
			name:           "list",
			req:            request("GET", "/marketplace/products?sort=id", ""),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":[{"id":"1","name":"Sofa","price":"","location":"","description":"","image":"","owner":""}]}`,
		},
		{
			name:           "delete",
			req:            request("DELETE", "/marketplace/products/1", ""),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":{"id":"1","deleted":true}}`,
		},
		{
			name:           "delete again",
			req:            request("DELETE", "/marketplace/products/1", ""),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":{"msg":"couldn't delete a product with id=1. there is no such product."}}`,
		},
		{
			name:           "get after delete",
			req:            request("GET", "/marketplace/products/1", ""),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":{"msg":"a product with id=1 not found"}}`,
		},
	}

	for _, step := range steps {
		// when
		resp := dispatch(g, step.req)
		// then
		if !assert.Equal(t, step.expectedStatus, resp.StatusCode, step.name) {
			continue
		}
		assert.JSONEq(t, step.expectedBody, string(resp.Body), step.name)
	}
}

// failingStore fails every operation.
type failingStore struct{}

var errUnavailable = errors.New("database unavailable")

func (failingStore) ContainsKey(context.Context, string) (bool, error) { return false, errUnavailable }
func (failingStore) Get(context.Context, string) (*store.Product, error) {
	return nil, errUnavailable
}
func (failingStore) Insert(context.Context, store.Product) error { return errUnavailable }
func (failingStore) Remove(context.Context, string) (*store.Product, error) {
	return nil, errUnavailable
}
func (failingStore) Values(context.Context) ([]store.Product, error) { return nil, errUnavailable }

func Test_Gateway_StoreFailure(t *testing.T) {
	// given
	g := newTestGateway(failingStore{})

	for _, req := range []HTTPRequest{
		request("GET", "/marketplace/products", ""),
		request("GET", "/marketplace/products/1", ""),
		request("POST", "/marketplace/products", chairJSON),
		request("PUT", "/marketplace/products/1", chairJSON),
		request("DELETE", "/marketplace/products/1", ""),
	} {
		// when
		resp := dispatch(g, req)
		// then
		assertJSONResponse(t, resp, http.StatusInternalServerError, `{"msg":"internal error"}`)
	}
}
