package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/marketplace/internal/product/gateway"
	"github.com/abgdnv/marketplace/internal/product/router"
	"github.com/abgdnv/marketplace/internal/product/service"
	"github.com/abgdnv/marketplace/internal/product/store"
	"github.com/abgdnv/marketplace/pkg/messaging"
	"github.com/abgdnv/marketplace/pkg/server"
	"github.com/abgdnv/marketplace/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxBodyBytes = 1024

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	metrics, err := telemetry.NewMetrics("marketplace-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = metrics.Shutdown(context.Background()) })

	log := slog.New(slog.DiscardHandler)
	svc := service.NewService(store.NewMemoryStore(), messaging.NopPublisher{}, log)
	gw := gateway.New(router.New(svc), log)
	h, err := NewHandler(gw, metrics.Provider.Meter("rest-test"), testMaxBodyBytes, log)
	require.NoError(t, err)

	mux := server.NewChiRouter(log)
	h.RegisterRoutes(mux, metrics.Handler())

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func Test_Handler_Dispatch(t *testing.T) {
	srv := newTestServer(t)
	chair := `{"id":"1","name":"Chair","price":"10","location":"Kyiv","description":"oak","image":"chair.png","owner":"alice"}`

	testCases := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{"list empty", http.MethodGet, "/marketplace/products", "", http.StatusOK, `{"data":[]}`},
		{"add", http.MethodPost, "/marketplace/products", chair, http.StatusOK, `{"data":{"product":` + chair + `}}`},
		{"add conflict", http.MethodPost, "/marketplace/products", chair, http.StatusOK, `{"data":{"msg":"a product id=1 already exists"}}`},
		{"list one", http.MethodGet, "/marketplace/products", "", http.StatusOK, `{"data":[` + chair + `]}`},
		{"delete", http.MethodDelete, "/marketplace/products/1", "", http.StatusOK, `{"data":{"id":"1","deleted":true}}`},
		{"delete again", http.MethodDelete, "/marketplace/products/1", "", http.StatusOK, `{"data":{"msg":"couldn't delete a product with id=1. there is no such product."}}`},
		{"unknown path", http.MethodGet, "/marketplace/unknown", "", http.StatusBadRequest, `{"msg":"get handler not found"}`},
		{"path outside marketplace", http.MethodGet, "/elsewhere", "", http.StatusBadRequest, `{"msg":"get handler not found"}`},
		{"patch", http.MethodPatch, "/marketplace/products", "", http.StatusBadRequest, `{"msg":"invalid get method"}`},
		{"malformed json", http.MethodPost, "/marketplace/products", `{"id":`, http.StatusBadRequest, `{"msg":"invalid request body: unexpected end of JSON input"}`},
		{"body too large", http.MethodPost, "/marketplace/products", `{"id":"` + strings.Repeat("x", testMaxBodyBytes) + `"}`, http.StatusBadRequest, `{"msg":"invalid request body: request body too large"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			resp, body := doRequest(t, tc.method, srv.URL+tc.path, tc.body)
			// then
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, body)
		})
	}
}

func Test_Handler_HealthCheck(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/healthz", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body)
}

func Test_Handler_RequestID(t *testing.T) {
	srv := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/marketplace/products", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "req-42")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "req-42", resp.Header.Get("X-Request-Id"))
}

func Test_Handler_Metrics(t *testing.T) {
	srv := newTestServer(t)

	// given
	doRequest(t, http.MethodGet, srv.URL+"/marketplace/products", "")
	doRequest(t, http.MethodPost, srv.URL+"/marketplace/products", `{"id":"7"}`)

	// when
	resp, body := doRequest(t, http.MethodGet, srv.URL+"/metrics", "")

	// then
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "marketplace_requests_total")
	assert.Contains(t, body, `entry="query"`)
	assert.Contains(t, body, `entry="update"`)
	assert.Contains(t, body, `status="200"`)
}

func Test_toPairs(t *testing.T) {
	header := http.Header{}
	header.Add("X-B", "2")
	header.Add("Accept", "json")
	header.Add("X-B", "3")

	assert.Equal(t, [][2]string{{"Accept", "json"}, {"X-B", "2"}, {"X-B", "3"}}, toPairs(header))
}

