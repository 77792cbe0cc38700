package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/reorder-dashboard/internal/backendtest"
	"github.com/andresuchdata/reorder-dashboard/internal/client"
	"github.com/andresuchdata/reorder-dashboard/internal/dashboard"
	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router  *gin.Engine
	backend *backendtest.Server
	ctrl    *dashboard.Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := backendtest.New()
	t.Cleanup(backend.Close)

	reg := prometheus.NewRegistry()
	c := client.New(backend.APIURL(), client.WithMetrics(client.NewMetrics(reg)))
	ctrl := dashboard.New(c)
	require.NoError(t, ctrl.Reload(context.Background()))

	return &fixture{
		router:  NewRouter(&Services{Dashboard: ctrl, Gatherer: reg}, []string{"*"}),
		backend: backend,
		ctrl:    ctrl,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = f.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reorder_api_requests_total")
}

func TestGetState(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, w.Code)

	var state dashboard.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, dashboard.PhaseReady, state.Phase)
	assert.Len(t, state.Products, 3)
	assert.Len(t, state.Recommendations, 2)
}

func TestGetSummary(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_products":3,"need_reorder":2,"stock_health_percent":33,"reorder_cost":2600}`, w.Body.String())
}

func TestAddProduct(t *testing.T) {
	f := newFixture(t)

	body := `{"product_id":"NUT_004","current_stock":"12","average_daily_sales":"1.5","lead_time_days":"4","min_reorder_quantity":"50","cost_per_unit":"0.25"}`
	w := f.do(t, http.MethodPost, "/api/v1/products", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Product 'NUT_004' added successfully.")
	assert.Len(t, f.ctrl.State().Products, 4)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(f.backend.LastBody(backendtest.RouteAdd), &sent))
	assert.Equal(t, "0", sent["incoming_stock"])
	assert.Equal(t, "medium", sent["criticality"])
}

func TestAddProductValidation(t *testing.T) {
	f := newFixture(t)

	body := `{"product_id":"NUT_004","current_stock":"12","average_daily_sales":"1.5","lead_time_days":"","min_reorder_quantity":"50","cost_per_unit":"0.25"}`
	w := f.do(t, http.MethodPost, "/api/v1/products", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Field 'lead time days' cannot be empty.", decodeError(t, w))
	assert.Zero(t, f.backend.Calls(backendtest.RouteAdd))
}

func TestAddProductAcceptsNumbers(t *testing.T) {
	f := newFixture(t)

	body := `{"product_id":"NUT_004","current_stock":12,"average_daily_sales":1.5,"lead_time_days":4,"min_reorder_quantity":50,"cost_per_unit":0.25,"incoming_stock":0}`
	w := f.do(t, http.MethodPost, "/api/v1/products", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, f.ctrl.State().Products, 4)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(f.backend.LastBody(backendtest.RouteAdd), &sent))
	assert.Equal(t, "12", sent["current_stock"])
	assert.Equal(t, "1.5", sent["average_daily_sales"])
	assert.Equal(t, "0.25", sent["cost_per_unit"])
}

func TestAddProductRejectsNonScalarFields(t *testing.T) {
	f := newFixture(t)

	body := `{"product_id":"NUT_004","current_stock":true,"average_daily_sales":"1.5","lead_time_days":"4","min_reorder_quantity":"50","cost_per_unit":"0.25"}`
	w := f.do(t, http.MethodPost, "/api/v1/products", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Field 'current stock' must be text or a number.", decodeError(t, w))

	w = f.do(t, http.MethodPost, "/api/v1/products", `["NUT_004"]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", decodeError(t, w))
	assert.Zero(t, f.backend.Calls(backendtest.RouteAdd))
}

func TestAddProductConflict(t *testing.T) {
	f := newFixture(t)

	body := `{"product_id":"WIDGET_001","current_stock":"1","average_daily_sales":"1","lead_time_days":"1","min_reorder_quantity":"1","cost_per_unit":"1"}`
	w := f.do(t, http.MethodPost, "/api/v1/products", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Product ID 'WIDGET_001' already exists.", decodeError(t, w))
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodDelete, "/api/v1/products/BOLT_003", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "confirmation required", decodeError(t, w))
	assert.Zero(t, f.backend.Calls(backendtest.RouteDelete))

	w = f.do(t, http.MethodDelete, "/api/v1/products/BOLT_003?confirm=true", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.ctrl.State().Products, 2)

	w = f.do(t, http.MethodDelete, "/api/v1/products/BOLT_003?confirm=true", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decodeError(t, w))
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetTab(domain.TabRecommendations)

	w := f.do(t, http.MethodPost, "/api/v1/orders", `{"product_id":"WIDGET_001","quantity":100}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.TabOverview, f.ctrl.State().Tab)

	w = f.do(t, http.MethodPost, "/api/v1/orders", `{"product_id":"WIDGET_001","quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Quantity must be a positive number.", decodeError(t, w))
}

func TestSimulation(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/simulation", `{"product_id":"GADGET_002"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result domain.SimulationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, domain.DefaultSpikeMultiplier, result.Simulation.Multiplier)
	assert.Equal(t, domain.DefaultSpikeDays, result.Simulation.Days)
	assert.Len(t, f.ctrl.State().Recommendations, 3)

	w = f.do(t, http.MethodDelete, "/api/v1/simulation", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.ctrl.State().Recommendations, 2)

	w = f.do(t, http.MethodPost, "/api/v1/simulation", `{"product_id":"GADGET_002","multiplier":20}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/export", `{"format":"csv"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A,1\nB,2", w.Body.String())
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="reorder_report_20240101_120000.csv"`, w.Header().Get("Content-Disposition"))

	w = f.do(t, http.MethodPost, "/api/v1/export", `{"format":"xml"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBackendDownIsBadGateway(t *testing.T) {
	f := newFixture(t)
	f.backend.Close()

	w := f.do(t, http.MethodPost, "/api/v1/reload", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Failed to load data. Make sure the API is running.", f.ctrl.State().Error)
}

func TestTabAndError(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/api/v1/tab", `{"tab":"analytics"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.TabAnalytics, f.ctrl.State().Tab)

	w = f.do(t, http.MethodPut, "/api/v1/tab", `{"tab":"settings"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.backend.FailNext(backendtest.RouteProducts, http.StatusInternalServerError, "boom")
	w = f.do(t, http.MethodPost, "/api/v1/reload", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "boom", f.ctrl.State().Error)

	w = f.do(t, http.MethodDelete, "/api/v1/error", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, f.ctrl.State().Error)
}

func TestStateStream(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() dashboard.State {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var state dashboard.State
		require.NoError(t, conn.ReadJSON(&state))
		return state
	}

	initial := read()
	assert.Equal(t, domain.TabOverview, initial.Tab)

	f.ctrl.SetTab(domain.TabAnalytics)
	assert.Equal(t, domain.TabAnalytics, read().Tab)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " ", "*"})
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)
	assert.True(t, allowAll)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://a.test"}, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://a.test")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.test")
	assert.False(t, check(req))
}
