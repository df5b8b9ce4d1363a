package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant-service/internal/broker"
	"restaurant-service/internal/models"
	"restaurant-service/internal/redisclient"
	"restaurant-service/internal/service"
	"restaurant-service/internal/store"
	"restaurant-service/internal/store/storetest"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testServer struct {
	router   *gin.Engine
	store    *store.Store
	customer *models.Customer
	user     *models.User
	pizza    *models.Product
}

func newTestServer(t *testing.T, checks map[string]Pinger, limiter *rate.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := storetest.New(t)
	mr := miniredis.RunT(t)
	rc, err := redisclient.NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	clock := service.FixedClock{At: storetest.Now}
	events := broker.NewEventPublisher(broker.NopWriter{})
	svc := Services{
		Orders:     service.NewOrderService(s, rc, events, clock, time.Hour),
		Products:   service.NewProductService(s, clock),
		Customers:  service.NewCustomerService(s, clock),
		Categories: service.NewCategoryService(s),
		Couriers:   service.NewCourierService(s, clock),
		Payments:   service.NewPaymentService(s, clock),
		Users:      service.NewUserService(s, clock),
	}

	router := gin.New()
	NewHandler(svc, checks, limiter).SetupRoutes(router)

	cat := storetest.Category(t, s, "Pizzas")
	return &testServer{
		router:   router,
		store:    s,
		customer: storetest.Customer(t, s, "Juan", "Perez", "juan.perez@correo.com"),
		user:     storetest.User(t, s, "cajero"),
		pizza:    storetest.Product(t, s, cat.ID, "Pizza Margarita", "15.50", 3),
	}
}

func (ts *testServer) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) orderBody(qty int) CreateOrderRequest {
	return CreateOrderRequest{
		CustomerID: ts.customer.ID,
		UserID:     ts.user.ID,
		Lines: []OrderLineRequest{
			{ProductID: ts.pizza.ID, Quantity: qty},
		},
	}
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) models.Order {
	t.Helper()
	var o models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
	return o
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	w := ts.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestReadinessCheck(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.router = gin.New()
	NewHandler(Services{}, map[string]Pinger{"database": ts.store}, nil).SetupRoutes(ts.router)

	w := ts.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestServer(t, map[string]Pinger{"database": ts.store, "redis": failingPinger{}}, nil)
	w = down.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestCreateOrder(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	w := ts.do(http.MethodPost, "/api/v1/orders", ts.orderBody(2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	o := decodeOrder(t, w)
	assert.NotZero(t, o.ID)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("31.00")))
	assert.Equal(t, models.OrderStatusCreated, o.Status)
	assert.Equal(t, "Juan", o.CustomerName)

	w = ts.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", o.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pizza Margarita")
}

func TestCreateOrderReplaysIdempotencyKey(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	w := ts.do(http.MethodPost, "/api/v1/orders", ts.orderBody(1), "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decodeOrder(t, w)

	w = ts.do(http.MethodPost, "/api/v1/orders", ts.orderBody(1), "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, first.ID, decodeOrder(t, w).ID)

	var stock int
	require.NoError(t, ts.store.ORM().Model(&models.Product{}).
		Where("id = ?", ts.pizza.ID).Pluck("stock", &stock).Error)
	assert.Equal(t, 2, stock)
}

func TestCreateOrderErrors(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"no lines", CreateOrderRequest{CustomerID: ts.customer.ID, UserID: ts.user.ID}, http.StatusBadRequest},
		{"missing customer", CreateOrderRequest{UserID: ts.user.ID}, http.StatusBadRequest},
		{"not enough stock", ts.orderBody(4), http.StatusConflict},
		{"malformed", "pedido", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, "/api/v1/orders", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestOrderNotFound(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v1/orders/99", nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/api/v1/orders/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/v1/orders/abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/v1/orders/70000", nil).Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	w := ts.do(http.MethodPost, "/api/v1/orders", ts.orderBody(1))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeOrder(t, w).ID
	path := fmt.Sprintf("/api/v1/orders/%d/status", id)

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPatch, path, gin.H{"estado_pedido": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPatch, path, gin.H{"estado_pedido": 7}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPatch, path, gin.H{}).Code)

	var o models.Order
	require.NoError(t, ts.store.ORM().First(&o, id).Error)
	assert.Equal(t, models.OrderStatusSent, o.Status)
}

func TestCustomerEndpoints(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	w := ts.do(http.MethodPost, "/api/v1/customers", gin.H{"nombre": "Maria", "apellido": "Lopez", "correo": "maria@correo.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.StatusActive, created.Status)

	w = ts.do(http.MethodGet, "/api/v1/customers?q=maria", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.CustomerPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)

	path := fmt.Sprintf("/api/v1/customers/%d", created.ID)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPost, path+"/deactivate", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, path, nil).Code)
}

func TestSearchEndpoints(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	storetest.Courier(t, ts.store, "Pedro")
	storetest.Courier(t, ts.store, "Luis")

	w := ts.do(http.MethodGet, "/api/v1/couriers?q=pedro", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var couriers service.CourierPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &couriers))
	assert.Equal(t, int64(1), couriers.Total)
	assert.Equal(t, 1, couriers.Page)

	w = ts.do(http.MethodGet, "/api/v1/couriers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Courier
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = ts.do(http.MethodGet, "/api/v1/products?q=margarita", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, ts.pizza.ID, products[0].ID)

	w = ts.do(http.MethodGet, "/api/v1/products?q=lasagna", nil)
	require.Equal(t, http.StatusOK, w.Code)
	products = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.Empty(t, products)
}

func TestAuthenticateEndpoint(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	w := ts.do(http.MethodPost, "/api/v1/users", gin.H{
		"nombre": "Luis", "apellido": "Rojas", "usuario": "luis", "password": "clave", "rol": "Cajero",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "clave")

	w = ts.do(http.MethodPost, "/api/v1/users/authenticate", gin.H{"usuario": "luis", "password": "clave"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodPost, "/api/v1/users/authenticate", gin.H{"usuario": "luis", "password": "otra"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLowStockEndpoint(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	w := ts.do(http.MethodGet, "/api/v1/products/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pizza Margarita")

	w = ts.do(http.MethodGet, "/api/v1/products/low-stock?threshold=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Pizza Margarita")

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/v1/products/low-stock?threshold=x", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/v1/products/low-stock?threshold=-1", nil).Code)
}

func TestSalesReport(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/v1/orders", ts.orderBody(2)).Code)

	w := ts.do(http.MethodGet, "/api/v1/reports/sales?from=2025-03-14", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report struct {
		From string           `json:"from"`
		To   string           `json:"to"`
		Rows []store.SalesRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "2025-03-15", report.To)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, int64(1), report.Rows[0].Orders)
	assert.True(t, report.Rows[0].Revenue.Equal(decimal.RequireFromString("31.00")))

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/v1/reports/sales?from=14/03/2025", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/v1/reports/sales?from=2025-03-14&to=2025-03-01", nil).Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, nil, rate.NewLimiter(rate.Every(time.Hour), 1))

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/v1/categories", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.do(http.MethodGet, "/api/v1/categories", nil).Code)
	// health checks are not throttled
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health", nil).Code)
}
