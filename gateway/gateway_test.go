package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/storefront/pkg/admin"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/message"
	"github.com/example/storefront/pkg/order"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/pkg/storefront"
)

const (
	adminUser     = "owner"
	adminPassword = "s3cret"
)

type staticHistory map[string][]admin.Notification

func (h staticHistory) History(orderID string) ([]admin.Notification, error) {
	return h[orderID], nil
}

type fakeAudit struct {
	entries map[string][]*repository.AuditLog
	limit   int64
	err     error
}

func (a *fakeAudit) AuditTrail(_ context.Context, orderID string, limit int64) ([]*repository.AuditLog, error) {
	a.limit = limit
	if a.err != nil {
		return nil, a.err
	}
	return a.entries[orderID], nil
}

type noopDispatcher struct{}

func (noopDispatcher) Send(admin.Dispatch) {}

type testServer struct {
	handler http.Handler
	manager *order.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithAudit(t, nil)
}

func newTestServerWithAudit(t *testing.T, audit AuditTrail) *testServer {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Admin: config.AdminConfig{Username: adminUser, PasswordHash: string(hash)},
	}
	cat, err := catalog.FromConfig(&cfg.Shop)
	require.NoError(t, err)

	logger := zap.NewNop()
	manager := order.NewManager(repository.NewMemoryOrderStore(), logger)
	formatter := message.NewFormatter("Spice Kitchen", "919876543210", "Davangere", "91")
	controller := admin.NewController(manager, formatter, noopDispatcher{}, logger, 50, 5)

	g := NewGateway(cfg, logger, cat,
		storefront.NewRegistry("Davangere", nil, logger),
		storefront.NewCheckout(manager, formatter, logger),
		controller,
		staticHistory{},
		audit,
	)
	g.SetupRoutes()

	return &testServer{handler: g.Handler(), manager: manager}
}

func (s *testServer) do(t *testing.T, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) admin(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.SetBasicAuth(adminUser, adminPassword)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) newSession(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.SessionID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := s.newSession(t)

	w := s.do(t, http.MethodPost, "/api/v1/cart/items", id, jsonBody{"product_id": "garam-masala"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/cart/items", id, jsonBody{"product_id": "garam-masala"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/cart/items", id, jsonBody{"product_id": "rasam-powder"})
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[cartView](t, w)
	assert.Equal(t, 3, view.Count)
	assert.Equal(t, int64(410), view.Total)
	assert.Equal(t, 1500, view.TotalWeight)

	w = s.do(t, http.MethodPut, "/api/v1/cart/items/rasam-powder", id, jsonBody{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[cartView](t, w)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "garam-masala", view.Lines[0].Product.ID)

	w = s.do(t, http.MethodDelete, "/api/v1/cart", id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[cartView](t, w).Count)
}

func TestCartErrors(t *testing.T) {
	s := newTestServer(t)
	id := s.newSession(t)

	w := s.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/cart", "no-such-session", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/cart/items", id, jsonBody{"product_id": "saffron"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/cart/items/garam-masala", id, jsonBody{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	id := s.newSession(t)

	w := s.do(t, http.MethodPost, "/api/v1/checkout/summary", id, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "EMPTY_CART", decode[map[string]string](t, w)["code"])

	s.do(t, http.MethodPost, "/api/v1/cart/items", id, jsonBody{"product_id": "sambar-powder"})

	w = s.do(t, http.MethodPost, "/api/v1/checkout/summary", id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "summary", decode[checkoutView](t, w).Step)

	w = s.do(t, http.MethodPost, "/api/v1/checkout/details", id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/checkout/customer", id, jsonBody{
		"name":    "Asha",
		"phone":   "98765-43210-99",
		"address": "12 Temple Road",
		"city":    "Davangere",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9876543210", decode[checkoutView](t, w).Details.Phone)

	w = s.do(t, http.MethodPost, "/api/v1/checkout/submit", id, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	receipt := decode[storefront.Receipt](t, w)
	assert.Equal(t, "local_collection", receipt.Delivery)
	assert.True(t, strings.HasPrefix(receipt.Message.URL, "https://wa.me/919876543210?text="))
	assert.Equal(t, order.StatusReceived, receipt.Order.Status)

	w = s.do(t, http.MethodGet, "/api/v1/checkout", id, nil)
	view := decode[checkoutView](t, w)
	assert.Equal(t, "cart", view.Step)
	assert.Equal(t, 0, view.Cart.Count)

	assert.Len(t, s.manager.Orders(), 1)
}

func TestCheckoutIncompletePhone(t *testing.T) {
	s := newTestServer(t)
	id := s.newSession(t)

	s.do(t, http.MethodPost, "/api/v1/cart/items", id, jsonBody{"product_id": "turmeric"})
	s.do(t, http.MethodPost, "/api/v1/checkout/summary", id, nil)
	s.do(t, http.MethodPost, "/api/v1/checkout/details", id, nil)
	s.do(t, http.MethodPut, "/api/v1/checkout/customer", id, jsonBody{
		"name": "Asha", "phone": "98765", "address": "12 Temple Road", "city": "Mysore",
	})

	w := s.do(t, http.MethodPost, "/api/v1/checkout/submit", id, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INCOMPLETE_PHONE", decode[map[string]string](t, w)["code"])
	assert.Empty(t, s.manager.Orders())
}

func TestUnknownCountry(t *testing.T) {
	s := newTestServer(t)
	id := s.newSession(t)

	w := s.do(t, http.MethodPut, "/api/v1/checkout/customer", id, jsonBody{"country_code": "+99"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "UNKNOWN_COUNTRY", decode[map[string]string](t, w)["code"])
}

func TestAdminRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.SetBasicAuth(adminUser, "wrong")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	o, err := s.manager.CreateOrder(context.Background(),
		[]order.Item{{Name: "Garam Masala", Price: 150, Quantity: 2}},
		order.CustomerInfo{Name: "Asha", Phone: "+91 9876543210", Address: "12 Temple Road", City: "Mysore"})
	require.NoError(t, err)

	w := s.admin(t, http.MethodGet, "/api/v1/admin/orders?status=received")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["total"])

	w = s.admin(t, http.MethodGet, "/api/v1/admin/orders?status=cancelled")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.admin(t, http.MethodPost, "/api/v1/admin/orders/"+o.ID+"/advance")
	require.Equal(t, http.StatusOK, w.Code)
	adv := decode[struct {
		Order    order.Order `json:"order"`
		Advanced bool        `json:"advanced"`
	}](t, w)
	assert.True(t, adv.Advanced)
	assert.Equal(t, order.StatusAccepted, adv.Order.Status)

	w = s.admin(t, http.MethodPost, "/api/v1/admin/orders/missing/advance")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.admin(t, http.MethodPost, "/api/v1/admin/orders/"+o.ID+"/notify")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[message.Message](t, w).URL, "https://wa.me/919876543210?text=")

	w = s.admin(t, http.MethodGet, "/api/v1/admin/statistics")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[order.Statistics](t, w)
	assert.Equal(t, int64(350), stats.Revenue)
	assert.Equal(t, 2, stats.ItemsSold)

	w = s.admin(t, http.MethodPost, "/api/v1/admin/orders/reload")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["total"])

	w = s.admin(t, http.MethodGet, "/api/v1/admin/orders/"+o.ID+"/notifications")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAuditTrail(t *testing.T) {
	audit := &fakeAudit{entries: map[string][]*repository.AuditLog{}}
	s := newTestServerWithAudit(t, audit)
	o, err := s.manager.CreateOrder(context.Background(),
		[]order.Item{{Name: "Turmeric", Price: 80, Quantity: 1}},
		order.CustomerInfo{Name: "Ravi", Phone: "+91 9876543211", Address: "4 Market Street", City: "Mysore"})
	require.NoError(t, err)
	audit.entries[o.ID] = []*repository.AuditLog{
		{Action: "status_changed", EntityID: o.ID},
		{Action: "order_created", EntityID: o.ID},
	}

	w := s.admin(t, http.MethodGet, "/api/v1/admin/orders/"+o.ID+"/audit")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Entries []struct {
			Action  string `json:"action"`
			OrderID string `json:"order_id"`
		} `json:"entries"`
	}](t, w)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "status_changed", body.Entries[0].Action)
	assert.Equal(t, o.ID, body.Entries[1].OrderID)
	assert.EqualValues(t, defaultAuditLimit, audit.limit)

	w = s.admin(t, http.MethodGet, "/api/v1/admin/orders/"+o.ID+"/audit?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, audit.limit)

	w = s.admin(t, http.MethodGet, "/api/v1/admin/orders/"+o.ID+"/audit?limit=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.admin(t, http.MethodGet, "/api/v1/admin/orders/missing/audit")
	assert.Equal(t, http.StatusNotFound, w.Code)

	audit.err = errors.New("server selection timeout")
	w = s.admin(t, http.MethodGet, "/api/v1/admin/orders/"+o.ID+"/audit")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAdminAuditTrailDisabled(t *testing.T) {
	s := newTestServer(t)
	w := s.admin(t, http.MethodGet, "/api/v1/admin/orders/any/audit")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type jsonBody = map[string]any
