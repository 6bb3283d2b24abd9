package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"storefront-service/catalog"
	apperrors "storefront-service/common/errors"
	"storefront-service/common/locale"
	"storefront-service/controllers"
	"storefront-service/database"
	"storefront-service/models"
	"storefront-service/routes"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock SessionService ---

type mockSessionService struct {
	startFn   func(ctx context.Context) (*models.SessionView, *services.ServiceError)
	getFn     func(ctx context.Context, id string) (*models.SessionView, *services.ServiceError)
	eventsFn  func(ctx context.Context, id string) ([]models.AnalyticsEvent, *services.ServiceError)
	doFn      func(ctx context.Context, id string, action services.Action) (*models.SessionView, *services.ServiceError)
	confirmFn func(ctx context.Context, id, key string) (*models.CheckoutResult, *services.ServiceError)
	endFn     func(ctx context.Context, id string) *services.ServiceError
}

func (m *mockSessionService) Start(ctx context.Context) (*models.SessionView, *services.ServiceError) {
	return m.startFn(ctx)
}
func (m *mockSessionService) Get(ctx context.Context, id string) (*models.SessionView, *services.ServiceError) {
	return m.getFn(ctx, id)
}
func (m *mockSessionService) Events(ctx context.Context, id string) ([]models.AnalyticsEvent, *services.ServiceError) {
	return m.eventsFn(ctx, id)
}
func (m *mockSessionService) Do(ctx context.Context, id string, action services.Action) (*models.SessionView, *services.ServiceError) {
	return m.doFn(ctx, id, action)
}
func (m *mockSessionService) ConfirmPurchase(ctx context.Context, id, key string) (*models.CheckoutResult, *services.ServiceError) {
	return m.confirmFn(ctx, id, key)
}
func (m *mockSessionService) End(ctx context.Context, id string) *services.ServiceError {
	return m.endFn(ctx, id)
}
func (m *mockSessionService) Formatter() *locale.Formatter { return locale.Default() }

// --- Helpers ---

func setupRouter(svc services.SessionService) *gin.Engine {
	r := gin.New()
	routes.RegisterSessionRoutes(r, controllers.NewSessionController(svc))
	routes.RegisterHealthRoutes(r, "storefront-service")
	return r
}

func newRealService() services.SessionService {
	return services.NewSessionService(
		database.NewMemorySessionRepository(time.Hour),
		catalog.NewDemo(),
		nil,
		"",
		nil,
		zap.NewNop(),
		services.WithSessionIDGenerator(func() string { return "s-1" }),
		services.WithOrderIDGenerator(func() string { return "ORD-1767225600000-abc123def" }),
	)
}

func do(t *testing.T, r *gin.Engine, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// --- Tests ---

func TestController_Health(t *testing.T) {
	r := setupRouter(&mockSessionService{})

	w, resp := do(t, r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp["status"])
}

func TestController_GetSession_NotFound(t *testing.T) {
	svc := &mockSessionService{
		getFn: func(_ context.Context, id string) (*models.SessionView, *services.ServiceError) {
			assert.Equal(t, "missing", id)
			return nil, &services.ServiceError{StatusCode: http.StatusNotFound, Kind: apperrors.KindNotFound, Message: "Session not found"}
		},
	}

	w, resp := do(t, setupRouter(svc), http.MethodGet, "/sessions/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Session not found", resp["error"])
}

func TestController_IllegalTransitionReturnsWarning(t *testing.T) {
	svc := &mockSessionService{
		doFn: func(context.Context, string, services.Action) (*models.SessionView, *services.ServiceError) {
			return nil, &services.ServiceError{
				StatusCode: http.StatusConflict,
				Kind:       apperrors.KindIllegalTransition,
				Message:    "cannot cancel_checkout while browsing",
			}
		},
	}

	w, resp := do(t, setupRouter(svc), http.MethodDelete, "/sessions/s-1/checkout", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "cannot cancel_checkout while browsing", resp["warning"])
	assert.NotContains(t, resp, "error")
}

func TestController_AddItem_InvalidBody(t *testing.T) {
	called := false
	svc := &mockSessionService{
		doFn: func(context.Context, string, services.Action) (*models.SessionView, *services.ServiceError) {
			called = true
			return &models.SessionView{}, nil
		},
	}

	w, resp := do(t, setupRouter(svc), http.MethodPost, "/sessions/s-1/cart/items", map[string]any{"quantity": 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request", resp["error"])
	assert.False(t, called)
}

func TestController_ConfirmPurchase_PassesIdempotencyKey(t *testing.T) {
	svc := &mockSessionService{
		confirmFn: func(_ context.Context, id, key string) (*models.CheckoutResult, *services.ServiceError) {
			assert.Equal(t, "s-1", id)
			assert.Equal(t, "key-123", key)
			return &models.CheckoutResult{OrderID: "ORD-1-abc", Replayed: true}, nil
		},
	}

	w, resp := do(t, setupRouter(svc), http.MethodPost, "/sessions/s-1/checkout/confirm", nil, controllers.IdempotencyKeyHeader, "key-123")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ORD-1-abc", resp["order_id"])
	assert.Equal(t, true, resp["replayed"])
}

func TestController_ShoppingFlow(t *testing.T) {
	r := setupRouter(newRealService())

	w, resp := do(t, r, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	session := resp["session"].(map[string]any)
	assert.Equal(t, "s-1", session["session_id"])

	w, _ = do(t, r, http.MethodPost, "/sessions/s-1/promotions/click", map[string]any{"name": "신년 세일", "position": "hero_banner"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = do(t, r, http.MethodGet, "/sessions/s-1/products?q="+url.QueryEscape("운동"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp["count"])

	w, resp = do(t, r, http.MethodGet, "/sessions/s-1/products/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	product := resp["product"].(map[string]any)
	assert.Equal(t, "159,000원", product["formatted_price"])
	assert.Equal(t, float64(20), product["discount_percent"])

	w, _ = do(t, r, http.MethodPost, "/sessions/s-1/cart/items", map[string]any{"product_id": "1"})
	require.Equal(t, http.StatusOK, w.Code)
	w, resp = do(t, r, http.MethodPatch, "/sessions/s-1/cart/items/1", map[string]any{"delta": 1})
	require.Equal(t, http.StatusOK, w.Code)
	session = resp["session"].(map[string]any)
	assert.Equal(t, float64(318000), session["total"])
	assert.Equal(t, "318,000원", session["formatted_total"])

	w, _ = do(t, r, http.MethodPost, "/sessions/s-1/cart/view", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = do(t, r, http.MethodPost, "/sessions/s-1/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "payment_entry", resp["session"].(map[string]any)["state"])

	w, resp = do(t, r, http.MethodPost, "/sessions/s-1/checkout/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ORD-1767225600000-abc123def", resp["order_id"])
	assert.Equal(t, float64(318000), resp["total"])

	w, resp = do(t, r, http.MethodPost, "/sessions/s-1/checkout/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, resp, "warning")

	w, resp = do(t, r, http.MethodPost, "/sessions/s-1/checkout/continue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "browsing", resp["session"].(map[string]any)["state"])

	w, resp = do(t, r, http.MethodGet, "/sessions/s-1/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := resp["events"].([]any)
	require.Len(t, events, 10)
	var types []string
	for _, e := range events {
		types = append(types, e.(map[string]any)["event_type"].(string))
	}
	assert.Equal(t, []string{
		"pageView", "purchase", "scCheckout", "scView", "scAdd",
		"scAdd", "prodView", "internalSearch", "promoClick", "pageView",
	}, types)
}

func TestController_RemoveItem_ReportsWhetherRemoved(t *testing.T) {
	r := setupRouter(newRealService())
	do(t, r, http.MethodPost, "/sessions", nil)

	w, resp := do(t, r, http.MethodDelete, "/sessions/s-1/cart/items/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["removed"])

	do(t, r, http.MethodPost, "/sessions/s-1/cart/items", map[string]any{"product_id": "2", "quantity": 2})
	w, resp = do(t, r, http.MethodDelete, "/sessions/s-1/cart/items/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["removed"])
}

func TestController_AddItem_ZeroQuantityRejected(t *testing.T) {
	r := setupRouter(newRealService())
	do(t, r, http.MethodPost, "/sessions", nil)

	w, resp := do(t, r, http.MethodPost, "/sessions/s-1/cart/items", map[string]any{"product_id": "2", "quantity": 0})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "quantity")
}

func TestController_SelectCategory(t *testing.T) {
	r := setupRouter(newRealService())
	do(t, r, http.MethodPost, "/sessions", nil)

	w, resp := do(t, r, http.MethodPost, "/sessions/s-1/navigation/category", map[string]any{"category": "전자기기"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["products"], 2)

	w, _ = do(t, r, http.MethodPost, "/sessions/s-1/navigation/category", map[string]any{"category": "가구"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_ChangeQuantity_PastMaxRejected(t *testing.T) {
	r := setupRouter(newRealService())
	do(t, r, http.MethodPost, "/sessions", nil)
	do(t, r, http.MethodPost, "/sessions/s-1/cart/items", map[string]any{"product_id": "1"})

	w, resp := do(t, r, http.MethodPatch, "/sessions/s-1/cart/items/1", map[string]any{"delta": math.MaxInt64})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "exceed")

	w, resp = do(t, r, http.MethodGet, "/sessions/s-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	session := resp["session"].(map[string]any)
	assert.Equal(t, float64(1), session["count"])
}

func TestController_EndSession(t *testing.T) {
	r := setupRouter(newRealService())
	do(t, r, http.MethodPost, "/sessions", nil)

	w, _ := do(t, r, http.MethodDelete, "/sessions/s-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, resp := do(t, r, http.MethodGet, "/sessions/s-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Session not found", resp["error"])

	w, _ = do(t, r, http.MethodDelete, "/sessions/s-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
