package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/resto-order-core/models"
)

func getOrder(t *testing.T, env *testEnv, orderID uint) models.Order {
	t.Helper()
	code, resp := env.do(t, http.MethodGet, fmt.Sprintf("/admin/orders/%d", orderID), env.Cashier, nil)
	require.Equal(t, http.StatusOK, code, resp.Message)
	var order models.Order
	decodeData(t, resp, &order)
	return order
}

func TestCreateAndGetOrder(t *testing.T) {
	env := newTestEnv(t)
	orderID := env.createOrder(t, cartLine(env.Burger, 2), cartLine(env.Tea, 1))

	order := getOrder(t, env, orderID)
	assert.Equal(t, orderID, order.ID)
	assert.Equal(t, 1, order.TokenNo)
	assert.Equal(t, models.ItemCreated, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Burger", order.Items[0].Title)
	assert.True(t, order.Items[0].UnitPrice.Equal(env.Burger.Price))

	second := env.createOrder(t, cartLine(env.Tea, 1))
	assert.Equal(t, 2, getOrder(t, env, second).TokenNo)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodPost, "/admin/orders", env.Cashier, map[string]interface{}{"lines": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Status)

	code, _ = env.do(t, http.MethodPost, "/admin/orders", env.Cashier, map[string]interface{}{
		"lines": []interface{}{map[string]interface{}{"menu_item_id": 9999, "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, code)

	var count int64
	env.DB.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestOrderRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodGet, "/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = env.do(t, http.MethodGet, "/admin/orders", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = env.do(t, http.MethodPost, "/admin/orders", env.Chef, map[string]interface{}{
		"lines": []interface{}{cartLine(env.Tea, 1)},
	})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestOrderIsInvisibleToOtherTenant(t *testing.T) {
	env := newTestEnv(t)
	orderID := env.createOrder(t, cartLine(env.Tea, 1))

	stranger := env.token(t, 999, env.Other.ID, models.RoleAdmin)
	code, _ := env.do(t, http.MethodGet, fmt.Sprintf("/admin/orders/%d", orderID), stranger, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp := env.do(t, http.MethodGet, "/admin/orders", stranger, nil)
	require.Equal(t, http.StatusOK, code)
	var orders []models.Order
	decodeData(t, resp, &orders)
	assert.Empty(t, orders)
}

func TestItemStatusWorkflowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	orderID := env.createOrder(t, cartLine(env.Burger, 1))
	itemID := getOrder(t, env, orderID).Items[0].ID
	path := fmt.Sprintf("/admin/order-items/%d/status", itemID)

	code, resp := env.do(t, http.MethodPatch, path, env.Chef, map[string]string{"status": "preparing"})
	require.Equal(t, http.StatusOK, code, resp.Message)
	assert.Equal(t, models.ItemPreparing, getOrder(t, env, orderID).Status)

	// preparing cannot go back to created
	code, _ = env.do(t, http.MethodPatch, path, env.Chef, map[string]string{"status": "created"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodPatch, path, env.Chef, map[string]string{"status": "ready"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPatch, path, env.Chef, map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.ItemCompleted, getOrder(t, env, orderID).Status)

	code, _ = env.do(t, http.MethodPatch, "/admin/order-items/abc/status", env.Chef, map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestKitchenQueueAndCompleteOrder(t *testing.T) {
	env := newTestEnv(t)
	orderID := env.createOrder(t, cartLine(env.Tea, 1))

	code, resp := env.do(t, http.MethodGet, "/admin/kitchen/queue", env.Chef, nil)
	require.Equal(t, http.StatusOK, code)
	var queue []models.Order
	decodeData(t, resp, &queue)
	require.Len(t, queue, 1)
	assert.Equal(t, orderID, queue[0].ID)

	body := map[string]interface{}{"order_ids": []uint{orderID}}
	code, _ = env.do(t, http.MethodPost, "/admin/orders/complete", env.Cashier, body)
	assert.Equal(t, http.StatusPreconditionFailed, code)

	itemID := getOrder(t, env, orderID).Items[0].ID
	code, _ = env.do(t, http.MethodPatch, fmt.Sprintf("/admin/order-items/%d/status", itemID), env.Chef, map[string]string{"status": "delivered"})
	require.Equal(t, http.StatusOK, code)

	code, resp = env.do(t, http.MethodPost, "/admin/orders/complete", env.Cashier, body)
	require.Equal(t, http.StatusOK, code, resp.Message)
	assert.NotNil(t, getOrder(t, env, orderID).CompletedAt)

	_, resp = env.do(t, http.MethodGet, "/admin/kitchen/queue", env.Chef, nil)
	decodeData(t, resp, &queue)
	assert.Empty(t, queue)
}

func TestCancelOrdersOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	orderID := env.createOrder(t, cartLine(env.Burger, 1), cartLine(env.Tea, 1))

	code, resp := env.do(t, http.MethodPost, "/admin/orders/cancel", env.Cashier, map[string]interface{}{"order_ids": []uint{orderID}})
	require.Equal(t, http.StatusOK, code, resp.Message)

	order := getOrder(t, env, orderID)
	assert.Equal(t, models.ItemCancelled, order.Status)
	for _, item := range order.Items {
		assert.Equal(t, models.ItemCancelled, item.Status)
	}

	code, resp = env.do(t, http.MethodGet, "/admin/orders?open=true", env.Cashier, nil)
	require.Equal(t, http.StatusOK, code)
	var open []models.Order
	decodeData(t, resp, &open)
	assert.Empty(t, open)
}

func TestMarkPaymentStatusOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	orderID := env.createOrder(t, cartLine(env.Tea, 1))
	body := map[string]interface{}{"order_ids": []uint{orderID}, "payment_status": "paid"}

	code, _ := env.do(t, http.MethodPost, "/admin/orders/payment-status", env.Chef, body)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := env.do(t, http.MethodPost, "/admin/orders/payment-status", env.Cashier, body)
	require.Equal(t, http.StatusOK, code, resp.Message)
	assert.Equal(t, models.PaymentPaid, getOrder(t, env, orderID).PaymentStatus)

	code, resp = env.do(t, http.MethodGet, "/admin/orders?payment_status=paid", env.Cashier, nil)
	require.Equal(t, http.StatusOK, code)
	var paid []models.Order
	decodeData(t, resp, &paid)
	require.Len(t, paid, 1)

	body["payment_status"] = "refunded"
	code, _ = env.do(t, http.MethodPost, "/admin/orders/payment-status", env.Cashier, body)
	assert.Equal(t, http.StatusBadRequest, code)
}
