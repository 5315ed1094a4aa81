package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/bazaar-backend/api/middleware"
	checkoutsvc "github.com/angelmondragon/bazaar-backend/internal/checkout"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type stubCheckoutService struct {
	input checkoutsvc.CheckoutInput
	order *models.Order
	err   error
}

func (s *stubCheckoutService) Execute(_ context.Context, input checkoutsvc.CheckoutInput) (*models.Order, error) {
	s.input = input
	return s.order, s.err
}

const checkoutBody = `{
	"customer": {"name": "Ada", "email": "ada@example.com"},
	"items": [
		{"product_id": "11111111-1111-1111-1111-111111111111", "seller_id": "22222222-2222-2222-2222-222222222222", "quantity": 2, "price": 80, "delivery_charge": 10}
	]
}`

func TestCheckoutGuest(t *testing.T) {
	orderID := uuid.New()
	stub := &stubCheckoutService{order: &models.Order{
		ID:                  orderID,
		Customer:            models.CustomerSnapshot{Name: "Ada", Email: "ada@example.com", IsGuest: true},
		Subtotal:            decimal.NewFromInt(160),
		TotalDeliveryCharge: decimal.NewFromInt(10),
		Total:               decimal.NewFromInt(170),
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	rec := httptest.NewRecorder()
	Checkout(stub, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Nil(t, stub.input.CustomerID)
	require.Len(t, stub.input.Items, 1)
	assert.Equal(t, 2, stub.input.Items[0].Quantity)
	assert.True(t, stub.input.Items[0].Price.Equal(decimal.NewFromInt(80)))

	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp.Data["success"])
	assert.Equal(t, orderID.String(), resp.Data["order_id"])
	assert.Equal(t, true, resp.Data["guest_checkout"])
	assert.Equal(t, "160", resp.Data["subtotal"])
	assert.Equal(t, "10", resp.Data["total_delivery_charge"])
	assert.Equal(t, "170", resp.Data["total"])
}

func TestCheckoutAuthenticatedCustomer(t *testing.T) {
	userID := uuid.New()
	stub := &stubCheckoutService{order: &models.Order{ID: uuid.New()}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()
	Checkout(stub, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, stub.input.CustomerID)
	assert.Equal(t, userID, *stub.input.CustomerID)
}

func TestCheckoutSurfacesStockShortfall(t *testing.T) {
	stub := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
		WithDetails(map[string]any{"requested": 2, "available": 1})}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	rec := httptest.NewRecorder()
	Checkout(stub, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Error struct {
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient stock", resp.Error.Message)
	assert.EqualValues(t, 1, resp.Error.Details["available"])
}

func TestCheckoutRejectsMalformedJSON(t *testing.T) {
	stub := &stubCheckoutService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"items":`))
	rec := httptest.NewRecorder()
	Checkout(stub, testLogger()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
