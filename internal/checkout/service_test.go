package checkout

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/internal/checkout/reservation"
	"github.com/angelmondragon/bazaar-backend/internal/orders"
	product "github.com/angelmondragon/bazaar-backend/internal/products"
	"github.com/angelmondragon/bazaar-backend/pkg/db/dbtest"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/metrics"
)

type harness struct {
	svc  Service
	conn *gorm.DB
	reg  *prometheus.Registry
}

func newHarness(t *testing.T, reserver stockReserver) harness {
	t.Helper()
	client, conn := dbtest.Client(t)
	reg := prometheus.NewRegistry()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(client, orders.NewRepository(conn), product.NewRepository(conn), reserver, logg, metrics.NewMarketplace(reg))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return harness{svc: svc, conn: conn, reg: reg}
}

func seedProduct(t *testing.T, conn *gorm.DB, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		SellerID:       uuid.New(),
		Name:           "Jamdani Saree",
		Price:          decimal.NewFromInt(100),
		Discount:       decimal.NewFromInt(20),
		Stock:          stock,
		DeliveryCharge: decimal.NewFromInt(10),
		Status:         enums.ProductStatusActive,
		Tags:           []string{},
		Images:         []string{},
	}
	if err := conn.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func stockOf(t *testing.T, conn *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	if err := conn.First(&p, "id = ?", id).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return p.Stock
}

func orderCount(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := conn.Model(&models.Order{}).Count(&n).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	return n
}

func item(p *models.Product, qty int) ItemInput {
	price := decimal.NewFromInt(80)
	delivery := decimal.NewFromInt(10)
	return ItemInput{ProductID: p.ID, SellerID: p.SellerID, Quantity: qty, Price: &price, DeliveryCharge: &delivery}
}

func customer() CustomerInput {
	return CustomerInput{Name: "Karim", Email: "karim@example.com"}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, nil, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error without dependencies")
	}
}

func TestExecuteGuestCheckoutTotalsAndStock(t *testing.T) {
	h := newHarness(t, nil)
	p := seedProduct(t, h.conn, 5)

	order, err := h.svc.Execute(context.Background(), CheckoutInput{Customer: customer(), Items: []ItemInput{item(p, 2)}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !order.Subtotal.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("expected subtotal 160, got %s", order.Subtotal)
	}
	if !order.TotalDeliveryCharge.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected delivery 10, got %s", order.TotalDeliveryCharge)
	}
	if !order.Total.Equal(decimal.NewFromInt(170)) {
		t.Fatalf("expected total 170, got %s", order.Total)
	}
	if !order.Customer.IsGuest || order.Customer.CustomerID != nil {
		t.Fatalf("expected guest customer, got %+v", order.Customer)
	}
	if order.OverallStatus != enums.OrderStatusPending {
		t.Fatalf("expected pending order, got %s", order.OverallStatus)
	}
	if len(order.Items) != 1 || order.Items[0].Status != enums.LineItemStatusPending || !order.Items[0].Price.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("unexpected items %+v", order.Items)
	}
	if got := stockOf(t, h.conn, p.ID); got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}

	var stored models.Order
	if err := h.conn.Preload("Items").First(&stored, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("find order: %v", err)
	}
	if len(stored.Items) != 1 || !stored.Total.Equal(decimal.NewFromInt(170)) {
		t.Fatalf("unexpected stored order %+v", stored)
	}

	success := checkoutCount(t, h.reg, metrics.OutcomeSuccess, "guest")
	if success != 1 {
		t.Fatalf("expected one successful guest checkout, got %v", success)
	}
}

func TestExecuteAuthenticatedCustomer(t *testing.T) {
	h := newHarness(t, nil)
	p := seedProduct(t, h.conn, 5)
	customerID := uuid.New()

	order, err := h.svc.Execute(context.Background(), CheckoutInput{Customer: customer(), Items: []ItemInput{item(p, 1)}, CustomerID: &customerID})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if order.Customer.IsGuest || order.Customer.CustomerID == nil || *order.Customer.CustomerID != customerID {
		t.Fatalf("expected authenticated customer, got %+v", order.Customer)
	}
}

func TestExecuteChargesCatalogPrice(t *testing.T) {
	h := newHarness(t, nil)
	p := seedProduct(t, h.conn, 5)
	in := item(p, 1)
	cheap := decimal.NewFromInt(1)
	in.Price = &cheap
	in.DeliveryCharge = &cheap

	order, err := h.svc.Execute(context.Background(), CheckoutInput{Customer: customer(), Items: []ItemInput{in}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !order.Total.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected catalog total 90, got %s", order.Total)
	}
}

func TestExecuteInsufficientStockRollsBackEarlierItems(t *testing.T) {
	h := newHarness(t, nil)
	first := seedProduct(t, h.conn, 5)
	second := seedProduct(t, h.conn, 1)

	_, err := h.svc.Execute(context.Background(), CheckoutInput{Customer: customer(), Items: []ItemInput{item(first, 2), item(second, 3)}})
	assertCode(t, err, pkgerrors.CodeValidation)
	typed := pkgerrors.As(err)
	details := typed.Details().(map[string]any)
	if details["available"] != 1 || details["requested"] != 3 {
		t.Fatalf("unexpected details %+v", details)
	}

	if got := stockOf(t, h.conn, first.ID); got != 5 {
		t.Fatalf("expected first product stock restored to 5, got %d", got)
	}
	if got := stockOf(t, h.conn, second.ID); got != 1 {
		t.Fatalf("expected second product stock 1, got %d", got)
	}
	if n := orderCount(t, h.conn); n != 0 {
		t.Fatalf("expected no orders, got %d", n)
	}
	rejected := checkoutCount(t, h.reg, metrics.OutcomeRejected, "guest")
	if rejected != 1 {
		t.Fatalf("expected one rejected checkout, got %v", rejected)
	}
}

func TestExecuteRejections(t *testing.T) {
	h := newHarness(t, nil)
	p := seedProduct(t, h.conn, 5)
	inactive := seedProduct(t, h.conn, 5)
	if err := h.conn.Model(inactive).Update("status", enums.ProductStatusInactive).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	wrongSeller := item(p, 1)
	wrongSeller.SellerID = uuid.New()
	missing := item(p, 1)
	missing.ProductID = uuid.New()

	tests := []struct {
		name  string
		input CheckoutInput
		code  pkgerrors.Code
	}{
		{"missing email", CheckoutInput{Customer: CustomerInput{Name: "Karim"}, Items: []ItemInput{item(p, 1)}}, pkgerrors.CodeValidation},
		{"no items", CheckoutInput{Customer: customer()}, pkgerrors.CodeValidation},
		{"zero quantity", CheckoutInput{Customer: customer(), Items: []ItemInput{item(p, 0)}}, pkgerrors.CodeValidation},
		{"quantity beyond int32", CheckoutInput{Customer: customer(), Items: []ItemInput{item(p, 1<<31)}}, pkgerrors.CodeValidation},
		{"unknown product", CheckoutInput{Customer: customer(), Items: []ItemInput{missing}}, pkgerrors.CodeNotFound},
		{"inactive product", CheckoutInput{Customer: customer(), Items: []ItemInput{item(inactive, 1)}}, pkgerrors.CodeValidation},
		{"seller mismatch", CheckoutInput{Customer: customer(), Items: []ItemInput{wrongSeller}}, pkgerrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Execute(context.Background(), tt.input)
			assertCode(t, err, tt.code)
		})
	}
	if got := stockOf(t, h.conn, p.ID); got != 5 {
		t.Fatalf("expected untouched stock, got %d", got)
	}
}

type failingReserver struct{}

func (failingReserver) Reserve(context.Context, *gorm.DB, []reservation.StockRequest) ([]reservation.StockResult, error) {
	return nil, errors.New("connection reset")
}

func TestExecuteStorageFailureIsDependencyError(t *testing.T) {
	h := newHarness(t, failingReserver{})
	p := seedProduct(t, h.conn, 5)

	_, err := h.svc.Execute(context.Background(), CheckoutInput{Customer: customer(), Items: []ItemInput{item(p, 1)}})
	assertCode(t, err, pkgerrors.CodeDependency)
	if n := orderCount(t, h.conn); n != 0 {
		t.Fatalf("expected no orders, got %d", n)
	}
	failed := checkoutCount(t, h.reg, metrics.OutcomeFailed, "guest")
	if failed != 1 {
		t.Fatalf("expected one failed checkout, got %v", failed)
	}
}

func checkoutCount(t *testing.T, reg *prometheus.Registry, outcome, customer string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "checkout_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["outcome"] == outcome && labels["customer"] == customer {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
