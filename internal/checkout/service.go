package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/internal/checkout/helpers"
	"github.com/angelmondragon/bazaar-backend/internal/checkout/reservation"
	"github.com/angelmondragon/bazaar-backend/internal/orders"
	product "github.com/angelmondragon/bazaar-backend/internal/products"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockReserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, requests []reservation.StockRequest) ([]reservation.StockResult, error)
}

type reservationEngine struct{}

func (reservationEngine) Reserve(ctx context.Context, tx *gorm.DB, requests []reservation.StockRequest) ([]reservation.StockResult, error) {
	return reservation.ReserveStock(ctx, tx, requests)
}

// Service executes checkout orchestration.
type Service interface {
	Execute(ctx context.Context, input CheckoutInput) (*models.Order, error)
}

// CustomerInput is the buyer contact block.
type CustomerInput struct {
	Name    string
	Email   string
	Phone   *string
	Address *string
}

// ItemInput is one requested line. Price and DeliveryCharge are what the
// client displayed; the catalog decides what is charged.
type ItemInput struct {
	ProductID      uuid.UUID
	SellerID       uuid.UUID
	Quantity       int
	Price          *decimal.Decimal
	DeliveryCharge *decimal.Decimal
}

// CheckoutInput captures one checkout request. CustomerID is set when the
// caller presented a valid token.
type CheckoutInput struct {
	Customer   CustomerInput
	Items      []ItemInput
	CustomerID *uuid.UUID
}

type service struct {
	tx          txRunner
	ordersRepo  orders.Repository
	productRepo *product.Repository
	reservation stockReserver
	logg        *logger.Logger
	metrics     *metrics.Marketplace
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	ordersRepo orders.Repository,
	productRepo *product.Repository,
	reserver stockReserver,
	logg *logger.Logger,
	m *metrics.Marketplace,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if reserver == nil {
		reserver = reservationEngine{}
	}
	if m == nil {
		m = metrics.NewMarketplace(nil)
	}
	return &service{
		tx:          tx,
		ordersRepo:  ordersRepo,
		productRepo: productRepo,
		reservation: reserver,
		logg:        logg,
		metrics:     m,
	}, nil
}

// Execute validates the request, takes stock and persists the order in one
// transaction. Any failure leaves stock and orders untouched.
func (s *service) Execute(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	guest := input.CustomerID == nil
	order, err := s.execute(ctx, input)
	if err != nil {
		outcome := metrics.OutcomeFailed
		if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeDependency && typed.Code() != pkgerrors.CodeInternal {
			outcome = metrics.OutcomeRejected
		}
		s.metrics.ObserveCheckout(outcome, guest)
		return nil, err
	}

	s.metrics.ObserveCheckout(metrics.OutcomeSuccess, guest)
	s.metrics.ObserveOrderTotal(order.Total)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"guest":    guest,
		"items":    len(order.Items),
		"sellers":  helpers.SellerCount(order.Items),
		"total":    order.Total.StringFixed(2),
	})
	s.logg.Info(logCtx, "checkout.completed")
	return order, nil
}

func (s *service) execute(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	if err := helpers.ValidateCustomer(input.Customer.Name, input.Customer.Email); err != nil {
		return nil, err
	}
	fields := make([]helpers.ItemFields, 0, len(input.Items))
	for _, item := range input.Items {
		fields = append(fields, helpers.ItemFields{
			ProductID: item.ProductID,
			SellerID:  item.SellerID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	if err := helpers.ValidateItems(fields); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		lineItems := make([]models.OrderLineItem, 0, len(input.Items))
		requests := make([]reservation.StockRequest, 0, len(input.Items))
		for i, item := range input.Items {
			p, err := productRepo.FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
						WithDetails(map[string]any{"product_id": item.ProductID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			line, err := buildLineItem(i, item, p)
			if err != nil {
				return err
			}
			s.warnOnPriceMismatch(ctx, item, line)
			lineItems = append(lineItems, line)
			requests = append(requests, reservation.StockRequest{ProductID: p.ID, Qty: item.Quantity})
		}

		results, err := s.reservation.Reserve(ctx, tx, requests)
		if err != nil {
			return err
		}
		if short, ok := reservation.FirstShortfall(results); ok {
			return pkgerrors.New(pkgerrors.CodeValidation, short.Reason).
				WithDetails(map[string]any{
					"product_id": short.ProductID,
					"requested":  short.Requested,
					"available":  short.Available,
				})
		}

		totals := helpers.ComputeTotals(lineItems)
		order := &models.Order{
			Customer:            customerSnapshot(input),
			Subtotal:            totals.Subtotal,
			TotalDeliveryCharge: totals.TotalDeliveryCharge,
			Total:               totals.Total,
			OverallStatus:       orders.AggregateStatus(nil),
			Items:               lineItems,
		}
		if err := ordersRepo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Passthrough(err, "checkout")
	}
	return created, nil
}

func buildLineItem(index int, item ItemInput, p *models.Product) (models.OrderLineItem, error) {
	if !p.IsPurchasable() {
		return models.OrderLineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "product is not available").
			WithDetails(map[string]any{"index": index, "product_id": p.ID})
	}
	if p.SellerID != item.SellerID {
		return models.OrderLineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "seller does not match product").
			WithDetails(map[string]any{"index": index, "product_id": p.ID})
	}
	return models.OrderLineItem{
		ProductID:      p.ID,
		SellerID:       p.SellerID,
		Quantity:       item.Quantity,
		Price:          p.UnitPrice(),
		DeliveryCharge: p.DeliveryCharge,
		Status:         enums.LineItemStatusPending,
	}, nil
}

func (s *service) warnOnPriceMismatch(ctx context.Context, item ItemInput, line models.OrderLineItem) {
	priceOff := item.Price != nil && !item.Price.Equal(line.Price)
	deliveryOff := item.DeliveryCharge != nil && !item.DeliveryCharge.Equal(line.DeliveryCharge)
	if !priceOff && !deliveryOff {
		return
	}
	fields := map[string]any{
		"product_id":       line.ProductID.String(),
		"catalog_price":    line.Price.StringFixed(2),
		"catalog_delivery": line.DeliveryCharge.StringFixed(2),
	}
	if item.Price != nil {
		fields["client_price"] = item.Price.StringFixed(2)
	}
	if item.DeliveryCharge != nil {
		fields["client_delivery"] = item.DeliveryCharge.StringFixed(2)
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), "checkout.price_mismatch")
}

func customerSnapshot(input CheckoutInput) models.CustomerSnapshot {
	snapshot := models.CustomerSnapshot{
		CustomerID: input.CustomerID,
		Name:       strings.TrimSpace(input.Customer.Name),
		Email:      strings.TrimSpace(input.Customer.Email),
		Phone:      trimmedOrNil(input.Customer.Phone),
		Address:    trimmedOrNil(input.Customer.Address),
		IsGuest:    input.CustomerID == nil,
	}
	return snapshot
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
