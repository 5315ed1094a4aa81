package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/metrics"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sellerLoader interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error)
}

type productLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Service defines fulfillment and order history operations.
type Service interface {
	UpdateItemStatus(ctx context.Context, input UpdateItemStatusInput) (enums.OrderStatus, error)
	SellerOrders(ctx context.Context, actorUserID uuid.UUID) ([]SellerOrderDTO, error)
	CustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*CustomerOrderList, error)
}

// UpdateItemStatusInput moves a seller's line items within one order.
type UpdateItemStatusInput struct {
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	Status      enums.LineItemStatus
	ActorUserID uuid.UUID
}

type service struct {
	repo     Repository
	tx       txRunner
	sellers  sellerLoader
	products productLookup
	logg     *logger.Logger
	metrics  *metrics.Marketplace
}

// NewService builds the orders service.
func NewService(repo Repository, tx txRunner, sellers sellerLoader, products productLookup, logg *logger.Logger, m *metrics.Marketplace) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if m == nil {
		m = metrics.NewMarketplace(nil)
	}
	return &service{
		repo:     repo,
		tx:       tx,
		sellers:  sellers,
		products: products,
		logg:     logg,
		metrics:  m,
	}, nil
}

// UpdateItemStatus sets the status of the caller's items for one product in
// one order, then recomputes and stores the order status from every item.
func (s *service) UpdateItemStatus(ctx context.Context, input UpdateItemStatusInput) (enums.OrderStatus, error) {
	if !input.Status.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid item status")
	}
	if input.OrderID == uuid.Nil || input.ProductID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order_id and product_id are required")
	}
	seller, err := s.seller(ctx, input.ActorUserID)
	if err != nil {
		return "", err
	}

	var overall enums.OrderStatus
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		matched, err := txRepo.UpdateLineItemStatus(ctx, input.OrderID, input.ProductID, seller.ID, input.Status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update line item status")
		}
		if matched == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		items, err := txRepo.ListLineItems(ctx, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list line items")
		}
		overall = AggregateStatus(itemStatuses(items))
		if err := txRepo.UpdateOverallStatus(ctx, input.OrderID, overall); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	}); err != nil {
		return "", pkgerrors.Passthrough(err, "update item status")
	}

	s.metrics.IncItemStatus(string(input.Status))
	logCtx := s.logg.WithSellerID(ctx, seller.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"order_id":       input.OrderID.String(),
		"product_id":     input.ProductID.String(),
		"item_status":    string(input.Status),
		"overall_status": string(overall),
	})
	s.logg.Info(logCtx, "order.item_status_updated")
	return overall, nil
}

// SellerOrders lists orders containing the caller's items. Only the caller's
// items are returned and each carries a product snapshot.
func (s *service) SellerOrders(ctx context.Context, actorUserID uuid.UUID) ([]SellerOrderDTO, error) {
	seller, err := s.seller(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListSellerOrders(ctx, seller.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller orders")
	}

	info, err := s.productInfo(ctx, rows)
	if err != nil {
		return nil, err
	}

	out := make([]SellerOrderDTO, 0, len(rows))
	for _, order := range rows {
		items := make([]LineItemDTO, 0, len(order.Items))
		for _, item := range order.Items {
			if item.SellerID != seller.ID {
				continue
			}
			dto := newLineItemDTO(item)
			if snapshot, ok := info[item.ProductID]; ok {
				snapshot := snapshot
				dto.ProductInfo = &snapshot
			}
			items = append(items, dto)
		}
		out = append(out, SellerOrderDTO{
			ID:            order.ID,
			Customer:      newCustomerDTO(order.Customer),
			OverallStatus: order.OverallStatus,
			Items:         items,
			CreatedAt:     order.CreatedAt,
		})
	}
	return out, nil
}

func (s *service) productInfo(ctx context.Context, orders []models.Order) (map[uuid.UUID]ProductInfo, error) {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, order := range orders {
		for _, item := range order.Items {
			if _, ok := seen[item.ProductID]; ok {
				continue
			}
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}
	info := make(map[uuid.UUID]ProductInfo, len(ids))
	if len(ids) == 0 {
		return info, nil
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	for _, p := range products {
		images := append([]string{}, p.Images...)
		info[p.ID] = ProductInfo{Name: p.Name, Images: images, Price: p.Price}
	}
	return info, nil
}

// CustomerOrders pages through the caller's own orders.
func (s *service) CustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*CustomerOrderList, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	rows, next, err := s.repo.ListCustomerOrders(ctx, customerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewOrderDTO(&rows[i]))
	}
	return &CustomerOrderList{Orders: out, NextCursor: next}, nil
}

func (s *service) seller(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	seller, err := s.sellers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return seller, nil
}
