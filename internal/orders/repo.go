package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
)

// Repository persists orders and their line items. WithTx rebinds it to a
// transaction opened by the service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	// ListSellerOrders returns orders holding at least one item of the seller.
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID) ([]models.Order, error)

	ListLineItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error)
	UpdateLineItemStatus(ctx context.Context, orderID, productID, sellerID uuid.UUID, status enums.LineItemStatus) (int64, error)
	UpdateOverallStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateOrder inserts the order together with its line items.
func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// UpdateLineItemStatus changes the items of one order that match both product
// and seller and returns how many rows matched.
func (r *repository) UpdateLineItemStatus(ctx context.Context, orderID, productID, sellerID uuid.UUID, status enums.LineItemStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Where("order_id = ? AND product_id = ? AND seller_id = ?", orderID, productID, sellerID).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *repository) ListLineItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	if err := orderItems(r.db.WithContext(ctx)).
		Where("order_id = ?", orderID).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateOverallStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("overall_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListSellerOrders returns orders holding at least one of the seller's items,
// newest first, with Items narrowed to that seller.
func (r *repository) ListSellerOrders(ctx context.Context, sellerID uuid.UUID) ([]models.Order, error) {
	sellerItems := r.db.
		Model(&models.OrderLineItem{}).
		Select("order_id").
		Where("seller_id = ?", sellerID)

	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return orderItems(db).Where("seller_id = ?", sellerID)
		}).
		Where("id IN (?)", sellerItems).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListCustomerOrders pages through the customer's orders, newest first.
func (r *repository) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	var orders []models.Order
	err = r.db.WithContext(ctx).
		Preload("Items", orderItems).
		Where("customer_id = ?", customerID).
		Scopes(pagination.Keyset(cursor, pageSize)).
		Find(&orders).Error
	if err != nil {
		return nil, "", err
	}

	orders, next := pagination.Trim(orders, pageSize, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return orders, next, nil
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}
