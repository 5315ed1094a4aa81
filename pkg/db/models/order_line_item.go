package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// OrderLineItem is one seller's product within an order. Price is the
// post-discount unit price at checkout time.
type OrderLineItem struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID            `gorm:"column:order_id;type:uuid;not null"`
	ProductID      uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	SellerID       uuid.UUID            `gorm:"column:seller_id;type:uuid;not null"`
	Quantity       int                  `gorm:"column:quantity;not null"`
	Price          decimal.Decimal      `gorm:"column:price;type:numeric(12,2);not null"`
	DeliveryCharge decimal.Decimal      `gorm:"column:delivery_charge;type:numeric(12,2);not null;default:0"`
	Status         enums.LineItemStatus `gorm:"column:status;type:line_item_status;not null;default:'pending'"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *OrderLineItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// LineTotal is price × quantity.
func (i OrderLineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
