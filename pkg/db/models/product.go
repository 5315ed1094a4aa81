package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/types"
)

// Product is a seller listing. Stock is only ever lowered through the
// conditional decrement in the products repository.
type Product struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID       uuid.UUID           `gorm:"column:seller_id;type:uuid;not null"`
	Name           string              `gorm:"column:name;not null"`
	Description    *string             `gorm:"column:description"`
	Price          decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Discount       decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Stock          int                 `gorm:"column:stock;not null;default:0"`
	DeliveryCharge decimal.Decimal     `gorm:"column:delivery_charge;type:numeric(12,2);not null;default:0"`
	Status         enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'active'"`
	Tags           pq.StringArray      `gorm:"column:tags;type:text[]"`
	Images         pq.StringArray      `gorm:"column:images;type:text[]"`
	Reviews        types.Reviews       `gorm:"column:reviews;type:jsonb;serializer:json"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// UnitPrice is the post-discount price charged per unit, floored at zero.
func (p Product) UnitPrice() decimal.Decimal {
	price := p.Price.Sub(p.Discount)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// IsPurchasable reports whether checkout may sell this product.
func (p Product) IsPurchasable() bool {
	return p.Status == enums.ProductStatusActive
}
