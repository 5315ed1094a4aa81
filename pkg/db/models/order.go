package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// CustomerSnapshot is the buyer contact block captured at checkout.
type CustomerSnapshot struct {
	CustomerID *uuid.UUID `gorm:"column:id;type:uuid"`
	Name       string     `gorm:"column:name;not null"`
	Email      string     `gorm:"column:email;not null"`
	Phone      *string    `gorm:"column:phone"`
	Address    *string    `gorm:"column:address"`
	IsGuest    bool       `gorm:"column:is_guest;not null"`
}

// Order is one checkout. OverallStatus is derived from Items and never set directly.
type Order struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Customer            CustomerSnapshot  `gorm:"embedded;embeddedPrefix:customer_"`
	Subtotal            decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TotalDeliveryCharge decimal.Decimal   `gorm:"column:total_delivery_charge;type:numeric(12,2);not null"`
	Total               decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	OverallStatus       enums.OrderStatus `gorm:"column:overall_status;type:order_status;not null;default:'pending'"`
	Items               []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
