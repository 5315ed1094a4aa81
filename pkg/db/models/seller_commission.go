package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// SellerCommission is a referral credit owed to SellerID for bringing in ReferredUserID.
type SellerCommission struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID       uuid.UUID              `gorm:"column:seller_id;type:uuid;not null"`
	ReferredUserID uuid.UUID              `gorm:"column:referred_user_id;type:uuid;not null"`
	Amount         decimal.Decimal        `gorm:"column:amount;type:numeric(12,2);not null"`
	Status         enums.CommissionStatus `gorm:"column:status;type:commission_status;not null;default:'pending'"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *SellerCommission) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
