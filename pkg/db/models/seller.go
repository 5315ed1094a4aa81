package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// Seller is a shop application and, once approved, the shop itself.
type Seller struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	ShopName     string             `gorm:"column:shop_name;not null"`
	OwnerName    string             `gorm:"column:owner_name;not null"`
	Email        string             `gorm:"column:email;not null"`
	Phone        string             `gorm:"column:phone;not null"`
	Address      *string            `gorm:"column:address"`
	Description  *string            `gorm:"column:description"`
	LogoURL      *string            `gorm:"column:logo_url"`
	Status       enums.SellerStatus `gorm:"column:status;type:seller_status;not null;default:'pending'"`
	ReferralCode string             `gorm:"column:referral_code;not null;uniqueIndex"`
	ReferredBy   *uuid.UUID         `gorm:"column:referred_by;type:uuid"`
	DecidedAt    *time.Time         `gorm:"column:decided_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Seller) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsApproved reports whether the seller may list products.
func (s Seller) IsApproved() bool {
	return s.Status == enums.SellerStatusApproved
}
