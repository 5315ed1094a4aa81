package sellers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// SellerDTO is the API shape of a seller record.
type SellerDTO struct {
	ID           uuid.UUID          `json:"id"`
	UserID       uuid.UUID          `json:"user_id"`
	ShopName     string             `json:"shop_name"`
	OwnerName    string             `json:"owner_name"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	Address      *string            `json:"address,omitempty"`
	Description  *string            `json:"description,omitempty"`
	LogoURL      *string            `json:"logo_url,omitempty"`
	Status       enums.SellerStatus `json:"status"`
	ReferralCode string             `json:"referral_code"`
	ReferredBy   *uuid.UUID         `json:"referred_by,omitempty"`
	DecidedAt    *time.Time         `json:"decided_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// FromModel maps a seller row to its DTO.
func FromModel(s *models.Seller) *SellerDTO {
	if s == nil {
		return nil
	}
	return &SellerDTO{
		ID:           s.ID,
		UserID:       s.UserID,
		ShopName:     s.ShopName,
		OwnerName:    s.OwnerName,
		Email:        s.Email,
		Phone:        s.Phone,
		Address:      s.Address,
		Description:  s.Description,
		LogoURL:      s.LogoURL,
		Status:       s.Status,
		ReferralCode: s.ReferralCode,
		ReferredBy:   s.ReferredBy,
		DecidedAt:    s.DecidedAt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func fromModels(rows []models.Seller) []SellerDTO {
	out := make([]SellerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
