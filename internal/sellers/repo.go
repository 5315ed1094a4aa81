package sellers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// Repository handles seller persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, seller *models.Seller) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error)
	FindByReferralCode(ctx context.Context, code string) (*models.Seller, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	ListByStatus(ctx context.Context, status *enums.SellerStatus) ([]models.Seller, error)
	UpdateDecision(ctx context.Context, id uuid.UUID, status enums.SellerStatus, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to seller operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create persists a new seller application.
func (r *repository) Create(ctx context.Context, seller *models.Seller) error {
	return r.db.WithContext(ctx).Create(seller).Error
}

// FindByUserID loads the seller record owned by the identity.
func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).First(&seller, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

// FindByReferralCode loads the seller owning code.
func (r *repository) FindByReferralCode(ctx context.Context, code string) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).First(&seller, "referral_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

// ReferralCodeExists reports whether code is already assigned.
func (r *repository) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Seller{}).
		Where("referral_code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByStatus returns applications oldest first, optionally filtered by status.
func (r *repository) ListByStatus(ctx context.Context, status *enums.SellerStatus) ([]models.Seller, error) {
	query := r.db.WithContext(ctx).Model(&models.Seller{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var sellers []models.Seller
	if err := query.Order("created_at ASC").Order("id ASC").Find(&sellers).Error; err != nil {
		return nil, err
	}
	return sellers, nil
}

// UpdateDecision moves a pending application to status and reports whether it did.
func (r *repository) UpdateDecision(ctx context.Context, id uuid.UUID, status enums.SellerStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Seller{}).
		Where("id = ? AND status = ?", id, enums.SellerStatusPending).
		Updates(map[string]any{"status": status, "decided_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
