package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// Repository manages persistence for commission and withdrawal records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockSeller(ctx context.Context, sellerID uuid.UUID) error
	CreateCommission(ctx context.Context, commission *models.SellerCommission) error
	ListCommissions(ctx context.Context, sellerID uuid.UUID) ([]models.SellerCommission, error)
	FindCommission(ctx context.Context, id uuid.UUID) (*models.SellerCommission, error)
	ApproveCommission(ctx context.Context, id uuid.UUID) (bool, error)
	CreateWithdrawal(ctx context.Context, withdrawal *models.SellerWithdrawal) error
	ListWithdrawals(ctx context.Context, sellerID uuid.UUID) ([]models.SellerWithdrawal, error)
	FindWithdrawal(ctx context.Context, id uuid.UUID) (*models.SellerWithdrawal, error)
	DecideWithdrawal(ctx context.Context, id uuid.UUID, status enums.WithdrawalStatus, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// LockSeller serialises balance checks for one seller on Postgres. Other
// dialects rely on their own write serialisation.
func (r *repository) LockSeller(ctx context.Context, sellerID uuid.UUID) error {
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var seller models.Seller
	return query.Select("id").First(&seller, "id = ?", sellerID).Error
}

func (r *repository) CreateCommission(ctx context.Context, commission *models.SellerCommission) error {
	return r.db.WithContext(ctx).Create(commission).Error
}

func (r *repository) ListCommissions(ctx context.Context, sellerID uuid.UUID) ([]models.SellerCommission, error) {
	var rows []models.SellerCommission
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindCommission(ctx context.Context, id uuid.UUID) (*models.SellerCommission, error) {
	var row models.SellerCommission
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ApproveCommission moves a pending commission to approved and reports whether it did.
func (r *repository) ApproveCommission(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SellerCommission{}).
		Where("id = ? AND status = ?", id, enums.CommissionStatusPending).
		Update("status", enums.CommissionStatusApproved)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateWithdrawal(ctx context.Context, withdrawal *models.SellerWithdrawal) error {
	return r.db.WithContext(ctx).Create(withdrawal).Error
}

func (r *repository) ListWithdrawals(ctx context.Context, sellerID uuid.UUID) ([]models.SellerWithdrawal, error) {
	var rows []models.SellerWithdrawal
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindWithdrawal(ctx context.Context, id uuid.UUID) (*models.SellerWithdrawal, error) {
	var row models.SellerWithdrawal
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// DecideWithdrawal moves a pending withdrawal to status and reports whether it did.
func (r *repository) DecideWithdrawal(ctx context.Context, id uuid.UUID, status enums.WithdrawalStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SellerWithdrawal{}).
		Where("id = ? AND status = ?", id, enums.WithdrawalStatusPending).
		Updates(map[string]any{"status": status, "decided_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
