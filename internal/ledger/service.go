package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/metrics"
)

// Service exposes referral commission and withdrawal operations.
type Service interface {
	AccrueCommission(ctx context.Context, tx *gorm.DB, referrerSellerID, referredUserID uuid.UUID) (*CommissionDTO, error)
	ApproveCommission(ctx context.Context, commissionID uuid.UUID) (*CommissionDTO, error)
	Referral(ctx context.Context, sellerUserID uuid.UUID) (*ReferralSummary, error)
	Withdrawals(ctx context.Context, sellerUserID uuid.UUID) (*WithdrawalLedger, error)
	RequestWithdrawal(ctx context.Context, sellerUserID uuid.UUID, input WithdrawalInput) (*WithdrawalDTO, error)
	DecideWithdrawal(ctx context.Context, withdrawalID uuid.UUID, status enums.WithdrawalStatus) (*WithdrawalDTO, error)
}

// WithdrawalInput is a payout request as submitted by the seller.
type WithdrawalInput struct {
	Amount decimal.Decimal
	Method enums.PayoutMethod
	Number string
}

type sellerLoader interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    Repository
	tx      txRunner
	sellers sellerLoader
	cfg     config.CommerceConfig
	logg    *logger.Logger
	metrics *metrics.Marketplace
	now     func() time.Time
}

// NewService builds the ledger service.
func NewService(repo Repository, tx txRunner, sellers sellerLoader, cfg config.CommerceConfig, logg *logger.Logger, m *metrics.Marketplace) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if m == nil {
		m = metrics.NewMarketplace(nil)
	}
	return &service{
		repo:    repo,
		tx:      tx,
		sellers: sellers,
		cfg:     cfg,
		logg:    logg,
		metrics: m,
		now:     time.Now,
	}, nil
}

// AccrueCommission appends a pending referral commission to the referrer's
// ledger inside the caller's transaction.
func (s *service) AccrueCommission(ctx context.Context, tx *gorm.DB, referrerSellerID, referredUserID uuid.UUID) (*CommissionDTO, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	commission := &models.SellerCommission{
		SellerID:       referrerSellerID,
		ReferredUserID: referredUserID,
		Amount:         s.cfg.ReferralCommission,
		Status:         enums.CommissionStatusPending,
	}
	if err := s.repo.WithTx(tx).CreateCommission(ctx, commission); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert commission")
	}
	s.metrics.IncCommission()
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"seller_id":        referrerSellerID.String(),
		"referred_user_id": referredUserID.String(),
		"amount":           commission.Amount.StringFixed(2),
	})
	s.logg.Info(logCtx, "ledger.commission_accrued")
	dto := newCommissionDTO(*commission)
	return &dto, nil
}

// ApproveCommission settles a pending commission.
func (s *service) ApproveCommission(ctx context.Context, commissionID uuid.UUID) (*CommissionDTO, error) {
	var approved *models.SellerCommission
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		commission, err := txRepo.FindCommission(ctx, commissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "commission not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load commission")
		}
		ok, err := txRepo.ApproveCommission(ctx, commissionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve commission")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "commission is not pending").
				WithDetails(map[string]any{"status": commission.Status})
		}
		commission.Status = enums.CommissionStatusApproved
		approved = commission
		return nil
	}); err != nil {
		return nil, pkgerrors.Passthrough(err, "approve commission")
	}
	dto := newCommissionDTO(*approved)
	return &dto, nil
}

// Referral returns the caller's referral code with the commission ledger and totals.
func (s *service) Referral(ctx context.Context, sellerUserID uuid.UUID) (*ReferralSummary, error) {
	seller, err := s.seller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListCommissions(ctx, seller.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list commissions")
	}
	commissions := make([]CommissionDTO, 0, len(rows))
	for _, row := range rows {
		commissions = append(commissions, newCommissionDTO(row))
	}
	return &ReferralSummary{
		ReferralCode:     seller.ReferralCode,
		Commissions:      commissions,
		CommissionTotals: Totals(rows),
	}, nil
}

// Withdrawals returns the caller's withdrawal history, newest first.
func (s *service) Withdrawals(ctx context.Context, sellerUserID uuid.UUID) (*WithdrawalLedger, error) {
	seller, err := s.seller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}
	withdrawals, err := s.repo.ListWithdrawals(ctx, seller.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list withdrawals")
	}
	commissions, err := s.repo.ListCommissions(ctx, seller.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list commissions")
	}
	return &WithdrawalLedger{
		Withdrawals: newWithdrawalDTOs(withdrawals),
		Available:   Available(commissions, withdrawals),
	}, nil
}

// moneyScale matches the numeric(12,2) money columns.
const moneyScale = 2

// RequestWithdrawal records a pending payout when the balance allows it.
func (s *service) RequestWithdrawal(ctx context.Context, sellerUserID uuid.UUID, input WithdrawalInput) (*WithdrawalDTO, error) {
	number := strings.TrimSpace(input.Number)
	switch {
	case !input.Method.IsValid():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payout method")
	case number == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "number is required")
	case !input.Amount.Equal(input.Amount.Truncate(moneyScale)):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount has more than 2 decimal places")
	case input.Amount.LessThan(s.cfg.MinWithdrawal):
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("minimum withdrawal amount is %s", s.cfg.MinWithdrawal.String()))
	}

	seller, err := s.seller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}
	if !seller.IsApproved() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller is not approved")
	}

	var created *models.SellerWithdrawal
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.LockSeller(ctx, seller.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock seller")
		}
		commissions, err := txRepo.ListCommissions(ctx, seller.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list commissions")
		}
		withdrawals, err := txRepo.ListWithdrawals(ctx, seller.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list withdrawals")
		}
		available := Available(commissions, withdrawals)
		if input.Amount.GreaterThan(available) {
			return pkgerrors.New(pkgerrors.CodeValidation, "insufficient balance").
				WithDetails(map[string]any{
					"requested": input.Amount.StringFixed(2),
					"available": available.StringFixed(2),
				})
		}
		withdrawal := &models.SellerWithdrawal{
			SellerID:      seller.ID,
			Amount:        input.Amount,
			Method:        input.Method,
			AccountNumber: number,
			Status:        enums.WithdrawalStatusPending,
		}
		if err := txRepo.CreateWithdrawal(ctx, withdrawal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert withdrawal")
		}
		created = withdrawal
		return nil
	}); err != nil {
		return nil, pkgerrors.Passthrough(err, "request withdrawal")
	}

	s.metrics.IncWithdrawal(string(enums.WithdrawalStatusPending))
	logCtx := s.logg.WithSellerID(ctx, seller.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"withdrawal_id": created.ID.String(),
		"amount":        created.Amount.StringFixed(2),
		"method":        string(created.Method),
	})
	s.logg.Info(logCtx, "ledger.withdrawal_requested")
	dto := newWithdrawalDTO(*created)
	return &dto, nil
}

// DecideWithdrawal approves or rejects a pending withdrawal.
func (s *service) DecideWithdrawal(ctx context.Context, withdrawalID uuid.UUID, status enums.WithdrawalStatus) (*WithdrawalDTO, error) {
	if status != enums.WithdrawalStatusApproved && status != enums.WithdrawalStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be approved or rejected")
	}

	var decided *models.SellerWithdrawal
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		withdrawal, err := txRepo.FindWithdrawal(ctx, withdrawalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "withdrawal not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load withdrawal")
		}
		at := s.now().UTC()
		ok, err := txRepo.DecideWithdrawal(ctx, withdrawalID, status, at)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decide withdrawal")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "withdrawal already decided").
				WithDetails(map[string]any{"status": withdrawal.Status})
		}
		withdrawal.Status = status
		withdrawal.DecidedAt = &at
		decided = withdrawal
		return nil
	}); err != nil {
		return nil, pkgerrors.Passthrough(err, "decide withdrawal")
	}

	s.metrics.IncWithdrawal(string(status))
	logCtx := s.logg.WithSellerID(ctx, decided.SellerID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"withdrawal_id": decided.ID.String(),
		"status":        string(status),
	})
	s.logg.Info(logCtx, "ledger.withdrawal_decided")
	dto := newWithdrawalDTO(*decided)
	return &dto, nil
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
