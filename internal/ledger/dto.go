package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// CommissionDTO is the API shape of one commission record.
type CommissionDTO struct {
	ID             uuid.UUID              `json:"id"`
	ReferredUserID uuid.UUID              `json:"referred_user_id"`
	Amount         decimal.Decimal        `json:"amount"`
	Status         enums.CommissionStatus `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
}

// WithdrawalDTO is the API shape of one withdrawal record.
type WithdrawalDTO struct {
	ID            uuid.UUID              `json:"id"`
	SellerID      uuid.UUID              `json:"seller_id"`
	Amount        decimal.Decimal        `json:"amount"`
	Method        enums.PayoutMethod     `json:"method"`
	AccountNumber string                 `json:"number"`
	Status        enums.WithdrawalStatus `json:"status"`
	DecidedAt     *time.Time             `json:"decided_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ReferralSummary is the seller's referral dashboard.
type ReferralSummary struct {
	ReferralCode string          `json:"referral_code"`
	Commissions  []CommissionDTO `json:"commissions"`
	CommissionTotals
}

// WithdrawalLedger lists withdrawals alongside the balance still requestable.
type WithdrawalLedger struct {
	Withdrawals []WithdrawalDTO `json:"withdrawals"`
	Available   decimal.Decimal `json:"available_balance"`
}

func newCommissionDTO(c models.SellerCommission) CommissionDTO {
	return CommissionDTO{
		ID:             c.ID,
		ReferredUserID: c.ReferredUserID,
		Amount:         c.Amount,
		Status:         c.Status,
		CreatedAt:      c.CreatedAt,
	}
}

func newWithdrawalDTO(w models.SellerWithdrawal) WithdrawalDTO {
	return WithdrawalDTO{
		ID:            w.ID,
		SellerID:      w.SellerID,
		Amount:        w.Amount,
		Method:        w.Method,
		AccountNumber: w.AccountNumber,
		Status:        w.Status,
		DecidedAt:     w.DecidedAt,
		CreatedAt:     w.CreatedAt,
	}
}

func newWithdrawalDTOs(rows []models.SellerWithdrawal) []WithdrawalDTO {
	out := make([]WithdrawalDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, newWithdrawalDTO(row))
	}
	return out
}
