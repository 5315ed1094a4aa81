package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// CommissionTotals aggregates a seller's referral earnings.
type CommissionTotals struct {
	Total    decimal.Decimal `json:"total_commission"`
	Pending  decimal.Decimal `json:"pending_commission"`
	Approved decimal.Decimal `json:"approved_commission"`
}

// Totals sums every record; approved is derived as total minus pending.
func Totals(records []models.SellerCommission) CommissionTotals {
	total := decimal.Zero
	pending := decimal.Zero
	for _, record := range records {
		total = total.Add(record.Amount)
		if record.Status == enums.CommissionStatusPending {
			pending = pending.Add(record.Amount)
		}
	}
	return CommissionTotals{
		Total:    total,
		Pending:  pending,
		Approved: total.Sub(pending),
	}
}

// PendingWithdrawn sums withdrawals still awaiting a decision.
func PendingWithdrawn(withdrawals []models.SellerWithdrawal) decimal.Decimal {
	sum := decimal.Zero
	for _, w := range withdrawals {
		if w.Status == enums.WithdrawalStatusPending {
			sum = sum.Add(w.Amount)
		}
	}
	return sum
}

// Available is the amount a seller may still request: total commission minus
// pending withdrawals. Decided withdrawals are not subtracted.
func Available(commissions []models.SellerCommission, withdrawals []models.SellerWithdrawal) decimal.Decimal {
	return Totals(commissions).Total.Sub(PendingWithdrawn(withdrawals))
}
