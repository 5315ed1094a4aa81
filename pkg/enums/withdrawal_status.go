package enums

// WithdrawalStatus tracks an admin decision on a payout request.
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

var withdrawalStatuses = newValueSet("withdrawal status",
	WithdrawalStatusPending,
	WithdrawalStatusApproved,
	WithdrawalStatusRejected,
)

func (v WithdrawalStatus) IsValid() bool { return withdrawalStatuses.has(v) }

func ParseWithdrawalStatus(raw string) (WithdrawalStatus, error) {
	return withdrawalStatuses.parse(raw)
}
