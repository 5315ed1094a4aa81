package enums

// CommissionStatus tracks whether a referral commission has been confirmed.
type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "pending"
	CommissionStatusApproved CommissionStatus = "approved"
)

var commissionStatuses = newValueSet("commission status",
	CommissionStatusPending,
	CommissionStatusApproved,
)

func (v CommissionStatus) IsValid() bool { return commissionStatuses.has(v) }

func ParseCommissionStatus(raw string) (CommissionStatus, error) {
	return commissionStatuses.parse(raw)
}
