package enums

// SellerStatus is the review state of a seller application.
type SellerStatus string

const (
	SellerStatusPending  SellerStatus = "pending"
	SellerStatusApproved SellerStatus = "approved"
	SellerStatusRejected SellerStatus = "rejected"
)

var sellerStatuses = newValueSet("seller status",
	SellerStatusPending,
	SellerStatusApproved,
	SellerStatusRejected,
)

func (v SellerStatus) IsValid() bool { return sellerStatuses.has(v) }

func ParseSellerStatus(raw string) (SellerStatus, error) {
	return sellerStatuses.parse(raw)
}
