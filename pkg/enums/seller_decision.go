package enums

// SellerDecision is the admin action taken on a pending application.
type SellerDecision string

const (
	SellerDecisionApprove SellerDecision = "approve"
	SellerDecisionReject  SellerDecision = "reject"
)

var sellerDecisions = newValueSet("seller decision",
	SellerDecisionApprove,
	SellerDecisionReject,
)

func (v SellerDecision) IsValid() bool { return sellerDecisions.has(v) }

func ParseSellerDecision(raw string) (SellerDecision, error) {
	return sellerDecisions.parse(raw)
}
