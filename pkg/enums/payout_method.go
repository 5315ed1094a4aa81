package enums

// PayoutMethod is the channel a withdrawal is paid through.
type PayoutMethod string

const (
	PayoutMethodBkash  PayoutMethod = "bkash"
	PayoutMethodNagad  PayoutMethod = "nagad"
	PayoutMethodRocket PayoutMethod = "rocket"
	PayoutMethodBank   PayoutMethod = "bank"
)

var payoutMethods = newValueSet("payout method",
	PayoutMethodBkash,
	PayoutMethodNagad,
	PayoutMethodRocket,
	PayoutMethodBank,
)

func (v PayoutMethod) IsValid() bool { return payoutMethods.has(v) }

func ParsePayoutMethod(raw string) (PayoutMethod, error) {
	return payoutMethods.parse(raw)
}
