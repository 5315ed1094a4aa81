package enums

// LineItemStatus tracks fulfillment of a single line item.
type LineItemStatus string

const (
	LineItemStatusPending   LineItemStatus = "pending"
	LineItemStatusShipped   LineItemStatus = "shipped"
	LineItemStatusDelivered LineItemStatus = "delivered"
)

var lineItemStatuses = newValueSet("line item status",
	LineItemStatusPending,
	LineItemStatusShipped,
	LineItemStatusDelivered,
)

func (v LineItemStatus) IsValid() bool { return lineItemStatuses.has(v) }

func ParseLineItemStatus(raw string) (LineItemStatus, error) {
	return lineItemStatuses.parse(raw)
}
