package enums

// OrderStatus is the aggregate fulfillment state derived from all line items.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

var orderStatuses = newValueSet("order status",
	OrderStatusPending,
	OrderStatusShipped,
	OrderStatusDelivered,
)

func (v OrderStatus) IsValid() bool { return orderStatuses.has(v) }

func ParseOrderStatus(raw string) (OrderStatus, error) {
	return orderStatuses.parse(raw)
}
