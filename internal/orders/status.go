package orders

import (
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// AggregateStatus derives the order status from its item statuses:
// delivered when every item is delivered, shipped when any item is shipped,
// pending otherwise. An order without items is pending.
func AggregateStatus(statuses []enums.LineItemStatus) enums.OrderStatus {
	if len(statuses) == 0 {
		return enums.OrderStatusPending
	}
	allDelivered := true
	anyShipped := false
	for _, status := range statuses {
		if status != enums.LineItemStatusDelivered {
			allDelivered = false
		}
		if status == enums.LineItemStatusShipped {
			anyShipped = true
		}
	}
	switch {
	case allDelivered:
		return enums.OrderStatusDelivered
	case anyShipped:
		return enums.OrderStatusShipped
	default:
		return enums.OrderStatusPending
	}
}

func itemStatuses(items []models.OrderLineItem) []enums.LineItemStatus {
	out := make([]enums.LineItemStatus, 0, len(items))
	for _, item := range items {
		out = append(out, item.Status)
	}
	return out
}
