package helpers

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
)

// OrderTotals are the money fields of an order.
type OrderTotals struct {
	Subtotal            decimal.Decimal
	TotalDeliveryCharge decimal.Decimal
	Total               decimal.Decimal
}

// ComputeTotals sums price × quantity and one delivery charge per line item.
func ComputeTotals(items []models.OrderLineItem) OrderTotals {
	subtotal := decimal.Zero
	delivery := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
		delivery = delivery.Add(item.DeliveryCharge)
	}
	return OrderTotals{
		Subtotal:            subtotal,
		TotalDeliveryCharge: delivery,
		Total:               subtotal.Add(delivery),
	}
}

// SellerCount returns how many distinct sellers the items span.
func SellerCount(items []models.OrderLineItem) int {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		seen[item.SellerID.String()] = struct{}{}
	}
	return len(seen)
}
