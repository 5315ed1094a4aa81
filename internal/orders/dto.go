package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// CustomerDTO is the buyer snapshot stored on the order.
type CustomerDTO struct {
	CustomerID *uuid.UUID `json:"customer_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      *string    `json:"phone,omitempty"`
	Address    *string    `json:"address,omitempty"`
	IsGuest    bool       `json:"is_guest"`
}

// ProductInfo is the catalog snapshot attached to a seller's line item.
type ProductInfo struct {
	Name   string          `json:"name"`
	Images []string        `json:"images"`
	Price  decimal.Decimal `json:"price"`
}

// LineItemDTO is one line item of an order.
type LineItemDTO struct {
	ID             uuid.UUID            `json:"id"`
	ProductID      uuid.UUID            `json:"product_id"`
	SellerID       uuid.UUID            `json:"seller_id"`
	Quantity       int                  `json:"quantity"`
	Price          decimal.Decimal      `json:"price"`
	DeliveryCharge decimal.Decimal      `json:"delivery_charge"`
	Status         enums.LineItemStatus `json:"status"`
	ProductInfo    *ProductInfo         `json:"product_info,omitempty"`
}

// OrderDTO is an order with its visible line items.
type OrderDTO struct {
	ID                  uuid.UUID         `json:"id"`
	Customer            CustomerDTO       `json:"customer"`
	Subtotal            decimal.Decimal   `json:"subtotal"`
	TotalDeliveryCharge decimal.Decimal   `json:"total_delivery_charge"`
	Total               decimal.Decimal   `json:"total"`
	OverallStatus       enums.OrderStatus `json:"overall_status"`
	Items               []LineItemDTO     `json:"items"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// SellerOrderDTO is an order as seen by one seller. Totals are omitted
// because they cover other sellers' items.
type SellerOrderDTO struct {
	ID            uuid.UUID         `json:"id"`
	Customer      CustomerDTO       `json:"customer"`
	OverallStatus enums.OrderStatus `json:"overall_status"`
	Items         []LineItemDTO     `json:"items"`
	CreatedAt     time.Time         `json:"created_at"`
}

// CustomerOrderList is a page of the caller's orders.
type CustomerOrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor"`
}

func newCustomerDTO(c models.CustomerSnapshot) CustomerDTO {
	return CustomerDTO{
		CustomerID: c.CustomerID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		IsGuest:    c.IsGuest,
	}
}

func newLineItemDTO(item models.OrderLineItem) LineItemDTO {
	return LineItemDTO{
		ID:             item.ID,
		ProductID:      item.ProductID,
		SellerID:       item.SellerID,
		Quantity:       item.Quantity,
		Price:          item.Price,
		DeliveryCharge: item.DeliveryCharge,
		Status:         item.Status,
	}
}

// NewOrderDTO maps an order row and its preloaded items.
func NewOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	items := make([]LineItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, newLineItemDTO(item))
	}
	return &OrderDTO{
		ID:                  order.ID,
		Customer:            newCustomerDTO(order.Customer),
		Subtotal:            order.Subtotal,
		TotalDeliveryCharge: order.TotalDeliveryCharge,
		Total:               order.Total,
		OverallStatus:       order.OverallStatus,
		Items:               items,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}
