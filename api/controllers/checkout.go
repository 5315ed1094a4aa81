package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/api/middleware"
	"github.com/angelmondragon/bazaar-backend/api/responses"
	"github.com/angelmondragon/bazaar-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/bazaar-backend/internal/checkout"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
)

// Checkout places an order for a guest or, when a token was presented, for
// the authenticated customer.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var customerID *uuid.UUID
		if middleware.UserIDFromContext(r.Context()) != "" {
			id, err := userIDFromRequest(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			customerID = &id
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Execute(r.Context(), payload.toInput(customerID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(order))
	}
}

// Item fields are checked by the checkout service so every problem is
// reported at once.
type checkoutRequest struct {
	Customer checkoutCustomerRequest `json:"customer"`
	Items    []checkoutItemRequest   `json:"items"`
}

type checkoutCustomerRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,bdphone"`
	Address *string `json:"address,omitempty"`
}

type checkoutItemRequest struct {
	ProductID      *uuid.UUID       `json:"product_id"`
	SellerID       *uuid.UUID       `json:"seller_id"`
	Quantity       int              `json:"quantity"`
	Price          *decimal.Decimal `json:"price"`
	DeliveryCharge *decimal.Decimal `json:"delivery_charge,omitempty"`
}

func (r checkoutRequest) toInput(customerID *uuid.UUID) checkoutsvc.CheckoutInput {
	items := make([]checkoutsvc.ItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		in := checkoutsvc.ItemInput{
			Quantity:       item.Quantity,
			Price:          item.Price,
			DeliveryCharge: item.DeliveryCharge,
		}
		if item.ProductID != nil {
			in.ProductID = *item.ProductID
		}
		if item.SellerID != nil {
			in.SellerID = *item.SellerID
		}
		items = append(items, in)
	}
	return checkoutsvc.CheckoutInput{
		Customer: checkoutsvc.CustomerInput{
			Name:    validators.SanitizeString(r.Customer.Name, 200),
			Email:   validators.SanitizeString(r.Customer.Email, 320),
			Phone:   r.Customer.Phone,
			Address: r.Customer.Address,
		},
		Items:      items,
		CustomerID: customerID,
	}
}

type checkoutResponse struct {
	Success             bool            `json:"success"`
	OrderID             uuid.UUID       `json:"order_id"`
	GuestCheckout       bool            `json:"guest_checkout"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	TotalDeliveryCharge decimal.Decimal `json:"total_delivery_charge"`
	Total               decimal.Decimal `json:"total"`
}

func newCheckoutResponse(order *models.Order) checkoutResponse {
	return checkoutResponse{
		Success:             true,
		OrderID:             order.ID,
		GuestCheckout:       order.Customer.IsGuest,
		Subtotal:            order.Subtotal,
		TotalDeliveryCharge: order.TotalDeliveryCharge,
		Total:               order.Total,
	}
}
