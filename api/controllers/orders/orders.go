// Package orders exposes the customer and seller order views plus the
// seller's line item status endpoint.
package orders

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/api/middleware"
	"github.com/angelmondragon/bazaar-backend/api/responses"
	"github.com/angelmondragon/bazaar-backend/api/validators"
	internalorders "github.com/angelmondragon/bazaar-backend/internal/orders"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
)

// action runs one endpoint for an authenticated caller and returns the
// payload written inside the data envelope.
type action func(r *http.Request, svc internalorders.Service, actorID uuid.UUID) (any, error)

func handle(svc internalorders.Service, logg *logger.Logger, act action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		id, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := act(r, svc, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// Mine returns the caller's own orders, newest first.
func Mine(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(r *http.Request, svc internalorders.Service, actorID uuid.UUID) (any, error) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			return nil, err
		}
		return svc.CustomerOrders(r.Context(), actorID, params)
	})
}

// SellerOrders returns every order holding at least one of the caller's items.
func SellerOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(r *http.Request, svc internalorders.Service, actorID uuid.UUID) (any, error) {
		return svc.SellerOrders(r.Context(), actorID)
	})
}

type itemStatusRequest struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	NewStatus string    `json:"new_status" validate:"required"`
}

type itemStatusResponse struct {
	Success       bool              `json:"success"`
	OverallStatus enums.OrderStatus `json:"overall_status"`
}

// SellerUpdateItemStatus moves the caller's line items for one product and
// returns the recomputed order status.
func SellerUpdateItemStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(r *http.Request, svc internalorders.Service, actorID uuid.UUID) (any, error) {
		var req itemStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		status, err := enums.ParseLineItemStatus(req.NewStatus)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid new_status").
				WithDetails(map[string]any{"field": "new_status"})
		}

		overall, err := svc.UpdateItemStatus(r.Context(), internalorders.UpdateItemStatusInput{
			OrderID:     req.OrderID,
			ProductID:   req.ProductID,
			Status:      status,
			ActorUserID: actorID,
		})
		if err != nil {
			return nil, err
		}
		return itemStatusResponse{Success: true, OverallStatus: overall}, nil
	})
}

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id in token")
	}
	return id, nil
}
