// Package reservation takes stock for checkout with conditional decrements.
package reservation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/angelmondragon/bazaar-backend/internal/products"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

// StockRequest asks for Qty units of a product.
type StockRequest struct {
	ProductID uuid.UUID
	Qty       int
}

// StockResult reports whether a request was satisfied and, if not, what was left.
type StockResult struct {
	ProductID uuid.UUID
	Requested int
	Available int
	Reserved  bool
	Reason    string
}

// ReserveStock decrements stock for every request inside tx. A request that
// cannot be satisfied leaves its product untouched and is reported with
// Reserved false; earlier decrements stay in tx so the caller decides
// whether to roll back.
func ReserveStock(ctx context.Context, tx *gorm.DB, requests []StockRequest) ([]StockResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	repo := product.NewRepository(tx)
	results := make([]StockResult, 0, len(requests))
	for _, req := range requests {
		if req.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		result := StockResult{ProductID: req.ProductID, Requested: req.Qty}
		ok, err := repo.DecrementStock(ctx, req.ProductID, req.Qty)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if ok {
			result.Reserved = true
			results = append(results, result)
			continue
		}

		current, err := repo.FindByID(ctx, req.ProductID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			result.Reason = "product not found"
		case err != nil:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product stock")
		default:
			result.Available = current.Stock
			result.Reason = "insufficient stock"
		}
		results = append(results, result)
	}
	return results, nil
}

// FirstShortfall returns the first unreserved result, if any.
func FirstShortfall(results []StockResult) (StockResult, bool) {
	for _, r := range results {
		if !r.Reserved {
			return r, true
		}
	}
	return StockResult{}, false
}
