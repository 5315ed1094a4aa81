package helpers

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

var validate = validator.New()

// MaxQuantity caps a single line so quantities stay well inside the integer
// columns they are stored in.
const MaxQuantity = 1000

// ItemFields are the client-supplied values checked before any lookup.
type ItemFields struct {
	ProductID uuid.UUID
	SellerID  uuid.UUID
	Quantity  int
	Price     *decimal.Decimal
}

// ValidateCustomer requires a name and a well-formed email.
func ValidateCustomer(name, email string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name and email are required")
	}
	if err := validate.Var(strings.TrimSpace(email), "email"); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email is invalid")
	}
	return nil
}

// ValidateItems checks every item and reports all problems at once.
func ValidateItems(items []ItemFields) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "items are required")
	}
	var errs error
	for i, item := range items {
		errs = multierr.Append(errs, validateItem(i, item))
	}
	if errs == nil {
		return nil
	}
	problems := multierr.Errors(errs)
	messages := make([]string, 0, len(problems))
	for _, p := range problems {
		messages = append(messages, p.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid checkout items").
		WithDetails(map[string]any{"items": messages})
}

func validateItem(index int, item ItemFields) error {
	var errs error
	if item.ProductID == uuid.Nil {
		errs = multierr.Append(errs, fmt.Errorf("items[%d].product_id is required", index))
	}
	if item.SellerID == uuid.Nil {
		errs = multierr.Append(errs, fmt.Errorf("items[%d].seller_id is required", index))
	}
	if item.Quantity < 1 {
		errs = multierr.Append(errs, fmt.Errorf("items[%d].quantity must be at least 1", index))
	}
	if item.Quantity > MaxQuantity {
		errs = multierr.Append(errs, fmt.Errorf("items[%d].quantity must be at most %d", index, MaxQuantity))
	}
	if item.Price == nil {
		errs = multierr.Append(errs, fmt.Errorf("items[%d].price is required", index))
	}
	return errs
}
