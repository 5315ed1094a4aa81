package helpers

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

func TestValidateCustomer(t *testing.T) {
	if err := ValidateCustomer("Rahim", "rahim@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tc := range [][2]string{{"", "a@b.com"}, {"Rahim", ""}, {"Rahim", "not-an-email"}} {
		err := ValidateCustomer(tc[0], tc[1])
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %v, got %v", tc, err)
		}
	}
}

func TestValidateItemsCollectsEveryProblem(t *testing.T) {
	price := decimal.NewFromInt(80)
	err := ValidateItems([]ItemFields{
		{ProductID: uuid.New(), SellerID: uuid.New(), Quantity: 1, Price: &price},
		{Quantity: 0},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	messages := details["items"].([]string)
	if len(messages) != 4 {
		t.Fatalf("expected 4 problems, got %v", messages)
	}
	for _, m := range messages {
		if !strings.HasPrefix(m, "items[1].") {
			t.Fatalf("unexpected message %q", m)
		}
	}
}

func TestValidateItemsCapsQuantity(t *testing.T) {
	price := decimal.NewFromInt(80)
	item := ItemFields{ProductID: uuid.New(), SellerID: uuid.New(), Quantity: MaxQuantity, Price: &price}
	if err := ValidateItems([]ItemFields{item}); err != nil {
		t.Fatalf("expected max quantity to pass, got %v", err)
	}

	item.Quantity = 1 << 40
	typed := pkgerrors.As(ValidateItems([]ItemFields{item}))
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for oversized quantity")
	}
	messages := typed.Details().(map[string]any)["items"].([]string)
	if len(messages) != 1 || !strings.Contains(messages[0], "at most") {
		t.Fatalf("unexpected problems %v", messages)
	}
}

func TestValidateItemsRequiresItems(t *testing.T) {
	if err := ValidateItems(nil); err == nil {
		t.Fatal("expected error for empty items")
	}
}

func TestComputeTotals(t *testing.T) {
	sellerA, sellerB := uuid.New(), uuid.New()
	items := []models.OrderLineItem{
		{SellerID: sellerA, Quantity: 2, Price: decimal.NewFromInt(80), DeliveryCharge: decimal.NewFromInt(10)},
		{SellerID: sellerB, Quantity: 1, Price: decimal.RequireFromString("49.50"), DeliveryCharge: decimal.Zero},
	}
	got := ComputeTotals(items)
	if !got.Subtotal.Equal(decimal.RequireFromString("209.50")) {
		t.Fatalf("unexpected subtotal %s", got.Subtotal)
	}
	if !got.TotalDeliveryCharge.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected delivery %s", got.TotalDeliveryCharge)
	}
	if !got.Total.Equal(decimal.RequireFromString("219.50")) {
		t.Fatalf("unexpected total %s", got.Total)
	}
	if SellerCount(items) != 2 {
		t.Fatalf("expected 2 sellers")
	}
}
