package product

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/types"
)

func mustCreateTestSeller(t *testing.T, tx *gorm.DB, status enums.SellerStatus) *models.Seller {
	t.Helper()
	user := &models.User{
		ID:    uuid.New(),
		Email: fmt.Sprintf("bz_test_%s@example.com", uuid.NewString()),
		Name:  "Repo Tester",
		Role:  enums.UserRoleSeller,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	seller := &models.Seller{
		UserID:       user.ID,
		ShopName:     "Repo Shop",
		OwnerName:    "Repo Tester",
		Email:        user.Email,
		Phone:        "01700000000",
		Status:       status,
		ReferralCode: uuid.NewString()[:8],
	}
	if err := tx.Create(seller).Error; err != nil {
		t.Fatalf("create seller: %v", err)
	}
	return seller
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, sellerID uuid.UUID, stock int, tags ...string) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:       sellerID,
		Name:           "Jamdani Saree",
		Price:          decimal.NewFromInt(100),
		Discount:       decimal.NewFromInt(20),
		Stock:          stock,
		DeliveryCharge: decimal.NewFromInt(10),
		Status:         enums.ProductStatusActive,
		Tags:           append([]string{}, tags...),
		Images:         []string{"https://cdn.example.com/saree.jpg"},
		Reviews:        types.Reviews{},
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

type dbSellerLoader struct {
	db *gorm.DB
}

func (l dbSellerLoader) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := l.db.WithContext(ctx).First(&seller, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}
