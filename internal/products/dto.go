package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/types"
)

// ProductDTO represents the product payload returned to clients.
type ProductDTO struct {
	ID             uuid.UUID       `json:"id"`
	SellerID       uuid.UUID       `json:"seller_id"`
	Name           string          `json:"name"`
	Description    *string         `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Discount       decimal.Decimal `json:"discount"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Stock          int             `json:"stock"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	Status         string          `json:"status"`
	Tags           []string        `json:"tags"`
	Images         []string        `json:"images"`
	Reviews        []types.Review  `json:"reviews"`
	AverageRating  float64         `json:"average_rating"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductListResult is one page of the public catalog.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	reviews := append([]types.Review{}, product.Reviews...)
	return &ProductDTO{
		ID:             product.ID,
		SellerID:       product.SellerID,
		Name:           product.Name,
		Description:    product.Description,
		Price:          product.Price,
		Discount:       product.Discount,
		UnitPrice:      product.UnitPrice(),
		Stock:          product.Stock,
		DeliveryCharge: product.DeliveryCharge,
		Status:         string(product.Status),
		Tags:           append([]string{}, product.Tags...),
		Images:         append([]string{}, product.Images...),
		Reviews:        reviews,
		AverageRating:  product.Reviews.AverageRating(),
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}

func newProductDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out
}
