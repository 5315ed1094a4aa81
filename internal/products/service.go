package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
	"github.com/angelmondragon/bazaar-backend/pkg/types"
)

// Service exposes catalog management and browse operations.
type Service interface {
	Create(ctx context.Context, sellerUserID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, sellerUserID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	SetStatus(ctx context.Context, sellerUserID, productID uuid.UUID, status enums.ProductStatus) (*ProductDTO, error)
	Delete(ctx context.Context, sellerUserID, productID uuid.UUID) error
	ListMine(ctx context.Context, sellerUserID uuid.UUID) ([]ProductDTO, error)
	ListPublic(ctx context.Context, filters ProductFilters, params pagination.Params) (*ProductListResult, error)
	Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	AddReview(ctx context.Context, productID uuid.UUID, input ReviewInput) (*ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name           string
	Description    *string
	Price          decimal.Decimal
	Discount       decimal.Decimal
	Stock          int
	DeliveryCharge decimal.Decimal
	Tags           []string
	Images         []string
	Status         *enums.ProductStatus
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	Discount       *decimal.Decimal
	Stock          *int
	DeliveryCharge *decimal.Decimal
	Tags           *[]string
	Images         *[]string
}

// ProductFilters describe the supported filter knobs for the browse endpoint.
type ProductFilters struct {
	SellerID    *uuid.UUID
	Tag         string
	Query       string
	InStockOnly bool
}

// ReviewInput is a customer review before it is dated.
type ReviewInput struct {
	Name    string
	Comment string
	Rating  int
}

type sellerLoader interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	sellers  sellerLoader
	now      func() time.Time
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client, sellers sellerLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller repository required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		sellers:  sellers,
		now:      time.Now,
	}, nil
}

// Create lists a new product for an approved seller.
func (s *service) Create(ctx context.Context, sellerUserID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	seller, err := s.approvedSeller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validatePricing(input.Price, input.Discount, input.DeliveryCharge, input.Stock); err != nil {
		return nil, err
	}
	status := enums.ProductStatusActive
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
		}
		status = *input.Status
	}

	product := &models.Product{
		SellerID:       seller.ID,
		Name:           name,
		Description:    input.Description,
		Price:          input.Price,
		Discount:       input.Discount,
		Stock:          input.Stock,
		DeliveryCharge: input.DeliveryCharge,
		Status:         status,
		Tags:           cleanList(input.Tags),
		Images:         cleanList(input.Images),
		Reviews:        types.Reviews{},
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}
	return NewProductDTO(created), nil
}

// Update applies a partial update to a product the seller owns.
func (s *service) Update(ctx context.Context, sellerUserID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	seller, err := s.approvedSeller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}

	var updated *models.Product
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product, err := ownedProduct(ctx, txRepo, seller.ID, productID)
		if err != nil {
			return err
		}
		if err := applyUpdateToProduct(product, input); err != nil {
			return err
		}
		if err := validatePricing(product.Price, product.Discount, product.DeliveryCharge, product.Stock); err != nil {
			return err
		}
		updated, err = txRepo.UpdateProduct(ctx, product)
		return err
	}); err != nil {
		return nil, pkgerrors.Passthrough(err, "update product")
	}
	return NewProductDTO(updated), nil
}

// SetStatus toggles a product between active and inactive.
func (s *service) SetStatus(ctx context.Context, sellerUserID, productID uuid.UUID, status enums.ProductStatus) (*ProductDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
	}
	seller, err := s.approvedSeller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}

	product, err := ownedProduct(ctx, s.repo, seller.ID, productID)
	if err != nil {
		return nil, err
	}
	product.Status = status
	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product status")
	}
	return NewProductDTO(product), nil
}

// Delete hard-deletes a product the seller owns. Past orders keep their line items.
func (s *service) Delete(ctx context.Context, sellerUserID, productID uuid.UUID) error {
	seller, err := s.approvedSeller(ctx, sellerUserID)
	if err != nil {
		return err
	}
	deleted, err := s.repo.DeleteProduct(ctx, seller.ID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// ListMine returns every product of the calling seller regardless of status.
func (s *service) ListMine(ctx context.Context, sellerUserID uuid.UUID) ([]ProductDTO, error) {
	seller, err := s.seller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListBySeller(ctx, seller.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller products")
	}
	return newProductDTOs(rows), nil
}

// ListPublic pages through active products.
func (s *service) ListPublic(ctx context.Context, filters ProductFilters, params pagination.Params) (*ProductListResult, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	rows, next, err := s.repo.ListPublic(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return &ProductListResult{Products: newProductDTOs(rows), NextCursor: next}, nil
}

// Get returns an active product.
func (s *service) Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, mapProductErr(err)
	}
	if !product.IsPurchasable() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

// AddReview appends a dated review to an active product.
func (s *service) AddReview(ctx context.Context, productID uuid.UUID, input ReviewInput) (*ProductDTO, error) {
	review := types.Review{
		Name:    strings.TrimSpace(input.Name),
		Comment: strings.TrimSpace(input.Comment),
		Rating:  input.Rating,
		Date:    s.now().UTC(),
	}
	if review.Name == "" || review.Comment == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and comment are required")
	}
	if review.Rating < types.MinReviewRating || review.Rating > types.MaxReviewRating {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	var updated *models.Product
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product, err := txRepo.FindByIDForUpdate(ctx, productID)
		if err != nil {
			return mapProductErr(err)
		}
		if !product.IsPurchasable() {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		product.Reviews = append(product.Reviews, review)
		updated, err = txRepo.UpdateProduct(ctx, product)
		return err
	}); err != nil {
		return nil, pkgerrors.Passthrough(err, "add review")
	}
	return NewProductDTO(updated), nil
}

func (s *service) seller(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	seller, err := s.sellers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return seller, nil
}

func (s *service) approvedSeller(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	seller, err := s.seller(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !seller.IsApproved() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller is not approved")
	}
	return seller, nil
}

func ownedProduct(ctx context.Context, repo *Repository, sellerID, productID uuid.UUID) (*models.Product, error) {
	product, err := repo.FindByID(ctx, productID)
	if err != nil {
		return nil, mapProductErr(err)
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func mapProductErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
}

func validatePricing(price, discount, deliveryCharge decimal.Decimal, stock int) error {
	switch {
	case !price.IsPositive():
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than 0")
	case discount.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "discount must not be negative")
	case discount.GreaterThan(price):
		return pkgerrors.New(pkgerrors.CodeValidation, "discount cannot exceed price")
	case deliveryCharge.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery_charge must not be negative")
	case stock < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	return nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Discount != nil {
		product.Discount = *input.Discount
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.DeliveryCharge != nil {
		product.DeliveryCharge = *input.DeliveryCharge
	}
	if input.Tags != nil {
		product.Tags = cleanList(*input.Tags)
	}
	if input.Images != nil {
		product.Images = cleanList(*input.Images)
	}
	return nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
