package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
)

// Repository is the gorm-backed product store.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate loads the product holding a row lock until the
// surrounding transaction ends. sqlite has no row locks and serializes
// writers instead.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := r.db.WithContext(ctx)
	if r.dialect() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var product models.Product
	if err := query.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads every product in ids with one query. Missing ids are skipped.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).
		Error
	return rows, err
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct saves every column of an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product owned by sellerID and reports whether a row was deleted.
func (r *Repository) DeleteProduct(ctx context.Context, sellerID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND seller_id = ?", id, sellerID).
		Delete(&models.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListBySeller lists every product owned by the seller, newest first.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// DecrementStock lowers stock by qty only when at least qty units remain.
// It reports false when the guard rejected the update.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListPublic returns active products matching filters, newest first, one
// keyset page at a time.
func (r *Repository) ListPublic(ctx context.Context, filters ProductFilters, params pagination.Params) ([]models.Product, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	limit := pagination.NormalizeLimit(params.Limit)

	var rows []models.Product
	err = r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("status = ?", enums.ProductStatusActive).
		Scopes(filters.scopes(r.dialect())...).
		Scopes(pagination.Keyset(cursor, limit)).
		Find(&rows).
		Error
	if err != nil {
		return nil, "", err
	}

	rows, next := pagination.Trim(rows, limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	return rows, next, nil
}

func (r *Repository) dialect() string {
	return r.db.Dialector.Name()
}

type scope = func(*gorm.DB) *gorm.DB

func (f ProductFilters) scopes(dialect string) []scope {
	var out []scope
	if f.SellerID != nil {
		sellerID := *f.SellerID
		out = append(out, func(q *gorm.DB) *gorm.DB { return q.Where("seller_id = ?", sellerID) })
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		out = append(out, hasTag(dialect, tag))
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		out = append(out, func(q *gorm.DB) *gorm.DB { return q.Where("LOWER(name) LIKE ?", pattern) })
	}
	if f.InStockOnly {
		out = append(out, func(q *gorm.DB) *gorm.DB { return q.Where("stock > 0") })
	}
	return out
}

// hasTag matches a text[] element on postgres. sqlite stores the array as
// its quoted literal, e.g. {"a","b"}.
func hasTag(dialect, tag string) scope {
	if dialect == "postgres" {
		return func(q *gorm.DB) *gorm.DB { return q.Where("? = ANY(tags)", tag) }
	}
	return func(q *gorm.DB) *gorm.DB { return q.Where("tags LIKE ?", `%"`+tag+`"%`) }
}
