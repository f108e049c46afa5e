package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mikedaudnr/sportstore-api/internal/models"
	"github.com/mikedaudnr/sportstore-api/internal/transport"
)

// ProductFilter is the fully validated predicate set applied by List.
// SortColumn is always one of the allow-listed column names resolved by the
// service layer; raw caller input never reaches ORDER BY.
type ProductFilter struct {
	Search       string
	MatchRelated bool
	CategoryID   *uuid.UUID
	BrandID      *uuid.UUID
	MinPrice     *float64
	MaxPrice     *float64
	SortColumn   string
	SortDesc     bool
	Offset       int
	Limit        int
}

// visible scopes every shopper-facing read to active, in-stock products.
func visible(db *gorm.DB) *gorm.DB {
	return db.Where("products.is_active = ? AND products.stock_quantity > ?", true, 0)
}

func withSummaryRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Brand").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		})
}

func (r *GormRepo) filtered(ctx context.Context, f ProductFilter) *gorm.DB {
	q := visible(r.DB.WithContext(ctx).Model(&models.Product{}))

	if f.Search != "" {
		term := "%" + strings.ToLower(f.Search) + "%"
		if f.MatchRelated {
			q = q.
				Joins("LEFT JOIN categories ON categories.id = products.category_id").
				Joins("LEFT JOIN brands ON brands.id = products.brand_id").
				Where(
					"LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(categories.name) LIKE ? OR LOWER(brands.name) LIKE ?",
					term, term, term, term,
				)
		} else {
			q = q.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", term, term)
		}
	}

	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	}
	if f.BrandID != nil {
		q = q.Where("products.brand_id = ?", *f.BrandID)
	}
	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}

	return q
}

func orderClause(column string, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	// id ASC tie-break keeps pagination stable for equal sort keys.
	return fmt.Sprintf("products.%s %s, products.id ASC", column, dir)
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := withSummaryRelations(r.filtered(ctx, f)).
		Order(orderClause(f.SortColumn, f.SortDesc)).
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := models.Product{}
	if err := withSummaryRelations(visible(r.DB.WithContext(ctx))).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Reviews.User").
		Where("products.id = ?", id).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var items []models.Product
	if err := withSummaryRelations(visible(r.DB.WithContext(ctx).Model(&models.Product{}))).
		Where("products.is_featured = ?", true).
		Order(orderClause("created_at", true)).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ProductsByIDs loads visible products for an externally ranked id list,
// e.g. a page of search hits coming back from the index.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Product
	if err := withSummaryRelations(visible(r.DB.WithContext(ctx).Model(&models.Product{}))).
		Where("products.id IN ?", ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return r.reload(ctx, prod.ID)
}

func (r *GormRepo) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id uuid.UUID) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&prod).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.SalePrice != nil {
		prod.SalePrice = req.SalePrice
	}
	if req.SKU != nil {
		prod.SKU = *req.SKU
	}
	if req.StockQuantity != nil {
		prod.StockQuantity = *req.StockQuantity
	}
	if req.IsFeatured != nil {
		prod.IsFeatured = *req.IsFeatured
	}
	if req.IsActive != nil {
		prod.IsActive = *req.IsActive
	}
	if req.CategoryID != nil {
		prod.CategoryID = *req.CategoryID
	}
	if req.BrandID != nil {
		prod.BrandID = *req.BrandID
	}
	if req.MetaTitle != nil {
		prod.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		prod.MetaDescription = *req.MetaDescription
	}

	if err := r.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		return nil, err
	}

	return r.reload(ctx, prod.ID)
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// reload fetches a freshly written product with its relations, without the
// visibility scope: admins see inactive and out-of-stock rows.
func (r *GormRepo) reload(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var prod models.Product
	if err := withSummaryRelations(r.DB.WithContext(ctx)).
		Where("products.id = ?", id).
		First(&prod).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}
