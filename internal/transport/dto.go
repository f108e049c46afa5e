package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mikedaudnr/sportstore-api/internal/models"
)

type CreateProductRequest struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	SalePrice       *float64  `json:"sale_price"`
	SKU             string    `json:"sku"`
	StockQuantity   int       `json:"stock_quantity"`
	IsFeatured      bool      `json:"is_featured"`
	IsActive        *bool     `json:"is_active"`
	CategoryID      uuid.UUID `json:"category_id"`
	BrandID         uuid.UUID `json:"brand_id"`
	MetaTitle       string    `json:"meta_title"`
	MetaDescription string    `json:"meta_description"`
}

type PatchProductRequest struct {
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	Price           *float64   `json:"price"`
	SalePrice       *float64   `json:"sale_price"`
	SKU             *string    `json:"sku"`
	StockQuantity   *int       `json:"stock_quantity"`
	IsFeatured      *bool      `json:"is_featured"`
	IsActive        *bool      `json:"is_active"`
	CategoryID      *uuid.UUID `json:"category_id"`
	BrandID         *uuid.UUID `json:"brand_id"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
}

type CategoryResource struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type BrandResource struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ReviewUserResource struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ReviewResource struct {
	ID        uuid.UUID           `json:"id"`
	Rating    int                 `json:"rating"`
	Comment   string              `json:"comment"`
	User      *ReviewUserResource `json:"user,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

type SEOMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProductResource is the external shape of a product: stored fields plus the
// derived current price, discount and 1-decimal rating, with related records
// nested only when they were loaded.
type ProductResource struct {
	ID                 uuid.UUID         `json:"id"`
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Price              float64           `json:"price"`
	SalePrice          *float64          `json:"sale_price"`
	CurrentPrice       float64           `json:"current_price"`
	DiscountPercentage int               `json:"discount_percentage"`
	SKU                string            `json:"sku"`
	StockQuantity      int               `json:"stock_quantity"`
	IsFeatured         bool              `json:"is_featured"`
	AverageRating      float64           `json:"average_rating"`
	ReviewsCount       int               `json:"reviews_count"`
	Category           *CategoryResource `json:"category,omitempty"`
	Brand              *BrandResource    `json:"brand,omitempty"`
	Images             []string          `json:"images,omitempty"`
	Reviews            []ReviewResource  `json:"reviews,omitempty"`
	Meta               SEOMeta           `json:"meta"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func NewProductResource(p *models.Product) ProductResource {
	res := ProductResource{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Price:              p.Price,
		SalePrice:          p.SalePrice,
		CurrentPrice:       p.CurrentPrice(),
		DiscountPercentage: p.DiscountPercentage(),
		SKU:                p.SKU,
		StockQuantity:      p.StockQuantity,
		IsFeatured:         p.IsFeatured,
		AverageRating:      roundRating(p.AverageRating),
		ReviewsCount:       p.ReviewsCount,
		Meta: SEOMeta{
			Title:       p.MetaTitle,
			Description: p.MetaDescription,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	if p.Category != nil {
		res.Category = &CategoryResource{ID: p.Category.ID, Name: p.Category.Name}
	}
	if p.Brand != nil {
		res.Brand = &BrandResource{ID: p.Brand.ID, Name: p.Brand.Name}
	}
	for _, img := range p.Images {
		res.Images = append(res.Images, img.URL)
	}
	for _, rev := range p.Reviews {
		res.Reviews = append(res.Reviews, newReviewResource(rev))
	}

	return res
}

func NewProductCollection(items []models.Product) []ProductResource {
	out := make([]ProductResource, 0, len(items))
	for i := range items {
		out = append(out, NewProductResource(&items[i]))
	}
	return out
}

func newReviewResource(r models.Review) ReviewResource {
	res := ReviewResource{
		ID:        r.ID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.User != nil {
		res.User = &ReviewUserResource{ID: r.User.ID, Name: r.User.Name}
	}
	return res
}

func roundRating(r float64) float64 {
	v, _ := decimal.NewFromFloat(r).Round(1).Float64()
	return v
}

type PageMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type ProductPageResponse struct {
	Data []ProductResource `json:"data"`
	Meta PageMeta          `json:"meta"`
}
