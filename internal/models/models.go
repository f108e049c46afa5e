package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"not null"             json:"name"`
}

type Brand struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"not null"             json:"name"`
}

type Product struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"        json:"id"`
	Name            string         `gorm:"not null"                    json:"name"`
	Description     string         `gorm:"not null"                    json:"description"`
	Price           float64        `gorm:"not null"                    json:"price"`
	SalePrice       *float64       `json:"sale_price"`
	SKU             string         `gorm:"uniqueIndex;not null"        json:"sku"`
	StockQuantity   int            `gorm:"not null;default:0"          json:"stock_quantity"`
	IsFeatured      bool           `gorm:"not null;default:false"      json:"is_featured"`
	IsActive        bool           `gorm:"not null;default:true"       json:"is_active"`
	AverageRating   float64        `gorm:"not null;default:0"          json:"average_rating"`
	ReviewsCount    int            `gorm:"not null;default:0"          json:"reviews_count"`
	CategoryID      uuid.UUID      `gorm:"type:uuid;index"             json:"category_id"`
	Category        *Category      `json:"category,omitempty"`
	BrandID         uuid.UUID      `gorm:"type:uuid;index"             json:"brand_id"`
	Brand           *Brand         `json:"brand,omitempty"`
	Images          []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Reviews         []Review       `gorm:"constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
	MetaTitle       string         `json:"meta_title"`
	MetaDescription string         `json:"meta_description"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CurrentPrice is the effective shopper price: the sale price when one is
// set and actually lower than the base price, else the base price.
func (p *Product) CurrentPrice() float64 {
	if p.SalePrice != nil && *p.SalePrice < p.Price {
		return *p.SalePrice
	}
	return p.Price
}

// DiscountPercentage is round((price-current)/price*100), zero when no sale
// applies. Decimal arithmetic keeps 129.99 -> 99.99 at exactly 23.
func (p *Product) DiscountPercentage() int {
	current := p.CurrentPrice()
	if current >= p.Price || p.Price == 0 {
		return 0
	}
	base := decimal.NewFromFloat(p.Price)
	cur := decimal.NewFromFloat(current)
	pct := base.Sub(cur).Div(base).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// Visible reports whether the product may be shown to shoppers.
func (p *Product) Visible() bool {
	return p.IsActive && p.StockQuantity > 0
}

type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index"      json:"product_id"`
	URL       string    `gorm:"not null"             json:"url"`
	SortOrder int       `gorm:"not null;default:0"   json:"sort_order"`
}

func (i *ProductImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index"      json:"product_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index"      json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Rating    int       `gorm:"not null"             json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type User struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Name string    `gorm:"not null"              json:"name"`
	Role string    `gorm:"not null;default:user" json:"role"`
}
