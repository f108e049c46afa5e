package transport

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikedaudnr/sportstore-api/internal/models"
)

func TestNewProductResource(t *testing.T) {
	sale := 99.99
	catID, brandID, userID := uuid.New(), uuid.New(), uuid.New()

	p := models.Product{
		ID:            uuid.New(),
		Name:          "Air Max Running Shoes",
		Description:   "cushioned daily trainer",
		Price:         129.99,
		SalePrice:     &sale,
		SKU:           "SKU-AM-90",
		StockQuantity: 12,
		IsFeatured:    true,
		AverageRating: 4.4499,
		ReviewsCount:  128,
		Category:      &models.Category{ID: catID, Name: "Running"},
		Brand:         &models.Brand{ID: brandID, Name: "Nike"},
		Images: []models.ProductImage{
			{URL: "https://cdn.example.com/1.jpg", SortOrder: 1},
			{URL: "https://cdn.example.com/2.jpg", SortOrder: 2},
		},
		Reviews: []models.Review{
			{
				ID:      uuid.New(),
				Rating:  5,
				Comment: "love them",
				User:    &models.User{ID: userID, Name: "Jordan"},
			},
		},
		MetaTitle:       "Air Max | Sportstore",
		MetaDescription: "Buy Air Max online",
	}

	res := NewProductResource(&p)

	assert.Equal(t, p.ID, res.ID)
	assert.Equal(t, 129.99, res.Price)
	require.NotNil(t, res.SalePrice)
	assert.Equal(t, 99.99, *res.SalePrice)
	assert.Equal(t, 99.99, res.CurrentPrice)
	assert.Equal(t, 23, res.DiscountPercentage)
	assert.Equal(t, 4.4, res.AverageRating)
	assert.Equal(t, 128, res.ReviewsCount)

	require.NotNil(t, res.Category)
	assert.Equal(t, "Running", res.Category.Name)
	require.NotNil(t, res.Brand)
	assert.Equal(t, "Nike", res.Brand.Name)

	assert.Equal(t, []string{"https://cdn.example.com/1.jpg", "https://cdn.example.com/2.jpg"}, res.Images)

	require.Len(t, res.Reviews, 1)
	require.NotNil(t, res.Reviews[0].User)
	assert.Equal(t, "Jordan", res.Reviews[0].User.Name)

	assert.Equal(t, "Air Max | Sportstore", res.Meta.Title)
	assert.Equal(t, "Buy Air Max online", res.Meta.Description)
}

func TestNewProductResource_UnloadedRelationsOmitted(t *testing.T) {
	p := models.Product{ID: uuid.New(), Name: "Bare", Price: 10}

	res := NewProductResource(&p)

	assert.Nil(t, res.Category)
	assert.Nil(t, res.Brand)
	assert.Empty(t, res.Images)
	assert.Empty(t, res.Reviews)
	assert.Equal(t, 10.0, res.CurrentPrice)
	assert.Equal(t, 0, res.DiscountPercentage)
}

func TestNewProductCollection(t *testing.T) {
	items := []models.Product{
		{ID: uuid.New(), Name: "A", Price: 1},
		{ID: uuid.New(), Name: "B", Price: 2},
	}

	out := NewProductCollection(items)

	require.Len(t, out, 2)
	assert.Equal(t, items[0].ID, out[0].ID)
	assert.Equal(t, items[1].ID, out[1].ID)
}
