package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mikedaudnr/sportstore-api/internal/models"
	"github.com/mikedaudnr/sportstore-api/internal/repo"
	"github.com/mikedaudnr/sportstore-api/internal/service"
	"github.com/mikedaudnr/sportstore-api/internal/transport"
)

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	H        *CatalogHTTP
	DB       *gorm.DB
	Category models.Category
	Brand    models.Brand
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Brand{},
		&models.User{},
		&models.Product{},
		&models.ProductImage{},
		&models.Review{},
	))

	env := &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Category: models.Category{ID: uuid.New(), Name: "Running"},
		Brand:    models.Brand{ID: uuid.New(), Name: "Nike"},
	}
	require.NoError(t, db.Create(&env.Category).Error)
	require.NoError(t, db.Create(&env.Brand).Error)

	env.H = &CatalogHTTP{
		Svc: &service.CatalogService{Repo: &repo.GormRepo{DB: db}},
	}
	return env
}

func (env *testEnv) doJSONRequest(method, target string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) createProduct(name string, price float64, mutate func(*models.Product)) models.Product {
	p := models.Product{
		ID:            uuid.New(),
		Name:          name,
		Description:   name + " description",
		Price:         price,
		SKU:           fmt.Sprintf("SKU-%s", uuid.NewString()[:8]),
		StockQuantity: 10,
		IsActive:      true,
		CategoryID:    env.Category.ID,
		BrandID:       env.Brand.ID,
	}
	if mutate != nil {
		mutate(&p)
	}
	require.NoError(env.T, env.DB.Create(&p).Error)
	return p
}

func TestListProductsHandler(t *testing.T) {
	env := newTestEnv(t)

	env.createProduct("Shoes", 50, nil)
	env.createProduct("Jersey", 80, nil)
	env.createProduct("Hidden", 80, func(p *models.Product) { p.IsActive = false })

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products", nil)
	require.NoError(t, env.H.ListProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.ProductPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.EqualValues(t, 2, resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 15, resp.Meta.PerPage)
	assert.EqualValues(t, 1, resp.Meta.TotalPages)
	assert.False(t, resp.Meta.HasPrev)
	assert.False(t, resp.Meta.HasNext)
	require.NotNil(t, resp.Data[0].Category)
	assert.Equal(t, "Running", resp.Data[0].Category.Name)
}

func TestListProductsHandler_FilterParams(t *testing.T) {
	env := newTestEnv(t)

	env.createProduct("Cheap", 40, nil)
	mid := env.createProduct("Mid", 60, nil)
	env.createProduct("Expensive", 120, nil)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products?min_price=50&max_price=100", nil)
	require.NoError(t, env.H.ListProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.ProductPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, mid.ID, resp.Data[0].ID)
}

func TestGetProductHandler(t *testing.T) {
	env := newTestEnv(t)

	sale := 99.99
	prod := env.createProduct("Air Max", 129.99, func(p *models.Product) { p.SalePrice = &sale })

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/"+prod.ID.String(), nil)
	c.SetParamNames("id")
	c.SetParamValues(prod.ID.String())
	require.NoError(t, env.H.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.ProductResource
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, prod.ID, resp.ID)
	assert.Equal(t, 99.99, resp.CurrentPrice)
	assert.Equal(t, 23, resp.DiscountPercentage)
}

func TestGetProductHandler_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := env.H.GetProduct(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestGetProductHandler_BadID(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/abc", nil)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := env.H.GetProduct(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestFeaturedProductsHandler(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 10; i++ {
		env.createProduct(fmt.Sprintf("Featured %d", i), 50, func(p *models.Product) {
			p.IsFeatured = true
		})
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/featured", nil)
	require.NoError(t, env.H.FeaturedProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []transport.ProductResource `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 8)
}

func TestSearchProductsHandler_ShortQuery(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/search?q=a", nil)

	err := env.H.SearchProducts(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestSearchProductsHandler(t *testing.T) {
	env := newTestEnv(t)

	match := env.createProduct("Trail Runner", 60, nil)
	env.createProduct("Tennis Racket", 150, nil)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/search?q=trail", nil)
	require.NoError(t, env.H.SearchProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.ProductPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, match.ID, resp.Data[0].ID)
	assert.Equal(t, 20, resp.Meta.PerPage)
}

func TestCreateProductHandler(t *testing.T) {
	env := newTestEnv(t)

	req := transport.CreateProductRequest{
		Name:          "New Shoes",
		Description:   "fresh",
		Price:         99.5,
		SKU:           "SKU-NEW-1",
		StockQuantity: 5,
		CategoryID:    env.Category.ID,
		BrandID:       env.Brand.ID,
	}

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/admin/products", req)
	require.NoError(t, env.H.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp transport.ProductResource
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "New Shoes", resp.Name)
	require.NotNil(t, resp.Category)
	assert.Equal(t, "Running", resp.Category.Name)
}

func TestCreateProductHandler_Validation(t *testing.T) {
	env := newTestEnv(t)

	req := transport.CreateProductRequest{Name: "", Price: 10}

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/admin/products", req)

	err := env.H.CreateProduct(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestPatchProductHandler(t *testing.T) {
	env := newTestEnv(t)

	prod := env.createProduct("Old Name", 50, nil)

	newName := "New Name"
	req := transport.PatchProductRequest{Name: &newName}

	rec, c := env.doJSONRequest(http.MethodPatch, "/api/v1/admin/products/"+prod.ID.String(), req)
	c.SetParamNames("id")
	c.SetParamValues(prod.ID.String())
	require.NoError(t, env.H.PatchProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.ProductResource
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "New Name", resp.Name)
	assert.Equal(t, 50.0, resp.Price)
}

func TestDeleteProductHandler(t *testing.T) {
	env := newTestEnv(t)

	prod := env.createProduct("Doomed", 50, nil)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/v1/admin/products/"+prod.ID.String(), nil)
	c.SetParamNames("id")
	c.SetParamValues(prod.ID.String())
	require.NoError(t, env.H.DeleteProduct(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, c2 := env.doJSONRequest(http.MethodDelete, "/api/v1/admin/products/"+prod.ID.String(), nil)
	c2.SetParamNames("id")
	c2.SetParamValues(prod.ID.String())

	err := env.H.DeleteProduct(c2)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusNotFound, he.Code)
}
