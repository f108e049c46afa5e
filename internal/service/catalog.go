package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mikedaudnr/sportstore-api/internal/models"
	"github.com/mikedaudnr/sportstore-api/internal/repo"
	"github.com/mikedaudnr/sportstore-api/internal/transport"
	"github.com/mikedaudnr/sportstore-api/internal/util"
)

var ErrValidation = errors.New("validation error")

const (
	// MinSearchLength is enforced on the dedicated search operation only.
	MinSearchLength = 2
	FeaturedLimit   = 8
)

// sortColumns is the allow-list mapping caller sort keys to order columns.
// Anything outside it falls back to the default ordering.
var sortColumns = map[string]string{
	"created_at":     "created_at",
	"price":          "price",
	"name":           "name",
	"rating":         "average_rating",
	"average_rating": "average_rating",
}

// ListRequest carries raw query parameters; the service turns them into a
// validated repo.ProductFilter. Empty or malformed optional values mean the
// corresponding filter is simply not applied.
type ListRequest struct {
	Search    string
	Category  string
	Brand     string
	MinPrice  string
	MaxPrice  string
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

type Page struct {
	Items      []models.Product
	Page       int
	PerPage    int
	Total      int64
	TotalPages int64
}

// SearchFilter carries the structural filters the search backend must apply
// alongside the text match; both backends enforce the same predicate set.
type SearchFilter struct {
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	MinPrice   *float64
	MaxPrice   *float64
}

// Searcher is the optional full-text backend for the dedicated search
// operation. It returns ranked product ids for a query page.
type Searcher interface {
	Search(ctx context.Context, q string, f SearchFilter, from, size int) (int64, []uuid.UUID, error)
}

type CatalogService struct {
	Repo     *repo.GormRepo
	Searcher Searcher
}

func (s *CatalogService) ListProducts(ctx context.Context, req ListRequest) (*Page, error) {
	if req.PerPage == 0 {
		req.PerPage = util.DefaultPageSize
	}
	f := s.buildFilter(req, false)

	page, perPage, offset, limit := normalizePage(req.Page, req.PerPage)
	f.Offset, f.Limit = offset, limit

	total, items, err := s.Repo.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: util.TotalPages(total, perPage),
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.FeaturedProducts(ctx, FeaturedLimit)
}

// SearchProducts runs the dedicated search operation: q must be at least
// MinSearchLength characters, matches extend to category and brand names, and
// the index backend is used when one is configured.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, req ListRequest) (*Page, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinSearchLength {
		return nil, fmt.Errorf("%w: search query must be at least %d characters", ErrValidation, MinSearchLength)
	}

	if req.PerPage == 0 {
		req.PerPage = util.SearchPageSize
	}
	page, perPage, offset, limit := normalizePage(req.Page, req.PerPage)

	req.Search = q
	f := s.buildFilter(req, true)
	f.Offset, f.Limit = offset, limit

	if s.Searcher != nil {
		return s.searchIndexed(ctx, q, f, page, perPage, offset, limit)
	}

	total, items, err := s.Repo.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: util.TotalPages(total, perPage),
	}, nil
}

func (s *CatalogService) searchIndexed(ctx context.Context, q string, f repo.ProductFilter, page, perPage, offset, limit int) (*Page, error) {
	total, ids, err := s.Searcher.Search(ctx, q, SearchFilter{
		CategoryID: f.CategoryID,
		BrandID:    f.BrandID,
		MinPrice:   f.MinPrice,
		MaxPrice:   f.MaxPrice,
	}, offset, limit)
	if err != nil {
		return nil, err
	}

	items, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Restore index ranking; ProductsByIDs gives no order guarantee.
	byID := make(map[uuid.UUID]models.Product, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	ordered := make([]models.Product, 0, len(items))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return &Page{
		Items:      ordered,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: util.TotalPages(total, perPage),
	}, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if err := validateProductFields(req.Name, req.Price, req.SalePrice, req.StockQuantity); err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	prod := models.Product{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		SalePrice:       req.SalePrice,
		SKU:             req.SKU,
		StockQuantity:   req.StockQuantity,
		IsFeatured:      req.IsFeatured,
		IsActive:        active,
		CategoryID:      req.CategoryID,
		BrandID:         req.BrandID,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	}

	return s.Repo.CreateProduct(ctx, &prod)
}

func (s *CatalogService) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id uuid.UUID) (*models.Product, error) {
	if req.Price != nil && *req.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if req.SalePrice != nil && *req.SalePrice < 0 {
		return nil, fmt.Errorf("%w: sale price cannot be negative", ErrValidation)
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity cannot be negative", ErrValidation)
	}

	return s.Repo.PatchProduct(ctx, req, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.Repo.DeleteProduct(ctx, id)
}

func validateProductFields(name string, price float64, salePrice *float64, stock int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if salePrice != nil && (*salePrice < 0 || *salePrice > price) {
		return fmt.Errorf("%w: sale price must be between 0 and price", ErrValidation)
	}
	if stock < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", ErrValidation)
	}
	return nil
}

func (s *CatalogService) buildFilter(req ListRequest, matchRelated bool) repo.ProductFilter {
	f := repo.ProductFilter{
		Search:       strings.TrimSpace(req.Search),
		MatchRelated: matchRelated,
	}

	if id, err := uuid.Parse(req.Category); err == nil {
		f.CategoryID = &id
	}
	if id, err := uuid.Parse(req.Brand); err == nil {
		f.BrandID = &id
	}
	if v, err := strconv.ParseFloat(req.MinPrice, 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(req.MaxPrice, 64); err == nil {
		f.MaxPrice = &v
	}

	f.SortColumn = "created_at"
	f.SortDesc = true
	if col, ok := sortColumns[strings.ToLower(req.SortBy)]; ok {
		f.SortColumn = col
	}
	if strings.EqualFold(req.SortOrder, "asc") {
		f.SortDesc = false
	}

	return f
}

func normalizePage(page, perPage int) (p, size, offset, limit int) {
	if page < 1 {
		page = 1
	}
	offset, limit = util.Calculate(page, perPage)
	return page, limit, offset, limit
}
