package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mikedaudnr/sportstore-api/internal/es"
	"github.com/mikedaudnr/sportstore-api/internal/logging"
	"github.com/mikedaudnr/sportstore-api/internal/models"
	"github.com/mikedaudnr/sportstore-api/internal/mykafka"
	"github.com/mikedaudnr/sportstore-api/internal/service"
	"github.com/mikedaudnr/sportstore-api/internal/transport"
	"github.com/mikedaudnr/sportstore-api/internal/util"
)

type CatalogHTTP struct {
	Svc      *service.CatalogService
	Producer *mykafka.Producer
	Indexer  *es.Indexer
}

func (h *CatalogHTTP) publish(c echo.Context, productID uuid.UUID, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", productID.String(), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_failed", "error", err)
	}
}

func (h *CatalogHTTP) reindex(c echo.Context, prod *models.Product) {
	if h.Indexer == nil {
		return
	}
	if err := h.Indexer.IndexProduct(c.Request().Context(), prod); err != nil {
		logging.FromContext(c.Request().Context()).Error("es_index_failed", "product_id", prod.ID, "error", err)
	}
}

func listRequest(c echo.Context) service.ListRequest {
	search := c.QueryParam("search")
	if search == "" {
		search = c.QueryParam("q")
	}
	return service.ListRequest{
		Search:    search,
		Category:  c.QueryParam("category"),
		Brand:     c.QueryParam("brand"),
		MinPrice:  c.QueryParam("min_price"),
		MaxPrice:  c.QueryParam("max_price"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Page:      util.ParseIntDefault(c.QueryParam("page"), 1),
		PerPage:   util.ParseIntDefault(c.QueryParam("per_page"), 0),
	}
}

func pageResponse(page *service.Page) transport.ProductPageResponse {
	return transport.ProductPageResponse{
		Data: transport.NewProductCollection(page.Items),
		Meta: transport.PageMeta{
			Page:       page.Page,
			PerPage:    page.PerPage,
			Total:      page.Total,
			TotalPages: page.TotalPages,
			HasPrev:    page.Page > 1,
			HasNext:    int64(page.Page) < page.TotalPages,
		},
	}
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_products")

	page, err := h.Svc.ListProducts(ctx, listRequest(c))
	if err != nil {
		l.Error("list_products_failed", "status", 503, "reason", "cannot query products", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cannot query products")
	}

	l.Info("list_products_success", "total", page.Total)
	return c.JSON(http.StatusOK, pageResponse(page))
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("get_product_failed", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("get_product_failed", "status", 503, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cannot get product")
	}

	return c.JSON(http.StatusOK, transport.NewProductResource(product))
}

func (h *CatalogHTTP) FeaturedProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.featured_products")

	items, err := h.Svc.FeaturedProducts(ctx)
	if err != nil {
		l.Error("featured_products_failed", "status", 503, "reason", "cannot query products", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cannot query products")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": transport.NewProductCollection(items),
	})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	page, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), listRequest(c))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_products_failed", "status", 400, "reason", err.Error())
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("search_products_failed", "status", 503, "reason", "cannot search products", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cannot search products")
	}

	l.Info("search_products_success", "total", page.Total)
	return c.JSON(http.StatusOK, pageResponse(page))
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("product_create_failed", "status", 400, "reason", err.Error())
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("product_create_failed", "status", 503, "reason", "cannot add product", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cannot add product")
	}

	h.publish(c, prod.ID, map[string]any{
		"type":      "product_created",
		"productID": prod.ID.String(),
		"name":      prod.Name,
	})
	h.reindex(c, prod)

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, transport.NewProductResource(prod))
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		l.Warn("product_patch_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_patch_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Svc.PatchProduct(ctx, req, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("product_patch_failed", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		if errors.Is(err, service.ErrValidation) {
			l.Warn("product_patch_failed", "status", 400, "reason", err.Error())
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("product_patch_failed", "status", 503, "reason", "cannot update product", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cannot update product")
	}

	h.publish(c, prod.ID, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID.String(),
		"name":      prod.Name,
	})
	h.reindex(c, prod)

	l.Info("patch_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, transport.NewProductResource(prod))
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		l.Warn("product_delete_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("product_delete_failed", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("product_delete_failed", "status", 503, "reason", "cannot delete product", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cannot delete product")
	}

	h.publish(c, id, map[string]any{
		"type":      "product_deleted",
		"productID": id.String(),
	})
	if h.Indexer != nil {
		if err := h.Indexer.DeleteProduct(c.Request().Context(), id); err != nil {
			logging.FromContext(ctx).Error("es_delete_failed", "product_id", id, "error", err)
		}
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
