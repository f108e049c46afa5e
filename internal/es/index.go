package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/mikedaudnr/sportstore-api/internal/models"
	"github.com/mikedaudnr/sportstore-api/internal/service"
)

// Indexer keeps the search index in step with product mutations and serves
// ranked lookups for the dedicated search operation.
type Indexer struct {
	Client *elasticsearch.Client
	Index  string
}

type productDoc struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CategoryID    uuid.UUID `json:"category_id"`
	BrandID       uuid.UUID `json:"brand_id"`
	CategoryName  string    `json:"category_name"`
	BrandName     string    `json:"brand_name"`
	Price         float64   `json:"price"`
	IsActive      bool      `json:"is_active"`
	StockQuantity int       `json:"stock_quantity"`
}

func (ix *Indexer) IndexProduct(ctx context.Context, p *models.Product) error {
	doc := productDoc{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		BrandID:       p.BrandID,
		Price:         p.Price,
		IsActive:      p.IsActive,
		StockQuantity: p.StockQuantity,
	}
	if p.Category != nil {
		doc.CategoryName = p.Category.Name
	}
	if p.Brand != nil {
		doc.BrandName = p.Brand.Name
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("es: encode product doc: %w", err)
	}

	res, err := ix.Client.Index(
		ix.Index,
		&buf,
		ix.Client.Index.WithDocumentID(p.ID.String()),
		ix.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: index product: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("es: index product: %s", res.Status())
	}
	return nil
}

func (ix *Indexer) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := ix.Client.Delete(
		ix.Index,
		id.String(),
		ix.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: delete product: %w", err)
	}
	defer res.Body.Close()

	// Deleting an unindexed product is not a failure.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es: delete product: %s", res.Status())
	}
	return nil
}

// Search runs a ranked multi_match over name, description and the related
// category/brand names, filtered to visible products that satisfy the caller's
// structural filters.
func (ix *Indexer) Search(ctx context.Context, q string, f service.SearchFilter, from, size int) (int64, []uuid.UUID, error) {
	filters := []map[string]interface{}{
		{"term": map[string]interface{}{"is_active": true}},
		{"range": map[string]interface{}{"stock_quantity": map[string]interface{}{"gt": 0}}},
	}
	if f.CategoryID != nil {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"category_id": f.CategoryID.String()},
		})
	}
	if f.BrandID != nil {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"brand_id": f.BrandID.String()},
		})
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		bounds := map[string]interface{}{}
		if f.MinPrice != nil {
			bounds["gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			bounds["lte"] = *f.MaxPrice
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"price": bounds},
		})
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     q,
						"fields":    []string{"name^2", "description", "category_name", "brand_name"},
						"fuzziness": "AUTO",
					},
				},
				"filter": filters,
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("es: encode search body: %w", err)
	}

	res, err := ix.Client.Search(
		ix.Client.Search.WithContext(ctx),
		ix.Client.Search.WithIndex(ix.Index),
		ix.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("es: search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source productDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	return r.Hits.Total.Value, ids, nil
}
