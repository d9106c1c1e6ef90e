package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce/internal/logging"
	"github.com/Skotchmaster/ecommerce/internal/models"
	"github.com/Skotchmaster/ecommerce/internal/mykafka"
	"github.com/Skotchmaster/ecommerce/internal/repo"
	"github.com/Skotchmaster/ecommerce/internal/transport"
)

// ProductIndex is the search mirror of the catalog.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string) ([]models.Product, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  ProductIndex
	Events mykafka.Publisher
}

type productFields struct {
	name        string
	price       float64
	description *string
}

func validateProduct(req transport.ProductRequest) (*productFields, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	if req.Price == nil {
		return nil, fmt.Errorf("price is required: %w", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}
	price := req.Price.InexactFloat64()
	if math.IsInf(price, 0) || math.IsNaN(price) {
		return nil, fmt.Errorf("price %s is out of range: %w", req.Price.String(), ErrValidation)
	}
	return &productFields{
		name:        *req.Name,
		price:       price,
		description: req.Description,
	}, nil
}

func (s *CatalogService) AddProduct(ctx context.Context, req transport.ProductRequest, actorID uint) (*models.Product, error) {
	f, err := validateProduct(req)
	if err != nil {
		return nil, err
	}

	prod, err := s.Repo.CreateProduct(ctx, &models.Product{
		Name:        f.name,
		Price:       f.price,
		Description: f.description,
	})
	if err != nil {
		return nil, err
	}

	s.syncIndex(ctx, prod)
	publish(ctx, s.Events, mykafka.TopicProductEvents, actorID, map[string]any{
		"type":      "product_created",
		"userID":    actorID,
		"productID": prod.ID,
		"name":      prod.Name,
		"price":     prod.Price,
	})
	return prod, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return prod, nil
}

// UpdateProduct checks existence before validating the body, so a missing
// product wins over a bad payload.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req transport.ProductRequest, actorID uint) (*models.Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	f, err := validateProduct(req)
	if err != nil {
		return nil, err
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, f.name, f.price, f.description)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	s.syncIndex(ctx, prod)
	publish(ctx, s.Events, mykafka.TopicProductEvents, actorID, map[string]any{
		"type":      "product_updated",
		"userID":    actorID,
		"productID": prod.ID,
		"name":      prod.Name,
		"price":     prod.Price,
	})
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint, actorID uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_index_delete_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProductEvents, actorID, map[string]any{
		"type":      "product_deleted",
		"userID":    actorID,
		"productID": id,
	})
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]transport.ProductSummary, error) {
	prods, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(prods), nil
}

// SearchProducts asks the search index first and falls back to the store
// when no index is configured or the index fails.
func (s *CatalogService) SearchProducts(ctx context.Context, q string) ([]transport.ProductSummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("query is required: %w", ErrValidation)
	}

	if s.Index != nil {
		prods, err := s.Index.Search(ctx, q)
		if err == nil {
			return summarize(prods), nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to store", "error", err)
	}

	prods, err := s.Repo.SearchProducts(ctx, q)
	if err != nil {
		return nil, err
	}
	return summarize(prods), nil
}

func (s *CatalogService) syncIndex(ctx context.Context, prod *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, prod); err != nil {
		logging.FromContext(ctx).Error("search_index_failed", "product_id", prod.ID, "error", err)
	}
}

func summarize(prods []models.Product) []transport.ProductSummary {
	out := make([]transport.ProductSummary, 0, len(prods))
	for _, p := range prods {
		out = append(out, transport.ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	return out
}
