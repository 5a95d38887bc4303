package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gldesigns/leather-shop/internal/assets"
	"github.com/gldesigns/leather-shop/internal/events"
	"github.com/gldesigns/leather-shop/internal/logging"
	"github.com/gldesigns/leather-shop/internal/models"
	"github.com/gldesigns/leather-shop/internal/repo"
	"github.com/gldesigns/leather-shop/internal/search"
	"github.com/gldesigns/leather-shop/internal/transport"
)

// CatalogService owns the product mutation protocol: field validation before
// any repository write, and compensation of already-stored image files when
// a later step fails. Search and Events may be nil; both are best-effort.
type CatalogService struct {
	Repo   *repo.GormRepo
	Assets *assets.Store
	Search *search.Indexer
	Events *events.Producer
}

type productFields struct {
	name        string
	description *string
	price       float64
	stock       uint
}

// validateFields checks name/price/stock the same way for create and update.
// Stock may arrive empty and defaults to zero; price must parse and be
// strictly positive.
func validateFields(name, description, price, stock string) (*productFields, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrValidation)
	}

	parsedPrice, err := strconv.ParseFloat(price, 64)
	if err != nil || parsedPrice <= 0 {
		return nil, fmt.Errorf("%w: price must be a number greater than zero", ErrValidation)
	}

	var parsedStock uint
	if stock != "" {
		n, err := strconv.Atoi(stock)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: stock must be a non-negative integer", ErrValidation)
		}
		parsedStock = uint(n)
	}

	var desc *string
	if d := strings.TrimSpace(description); d != "" {
		desc = &d
	}

	return &productFields{
		name:        name,
		description: desc,
		price:       parsedPrice,
		stock:       parsedStock,
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) GetProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.GetProducts(ctx)
}

// CreateProduct stores the optional image first, then validates and persists
// the record. Any failure after the file hit the disk rolls the file back so
// no orphan remains. The returned product is re-fetched from the repository
// rather than echoed from the insert.
func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest, image *multipart.FileHeader) (*models.Product, error) {
	var imageURL *string
	if image != nil {
		ref, err := s.Assets.Save(image)
		if err != nil {
			return nil, err
		}
		imageURL = &ref
	}

	fields, err := validateFields(req.Name, req.Description, req.Price, req.Stock)
	if err != nil {
		s.rollback(ctx, imageURL)
		return nil, err
	}

	prod := models.Product{
		Name:        fields.name,
		Description: fields.description,
		Price:       fields.price,
		Stock:       fields.stock,
		ImageURL:    imageURL,
		Category:    req.Category,
	}
	if err := s.Repo.CreateProduct(ctx, &prod); err != nil {
		s.rollback(ctx, imageURL)
		return nil, err
	}

	created, err := s.Repo.GetProduct(ctx, prod.ID)
	if err != nil {
		s.rollback(ctx, imageURL)
		return nil, err
	}

	s.publishProduct(ctx, "product_created", created)
	s.index(ctx, created)

	return created, nil
}

// UpdateProduct replaces the product's fields. The image reference follows
// the request body: omitted keeps the current one, explicit null or empty
// clears it, anything else is stored as given. Zero affected rows after the
// pre-check means a concurrent delete won the race and reads as not found.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req transport.UpdateProductRequest) (*models.Product, error) {
	existing, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := validateFields(req.Name, req.Description, req.Price.String(), req.Stock.String())
	if err != nil {
		return nil, err
	}

	imageURL, err := req.ResolveImageURL(existing.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: image_url must be a string or null", ErrValidation)
	}

	values := map[string]any{
		"name":        fields.name,
		"description": fields.description,
		"price":       fields.price,
		"stock":       fields.stock,
		"image_url":   imageURL,
		"category":    req.Category,
	}
	if err := s.Repo.UpdateProduct(ctx, id, values); err != nil {
		return nil, err
	}

	updated, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishProduct(ctx, "product_updated", updated)
	s.index(ctx, updated)

	return updated, nil
}

// UpdateProductImage swaps the product's image for the uploaded one. The new
// file is written first, the reference persisted second, and only then is
// the old file unlinked; persistence failure rolls the new file back.
func (s *CatalogService) UpdateProductImage(ctx context.Context, id uint, image *multipart.FileHeader) (string, error) {
	newRef, err := s.Assets.Save(image)
	if err != nil {
		return "", err
	}

	existing, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		s.rollback(ctx, &newRef)
		return "", err
	}

	if err := s.Repo.UpdateProductImage(ctx, id, newRef); err != nil {
		s.rollback(ctx, &newRef)
		return "", err
	}

	if existing.ImageURL != nil {
		if err := s.Assets.Remove(*existing.ImageURL); err != nil {
			logging.FromContext(ctx).Warn("stale image not removed", "ref", *existing.ImageURL, "error", err)
		}
	}

	existing.ImageURL = &newRef
	s.publishProduct(ctx, "product_image_updated", existing)
	s.index(ctx, existing)

	return newRef, nil
}

// DeleteProduct removes the row and then best-effort unlinks the associated
// image; a failed unlink never fails the already-committed deletion.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	existing, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if existing.ImageURL != nil {
		if err := s.Assets.Remove(*existing.ImageURL); err != nil {
			logging.FromContext(ctx).Warn("orphaned image not removed", "ref", *existing.ImageURL, "error", err)
		}
	}

	s.publishProduct(ctx, "product_deleted", existing)
	s.deindex(ctx, id)

	return nil
}

// SearchProducts queries the elasticsearch index. Unavailable when no
// indexer was configured.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	if s.Search == nil {
		return 0, nil, errors.New("search is not configured")
	}
	return s.Search.Search(ctx, query, from, size)
}

// rollback deletes a file that was stored earlier in a request whose later
// steps failed. Best-effort: a leftover file is logged, never propagated.
func (s *CatalogService) rollback(ctx context.Context, ref *string) {
	if ref == nil {
		return
	}
	if err := s.Assets.Remove(*ref); err != nil {
		logging.FromContext(ctx).Warn("rollback of stored image failed", "ref", *ref, "error", err)
	}
}

func (s *CatalogService) publishProduct(ctx context.Context, eventType string, p *models.Product) {
	if s.Events == nil {
		return
	}
	event := map[string]any{
		"type":      eventType,
		"productID": p.ID,
		"name":      p.Name,
	}
	if err := s.Events.PublishEvent(ctx, events.TopicProductEvents, fmt.Sprint(p.ID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "topic", events.TopicProductEvents, "error", err)
	}
}

func (s *CatalogService) index(ctx context.Context, p *models.Product) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("search index failed", "productID", p.ID, "error", err)
	}
}

func (s *CatalogService) deindex(ctx context.Context, id uint) {
	if s.Search == nil {
		return
	}
	if err := s.Search.DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Error("search deindex failed", "productID", id, "error", err)
	}
}
