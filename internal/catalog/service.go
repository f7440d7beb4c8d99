package catalog

import (
	"context"
	"strings"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"
)

type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// Add registers a catalog item. Names are unique regardless of case.
func (s *Service) Add(ctx context.Context, name string, category models.ItemCategory) (*models.VegetableItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("item name is required")
	}
	if !category.Valid() {
		return nil, apperr.Validation("category must be vegetable or fruit")
	}

	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if strings.EqualFold(it.Name, name) {
			return nil, apperr.Conflict("%s is already in the catalog", it.Name)
		}
	}

	item := models.VegetableItem{Name: name, Category: category}
	if err := store.Create(ctx, s.store, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) List(ctx context.Context) ([]models.VegetableItem, error) {
	return store.All[models.VegetableItem](ctx, s.store, store.Asc("name"))
}
