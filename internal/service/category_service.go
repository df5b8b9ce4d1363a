package service

import (
	"context"
	"fmt"
	"strings"

	"restaurant-service/internal/models"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/store"
)

// CategoryService manages menu categories
type CategoryService struct {
	store *store.Store
}

// NewCategoryService creates a new category service
func NewCategoryService(store *store.Store) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	return repository.New[models.Category](s.store.ORM()).GetAll(ctx)
}

func (s *CategoryService) GetCategoryByID(ctx context.Context, id int16) (*models.Category, error) {
	return repository.New[models.Category](s.store.ORM()).GetByID(ctx, id)
}

func (s *CategoryService) AddCategory(ctx context.Context, c *models.Category) error {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalidArgument)
	}
	c.ID = 0
	return insert[models.Category](ctx, s.store.ORM(), c)
}

// UpdateCategory replaces a category; a missing one is ignored
func (s *CategoryService) UpdateCategory(ctx context.Context, c *models.Category) error {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalidArgument)
	}

	repo := repository.New[models.Category](s.store.ORM())
	current, err := repo.GetByID(ctx, c.ID)
	if err != nil || current == nil {
		return err
	}

	repo.Update(c)
	return repo.SaveChanges(ctx)
}

// DeleteCategory fails while products still reference the category
func (s *CategoryService) DeleteCategory(ctx context.Context, id int16) error {
	return deleteByID[models.Category](ctx, s.store.ORM(), id)
}
