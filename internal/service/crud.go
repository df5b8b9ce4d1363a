package service

import (
	"context"

	"restaurant-service/internal/models"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/util"

	"gorm.io/gorm"
)

type entity[T any] interface {
	*T
	models.Entity
}

// ListPage is one page of a filtered list
type ListPage[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

// searchPage counts the active rows matching pred and loads one page of them.
// Pages are 1-based; a size below 1 means DefaultPageSize.
func searchPage[T any, PT entity[T]](ctx context.Context, repo *repository.Repository[T, PT], pred repository.Predicate, page, size int) (*ListPage[T], error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}

	total, err := repo.Count(ctx, pred)
	if err != nil {
		return nil, err
	}
	items, err := repo.Page(ctx, pred, page, size)
	if err != nil {
		return nil, err
	}
	return &ListPage[T]{Items: items, Total: total, Page: page, Size: size}, nil
}

// insert stages and saves a single new row
func insert[T any, PT entity[T]](ctx context.Context, db *gorm.DB, row *T) error {
	repo := repository.New[T, PT](db)
	repo.Add(row)
	return repo.SaveChanges(ctx)
}

// deleteByID physically removes the row with id. Missing rows, and inactive
// ones for lifecycle types, are left alone.
func deleteByID[T any, PT entity[T]](ctx context.Context, db *gorm.DB, id int16) error {
	repo := repository.New[T, PT](db)
	row, err := repo.GetByID(ctx, id)
	if err != nil || row == nil {
		return err
	}

	repo.Delete(row)
	return repo.SaveChanges(ctx)
}

// deactivateByID soft deletes the active row with id, if any
func deactivateByID[T any, PT entity[T]](ctx context.Context, db *gorm.DB, id int16) error {
	repo := repository.New[T, PT](db)
	row, err := repo.GetByID(ctx, id)
	if err != nil || row == nil {
		return err
	}

	if err := repo.SoftDelete(ctx, row); err != nil {
		return err
	}
	util.SoftDeletesTotal.WithLabelValues(PT(row).TableName()).Inc()
	return nil
}
