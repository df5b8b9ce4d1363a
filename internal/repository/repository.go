package repository

import (
	"context"
	"errors"
	"fmt"

	"restaurant-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Predicate narrows a query. It has the shape of a gorm scope.
type Predicate func(db *gorm.DB) *gorm.DB

// Where builds a Predicate from a gorm condition
func Where(query interface{}, args ...interface{}) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

// All matches every row
func All() Predicate {
	return func(db *gorm.DB) *gorm.DB { return db }
}

type opKind int

const (
	opAdd opKind = iota
	opUpdate
	opDelete
)

type pendingOp[T any] struct {
	kind   opKind
	entity *T
}

// Repository is a unit of work over one table.
//
// Add, Update and Delete only stage changes; SaveChanges applies them in one
// transaction. When *T implements models.Lifecycle, GetByID, Find, Count and
// Page only see active rows. GetAll never filters.
//
// A Repository is meant to live for a single operation and is not safe for
// concurrent use.
type Repository[T any, PT interface {
	*T
	models.Entity
}] struct {
	db        *gorm.DB
	lifecycle bool
	pending   []pendingOp[T]
}

// New creates a repository for T bound to db
func New[T any, PT interface {
	*T
	models.Entity
}](db *gorm.DB) *Repository[T, PT] {
	_, lifecycle := any(PT(new(T))).(models.Lifecycle)
	return &Repository[T, PT]{
		db:        db,
		lifecycle: lifecycle,
	}
}

// WithTx returns a repository sharing nothing but the table with r, bound to tx
func (r *Repository[T, PT]) WithTx(tx *gorm.DB) *Repository[T, PT] {
	return &Repository[T, PT]{
		db:        tx,
		lifecycle: r.lifecycle,
	}
}

// HasLifecycle reports whether T carries a status flag
func (r *Repository[T, PT]) HasLifecycle() bool {
	return r.lifecycle
}

func (r *Repository[T, PT]) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(PT(new(T)))
}

func (r *Repository[T, PT]) active(db *gorm.DB) *gorm.DB {
	if !r.lifecycle {
		return db
	}
	return db.Where(clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: models.StatusColumn},
		Value:  models.StatusActive,
	})
}

// GetAll returns every row regardless of status
func (r *Repository[T, PT]) GetAll(ctx context.Context) ([]T, error) {
	var rows []T
	if err := r.table(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", PT(new(T)).TableName(), err)
	}
	return rows, nil
}

// GetByID returns nil when the row is missing or inactive
func (r *Repository[T, PT]) GetByID(ctx context.Context, id int16) (*T, error) {
	if id <= 0 {
		return nil, nil
	}

	var row T
	err := r.active(r.table(ctx)).Where(clause.Eq{
		Column: clause.PrimaryColumn,
		Value:  id,
	}).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", PT(new(T)).TableName(), id, err)
	}
	return &row, nil
}

// Find returns the active rows matching pred
func (r *Repository[T, PT]) Find(ctx context.Context, pred Predicate) ([]T, error) {
	var rows []T
	if err := r.active(r.table(ctx)).Scopes(pred).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", PT(new(T)).TableName(), err)
	}
	return rows, nil
}

// Count returns the number of active rows matching pred
func (r *Repository[T, PT]) Count(ctx context.Context, pred Predicate) (int64, error) {
	var n int64
	if err := r.active(r.table(ctx)).Scopes(pred).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", PT(new(T)).TableName(), err)
	}
	return n, nil
}

// Page returns one page of the active rows matching pred, ordered by primary key.
// Pages are 1-based.
func (r *Repository[T, PT]) Page(ctx context.Context, pred Predicate, page, size int) ([]T, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	var rows []T
	err := r.active(r.table(ctx)).
		Scopes(pred).
		Order(clause.OrderByColumn{Column: clause.PrimaryColumn}).
		Offset((page - 1) * size).
		Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to page %s: %w", PT(new(T)).TableName(), err)
	}
	return rows, nil
}

// Add stages an insert
func (r *Repository[T, PT]) Add(entity *T) {
	r.pending = append(r.pending, pendingOp[T]{kind: opAdd, entity: entity})
}

// Update stages a full-row replace
func (r *Repository[T, PT]) Update(entity *T) {
	r.pending = append(r.pending, pendingOp[T]{kind: opUpdate, entity: entity})
}

// Delete stages a physical removal
func (r *Repository[T, PT]) Delete(entity *T) {
	r.pending = append(r.pending, pendingOp[T]{kind: opDelete, entity: entity})
}

// Pending returns the number of staged operations
func (r *Repository[T, PT]) Pending() int {
	return len(r.pending)
}

// SoftDelete marks entity inactive and persists it at once.
// Types without a status flag are left untouched.
func (r *Repository[T, PT]) SoftDelete(ctx context.Context, entity *T) error {
	lc, ok := any(PT(entity)).(models.Lifecycle)
	if !ok {
		return nil
	}

	lc.SetActive(false)
	err := r.db.WithContext(ctx).
		Model(PT(entity)).
		UpdateColumn(models.StatusColumn, models.StatusInactive).Error
	if err != nil {
		return fmt.Errorf("failed to soft delete %s: %w", PT(entity).TableName(), err)
	}
	return nil
}

// SaveChanges applies every staged operation in one transaction.
// On failure nothing is committed and the staged operations are kept.
func (r *Repository[T, PT]) SaveChanges(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range r.pending {
			if err := apply(tx, op); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.pending = r.pending[:0]
	return nil
}

func apply[T any](tx *gorm.DB, op pendingOp[T]) error {
	q := tx.Omit(clause.Associations)

	var err error
	switch op.kind {
	case opAdd:
		err = q.Create(op.entity).Error
		if err != nil {
			err = fmt.Errorf("failed to insert: %w", err)
		}
	case opUpdate:
		err = q.Save(op.entity).Error
		if err != nil {
			err = fmt.Errorf("failed to update: %w", err)
		}
	case opDelete:
		err = q.Delete(op.entity).Error
		if err != nil {
			err = fmt.Errorf("failed to delete: %w", err)
		}
	}
	return err
}
