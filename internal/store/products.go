package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"restaurant-service/internal/models"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm/clause"
)

// StockLevel is the stock snapshot of one product
type StockLevel struct {
	ID    int16  `db:"id" json:"id"`
	Name  string `db:"nombre" json:"nombre"`
	Stock int    `db:"stock" json:"stock"`
}

// LowStockProducts lists active products whose stock is at or below threshold
func (s *Store) LowStockProducts(ctx context.Context, threshold int) ([]StockLevel, error) {
	var levels []StockLevel
	err := s.db.SelectContext(ctx, &levels, s.db.Rebind(`
		SELECT id, nombre, stock
		FROM productos
		WHERE estado = ? AND stock <= ?
		ORDER BY stock, id`), models.StatusActive, threshold)
	return levels, err
}

// GetStockLevels retrieves the stock of the given products
func (s *Store) GetStockLevels(ctx context.Context, ids []int16) ([]StockLevel, error) {
	if len(ids) == 0 {
		return []StockLevel{}, nil
	}

	query, args, err := sqlx.In("SELECT id, nombre, stock FROM productos WHERE id IN (?) ORDER BY id", ids)
	if err != nil {
		return nil, err
	}

	var levels []StockLevel
	err = s.db.SelectContext(ctx, &levels, s.db.Rebind(query), args...)
	return levels, err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var id string
	err := s.db.GetContext(ctx, &id,
		s.db.Rebind("SELECT event_id FROM processed_events WHERE event_id = ?"), eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkEventProcessed marks an event as processed. Marking twice is not an error.
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string, at time.Time) error {
	err := s.orm.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProcessedEvent{EventID: eventID, EventType: eventType, ProcessedAt: at}).Error
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}
