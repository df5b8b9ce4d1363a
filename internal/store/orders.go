package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineView is an order line joined with its product name
type OrderLineView struct {
	OrderID     int16           `db:"pedido_id" json:"pedido_id"`
	ProductID   int16           `db:"producto_id" json:"producto_id"`
	ProductName string          `db:"producto" json:"producto"`
	Quantity    int             `db:"cantidad" json:"cantidad"`
	UnitPrice   decimal.Decimal `db:"precio_unitario" json:"precio_unitario"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
}

// SalesRow aggregates orders sharing one estado_pedido
type SalesRow struct {
	Status  int8            `db:"estado_pedido" json:"estado_pedido"`
	Orders  int64           `db:"pedidos" json:"pedidos"`
	Revenue decimal.Decimal `db:"ingresos" json:"ingresos"`
}

// GetOrderLines retrieves all lines for an order with product names
func (s *Store) GetOrderLines(ctx context.Context, orderID int16) ([]OrderLineView, error) {
	query := `
		SELECT d.pedido_id, d.producto_id, p.nombre AS producto,
		       d.cantidad, d.precio_unitario, d.subtotal
		FROM detalle_pedidos d
		JOIN productos p ON p.id = d.producto_id
		WHERE d.pedido_id = ?
		ORDER BY d.producto_id`

	var lines []OrderLineView
	err := s.db.SelectContext(ctx, &lines, s.db.Rebind(query), orderID)
	return lines, err
}

// SalesSummary groups orders created in [from, to) by status
func (s *Store) SalesSummary(ctx context.Context, from, to time.Time) ([]SalesRow, error) {
	query := `
		SELECT estado_pedido, COUNT(*) AS pedidos, COALESCE(SUM(total), 0) AS ingresos
		FROM pedidos
		WHERE fecha_creacion >= ? AND fecha_creacion < ?
		GROUP BY estado_pedido
		ORDER BY estado_pedido`

	var rows []SalesRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), from, to)
	return rows, err
}
