package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeOrderDeleted       = "ORDER_DELETED"
	EventTypeStockLow           = "STOCK_LOW"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published after an order and its lines are committed
type OrderCreatedEvent struct {
	BaseEvent
	OrderID    int16           `json:"order_id"`
	CustomerID int16           `json:"customer_id"`
	UserID     int16           `json:"user_id"`
	Total      decimal.Decimal `json:"total"`
	Lines      []OrderLineData `json:"lines"`
}

// OrderStatusChangedEvent published when estado_pedido changes
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID   int16 `json:"order_id"`
	OldStatus int8  `json:"old_status"`
	NewStatus int8  `json:"new_status"`
}

// OrderDeletedEvent published after an order row is removed
type OrderDeletedEvent struct {
	BaseEvent
	OrderID int16 `json:"order_id"`
}

// StockLowEvent published by the stock-alert worker
type StockLowEvent struct {
	BaseEvent
	ProductID int16  `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// OrderLineData represents line data in events
type OrderLineData struct {
	ProductID int16           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
