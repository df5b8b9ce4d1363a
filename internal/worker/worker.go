package worker

import (
	"context"
	"fmt"
	"time"

	"restaurant-service/internal/broker"
	"restaurant-service/internal/models"
	"restaurant-service/internal/store"
	"restaurant-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockAlerter receives STOCK_LOW events
type StockAlerter interface {
	PublishStockLow(ctx context.Context, event *models.StockLowEvent) error
}

// StockAlertWorker watches created orders and raises an alert for every
// ordered product that fell to the low stock threshold
type StockAlertWorker struct {
	consumer  *broker.Consumer
	handler   *broker.EventHandler
	store     *store.Store
	alerter   StockAlerter
	threshold int
	logger    *zap.Logger
}

// NewStockAlertWorker creates a new stock alert worker. consumer may be nil
// when orders are processed by calling HandleOrderCreated directly.
func NewStockAlertWorker(
	consumer *broker.Consumer,
	store *store.Store,
	alerter StockAlerter,
	threshold int,
) *StockAlertWorker {
	w := &StockAlertWorker{
		consumer:  consumer,
		handler:   broker.NewEventHandler(),
		store:     store,
		alerter:   alerter,
		threshold: threshold,
		logger:    util.GetLogger(),
	}
	w.handler.OnOrderCreated(w.HandleOrderCreated)
	return w
}

// Start consumes until ctx is cancelled
func (w *StockAlertWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting stock alert worker", zap.Int("threshold", w.threshold))
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop stops the worker
func (w *StockAlertWorker) Stop() error {
	w.logger.Info("Stopping stock alert worker")
	return w.consumer.Close()
}

// HandleOrderCreated checks the stock of every product in the order. Each
// event is processed at most once.
func (w *StockAlertWorker) HandleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	ctx, span := util.StartSpan(ctx, "StockAlertWorker.HandleOrderCreated")
	defer span.End()

	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	ids := make([]int16, 0, len(event.Lines))
	for _, line := range event.Lines {
		ids = append(ids, line.ProductID)
	}

	levels, err := w.store.GetStockLevels(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to get stock levels: %w", err)
	}

	now := time.Now().UTC()
	for _, level := range levels {
		if level.Stock > w.threshold {
			continue
		}

		w.logger.Warn("Product stock is low",
			zap.Int16("product_id", level.ID),
			zap.String("name", level.Name),
			zap.Int("stock", level.Stock),
			zap.Int16("order_id", event.OrderID))

		alert := &models.StockLowEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeStockLow,
				Timestamp: now,
			},
			ProductID: level.ID,
			Name:      level.Name,
			Stock:     level.Stock,
			Threshold: w.threshold,
		}
		if err := w.alerter.PublishStockLow(ctx, alert); err != nil {
			return fmt.Errorf("failed to publish stock alert: %w", err)
		}
		util.StockAlertsTotal.Inc()
	}

	if low, err := w.store.LowStockProducts(ctx, w.threshold); err == nil {
		util.LowStockProducts.Set(float64(len(low)))
	}

	if err := w.store.MarkEventProcessed(ctx, event.EventID, event.EventType, now); err != nil {
		return err
	}
	return nil
}
