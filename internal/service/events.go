package service

import (
	"context"
	"time"

	"restaurant-service/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher receives order events once their transaction has committed
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error
}

func newBaseEvent(eventType string, at time.Time) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: at,
	}
}

// logPublishError keeps publish failures out of the caller's result
func logPublishError(logger *zap.Logger, eventType string, err error) {
	if err != nil {
		logger.Error("Failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
