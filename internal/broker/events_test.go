package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"restaurant-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedWrite struct {
	key   string
	event interface{}
}

type captureWriter struct {
	writes []capturedWrite
}

func (w *captureWriter) PublishEvent(_ context.Context, key string, event interface{}) error {
	w.writes = append(w.writes, capturedWrite{key: key, event: event})
	return nil
}

func TestPublisherKeys(t *testing.T) {
	ctx := context.Background()
	w := &captureWriter{}
	ep := NewEventPublisher(w)

	require.NoError(t, ep.PublishOrderCreated(ctx, &models.OrderCreatedEvent{OrderID: 7}))
	require.NoError(t, ep.PublishOrderStatusChanged(ctx, &models.OrderStatusChangedEvent{OrderID: 7}))
	require.NoError(t, ep.PublishOrderDeleted(ctx, &models.OrderDeletedEvent{OrderID: 8}))
	require.NoError(t, ep.PublishStockLow(ctx, &models.StockLowEvent{ProductID: 3}))

	require.Len(t, w.writes, 4)
	assert.Equal(t, "order-7", w.writes[0].key)
	assert.Equal(t, "order-7", w.writes[1].key)
	assert.Equal(t, "order-8", w.writes[2].key)
	assert.Equal(t, "product-3", w.writes[3].key)
}

func TestNopWriter(t *testing.T) {
	ep := NewEventPublisher(NopWriter{})
	assert.NoError(t, ep.PublishOrderDeleted(context.Background(), &models.OrderDeletedEvent{OrderID: 1}))
}

func TestHandleMessageRoutesOrderCreated(t *testing.T) {
	event := models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Date(2025, 4, 2, 19, 45, 0, 0, time.UTC),
		},
		OrderID: 12,
		Total:   decimal.RequireFromString("34.25"),
		Lines: []models.OrderLineData{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("15.50")},
		},
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	var got *models.OrderCreatedEvent
	eh := NewEventHandler()
	eh.OnOrderCreated(func(_ context.Context, e *models.OrderCreatedEvent) error {
		got = e
		return nil
	})

	require.NoError(t, eh.HandleMessage(context.Background(), kafka.Message{Value: body}))
	require.NotNil(t, got)
	assert.Equal(t, "evt-1", got.EventID)
	assert.Equal(t, int16(12), got.OrderID)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("34.25")))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 2, got.Lines[0].Quantity)
}

func TestHandleMessageSkipsOtherTypes(t *testing.T) {
	called := false
	eh := NewEventHandler()
	eh.OnOrderCreated(func(context.Context, *models.OrderCreatedEvent) error {
		called = true
		return nil
	})

	body := []byte(`{"event_id":"evt-2","event_type":"ORDER_DELETED","order_id":3}`)
	require.NoError(t, eh.HandleMessage(context.Background(), kafka.Message{Value: body}))
	assert.False(t, called)

	assert.Error(t, eh.HandleMessage(context.Background(), kafka.Message{Value: []byte("not json")}))
}
