package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of rejected or rolled back orders",
	}, []string{"reason"})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Total number of order status changes by target status",
	}, []string{"status"})

	OrderCreateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_create_latency_seconds",
		Help:    "Latency of the order creation transaction",
		Buckets: prometheus.DefBuckets,
	})

	StockDecrementedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_units_decremented_total",
		Help: "Total number of product units taken from stock by orders",
	})

	SoftDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soft_deletes_total",
		Help: "Total number of records deactivated",
	}, []string{"table"})

	LowStockProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "low_stock_products",
		Help: "Number of active products at or below the low stock threshold",
	})

	StockAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_alerts_total",
		Help: "Total number of STOCK_LOW events emitted",
	})

	PaymentsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_recorded_total",
		Help: "Total number of payments recorded by method",
	}, []string{"method"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
