package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"restaurant-service/internal/service"
	"restaurant-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Pinger is a dependency the readiness check pings
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the domain services the handlers call
type Services struct {
	Orders     *service.OrderService
	Products   *service.ProductService
	Customers  *service.CustomerService
	Categories *service.CategoryService
	Couriers   *service.CourierService
	Payments   *service.PaymentService
	Users      *service.UserService
}

// Handler contains HTTP handlers
type Handler struct {
	svc     Services
	checks  map[string]Pinger
	limiter *rate.Limiter
	logger  *zap.Logger

	lowStock int
}

// DefaultLowStockThreshold is used by /products/low-stock when no threshold is given
const DefaultLowStockThreshold = 5

// NewHandler creates a new HTTP handler. checks are pinged by /ready;
// limiter may be nil to disable request throttling.
func NewHandler(svc Services, checks map[string]Pinger, limiter *rate.Limiter) *Handler {
	return &Handler{
		svc:     svc,
		checks:  checks,
		limiter: limiter,
		logger:  util.GetLogger(),

		lowStock: DefaultLowStockThreshold,
	}
}

// SetLowStockThreshold changes the default threshold of /products/low-stock
func (h *Handler) SetLowStockThreshold(n int) {
	h.lowStock = n
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	if h.limiter != nil {
		v1.Use(rateLimitMiddleware(h.limiter))
	}

	categories := v1.Group("/categories")
	{
		categories.GET("", h.listCategories)
		categories.POST("", h.createCategory)
		categories.GET("/:id", h.getCategory)
		categories.PUT("/:id", h.updateCategory)
		categories.DELETE("/:id", h.deleteCategory)
	}

	products := v1.Group("/products")
	{
		products.GET("", h.listProducts)
		products.POST("", h.createProduct)
		products.GET("/low-stock", h.lowStockProducts)
		products.GET("/:id", h.getProduct)
		products.PUT("/:id", h.updateProduct)
		products.DELETE("/:id", h.deleteProduct)
		products.POST("/:id/deactivate", h.deactivateProduct)
	}

	customers := v1.Group("/customers")
	{
		customers.GET("", h.listCustomers)
		customers.POST("", h.createCustomer)
		customers.GET("/:id", h.getCustomer)
		customers.PUT("/:id", h.updateCustomer)
		customers.DELETE("/:id", h.deleteCustomer)
		customers.POST("/:id/deactivate", h.deactivateCustomer)
		customers.GET("/:id/addresses", h.listAddresses)
		customers.POST("/:id/addresses", h.createAddress)
	}

	orders := v1.Group("/orders")
	{
		orders.GET("", h.listOrders)
		orders.POST("", h.createOrder)
		orders.GET("/:id", h.getOrder)
		orders.PUT("/:id", h.updateOrder)
		orders.DELETE("/:id", h.deleteOrder)
		orders.PATCH("/:id/status", h.updateOrderStatus)
		orders.PATCH("/:id/courier", h.assignCourier)
		orders.GET("/:id/payments", h.listPayments)
		orders.POST("/:id/payments", h.createPayment)
	}

	v1.PATCH("/payments/:id/status", h.updatePaymentStatus)

	couriers := v1.Group("/couriers")
	{
		couriers.GET("", h.listCouriers)
		couriers.POST("", h.createCourier)
		couriers.GET("/:id", h.getCourier)
		couriers.PUT("/:id", h.updateCourier)
		couriers.POST("/:id/deactivate", h.deactivateCourier)
	}

	users := v1.Group("/users")
	{
		users.GET("", h.listUsers)
		users.POST("", h.createUser)
		users.POST("/authenticate", h.authenticate)
		users.GET("/:id", h.getUser)
		users.POST("/:id/deactivate", h.deactivateUser)
	}

	v1.GET("/reports/sales", h.salesReport)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, dep := range h.checks {
		if err := dep.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"details": failed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// parseID reads the :id path parameter, answering 400 when it is not a small integer
func parseID(c *gin.Context) (int16, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 16)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return int16(id), true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	return true
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

// respondError maps service errors onto HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrDuplicateSubmission):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":   http.StatusText(status),
		"details": err.Error(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

// rateLimitMiddleware rejects requests once the shared token bucket is empty
func rateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}
		c.Next()
	}
}
