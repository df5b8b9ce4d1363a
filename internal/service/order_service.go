package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"restaurant-service/internal/models"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/store"
	"restaurant-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const submitLockTTL = 30 * time.Second

// SubmissionGuard deduplicates order submissions that share an idempotency key
type SubmissionGuard interface {
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
	GetIdempotencyKey(ctx context.Context, key string) (string, bool, error)
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// OrderService handles order business logic
type OrderService struct {
	store          *store.Store
	guard          SubmissionGuard
	events         EventPublisher
	clock          Clock
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewOrderService creates a new order service. guard and events may be nil.
func NewOrderService(
	store *store.Store,
	guard SubmissionGuard,
	events EventPublisher,
	clock Clock,
	idempotencyTTL time.Duration,
) *OrderService {
	return &OrderService{
		store:          store,
		guard:          guard,
		events:         events,
		clock:          clock,
		idempotencyTTL: idempotencyTTL,
		logger:         util.GetLogger(),
	}
}

// OrderDetail is an order with its lines and active payments
type OrderDetail struct {
	Order    *models.Order         `json:"pedido"`
	Lines    []store.OrderLineView `json:"detalles"`
	Payments []models.Payment      `json:"pagos"`
}

// SubmitResult tells the caller whether the order was created by this call
type SubmitResult struct {
	Order    *models.Order
	Replayed bool
}

// GetAllOrders returns every order
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return repository.New[models.Order](s.store.ORM()).GetAll(ctx)
}

// GetOrderByID returns nil when the order does not exist
func (s *OrderService) GetOrderByID(ctx context.Context, id int16) (*models.Order, error) {
	return repository.New[models.Order](s.store.ORM()).GetByID(ctx, id)
}

// GetOrderDetail loads an order with its lines and payments
func (s *OrderService) GetOrderDetail(ctx context.Context, id int16) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrderDetail")
	defer span.End()

	order, err := s.GetOrderByID(ctx, id)
	if err != nil || order == nil {
		return nil, err
	}

	lines, err := s.store.GetOrderLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order lines: %w", err)
	}

	payments, err := repository.New[models.Payment](s.store.ORM()).
		Find(ctx, repository.Where("pedido_id = ?", id))
	if err != nil {
		return nil, err
	}

	return &OrderDetail{Order: order, Lines: lines, Payments: payments}, nil
}

// SubmitOrder creates an order at most once per idempotency key. A repeated
// key returns the order created by the first call.
func (s *OrderService) SubmitOrder(ctx context.Context, key string, order *models.Order, lines []models.OrderLine) (*SubmitResult, error) {
	if key == "" || s.guard == nil {
		created, err := s.AddOrder(ctx, order, lines)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{Order: created}, nil
	}

	if existing, err := s.replay(ctx, key); err != nil || existing != nil {
		if err != nil {
			return nil, err
		}
		s.logger.Info("Duplicate order request detected",
			zap.String("idempotency_key", key),
			zap.Int16("order_id", existing.ID))
		return &SubmitResult{Order: existing, Replayed: true}, nil
	}

	lockKey := "order-submit:" + key
	locked, err := s.guard.AcquireLock(ctx, lockKey, submitLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire submit lock: %w", err)
	}
	if !locked {
		return nil, ErrDuplicateSubmission
	}
	defer func() {
		if err := s.guard.ReleaseLock(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logger.Warn("Failed to release submit lock", zap.String("lock", lockKey), zap.Error(err))
		}
	}()

	// a request holding the lock may have finished since the first check
	existing, err := s.replay(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("Duplicate order request detected",
			zap.String("idempotency_key", key),
			zap.Int16("order_id", existing.ID))
		return &SubmitResult{Order: existing, Replayed: true}, nil
	}

	created, err := s.AddOrder(ctx, order, lines)
	if err != nil {
		return nil, err
	}

	if err := s.guard.SetIdempotencyKey(ctx, key, created.ID, s.idempotencyTTL); err != nil {
		s.logger.Error("Failed to store idempotency key",
			zap.String("idempotency_key", key),
			zap.Error(err))
	}

	return &SubmitResult{Order: created}, nil
}

func (s *OrderService) replay(ctx context.Context, key string) (*models.Order, error) {
	value, found, err := s.guard.GetIdempotencyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if !found {
		return nil, nil
	}

	id, err := strconv.ParseInt(value, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("corrupt idempotency value %q: %w", value, err)
	}
	// a deleted order lets the key be reused
	return s.GetOrderByID(ctx, int16(id))
}

// AddOrder persists order with its lines and takes the ordered quantities
// out of stock, all in one transaction. Status is always set to created and
// Total to the sum of the line subtotals.
//
// On success order and lines carry the stored values. On failure both are
// left as the caller passed them.
func (s *OrderService) AddOrder(ctx context.Context, order *models.Order, lines []models.OrderLine) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.AddOrder")
	defer span.End()

	if order == nil {
		return nil, fmt.Errorf("%w: order is required", ErrInvalidArgument)
	}
	savedOrder := *order
	savedLines := slices.Clone(lines)
	if err := validateLines(lines); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_lines").Inc()
		return nil, err
	}

	if order.CustomerName == "" {
		customer, err := repository.New[models.Customer](s.store.ORM()).GetByID(ctx, order.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			util.OrdersFailedTotal.WithLabelValues("invalid_customer").Inc()
			return nil, fmt.Errorf("%w: customer %d not found", ErrInvalidArgument, order.CustomerID)
		}
		order.CustomerName = customer.Name
		order.CustomerSurname = customer.Surname
	}

	now := s.clock.Now()
	order.ID = 0
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Status = models.OrderStatusCreated

	start := time.Now()
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		return s.writeOrder(ctx, tx, order, lines, now)
	})
	util.OrderCreateLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		*order = savedOrder
		copy(lines, savedLines)
		switch {
		case errors.Is(err, ErrInsufficientStock):
			util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
		case errors.Is(err, ErrInvalidArgument):
			util.OrdersFailedTotal.WithLabelValues("invalid_lines").Inc()
		default:
			util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		}
		return nil, err
	}

	order.Lines = lines
	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int16("order_id", order.ID),
		zap.Int16("customer_id", order.CustomerID),
		zap.Int("lines", len(lines)),
		zap.String("total", order.Total.StringFixed(2)))

	s.publishCreated(ctx, order, lines)
	return order, nil
}

func validateLines(lines []models.OrderLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: order must contain at least one line", ErrInvalidArgument)
	}

	seen := make(map[int16]bool, len(lines))
	for _, line := range lines {
		if line.ProductID <= 0 {
			return fmt.Errorf("%w: line product id must be positive", ErrInvalidArgument)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity for product %d must be positive", ErrInvalidArgument, line.ProductID)
		}
		if line.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: unit price for product %d is negative", ErrInvalidArgument, line.ProductID)
		}
		if seen[line.ProductID] {
			return fmt.Errorf("%w: product %d appears twice", ErrInvalidArgument, line.ProductID)
		}
		seen[line.ProductID] = true
	}
	return nil
}

func (s *OrderService) writeOrder(ctx context.Context, tx *gorm.DB, order *models.Order, lines []models.OrderLine, now time.Time) error {
	products := repository.New[models.Product](tx)

	loaded := make([]*models.Product, len(lines))
	total := decimal.Zero
	for i := range lines {
		line := &lines[i]

		product, err := products.GetByID(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: product %d not found", ErrInvalidArgument, line.ProductID)
		}
		loaded[i] = product

		if line.UnitPrice.IsZero() {
			line.UnitPrice = product.Price
		}
		line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(line.Subtotal)
	}
	order.Total = total

	orders := repository.New[models.Order](tx)
	orders.Add(order)
	if err := orders.SaveChanges(ctx); err != nil {
		return err
	}

	lineRepo := repository.New[models.OrderLine](tx)
	for i := range lines {
		lines[i].OrderID = order.ID
		lineRepo.Add(&lines[i])
	}
	if err := lineRepo.SaveChanges(ctx); err != nil {
		return err
	}

	for i := range lines {
		if err := decrementStock(ctx, tx, lines[i].ProductID, lines[i].Quantity, now); err != nil {
			return err
		}
	}

	// only touch caller-held products once every write has succeeded
	for i := range lines {
		if lines[i].Product != nil {
			lines[i].Product.Stock = loaded[i].Stock - lines[i].Quantity
			lines[i].Product.UpdatedAt = now
		}
		util.StockDecrementedTotal.Add(float64(lines[i].Quantity))
	}
	return nil
}

func decrementStock(ctx context.Context, tx *gorm.DB, productID int16, qty int, now time.Time) error {
	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumns(map[string]interface{}{
			"stock":                gorm.Expr("stock - ?", qty),
			"ultima_actualizacion": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock for product %d: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", ErrInsufficientStock, productID)
	}
	return nil
}

func (s *OrderService) publishCreated(ctx context.Context, order *models.Order, lines []models.OrderLine) {
	if s.events == nil {
		return
	}

	data := make([]models.OrderLineData, 0, len(lines))
	for _, line := range lines {
		data = append(data, models.OrderLineData{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	event := &models.OrderCreatedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeOrderCreated, order.CreatedAt),
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		UserID:     order.UserID,
		Total:      order.Total,
		Lines:      data,
	}
	logPublishError(s.logger, event.EventType, s.events.PublishOrderCreated(ctx, event))
}

// UpdateOrder replaces the editable fields of an order: customer, user,
// courier, status and the customer name copy. Total and the creation fields
// keep their stored values and lines are not touched. A missing order is ignored.
func (s *OrderService) UpdateOrder(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("%w: order is required", ErrInvalidArgument)
	}

	repo := repository.New[models.Order](s.store.ORM())
	current, err := repo.GetByID(ctx, order.ID)
	if err != nil || current == nil {
		return err
	}

	order.Total = current.Total
	order.CreatedAt = current.CreatedAt
	order.CreatedBy = current.CreatedBy
	order.UpdatedAt = s.clock.Now()

	repo.Update(order)
	return repo.SaveChanges(ctx)
}

// DeleteOrder removes the order row. Deleting a missing order is a no-op.
// Orders that still have lines or payments cannot be deleted.
func (s *OrderService) DeleteOrder(ctx context.Context, id int16) error {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteOrder")
	defer span.End()

	repo := repository.New[models.Order](s.store.ORM())
	order, err := repo.GetByID(ctx, id)
	if err != nil || order == nil {
		return err
	}

	repo.Delete(order)
	if err := repo.SaveChanges(ctx); err != nil {
		return err
	}

	s.logger.Info("Order deleted", zap.Int16("order_id", id))
	if s.events != nil {
		event := &models.OrderDeletedEvent{
			BaseEvent: newBaseEvent(models.EventTypeOrderDeleted, s.clock.Now()),
			OrderID:   id,
		}
		logPublishError(s.logger, event.EventType, s.events.PublishOrderDeleted(ctx, event))
	}
	return nil
}

// UpdateOrderStatus moves an order to any known status. A missing order is ignored.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int16, status int8) error {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("%w: unknown order status %d", ErrInvalidArgument, status)
	}

	repo := repository.New[models.Order](s.store.ORM())
	order, err := repo.GetByID(ctx, id)
	if err != nil || order == nil {
		return err
	}

	old := order.Status
	order.Status = status
	order.UpdatedAt = s.clock.Now()
	repo.Update(order)
	if err := repo.SaveChanges(ctx); err != nil {
		return err
	}

	util.OrderStatusChangesTotal.WithLabelValues(models.OrderStatusName(status)).Inc()
	s.logger.Info("Order status changed",
		zap.Int16("order_id", id),
		zap.String("from", models.OrderStatusName(old)),
		zap.String("to", models.OrderStatusName(status)))

	if s.events != nil {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: newBaseEvent(models.EventTypeOrderStatusChanged, order.UpdatedAt),
			OrderID:   id,
			OldStatus: old,
			NewStatus: status,
		}
		logPublishError(s.logger, event.EventType, s.events.PublishOrderStatusChanged(ctx, event))
	}
	return nil
}

// AssignCourier sets the courier delivering an order. The courier must be active.
// A missing order is ignored.
func (s *OrderService) AssignCourier(ctx context.Context, orderID, courierID int16) error {
	courier, err := repository.New[models.Courier](s.store.ORM()).GetByID(ctx, courierID)
	if err != nil {
		return err
	}
	if courier == nil {
		return fmt.Errorf("%w: courier %d not found", ErrInvalidArgument, courierID)
	}

	repo := repository.New[models.Order](s.store.ORM())
	order, err := repo.GetByID(ctx, orderID)
	if err != nil || order == nil {
		return err
	}

	order.CourierID = &courier.ID
	order.UpdatedAt = s.clock.Now()
	repo.Update(order)
	return repo.SaveChanges(ctx)
}

// SalesReport summarises orders created in [from, to) by status
func (s *OrderService) SalesReport(ctx context.Context, from, to time.Time) ([]store.SalesRow, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: report range is empty", ErrInvalidArgument)
	}

	rows, err := s.store.SalesSummary(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}
	return rows, nil
}
