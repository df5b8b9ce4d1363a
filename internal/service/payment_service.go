package service

import (
	"context"
	"fmt"
	"strings"

	"restaurant-service/internal/models"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/store"
	"restaurant-service/internal/util"

	"go.uber.org/zap"
)

// Payment states stored in estado_pago
const (
	PaymentStatusPending  = "PENDIENTE"
	PaymentStatusPaid     = "PAGADO"
	PaymentStatusRefunded = "REEMBOLSADO"
)

// PaymentService records payments against orders
type PaymentService struct {
	store  *store.Store
	clock  Clock
	logger *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(store *store.Store, clock Clock) *PaymentService {
	return &PaymentService{
		store:  store,
		clock:  clock,
		logger: util.GetLogger(),
	}
}

// GetPaymentsByOrder lists the active payments of an order
func (ps *PaymentService) GetPaymentsByOrder(ctx context.Context, orderID int16) ([]models.Payment, error) {
	return repository.New[models.Payment](ps.store.ORM()).
		Find(ctx, repository.Where("pedido_id = ?", orderID))
}

// AddPayment records a payment for an existing order. An empty payment status
// defaults to pending.
func (ps *PaymentService) AddPayment(ctx context.Context, p *models.Payment) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.AddPayment")
	defer span.End()

	if p == nil {
		return fmt.Errorf("%w: payment is required", ErrInvalidArgument)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", ErrInvalidArgument)
	}
	if strings.TrimSpace(p.Method) == "" {
		return fmt.Errorf("%w: payment method is required", ErrInvalidArgument)
	}

	order, err := repository.New[models.Order](ps.store.ORM()).GetByID(ctx, p.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: order %d not found", ErrInvalidArgument, p.OrderID)
	}

	if p.PaymentStatus == nil || *p.PaymentStatus == "" {
		pending := PaymentStatusPending
		p.PaymentStatus = &pending
	}

	now := ps.clock.Now()
	p.ID = 0
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Status = models.StatusActive

	if err := insert[models.Payment](ctx, ps.store.ORM(), p); err != nil {
		return err
	}

	util.PaymentsRecordedTotal.WithLabelValues(p.Method).Inc()
	ps.logger.Info("Payment recorded",
		zap.Int16("order_id", p.OrderID),
		zap.Int16("payment_id", p.ID),
		zap.String("amount", p.Amount.StringFixed(2)))
	return nil
}

// UpdatePaymentStatus changes estado_pago of an active payment; a missing one is ignored
func (ps *PaymentService) UpdatePaymentStatus(ctx context.Context, id int16, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return fmt.Errorf("%w: payment status is required", ErrInvalidArgument)
	}

	repo := repository.New[models.Payment](ps.store.ORM())
	p, err := repo.GetByID(ctx, id)
	if err != nil || p == nil {
		return err
	}

	p.PaymentStatus = &status
	p.UpdatedAt = ps.clock.Now()
	repo.Update(p)
	return repo.SaveChanges(ctx)
}
