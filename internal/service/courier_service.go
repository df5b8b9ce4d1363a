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

// CourierService manages delivery riders
type CourierService struct {
	store  *store.Store
	clock  Clock
	logger *zap.Logger
}

// NewCourierService creates a new courier service
func NewCourierService(store *store.Store, clock Clock) *CourierService {
	return &CourierService{
		store:  store,
		clock:  clock,
		logger: util.GetLogger(),
	}
}

func (s *CourierService) repo() *repository.Repository[models.Courier, *models.Courier] {
	return repository.New[models.Courier](s.store.ORM())
}

// GetAllCouriers returns every courier, including deactivated ones
func (s *CourierService) GetAllCouriers(ctx context.Context) ([]models.Courier, error) {
	return s.repo().GetAll(ctx)
}

// GetActiveCouriers returns couriers available for assignment
func (s *CourierService) GetActiveCouriers(ctx context.Context) ([]models.Courier, error) {
	return s.repo().Find(ctx, repository.All())
}

// CourierPage is one page of a courier search
type CourierPage = ListPage[models.Courier]

// SearchCouriers pages through active couriers whose name, surname or phone
// contains term. An empty term matches everyone.
func (s *CourierService) SearchCouriers(ctx context.Context, term string, page, size int) (*CourierPage, error) {
	pred := repository.All()
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		pred = repository.Where(
			"(LOWER(nombre) LIKE ? OR LOWER(apellido) LIKE ? OR COALESCE(telefono, '') LIKE ?)",
			like, like, like)
	}
	return searchPage(ctx, s.repo(), pred, page, size)
}

func (s *CourierService) GetCourierByID(ctx context.Context, id int16) (*models.Courier, error) {
	return s.repo().GetByID(ctx, id)
}

func (s *CourierService) AddCourier(ctx context.Context, c *models.Courier) error {
	if c == nil {
		return fmt.Errorf("%w: courier is required", ErrInvalidArgument)
	}

	now := s.clock.Now()
	c.ID = 0
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Status = models.StatusActive

	if err := insert[models.Courier](ctx, s.store.ORM(), c); err != nil {
		return err
	}
	s.logger.Info("Courier added", zap.Int16("courier_id", c.ID))
	return nil
}

// UpdateCourier replaces an active courier. Its status and creation fields are kept.
func (s *CourierService) UpdateCourier(ctx context.Context, c *models.Courier) error {
	if c == nil {
		return fmt.Errorf("%w: courier is required", ErrInvalidArgument)
	}

	repo := s.repo()
	current, err := repo.GetByID(ctx, c.ID)
	if err != nil || current == nil {
		return err
	}

	c.CreatedAt = current.CreatedAt
	c.CreatedBy = current.CreatedBy
	c.Status = current.Status
	c.UpdatedAt = s.clock.Now()

	repo.Update(c)
	return repo.SaveChanges(ctx)
}

// DeactivateCourier takes a courier off the active roster. Couriers are never
// physically deleted because past orders keep referencing them.
func (s *CourierService) DeactivateCourier(ctx context.Context, id int16) error {
	return deactivateByID[models.Courier](ctx, s.store.ORM(), id)
}
