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

// DefaultPageSize matches the customer list screen
const DefaultPageSize = 10

// CustomerService manages customers and their delivery addresses
type CustomerService struct {
	store  *store.Store
	clock  Clock
	logger *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(store *store.Store, clock Clock) *CustomerService {
	return &CustomerService{
		store:  store,
		clock:  clock,
		logger: util.GetLogger(),
	}
}

// CustomerPage is one page of a customer search
type CustomerPage = ListPage[models.Customer]

func (s *CustomerService) repo() *repository.Repository[models.Customer, *models.Customer] {
	return repository.New[models.Customer](s.store.ORM())
}

// GetAllCustomers returns every customer, including deactivated ones
func (s *CustomerService) GetAllCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.repo().GetAll(ctx)
}

// GetCustomerByID returns nil for missing or deactivated customers
func (s *CustomerService) GetCustomerByID(ctx context.Context, id int16) (*models.Customer, error) {
	return s.repo().GetByID(ctx, id)
}

// SearchCustomers pages through active customers whose name, surname or email
// contains term. An empty term matches everyone.
func (s *CustomerService) SearchCustomers(ctx context.Context, term string, page, size int) (*CustomerPage, error) {
	pred := repository.All()
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		pred = repository.Where(
			"(LOWER(nombre) LIKE ? OR LOWER(apellido) LIKE ? OR LOWER(correo) LIKE ?)",
			like, like, like)
	}
	return searchPage(ctx, s.repo(), pred, page, size)
}

// AddCustomer stores a new active customer. A repeated email fails with the
// storage constraint error.
func (s *CustomerService) AddCustomer(ctx context.Context, c *models.Customer) error {
	if c == nil {
		return fmt.Errorf("%w: customer is required", ErrInvalidArgument)
	}

	now := s.clock.Now()
	c.ID = 0
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Status = models.StatusActive

	if err := insert[models.Customer](ctx, s.store.ORM(), c); err != nil {
		return err
	}
	s.logger.Info("Customer added", zap.Int16("customer_id", c.ID))
	return nil
}

// UpdateCustomer replaces an active customer. Its status and creation fields are kept.
func (s *CustomerService) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	if c == nil {
		return fmt.Errorf("%w: customer is required", ErrInvalidArgument)
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

// DeleteCustomer physically removes a customer without orders or addresses
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int16) error {
	return deleteByID[models.Customer](ctx, s.store.ORM(), id)
}

// DeactivateCustomer soft deletes a customer
func (s *CustomerService) DeactivateCustomer(ctx context.Context, id int16) error {
	return deactivateByID[models.Customer](ctx, s.store.ORM(), id)
}

// AddAddress attaches a delivery location to an active customer
func (s *CustomerService) AddAddress(ctx context.Context, customerID int16, addr *models.Address) error {
	if addr == nil {
		return fmt.Errorf("%w: address is required", ErrInvalidArgument)
	}

	customer, err := s.GetCustomerByID(ctx, customerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return fmt.Errorf("%w: customer %d not found", ErrInvalidArgument, customerID)
	}

	addr.ID = 0
	addr.CustomerID = customerID
	return insert[models.Address](ctx, s.store.ORM(), addr)
}

// GetAddresses lists the delivery locations of a customer
func (s *CustomerService) GetAddresses(ctx context.Context, customerID int16) ([]models.Address, error) {
	return repository.New[models.Address](s.store.ORM()).
		Find(ctx, repository.Where("cliente_id = ?", customerID))
}
