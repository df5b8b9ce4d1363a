package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant-service/internal/models"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/store"
	"restaurant-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService manages back-office operators
type UserService struct {
	store  *store.Store
	clock  Clock
	cost   int
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store *store.Store, clock Clock) *UserService {
	return &UserService{
		store:  store,
		clock:  clock,
		cost:   bcrypt.DefaultCost,
		logger: util.GetLogger(),
	}
}

func (s *UserService) repo() *repository.Repository[models.User, *models.User] {
	return repository.New[models.User](s.store.ORM())
}

// GetAllUsers returns every user, including deactivated ones
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.repo().GetAll(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id int16) (*models.User, error) {
	return s.repo().GetByID(ctx, id)
}

// AddUser stores a new active user with password hashed. A repeated login
// fails with the storage constraint error.
func (s *UserService) AddUser(ctx context.Context, u *models.User, password string) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(u.Login) == "" {
		return fmt.Errorf("%w: login is required", ErrInvalidArgument)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	u.ID = 0
	u.PasswordHash = string(hash)
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Status = models.StatusActive

	if err := insert[models.User](ctx, s.store.ORM(), u); err != nil {
		return err
	}
	s.logger.Info("User added", zap.Int16("user_id", u.ID), zap.String("login", u.Login))
	return nil
}

// DeactivateUser soft deletes a user; users are never physically removed
func (s *UserService) DeactivateUser(ctx context.Context, id int16) error {
	return deactivateByID[models.User](ctx, s.store.ORM(), id)
}

// Authenticate returns the active user whose login and password match
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	users, err := s.repo().Find(ctx, repository.Where("usuario = ?", login))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrInvalidCredentials
	}

	u := &users[0]
	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	return u, nil
}
