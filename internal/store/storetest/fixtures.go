package storetest

import (
	"testing"
	"time"

	"restaurant-service/internal/models"
	"restaurant-service/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Now is the timestamp fixtures are stamped with
var Now = time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)

// User inserts an active user with the given login
func User(t testing.TB, s *store.Store, login string) *models.User {
	t.Helper()
	u := &models.User{
		Name:         "Ana",
		Surname:      "Gomez",
		Login:        login,
		PasswordHash: "$2a$10$0000000000000000000000000000000000000000000000000000",
		Role:         "Administrador",
		CreatedAt:    Now,
		UpdatedAt:    Now,
		Status:       models.StatusActive,
	}
	require.NoError(t, s.ORM().Create(u).Error)
	return u
}

// Category inserts a category
func Category(t testing.TB, s *store.Store, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, s.ORM().Create(c).Error)
	return c
}

// Customer inserts an active customer
func Customer(t testing.TB, s *store.Store, name, surname, email string) *models.Customer {
	t.Helper()
	c := &models.Customer{
		Name:      name,
		Surname:   surname,
		Email:     &email,
		CreatedAt: Now,
		UpdatedAt: Now,
		Status:    models.StatusActive,
	}
	require.NoError(t, s.ORM().Create(c).Error)
	return c
}

// Product inserts an active product
func Product(t testing.TB, s *store.Store, categoryID int16, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: categoryID,
		CreatedAt:  Now,
		UpdatedAt:  Now,
		Status:     models.StatusActive,
	}
	require.NoError(t, s.ORM().Create(p).Error)
	return p
}

// Courier inserts an active courier
func Courier(t testing.TB, s *store.Store, name string) *models.Courier {
	t.Helper()
	c := &models.Courier{
		Name:      name,
		Surname:   "Rider",
		CreatedAt: Now,
		UpdatedAt: Now,
		Status:    models.StatusActive,
	}
	require.NoError(t, s.ORM().Create(c).Error)
	return c
}
