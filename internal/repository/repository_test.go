package repository

import (
	"context"
	"fmt"
	"testing"

	"restaurant-service/internal/models"
	"restaurant-service/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCustomer(name, email string) *models.Customer {
	return &models.Customer{
		Name:      name,
		Surname:   "Perez",
		Email:     &email,
		CreatedAt: storetest.Now,
		UpdatedAt: storetest.Now,
		Status:    models.StatusActive,
	}
}

func TestLifecycleDetection(t *testing.T) {
	s := storetest.New(t)

	assert.True(t, New[models.Customer](s.ORM()).HasLifecycle())
	assert.True(t, New[models.Product](s.ORM()).HasLifecycle())
	assert.False(t, New[models.Order](s.ORM()).HasLifecycle())
	assert.False(t, New[models.Category](s.ORM()).HasLifecycle())
}

func TestAddAssignsID(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	repo := New[models.Customer](s.ORM())

	c := newCustomer("Juan", "juan@example.com")
	phone := "987654321"
	c.Phone = &phone
	repo.Add(c)
	assert.Zero(t, c.ID)
	assert.Equal(t, 1, repo.Pending())

	require.NoError(t, repo.SaveChanges(ctx))
	assert.Positive(t, c.ID)
	assert.Zero(t, repo.Pending())

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Juan", got.Name)
	assert.Equal(t, "Perez", got.Surname)
	require.NotNil(t, got.Email)
	assert.Equal(t, "juan@example.com", *got.Email)
	require.NotNil(t, got.Phone)
	assert.Equal(t, phone, *got.Phone)
	assert.Equal(t, models.StatusActive, got.Status)
	assert.True(t, storetest.Now.Equal(got.CreatedAt), got.CreatedAt.String())
	assert.True(t, storetest.Now.Equal(got.UpdatedAt), got.UpdatedAt.String())
	assert.Nil(t, got.CreatedBy)
}

func TestGetByIDRejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	repo := New[models.Customer](s.ORM())

	for _, id := range []int16{0, -1} {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestGetByIDMissing(t *testing.T) {
	s := storetest.New(t)

	got, err := New[models.Category](s.ORM()).GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSoftDeleteHidesRow(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	repo := New[models.Customer](s.ORM())

	keep := newCustomer("Juan", "juan@example.com")
	gone := newCustomer("Luis", "luis@example.com")
	repo.Add(keep)
	repo.Add(gone)
	require.NoError(t, repo.SaveChanges(ctx))

	require.NoError(t, repo.SoftDelete(ctx, gone))
	assert.False(t, gone.IsActive())

	// a fresh repository sees the persisted flag
	fresh := New[models.Customer](s.ORM())

	got, err := fresh.GetByID(ctx, gone.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	found, err := fresh.Find(ctx, All())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, keep.ID, found[0].ID)

	all, err := fresh.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSoftDeleteWithoutLifecycleIsNoop(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	cat := storetest.Category(t, s, "Bebidas")

	repo := New[models.Category](s.ORM())
	require.NoError(t, repo.SoftDelete(ctx, cat))

	got, err := repo.GetByID(ctx, cat.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestFindAppliesPredicate(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	cat := storetest.Category(t, s, "Platos")
	storetest.Product(t, s, cat.ID, "Lomo saltado", "25.00", 10)
	storetest.Product(t, s, cat.ID, "Ceviche", "30.00", 0)

	repo := New[models.Product](s.ORM())
	found, err := repo.Find(ctx, Where("stock > ?", 0))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Lomo saltado", found[0].Name)
}

func TestUpdateReplacesRow(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	c := storetest.Customer(t, s, "Juan", "Perez", "juan@example.com")

	repo := New[models.Customer](s.ORM())
	c.Name = "Juan Carlos"
	repo.Update(c)
	require.NoError(t, repo.SaveChanges(ctx))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Juan Carlos", got.Name)
}

func TestDeleteRemovesRow(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	cat := storetest.Category(t, s, "Postres")

	repo := New[models.Category](s.ORM())
	repo.Delete(cat)
	require.NoError(t, repo.SaveChanges(ctx))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteReferencedRowFails(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	cat := storetest.Category(t, s, "Platos")
	storetest.Product(t, s, cat.ID, "Lomo saltado", "25.00", 10)

	repo := New[models.Category](s.ORM())
	repo.Delete(cat)
	require.Error(t, repo.SaveChanges(ctx))

	got, err := repo.GetByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestFailedSaveChangesCommitsNothing(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	storetest.Customer(t, s, "Juan", "Perez", "juan@example.com")

	repo := New[models.Customer](s.ORM())
	repo.Add(newCustomer("Maria", "maria@example.com"))
	repo.Add(newCustomer("Juan", "juan@example.com"))

	require.Error(t, repo.SaveChanges(ctx))
	assert.Equal(t, 2, repo.Pending())

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPageAndCount(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	repo := New[models.Customer](s.ORM())

	for i := 0; i < 12; i++ {
		repo.Add(newCustomer(fmt.Sprintf("Cliente %02d", i), fmt.Sprintf("c%02d@example.com", i)))
	}
	require.NoError(t, repo.SaveChanges(ctx))

	first, err := repo.Page(ctx, All(), 1, 10)
	require.NoError(t, err)
	assert.Len(t, first, 10)

	second, err := repo.Page(ctx, All(), 2, 10)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "Cliente 10", second[0].Name)

	require.NoError(t, repo.SoftDelete(ctx, &second[1]))

	n, err := repo.Count(ctx, All())
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	repo := New[models.Category](s.ORM())

	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		inner := repo.WithTx(tx)
		inner.Add(&models.Category{Name: "Temporal"})
		if err := inner.SaveChanges(ctx); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.EqualError(t, err, "abort")

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
