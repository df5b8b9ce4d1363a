package store_test

import (
	"context"
	"testing"
	"time"

	"restaurant-service/internal/models"
	"restaurant-service/internal/store"
	"restaurant-service/internal/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedOrder(t *testing.T, s *store.Store, status int8, total string, at time.Time) *models.Order {
	t.Helper()
	user := storetest.User(t, s, "caja"+total)
	cust := storetest.Customer(t, s, "Juan", "Perez", "juan"+total+"@example.com")
	o := &models.Order{
		CustomerID: cust.ID,
		UserID:     user.ID,
		Status:     status,
		Total:      decimal.RequireFromString(total),
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	require.NoError(t, s.ORM().Create(o).Error)
	return o
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := store.NewStore("oracle", "whatever")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	s := storetest.New(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestGetOrderLines(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	cat := storetest.Category(t, s, "Platos")
	lomo := storetest.Product(t, s, cat.ID, "Lomo saltado", "25.00", 10)
	inca := storetest.Product(t, s, cat.ID, "Inca Kola", "4.50", 10)
	o := seedOrder(t, s, models.OrderStatusCreated, "34.00", storetest.Now)

	lines := []models.OrderLine{
		{OrderID: o.ID, ProductID: lomo.ID, Quantity: 1, UnitPrice: lomo.Price, Subtotal: lomo.Price},
		{OrderID: o.ID, ProductID: inca.ID, Quantity: 2, UnitPrice: inca.Price, Subtotal: decimal.RequireFromString("9.00")},
	}
	require.NoError(t, s.ORM().Omit("Product").Create(&lines).Error)

	got, err := s.GetOrderLines(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Lomo saltado", got[0].ProductName)
	assert.Equal(t, "Inca Kola", got[1].ProductName)
	assert.Equal(t, 2, got[1].Quantity)
	assert.True(t, got[1].Subtotal.Equal(decimal.RequireFromString("9")))
}

func TestSalesSummary(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	day := storetest.Now

	seedOrder(t, s, models.OrderStatusCreated, "10.00", day)
	seedOrder(t, s, models.OrderStatusCreated, "15.50", day.Add(time.Hour))
	seedOrder(t, s, models.OrderStatusCancelled, "7.00", day)
	seedOrder(t, s, models.OrderStatusCreated, "99.00", day.AddDate(0, 0, 2))

	rows, err := s.SalesSummary(ctx, day.Add(-time.Hour), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, models.OrderStatusCancelled, rows[0].Status)
	assert.Equal(t, int64(1), rows[0].Orders)
	assert.Equal(t, models.OrderStatusCreated, rows[1].Status)
	assert.Equal(t, int64(2), rows[1].Orders)
	assert.True(t, rows[1].Revenue.Equal(decimal.RequireFromString("25.5")), rows[1].Revenue.String())
}

func TestLowStockProducts(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	cat := storetest.Category(t, s, "Platos")
	storetest.Product(t, s, cat.ID, "Lomo saltado", "25.00", 50)
	low := storetest.Product(t, s, cat.ID, "Ceviche", "30.00", 2)
	hidden := storetest.Product(t, s, cat.ID, "Causa", "12.00", 0)
	require.NoError(t, s.ORM().Model(hidden).Update("estado", models.StatusInactive).Error)

	levels, err := s.LowStockProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, low.ID, levels[0].ID)
	assert.Equal(t, 2, levels[0].Stock)
}

func TestGetStockLevels(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	cat := storetest.Category(t, s, "Platos")
	a := storetest.Product(t, s, cat.ID, "Lomo saltado", "25.00", 50)
	b := storetest.Product(t, s, cat.ID, "Ceviche", "30.00", 2)

	levels, err := s.GetStockLevels(ctx, []int16{b.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, a.ID, levels[0].ID)
	assert.Equal(t, 50, levels[0].Stock)

	empty, err := s.GetStockLevels(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMarkEventProcessed(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	done, err := s.IsEventProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, s.MarkEventProcessed(ctx, "evt-1", models.EventTypeOrderCreated, storetest.Now))
	require.NoError(t, s.MarkEventProcessed(ctx, "evt-1", models.EventTypeOrderCreated, storetest.Now))

	done, err = s.IsEventProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Category{Name: "Temporal"}).Error; err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var n int64
	require.NoError(t, s.ORM().Model(&models.Category{}).Count(&n).Error)
	assert.Zero(t, n)
}
