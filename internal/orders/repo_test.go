package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	"github.com/bedtex/dispatch-backend/pkg/pagination"
	"github.com/bedtex/dispatch-backend/pkg/types"
)

func seedOrder(t *testing.T, db *gorm.DB, customerName string, orderDate time.Time, items ...models.OrderItem) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		Customer:      types.CustomerSnapshot{Code: "KH-01", Name: customerName},
		OrderDate:     orderDate,
		CreatedBy:     uuid.New(),
		CreatedByName: "seed",
	}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = order.ID
		items[i].Stt = i + 1
	}
	order.Items = items
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositorySumCompensation(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	source := seedOrder(t, db, "Sum Shop", time.Now(), models.OrderItem{
		ProductName: "Mattress",
		Unit:        "pcs",
		Quantity:    decimal.NewFromInt(10),
		Warehouse:   enums.WarehouseK02,
	})
	sourceItemID := source.Items[0].ID

	compA := seedOrder(t, db, "Sum Shop", time.Now(), models.OrderItem{
		ProductName:   "Mattress",
		Unit:          "pcs",
		Quantity:      decimal.NewFromInt(2),
		Warehouse:     enums.WarehouseK02,
		SourceOrderID: &source.ID,
		SourceItemID:  &sourceItemID,
	})
	seedOrder(t, db, "Sum Shop", time.Now(), models.OrderItem{
		ProductName:   "Mattress",
		Unit:          "pcs",
		Quantity:      decimal.NewFromInt(1),
		Warehouse:     enums.WarehouseK02,
		SourceOrderID: &source.ID,
		SourceItemID:  &sourceItemID,
	})

	total, err := repo.SumCompensation(ctx, sourceItemID, nil)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(3)), "got %s", total)

	// Excluding the order being rewritten drops its own compensations.
	total, err = repo.SumCompensation(ctx, sourceItemID, &compA.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(1)), "got %s", total)

	// No compensations at all sums to zero.
	total, err = repo.SumCompensation(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestRepositoryList_filtersAndPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seedOrder(t, db, "Anh Tuan Bedding", base, models.OrderItem{
		ProductName: "Pillow", Unit: "pcs", Quantity: decimal.NewFromInt(1), Warehouse: enums.WarehouseK01,
	})
	seedOrder(t, db, "Anh Tuan Bedding", base.AddDate(0, 0, 1), models.OrderItem{
		ProductName: "Pillow", Unit: "pcs", Quantity: decimal.NewFromInt(1), Warehouse: enums.WarehouseK01,
	})
	seedOrder(t, db, "Hoang Mai Store", base.AddDate(0, 0, 5), models.OrderItem{
		ProductName: "Pillow", Unit: "pcs", Quantity: decimal.NewFromInt(1), Warehouse: enums.WarehouseK01,
	})

	from := base
	to := base.AddDate(0, 0, 2)
	page, err := repo.List(ctx, ListFilters{From: &from, To: &to}, pagination.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)

	// Fuzzy, case-insensitive customer name match.
	page, err = repo.List(ctx, ListFilters{CustomerName: "anh tuan"}, pagination.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	// Page size 1 still reports the full total.
	page, err = repo.List(ctx, ListFilters{CustomerName: "anh tuan"}, pagination.Params{Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items[0].Items, 1)
}

func TestRepositoryCountByVehicle(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vehicle := seedVehicle(t, db, time.Now())
	order := seedOrder(t, db, "Vehicle Shop", time.Now(), models.OrderItem{
		ProductName: "Blanket", Unit: "pcs", Quantity: decimal.NewFromInt(1), Warehouse: enums.WarehouseK01,
	})
	require.NoError(t, repo.SetVehicle(ctx, order.ID, &vehicle.ID))

	count, err := repo.CountByVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.SetVehicle(ctx, order.ID, nil))
	count, err = repo.CountByVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
