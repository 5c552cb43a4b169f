package reconciliation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
	"github.com/bedtex/dispatch-backend/pkg/pagination"
	"github.com/bedtex/dispatch-backend/pkg/types"
)

func setupReconTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ordersDDL := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_code TEXT,
  customer_name TEXT NOT NULL,
  customer_address TEXT,
  customer_phone TEXT,
  customer_note TEXT,
  order_date DATETIME NOT NULL,
  vehicle_id TEXT,
  created_by TEXT NOT NULL,
  created_by_name TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	itemsDDL := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  stt INTEGER NOT NULL,
  product_name TEXT NOT NULL,
  size TEXT,
  unit TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  warehouse TEXT NOT NULL,
  cm_quantity NUMERIC NOT NULL DEFAULT 0,
  note TEXT,
  warehouse_confirm_value TEXT,
  warehouse_confirm_at DATETIME,
  leader_confirm_value TEXT,
  leader_confirm_at DATETIME,
  source_order_id TEXT,
  source_item_id TEXT,
  max_compensate_qty NUMERIC,
  shortage_ignored INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersDDL).Error)
	require.NoError(t, db.Exec(itemsDDL).Error)
	return db
}

type seedItem struct {
	product     string
	quantity    int64
	warehouse   enums.Warehouse
	leaderValue *string
}

func seedReconOrder(t *testing.T, db *gorm.DB, customer string, orderDate time.Time, creator uuid.UUID, items ...seedItem) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		Customer:      types.CustomerSnapshot{Code: "KH-20", Name: customer, Address: "9 River Lane"},
		OrderDate:     orderDate,
		CreatedBy:     creator,
		CreatedByName: "seed",
	}
	now := time.Now()
	for i, in := range items {
		item := models.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			Stt:         i + 1,
			ProductName: in.product,
			Unit:        "pcs",
			Quantity:    decimal.NewFromInt(in.quantity),
			Warehouse:   in.warehouse,
		}
		if in.leaderValue != nil {
			item.LeaderConfirm = types.Confirmation{Value: in.leaderValue, ConfirmedAt: &now}
		}
		order.Items = append(order.Items, item)
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func str(s string) *string { return &s }

func newReconService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestListSurplusDeficit(t *testing.T) {
	db := setupReconTestDB(t)
	svc := newReconService(t, db)
	creator := uuid.New()
	day := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	seedReconOrder(t, db, "Recon Shop", day, creator,
		seedItem{"Mattress", 10, enums.WarehouseK02, str("7")},       // deficit -3
		seedItem{"Pillow", 20, enums.WarehouseK01, str("22")},        // surplus +2
		seedItem{"Duvet", 5, enums.WarehouseK01, str("5")},           // balanced
		seedItem{"Bolster", 8, enums.WarehouseK03, str("around 10")}, // unparseable: excluded
		seedItem{"Topper", 4, enums.WarehouseK04, nil},               // unconfirmed: excluded
	)

	from, to := DayBounds(day, day)

	t.Run("allIncludesBalanced", func(t *testing.T) {
		rows, err := svc.ListSurplusDeficit(context.Background(), ListSurplusDeficitInput{
			Filters: RangeFilters{From: from, To: to},
			Status:  enums.DeficitFilterAll,
		})
		require.NoError(t, err)
		require.Len(t, rows, 3)

		byProduct := map[string]SurplusDeficitRow{}
		for _, row := range rows {
			byProduct[row.ProductName] = row
		}
		assert.True(t, byProduct["Mattress"].Deficit.Equal(decimal.NewFromInt(-3)))
		assert.True(t, byProduct["Pillow"].Deficit.Equal(decimal.NewFromInt(2)))
		assert.True(t, byProduct["Duvet"].Deficit.IsZero())

		mattress := byProduct["Mattress"]
		assert.Equal(t, "Recon Shop", mattress.CustomerName)
		assert.Equal(t, "9 River Lane", mattress.CustomerAddress)
		assert.Equal(t, creator, mattress.CreatedBy)
		assert.True(t, mattress.ConfirmedQty.Equal(decimal.NewFromInt(7)))
	})

	t.Run("deficitFilterDropsBalanced", func(t *testing.T) {
		rows, err := svc.ListSurplusDeficit(context.Background(), ListSurplusDeficitInput{
			Filters: RangeFilters{From: from, To: to},
			Status:  enums.DeficitFilterDeficit,
		})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.False(t, row.Deficit.IsZero())
		}
	})

	t.Run("warehouseFilter", func(t *testing.T) {
		wh := enums.WarehouseK02
		rows, err := svc.ListSurplusDeficit(context.Background(), ListSurplusDeficitInput{
			Filters: RangeFilters{From: from, To: to, Warehouse: &wh},
			Status:  enums.DeficitFilterAll,
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Mattress", rows[0].ProductName)
	})

	t.Run("creatorFilter", func(t *testing.T) {
		other := uuid.New()
		rows, err := svc.ListSurplusDeficit(context.Background(), ListSurplusDeficitInput{
			Filters: RangeFilters{From: from, To: to, CreatedBy: &other},
			Status:  enums.DeficitFilterAll,
		})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("dateRangeExcludesOutside", func(t *testing.T) {
		nextFrom, nextTo := DayBounds(day.AddDate(0, 0, 1), day.AddDate(0, 0, 1))
		rows, err := svc.ListSurplusDeficit(context.Background(), ListSurplusDeficitInput{
			Filters: RangeFilters{From: nextFrom, To: nextTo},
			Status:  enums.DeficitFilterAll,
		})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("missingRangeRejected", func(t *testing.T) {
		_, err := svc.ListSurplusDeficit(context.Background(), ListSurplusDeficitInput{})
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	})
}

func TestListWarehouseQueue(t *testing.T) {
	db := setupReconTestDB(t)
	svc := newReconService(t, db)
	creator := uuid.New()
	day := time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)

	order := seedReconOrder(t, db, "Queue Shop", day, creator,
		seedItem{"Mattress", 10, enums.WarehouseK01, nil},
		seedItem{"Pillow", 20, enums.WarehouseK01, nil},
		seedItem{"Duvet", 5, enums.WarehouseK02, nil},
	)
	now := time.Now()
	require.NoError(t, db.Model(&models.OrderItem{}).
		Where("order_id = ? AND stt = 1", order.ID).
		Updates(map[string]any{"warehouse_confirm_value": "10", "warehouse_confirm_at": now}).Error)

	from, to := DayBounds(day, day)

	t.Run("confirmed", func(t *testing.T) {
		page, err := svc.ListWarehouseQueue(context.Background(), ListQueueInput{
			Filters: RangeFilters{From: from, To: to},
			Status:  enums.QueueStatusConfirmed,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Mattress", page.Items[0].ProductName)
		require.NotNil(t, page.Items[0].WarehouseConfirm.Value)
	})

	t.Run("unconfirmed", func(t *testing.T) {
		page, err := svc.ListWarehouseQueue(context.Background(), ListQueueInput{
			Filters: RangeFilters{From: from, To: to},
			Status:  enums.QueueStatusUnconfirmed,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("allPaginated", func(t *testing.T) {
		page, err := svc.ListWarehouseQueue(context.Background(), ListQueueInput{
			Filters:    RangeFilters{From: from, To: to},
			Status:     enums.QueueStatusAll,
			Pagination: pagination.Params{Page: 1, PageSize: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		require.Len(t, page.Items, 2)

		second, err := svc.ListWarehouseQueue(context.Background(), ListQueueInput{
			Filters:    RangeFilters{From: from, To: to},
			Status:     enums.QueueStatusAll,
			Pagination: pagination.Params{Page: 2, PageSize: 2},
		})
		require.NoError(t, err)
		require.Len(t, second.Items, 1)
	})

	t.Run("warehouseScoped", func(t *testing.T) {
		wh := enums.WarehouseK02
		page, err := svc.ListWarehouseQueue(context.Background(), ListQueueInput{
			Filters: RangeFilters{From: from, To: to, Warehouse: &wh},
			Status:  enums.QueueStatusAll,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, "Duvet", page.Items[0].ProductName)
	})
}
