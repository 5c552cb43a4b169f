package shortages

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

	pkgauth "github.com/bedtex/dispatch-backend/pkg/auth"
	pkgdb "github.com/bedtex/dispatch-backend/pkg/db"
	"github.com/bedtex/dispatch-backend/pkg/db/models"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
	"github.com/bedtex/dispatch-backend/pkg/types"
)

func setupShortagesTestDB(t *testing.T) *gorm.DB {
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
	outboxDDL := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  payload TEXT NOT NULL,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT,
  created_at DATETIME
);`
	for _, ddl := range []string{ordersDDL, itemsDDL, outboxDDL} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newShortageService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), pkgdb.NewFromConn(db), nil)
	require.NoError(t, err)
	return svc
}

// seedShortOrder creates an order with one item short by shortage units.
func seedShortOrder(t *testing.T, db *gorm.DB, customer string, requested, confirmed int64) *models.Order {
	t.Helper()

	now := time.Now()
	leaderValue := fmt.Sprintf("%d", confirmed)
	order := &models.Order{
		ID:            uuid.New(),
		Customer:      types.CustomerSnapshot{Code: "KH-30", Name: customer},
		OrderDate:     now,
		CreatedBy:     uuid.New(),
		CreatedByName: "seed",
		Items: []models.OrderItem{{
			ID:            uuid.New(),
			Stt:           1,
			ProductName:   "Mattress",
			Unit:          "pcs",
			Quantity:      decimal.NewFromInt(requested),
			Warehouse:     enums.WarehouseK02,
			LeaderConfirm: types.Confirmation{Value: &leaderValue, ConfirmedAt: &now},
		}},
	}
	order.Items[0].OrderID = order.ID
	require.NoError(t, db.Create(order).Error)
	return order
}

func seedCompensation(t *testing.T, db *gorm.DB, customer string, source *models.Order, qty int64) *models.Order {
	t.Helper()

	sourceItemID := source.Items[0].ID
	order := &models.Order{
		ID:            uuid.New(),
		Customer:      types.CustomerSnapshot{Code: "KH-30", Name: customer},
		OrderDate:     time.Now(),
		CreatedBy:     uuid.New(),
		CreatedByName: "seed",
		Items: []models.OrderItem{{
			ID:            uuid.New(),
			Stt:           1,
			ProductName:   "Mattress",
			Unit:          "pcs",
			Quantity:      decimal.NewFromInt(qty),
			Warehouse:     enums.WarehouseK02,
			SourceOrderID: &source.ID,
			SourceItemID:  &sourceItemID,
		}},
	}
	order.Items[0].OrderID = order.ID
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestListRemainingShortages(t *testing.T) {
	db := setupShortagesTestDB(t)
	svc := newShortageService(t, db)
	ctx := context.Background()

	// Shortage of 3, compensation of 2 pending: remaining 1.
	source := seedShortOrder(t, db, "Lan Anh Textiles", 10, 7)
	seedCompensation(t, db, "Lan Anh Textiles", source, 2)

	rows, err := svc.ListRemainingShortages(ctx, "lan anh")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, source.ID, row.OrderID)
	assert.Equal(t, source.Items[0].ID, row.ItemID)
	assert.True(t, row.ShortageQty.Equal(decimal.NewFromInt(3)))
	assert.True(t, row.CompensatedQty.Equal(decimal.NewFromInt(2)))
	assert.True(t, row.RemainingShortage.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "Lan Anh Textiles", row.CustomerName)

	// Fully compensated shortages drop out of the view.
	seedCompensation(t, db, "Lan Anh Textiles", source, 1)
	rows, err = svc.ListRemainingShortages(ctx, "lan anh")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListRemainingShortages_exclusions(t *testing.T) {
	db := setupShortagesTestDB(t)
	svc := newShortageService(t, db)
	ctx := context.Background()

	t.Run("surplusItemNotAShortage", func(t *testing.T) {
		seedShortOrder(t, db, "Surplus Co", 10, 12)
		rows, err := svc.ListRemainingShortages(ctx, "surplus co")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("unparseableLeaderValueExcluded", func(t *testing.T) {
		now := time.Now()
		leaderValue := "du kien chieu"
		order := &models.Order{
			ID:            uuid.New(),
			Customer:      types.CustomerSnapshot{Code: "KH-31", Name: "Parse Co"},
			OrderDate:     now,
			CreatedBy:     uuid.New(),
			CreatedByName: "seed",
			Items: []models.OrderItem{{
				ID:            uuid.New(),
				Stt:           1,
				ProductName:   "Duvet",
				Unit:          "pcs",
				Quantity:      decimal.NewFromInt(6),
				Warehouse:     enums.WarehouseK01,
				LeaderConfirm: types.Confirmation{Value: &leaderValue, ConfirmedAt: &now},
			}},
		}
		order.Items[0].OrderID = order.ID
		require.NoError(t, db.Create(order).Error)

		rows, err := svc.ListRemainingShortages(ctx, "parse co")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("otherCustomerNotMatched", func(t *testing.T) {
		seedShortOrder(t, db, "Alpha Shop", 10, 7)
		rows, err := svc.ListRemainingShortages(ctx, "no such customer")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("blankNameRejected", func(t *testing.T) {
		_, err := svc.ListRemainingShortages(ctx, "   ")
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	})
}

func TestIgnoreShortage_idempotent(t *testing.T) {
	db := setupShortagesTestDB(t)
	svc := newShortageService(t, db)
	ctx := context.Background()
	actor := pkgauth.Actor{UserID: uuid.New(), Name: "Dieu Phoi", Role: enums.StaffRoleDispatcher}

	source := seedShortOrder(t, db, "Ignore Co", 10, 7)
	itemID := source.Items[0].ID

	rows, err := svc.ListRemainingShortages(ctx, "ignore co")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, svc.IgnoreShortage(ctx, actor, source.ID, itemID))

	// Ignored shortages vanish regardless of remaining quantity.
	rows, err = svc.ListRemainingShortages(ctx, "ignore co")
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Second call is a no-op, not an error.
	require.NoError(t, svc.IgnoreShortage(ctx, actor, source.ID, itemID))

	var item models.OrderItem
	require.NoError(t, db.First(&item, "id = ?", itemID).Error)
	assert.True(t, item.ShortageIgnored)
}

func TestIgnoreShortage_notFound(t *testing.T) {
	db := setupShortagesTestDB(t)
	svc := newShortageService(t, db)
	actor := pkgauth.Actor{UserID: uuid.New(), Role: enums.StaffRoleDispatcher}

	source := seedShortOrder(t, db, "Missing Co", 10, 7)

	err := svc.IgnoreShortage(context.Background(), actor, source.ID, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	// Item id scoped to the wrong order is also not found.
	err = svc.IgnoreShortage(context.Background(), actor, uuid.New(), source.Items[0].ID)
	require.Error(t, err)
}
