package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
	"github.com/bedtex/dispatch-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	customers := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  address TEXT,
  phone TEXT,
  note TEXT,
  debt_limit NUMERIC NOT NULL DEFAULT 0,
  debt_balance NUMERIC NOT NULL DEFAULT 0,
  bypass_debt_check INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	vehicles := `
CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  class TEXT NOT NULL,
  time_slot TEXT,
  destination TEXT NOT NULL,
  date DATETIME NOT NULL,
  note TEXT,
  is_printed INTEGER NOT NULL DEFAULT 0,
  is_completed INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
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
	orderItems := `
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
	outboxEvents := `
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
	for _, ddl := range []string{customers, vehicles, orders, orderItems, outboxEvents} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, name string, limit, balance decimal.Decimal, bypass bool) *models.Customer {
	t.Helper()

	customer := &models.Customer{
		ID:              uuid.New(),
		Code:            uuid.NewString()[:8],
		Name:            name,
		Address:         "12 Mill Road",
		Phone:           "0912345678",
		DebtLimit:       limit,
		DebtBalance:     balance,
		BypassDebtCheck: bypass,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func seedVehicle(t *testing.T, db *gorm.DB, date time.Time) *models.Vehicle {
	t.Helper()

	vehicle := &models.Vehicle{
		ID:          uuid.New(),
		Class:       enums.VehicleClassTwoAndHalf,
		TimeSlot:    "07:30",
		Destination: "Hai Phong",
		Date:        date,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

// gorm-backed loaders standing in for the customer and vehicle repositories.
type customerLoaderStub struct{ db *gorm.DB }

func (s customerLoaderStub) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

type vehicleLoaderStub struct{ db *gorm.DB }

func (s vehicleLoaderStub) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := s.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}
