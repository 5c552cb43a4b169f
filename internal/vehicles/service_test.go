package vehicles

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgauth "github.com/bedtex/dispatch-backend/pkg/auth"
	pkgdb "github.com/bedtex/dispatch-backend/pkg/db"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
)

func setupVehiclesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

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
	require.NoError(t, db.Exec(vehicles).Error)
	require.NoError(t, db.Exec(outboxEvents).Error)
	return db
}

type stubOrderCounter struct {
	counts map[uuid.UUID]int64
}

func (s stubOrderCounter) CountByVehicle(_ context.Context, vehicleID uuid.UUID) (int64, error) {
	return s.counts[vehicleID], nil
}

func newVehicleService(t *testing.T, db *gorm.DB, counter orderCounter) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), pkgdb.NewFromConn(db), counter, nil)
	require.NoError(t, err)
	return svc
}

func adminActor() pkgauth.Actor {
	return pkgauth.Actor{UserID: uuid.New(), Name: "Quang Admin", Role: enums.StaffRoleAdmin}
}

func TestCreateVehicle(t *testing.T) {
	db := setupVehiclesTestDB(t)
	svc := newVehicleService(t, db, stubOrderCounter{})
	actor := adminActor()

	created, err := svc.Create(context.Background(), actor, CreateVehicleInput{
		Class:       enums.VehicleClassFiveTon,
		TimeSlot:    "06:00",
		Destination: "Da Nang",
		Date:        time.Now().AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.VehicleClassFiveTon, created.Class)
	assert.Equal(t, "Da Nang", created.Destination)
	assert.False(t, created.IsPrinted)
	assert.False(t, created.IsCompleted)

	t.Run("pastDateRejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), actor, CreateVehicleInput{
			Class:       enums.VehicleClassFiveTon,
			Destination: "Da Nang",
			Date:        time.Now().AddDate(0, 0, -1),
		})
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	})

	t.Run("todayAllowed", func(t *testing.T) {
		_, err := svc.Create(context.Background(), actor, CreateVehicleInput{
			Class:       enums.VehicleClassHalfTon,
			Destination: "Hue",
			Date:        time.Now(),
		})
		require.NoError(t, err)
	})

	t.Run("unknownClassRejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), actor, CreateVehicleInput{
			Class:       enums.VehicleClass("12t"),
			Destination: "Hue",
			Date:        time.Now(),
		})
		require.Error(t, err)
	})

	t.Run("missingDestinationRejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), actor, CreateVehicleInput{
			Class: enums.VehicleClassHalfTon,
			Date:  time.Now(),
		})
		require.Error(t, err)
	})
}

func TestUpdateVehicle(t *testing.T) {
	db := setupVehiclesTestDB(t)
	svc := newVehicleService(t, db, stubOrderCounter{})
	actor := adminActor()

	created, err := svc.Create(context.Background(), actor, CreateVehicleInput{
		Class:       enums.VehicleClassOneTon,
		Destination: "Vinh",
		Date:        time.Now().AddDate(0, 0, 2),
	})
	require.NoError(t, err)

	newDest := "Thanh Hoa"
	newSlot := "13:30"
	updated, err := svc.Update(context.Background(), actor, created.ID, UpdateVehicleInput{
		Destination: &newDest,
		TimeSlot:    &newSlot,
	})
	require.NoError(t, err)
	assert.Equal(t, "Thanh Hoa", updated.Destination)
	assert.Equal(t, "13:30", updated.TimeSlot)
	assert.Equal(t, enums.VehicleClassOneTon, updated.Class)

	_, err = svc.Update(context.Background(), actor, uuid.New(), UpdateVehicleInput{Destination: &newDest})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeleteVehicle_blockedWhileReferenced(t *testing.T) {
	db := setupVehiclesTestDB(t)
	actor := adminActor()

	counter := stubOrderCounter{counts: map[uuid.UUID]int64{}}
	svc := newVehicleService(t, db, counter)

	created, err := svc.Create(context.Background(), actor, CreateVehicleInput{
		Class:       enums.VehicleClassContainer,
		Destination: "Hai Phong",
		Date:        time.Now().AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	counter.counts[created.ID] = 2
	err = svc.Delete(context.Background(), actor, created.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasReason(err, "vehicle_in_use"))
	typed := pkgerrors.As(err)
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(2), details["order_count"])

	counter.counts[created.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), actor, created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.Error(t, err)
}

func TestVehicleFlags(t *testing.T) {
	db := setupVehiclesTestDB(t)
	svc := newVehicleService(t, db, stubOrderCounter{})
	actor := adminActor()

	created, err := svc.Create(context.Background(), actor, CreateVehicleInput{
		Class:       enums.VehicleClassEightTon,
		Destination: "Nam Dinh",
		Date:        time.Now().AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	printed, err := svc.SetPrinted(context.Background(), actor, created.ID, true)
	require.NoError(t, err)
	assert.True(t, printed.IsPrinted)
	assert.False(t, printed.IsCompleted)

	completed, err := svc.SetCompleted(context.Background(), actor, created.ID, true)
	require.NoError(t, err)
	assert.True(t, completed.IsCompleted)
	assert.True(t, completed.IsPrinted)

	reopened, err := svc.SetCompleted(context.Background(), actor, created.ID, false)
	require.NoError(t, err)
	assert.False(t, reopened.IsCompleted)
}

func TestListVehicles_filters(t *testing.T) {
	db := setupVehiclesTestDB(t)
	svc := newVehicleService(t, db, stubOrderCounter{})
	actor := adminActor()

	dayAfter := time.Now().AddDate(0, 0, 2)
	_, err := svc.Create(context.Background(), actor, CreateVehicleInput{
		Class: enums.VehicleClassOneTon, Destination: "Hanoi North", Date: time.Now().AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), actor, CreateVehicleInput{
		Class: enums.VehicleClassOneTon, Destination: "Hanoi South", Date: dayAfter,
	})
	require.NoError(t, err)

	from := startOfDay(dayAfter)
	rows, err := svc.List(context.Background(), ListFilters{From: &from})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Hanoi South", rows[0].Destination)

	rows, err = svc.List(context.Background(), ListFilters{Destination: "hanoi"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
