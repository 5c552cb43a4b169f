package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	"github.com/bedtex/dispatch-backend/pkg/logger"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
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
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func testOutboxLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "outbox-test", Output: io.Discard})
}

func TestEmitWrapsPayloadInEnvelope(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, testOutboxLogger())

	orderID := uuid.New()
	actorID := uuid.New()
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &ActorRef{UserID: actorID, Role: "dispatcher"},
			Data:          map[string]any{"orderId": orderID.String()},
			Version:       1,
		})
	})
	require.NoError(t, err)

	var row models.OutboxEvent
	require.NoError(t, db.First(&row).Error)
	require.Equal(t, enums.EventOrderCreated, row.EventType)
	require.Equal(t, enums.AggregateOrder, row.AggregateType)
	require.Equal(t, orderID, row.AggregateID)
	require.Nil(t, row.PublishedAt)

	var env PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &env))
	require.Equal(t, 1, env.Version)
	require.NotEmpty(t, env.EventID)
	require.False(t, env.OccurredAt.IsZero())
	require.NotNil(t, env.Actor)
	require.Equal(t, actorID, env.Actor.UserID)

	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, orderID.String(), data["orderId"])
}

func TestEmitRequiresTransaction(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), testOutboxLogger())

	err := svc.Emit(context.Background(), nil, DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
	})
	require.Error(t, err)
}

func TestFetchUnpublishedSkipsExhaustedAndPublished(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	now := time.Now()
	fresh := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventVehicleAssigned,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		CreatedAt:     now.Add(-2 * time.Minute),
	}
	exhausted := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventVehicleAssigned,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		AttemptCount:  3,
		CreatedAt:     now.Add(-1 * time.Minute),
	}
	published := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventVehicleAssigned,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		PublishedAt:   &now,
		CreatedAt:     now,
	}
	require.NoError(t, db.Create(&fresh).Error)
	require.NoError(t, db.Create(&exhausted).Error)
	require.NoError(t, db.Create(&published).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		rows, err := repo.FetchUnpublishedForPublish(tx, 10, 3)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, fresh.ID, rows[0].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestMarkPublishedAndFailed(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventItemConfirmed,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		CreatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(&event).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.MarkFailedTx(tx, event.ID, errors.New("broker unavailable"))
	})
	require.NoError(t, err)

	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	require.Equal(t, 1, row.AttemptCount)
	require.NotNil(t, row.LastError)
	require.Equal(t, "broker unavailable", *row.LastError)
	require.Nil(t, row.PublishedAt)

	err = db.Transaction(func(tx *gorm.DB) error {
		return repo.MarkPublishedTx(tx, event.ID)
	})
	require.NoError(t, err)

	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	require.NotNil(t, row.PublishedAt)
}
