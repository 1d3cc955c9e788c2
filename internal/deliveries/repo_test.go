package deliveries

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/numdinkushi/vunalet-backend/pkg/db/models"
	"github.com/numdinkushi/vunalet-backend/pkg/enums"
)

func setupDeliveriesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:deliveriesrepo?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	deliveries := `
CREATE TABLE IF NOT EXISTS deliveries (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  dispatcher_id TEXT NOT NULL,
  pickup_location TEXT NOT NULL,
  pickup_coordinates TEXT,
  delivery_address TEXT NOT NULL,
  delivery_coordinates TEXT,
  estimated_pickup_time DATETIME,
  estimated_delivery_time DATETIME,
  delivered_at DATETIME,
  status TEXT NOT NULL DEFAULT 'assigned',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(deliveries).Error)
	require.NoError(t, db.Exec("DELETE FROM deliveries").Error)
	return db
}

func TestRepositoryCreateAndFindByOrderID(t *testing.T) {
	db := setupDeliveriesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	delivery := &models.Delivery{
		ID:              uuid.New(),
		OrderID:         orderID,
		DispatcherID:    uuid.New(),
		PickupLocation:  "Farm Gate, Stellenbosch",
		DeliveryAddress: "12 Main Rd, Cape Town",
		Status:          enums.DeliveryStatusAssigned,
	}
	require.NoError(t, repo.Create(ctx, delivery))

	found, err := repo.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, delivery.ID, found.ID)
	assert.Equal(t, delivery.DispatcherID, found.DispatcherID)
	assert.Equal(t, enums.DeliveryStatusAssigned, found.Status)

	// One delivery per order.
	dupe := &models.Delivery{
		ID:              uuid.New(),
		OrderID:         orderID,
		DispatcherID:    uuid.New(),
		PickupLocation:  "Elsewhere",
		DeliveryAddress: "Elsewhere",
		Status:          enums.DeliveryStatusAssigned,
	}
	assert.Error(t, repo.Create(ctx, dupe))
}

func TestPerformanceStatsCompletionRate(t *testing.T) {
	id := uuid.New()

	none := PerformanceStats{DispatcherID: id}
	assert.Nil(t, none.CompletionRate())

	some := PerformanceStats{DispatcherID: id, Total: 4, Delivered: 3}
	rate := some.CompletionRate()
	require.NotNil(t, rate)
	assert.InDelta(t, 0.75, *rate, 1e-9)
}
