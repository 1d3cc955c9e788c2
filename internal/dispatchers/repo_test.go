package dispatchers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/numdinkushi/vunalet-backend/pkg/db/models"
	"github.com/numdinkushi/vunalet-backend/pkg/enums"
)

func setupDispatchersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:dispatchersrepo?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL,
  verification_status TEXT NOT NULL DEFAULT 'pending',
  location TEXT,
  coordinates TEXT,
  customer_rating REAL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_active_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  farmer_id TEXT NOT NULL,
  dispatcher_id TEXT,
  total_amount TEXT NOT NULL,
  farmer_amount TEXT NOT NULL,
  dispatcher_amount TEXT NOT NULL,
  delivery_cost TEXT NOT NULL DEFAULT '0',
  delivery_address TEXT NOT NULL,
  delivery_coordinates TEXT,
  pickup_location TEXT NOT NULL,
  pickup_coordinates TEXT,
  order_status TEXT NOT NULL DEFAULT 'pending',
  assignment_status TEXT NOT NULL DEFAULT 'available',
  assignment_method TEXT,
  assignment_expiry_time INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec("DELETE FROM orders").Error)
	require.NoError(t, db.Exec("DELETE FROM users").Error)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role enums.UserRole, verification enums.VerificationStatus, active bool) *models.User {
	t.Helper()

	user := &models.User{
		ID:                 uuid.New(),
		Email:              uuid.NewString() + "@vunalet.test",
		FirstName:          "Seed",
		LastName:           "User",
		Role:               role,
		VerificationStatus: verification,
		IsActive:           active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedOrderFor(t *testing.T, db *gorm.DB, dispatcherID uuid.UUID, status enums.OrderStatus) {
	t.Helper()

	method := enums.AssignmentMethodManual
	order := &models.Order{
		ID:               uuid.New(),
		BuyerID:          uuid.New(),
		FarmerID:         uuid.New(),
		DispatcherID:     &dispatcherID,
		TotalAmount:      decimal.NewFromInt(100),
		FarmerAmount:     decimal.NewFromInt(80),
		DispatcherAmount: decimal.NewFromInt(20),
		DeliveryCost:     decimal.NewFromInt(20),
		DeliveryAddress:  "1 Delivery St",
		PickupLocation:   "2 Pickup Ave",
		OrderStatus:      status,
		AssignmentStatus: enums.AssignmentStatusClaimed,
		AssignmentMethod: &method,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, db.Omit("Items").Create(order).Error)
}

func TestRepositoryListVerified(t *testing.T) {
	db := setupDispatchersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	verified := seedUser(t, db, enums.UserRoleDispatcher, enums.VerificationStatusVerified, true)
	seedUser(t, db, enums.UserRoleDispatcher, enums.VerificationStatusPending, true)
	seedUser(t, db, enums.UserRoleDispatcher, enums.VerificationStatusVerified, false)
	seedUser(t, db, enums.UserRoleFarmer, enums.VerificationStatusVerified, true)

	pool, err := repo.ListVerified(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, verified.ID, pool[0].ID)
}

func TestRepositoryComputeWorkloads(t *testing.T) {
	db := setupDispatchersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	busy := seedUser(t, db, enums.UserRoleDispatcher, enums.VerificationStatusVerified, true)
	idle := seedUser(t, db, enums.UserRoleDispatcher, enums.VerificationStatusVerified, true)

	seedOrderFor(t, db, busy.ID, enums.OrderStatusPending)
	seedOrderFor(t, db, busy.ID, enums.OrderStatusInTransit)
	seedOrderFor(t, db, busy.ID, enums.OrderStatusDelivered)
	seedOrderFor(t, db, busy.ID, enums.OrderStatusCancelled)

	snapshots, err := repo.ComputeWorkloads(ctx, []uuid.UUID{busy.ID, idle.ID})
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	assert.Equal(t, 2, snapshots[busy.ID].Pending)
	assert.Equal(t, 4, snapshots[busy.ID].Total)
	assert.Equal(t, 0, snapshots[idle.ID].Pending)
	assert.Equal(t, 0, snapshots[idle.ID].Total)
}
