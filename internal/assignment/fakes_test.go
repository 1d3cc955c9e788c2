package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/numdinkushi/vunalet-backend/internal/deliveries"
	"github.com/numdinkushi/vunalet-backend/internal/dispatchers"
	"github.com/numdinkushi/vunalet-backend/internal/notifications"
	"github.com/numdinkushi/vunalet-backend/internal/orders"
	"github.com/numdinkushi/vunalet-backend/pkg/db/models"
	"github.com/numdinkushi/vunalet-backend/pkg/pagination"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeOrderRepo struct {
	findByIDFn             func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	listExpiredAvailableFn func(ctx context.Context, beforeMillis int64, limit int) ([]models.Order, error)
	countExpiredFn         func(ctx context.Context, beforeMillis int64) (int64, error)
	claimAvailableFn       func(ctx context.Context, orderID, dispatcherID uuid.UUID) (int64, error)
	assignAvailableFn      func(ctx context.Context, orderID, dispatcherID uuid.UUID) (int64, error)
}

func (f *fakeOrderRepo) WithTx(tx *gorm.DB) orders.Repository { return f }

func (f *fakeOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (f *fakeOrderRepo) CreateItems(ctx context.Context, items []models.OrderItem) error {
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) ListExpiredAvailable(ctx context.Context, beforeMillis int64, limit int) ([]models.Order, error) {
	if f.listExpiredAvailableFn != nil {
		return f.listExpiredAvailableFn(ctx, beforeMillis, limit)
	}
	return nil, nil
}

func (f *fakeOrderRepo) CountExpiredAvailable(ctx context.Context, beforeMillis int64) (int64, error) {
	if f.countExpiredFn != nil {
		return f.countExpiredFn(ctx, beforeMillis)
	}
	return 0, nil
}

func (f *fakeOrderRepo) ClaimAvailable(ctx context.Context, orderID, dispatcherID uuid.UUID) (int64, error) {
	if f.claimAvailableFn != nil {
		return f.claimAvailableFn(ctx, orderID, dispatcherID)
	}
	return 0, nil
}

func (f *fakeOrderRepo) AssignAvailable(ctx context.Context, orderID, dispatcherID uuid.UUID) (int64, error) {
	if f.assignAvailableFn != nil {
		return f.assignAvailableFn(ctx, orderID, dispatcherID)
	}
	return 0, nil
}

func (f *fakeOrderRepo) ListAssignedOrders(ctx context.Context, dispatcherID uuid.UUID, params pagination.Params) (*orders.AssignedOrderList, error) {
	return &orders.AssignedOrderList{}, nil
}

type fakeDispatcherRepo struct {
	findByIDFn         func(ctx context.Context, id uuid.UUID) (*models.User, error)
	listVerifiedFn     func(ctx context.Context) ([]models.User, error)
	computeWorkloadsFn func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]dispatchers.WorkloadSnapshot, error)
}

func (f *fakeDispatcherRepo) WithTx(tx *gorm.DB) dispatchers.Repository { return f }

func (f *fakeDispatcherRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDispatcherRepo) ListVerified(ctx context.Context) ([]models.User, error) {
	if f.listVerifiedFn != nil {
		return f.listVerifiedFn(ctx)
	}
	return nil, nil
}

func (f *fakeDispatcherRepo) ComputeWorkloads(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]dispatchers.WorkloadSnapshot, error) {
	if f.computeWorkloadsFn != nil {
		return f.computeWorkloadsFn(ctx, ids)
	}
	snapshots := make(map[uuid.UUID]dispatchers.WorkloadSnapshot, len(ids))
	for _, id := range ids {
		snapshots[id] = dispatchers.WorkloadSnapshot{DispatcherID: id}
	}
	return snapshots, nil
}

type fakeDeliveryRepo struct {
	createFn           func(ctx context.Context, delivery *models.Delivery) error
	performanceStatsFn func(ctx context.Context, ids []uuid.UUID, since time.Time) (map[uuid.UUID]deliveries.PerformanceStats, error)

	created []*models.Delivery
}

func (f *fakeDeliveryRepo) WithTx(tx *gorm.DB) deliveries.Repository { return f }

func (f *fakeDeliveryRepo) Create(ctx context.Context, delivery *models.Delivery) error {
	if f.createFn != nil {
		return f.createFn(ctx, delivery)
	}
	f.created = append(f.created, delivery)
	return nil
}

func (f *fakeDeliveryRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDeliveryRepo) PerformanceStats(ctx context.Context, ids []uuid.UUID, since time.Time) (map[uuid.UUID]deliveries.PerformanceStats, error) {
	if f.performanceStatsFn != nil {
		return f.performanceStatsFn(ctx, ids, since)
	}
	stats := make(map[uuid.UUID]deliveries.PerformanceStats, len(ids))
	for _, id := range ids {
		stats[id] = deliveries.PerformanceStats{DispatcherID: id}
	}
	return stats, nil
}

type fakeNotificationRepo struct {
	createFn func(ctx context.Context, notification *models.Notification) error

	created []*models.Notification
}

func (f *fakeNotificationRepo) WithTx(tx *gorm.DB) notifications.Repository { return f }

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	if f.createFn != nil {
		return f.createFn(ctx, notification)
	}
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeNotificationRepo) List(ctx context.Context, params notifications.ListQuery) ([]models.Notification, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (notifications.MarkResult, error) {
	return notifications.MarkResult{}, nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}
