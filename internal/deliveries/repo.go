package deliveries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/numdinkushi/vunalet-backend/pkg/db/models"
	"github.com/numdinkushi/vunalet-backend/pkg/enums"
)

// PerformanceStats aggregates a dispatcher's recent delivery record.
type PerformanceStats struct {
	DispatcherID uuid.UUID
	Total        int
	Delivered    int
	// AvgDeliveryMinutes is nil when the dispatcher has no completed
	// deliveries in the window.
	AvgDeliveryMinutes *float64
}

// CompletionRate is delivered over total, or nil with no history.
func (s PerformanceStats) CompletionRate() *float64 {
	if s.Total == 0 {
		return nil
	}
	rate := float64(s.Delivered) / float64(s.Total)
	return &rate
}

// Repository exposes persistence helpers for delivery records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, delivery *models.Delivery) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error)
	PerformanceStats(ctx context.Context, dispatcherIDs []uuid.UUID, since time.Time) (map[uuid.UUID]PerformanceStats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deliveries repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Create(delivery).Error
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

type performanceRow struct {
	DispatcherID uuid.UUID
	Total        int
	Delivered    int
	AvgMinutes   *float64
}

// PerformanceStats aggregates per dispatcher over deliveries created since
// the cutoff. Average delivery time is measured from assignment to the
// delivered timestamp.
func (r *repository) PerformanceStats(ctx context.Context, dispatcherIDs []uuid.UUID, since time.Time) (map[uuid.UUID]PerformanceStats, error) {
	stats := make(map[uuid.UUID]PerformanceStats, len(dispatcherIDs))
	for _, id := range dispatcherIDs {
		stats[id] = PerformanceStats{DispatcherID: id}
	}
	if len(dispatcherIDs) == 0 {
		return stats, nil
	}

	var rows []performanceRow
	err := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Select(
			"dispatcher_id AS dispatcher_id, "+
				"COUNT(*) AS total, "+
				"COUNT(*) FILTER (WHERE status = ?) AS delivered, "+
				"AVG(EXTRACT(EPOCH FROM (delivered_at - created_at)) / 60.0) FILTER (WHERE status = ? AND delivered_at IS NOT NULL) AS avg_minutes",
			enums.DeliveryStatusDelivered, enums.DeliveryStatusDelivered,
		).
		Where("dispatcher_id IN ?", dispatcherIDs).
		Where("created_at >= ?", since).
		Group("dispatcher_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats[row.DispatcherID] = PerformanceStats{
			DispatcherID:       row.DispatcherID,
			Total:              row.Total,
			Delivered:          row.Delivered,
			AvgDeliveryMinutes: row.AvgMinutes,
		}
	}
	return stats, nil
}
