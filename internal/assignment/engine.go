package assignment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/numdinkushi/vunalet-backend/internal/deliveries"
	"github.com/numdinkushi/vunalet-backend/internal/dispatchers"
	"github.com/numdinkushi/vunalet-backend/internal/notifications"
	"github.com/numdinkushi/vunalet-backend/internal/orders"
	"github.com/numdinkushi/vunalet-backend/pkg/config"
	"github.com/numdinkushi/vunalet-backend/pkg/db/models"
	"github.com/numdinkushi/vunalet-backend/pkg/enums"
	pkgerrors "github.com/numdinkushi/vunalet-backend/pkg/errors"
	"github.com/numdinkushi/vunalet-backend/pkg/logger"
	"github.com/numdinkushi/vunalet-backend/pkg/metrics"
	"github.com/numdinkushi/vunalet-backend/pkg/types"
)

// performanceWindow bounds how far back the sweep looks when deriving a
// dispatcher's completion rate and delivery speed.
const performanceWindow = 30 * 24 * time.Hour

// Result summarizes one auto-assignment sweep.
type Result struct {
	AssignedCount     int
	TotalExpiredCount int
}

// Engine reassigns orders whose claim window lapsed without a manual claim.
type Engine struct {
	orders        orders.Repository
	dispatchers   dispatchers.Repository
	deliveries    deliveries.Repository
	notifications notifications.Repository
	tx            txRunner
	log           *logger.Logger
	metrics       *metrics.AssignmentMetrics

	weights   Weights
	batchSize int
	opsUserID uuid.UUID

	now func() time.Time
}

// NewEngine wires the sweep with its collaborators and tuning from config.
func NewEngine(
	orderRepo orders.Repository,
	dispatcherRepo dispatchers.Repository,
	deliveryRepo deliveries.Repository,
	notificationRepo notifications.Repository,
	tx txRunner,
	log *logger.Logger,
	m *metrics.AssignmentMetrics,
	cfg config.AssignmentConfig,
) *Engine {
	weights := Weights{
		Workload:     cfg.WorkloadWeight,
		Proximity:    cfg.ProximityWeight,
		Performance:  cfg.PerformanceWeight,
		Availability: cfg.AvailabilityWeight,
	}
	opsUserID := uuid.Nil
	if cfg.OpsUserID != "" {
		if parsed, err := uuid.Parse(cfg.OpsUserID); err == nil {
			opsUserID = parsed
		}
	}
	return &Engine{
		orders:        orderRepo,
		dispatchers:   dispatcherRepo,
		deliveries:    deliveryRepo,
		notifications: notificationRepo,
		tx:            tx,
		log:           log,
		metrics:       m,
		weights:       weights,
		batchSize:     cfg.SweepBatchSize,
		opsUserID:     opsUserID,
		now:           time.Now,
	}
}

// AutoAssignExpired processes every available order whose claim window has
// passed, up to the configured batch size per run. Anything not assigned in
// this run stays available and is retried on the next sweep.
func (e *Engine) AutoAssignExpired(ctx context.Context) (Result, error) {
	now := e.now()
	nowMillis := now.UnixMilli()

	expired, err := e.orders.ListExpiredAvailable(ctx, nowMillis, e.batchSize)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired orders")
	}
	if len(expired) == 0 {
		return Result{}, nil
	}

	totalExpired, err := e.orders.CountExpiredAvailable(ctx, nowMillis)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count expired orders")
	}
	e.metrics.AddExpired(len(expired))

	pool, err := e.dispatchers.ListVerified(ctx)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dispatchers")
	}
	if len(pool) == 0 {
		e.notifyOps(ctx, "No dispatchers available",
			fmt.Sprintf("%d expired orders could not be auto-assigned: no verified dispatchers.", len(expired)),
			types.JSONMap{"expired_orders": len(expired)})
		return Result{TotalExpiredCount: int(totalExpired)},
			pkgerrors.New(pkgerrors.CodeNoDispatchers, "no verified dispatchers available")
	}

	workloads, err := e.buildWorkloads(ctx, pool, now)
	if err != nil {
		return Result{}, err
	}

	result := Result{TotalExpiredCount: int(totalExpired)}
	failed := 0
	var errs []error
	for i := range expired {
		order := &expired[i]
		octx := e.log.WithOrderID(ctx, order.ID.String())

		winner := e.pickDispatcher(workloads, pickupPoint(order))
		if winner == nil {
			failed++
			e.metrics.IncFailed()
			e.notifyOps(octx, "Auto-assignment failed",
				"No dispatcher could be scored for an expired order.",
				types.JSONMap{"order_id": order.ID.String()})
			continue
		}

		assigned, err := e.assign(octx, order, winner)
		if err != nil {
			failed++
			errs = append(errs, fmt.Errorf("assign order %s: %w", order.ID, err))
			e.metrics.IncFailed()
			e.log.Error(octx, "auto-assignment failed for order", err)
			e.notifyOps(octx, "Auto-assignment failed",
				"Assigning an expired order to a dispatcher failed.",
				types.JSONMap{"order_id": order.ID.String(), "dispatcher_id": winner.snapshot.DispatcherID.String()})
			continue
		}
		if !assigned {
			// Lost the race to a manual claim or a concurrent sweep.
			continue
		}

		result.AssignedCount++
		winner.snapshot.PendingOrders++
		winner.snapshot.TotalOrders++
		e.metrics.IncAssigned(string(enums.AssignmentMethodAuto))
	}

	if result.AssignedCount > 0 {
		e.notifyOps(ctx, "Auto-assignment sweep completed",
			fmt.Sprintf("Assigned %d of %d expired orders (%d failed).", result.AssignedCount, len(expired), failed),
			types.JSONMap{
				"total_expired": result.TotalExpiredCount,
				"assigned":      result.AssignedCount,
				"failed":        failed,
			})
	}
	return result, multierr.Combine(errs...)
}

type scoredDispatcher struct {
	snapshot EnhancedWorkload
	score    float64
}

// buildWorkloads assembles the read model the scorer consumes. Every
// dispatcher is treated as online; coordinates come from the profile and
// stay nil until a geocoding pipeline exists.
func (e *Engine) buildWorkloads(ctx context.Context, pool []models.User, now time.Time) ([]*scoredDispatcher, error) {
	ids := make([]uuid.UUID, 0, len(pool))
	for _, dispatcher := range pool {
		ids = append(ids, dispatcher.ID)
	}

	loads, err := e.dispatchers.ComputeWorkloads(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute workloads")
	}
	stats, err := e.deliveries.PerformanceStats(ctx, ids, now.Add(-performanceWindow))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute performance stats")
	}

	workloads := make([]*scoredDispatcher, 0, len(pool))
	for _, dispatcher := range pool {
		load := loads[dispatcher.ID]
		perf := stats[dispatcher.ID]
		workloads = append(workloads, &scoredDispatcher{
			snapshot: EnhancedWorkload{
				DispatcherID:       dispatcher.ID,
				PendingOrders:      load.Pending,
				TotalOrders:        load.Total,
				CompletionRate:     perf.CompletionRate(),
				CustomerRating:     dispatcher.CustomerRating,
				AvgDeliveryMinutes: perf.AvgDeliveryMinutes,
				Online:             true,
				Coordinates:        dispatcher.Coordinates,
			},
		})
	}
	// Ties go to the lowest dispatcher id, keeping runs reproducible.
	sort.SliceStable(workloads, func(i, j int) bool {
		return workloads[i].snapshot.DispatcherID.String() < workloads[j].snapshot.DispatcherID.String()
	})
	return workloads, nil
}

func (e *Engine) pickDispatcher(workloads []*scoredDispatcher, pickup *types.Coordinates) *scoredDispatcher {
	var winner *scoredDispatcher
	for _, candidate := range workloads {
		candidate.score = Score(candidate.snapshot, pickup, e.weights)
		if winner == nil || candidate.score > winner.score {
			winner = candidate
		}
	}
	return winner
}

// assign applies the conditional status patch plus the delivery record and
// the dispatcher notification in one transaction. A zero-row patch means
// the order left the available state concurrently and is skipped.
func (e *Engine) assign(ctx context.Context, order *models.Order, winner *scoredDispatcher) (bool, error) {
	dispatcherID := winner.snapshot.DispatcherID
	assigned := false

	err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, txErr := e.orders.WithTx(tx).AssignAvailable(ctx, order.ID, dispatcherID)
		if txErr != nil {
			return txErr
		}
		if affected == 0 {
			return nil
		}

		delivery := &models.Delivery{
			OrderID:             order.ID,
			DispatcherID:        dispatcherID,
			PickupLocation:      order.PickupLocation,
			PickupCoordinates:   order.PickupCoordinates,
			DeliveryAddress:     order.DeliveryAddress,
			DeliveryCoordinates: order.DeliveryCoordinates,
			Status:              enums.DeliveryStatusAssigned,
		}
		if txErr := e.deliveries.WithTx(tx).Create(ctx, delivery); txErr != nil {
			return txErr
		}

		notification := &models.Notification{
			UserID:  dispatcherID,
			Type:    enums.NotificationTypeDelivery,
			Title:   "Delivery assigned",
			Message: "An order was automatically assigned to you.",
			Metadata: types.JSONMap{
				"order_id":          order.ID.String(),
				"assignment_method": string(enums.AssignmentMethodAuto),
				"score":             winner.score,
			},
		}
		if txErr := e.notifications.WithTx(tx).Create(ctx, notification); txErr != nil {
			return txErr
		}

		assigned = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return assigned, nil
}

func pickupPoint(order *models.Order) *types.Coordinates {
	if order.PickupCoordinates != nil {
		return order.PickupCoordinates
	}
	return order.DeliveryCoordinates
}

// notifyOps records an operations notification when a recipient is
// configured; otherwise the event is only logged.
func (e *Engine) notifyOps(ctx context.Context, title, message string, metadata types.JSONMap) {
	if e.opsUserID == uuid.Nil {
		e.log.Warn(ctx, "operations notification skipped (no recipient configured): "+title)
		return
	}
	notification := &models.Notification{
		UserID:   e.opsUserID,
		Type:     enums.NotificationTypeSystem,
		Title:    title,
		Message:  message,
		Metadata: metadata,
	}
	if err := e.notifications.Create(ctx, notification); err != nil {
		e.log.Error(ctx, "record operations notification", err)
	}
}
