package dispatchers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/numdinkushi/vunalet-backend/pkg/db/models"
	"github.com/numdinkushi/vunalet-backend/pkg/enums"
)

// WorkloadSnapshot counts a dispatcher's order load at query time.
type WorkloadSnapshot struct {
	DispatcherID uuid.UUID
	// Pending counts assignments still in flight, the number the scorer
	// compares against capacity.
	Pending int
	Total   int
}

// Repository exposes dispatcher reads used by claim checks and the
// auto-assignment sweep.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListVerified(ctx context.Context) ([]models.User, error)
	ComputeWorkloads(ctx context.Context, dispatcherIDs []uuid.UUID) (map[uuid.UUID]WorkloadSnapshot, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dispatchers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, enums.UserRoleDispatcher).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListVerified returns the pool eligible for auto-assignment: active,
// verified accounts with the dispatcher role.
func (r *repository) ListVerified(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", enums.UserRoleDispatcher).
		Where("verification_status = ?", enums.VerificationStatusVerified).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

type workloadRow struct {
	DispatcherID uuid.UUID
	Pending      int
	Total        int
}

func (r *repository) ComputeWorkloads(ctx context.Context, dispatcherIDs []uuid.UUID) (map[uuid.UUID]WorkloadSnapshot, error) {
	snapshots := make(map[uuid.UUID]WorkloadSnapshot, len(dispatcherIDs))
	for _, id := range dispatcherIDs {
		snapshots[id] = WorkloadSnapshot{DispatcherID: id}
	}
	if len(dispatcherIDs) == 0 {
		return snapshots, nil
	}

	var rows []workloadRow
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(
			"dispatcher_id AS dispatcher_id, "+
				"COUNT(*) FILTER (WHERE order_status NOT IN ?) AS pending, "+
				"COUNT(*) AS total",
			[]enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusCancelled},
		).
		Where("dispatcher_id IN ?", dispatcherIDs).
		Group("dispatcher_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		snapshots[row.DispatcherID] = WorkloadSnapshot{
			DispatcherID: row.DispatcherID,
			Pending:      row.Pending,
			Total:        row.Total,
		}
	}
	return snapshots, nil
}
