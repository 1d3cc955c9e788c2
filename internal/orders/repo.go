package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/numdinkushi/vunalet-backend/pkg/db/models"
	"github.com/numdinkushi/vunalet-backend/pkg/enums"
	"github.com/numdinkushi/vunalet-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListExpiredAvailable(ctx context.Context, beforeMillis int64, limit int) ([]models.Order, error) {
	var expired []models.Order
	query := r.db.WithContext(ctx).
		Where("assignment_status = ?", enums.AssignmentStatusAvailable).
		Where("assignment_expiry_time IS NOT NULL AND assignment_expiry_time < ?", beforeMillis).
		Order("assignment_expiry_time ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&expired).Error; err != nil {
		return nil, err
	}
	return expired, nil
}

func (r *repository) CountExpiredAvailable(ctx context.Context, beforeMillis int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("assignment_status = ?", enums.AssignmentStatusAvailable).
		Where("assignment_expiry_time IS NOT NULL AND assignment_expiry_time < ?", beforeMillis).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ClaimAvailable transitions an order to claimed only while it is still
// available. The WHERE clause carries the state check so two dispatchers
// racing for the same order cannot both win.
func (r *repository) ClaimAvailable(ctx context.Context, orderID, dispatcherID uuid.UUID) (int64, error) {
	return r.patchAvailable(ctx, orderID, dispatcherID, enums.AssignmentStatusClaimed, enums.AssignmentMethodManual)
}

// AssignAvailable transitions an order to auto_assigned under the same
// conditional guard as ClaimAvailable.
func (r *repository) AssignAvailable(ctx context.Context, orderID, dispatcherID uuid.UUID) (int64, error) {
	return r.patchAvailable(ctx, orderID, dispatcherID, enums.AssignmentStatusAutoAssigned, enums.AssignmentMethodAuto)
}

func (r *repository) patchAvailable(ctx context.Context, orderID, dispatcherID uuid.UUID, status enums.AssignmentStatus, method enums.AssignmentMethod) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND assignment_status = ?", orderID, enums.AssignmentStatusAvailable).
		Updates(map[string]any{
			"assignment_status": status,
			"assignment_method": method,
			"dispatcher_id":     dispatcherID,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) ListAssignedOrders(ctx context.Context, dispatcherID uuid.UUID, params pagination.Params) (*AssignedOrderList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("dispatcher_id = ?", dispatcherID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &AssignedOrderList{Entries: make([]AssignedOrderEntry, 0, len(rows))}
	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &encoded
	}
	for _, row := range rows {
		list.Entries = append(list.Entries, AssignedOrderEntry{
			OrderID:          row.ID,
			OrderStatus:      row.OrderStatus,
			AssignmentMethod: row.AssignmentMethod,
			PickupLocation:   row.PickupLocation,
			DeliveryAddress:  row.DeliveryAddress,
			DispatcherAmount: row.DispatcherAmount,
			CreatedAt:        row.CreatedAt,
		})
	}
	return list, nil
}
