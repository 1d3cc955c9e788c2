package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/numdinkushi/vunalet-backend/pkg/db/models"
	"github.com/numdinkushi/vunalet-backend/pkg/pagination"
)

// Repository exposes persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListExpiredAvailable(ctx context.Context, beforeMillis int64, limit int) ([]models.Order, error)
	CountExpiredAvailable(ctx context.Context, beforeMillis int64) (int64, error)
	ClaimAvailable(ctx context.Context, orderID, dispatcherID uuid.UUID) (int64, error)
	AssignAvailable(ctx context.Context, orderID, dispatcherID uuid.UUID) (int64, error)
	ListAssignedOrders(ctx context.Context, dispatcherID uuid.UUID, params pagination.Params) (*AssignedOrderList, error)
}
