package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/numdinkushi/vunalet-backend/pkg/enums"
	"github.com/numdinkushi/vunalet-backend/pkg/types"
)

// Delivery is created once per assignment, manual or automatic, and is
// one-to-one with a successfully assigned order.
type Delivery struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	DispatcherID uuid.UUID `gorm:"column:dispatcher_id;type:uuid;not null"`

	PickupLocation      string             `gorm:"column:pickup_location;type:text;not null"`
	PickupCoordinates   *types.Coordinates `gorm:"column:pickup_coordinates;type:jsonb"`
	DeliveryAddress     string             `gorm:"column:delivery_address;type:text;not null"`
	DeliveryCoordinates *types.Coordinates `gorm:"column:delivery_coordinates;type:jsonb"`

	EstimatedPickupTime   *time.Time `gorm:"column:estimated_pickup_time"`
	EstimatedDeliveryTime *time.Time `gorm:"column:estimated_delivery_time"`
	DeliveredAt           *time.Time `gorm:"column:delivered_at"`

	Status enums.DeliveryStatus `gorm:"column:status;type:delivery_status;not null;default:'assigned'"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
