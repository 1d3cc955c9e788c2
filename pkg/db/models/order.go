package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/numdinkushi/vunalet-backend/pkg/enums"
	"github.com/numdinkushi/vunalet-backend/pkg/types"
)

// Order is a transaction between a buyer, a farmer, and eventually exactly
// one dispatcher. The assignment columns form a small state machine:
// available -> claimed | auto_assigned, with the expiry stamped once at
// creation and never extended.
type Order struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID      uuid.UUID  `gorm:"column:buyer_id;type:uuid;not null"`
	FarmerID     uuid.UUID  `gorm:"column:farmer_id;type:uuid;not null"`
	DispatcherID *uuid.UUID `gorm:"column:dispatcher_id;type:uuid"`

	TotalAmount      decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	FarmerAmount     decimal.Decimal `gorm:"column:farmer_amount;type:numeric(12,2);not null"`
	DispatcherAmount decimal.Decimal `gorm:"column:dispatcher_amount;type:numeric(12,2);not null"`
	DeliveryCost     decimal.Decimal `gorm:"column:delivery_cost;type:numeric(12,2);not null;default:0"`

	DeliveryAddress     string             `gorm:"column:delivery_address;type:text;not null"`
	DeliveryCoordinates *types.Coordinates `gorm:"column:delivery_coordinates;type:jsonb"`
	PickupLocation      string             `gorm:"column:pickup_location;type:text;not null"`
	PickupCoordinates   *types.Coordinates `gorm:"column:pickup_coordinates;type:jsonb"`

	OrderStatus      enums.OrderStatus       `gorm:"column:order_status;type:order_status;not null;default:'pending'"`
	AssignmentStatus enums.AssignmentStatus  `gorm:"column:assignment_status;type:assignment_status;not null;default:'available'"`
	AssignmentMethod *enums.AssignmentMethod `gorm:"column:assignment_method;type:assignment_method"`
	// AssignmentExpiryTime is epoch milliseconds; the claim window deadline.
	AssignmentExpiryTime *int64 `gorm:"column:assignment_expiry_time"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is a single product line on an order.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;type:text;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Unit      string          `gorm:"column:unit;type:text;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
