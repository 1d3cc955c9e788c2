package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/numdinkushi/vunalet-backend/pkg/enums"
	"github.com/numdinkushi/vunalet-backend/pkg/types"
)

// CreateOrderInput captures everything required to open a new order.
type CreateOrderInput struct {
	BuyerID             uuid.UUID
	FarmerID            uuid.UUID
	DeliveryAddress     string
	DeliveryCoordinates *types.Coordinates
	PickupLocation      string
	PickupCoordinates   *types.Coordinates
	DeliveryCost        decimal.Decimal
	Items               []CreateOrderItemInput
}

// CreateOrderItemInput is a single product line on a new order.
type CreateOrderItemInput struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Unit      string
}

// AssignedOrderEntry is one row in a dispatcher's queue of accepted orders.
type AssignedOrderEntry struct {
	OrderID          uuid.UUID               `json:"order_id"`
	OrderStatus      enums.OrderStatus       `json:"order_status"`
	AssignmentMethod *enums.AssignmentMethod `json:"assignment_method,omitempty"`
	PickupLocation   string                  `json:"pickup_location"`
	DeliveryAddress  string                  `json:"delivery_address"`
	DispatcherAmount decimal.Decimal         `json:"dispatcher_amount"`
	CreatedAt        time.Time               `json:"created_at"`
}

// AssignedOrderList is a cursor-paginated page of a dispatcher's orders.
type AssignedOrderList struct {
	Entries    []AssignedOrderEntry `json:"entries"`
	NextCursor *string              `json:"next_cursor,omitempty"`
}
