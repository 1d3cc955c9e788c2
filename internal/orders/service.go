package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/numdinkushi/vunalet-backend/pkg/db/models"
	"github.com/numdinkushi/vunalet-backend/pkg/enums"
	pkgerrors "github.com/numdinkushi/vunalet-backend/pkg/errors"
	"github.com/numdinkushi/vunalet-backend/pkg/logger"
	"github.com/numdinkushi/vunalet-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListAssignedOrders(ctx context.Context, dispatcherID uuid.UUID, params pagination.Params) (*AssignedOrderList, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	log         *logger.Logger
	claimWindow time.Duration
	now         func() time.Time
}

// NewService wires the orders service with its dependencies. claimWindow is
// how long a fresh order stays open for manual dispatcher claims.
func NewService(repo Repository, tx txRunner, log *logger.Logger, claimWindow time.Duration) Service {
	return &service{
		repo:        repo,
		tx:          tx,
		log:         log,
		claimWindow: claimWindow,
		now:         time.Now,
	}
}

// CreateOrder opens an order in the available assignment state and stamps
// the claim window deadline as epoch milliseconds. The deadline is set once
// here and never extended.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order item quantity must be positive")
		}
	}

	subtotal := decimal.Zero
	for _, item := range input.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	expiry := s.now().Add(s.claimWindow).UnixMilli()
	order := &models.Order{
		BuyerID:              input.BuyerID,
		FarmerID:             input.FarmerID,
		TotalAmount:          subtotal.Add(input.DeliveryCost),
		FarmerAmount:         subtotal,
		DispatcherAmount:     input.DeliveryCost,
		DeliveryCost:         input.DeliveryCost,
		DeliveryAddress:      input.DeliveryAddress,
		DeliveryCoordinates:  input.DeliveryCoordinates,
		PickupLocation:       input.PickupLocation,
		PickupCoordinates:    input.PickupCoordinates,
		OrderStatus:          enums.OrderStatusPending,
		AssignmentStatus:     enums.AssignmentStatusAvailable,
		AssignmentExpiryTime: &expiry,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, order); err != nil {
			return err
		}
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			items = append(items, models.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
				Unit:      item.Unit,
			})
		}
		return repo.CreateItems(ctx, items)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	ctx = s.log.WithOrderID(ctx, order.ID.String())
	s.log.Info(ctx, "order created with open claim window")
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}
	return order, nil
}

func (s *service) ListAssignedOrders(ctx context.Context, dispatcherID uuid.UUID, params pagination.Params) (*AssignedOrderList, error) {
	list, err := s.repo.ListAssignedOrders(ctx, dispatcherID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list assigned orders")
	}
	return list, nil
}
