package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/numdinkushi/vunalet-backend/internal/deliveries"
	"github.com/numdinkushi/vunalet-backend/internal/dispatchers"
	"github.com/numdinkushi/vunalet-backend/internal/notifications"
	"github.com/numdinkushi/vunalet-backend/internal/orders"
	"github.com/numdinkushi/vunalet-backend/pkg/db/models"
	"github.com/numdinkushi/vunalet-backend/pkg/enums"
	pkgerrors "github.com/numdinkushi/vunalet-backend/pkg/errors"
	"github.com/numdinkushi/vunalet-backend/pkg/logger"
	"github.com/numdinkushi/vunalet-backend/pkg/metrics"
	"github.com/numdinkushi/vunalet-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ClaimService lets a dispatcher take an order while its claim window is
// still open.
type ClaimService interface {
	ClaimOrder(ctx context.Context, orderID, dispatcherID uuid.UUID) (*models.Order, error)
}

type claimService struct {
	orders        orders.Repository
	dispatchers   dispatchers.Repository
	deliveries    deliveries.Repository
	notifications notifications.Repository
	tx            txRunner
	log           *logger.Logger
	metrics       *metrics.AssignmentMetrics
	now           func() time.Time
}

// NewClaimService wires the manual claim path.
func NewClaimService(
	orderRepo orders.Repository,
	dispatcherRepo dispatchers.Repository,
	deliveryRepo deliveries.Repository,
	notificationRepo notifications.Repository,
	tx txRunner,
	log *logger.Logger,
	m *metrics.AssignmentMetrics,
) ClaimService {
	return &claimService{
		orders:        orderRepo,
		dispatchers:   dispatcherRepo,
		deliveries:    deliveryRepo,
		notifications: notificationRepo,
		tx:            tx,
		log:           log,
		metrics:       m,
		now:           time.Now,
	}
}

// ClaimOrder moves an available order to claimed for the given dispatcher.
// The status change, the delivery record, and the confirmation notification
// land in one transaction; a concurrent winner surfaces as a state conflict.
func (s *claimService) ClaimOrder(ctx context.Context, orderID, dispatcherID uuid.UUID) (*models.Order, error) {
	ctx = s.log.WithOrderID(ctx, orderID.String())
	ctx = s.log.WithDispatcherID(ctx, dispatcherID.String())

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	if order.AssignmentStatus != enums.AssignmentStatusAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer available").
			WithDetails(map[string]any{"assignment_status": order.AssignmentStatus})
	}

	nowMillis := s.now().UnixMilli()
	if order.AssignmentExpiryTime != nil && nowMillis > *order.AssignmentExpiryTime {
		return nil, pkgerrors.New(pkgerrors.CodeExpired, "claim window has closed")
	}

	dispatcher, err := s.dispatchers.FindByID(ctx, dispatcherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dispatcher not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load dispatcher")
	}
	if dispatcher.VerificationStatus != enums.VerificationStatusVerified || !dispatcher.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispatcher is not eligible to claim orders")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, txErr := s.orders.WithTx(tx).ClaimAvailable(ctx, orderID, dispatcherID)
		if txErr != nil {
			return txErr
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order was taken by another dispatcher")
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
		if txErr := s.deliveries.WithTx(tx).Create(ctx, delivery); txErr != nil {
			return txErr
		}

		notification := &models.Notification{
			UserID:  dispatcherID,
			Type:    enums.NotificationTypeDelivery,
			Title:   "Delivery claimed",
			Message: "You claimed an order for delivery.",
			Metadata: types.JSONMap{
				"order_id":          order.ID.String(),
				"assignment_method": string(enums.AssignmentMethodManual),
			},
		}
		return s.notifications.WithTx(tx).Create(ctx, notification)
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, coded
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim order")
	}

	method := enums.AssignmentMethodManual
	order.DispatcherID = &dispatcherID
	order.AssignmentStatus = enums.AssignmentStatusClaimed
	order.AssignmentMethod = &method

	s.metrics.IncAssigned(string(enums.AssignmentMethodManual))
	s.log.Info(ctx, "order claimed by dispatcher")
	return order, nil
}
