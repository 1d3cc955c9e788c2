package assignment

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/numdinkushi/vunalet-backend/pkg/db/models"
	"github.com/numdinkushi/vunalet-backend/pkg/enums"
	pkgerrors "github.com/numdinkushi/vunalet-backend/pkg/errors"
	"github.com/numdinkushi/vunalet-backend/pkg/logger"
	"github.com/numdinkushi/vunalet-backend/pkg/metrics"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "assignment-test", Level: zerolog.Disabled, Output: io.Discard})
}

func availableOrder(expiry int64) *models.Order {
	return &models.Order{
		ID:                   uuid.New(),
		BuyerID:              uuid.New(),
		FarmerID:             uuid.New(),
		DeliveryAddress:      "12 Main Rd, Cape Town",
		PickupLocation:       "Farm Gate, Stellenbosch",
		OrderStatus:          enums.OrderStatusPending,
		AssignmentStatus:     enums.AssignmentStatusAvailable,
		AssignmentExpiryTime: &expiry,
	}
}

func verifiedDispatcher(id uuid.UUID) *models.User {
	return &models.User{
		ID:                 id,
		Role:               enums.UserRoleDispatcher,
		VerificationStatus: enums.VerificationStatusVerified,
		IsActive:           true,
	}
}

func newClaimServiceForTest(
	orderRepo *fakeOrderRepo,
	dispatcherRepo *fakeDispatcherRepo,
	deliveryRepo *fakeDeliveryRepo,
	notificationRepo *fakeNotificationRepo,
	now time.Time,
) *claimService {
	svc := NewClaimService(
		orderRepo, dispatcherRepo, deliveryRepo, notificationRepo,
		fakeTxRunner{}, testLogger(), metrics.NewAssignmentMetrics(nil),
	).(*claimService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestClaimOrderSucceedsInsideWindow(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	order := availableOrder(now.Add(time.Millisecond).UnixMilli())
	dispatcherID := uuid.New()

	orderRepo := &fakeOrderRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return order, nil
		},
		claimAvailableFn: func(ctx context.Context, orderID, claimerID uuid.UUID) (int64, error) {
			return 1, nil
		},
	}
	dispatcherRepo := &fakeDispatcherRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return verifiedDispatcher(id), nil
		},
	}
	deliveryRepo := &fakeDeliveryRepo{}
	notificationRepo := &fakeNotificationRepo{}

	svc := newClaimServiceForTest(orderRepo, dispatcherRepo, deliveryRepo, notificationRepo, now)
	claimed, err := svc.ClaimOrder(context.Background(), order.ID, dispatcherID)
	if err != nil {
		t.Fatalf("unexpected claim error: %v", err)
	}

	if claimed.AssignmentStatus != enums.AssignmentStatusClaimed {
		t.Fatalf("expected claimed status, got %s", claimed.AssignmentStatus)
	}
	if claimed.AssignmentMethod == nil || *claimed.AssignmentMethod != enums.AssignmentMethodManual {
		t.Fatal("expected manual assignment method")
	}
	if claimed.DispatcherID == nil || *claimed.DispatcherID != dispatcherID {
		t.Fatal("expected dispatcher id to be set")
	}

	if len(deliveryRepo.created) != 1 {
		t.Fatalf("expected 1 delivery record, got %d", len(deliveryRepo.created))
	}
	delivery := deliveryRepo.created[0]
	if delivery.OrderID != order.ID || delivery.DispatcherID != dispatcherID {
		t.Fatal("delivery record not seeded from order and dispatcher")
	}
	if delivery.Status != enums.DeliveryStatusAssigned {
		t.Fatalf("expected assigned delivery status, got %s", delivery.Status)
	}

	if len(notificationRepo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notificationRepo.created))
	}
	if notificationRepo.created[0].UserID != dispatcherID {
		t.Fatal("notification should target the claiming dispatcher")
	}
}

func TestClaimOrderNotFound(t *testing.T) {
	svc := newClaimServiceForTest(&fakeOrderRepo{}, &fakeDispatcherRepo{}, &fakeDeliveryRepo{}, &fakeNotificationRepo{}, time.Now())

	_, err := svc.ClaimOrder(context.Background(), uuid.New(), uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClaimOrderRejectsNonAvailableState(t *testing.T) {
	now := time.Now()
	order := availableOrder(now.Add(time.Hour).UnixMilli())
	order.AssignmentStatus = enums.AssignmentStatusClaimed

	orderRepo := &fakeOrderRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return order, nil
		},
	}
	svc := newClaimServiceForTest(orderRepo, &fakeDispatcherRepo{}, &fakeDeliveryRepo{}, &fakeNotificationRepo{}, now)

	_, err := svc.ClaimOrder(context.Background(), order.ID, uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestClaimOrderRejectsExpiredWindow(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	// Window closed one millisecond ago.
	order := availableOrder(now.Add(-time.Millisecond).UnixMilli())

	orderRepo := &fakeOrderRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return order, nil
		},
	}
	svc := newClaimServiceForTest(orderRepo, &fakeDispatcherRepo{}, &fakeDeliveryRepo{}, &fakeNotificationRepo{}, now)

	_, err := svc.ClaimOrder(context.Background(), order.ID, uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeExpired {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestClaimOrderExactDeadlineStillClaimable(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	// now == expiry is inside the window; only now > expiry closes it.
	order := availableOrder(now.UnixMilli())

	orderRepo := &fakeOrderRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return order, nil
		},
		claimAvailableFn: func(ctx context.Context, orderID, claimerID uuid.UUID) (int64, error) {
			return 1, nil
		},
	}
	dispatcherRepo := &fakeDispatcherRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return verifiedDispatcher(id), nil
		},
	}
	svc := newClaimServiceForTest(orderRepo, dispatcherRepo, &fakeDeliveryRepo{}, &fakeNotificationRepo{}, now)

	if _, err := svc.ClaimOrder(context.Background(), order.ID, uuid.New()); err != nil {
		t.Fatalf("claim at the exact deadline should succeed, got %v", err)
	}
}

func TestClaimOrderLosesRaceToConcurrentWinner(t *testing.T) {
	now := time.Now()
	order := availableOrder(now.Add(time.Hour).UnixMilli())

	orderRepo := &fakeOrderRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return order, nil
		},
		claimAvailableFn: func(ctx context.Context, orderID, claimerID uuid.UUID) (int64, error) {
			// Conditional patch found no available row.
			return 0, nil
		},
	}
	dispatcherRepo := &fakeDispatcherRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return verifiedDispatcher(id), nil
		},
	}
	deliveryRepo := &fakeDeliveryRepo{}
	svc := newClaimServiceForTest(orderRepo, dispatcherRepo, deliveryRepo, &fakeNotificationRepo{}, now)

	_, err := svc.ClaimOrder(context.Background(), order.ID, uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(deliveryRepo.created) != 0 {
		t.Fatal("losing claim must not create a delivery record")
	}
}

func TestClaimOrderRejectsUnverifiedDispatcher(t *testing.T) {
	now := time.Now()
	order := availableOrder(now.Add(time.Hour).UnixMilli())

	orderRepo := &fakeOrderRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return order, nil
		},
	}
	dispatcherRepo := &fakeDispatcherRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			dispatcher := verifiedDispatcher(id)
			dispatcher.VerificationStatus = enums.VerificationStatusPending
			return dispatcher, nil
		},
	}
	svc := newClaimServiceForTest(orderRepo, dispatcherRepo, &fakeDeliveryRepo{}, &fakeNotificationRepo{}, now)

	_, err := svc.ClaimOrder(context.Background(), order.ID, uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
