package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/numdinkushi/vunalet-backend/api/responses"
	"github.com/numdinkushi/vunalet-backend/api/validators"
	"github.com/numdinkushi/vunalet-backend/internal/assignment"
	internalorders "github.com/numdinkushi/vunalet-backend/internal/orders"
	pkgerrors "github.com/numdinkushi/vunalet-backend/pkg/errors"
	"github.com/numdinkushi/vunalet-backend/pkg/logger"
	"github.com/numdinkushi/vunalet-backend/pkg/pagination"
	"github.com/numdinkushi/vunalet-backend/pkg/types"
)

type coordinatesPayload struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

func (p *coordinatesPayload) toCoordinates() *types.Coordinates {
	if p == nil {
		return nil
	}
	return &types.Coordinates{Lat: p.Lat, Lng: p.Lng}
}

type createOrderItemPayload struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Name      string `json:"name" validate:"required"`
	UnitPrice string `json:"unit_price" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Unit      string `json:"unit" validate:"required"`
}

type createOrderPayload struct {
	BuyerID             string                   `json:"buyer_id" validate:"required,uuid"`
	FarmerID            string                   `json:"farmer_id" validate:"required,uuid"`
	DeliveryAddress     string                   `json:"delivery_address" validate:"required"`
	DeliveryCoordinates *coordinatesPayload      `json:"delivery_coordinates"`
	PickupLocation      string                   `json:"pickup_location" validate:"required"`
	PickupCoordinates   *coordinatesPayload      `json:"pickup_coordinates"`
	DeliveryCost        string                   `json:"delivery_cost" validate:"required"`
	Items               []createOrderItemPayload `json:"items" validate:"required,min=1,dive"`
}

type claimOrderPayload struct {
	DispatcherID string `json:"dispatcher_id" validate:"required,uuid"`
}

// CreateOrder opens a new order with its claim window running.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createOrderPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func (p createOrderPayload) toInput() (internalorders.CreateOrderInput, error) {
	buyerID, err := uuid.Parse(p.BuyerID)
	if err != nil {
		return internalorders.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid buyer id")
	}
	farmerID, err := uuid.Parse(p.FarmerID)
	if err != nil {
		return internalorders.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid farmer id")
	}
	deliveryCost, err := decimal.NewFromString(p.DeliveryCost)
	if err != nil || deliveryCost.IsNegative() {
		return internalorders.CreateOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery cost must be a non-negative decimal")
	}

	items := make([]internalorders.CreateOrderItemInput, 0, len(p.Items))
	for _, item := range p.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return internalorders.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil || unitPrice.IsNegative() {
			return internalorders.CreateOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be a non-negative decimal")
		}
		items = append(items, internalorders.CreateOrderItemInput{
			ProductID: productID,
			Name:      item.Name,
			UnitPrice: unitPrice,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
		})
	}

	return internalorders.CreateOrderInput{
		BuyerID:             buyerID,
		FarmerID:            farmerID,
		DeliveryAddress:     p.DeliveryAddress,
		DeliveryCoordinates: p.DeliveryCoordinates.toCoordinates(),
		PickupLocation:      p.PickupLocation,
		PickupCoordinates:   p.PickupCoordinates.toCoordinates(),
		DeliveryCost:        deliveryCost,
		Items:               items,
	}, nil
}

// GetOrder returns one order with its line items.
func GetOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ClaimOrder lets a dispatcher take an available order.
func ClaimOrder(svc assignment.ClaimService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload claimOrderPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dispatcherID, err := uuid.Parse(payload.DispatcherID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dispatcher id"))
			return
		}

		order, err := svc.ClaimOrder(r.Context(), orderID, dispatcherID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// DispatcherAssignedOrders returns the paginated queue of orders assigned to
// a dispatcher, manual and automatic alike.
func DispatcherAssignedOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dispatcherID, err := parseUUIDParam(r, "dispatcherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		list, err := svc.ListAssignedOrders(r.Context(), dispatcherID, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing "+name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
