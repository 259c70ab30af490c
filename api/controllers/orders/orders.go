package orders

import (
	"net/http"

	"github.com/agrogas/agrogas-backend/api/responses"
	"github.com/agrogas/agrogas-backend/api/validators"
	internalorders "github.com/agrogas/agrogas-backend/internal/orders"
	pkgerrors "github.com/agrogas/agrogas-backend/pkg/errors"
	"github.com/agrogas/agrogas-backend/pkg/logger"
	"github.com/agrogas/agrogas-backend/pkg/types"
)

type placeOrderRequest struct {
	BuyerName     string           `json:"buyer_name"`
	BuyerPhone    *string          `json:"buyer_phone"`
	BuyerLocation *string          `json:"buyer_location"`
	Items         []placeOrderItem `json:"items"`
}

// placeOrderItem keeps both fields raw; the ledger parses them so a bad value
// is reported against its item index.
type placeOrderItem struct {
	RecordID types.NumberOrString `json:"record_id"`
	QtyKg    types.NumberOrString `json:"qty_kg"`
}

type listOrdersResponse struct {
	Orders []internalorders.OrderDTO `json:"orders"`
}

func (p placeOrderRequest) toInput() internalorders.PlaceOrderInput {
	items := make([]internalorders.ItemInput, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, internalorders.ItemInput{
			RecordID: it.RecordID.String(),
			QtyKg:    it.QtyKg.String(),
		})
	}
	return internalorders.PlaceOrderInput{
		BuyerName:     p.BuyerName,
		BuyerPhone:    p.BuyerPhone,
		BuyerLocation: p.BuyerLocation,
		Items:         items,
	}
}

// Place commits a buyer order against record availability.
func Place(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var body placeOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceOrder(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"order_id":    result.OrderID,
				"total_price": result.TotalPrice,
				"items":       len(body.Items),
			})
			logg.Info(ctx, "order.placed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// List returns every order, newest first, with its items.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		list, err := svc.ListOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if list == nil {
			list = []internalorders.OrderDTO{}
		}
		responses.WriteSuccess(w, listOrdersResponse{Orders: list})
	}
}
