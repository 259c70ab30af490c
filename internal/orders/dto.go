package orders

import (
	"time"

	"github.com/agrogas/agrogas-backend/pkg/db/models"
	"github.com/agrogas/agrogas-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// PlaceOrderInput is a buyer's request. Item fields are kept raw so that
// parse failures are reported against the item that caused them.
type PlaceOrderInput struct {
	BuyerName     string
	BuyerPhone    *string
	BuyerLocation *string
	Items         []ItemInput
}

// ItemInput is one requested line: a record id and a quantity in kg, both as
// the textual form of a number.
type ItemInput struct {
	RecordID string
	QtyKg    string
}

// PlaceOrderResult is returned once the order has committed.
type PlaceOrderResult struct {
	OrderID    int64           `json:"order_id"`
	TotalPrice float64         `json:"total_price"`
	Total      decimal.Decimal `json:"-"`
}

// OrderDTO is the transport shape for order history.
type OrderDTO struct {
	ID            int64             `json:"id"`
	BuyerName     string            `json:"buyer_name"`
	BuyerPhone    *string           `json:"buyer_phone"`
	BuyerLocation *string           `json:"buyer_location"`
	TotalPrice    float64           `json:"total_price"`
	Status        enums.OrderStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemDTO    `json:"items"`
}

// OrderItemDTO is one line of an order with the unit price captured when it
// was placed.
type OrderItemDTO struct {
	RecordID  int64   `json:"record_id"`
	QtyKg     float64 `json:"qty_kg"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// FromModel converts an order with its items preloaded. Money columns leave
// decimal here and nowhere earlier.
func FromModel(o *models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemDTO{
			RecordID:  it.RecordID,
			QtyKg:     it.QtyKg,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal.InexactFloat64(),
		})
	}
	return OrderDTO{
		ID:            o.ID,
		BuyerName:     o.BuyerName,
		BuyerPhone:    o.BuyerPhone,
		BuyerLocation: o.BuyerLocation,
		TotalPrice:    o.TotalPrice.InexactFloat64(),
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		Items:         items,
	}
}
