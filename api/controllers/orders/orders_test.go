package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	internalorders "github.com/agrogas/agrogas-backend/internal/orders"
	"github.com/agrogas/agrogas-backend/pkg/enums"
	pkgerrors "github.com/agrogas/agrogas-backend/pkg/errors"
)

type stubService struct {
	got    internalorders.PlaceOrderInput
	result *internalorders.PlaceOrderResult
	list   []internalorders.OrderDTO
	err    error
}

func (s *stubService) PlaceOrder(_ context.Context, input internalorders.PlaceOrderInput) (*internalorders.PlaceOrderResult, error) {
	s.got = input
	return s.result, s.err
}

func (s *stubService) ListOrders(context.Context) ([]internalorders.OrderDTO, error) {
	return s.list, s.err
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func post(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestPlaceMapsMixedNumericForms(t *testing.T) {
	svc := &stubService{result: &internalorders.PlaceOrderResult{OrderID: 7, TotalPrice: 20}}

	resp := post(Place(svc, nil), `{
		"buyer_name": "Kampala Biogas Co-op",
		"buyer_phone": "+256700000001",
		"items": [{"record_id": "3", "qty_kg": 4}, {"record_id": 5, "qty_kg": "1.5"}]
	}`)

	require.Equal(t, http.StatusCreated, resp.Code)
	require.JSONEq(t, `{"data":{"order_id":7,"total_price":20}}`, resp.Body.String())

	require.Equal(t, "Kampala Biogas Co-op", svc.got.BuyerName)
	require.Equal(t, "+256700000001", *svc.got.BuyerPhone)
	require.Nil(t, svc.got.BuyerLocation)
	require.Equal(t, []internalorders.ItemInput{
		{RecordID: "3", QtyKg: "4"},
		{RecordID: "5", QtyKg: "1.5"},
	}, svc.got.Items)
}

func TestPlaceSurfacesInsufficientStock(t *testing.T) {
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for record 1").
		WithDetails(map[string]any{"record_id": 1, "available_kg": 6.0, "requested_kg": 7.0})}

	resp := post(Place(svc, nil), `{"buyer_name":"B","items":[{"record_id":1,"qty_kg":7}]}`)
	require.Equal(t, http.StatusConflict, resp.Code)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	require.Equal(t, string(pkgerrors.CodeInsufficientStock), env.Error.Code)
	require.Equal(t, "insufficient stock for record 1", env.Error.Message)
	require.EqualValues(t, 6, env.Error.Details["available_kg"])
	require.EqualValues(t, 7, env.Error.Details["requested_kg"])
}

func TestPlaceRejectsMalformedBody(t *testing.T) {
	svc := &stubService{}

	for _, body := range []string{
		``,
		`{"buyer_name":"B","items":"nope"}`,
		`{"buyer_name":"B","items":[{"record_id":true,"qty_kg":1}]}`,
		`{"buyer_name":"B","unknown":1}`,
	} {
		resp := post(Place(svc, nil), body)
		require.Equal(t, http.StatusBadRequest, resp.Code, body)
	}
	require.Empty(t, svc.got.Items)
}

func TestPlaceWithoutService(t *testing.T) {
	resp := post(Place(nil, nil), `{}`)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestListReturnsOrders(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &stubService{list: []internalorders.OrderDTO{{
		ID:         2,
		BuyerName:  "B",
		TotalPrice: 20,
		Status:     enums.OrderStatusPlaced,
		CreatedAt:  created,
		Items:      []internalorders.OrderItemDTO{{RecordID: 1, QtyKg: 4, UnitPrice: 5, LineTotal: 20}},
	}}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var env struct {
		Data struct {
			Orders []internalorders.OrderDTO `json:"orders"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	require.Len(t, env.Data.Orders, 1)
	require.Equal(t, int64(2), env.Data.Orders[0].ID)
	require.Equal(t, "placed", string(env.Data.Orders[0].Status))
	require.Equal(t, 20.0, env.Data.Orders[0].Items[0].LineTotal)
}

func TestListWithoutOrdersReturnsEmptyList(t *testing.T) {
	resp := httptest.NewRecorder()
	List(&stubService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"data":{"orders":[]}}`, resp.Body.String())
}

func TestListSurfacesStorageFailure(t *testing.T) {
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeInternal, "list orders")}
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.Contains(t, resp.Body.String(), "internal server error")
}
