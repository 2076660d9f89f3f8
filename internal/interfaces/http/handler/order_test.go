package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
)

type orderMocks struct {
	orders   *MockOrders
	matches  *MockMatches
	dispatch *MockDispatch
}

func newOrderRouter() (orderMocks, http.Handler) {
	m := orderMocks{orders: new(MockOrders), matches: new(MockMatches), dispatch: new(MockDispatch)}
	return m, newTestRouter(NewOrderHandler(m.orders, m.matches, m.dispatch))
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	t.Run("creates the order", func(t *testing.T) {
		m, r := newOrderRouter()
		shopID := uuid.New()
		m.orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(in fulfillmentapp.CreateOrderInput) bool {
			return in.ShopID == shopID && in.ExternalOrderID == "1001" &&
				in.Shipping.City == "Springfield" && len(in.LineItems) == 1 && in.LineItems[0].Quantity == 3
		})).Return(&fulfillmentapp.OrderResponse{ID: uuid.New(), Status: fulfillment.OrderStatusPending}, nil)

		w := doRequest(t, r, http.MethodPost, "/api/v1/orders", map[string]any{
			"shop_id":           shopID,
			"external_order_id": "1001",
			"email":             "buyer@example.com",
			"shipping":          map[string]any{"city": "Springfield", "country": "US"},
			"line_items":        []map[string]any{{"product_id": "a", "quantity": 3, "price": "9.99"}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		m.orders.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		m, r := newOrderRouter()
		w := doRequest(t, r, http.MethodPost, "/api/v1/orders", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		m.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})
}

func TestOrderHandler_Lifecycle(t *testing.T) {
	m, r := newOrderRouter()
	id := uuid.New()

	m.orders.On("GetOrder", mock.Anything, id).Return(&fulfillmentapp.OrderResponse{ID: id}, nil)
	m.orders.On("CancelOrder", mock.Anything, id).Return(nil, shared.ErrInvalidState)
	m.matches.On("ResolveMatchForOrder", mock.Anything, id).Return(&fulfillmentapp.ResolveResult{
		OrderID: id, OrderError: fulfillment.OrderErrorNoMatches,
	}, nil)

	w := doRequest(t, r, http.MethodGet, "/api/v1/orders/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/v1/orders/"+id.String()+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/v1/orders/"+id.String()+"/resolve", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resolved fulfillmentapp.ResolveResult
	decodeResponse(t, w, &resolved)
	assert.Equal(t, "No matches found", resolved.OrderError)
}

func TestOrderHandler_DispatchOrders(t *testing.T) {
	m, r := newOrderRouter()
	ids := []uuid.UUID{uuid.New()}
	m.dispatch.On("DispatchOrders", mock.Anything, ids).Return([]fulfillmentapp.OrderDispatchResult{
		{OrderID: ids[0], Status: fulfillment.OrderStatusAwaiting},
	}, nil)

	w := doRequest(t, r, http.MethodPost, "/api/v1/orders/dispatch", map[string]any{"ids": ids})
	require.Equal(t, http.StatusOK, w.Code)

	var got []fulfillmentapp.OrderDispatchResult
	decodeResponse(t, w, &got)
	require.Len(t, got, 1)
	assert.Equal(t, fulfillment.OrderStatusAwaiting, got[0].Status)
}

func TestOrderHandler_AddTracking(t *testing.T) {
	t.Run("adapter failure maps to 502 with the adapter message", func(t *testing.T) {
		m, r := newOrderRouter()
		id := uuid.New()
		m.orders.On("AddTracking", mock.Anything, id, fulfillmentapp.AddTrackingInput{
			TrackingNumber: "1Z999", Carrier: "UPS",
		}).Return(nil, fulfillment.NewAdapterError(fulfillment.FunctionAddTracking, "order is archived"))

		w := doRequest(t, r, http.MethodPost, "/api/v1/orders/"+id.String()+"/tracking", map[string]any{
			"tracking_number": "1Z999", "carrier": "UPS",
		})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		resp := decodeResponse(t, w, nil)
		assert.Equal(t, "ADAPTER_CALL_FAILED", resp.Error.Code)
		assert.Equal(t, "order is archived", resp.Error.Message)
	})

	t.Run("unexpected errors are hidden", func(t *testing.T) {
		m, r := newOrderRouter()
		id := uuid.New()
		m.orders.On("AddTracking", mock.Anything, id, mock.Anything).Return(nil, errors.New("connection reset"))

		w := doRequest(t, r, http.MethodPost, "/api/v1/orders/"+id.String()+"/tracking", map[string]any{
			"tracking_number": "1Z999",
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w, nil)
		assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "connection reset")
	})

	t.Run("tracking url must be a url", func(t *testing.T) {
		m, r := newOrderRouter()
		w := doRequest(t, r, http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/tracking", map[string]any{
			"tracking_number": "1Z999", "tracking_url": "nope",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		m.orders.AssertNotCalled(t, "AddTracking", mock.Anything, mock.Anything, mock.Anything)
	})
}
