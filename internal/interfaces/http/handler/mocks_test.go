package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter mounts the registrar under /api/v1
func newTestRouter(registrar interface{ RegisterRoutes(*gin.RouterGroup) }) *gin.Engine {
	r := gin.New()
	registrar.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeResponse decodes the envelope and, when data is non-nil, its data field
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data any) dto.Response {
	t.Helper()
	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	if data != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return envelope.Response
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) EnsureSourceItem(ctx context.Context, spec fulfillment.SourceItemSpec) (uuid.UUID, error) {
	args := m.Called(ctx, spec)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockCatalog) EnsureChannelItem(ctx context.Context, spec fulfillment.ChannelItemSpec) (uuid.UUID, error) {
	args := m.Called(ctx, spec)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockMatches struct {
	mock.Mock
}

func (m *MockMatches) matchResult(args mock.Arguments) (*fulfillmentapp.MatchResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.MatchResponse), args.Error(1)
}

func (m *MockMatches) CreateMatch(ctx context.Context, in fulfillmentapp.MatchInput) (*fulfillmentapp.MatchResponse, error) {
	return m.matchResult(m.Called(ctx, in))
}

func (m *MockMatches) OverwriteMatch(ctx context.Context, in fulfillmentapp.MatchInput) (*fulfillmentapp.MatchResponse, error) {
	return m.matchResult(m.Called(ctx, in))
}

func (m *MockMatches) UpsertMatch(ctx context.Context, in fulfillmentapp.MatchInput) (*fulfillmentapp.MatchResponse, error) {
	return m.matchResult(m.Called(ctx, in))
}

func (m *MockMatches) GetMatch(ctx context.Context, id uuid.UUID) (*fulfillmentapp.MatchResponse, error) {
	return m.matchResult(m.Called(ctx, id))
}

func (m *MockMatches) ListMatches(ctx context.Context) ([]fulfillmentapp.MatchResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillmentapp.MatchResponse), args.Error(1)
}

func (m *MockMatches) DeleteMatch(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMatches) ResolveMatchForOrder(ctx context.Context, orderID uuid.UUID) (*fulfillmentapp.ResolveResult, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.ResolveResult), args.Error(1)
}

type MockReconciliation struct {
	mock.Mock
}

func (m *MockReconciliation) PriceDelta(ctx context.Context, matchID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, matchID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReconciliation) InventorySyncStatus(ctx context.Context, matchID uuid.UUID) (fulfillment.InventorySyncStatus, error) {
	args := m.Called(ctx, matchID)
	return args.Get(0).(fulfillment.InventorySyncStatus), args.Error(1)
}

func (m *MockReconciliation) SyncInventory(ctx context.Context, matchIDs []uuid.UUID) (*fulfillmentapp.InventorySyncResult, error) {
	args := m.Called(ctx, matchIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.InventorySyncResult), args.Error(1)
}

type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) orderResult(args mock.Arguments) (*fulfillmentapp.OrderResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.OrderResponse), args.Error(1)
}

func (m *MockOrders) CreateOrder(ctx context.Context, input fulfillmentapp.CreateOrderInput) (*fulfillmentapp.OrderResponse, error) {
	return m.orderResult(m.Called(ctx, input))
}

func (m *MockOrders) GetOrder(ctx context.Context, id uuid.UUID) (*fulfillmentapp.OrderResponse, error) {
	return m.orderResult(m.Called(ctx, id))
}

func (m *MockOrders) CancelOrder(ctx context.Context, id uuid.UUID) (*fulfillmentapp.OrderResponse, error) {
	return m.orderResult(m.Called(ctx, id))
}

func (m *MockOrders) AddTracking(ctx context.Context, id uuid.UUID, input fulfillmentapp.AddTrackingInput) (*fulfillmentapp.OrderResponse, error) {
	return m.orderResult(m.Called(ctx, id, input))
}

type MockDispatch struct {
	mock.Mock
}

func (m *MockDispatch) DispatchOrders(ctx context.Context, orderIDs []uuid.UUID) ([]fulfillmentapp.OrderDispatchResult, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillmentapp.OrderDispatchResult), args.Error(1)
}

type MockPlatforms struct {
	mock.Mock
}

func (m *MockPlatforms) platformResult(args mock.Arguments) (*fulfillmentapp.PlatformResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.PlatformResponse), args.Error(1)
}

func (m *MockPlatforms) storeResult(args mock.Arguments) (*fulfillmentapp.StoreResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.StoreResponse), args.Error(1)
}

func (m *MockPlatforms) CreatePlatform(ctx context.Context, input fulfillmentapp.CreatePlatformInput) (*fulfillmentapp.PlatformResponse, error) {
	return m.platformResult(m.Called(ctx, input))
}

func (m *MockPlatforms) GetPlatform(ctx context.Context, id uuid.UUID) (*fulfillmentapp.PlatformResponse, error) {
	return m.platformResult(m.Called(ctx, id))
}

func (m *MockPlatforms) ListPlatforms(ctx context.Context) ([]fulfillmentapp.PlatformResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillmentapp.PlatformResponse), args.Error(1)
}

func (m *MockPlatforms) CreateShop(ctx context.Context, input fulfillmentapp.CreateStoreInput) (*fulfillmentapp.StoreResponse, error) {
	return m.storeResult(m.Called(ctx, input))
}

func (m *MockPlatforms) CreateChannel(ctx context.Context, input fulfillmentapp.CreateStoreInput) (*fulfillmentapp.StoreResponse, error) {
	return m.storeResult(m.Called(ctx, input))
}

func (m *MockPlatforms) GetStore(ctx context.Context, ref fulfillmentapp.StoreRef) (*fulfillmentapp.StoreResponse, error) {
	return m.storeResult(m.Called(ctx, ref))
}

func (m *MockPlatforms) SearchProducts(ctx context.Context, ref fulfillmentapp.StoreRef, query string) ([]fulfillment.Product, error) {
	args := m.Called(ctx, ref, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillment.Product), args.Error(1)
}

func (m *MockPlatforms) GetProduct(ctx context.Context, ref fulfillmentapp.StoreRef, productID, variantID string) (*fulfillment.Product, error) {
	args := m.Called(ctx, ref, productID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Product), args.Error(1)
}

func (m *MockPlatforms) ListWebhooks(ctx context.Context, ref fulfillmentapp.StoreRef) ([]fulfillment.Webhook, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillment.Webhook), args.Error(1)
}

func (m *MockPlatforms) CreateWebhook(ctx context.Context, ref fulfillmentapp.StoreRef, topic, endpoint string) (string, error) {
	args := m.Called(ctx, ref, topic, endpoint)
	return args.String(0), args.Error(1)
}

func (m *MockPlatforms) DeleteWebhook(ctx context.Context, ref fulfillmentapp.StoreRef, webhookID string) error {
	return m.Called(ctx, ref, webhookID).Error(0)
}
