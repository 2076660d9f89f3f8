package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
)

// stubAdapter answers getProduct and updateInventory; everything else is unsupported
type stubAdapter struct {
	product   fulfillment.Product
	err       error
	lastDelta int
}

func (s *stubAdapter) SearchProducts(context.Context, fulfillment.SearchProductsArgs) (*fulfillment.SearchProductsResult, error) {
	return nil, Unsupported("stub", fulfillment.FunctionSearchProducts)
}

func (s *stubAdapter) GetProduct(_ context.Context, args fulfillment.GetProductArgs) (*fulfillment.GetProductResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := s.product
	p.ProductID = args.ProductID
	return &fulfillment.GetProductResult{Product: p}, nil
}

func (s *stubAdapter) CreatePurchase(context.Context, fulfillment.CreatePurchaseArgs) (*fulfillment.CreatePurchaseResult, error) {
	return &fulfillment.CreatePurchaseResult{}, nil
}

func (s *stubAdapter) GetWebhooks(context.Context, fulfillment.WebhookArgs) (*fulfillment.GetWebhooksResult, error) {
	return nil, Unsupported("stub", fulfillment.FunctionGetWebhooks)
}

func (s *stubAdapter) CreateWebhook(context.Context, fulfillment.WebhookArgs) (*fulfillment.CreateWebhookResult, error) {
	return nil, Unsupported("stub", fulfillment.FunctionCreateWebhook)
}

func (s *stubAdapter) DeleteWebhook(context.Context, fulfillment.WebhookArgs) (*fulfillment.DeleteWebhookResult, error) {
	return nil, Unsupported("stub", fulfillment.FunctionDeleteWebhook)
}

func (s *stubAdapter) AddTracking(context.Context, fulfillment.AddTrackingArgs) (*fulfillment.SuccessResult, error) {
	return &fulfillment.SuccessResult{Success: false}, nil
}

func (s *stubAdapter) AddCartToPlatformOrder(context.Context, fulfillment.AddCartArgs) (*fulfillment.SuccessResult, error) {
	return nil, Unsupported("stub", fulfillment.FunctionAddCartToPlatformOrder)
}

func (s *stubAdapter) UpdateInventory(_ context.Context, args fulfillment.UpdateInventoryArgs) (*fulfillment.SuccessResult, error) {
	s.lastDelta = args.Delta
	return &fulfillment.SuccessResult{Success: true}, nil
}

func newTestGateway(t *testing.T, registry *Registry, timeout time.Duration) *Gateway {
	t.Helper()
	g, err := NewGateway(GatewayConfig{CallTimeout: timeout}, registry, nil, nil, nil)
	require.NoError(t, err)
	return g
}

func serveJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestGateway_EmptyRef(t *testing.T) {
	g := newTestGateway(t, nil, time.Second)
	err := g.Invoke(context.Background(), "", fulfillment.FunctionGetProduct, fulfillment.GetProductArgs{}, nil)
	assert.ErrorIs(t, err, fulfillment.ErrAdapterNotConfigured)
}

func TestGateway_HTTP(t *testing.T) {
	tests := []struct {
		name       string
		fn         fulfillment.Function
		status     int
		body       string
		wantErr    bool
		wantErrMsg string
	}{
		{
			name:   "valid product with string price",
			fn:     fulfillment.FunctionGetProduct,
			status: http.StatusOK,
			body:   `{"product":{"title":"Mug","price":"12.50","inventory":3}}`,
		},
		{
			name:   "numeric price and untracked inventory",
			fn:     fulfillment.FunctionGetProduct,
			status: http.StatusOK,
			body:   `{"product":{"title":"Mug","price":12.5,"inventory":null}}`,
		},
		{
			name:       "server error carries the status text",
			fn:         fulfillment.FunctionGetProduct,
			status:     http.StatusServiceUnavailable,
			body:       `upstream down`,
			wantErr:    true,
			wantErrMsg: "503 Service Unavailable",
		},
		{
			name:       "reported error is kept verbatim",
			fn:         fulfillment.FunctionCreatePurchase,
			status:     http.StatusOK,
			body:       `{"error":"Insufficient inventory"}`,
			wantErr:    true,
			wantErrMsg: "Insufficient inventory",
		},
		{
			name:       "reported error on a failed status",
			fn:         fulfillment.FunctionCreatePurchase,
			status:     http.StatusUnprocessableEntity,
			body:       `{"error":"Card declined"}`,
			wantErr:    true,
			wantErrMsg: "Card declined",
		},
		{
			name:    "purchase without id or url violates the schema",
			fn:      fulfillment.FunctionCreatePurchase,
			status:  http.StatusOK,
			body:    `{"purchaseId":"","url":""}`,
			wantErr: true,
		},
		{
			name:    "inventory must be an integer",
			fn:      fulfillment.FunctionGetProduct,
			status:  http.StatusOK,
			body:    `{"product":{"title":"Mug","price":"1.00","inventory":"3"}}`,
			wantErr: true,
		},
		{
			name:    "unsuccessful acknowledgement",
			fn:      fulfillment.FunctionUpdateInventory,
			status:  http.StatusOK,
			body:    `{"success":false}`,
			wantErr: true,
		},
		{
			name:    "malformed body",
			fn:      fulfillment.FunctionGetProduct,
			status:  http.StatusOK,
			body:    `{"product":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(serveJSON(tt.status, tt.body))
			defer server.Close()

			g := newTestGateway(t, nil, time.Second)
			var out fulfillment.GetProductResult
			var target any = &out
			if tt.fn != fulfillment.FunctionGetProduct {
				target = nil
			}
			err := g.Invoke(context.Background(), server.URL, tt.fn, fulfillment.GetProductArgs{ProductID: "1"}, target)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, fulfillment.ErrAdapterCallFailed)
				if tt.wantErrMsg != "" {
					assert.Equal(t, tt.wantErrMsg, fulfillment.FailureMessage(err))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Mug", out.Product.Title)
			assert.True(t, decimal.RequireFromString("12.5").Equal(out.Product.Price))
		})
	}
}

func TestGateway_HTTPRequestShape(t *testing.T) {
	var got fulfillment.CreatePurchaseArgs
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "createPurchase", r.Header.Get("X-Platform-Function"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		serveJSON(http.StatusOK, `{"purchaseId":"p-1","url":"https://supplier/p-1"}`)(w, r)
	}))
	defer server.Close()

	g := newTestGateway(t, nil, time.Second)
	var out fulfillment.CreatePurchaseResult
	err := g.Invoke(context.Background(), server.URL, fulfillment.FunctionCreatePurchase, fulfillment.CreatePurchaseArgs{
		Items:       []fulfillment.PurchaseItem{{ProductID: "x", VariantID: "v", Quantity: 2, Price: decimal.NewFromInt(3)}},
		OrderID:     "1001",
		Credentials: fulfillment.Credentials{Domain: "supplier.example.com", AccessToken: "tok"},
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "p-1", out.PurchaseID)
	assert.Equal(t, "supplier.example.com", got.Domain)
	assert.Equal(t, "tok", got.AccessToken)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestGateway_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	g := newTestGateway(t, nil, 50*time.Millisecond)
	err := g.Invoke(context.Background(), server.URL, fulfillment.FunctionGetProduct, fulfillment.GetProductArgs{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fulfillment.ErrAdapterCallFailed)
	assert.Contains(t, err.Error(), "timed out")
}

func TestGateway_Adapter(t *testing.T) {
	stock := 4
	stub := &stubAdapter{product: fulfillment.Product{Title: "Lamp", Price: decimal.NewFromInt(9), Inventory: &stock}}
	registry := NewRegistry()
	require.NoError(t, registry.Register("stub", stub))
	g := newTestGateway(t, registry, time.Second)
	ctx := context.Background()

	t.Run("decodes the adapter result", func(t *testing.T) {
		var out fulfillment.GetProductResult
		require.NoError(t, g.Invoke(ctx, "stub", fulfillment.FunctionGetProduct, fulfillment.GetProductArgs{ProductID: "7"}, &out))
		assert.Equal(t, "7", out.Product.ProductID)
		require.NotNil(t, out.Product.Inventory)
		assert.Equal(t, 4, *out.Product.Inventory)
	})

	t.Run("accepts pointer arguments", func(t *testing.T) {
		var out fulfillment.SuccessResult
		require.NoError(t, g.Invoke(ctx, "stub", fulfillment.FunctionUpdateInventory, &fulfillment.UpdateInventoryArgs{Delta: -2}, &out))
		assert.True(t, out.Success)
		assert.Equal(t, -2, stub.lastDelta)
	})

	t.Run("unsupported function", func(t *testing.T) {
		err := g.Invoke(ctx, "stub", fulfillment.FunctionGetWebhooks, fulfillment.WebhookArgs{}, nil)
		assert.ErrorIs(t, err, fulfillment.ErrAdapterCallFailed)
		assert.Equal(t, "stub does not support getWebhooks", fulfillment.FailureMessage(err))
	})

	t.Run("result is validated", func(t *testing.T) {
		err := g.Invoke(ctx, "stub", fulfillment.FunctionCreatePurchase, fulfillment.CreatePurchaseArgs{}, nil)
		assert.ErrorIs(t, err, fulfillment.ErrAdapterCallFailed)
	})

	t.Run("unaccepted acknowledgement", func(t *testing.T) {
		err := g.Invoke(ctx, "stub", fulfillment.FunctionAddTracking, fulfillment.AddTrackingArgs{}, nil)
		assert.ErrorIs(t, err, fulfillment.ErrAdapterCallFailed)
	})

	t.Run("wrong argument type", func(t *testing.T) {
		err := g.Invoke(ctx, "stub", fulfillment.FunctionGetProduct, fulfillment.AddCartArgs{}, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("plain adapter errors become adapter failures", func(t *testing.T) {
		failing := &stubAdapter{err: assert.AnError}
		reg := NewRegistry()
		require.NoError(t, reg.Register("failing", failing))
		err := newTestGateway(t, reg, time.Second).
			Invoke(ctx, "failing", fulfillment.FunctionGetProduct, fulfillment.GetProductArgs{}, nil)
		assert.ErrorIs(t, err, fulfillment.ErrAdapterCallFailed)
		assert.Equal(t, assert.AnError.Error(), fulfillment.FailureMessage(err))
	})

	t.Run("unregistered key", func(t *testing.T) {
		err := g.Invoke(ctx, "legacy", fulfillment.FunctionGetProduct, fulfillment.GetProductArgs{}, nil)
		assert.ErrorIs(t, err, fulfillment.ErrAdapterNotConfigured)
	})
}
