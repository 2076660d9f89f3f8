package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	"github.com/dropship/backend/internal/domain/fulfillment"
)

// CatalogUseCases is implemented by fulfillmentapp.CatalogService
type CatalogUseCases interface {
	EnsureSourceItem(ctx context.Context, spec fulfillment.SourceItemSpec) (uuid.UUID, error)
	EnsureChannelItem(ctx context.Context, spec fulfillment.ChannelItemSpec) (uuid.UUID, error)
}

// MatchUseCases is implemented by fulfillmentapp.MatchService
type MatchUseCases interface {
	CreateMatch(ctx context.Context, in fulfillmentapp.MatchInput) (*fulfillmentapp.MatchResponse, error)
	OverwriteMatch(ctx context.Context, in fulfillmentapp.MatchInput) (*fulfillmentapp.MatchResponse, error)
	UpsertMatch(ctx context.Context, in fulfillmentapp.MatchInput) (*fulfillmentapp.MatchResponse, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*fulfillmentapp.MatchResponse, error)
	ListMatches(ctx context.Context) ([]fulfillmentapp.MatchResponse, error)
	DeleteMatch(ctx context.Context, id uuid.UUID) error
	ResolveMatchForOrder(ctx context.Context, orderID uuid.UUID) (*fulfillmentapp.ResolveResult, error)
}

// ReconciliationUseCases is implemented by fulfillmentapp.ReconciliationService
type ReconciliationUseCases interface {
	PriceDelta(ctx context.Context, matchID uuid.UUID) (decimal.Decimal, error)
	InventorySyncStatus(ctx context.Context, matchID uuid.UUID) (fulfillment.InventorySyncStatus, error)
	SyncInventory(ctx context.Context, matchIDs []uuid.UUID) (*fulfillmentapp.InventorySyncResult, error)
}

// OrderUseCases is implemented by fulfillmentapp.OrderService
type OrderUseCases interface {
	CreateOrder(ctx context.Context, input fulfillmentapp.CreateOrderInput) (*fulfillmentapp.OrderResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*fulfillmentapp.OrderResponse, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (*fulfillmentapp.OrderResponse, error)
	AddTracking(ctx context.Context, id uuid.UUID, input fulfillmentapp.AddTrackingInput) (*fulfillmentapp.OrderResponse, error)
}

// DispatchUseCases is implemented by fulfillmentapp.DispatchService
type DispatchUseCases interface {
	DispatchOrders(ctx context.Context, orderIDs []uuid.UUID) ([]fulfillmentapp.OrderDispatchResult, error)
}

// PlatformUseCases is implemented by fulfillmentapp.PlatformService
type PlatformUseCases interface {
	CreatePlatform(ctx context.Context, input fulfillmentapp.CreatePlatformInput) (*fulfillmentapp.PlatformResponse, error)
	GetPlatform(ctx context.Context, id uuid.UUID) (*fulfillmentapp.PlatformResponse, error)
	ListPlatforms(ctx context.Context) ([]fulfillmentapp.PlatformResponse, error)
	CreateShop(ctx context.Context, input fulfillmentapp.CreateStoreInput) (*fulfillmentapp.StoreResponse, error)
	CreateChannel(ctx context.Context, input fulfillmentapp.CreateStoreInput) (*fulfillmentapp.StoreResponse, error)
	GetStore(ctx context.Context, ref fulfillmentapp.StoreRef) (*fulfillmentapp.StoreResponse, error)
	SearchProducts(ctx context.Context, ref fulfillmentapp.StoreRef, query string) ([]fulfillment.Product, error)
	GetProduct(ctx context.Context, ref fulfillmentapp.StoreRef, productID, variantID string) (*fulfillment.Product, error)
	ListWebhooks(ctx context.Context, ref fulfillmentapp.StoreRef) ([]fulfillment.Webhook, error)
	CreateWebhook(ctx context.Context, ref fulfillmentapp.StoreRef, topic, endpoint string) (string, error)
	DeleteWebhook(ctx context.Context, ref fulfillmentapp.StoreRef, webhookID string) error
}

var (
	_ CatalogUseCases        = (*fulfillmentapp.CatalogService)(nil)
	_ MatchUseCases          = (*fulfillmentapp.MatchService)(nil)
	_ ReconciliationUseCases = (*fulfillmentapp.ReconciliationService)(nil)
	_ OrderUseCases          = (*fulfillmentapp.OrderService)(nil)
	_ DispatchUseCases       = (*fulfillmentapp.DispatchService)(nil)
	_ PlatformUseCases       = (*fulfillmentapp.PlatformService)(nil)
)
