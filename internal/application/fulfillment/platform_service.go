package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
)

// AdapterCatalog tells which in-process adapter keys are registered
type AdapterCatalog interface {
	Has(key string) bool
}

// PlatformService manages platform configurations, shops and channels, and proxies
// catalog and webhook functions to them
type PlatformService struct {
	platformRepo fulfillment.PlatformRepository
	shopRepo     fulfillment.ShopRepository
	channelRepo  fulfillment.ChannelRepository
	stores       *StoreDirectory
	adapters     AdapterCatalog
	gateway      fulfillment.Gateway
	logger       *zap.Logger
}

// NewPlatformService creates a new PlatformService
func NewPlatformService(
	platformRepo fulfillment.PlatformRepository,
	shopRepo fulfillment.ShopRepository,
	channelRepo fulfillment.ChannelRepository,
	stores *StoreDirectory,
	adapters AdapterCatalog,
	gateway fulfillment.Gateway,
	logger *zap.Logger,
) *PlatformService {
	return &PlatformService{
		platformRepo: platformRepo,
		shopRepo:     shopRepo,
		channelRepo:  channelRepo,
		stores:       stores,
		adapters:     adapters,
		gateway:      gateway,
		logger:       logger,
	}
}

// CreatePlatform registers a platform configuration.
// Every non-URL function reference must name a registered adapter.
func (s *PlatformService) CreatePlatform(ctx context.Context, input CreatePlatformInput) (*PlatformResponse, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range input.Functions.AdapterKeys() {
		if !s.adapters.Has(key) {
			return nil, fmt.Errorf("%w: unknown adapter %q", shared.ErrInvalidInput, key)
		}
	}

	platform, err := fulfillment.NewPlatform(userID, input.Name, input.Kind, input.Functions)
	if err != nil {
		return nil, err
	}
	if err := s.platformRepo.Create(ctx, platform); err != nil {
		return nil, err
	}

	s.logger.Info("Platform created",
		zap.String("platform_id", platform.ID.String()),
		zap.String("kind", string(platform.Kind)),
	)
	resp := ToPlatformResponse(platform)
	return &resp, nil
}

// GetPlatform returns a platform of the caller
func (s *PlatformService) GetPlatform(ctx context.Context, id uuid.UUID) (*PlatformResponse, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	platform, err := s.platformRepo.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPlatformResponse(platform)
	return &resp, nil
}

// ListPlatforms returns all platforms of the caller
func (s *PlatformService) ListPlatforms(ctx context.Context) ([]PlatformResponse, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	platforms, err := s.platformRepo.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := make([]PlatformResponse, len(platforms))
	for i := range platforms {
		resp[i] = ToPlatformResponse(&platforms[i])
	}
	return resp, nil
}

// CreateShop registers a shop on a shop platform
func (s *PlatformService) CreateShop(ctx context.Context, input CreateStoreInput) (*StoreResponse, error) {
	userID, err := s.requirePlatformKind(ctx, input.PlatformID, fulfillment.PlatformKindShop)
	if err != nil {
		return nil, err
	}
	shop, err := fulfillment.NewShop(userID, input.Name, input.Domain, input.AccessToken, input.PlatformID)
	if err != nil {
		return nil, err
	}
	if err := s.shopRepo.Create(ctx, shop); err != nil {
		return nil, err
	}
	resp := ToStoreResponse(&shop.Store)
	return &resp, nil
}

// CreateChannel registers a channel on a channel platform
func (s *PlatformService) CreateChannel(ctx context.Context, input CreateStoreInput) (*StoreResponse, error) {
	userID, err := s.requirePlatformKind(ctx, input.PlatformID, fulfillment.PlatformKindChannel)
	if err != nil {
		return nil, err
	}
	channel, err := fulfillment.NewChannel(userID, input.Name, input.Domain, input.AccessToken, input.PlatformID)
	if err != nil {
		return nil, err
	}
	if err := s.channelRepo.Create(ctx, channel); err != nil {
		return nil, err
	}
	resp := ToStoreResponse(&channel.Store)
	return &resp, nil
}

// GetStore returns a shop or channel of the caller
func (s *PlatformService) GetStore(ctx context.Context, ref StoreRef) (*StoreResponse, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	store, err := s.stores.scope(userID).resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	resp := ToStoreResponse(store.Store)
	return &resp, nil
}

func (s *PlatformService) requirePlatformKind(ctx context.Context, platformID uuid.UUID, kind fulfillment.PlatformKind) (uuid.UUID, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	platform, err := s.platformRepo.FindByIDForUser(ctx, userID, platformID)
	if err != nil {
		return uuid.Nil, err
	}
	if platform.Kind != kind {
		return uuid.Nil, fmt.Errorf("%w: platform %s is a %s platform", shared.ErrInvalidInput, platform.Name, platform.Kind)
	}
	return userID, nil
}

// SearchProducts searches the catalog of a shop or channel
func (s *PlatformService) SearchProducts(ctx context.Context, ref StoreRef, query string) ([]fulfillment.Product, error) {
	store, fnRef, err := s.function(ctx, ref, fulfillment.FunctionSearchProducts)
	if err != nil {
		return nil, err
	}
	var result fulfillment.SearchProductsResult
	args := fulfillment.SearchProductsArgs{SearchEntry: query, Credentials: store.Store.Credentials()}
	if err := s.gateway.Invoke(ctx, fnRef, fulfillment.FunctionSearchProducts, args, &result); err != nil {
		return nil, err
	}
	return result.Products, nil
}

// GetProduct looks up one product of a shop or channel
func (s *PlatformService) GetProduct(ctx context.Context, ref StoreRef, productID, variantID string) (*fulfillment.Product, error) {
	store, fnRef, err := s.function(ctx, ref, fulfillment.FunctionGetProduct)
	if err != nil {
		return nil, err
	}
	var result fulfillment.GetProductResult
	args := fulfillment.GetProductArgs{ProductID: productID, VariantID: variantID, Credentials: store.Store.Credentials()}
	if err := s.gateway.Invoke(ctx, fnRef, fulfillment.FunctionGetProduct, args, &result); err != nil {
		return nil, err
	}
	return &result.Product, nil
}

// ListWebhooks lists the webhooks registered on a shop or channel
func (s *PlatformService) ListWebhooks(ctx context.Context, ref StoreRef) ([]fulfillment.Webhook, error) {
	store, fnRef, err := s.function(ctx, ref, fulfillment.FunctionGetWebhooks)
	if err != nil {
		return nil, err
	}
	var result fulfillment.GetWebhooksResult
	args := fulfillment.WebhookArgs{Credentials: store.Store.Credentials()}
	if err := s.gateway.Invoke(ctx, fnRef, fulfillment.FunctionGetWebhooks, args, &result); err != nil {
		return nil, err
	}
	return result.Webhooks, nil
}

// CreateWebhook subscribes endpoint to topic on a shop or channel and returns the webhook id
func (s *PlatformService) CreateWebhook(ctx context.Context, ref StoreRef, topic, endpoint string) (string, error) {
	store, fnRef, err := s.function(ctx, ref, fulfillment.FunctionCreateWebhook)
	if err != nil {
		return "", err
	}
	var result fulfillment.CreateWebhookResult
	args := fulfillment.WebhookArgs{Topic: topic, Endpoint: endpoint, Credentials: store.Store.Credentials()}
	if err := s.gateway.Invoke(ctx, fnRef, fulfillment.FunctionCreateWebhook, args, &result); err != nil {
		return "", err
	}
	return result.WebhookID, nil
}

// DeleteWebhook removes a webhook from a shop or channel
func (s *PlatformService) DeleteWebhook(ctx context.Context, ref StoreRef, webhookID string) error {
	store, fnRef, err := s.function(ctx, ref, fulfillment.FunctionDeleteWebhook)
	if err != nil {
		return err
	}
	var result fulfillment.DeleteWebhookResult
	args := fulfillment.WebhookArgs{WebhookID: webhookID, Credentials: store.Store.Credentials()}
	return s.gateway.Invoke(ctx, fnRef, fulfillment.FunctionDeleteWebhook, args, &result)
}

func (s *PlatformService) function(ctx context.Context, ref StoreRef, fn fulfillment.Function) (resolvedStore, string, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return resolvedStore{}, "", err
	}
	store, err := s.stores.scope(userID).resolve(ctx, ref)
	if err != nil {
		return resolvedStore{}, "", err
	}
	fnRef, err := store.ref(fn)
	if err != nil {
		return resolvedStore{}, "", err
	}
	return store, fnRef, nil
}
