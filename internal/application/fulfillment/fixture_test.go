package fulfillment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
)

type fixture struct {
	t       *testing.T
	ctx     context.Context
	userID  uuid.UUID
	store   *memStore
	gateway *MockGateway
	lock    *MockDispatchLock

	catalog        *CatalogService
	matches        *MatchService
	reconciliation *ReconciliationService
	dispatch       *DispatchService
	platforms      *PlatformService
	orders         *OrderService

	shopPlatform    *fulfillment.Platform
	channelPlatform *fulfillment.Platform
	shop            *fulfillment.Shop
}

type staticAdapters map[string]bool

func (a staticAdapters) Has(key string) bool { return a[key] }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		userID:  uuid.New(),
		store:   newMemStore(),
		gateway: new(MockGateway),
		lock:    new(MockDispatchLock),
	}
	f.ctx = shared.WithUserID(context.Background(), f.userID)

	logger := zap.NewNop()
	stores := NewStoreDirectory(memShopRepo{f.store}, memChannelRepo{f.store}, memPlatformRepo{f.store})
	f.catalog = NewCatalogService(memSourceRepo{f.store}, memChannelItemRepo{f.store})
	f.matches = NewMatchService(f.catalog, memMatchRepo{f.store}, memOrderRepo{f.store}, memPurchaseRepo{f.store}, logger)
	f.reconciliation = NewReconciliationService(memMatchRepo{f.store}, stores, f.gateway, 4, logger)
	f.dispatch = NewDispatchService(memOrderRepo{f.store}, memPurchaseRepo{f.store}, stores, f.gateway, f.lock, 0, logger)
	f.platforms = NewPlatformService(memPlatformRepo{f.store}, memShopRepo{f.store}, memChannelRepo{f.store}, stores,
		staticAdapters{"shopify": true}, f.gateway, logger)
	f.orders = NewOrderService(memOrderRepo{f.store}, memPurchaseRepo{f.store}, stores, f.gateway, logger)

	var err error
	f.shopPlatform, err = fulfillment.NewPlatform(f.userID, "Shop platform", fulfillment.PlatformKindShop, fulfillment.PlatformFunctions{
		GetProduct:             "shop-adapter",
		UpdateInventory:        "shop-adapter",
		AddCartToPlatformOrder: "shop-adapter",
		AddTracking:            "shop-adapter",
	})
	require.NoError(t, err)
	f.store.platforms[f.shopPlatform.ID] = *f.shopPlatform

	f.channelPlatform, err = fulfillment.NewPlatform(f.userID, "Channel platform", fulfillment.PlatformKindChannel, fulfillment.PlatformFunctions{
		GetProduct:     "channel-adapter",
		CreatePurchase: "channel-adapter",
		Search:         "channel-adapter",
	})
	require.NoError(t, err)
	f.store.platforms[f.channelPlatform.ID] = *f.channelPlatform

	f.shop, err = fulfillment.NewShop(f.userID, "Main shop", "main.example.com", "shop-token", f.shopPlatform.ID)
	require.NoError(t, err)
	f.store.shops[f.shop.ID] = *f.shop
	return f
}

func (f *fixture) addChannel(name string) *fulfillment.Channel {
	f.t.Helper()
	channel, err := fulfillment.NewChannel(f.userID, name, name+".example.com", name+"-token", f.channelPlatform.ID)
	require.NoError(f.t, err)
	f.store.stores[channel.ID] = *channel
	return channel
}

func (f *fixture) addOrder(lines ...fulfillment.ItemKey) *fulfillment.Order {
	f.t.Helper()
	order, err := fulfillment.NewOrder(f.userID, f.shop.ID, "1001", "#1001")
	require.NoError(f.t, err)
	order.Email = "buyer@example.com"
	order.ShippingMethod = "standard"
	order.Shipping = fulfillment.ShippingAddress{FirstName: "Ada", Address1: "1 Main St", City: "Springfield", Zip: "12345", Country: "US"}
	for _, l := range lines {
		require.NoError(f.t, order.AddLineItem(l.ProductID, l.VariantID, l.Quantity, decimal.NewFromInt(10), l.ProductID, ""))
	}
	f.store.orders[order.ID] = *order
	return order
}

func (f *fixture) addPlanned(order *fulfillment.Order, channel *fulfillment.Channel, productID string) fulfillment.PlannedPurchase {
	pp := fulfillment.PlannedPurchaseFromChannelItem(order.ID, fulfillment.ChannelItem{
		ItemKey:   fulfillment.ItemKey{ProductID: productID, VariantID: "v", Quantity: 1},
		ChannelID: channel.ID,
		Price:     decimal.NewFromInt(7),
	})
	f.store.purchases = append(f.store.purchases, pp)
	return pp
}

func (f *fixture) purchase(id uuid.UUID) fulfillment.PlannedPurchase {
	for _, pp := range f.store.purchases {
		if pp.ID == id {
			return pp
		}
	}
	f.t.Fatalf("planned purchase %s not found", id)
	return fulfillment.PlannedPurchase{}
}

func (f *fixture) sourceSpec(productID string, qty int) fulfillment.SourceItemSpec {
	return fulfillment.SourceItemSpec{
		ItemKey: fulfillment.ItemKey{ProductID: productID, VariantID: "v", Quantity: qty},
		ShopID:  f.shop.ID,
	}
}

func (f *fixture) channelSpec(channel *fulfillment.Channel, productID string, price int64) fulfillment.ChannelItemSpec {
	return fulfillment.ChannelItemSpec{
		ItemKey:   fulfillment.ItemKey{ProductID: productID, VariantID: "v", Quantity: 1},
		ChannelID: channel.ID,
		Price:     decimal.NewFromInt(price),
	}
}

func key(productID string, qty int) fulfillment.ItemKey {
	return fulfillment.ItemKey{ProductID: productID, VariantID: "v", Quantity: qty}
}
