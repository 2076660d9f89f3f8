package fulfillment

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/fulfillment"
)

// LiveLookup is the outcome of one live product lookup
type LiveLookup struct {
	Product fulfillment.Product
	Err     error
}

// OK reports whether the lookup succeeded
func (l LiveLookup) OK() bool {
	return l.Err == nil
}

type liveKey struct {
	kind      fulfillment.PlatformKind
	storeID   uuid.UUID
	productID string
	variantID string
}

type liveEntry struct {
	once   sync.Once
	lookup LiveLookup
}

// LiveCatalog fetches live product state through the gateway.
// It lives for one operation; repeated lookups of the same product hit the memo.
type LiveCatalog struct {
	gateway fulfillment.Gateway
	stores  *storeScope

	mu      sync.Mutex
	entries map[liveKey]*liveEntry
}

func newLiveCatalog(gateway fulfillment.Gateway, stores *storeScope) *LiveCatalog {
	return &LiveCatalog{
		gateway: gateway,
		stores:  stores,
		entries: make(map[liveKey]*liveEntry),
	}
}

// SourceProduct looks up the live state of a source item on its shop
func (c *LiveCatalog) SourceProduct(ctx context.Context, item fulfillment.SourceItem) LiveLookup {
	return c.lookup(ctx, liveKey{
		kind:      fulfillment.PlatformKindShop,
		storeID:   item.ShopID,
		productID: item.ProductID,
		variantID: item.VariantID,
	})
}

// ChannelProduct looks up the live state of a channel item on its channel
func (c *LiveCatalog) ChannelProduct(ctx context.Context, item fulfillment.ChannelItem) LiveLookup {
	return c.lookup(ctx, liveKey{
		kind:      fulfillment.PlatformKindChannel,
		storeID:   item.ChannelID,
		productID: item.ProductID,
		variantID: item.VariantID,
	})
}

func (c *LiveCatalog) lookup(ctx context.Context, key liveKey) LiveLookup {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &liveEntry{}
		c.entries[key] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.lookup = c.fetch(ctx, key)
	})
	return entry.lookup
}

func (c *LiveCatalog) fetch(ctx context.Context, key liveKey) LiveLookup {
	store, err := c.stores.resolve(ctx, StoreRef{Kind: key.kind, ID: key.storeID})
	if err != nil {
		return LiveLookup{Err: err}
	}
	ref, err := store.ref(fulfillment.FunctionGetProduct)
	if err != nil {
		return LiveLookup{Err: err}
	}

	var result fulfillment.GetProductResult
	args := fulfillment.GetProductArgs{
		ProductID:   key.productID,
		VariantID:   key.variantID,
		Credentials: store.Store.Credentials(),
	}
	if err := c.gateway.Invoke(ctx, ref, fulfillment.FunctionGetProduct, args, &result); err != nil {
		return LiveLookup{Err: err}
	}
	return LiveLookup{Product: result.Product}
}
