package fulfillment

import (
	"context"

	"github.com/google/uuid"
)

// All lookups are scoped to the owning user; a record owned by someone else is reported as not found.

// SourceItemRepository persists SourceItems
type SourceItemRepository interface {
	// FindByKey finds a SourceItem by its natural key
	FindByKey(ctx context.Context, userID uuid.UUID, spec SourceItemSpec) (*SourceItem, error)

	// Create inserts a SourceItem. A unique-key collision returns shared.ErrAlreadyExists.
	Create(ctx context.Context, item *SourceItem) error
}

// ChannelItemRepository persists ChannelItems
type ChannelItemRepository interface {
	// FindByKey finds a ChannelItem by its natural key
	FindByKey(ctx context.Context, userID uuid.UUID, spec ChannelItemSpec) (*ChannelItem, error)

	// Create inserts a ChannelItem. A unique-key collision returns shared.ErrAlreadyExists.
	Create(ctx context.Context, item *ChannelItem) error
}

// MatchRepository persists Matches together with their input and output sets
type MatchRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Match, error)

	// FindByInputSignature finds the Match of a user whose input id-set has the given signature
	FindByInputSignature(ctx context.Context, userID uuid.UUID, signature string) (*Match, error)

	// FindCandidates returns the Matches of a user with exactly inputCount inputs,
	// most recently updated first, with inputs and outputs loaded
	FindCandidates(ctx context.Context, userID uuid.UUID, inputCount int) ([]Match, error)

	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]Match, error)

	// Create inserts a Match and its associations. A duplicate input set returns ErrDuplicateMatch.
	Create(ctx context.Context, match *Match) error

	// ReplaceOutputs swaps the output set of an existing Match in place
	ReplaceOutputs(ctx context.Context, match *Match) error

	// Recreate deletes old and inserts replacement atomically
	Recreate(ctx context.Context, old, replacement *Match) error

	DeleteForUser(ctx context.Context, userID, id uuid.UUID) error
}

// OrderRepository persists Orders with their line items
type OrderRepository interface {
	// FindByIDForUser loads the order with line items (planned purchases not loaded)
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Order, error)

	// Create inserts an order and its line items
	Create(ctx context.Context, order *Order) error

	// Update saves the order header (status, orderError, contact fields)
	Update(ctx context.Context, order *Order) error
}

// PlannedPurchaseRepository persists PlannedPurchases
type PlannedPurchaseRepository interface {
	// FindByOrder returns all planned purchases of an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]PlannedPurchase, error)

	// FindUndispatched returns planned purchases with empty purchase id and url, in creation order
	FindUndispatched(ctx context.Context, orderID uuid.UUID) ([]PlannedPurchase, error)

	// CountUndispatched counts planned purchases with empty purchase id and url
	CountUndispatched(ctx context.Context, orderID uuid.UUID) (int64, error)

	// ReplaceUndispatched deletes the undispatched purchases of an order and inserts the given ones.
	// Purchased lines are never touched.
	ReplaceUndispatched(ctx context.Context, orderID uuid.UUID, purchases []PlannedPurchase) error

	// SaveResults writes purchase id, url and error of each purchase
	SaveResults(ctx context.Context, purchases []PlannedPurchase) error
}

// PlatformRepository persists platform configurations
type PlatformRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Platform, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]Platform, error)
	Create(ctx context.Context, platform *Platform) error
	// ListAdapterKeys returns every adapter key referenced by any stored platform
	ListAdapterKeys(ctx context.Context) ([]string, error)
}

// ShopRepository persists shops
type ShopRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Shop, error)
	Create(ctx context.Context, shop *Shop) error
}

// ChannelRepository persists channels
type ChannelRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Channel, error)
	Create(ctx context.Context, channel *Channel) error
}
