package fulfillment

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/shared"
)

// ItemKey identifies a catalog line independent of its owner
type ItemKey struct {
	ProductID string
	VariantID string
	Quantity  int
}

// String renders the key for logs and map lookups
func (k ItemKey) String() string {
	return fmt.Sprintf("%s/%s x%d", k.ProductID, k.VariantID, k.Quantity)
}

// Validate checks the key fields
func (k ItemKey) Validate() error {
	if k.ProductID == "" {
		return fmt.Errorf("%w: product id is required", shared.ErrInvalidInput)
	}
	if k.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", shared.ErrInvalidInput)
	}
	return nil
}

// SourceItem is a deduplicated shop-side catalog line used as a Match input
type SourceItem struct {
	shared.OwnedEntity
	ItemKey
	ShopID uuid.UUID
}

// SourceItemSpec is the natural key (plus create-only fields) of a SourceItem
type SourceItemSpec struct {
	ItemKey
	ShopID uuid.UUID
}

// Validate checks the spec
func (s SourceItemSpec) Validate() error {
	if err := s.ItemKey.Validate(); err != nil {
		return err
	}
	if s.ShopID == uuid.Nil {
		return fmt.Errorf("%w: shop id is required", shared.ErrInvalidInput)
	}
	return nil
}

// NewSourceItem creates a SourceItem owned by userID
func NewSourceItem(userID uuid.UUID, spec SourceItemSpec) (*SourceItem, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &SourceItem{
		OwnedEntity: shared.NewOwnedEntity(userID),
		ItemKey:     spec.ItemKey,
		ShopID:      spec.ShopID,
	}, nil
}

// ChannelItem is a deduplicated channel-side catalog line used as a Match output.
// Price is the last known price at match time.
type ChannelItem struct {
	shared.OwnedEntity
	ItemKey
	ChannelID uuid.UUID
	Price     decimal.Decimal
	Name      string
	Image     string
}

// ChannelItemSpec is the natural key of a ChannelItem plus the fields persisted on create
type ChannelItemSpec struct {
	ItemKey
	ChannelID uuid.UUID
	Price     decimal.Decimal
	Name      string
	Image     string
}

// Validate checks the spec
func (s ChannelItemSpec) Validate() error {
	if err := s.ItemKey.Validate(); err != nil {
		return err
	}
	if s.ChannelID == uuid.Nil {
		return fmt.Errorf("%w: channel id is required", shared.ErrInvalidInput)
	}
	if s.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", shared.ErrInvalidInput)
	}
	return nil
}

// NewChannelItem creates a ChannelItem owned by userID
func NewChannelItem(userID uuid.UUID, spec ChannelItemSpec) (*ChannelItem, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &ChannelItem{
		OwnedEntity: shared.NewOwnedEntity(userID),
		ItemKey:     spec.ItemKey,
		ChannelID:   spec.ChannelID,
		Price:       spec.Price,
		Name:        spec.Name,
		Image:       spec.Image,
	}, nil
}
