package fulfillment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
)

// CatalogService resolves catalog item specs to persisted SourceItems and ChannelItems
type CatalogService struct {
	sourceRepo  fulfillment.SourceItemRepository
	channelRepo fulfillment.ChannelItemRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	sourceRepo fulfillment.SourceItemRepository,
	channelRepo fulfillment.ChannelItemRepository,
) *CatalogService {
	return &CatalogService{
		sourceRepo:  sourceRepo,
		channelRepo: channelRepo,
	}
}

// EnsureSourceItem returns the id of the caller's SourceItem with the spec's natural key, creating it if absent.
// An existing item is returned unchanged.
func (s *CatalogService) EnsureSourceItem(ctx context.Context, spec fulfillment.SourceItemSpec) (uuid.UUID, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	item, err := s.ensureSource(ctx, userID, spec)
	if err != nil {
		return uuid.Nil, err
	}
	return item.ID, nil
}

// EnsureChannelItem returns the id of the caller's ChannelItem with the spec's natural key, creating it if absent.
// Price and display fields are only written on create.
func (s *CatalogService) EnsureChannelItem(ctx context.Context, spec fulfillment.ChannelItemSpec) (uuid.UUID, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	item, err := s.ensureChannel(ctx, userID, spec)
	if err != nil {
		return uuid.Nil, err
	}
	return item.ID, nil
}

func (s *CatalogService) ensureSource(ctx context.Context, userID uuid.UUID, spec fulfillment.SourceItemSpec) (*fulfillment.SourceItem, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.sourceRepo.FindByKey(ctx, userID, spec)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	item, err := fulfillment.NewSourceItem(userID, spec)
	if err != nil {
		return nil, err
	}
	if err := s.sourceRepo.Create(ctx, item); err != nil {
		// A concurrent caller created the same key between our lookup and insert
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.sourceRepo.FindByKey(ctx, userID, spec)
		}
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) ensureChannel(ctx context.Context, userID uuid.UUID, spec fulfillment.ChannelItemSpec) (*fulfillment.ChannelItem, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.channelRepo.FindByKey(ctx, userID, spec)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	item, err := fulfillment.NewChannelItem(userID, spec)
	if err != nil {
		return nil, err
	}
	if err := s.channelRepo.Create(ctx, item); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.channelRepo.FindByKey(ctx, userID, spec)
		}
		return nil, err
	}
	return item, nil
}

// ensureAll resolves every spec of in, dropping repeated items so inputs and outputs behave as sets
func (s *CatalogService) ensureAll(ctx context.Context, userID uuid.UUID, in MatchInput) ([]fulfillment.SourceItem, []fulfillment.ChannelItem, error) {
	inputs := make([]fulfillment.SourceItem, 0, len(in.Inputs))
	seen := make(map[uuid.UUID]struct{})
	for _, spec := range in.Inputs {
		item, err := s.ensureSource(ctx, userID, spec)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		inputs = append(inputs, *item)
	}

	outputs := make([]fulfillment.ChannelItem, 0, len(in.Outputs))
	for _, spec := range in.Outputs {
		item, err := s.ensureChannel(ctx, userID, spec)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		outputs = append(outputs, *item)
	}
	return inputs, outputs, nil
}
