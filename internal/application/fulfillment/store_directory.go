package fulfillment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/fulfillment"
)

// StoreDirectory loads shops and channels together with their platform configuration
type StoreDirectory struct {
	shopRepo     fulfillment.ShopRepository
	channelRepo  fulfillment.ChannelRepository
	platformRepo fulfillment.PlatformRepository
}

// NewStoreDirectory creates a new StoreDirectory
func NewStoreDirectory(
	shopRepo fulfillment.ShopRepository,
	channelRepo fulfillment.ChannelRepository,
	platformRepo fulfillment.PlatformRepository,
) *StoreDirectory {
	return &StoreDirectory{
		shopRepo:     shopRepo,
		channelRepo:  channelRepo,
		platformRepo: platformRepo,
	}
}

// resolvedStore is a shop or channel with its platform
type resolvedStore struct {
	Store    *fulfillment.Store
	Platform *fulfillment.Platform
}

// ref returns the function reference for fn or ErrAdapterNotConfigured
func (r resolvedStore) ref(fn fulfillment.Function) (string, error) {
	return r.Platform.RequireRef(fn)
}

// storeScope caches lookups for one operation of one user
type storeScope struct {
	dir    *StoreDirectory
	userID uuid.UUID

	mu        sync.Mutex
	shops     map[uuid.UUID]resolvedStore
	channels  map[uuid.UUID]resolvedStore
	platforms map[uuid.UUID]*fulfillment.Platform
}

func (d *StoreDirectory) scope(userID uuid.UUID) *storeScope {
	return &storeScope{
		dir:       d,
		userID:    userID,
		shops:     make(map[uuid.UUID]resolvedStore),
		channels:  make(map[uuid.UUID]resolvedStore),
		platforms: make(map[uuid.UUID]*fulfillment.Platform),
	}
}

func (s *storeScope) shop(ctx context.Context, id uuid.UUID) (resolvedStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rs, ok := s.shops[id]; ok {
		return rs, nil
	}
	shop, err := s.dir.shopRepo.FindByIDForUser(ctx, s.userID, id)
	if err != nil {
		return resolvedStore{}, fmt.Errorf("shop %s: %w", id, err)
	}
	platform, err := s.platform(ctx, shop.PlatformID)
	if err != nil {
		return resolvedStore{}, err
	}
	rs := resolvedStore{Store: &shop.Store, Platform: platform}
	s.shops[id] = rs
	return rs, nil
}

func (s *storeScope) channel(ctx context.Context, id uuid.UUID) (resolvedStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rs, ok := s.channels[id]; ok {
		return rs, nil
	}
	channel, err := s.dir.channelRepo.FindByIDForUser(ctx, s.userID, id)
	if err != nil {
		return resolvedStore{}, fmt.Errorf("channel %s: %w", id, err)
	}
	platform, err := s.platform(ctx, channel.PlatformID)
	if err != nil {
		return resolvedStore{}, err
	}
	rs := resolvedStore{Store: &channel.Store, Platform: platform}
	s.channels[id] = rs
	return rs, nil
}

// platform must be called with mu held
func (s *storeScope) platform(ctx context.Context, id uuid.UUID) (*fulfillment.Platform, error) {
	if p, ok := s.platforms[id]; ok {
		return p, nil
	}
	p, err := s.dir.platformRepo.FindByIDForUser(ctx, s.userID, id)
	if err != nil {
		return nil, fmt.Errorf("platform %s: %w", id, err)
	}
	s.platforms[id] = p
	return p, nil
}

// resolve loads the shop or channel ref points at
func (s *storeScope) resolve(ctx context.Context, ref StoreRef) (resolvedStore, error) {
	if ref.Kind == fulfillment.PlatformKindChannel {
		return s.channel(ctx, ref.ID)
	}
	return s.shop(ctx, ref.ID)
}
