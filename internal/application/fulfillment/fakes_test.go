package fulfillment

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
)

// MockGateway is a mock implementation of fulfillment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Invoke(ctx context.Context, ref string, fn fulfillment.Function, args any, out any) error {
	a := m.Called(ctx, ref, fn, args, out)
	return a.Error(0)
}

// MockDispatchLock is a mock implementation of shared.DispatchLock
type MockDispatchLock struct {
	mock.Mock
}

func (m *MockDispatchLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	a := m.Called(ctx, key, ttl)
	return a.String(0), a.Bool(1), a.Error(2)
}

func (m *MockDispatchLock) Release(ctx context.Context, key, token string) error {
	return m.Called(ctx, key, token).Error(0)
}

func (m *MockDispatchLock) Close() error {
	return m.Called().Error(0)
}

var (
	_ fulfillment.Gateway = (*MockGateway)(nil)
	_ shared.DispatchLock = (*MockDispatchLock)(nil)
)

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

type memStore struct {
	mu        sync.Mutex
	sources   map[uuid.UUID]fulfillment.SourceItem
	channels  map[uuid.UUID]fulfillment.ChannelItem
	matches   map[uuid.UUID]fulfillment.Match
	orders    map[uuid.UUID]fulfillment.Order
	purchases []fulfillment.PlannedPurchase
	platforms map[uuid.UUID]fulfillment.Platform
	shops     map[uuid.UUID]fulfillment.Shop
	stores    map[uuid.UUID]fulfillment.Channel

	// sourceCreateErr is returned once by the next SourceItem create
	sourceCreateErr error
	// recreateErr is returned once by the next match Recreate
	recreateErr error
}

func newMemStore() *memStore {
	return &memStore{
		sources:   make(map[uuid.UUID]fulfillment.SourceItem),
		channels:  make(map[uuid.UUID]fulfillment.ChannelItem),
		matches:   make(map[uuid.UUID]fulfillment.Match),
		orders:    make(map[uuid.UUID]fulfillment.Order),
		platforms: make(map[uuid.UUID]fulfillment.Platform),
		shops:     make(map[uuid.UUID]fulfillment.Shop),
		stores:    make(map[uuid.UUID]fulfillment.Channel),
	}
}

type memSourceRepo struct{ *memStore }

func (r memSourceRepo) FindByKey(_ context.Context, userID uuid.UUID, spec fulfillment.SourceItemSpec) (*fulfillment.SourceItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.sources {
		if item.OwnerUserID == userID && item.ItemKey == spec.ItemKey && item.ShopID == spec.ShopID {
			found := item
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memSourceRepo) Create(_ context.Context, item *fulfillment.SourceItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.sourceCreateErr; err != nil {
		r.sourceCreateErr = nil
		return err
	}
	r.sources[item.ID] = *item
	return nil
}

type memChannelItemRepo struct{ *memStore }

func (r memChannelItemRepo) FindByKey(_ context.Context, userID uuid.UUID, spec fulfillment.ChannelItemSpec) (*fulfillment.ChannelItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.channels {
		if item.OwnerUserID == userID && item.ItemKey == spec.ItemKey && item.ChannelID == spec.ChannelID {
			found := item
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memChannelItemRepo) Create(_ context.Context, item *fulfillment.ChannelItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[item.ID] = *item
	return nil
}

type memMatchRepo struct{ *memStore }

func (r memMatchRepo) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*fulfillment.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok || m.OwnerUserID != userID {
		return nil, shared.ErrNotFound
	}
	return &m, nil
}

func (r memMatchRepo) FindByInputSignature(_ context.Context, userID uuid.UUID, signature string) (*fulfillment.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.OwnerUserID == userID && m.InputSignature() == signature {
			found := m
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memMatchRepo) FindCandidates(_ context.Context, userID uuid.UUID, inputCount int) ([]fulfillment.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]fulfillment.Match, 0)
	for _, m := range r.matches {
		if m.OwnerUserID == userID && len(m.Inputs) == inputCount {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.After(result[j].UpdatedAt) })
	return result, nil
}

func (r memMatchRepo) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]fulfillment.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]fulfillment.Match, 0)
	for _, m := range r.matches {
		if m.OwnerUserID == userID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r memMatchRepo) insertLocked(m *fulfillment.Match) error {
	for _, existing := range r.matches {
		if existing.OwnerUserID == m.OwnerUserID && existing.InputSignature() == m.InputSignature() {
			return fmt.Errorf("%w: input set %s", fulfillment.ErrDuplicateMatch, m.InputSignature())
		}
	}
	r.matches[m.ID] = *m
	return nil
}

func (r memMatchRepo) Create(_ context.Context, m *fulfillment.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(m)
}

func (r memMatchRepo) ReplaceOutputs(_ context.Context, m *fulfillment.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[m.ID]; !ok {
		return shared.ErrNotFound
	}
	r.matches[m.ID] = *m
	return nil
}

func (r memMatchRepo) Recreate(_ context.Context, old, replacement *fulfillment.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.recreateErr; err != nil {
		r.recreateErr = nil
		return err
	}
	if _, ok := r.matches[old.ID]; !ok {
		return shared.ErrNotFound
	}
	delete(r.matches, old.ID)
	return r.insertLocked(replacement)
}

func (r memMatchRepo) DeleteForUser(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok || m.OwnerUserID != userID {
		return shared.ErrNotFound
	}
	delete(r.matches, id)
	return nil
}

type memOrderRepo struct{ *memStore }

func (r memOrderRepo) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*fulfillment.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.OwnerUserID != userID {
		return nil, shared.ErrNotFound
	}
	o.PlannedPurchases = nil
	return &o, nil
}

func (r memOrderRepo) Create(_ context.Context, o *fulfillment.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = *o
	return nil
}

func (r memOrderRepo) Update(_ context.Context, o *fulfillment.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok {
		return shared.ErrNotFound
	}
	stored.Status = o.Status
	stored.OrderError = o.OrderError
	stored.UpdatedAt = o.UpdatedAt
	r.orders[o.ID] = stored
	return nil
}

type memPurchaseRepo struct{ *memStore }

func (r memPurchaseRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]fulfillment.PlannedPurchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]fulfillment.PlannedPurchase, 0)
	for _, pp := range r.purchases {
		if pp.OrderID == orderID {
			result = append(result, pp)
		}
	}
	return result, nil
}

func (r memPurchaseRepo) FindUndispatched(_ context.Context, orderID uuid.UUID) ([]fulfillment.PlannedPurchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]fulfillment.PlannedPurchase, 0)
	for _, pp := range r.purchases {
		if pp.OrderID == orderID && pp.PurchaseID == "" && pp.URL == "" {
			result = append(result, pp)
		}
	}
	return result, nil
}

func (r memPurchaseRepo) CountUndispatched(ctx context.Context, orderID uuid.UUID) (int64, error) {
	pending, err := r.FindUndispatched(ctx, orderID)
	return int64(len(pending)), err
}

func (r memPurchaseRepo) ReplaceUndispatched(_ context.Context, orderID uuid.UUID, purchases []fulfillment.PlannedPurchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := make([]fulfillment.PlannedPurchase, 0, len(r.purchases))
	for _, pp := range r.purchases {
		if pp.OrderID == orderID && !pp.IsDispatched() {
			continue
		}
		kept = append(kept, pp)
	}
	r.purchases = append(kept, purchases...)
	return nil
}

func (r memPurchaseRepo) SaveResults(_ context.Context, purchases []fulfillment.PlannedPurchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, updated := range purchases {
		for i := range r.purchases {
			if r.purchases[i].ID == updated.ID {
				r.purchases[i].PurchaseID = updated.PurchaseID
				r.purchases[i].URL = updated.URL
				r.purchases[i].Error = updated.Error
			}
		}
	}
	return nil
}

type memPlatformRepo struct{ *memStore }

func (r memPlatformRepo) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*fulfillment.Platform, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.platforms[id]
	if !ok || p.OwnerUserID != userID {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r memPlatformRepo) FindAllForUser(_ context.Context, userID uuid.UUID) ([]fulfillment.Platform, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]fulfillment.Platform, 0)
	for _, p := range r.platforms {
		if p.OwnerUserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r memPlatformRepo) Create(_ context.Context, p *fulfillment.Platform) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.platforms[p.ID] = *p
	return nil
}

func (r memPlatformRepo) ListAdapterKeys(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0)
	for _, p := range r.platforms {
		keys = append(keys, p.Functions.AdapterKeys()...)
	}
	return keys, nil
}

type memShopRepo struct{ *memStore }

func (r memShopRepo) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*fulfillment.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shops[id]
	if !ok || s.OwnerUserID != userID {
		return nil, shared.ErrNotFound
	}
	return &s, nil
}

func (r memShopRepo) Create(_ context.Context, s *fulfillment.Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shops[s.ID] = *s
	return nil
}

type memChannelRepo struct{ *memStore }

func (r memChannelRepo) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*fulfillment.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.stores[id]
	if !ok || c.OwnerUserID != userID {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (r memChannelRepo) Create(_ context.Context, c *fulfillment.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[c.ID] = *c
	return nil
}

var (
	_ fulfillment.SourceItemRepository      = memSourceRepo{}
	_ fulfillment.ChannelItemRepository     = memChannelItemRepo{}
	_ fulfillment.MatchRepository           = memMatchRepo{}
	_ fulfillment.OrderRepository           = memOrderRepo{}
	_ fulfillment.PlannedPurchaseRepository = memPurchaseRepo{}
	_ fulfillment.PlatformRepository        = memPlatformRepo{}
	_ fulfillment.ShopRepository            = memShopRepo{}
	_ fulfillment.ChannelRepository         = memChannelRepo{}
)
