package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
)

// ReconciliationService compares matches with live platform state and pushes inventory corrections
type ReconciliationService struct {
	matchRepo       fulfillment.MatchRepository
	stores          *StoreDirectory
	gateway         fulfillment.Gateway
	syncConcurrency int
	logger          *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService.
// syncConcurrency bounds concurrent inventory updates; zero or less means unbounded.
func NewReconciliationService(
	matchRepo fulfillment.MatchRepository,
	stores *StoreDirectory,
	gateway fulfillment.Gateway,
	syncConcurrency int,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		matchRepo:       matchRepo,
		stores:          stores,
		gateway:         gateway,
		syncConcurrency: syncConcurrency,
		logger:          logger,
	}
}

// PriceDelta returns the sum of live minus stored price over the match outputs.
// Computed on every call; a failed live lookup fails the whole computation.
func (s *ReconciliationService) PriceDelta(ctx context.Context, matchID uuid.UUID) (decimal.Decimal, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	match, err := s.matchRepo.FindByIDForUser(ctx, userID, matchID)
	if err != nil {
		return decimal.Zero, err
	}

	live := newLiveCatalog(s.gateway, s.stores.scope(userID))
	pairs := make([]fulfillment.PricePair, 0, len(match.Outputs))
	for _, out := range match.Outputs {
		lookup := live.ChannelProduct(ctx, out)
		if !lookup.OK() {
			return decimal.Zero, fmt.Errorf("live price of %s: %w", out.ItemKey, lookup.Err)
		}
		pairs = append(pairs, fulfillment.PricePair{Stored: out.Price, Live: lookup.Product.Price})
	}
	return fulfillment.PriceDelta(pairs), nil
}

// InventorySyncStatus reports whether the match can and should have its inventory synced
func (s *ReconciliationService) InventorySyncStatus(ctx context.Context, matchID uuid.UUID) (fulfillment.InventorySyncStatus, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return fulfillment.InventorySyncStatus{}, err
	}
	match, err := s.matchRepo.FindByIDForUser(ctx, userID, matchID)
	if err != nil {
		return fulfillment.InventorySyncStatus{}, err
	}
	live := newLiveCatalog(s.gateway, s.stores.scope(userID))
	return s.syncStatus(ctx, live, match), nil
}

// syncStatus treats a failed live lookup as undefined inventory
func (s *ReconciliationService) syncStatus(ctx context.Context, live *LiveCatalog, match *fulfillment.Match) fulfillment.InventorySyncStatus {
	if !fulfillment.SyncShapeEligible(match) {
		return fulfillment.InventorySyncStatus{}
	}

	source := live.SourceProduct(ctx, match.Inputs[0])
	if !source.OK() {
		s.logger.Warn("Source inventory lookup failed",
			zap.String("match_id", match.ID.String()),
			zap.Error(source.Err),
		)
		return fulfillment.InventorySyncStatus{}
	}
	target := live.ChannelProduct(ctx, match.Outputs[0])
	if !target.OK() {
		s.logger.Warn("Target inventory lookup failed",
			zap.String("match_id", match.ID.String()),
			zap.Error(target.Err),
		)
		return fulfillment.InventorySyncStatus{}
	}
	return fulfillment.EvaluateInventorySync(match, source.Product.Inventory, target.Product.Inventory)
}

type inventoryCall struct {
	matchID uuid.UUID
	ref     string
	args    fulfillment.UpdateInventoryArgs
}

// SyncInventory pushes target-minus-source inventory deltas to the shop for every match that needs it.
// All updates run concurrently; updates that succeeded are kept even when others fail.
func (s *ReconciliationService) SyncInventory(ctx context.Context, matchIDs []uuid.UUID) (*InventorySyncResult, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	stores := s.stores.scope(userID)
	live := newLiveCatalog(s.gateway, stores)

	calls := make([]inventoryCall, 0)
	seen := make(map[uuid.UUID]struct{}, len(matchIDs))
	for _, id := range matchIDs {
		// A repeated id would push the same delta twice
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		match, err := s.matchRepo.FindByIDForUser(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		status := s.syncStatus(ctx, live, match)
		if !status.SyncNeeded {
			continue
		}
		for _, in := range match.Inputs {
			shop, err := stores.shop(ctx, in.ShopID)
			if err != nil {
				return nil, err
			}
			ref, err := shop.ref(fulfillment.FunctionUpdateInventory)
			if err != nil {
				return nil, err
			}
			calls = append(calls, inventoryCall{
				matchID: match.ID,
				ref:     ref,
				args: fulfillment.UpdateInventoryArgs{
					ProductID:   in.ProductID,
					VariantID:   in.VariantID,
					Delta:       status.Delta(),
					Credentials: shop.Store.Credentials(),
				},
			})
		}
	}

	outcomes := make([]error, len(calls))
	var g errgroup.Group
	if s.syncConcurrency > 0 {
		g.SetLimit(s.syncConcurrency)
	}
	for i, call := range calls {
		g.Go(func() error {
			var res fulfillment.SuccessResult
			outcomes[i] = s.gateway.Invoke(ctx, call.ref, fulfillment.FunctionUpdateInventory, call.args, &res)
			return nil
		})
	}
	_ = g.Wait()

	result := &InventorySyncResult{Total: len(calls)}
	for i, callErr := range outcomes {
		if callErr == nil {
			result.Succeeded++
			continue
		}
		result.Failed++
		result.Failures = append(result.Failures, InventorySyncFailure{
			MatchID:   calls[i].matchID,
			ProductID: calls[i].args.ProductID,
			VariantID: calls[i].args.VariantID,
			Message:   fulfillment.FailureMessage(callErr),
		})
	}

	s.logger.Info("Inventory sync finished",
		zap.Int("matches", len(seen)),
		zap.Int("total", result.Total),
		zap.Int("failed", result.Failed),
	)

	if result.Failed > 0 {
		return result, fmt.Errorf("%w: %d of %d updates failed", fulfillment.ErrInventorySyncFailed, result.Failed, result.Total)
	}
	return result, nil
}
