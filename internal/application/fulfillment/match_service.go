package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
)

// MatchService builds, reuses and replaces the bindings between source and channel items
type MatchService struct {
	catalog      *CatalogService
	matchRepo    fulfillment.MatchRepository
	orderRepo    fulfillment.OrderRepository
	purchaseRepo fulfillment.PlannedPurchaseRepository
	logger       *zap.Logger
}

// NewMatchService creates a new MatchService
func NewMatchService(
	catalog *CatalogService,
	matchRepo fulfillment.MatchRepository,
	orderRepo fulfillment.OrderRepository,
	purchaseRepo fulfillment.PlannedPurchaseRepository,
	logger *zap.Logger,
) *MatchService {
	return &MatchService{
		catalog:      catalog,
		matchRepo:    matchRepo,
		orderRepo:    orderRepo,
		purchaseRepo: purchaseRepo,
		logger:       logger,
	}
}

// ResolveMatchForOrder binds the order's line items to existing matches and plans the resulting purchases.
//
// A match whose inputs equal the line items (as a multiset) wins outright. Otherwise each line item of a
// multi-line order is resolved on its own against single-input matches. Every resolved match is then
// replaced by a fresh match with the same input and output sets.
func (s *MatchService) ResolveMatchForOrder(ctx context.Context, orderID uuid.UUID) (*ResolveResult, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByIDForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.CheckResolvable(); err != nil {
		return nil, err
	}

	keys := order.LineKeys()
	result := &ResolveResult{OrderID: order.ID, TotalLines: len(keys)}

	resolved, full, err := s.findResolvingMatches(ctx, userID, keys)
	if err != nil {
		return nil, err
	}

	if len(resolved) == 0 {
		order.MarkUnmatched()
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return nil, err
		}
		s.logger.Info("No matches found for order",
			zap.String("order_id", order.ID.String()),
			zap.Int("line_items", len(keys)),
		)
		result.OrderError = order.OrderError
		result.Status = order.Status
		return result, nil
	}

	if full {
		order.MarkMatched()
		result.FullMatch = true
		result.ResolvedLines = len(keys)
	} else {
		order.MarkPartiallyMatched()
		result.ResolvedLines = len(resolved)
	}

	// Each distinct match is replaced once, even when several line items resolved to it
	refreshed := make(map[uuid.UUID]uuid.UUID)
	for i := range resolved {
		old := &resolved[i]
		if _, done := refreshed[old.ID]; done {
			continue
		}
		replacement, err := fulfillment.NewMatch(userID, old.Inputs, old.Outputs)
		if err != nil {
			return nil, err
		}
		if err := s.matchRepo.Recreate(ctx, old, replacement); err != nil {
			return nil, fmt.Errorf("replace match %s: %w", old.ID, err)
		}
		refreshed[old.ID] = replacement.ID
		result.MatchIDs = append(result.MatchIDs, replacement.ID)
	}

	// Planned purchases are replaced only after every match was refreshed, so a failed
	// refresh leaves the order's purchases and diagnostics untouched
	planned, err := s.planPurchases(ctx, order, resolved)
	if err != nil {
		return nil, err
	}
	result.PlannedPurchases = len(planned)

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order resolved",
		zap.String("order_id", order.ID.String()),
		zap.Bool("full_match", full),
		zap.Int("resolved_lines", result.ResolvedLines),
		zap.Int("planned_purchases", len(planned)),
	)

	result.OrderError = order.OrderError
	result.Status = order.Status
	return result, nil
}

// findResolvingMatches returns the full match (single element, full=true) or the per-line matches
func (s *MatchService) findResolvingMatches(ctx context.Context, userID uuid.UUID, keys []fulfillment.ItemKey) ([]fulfillment.Match, bool, error) {
	if len(keys) == 0 {
		return nil, false, nil
	}

	candidates, err := s.matchRepo.FindCandidates(ctx, userID, len(keys))
	if err != nil {
		return nil, false, err
	}
	// Candidates are ordered most recently updated first
	for i := range candidates {
		if candidates[i].CoversExactly(keys) {
			return []fulfillment.Match{candidates[i]}, true, nil
		}
	}

	if len(keys) == 1 {
		return nil, false, nil
	}

	singles, err := s.matchRepo.FindCandidates(ctx, userID, 1)
	if err != nil {
		return nil, false, err
	}
	resolved := make([]fulfillment.Match, 0, len(keys))
	for _, key := range keys {
		line := []fulfillment.ItemKey{key}
		for i := range singles {
			if singles[i].CoversExactly(line) {
				resolved = append(resolved, singles[i])
				break
			}
		}
	}
	return resolved, false, nil
}

// planPurchases replaces the order's undispatched purchases with one per output of each resolved match.
// Outputs already purchased on this order are not planned again.
func (s *MatchService) planPurchases(ctx context.Context, order *fulfillment.Order, resolved []fulfillment.Match) ([]fulfillment.PlannedPurchase, error) {
	existing, err := s.purchaseRepo.FindByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	type lineKey struct {
		channelID uuid.UUID
		item      fulfillment.ItemKey
	}
	purchased := make(map[lineKey]int)
	for _, pp := range existing {
		if pp.IsDispatched() {
			purchased[lineKey{pp.ChannelID, fulfillment.ItemKey{ProductID: pp.ProductID, VariantID: pp.VariantID, Quantity: pp.Quantity}}]++
		}
	}

	planned := make([]fulfillment.PlannedPurchase, 0)
	for _, m := range resolved {
		for _, out := range m.Outputs {
			k := lineKey{out.ChannelID, out.ItemKey}
			if purchased[k] > 0 {
				purchased[k]--
				continue
			}
			planned = append(planned, fulfillment.PlannedPurchaseFromChannelItem(order.ID, out))
		}
	}

	if err := s.purchaseRepo.ReplaceUndispatched(ctx, order.ID, planned); err != nil {
		return nil, err
	}
	order.PlannedPurchases = planned
	return planned, nil
}

// CreateMatch creates a new Match. It fails with ErrDuplicateMatch if the input set is already bound.
func (s *MatchService) CreateMatch(ctx context.Context, in MatchInput) (*MatchResponse, error) {
	userID, inputs, outputs, err := s.resolveItems(ctx, in)
	if err != nil {
		return nil, err
	}

	match, err := fulfillment.NewMatch(userID, inputs, outputs)
	if err != nil {
		return nil, err
	}

	_, err = s.matchRepo.FindByInputSignature(ctx, userID, match.InputSignature())
	if err == nil {
		return nil, fmt.Errorf("%w: input set %s", fulfillment.ErrDuplicateMatch, match.InputSignature())
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}
	resp := ToMatchResponse(match)
	return &resp, nil
}

// OverwriteMatch deletes the Match bound to the same input set (if any) and creates a new one
func (s *MatchService) OverwriteMatch(ctx context.Context, in MatchInput) (*MatchResponse, error) {
	userID, inputs, outputs, err := s.resolveItems(ctx, in)
	if err != nil {
		return nil, err
	}

	replacement, err := fulfillment.NewMatch(userID, inputs, outputs)
	if err != nil {
		return nil, err
	}

	existing, err := s.matchRepo.FindByInputSignature(ctx, userID, replacement.InputSignature())
	switch {
	case err == nil:
		err = s.matchRepo.Recreate(ctx, existing, replacement)
	case errors.Is(err, shared.ErrNotFound):
		err = s.matchRepo.Create(ctx, replacement)
	}
	if err != nil {
		return nil, err
	}

	resp := ToMatchResponse(replacement)
	return &resp, nil
}

// UpsertMatch swaps the outputs of the Match bound to the same input set, keeping its id, or creates one
func (s *MatchService) UpsertMatch(ctx context.Context, in MatchInput) (*MatchResponse, error) {
	userID, inputs, outputs, err := s.resolveItems(ctx, in)
	if err != nil {
		return nil, err
	}

	created, err := fulfillment.NewMatch(userID, inputs, outputs)
	if err != nil {
		return nil, err
	}
	signature := created.InputSignature()

	existing, err := s.matchRepo.FindByInputSignature(ctx, userID, signature)
	if errors.Is(err, shared.ErrNotFound) {
		err = s.matchRepo.Create(ctx, created)
		if err == nil {
			resp := ToMatchResponse(created)
			return &resp, nil
		}
		if !errors.Is(err, fulfillment.ErrDuplicateMatch) {
			return nil, err
		}
		// Lost the race to a concurrent create; update the winner instead
		existing, err = s.matchRepo.FindByInputSignature(ctx, userID, signature)
	}
	if err != nil {
		return nil, err
	}

	if err := existing.ReplaceOutputs(outputs); err != nil {
		return nil, err
	}
	if err := s.matchRepo.ReplaceOutputs(ctx, existing); err != nil {
		return nil, err
	}
	resp := ToMatchResponse(existing)
	return &resp, nil
}

// GetMatch returns a match of the caller
func (s *MatchService) GetMatch(ctx context.Context, id uuid.UUID) (*MatchResponse, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	match, err := s.matchRepo.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToMatchResponse(match)
	return &resp, nil
}

// ListMatches returns all matches of the caller
func (s *MatchService) ListMatches(ctx context.Context) ([]MatchResponse, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := make([]MatchResponse, len(matches))
	for i := range matches {
		resp[i] = ToMatchResponse(&matches[i])
	}
	return resp, nil
}

// DeleteMatch deletes a match of the caller
func (s *MatchService) DeleteMatch(ctx context.Context, id uuid.UUID) error {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	return s.matchRepo.DeleteForUser(ctx, userID, id)
}

func (s *MatchService) resolveItems(ctx context.Context, in MatchInput) (uuid.UUID, []fulfillment.SourceItem, []fulfillment.ChannelItem, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return uuid.Nil, nil, nil, err
	}
	inputs, outputs, err := s.catalog.ensureAll(ctx, userID, in)
	if err != nil {
		return uuid.Nil, nil, nil, err
	}
	return userID, inputs, outputs, nil
}
