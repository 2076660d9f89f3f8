package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/telemetry"
)

// DefaultDispatchLockTTL bounds how long a crashed dispatcher can block an order
const DefaultDispatchLockTTL = 5 * time.Minute

// DispatchService places channel purchases for the undispatched lines of orders
type DispatchService struct {
	orderRepo    fulfillment.OrderRepository
	purchaseRepo fulfillment.PlannedPurchaseRepository
	stores       *StoreDirectory
	gateway      fulfillment.Gateway
	lock         shared.DispatchLock
	lockTTL      time.Duration
	logger       *zap.Logger
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	orderRepo fulfillment.OrderRepository,
	purchaseRepo fulfillment.PlannedPurchaseRepository,
	stores *StoreDirectory,
	gateway fulfillment.Gateway,
	lock shared.DispatchLock,
	lockTTL time.Duration,
	logger *zap.Logger,
) *DispatchService {
	if lockTTL <= 0 {
		lockTTL = DefaultDispatchLockTTL
	}
	return &DispatchService{
		orderRepo:    orderRepo,
		purchaseRepo: purchaseRepo,
		stores:       stores,
		gateway:      gateway,
		lock:         lock,
		lockTTL:      lockTTL,
		logger:       logger,
	}
}

// DispatchOrders dispatches each order in turn.
// Channel failures are recorded on the affected planned purchases and never returned as errors;
// only precondition and storage failures abort the run.
func (s *DispatchService) DispatchOrders(ctx context.Context, orderIDs []uuid.UUID) ([]OrderDispatchResult, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	stores := s.stores.scope(userID)
	results := make([]OrderDispatchResult, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		result, err := s.dispatchLocked(ctx, userID, stores, orderID)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func dispatchLockKey(orderID uuid.UUID) string {
	return "dispatch:order:" + orderID.String()
}

func (s *DispatchService) dispatchLocked(ctx context.Context, userID uuid.UUID, stores *storeScope, orderID uuid.UUID) (*OrderDispatchResult, error) {
	key := dispatchLockKey(orderID)
	token, acquired, err := s.lock.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire dispatch lock: %w", err)
	}
	if !acquired {
		s.logger.Info("Order dispatch already in progress", zap.String("order_id", orderID.String()))
		return &OrderDispatchResult{OrderID: orderID, Skipped: true, SkipReason: "dispatch already in progress"}, nil
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn("Failed to release dispatch lock", zap.String("order_id", orderID.String()), zap.Error(err))
		}
	}()

	ctx, span := telemetry.StartSpan(ctx, "dispatch.order", telemetry.Attr("order.id", orderID))
	defer span.End()

	result, err := s.dispatchOrder(ctx, userID, stores, orderID)
	if err != nil {
		telemetry.Finish(span, err)
		return nil, err
	}
	telemetry.AddEvent(span, "order_dispatched",
		"status", string(result.Status),
		"channels", len(result.Channels),
		"remaining", result.Remaining,
		"skipped", result.Skipped,
	)
	telemetry.Finish(span, nil)
	return result, nil
}

func (s *DispatchService) dispatchOrder(ctx context.Context, userID uuid.UUID, stores *storeScope, orderID uuid.UUID) (*OrderDispatchResult, error) {
	order, err := s.orderRepo.FindByIDForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == fulfillment.OrderStatusCancelled || order.Status == fulfillment.OrderStatusComplete {
		return &OrderDispatchResult{
			OrderID:    order.ID,
			Status:     order.Status,
			Skipped:    true,
			SkipReason: fmt.Sprintf("order is %s", order.Status),
		}, nil
	}

	shop, err := stores.shop(ctx, order.ShopID)
	if err != nil {
		return nil, err
	}

	pending, err := s.purchaseRepo.FindUndispatched(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	result := &OrderDispatchResult{OrderID: order.ID}
	for _, group := range groupByChannel(pending) {
		channelResult := s.dispatchGroup(ctx, stores, order, group)
		if err := s.purchaseRepo.SaveResults(ctx, group.items); err != nil {
			return nil, err
		}
		result.Channels = append(result.Channels, channelResult)
	}

	remaining, err := s.purchaseRepo.CountUndispatched(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.SettleDispatch(remaining)
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	if remaining == 0 && len(pending) > 0 {
		s.addCartToPlatformOrder(ctx, shop, order)
	}

	s.logger.Info("Order dispatched",
		zap.String("order_id", order.ID.String()),
		zap.Int("channels", len(result.Channels)),
		zap.Int64("remaining", remaining),
		zap.String("status", string(order.Status)),
	)

	result.Status = order.Status
	result.Remaining = remaining
	return result, nil
}

type channelGroup struct {
	channelID uuid.UUID
	items     []fulfillment.PlannedPurchase
}

// groupByChannel keeps channels in first-seen order
func groupByChannel(purchases []fulfillment.PlannedPurchase) []channelGroup {
	groups := make([]channelGroup, 0)
	index := make(map[uuid.UUID]int)
	for _, pp := range purchases {
		i, ok := index[pp.ChannelID]
		if !ok {
			i = len(groups)
			index[pp.ChannelID] = i
			groups = append(groups, channelGroup{channelID: pp.ChannelID})
		}
		groups[i].items = append(groups[i].items, pp)
	}
	return groups
}

// dispatchGroup places one purchase for the whole group and writes the outcome onto every item
func (s *DispatchService) dispatchGroup(ctx context.Context, stores *storeScope, order *fulfillment.Order, group channelGroup) ChannelDispatchResult {
	result := ChannelDispatchResult{ChannelID: group.channelID, Items: len(group.items)}

	purchase, err := s.createPurchase(ctx, stores, order, group)
	if err != nil {
		message := fulfillment.FailureMessage(err)
		for i := range group.items {
			group.items[i].MarkFailed(message)
		}
		result.Error = message
		s.logger.Warn("Channel purchase failed",
			zap.String("order_id", order.ID.String()),
			zap.String("channel_id", group.channelID.String()),
			zap.Error(err),
		)
		return result
	}

	for i := range group.items {
		group.items[i].MarkPurchased(purchase.PurchaseID, purchase.URL)
	}
	result.PurchaseID = purchase.PurchaseID
	result.URL = purchase.URL
	return result
}

func (s *DispatchService) createPurchase(ctx context.Context, stores *storeScope, order *fulfillment.Order, group channelGroup) (*fulfillment.CreatePurchaseResult, error) {
	channel, err := stores.channel(ctx, group.channelID)
	if err != nil {
		return nil, err
	}
	ref, err := channel.ref(fulfillment.FunctionCreatePurchase)
	if err != nil {
		return nil, err
	}

	args := fulfillment.CreatePurchaseArgs{
		Items:          purchaseItems(group.items),
		Address:        order.Shipping,
		Email:          order.Email,
		ShippingMethod: order.ShippingMethod,
		OrderID:        order.ExternalOrderID,
		OrderName:      order.OrderName,
		Credentials:    channel.Store.Credentials(),
	}
	var res fulfillment.CreatePurchaseResult
	if err := s.gateway.Invoke(ctx, ref, fulfillment.FunctionCreatePurchase, args, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// addCartToPlatformOrder reports the purchased lines back to the shop; failures are logged only
func (s *DispatchService) addCartToPlatformOrder(ctx context.Context, shop resolvedStore, order *fulfillment.Order) {
	log := s.logger.With(zap.String("order_id", order.ID.String()))

	ref, err := shop.ref(fulfillment.FunctionAddCartToPlatformOrder)
	if err != nil {
		log.Debug("Shop has no addCartToPlatformOrder function", zap.Error(err))
		return
	}
	purchases, err := s.purchaseRepo.FindByOrder(ctx, order.ID)
	if err != nil {
		log.Warn("Failed to load purchases for shop callback", zap.Error(err))
		return
	}

	args := fulfillment.AddCartArgs{
		Items:       purchaseItems(purchases),
		OrderID:     order.ExternalOrderID,
		Credentials: shop.Store.Credentials(),
	}
	var res fulfillment.SuccessResult
	if err := s.gateway.Invoke(ctx, ref, fulfillment.FunctionAddCartToPlatformOrder, args, &res); err != nil {
		log.Warn("addCartToPlatformOrder failed", zap.Error(err))
	}
}

func purchaseItems(purchases []fulfillment.PlannedPurchase) []fulfillment.PurchaseItem {
	items := make([]fulfillment.PurchaseItem, len(purchases))
	for i, pp := range purchases {
		items[i] = fulfillment.PurchaseItem{
			ProductID: pp.ProductID,
			VariantID: pp.VariantID,
			Quantity:  pp.Quantity,
			Price:     pp.Price,
			Name:      pp.Name,
		}
	}
	return items
}
