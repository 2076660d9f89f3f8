package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
)

// OrderService records shop orders and drives their externally triggered transitions
type OrderService struct {
	orderRepo    fulfillment.OrderRepository
	purchaseRepo fulfillment.PlannedPurchaseRepository
	stores       *StoreDirectory
	gateway      fulfillment.Gateway
	logger       *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo fulfillment.OrderRepository,
	purchaseRepo fulfillment.PlannedPurchaseRepository,
	stores *StoreDirectory,
	gateway fulfillment.Gateway,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		purchaseRepo: purchaseRepo,
		stores:       stores,
		gateway:      gateway,
		logger:       logger,
	}
}

// CreateOrder records a shop order with its line items
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderResponse, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.scope(userID).shop(ctx, input.ShopID); err != nil {
		return nil, err
	}

	order, err := fulfillment.NewOrder(userID, input.ShopID, input.ExternalOrderID, input.OrderName)
	if err != nil {
		return nil, err
	}
	order.Email = input.Email
	order.ShippingMethod = input.ShippingMethod
	order.Shipping = input.Shipping
	for _, li := range input.LineItems {
		if err := order.AddLineItem(li.ProductID, li.VariantID, li.Quantity, li.Price, li.Name, li.Image); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.Int("line_items", len(order.LineItems)),
	)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetOrder returns an order of the caller with its planned purchases
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchaseRepo.FindByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.PlannedPurchases = purchases
	resp := ToOrderResponse(order)
	return &resp, nil
}

// CancelOrder moves the order to CANCELLED
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// AddTracking pushes tracking details to the shop and completes the order once the shop accepts them
func (s *OrderService) AddTracking(ctx context.Context, id uuid.UUID, input AddTrackingInput) (*OrderResponse, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	shop, err := s.stores.scope(userID).shop(ctx, order.ShopID)
	if err != nil {
		return nil, err
	}
	ref, err := shop.ref(fulfillment.FunctionAddTracking)
	if err != nil {
		return nil, err
	}

	args := fulfillment.AddTrackingArgs{
		OrderID:        order.ExternalOrderID,
		TrackingNumber: input.TrackingNumber,
		TrackingURL:    input.TrackingURL,
		Carrier:        input.Carrier,
		Credentials:    shop.Store.Credentials(),
	}
	var res fulfillment.SuccessResult
	if err := s.gateway.Invoke(ctx, ref, fulfillment.FunctionAddTracking, args, &res); err != nil {
		return nil, err
	}

	if res.Success {
		if err := order.Complete(); err != nil {
			return nil, err
		}
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return nil, err
		}
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) load(ctx context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.FindByIDForUser(ctx, userID, id)
}
