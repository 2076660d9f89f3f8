package platform

import (
	"context"
	"fmt"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
)

// Adapter is a platform integration compiled into the binary.
// Functions a platform does not offer return an AdapterError from Unsupported.
type Adapter interface {
	SearchProducts(ctx context.Context, args fulfillment.SearchProductsArgs) (*fulfillment.SearchProductsResult, error)
	GetProduct(ctx context.Context, args fulfillment.GetProductArgs) (*fulfillment.GetProductResult, error)
	CreatePurchase(ctx context.Context, args fulfillment.CreatePurchaseArgs) (*fulfillment.CreatePurchaseResult, error)
	GetWebhooks(ctx context.Context, args fulfillment.WebhookArgs) (*fulfillment.GetWebhooksResult, error)
	CreateWebhook(ctx context.Context, args fulfillment.WebhookArgs) (*fulfillment.CreateWebhookResult, error)
	DeleteWebhook(ctx context.Context, args fulfillment.WebhookArgs) (*fulfillment.DeleteWebhookResult, error)
	AddTracking(ctx context.Context, args fulfillment.AddTrackingArgs) (*fulfillment.SuccessResult, error)
	AddCartToPlatformOrder(ctx context.Context, args fulfillment.AddCartArgs) (*fulfillment.SuccessResult, error)
	UpdateInventory(ctx context.Context, args fulfillment.UpdateInventoryArgs) (*fulfillment.SuccessResult, error)
}

// Unsupported is the error an adapter returns for a function its platform lacks
func Unsupported(adapter string, fn fulfillment.Function) error {
	return fulfillment.NewAdapterError(fn, "%s does not support %s", adapter, fn)
}

// invokeAdapter routes fn to the matching adapter method
func invokeAdapter(ctx context.Context, a Adapter, fn fulfillment.Function, args any) (any, error) {
	switch fn {
	case fulfillment.FunctionSearchProducts:
		return call(ctx, fn, args, a.SearchProducts)
	case fulfillment.FunctionGetProduct:
		return call(ctx, fn, args, a.GetProduct)
	case fulfillment.FunctionCreatePurchase:
		return call(ctx, fn, args, a.CreatePurchase)
	case fulfillment.FunctionGetWebhooks:
		return call(ctx, fn, args, a.GetWebhooks)
	case fulfillment.FunctionCreateWebhook:
		return call(ctx, fn, args, a.CreateWebhook)
	case fulfillment.FunctionDeleteWebhook:
		return call(ctx, fn, args, a.DeleteWebhook)
	case fulfillment.FunctionAddTracking:
		return call(ctx, fn, args, a.AddTracking)
	case fulfillment.FunctionAddCartToPlatformOrder:
		return call(ctx, fn, args, a.AddCartToPlatformOrder)
	case fulfillment.FunctionUpdateInventory:
		return call(ctx, fn, args, a.UpdateInventory)
	default:
		return nil, fmt.Errorf("%w: unknown adapter function %q", shared.ErrInvalidInput, fn)
	}
}

func call[A any, R any](ctx context.Context, fn fulfillment.Function, args any, method func(context.Context, A) (*R, error)) (any, error) {
	typed, ok := args.(A)
	if !ok {
		if ptr, isPtr := args.(*A); isPtr && ptr != nil {
			typed = *ptr
		} else {
			return nil, fmt.Errorf("%w: %s expects %T, got %T", shared.ErrInvalidInput, fn, typed, args)
		}
	}
	result, err := method(ctx, typed)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fulfillment.NewAdapterError(fn, "%s returned no result", fn)
	}
	return result, nil
}
