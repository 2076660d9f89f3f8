package fulfillment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Function names an operation a platform adapter exposes
type Function string

const (
	FunctionSearchProducts         Function = "searchProducts"
	FunctionGetProduct             Function = "getProduct"
	FunctionCreatePurchase         Function = "createPurchase"
	FunctionGetWebhooks            Function = "getWebhooks"
	FunctionCreateWebhook          Function = "createWebhook"
	FunctionDeleteWebhook          Function = "deleteWebhook"
	FunctionAddTracking            Function = "addTracking"
	FunctionAddCartToPlatformOrder Function = "addCartToPlatformOrder"
	FunctionUpdateInventory        Function = "updateInventory"
)

// AllFunctions lists every adapter function
func AllFunctions() []Function {
	return []Function{
		FunctionSearchProducts,
		FunctionGetProduct,
		FunctionCreatePurchase,
		FunctionGetWebhooks,
		FunctionCreateWebhook,
		FunctionDeleteWebhook,
		FunctionAddTracking,
		FunctionAddCartToPlatformOrder,
		FunctionUpdateInventory,
	}
}

// IsValid checks if fn is a known function
func (fn Function) IsValid() bool {
	for _, f := range AllFunctions() {
		if f == fn {
			return true
		}
	}
	return false
}

// Credentials identify the store an adapter call acts on
type Credentials struct {
	Domain      string `json:"domain"`
	AccessToken string `json:"accessToken"`
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// Product is a live catalog entry as reported by a platform.
// Inventory is nil when the platform does not track stock.
type Product struct {
	ProductID        string          `json:"productId,omitempty"`
	VariantID        string          `json:"variantId,omitempty"`
	Title            string          `json:"title"`
	Image            string          `json:"image,omitempty"`
	Price            decimal.Decimal `json:"price"`
	AvailableForSale bool            `json:"availableForSale"`
	Inventory        *int            `json:"inventory"`
}

type SearchProductsArgs struct {
	SearchEntry string `json:"searchEntry"`
	Credentials
}

type SearchProductsResult struct {
	Products []Product `json:"products"`
	Error    string    `json:"error,omitempty"`
}

type GetProductArgs struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Credentials
}

type GetProductResult struct {
	Product Product `json:"product"`
	Error   string  `json:"error,omitempty"`
}

// ---------------------------------------------------------------------------
// Purchases
// ---------------------------------------------------------------------------

// PurchaseItem is one cart line sent to a channel
type PurchaseItem struct {
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name,omitempty"`
}

type CreatePurchaseArgs struct {
	Items          []PurchaseItem  `json:"items"`
	Address        ShippingAddress `json:"address"`
	Email          string          `json:"email"`
	ShippingMethod string          `json:"shippingMethod"`
	OrderID        string          `json:"orderId"`
	OrderName      string          `json:"orderName"`
	Credentials
}

type CreatePurchaseResult struct {
	PurchaseID string `json:"purchaseId"`
	URL        string `json:"url"`
	Error      string `json:"error,omitempty"`
}

type AddCartArgs struct {
	Items   []PurchaseItem `json:"items"`
	OrderID string         `json:"orderId"`
	Credentials
}

type AddTrackingArgs struct {
	OrderID        string `json:"orderId"`
	TrackingNumber string `json:"trackingNumber"`
	TrackingURL    string `json:"trackingUrl,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
	Credentials
}

type UpdateInventoryArgs struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Delta     int    `json:"delta"`
	Credentials
}

// SuccessResult is returned by functions that only acknowledge
type SuccessResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ---------------------------------------------------------------------------
// Webhooks
// ---------------------------------------------------------------------------

type Webhook struct {
	ID       string `json:"id"`
	Topic    string `json:"topic"`
	Endpoint string `json:"endpoint"`
}

type WebhookArgs struct {
	Topic     string `json:"topic,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	WebhookID string `json:"webhookId,omitempty"`
	Credentials
}

type GetWebhooksResult struct {
	Webhooks []Webhook `json:"webhooks"`
	Error    string    `json:"error,omitempty"`
}

type CreateWebhookResult struct {
	WebhookID string `json:"webhookId"`
	Error     string `json:"error,omitempty"`
}

type DeleteWebhookResult = SuccessResult

// Gateway invokes a platform function given its reference.
// ref is an http(s) URL or a registered adapter key. out receives the decoded result.
type Gateway interface {
	Invoke(ctx context.Context, ref string, fn Function, args any, out any) error
}
