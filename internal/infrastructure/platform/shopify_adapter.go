package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/fulfillment"
)

// ShopifyAdapter talks to the Shopify Admin REST API.
// One instance serves every store; domain and access token come with each call.
type ShopifyAdapter struct {
	config     *ShopifyConfig
	httpClient *http.Client
}

var _ Adapter = (*ShopifyAdapter)(nil)

// NewShopifyAdapter creates a Shopify adapter with the given configuration
func NewShopifyAdapter(config *ShopifyConfig) (*ShopifyAdapter, error) {
	if config == nil {
		config = NewShopifyConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ShopifyAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type shopifyVariant struct {
	ID                  int64   `json:"id"`
	Title               string  `json:"title"`
	Price               string  `json:"price"`
	InventoryQuantity   int     `json:"inventory_quantity"`
	InventoryManagement *string `json:"inventory_management"`
	InventoryItemID     int64   `json:"inventory_item_id"`
}

type shopifyImage struct {
	Src string `json:"src"`
}

type shopifyProduct struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Status   string           `json:"status"`
	Image    *shopifyImage    `json:"image"`
	Variants []shopifyVariant `json:"variants"`
}

// toProduct flattens one variant of p into the adapter contract
func (p *shopifyProduct) toProduct(fn fulfillment.Function, v shopifyVariant) (fulfillment.Product, error) {
	price, err := decimal.NewFromString(v.Price)
	if err != nil {
		return fulfillment.Product{}, fulfillment.NewAdapterError(fn, "variant %d has invalid price %q", v.ID, v.Price)
	}

	title := p.Title
	if v.Title != "" && v.Title != "Default Title" {
		title = p.Title + " - " + v.Title
	}

	product := fulfillment.Product{
		ProductID:        strconv.FormatInt(p.ID, 10),
		VariantID:        strconv.FormatInt(v.ID, 10),
		Title:            title,
		Price:            price,
		AvailableForSale: p.Status == "" || p.Status == "active",
	}
	if p.Image != nil {
		product.Image = p.Image.Src
	}
	// Shopify reports untracked stock with an empty inventory_management
	if v.InventoryManagement != nil && *v.InventoryManagement != "" {
		qty := v.InventoryQuantity
		product.Inventory = &qty
		product.AvailableForSale = product.AvailableForSale && qty > 0
	}
	return product, nil
}

// SearchProducts lists the variants of active products whose title matches the entry
func (a *ShopifyAdapter) SearchProducts(ctx context.Context, args fulfillment.SearchProductsArgs) (*fulfillment.SearchProductsResult, error) {
	fn := fulfillment.FunctionSearchProducts
	query := url.Values{}
	query.Set("title", args.SearchEntry)
	query.Set("status", "active")
	query.Set("limit", "50")

	var resp struct {
		Products []shopifyProduct `json:"products"`
	}
	if err := a.doRequest(ctx, fn, args.Credentials, http.MethodGet, "/products.json", query, nil, &resp); err != nil {
		return nil, err
	}

	result := &fulfillment.SearchProductsResult{Products: make([]fulfillment.Product, 0, len(resp.Products))}
	for i := range resp.Products {
		p := &resp.Products[i]
		for _, v := range p.Variants {
			product, err := p.toProduct(fn, v)
			if err != nil {
				return nil, err
			}
			result.Products = append(result.Products, product)
		}
	}
	return result, nil
}

// GetProduct fetches one product; the variant defaults to the first one
func (a *ShopifyAdapter) GetProduct(ctx context.Context, args fulfillment.GetProductArgs) (*fulfillment.GetProductResult, error) {
	fn := fulfillment.FunctionGetProduct
	if err := validateNumericID(fn, args.ProductID); err != nil {
		return nil, err
	}

	var resp struct {
		Product *shopifyProduct `json:"product"`
	}
	if err := a.doRequest(ctx, fn, args.Credentials, http.MethodGet, "/products/"+args.ProductID+".json", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Product == nil || len(resp.Product.Variants) == 0 {
		return nil, fulfillment.NewAdapterError(fn, "product %s not found", args.ProductID)
	}

	variant := resp.Product.Variants[0]
	if args.VariantID != "" {
		found := false
		for _, v := range resp.Product.Variants {
			if strconv.FormatInt(v.ID, 10) == args.VariantID {
				variant, found = v, true
				break
			}
		}
		if !found {
			return nil, fulfillment.NewAdapterError(fn, "variant %s not found on product %s", args.VariantID, args.ProductID)
		}
	}

	product, err := resp.Product.toProduct(fn, variant)
	if err != nil {
		return nil, err
	}
	return &fulfillment.GetProductResult{Product: product}, nil
}

// ---------------------------------------------------------------------------
// Purchases
// ---------------------------------------------------------------------------

type shopifyLineItem struct {
	VariantID int64  `json:"variant_id,omitempty"`
	Title     string `json:"title,omitempty"`
	Price     string `json:"price,omitempty"`
	Quantity  int    `json:"quantity"`
}

type shopifyAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Province  string `json:"province,omitempty"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
}

func toShopifyAddress(addr fulfillment.ShippingAddress) shopifyAddress {
	return shopifyAddress{
		FirstName: addr.FirstName,
		LastName:  addr.LastName,
		Company:   addr.Company,
		Address1:  addr.Address1,
		Address2:  addr.Address2,
		City:      addr.City,
		Province:  addr.Province,
		Zip:       addr.Zip,
		Country:   addr.Country,
		Phone:     addr.Phone,
	}
}

// toShopifyLineItems uses variant ids where they are numeric and custom lines otherwise
func toShopifyLineItems(items []fulfillment.PurchaseItem) []shopifyLineItem {
	lines := make([]shopifyLineItem, 0, len(items))
	for _, item := range items {
		if id, err := strconv.ParseInt(item.VariantID, 10, 64); err == nil {
			lines = append(lines, shopifyLineItem{VariantID: id, Quantity: item.Quantity})
			continue
		}
		title := item.Name
		if title == "" {
			title = item.ProductID
		}
		lines = append(lines, shopifyLineItem{
			Title:    title,
			Price:    item.Price.StringFixed(2),
			Quantity: item.Quantity,
		})
	}
	return lines
}

// CreatePurchase opens a draft order on the channel store and returns its invoice
func (a *ShopifyAdapter) CreatePurchase(ctx context.Context, args fulfillment.CreatePurchaseArgs) (*fulfillment.CreatePurchaseResult, error) {
	fn := fulfillment.FunctionCreatePurchase
	if len(args.Items) == 0 {
		return nil, fulfillment.NewAdapterError(fn, "no items to purchase")
	}

	draft := map[string]any{
		"line_items":       toShopifyLineItems(args.Items),
		"shipping_address": toShopifyAddress(args.Address),
		"email":            args.Email,
		"note":             fmt.Sprintf("Dropship order %s (%s)", args.OrderName, args.OrderID),
		"tags":             "dropship",
	}
	if args.ShippingMethod != "" {
		draft["shipping_line"] = map[string]any{"title": args.ShippingMethod, "custom": true, "price": "0.00"}
	}

	var resp struct {
		DraftOrder struct {
			ID         int64  `json:"id"`
			InvoiceURL string `json:"invoice_url"`
		} `json:"draft_order"`
	}
	body := map[string]any{"draft_order": draft}
	if err := a.doRequest(ctx, fn, args.Credentials, http.MethodPost, "/draft_orders.json", nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.DraftOrder.ID == 0 {
		return nil, fulfillment.NewAdapterError(fn, "draft order was not created")
	}
	return &fulfillment.CreatePurchaseResult{
		PurchaseID: strconv.FormatInt(resp.DraftOrder.ID, 10),
		URL:        resp.DraftOrder.InvoiceURL,
	}, nil
}

// AddCartToPlatformOrder records the dispatched items on the shop order
func (a *ShopifyAdapter) AddCartToPlatformOrder(ctx context.Context, args fulfillment.AddCartArgs) (*fulfillment.SuccessResult, error) {
	fn := fulfillment.FunctionAddCartToPlatformOrder
	if err := validateNumericID(fn, args.OrderID); err != nil {
		return nil, err
	}

	attributes := make([]map[string]string, 0, len(args.Items))
	for i, item := range args.Items {
		attributes = append(attributes, map[string]string{
			"name":  fmt.Sprintf("dropship_item_%d", i+1),
			"value": fmt.Sprintf("%s/%s x%d @ %s", item.ProductID, item.VariantID, item.Quantity, item.Price.String()),
		})
	}
	body := map[string]any{
		"order": map[string]any{
			"id":              args.OrderID,
			"tags":            "dropship-dispatched",
			"note_attributes": attributes,
		},
	}
	if err := a.doRequest(ctx, fn, args.Credentials, http.MethodPut, "/orders/"+args.OrderID+".json", nil, body, nil); err != nil {
		return nil, err
	}
	return &fulfillment.SuccessResult{Success: true}, nil
}

// AddTracking fulfills the open fulfillment orders of a shop order with tracking info
func (a *ShopifyAdapter) AddTracking(ctx context.Context, args fulfillment.AddTrackingArgs) (*fulfillment.SuccessResult, error) {
	fn := fulfillment.FunctionAddTracking
	if err := validateNumericID(fn, args.OrderID); err != nil {
		return nil, err
	}

	var orders struct {
		FulfillmentOrders []struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"fulfillment_orders"`
	}
	path := "/orders/" + args.OrderID + "/fulfillment_orders.json"
	if err := a.doRequest(ctx, fn, args.Credentials, http.MethodGet, path, nil, nil, &orders); err != nil {
		return nil, err
	}

	var open []map[string]int64
	for _, fo := range orders.FulfillmentOrders {
		if fo.Status == "open" || fo.Status == "in_progress" {
			open = append(open, map[string]int64{"fulfillment_order_id": fo.ID})
		}
	}
	if len(open) == 0 {
		return nil, fulfillment.NewAdapterError(fn, "order %s has nothing left to fulfill", args.OrderID)
	}

	body := map[string]any{
		"fulfillment": map[string]any{
			"line_items_by_fulfillment_order": open,
			"notify_customer":                 true,
			"tracking_info": map[string]string{
				"number":  args.TrackingNumber,
				"url":     args.TrackingURL,
				"company": args.Carrier,
			},
		},
	}
	if err := a.doRequest(ctx, fn, args.Credentials, http.MethodPost, "/fulfillments.json", nil, body, nil); err != nil {
		return nil, err
	}
	return &fulfillment.SuccessResult{Success: true}, nil
}

// ---------------------------------------------------------------------------
// Inventory
// ---------------------------------------------------------------------------

// UpdateInventory adjusts the available quantity of a variant by Delta
func (a *ShopifyAdapter) UpdateInventory(ctx context.Context, args fulfillment.UpdateInventoryArgs) (*fulfillment.SuccessResult, error) {
	fn := fulfillment.FunctionUpdateInventory
	if err := validateNumericID(fn, args.VariantID); err != nil {
		return nil, err
	}

	var variant struct {
		Variant shopifyVariant `json:"variant"`
	}
	if err := a.doRequest(ctx, fn, args.Credentials, http.MethodGet, "/variants/"+args.VariantID+".json", nil, nil, &variant); err != nil {
		return nil, err
	}
	if variant.Variant.InventoryItemID == 0 {
		return nil, fulfillment.NewAdapterError(fn, "variant %s has no inventory item", args.VariantID)
	}

	locationID, err := a.locationID(ctx, fn, args.Credentials)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"location_id":          locationID,
		"inventory_item_id":    variant.Variant.InventoryItemID,
		"available_adjustment": args.Delta,
	}
	if err := a.doRequest(ctx, fn, args.Credentials, http.MethodPost, "/inventory_levels/adjust.json", nil, body, nil); err != nil {
		return nil, err
	}
	return &fulfillment.SuccessResult{Success: true}, nil
}

// locationID returns the configured location or the first active one of the store
func (a *ShopifyAdapter) locationID(ctx context.Context, fn fulfillment.Function, creds fulfillment.Credentials) (int64, error) {
	if a.config.LocationID != 0 {
		return a.config.LocationID, nil
	}
	var resp struct {
		Locations []struct {
			ID     int64 `json:"id"`
			Active bool  `json:"active"`
		} `json:"locations"`
	}
	if err := a.doRequest(ctx, fn, creds, http.MethodGet, "/locations.json", nil, nil, &resp); err != nil {
		return 0, err
	}
	for _, loc := range resp.Locations {
		if loc.Active {
			return loc.ID, nil
		}
	}
	return 0, fulfillment.NewAdapterError(fn, "store has no active location")
}

// ---------------------------------------------------------------------------
// Webhooks
// ---------------------------------------------------------------------------

type shopifyWebhook struct {
	ID      int64  `json:"id"`
	Topic   string `json:"topic"`
	Address string `json:"address"`
}

// GetWebhooks lists the webhook subscriptions of the store
func (a *ShopifyAdapter) GetWebhooks(ctx context.Context, args fulfillment.WebhookArgs) (*fulfillment.GetWebhooksResult, error) {
	fn := fulfillment.FunctionGetWebhooks
	var query url.Values
	if args.Topic != "" {
		query = url.Values{"topic": []string{args.Topic}}
	}

	var resp struct {
		Webhooks []shopifyWebhook `json:"webhooks"`
	}
	if err := a.doRequest(ctx, fn, args.Credentials, http.MethodGet, "/webhooks.json", query, nil, &resp); err != nil {
		return nil, err
	}

	result := &fulfillment.GetWebhooksResult{Webhooks: make([]fulfillment.Webhook, 0, len(resp.Webhooks))}
	for _, w := range resp.Webhooks {
		result.Webhooks = append(result.Webhooks, fulfillment.Webhook{
			ID:       strconv.FormatInt(w.ID, 10),
			Topic:    w.Topic,
			Endpoint: w.Address,
		})
	}
	return result, nil
}

// CreateWebhook subscribes endpoint to topic
func (a *ShopifyAdapter) CreateWebhook(ctx context.Context, args fulfillment.WebhookArgs) (*fulfillment.CreateWebhookResult, error) {
	fn := fulfillment.FunctionCreateWebhook
	if args.Topic == "" || args.Endpoint == "" {
		return nil, fulfillment.NewAdapterError(fn, "topic and endpoint are required")
	}

	body := map[string]any{
		"webhook": map[string]string{
			"topic":   args.Topic,
			"address": args.Endpoint,
			"format":  "json",
		},
	}
	var resp struct {
		Webhook shopifyWebhook `json:"webhook"`
	}
	if err := a.doRequest(ctx, fn, args.Credentials, http.MethodPost, "/webhooks.json", nil, body, &resp); err != nil {
		return nil, err
	}
	return &fulfillment.CreateWebhookResult{WebhookID: strconv.FormatInt(resp.Webhook.ID, 10)}, nil
}

// DeleteWebhook removes a webhook subscription
func (a *ShopifyAdapter) DeleteWebhook(ctx context.Context, args fulfillment.WebhookArgs) (*fulfillment.DeleteWebhookResult, error) {
	fn := fulfillment.FunctionDeleteWebhook
	if err := validateNumericID(fn, args.WebhookID); err != nil {
		return nil, err
	}
	if err := a.doRequest(ctx, fn, args.Credentials, http.MethodDelete, "/webhooks/"+args.WebhookID+".json", nil, nil, nil); err != nil {
		return nil, err
	}
	return &fulfillment.DeleteWebhookResult{Success: true}, nil
}

// ---------------------------------------------------------------------------
// HTTP
// ---------------------------------------------------------------------------

// validateNumericID rejects ids that would alter the request path
func validateNumericID(fn fulfillment.Function, id string) error {
	if id == "" {
		return fulfillment.NewAdapterError(fn, "id is required")
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return fulfillment.NewAdapterError(fn, "invalid id %q", id)
	}
	return nil
}

// doRequest performs an Admin API request and decodes the JSON response into out
func (a *ShopifyAdapter) doRequest(
	ctx context.Context,
	fn fulfillment.Function,
	creds fulfillment.Credentials,
	method, path string,
	query url.Values,
	payload any,
	out any,
) error {
	if creds.Domain == "" && a.config.BaseURL == "" {
		return fulfillment.NewAdapterError(fn, "store domain is required")
	}

	endpoint := a.config.storeURL(creds.Domain) + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("shopify: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", creds.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fulfillment.NewAdapterError(fn, "shopify unavailable: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxResponseSize))
	if err != nil {
		return fmt.Errorf("shopify: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if msg := shopifyErrorMessage(body); msg != "" {
			return fulfillment.NewAdapterError(fn, "%s", msg)
		}
		return fulfillment.NewAdapterError(fn, "shopify: HTTP %d", resp.StatusCode)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fulfillment.NewAdapterError(fn, "shopify: failed to parse response: %v", err)
	}
	return nil
}

// shopifyErrorMessage flattens the "errors" field, which is a string or a field map
func shopifyErrorMessage(body []byte) string {
	var payload struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Errors) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Errors, &text); err == nil {
		return text
	}

	var fields map[string][]string
	if err := json.Unmarshal(payload.Errors, &fields); err == nil {
		parts := make([]string, 0, len(fields))
		for field, msgs := range fields {
			parts = append(parts, field+" "+strings.Join(msgs, ", "))
		}
		sort.Strings(parts)
		return strings.Join(parts, "; ")
	}
	return string(payload.Errors)
}
