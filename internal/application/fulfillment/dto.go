package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/fulfillment"
)

// ---------------------------------------------------------------------------
// Match DTOs
// ---------------------------------------------------------------------------

// MatchInput is the explicit input/output item specs of a Match
type MatchInput struct {
	Inputs  []fulfillment.SourceItemSpec
	Outputs []fulfillment.ChannelItemSpec
}

// MatchResponse represents a match in API responses
type MatchResponse struct {
	ID        uuid.UUID             `json:"id"`
	Inputs    []SourceItemResponse  `json:"inputs"`
	Outputs   []ChannelItemResponse `json:"outputs"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// SourceItemResponse represents a source item in API responses
type SourceItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ShopID    uuid.UUID `json:"shop_id"`
	ProductID string    `json:"product_id"`
	VariantID string    `json:"variant_id"`
	Quantity  int       `json:"quantity"`
}

// ChannelItemResponse represents a channel item in API responses
type ChannelItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ChannelID uuid.UUID       `json:"channel_id"`
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name,omitempty"`
	Image     string          `json:"image,omitempty"`
}

// ToMatchResponse converts a domain Match
func ToMatchResponse(m *fulfillment.Match) MatchResponse {
	resp := MatchResponse{
		ID:        m.ID,
		Inputs:    make([]SourceItemResponse, len(m.Inputs)),
		Outputs:   make([]ChannelItemResponse, len(m.Outputs)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for i, in := range m.Inputs {
		resp.Inputs[i] = SourceItemResponse{
			ID:        in.ID,
			ShopID:    in.ShopID,
			ProductID: in.ProductID,
			VariantID: in.VariantID,
			Quantity:  in.Quantity,
		}
	}
	for i, out := range m.Outputs {
		resp.Outputs[i] = ChannelItemResponse{
			ID:        out.ID,
			ChannelID: out.ChannelID,
			ProductID: out.ProductID,
			VariantID: out.VariantID,
			Quantity:  out.Quantity,
			Price:     out.Price,
			Name:      out.Name,
			Image:     out.Image,
		}
	}
	return resp
}

// ResolveResult reports how an order's line items were bound to matches
type ResolveResult struct {
	OrderID          uuid.UUID               `json:"order_id"`
	FullMatch        bool                    `json:"full_match"`
	MatchIDs         []uuid.UUID             `json:"match_ids"`
	ResolvedLines    int                     `json:"resolved_lines"`
	TotalLines       int                     `json:"total_lines"`
	PlannedPurchases int                     `json:"planned_purchases"`
	OrderError       string                  `json:"order_error,omitempty"`
	Status           fulfillment.OrderStatus `json:"status"`
}

// ---------------------------------------------------------------------------
// Reconciliation DTOs
// ---------------------------------------------------------------------------

// InventorySyncFailure describes one inventory update that did not apply
type InventorySyncFailure struct {
	MatchID   uuid.UUID `json:"match_id"`
	ProductID string    `json:"product_id"`
	VariantID string    `json:"variant_id"`
	Message   string    `json:"message"`
}

// InventorySyncResult summarizes a SyncInventory run
type InventorySyncResult struct {
	Total     int                    `json:"total"`
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
	Failures  []InventorySyncFailure `json:"failures,omitempty"`
}

// ---------------------------------------------------------------------------
// Dispatch DTOs
// ---------------------------------------------------------------------------

// ChannelDispatchResult is the outcome of one createPurchase call
type ChannelDispatchResult struct {
	ChannelID  uuid.UUID `json:"channel_id"`
	Items      int       `json:"items"`
	PurchaseID string    `json:"purchase_id,omitempty"`
	URL        string    `json:"url,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// OrderDispatchResult is the outcome of dispatching one order
type OrderDispatchResult struct {
	OrderID    uuid.UUID               `json:"order_id"`
	Status     fulfillment.OrderStatus `json:"status"`
	Skipped    bool                    `json:"skipped"`
	SkipReason string                  `json:"skip_reason,omitempty"`
	Remaining  int64                   `json:"remaining"`
	Channels   []ChannelDispatchResult `json:"channels"`
}

// ---------------------------------------------------------------------------
// Platform DTOs
// ---------------------------------------------------------------------------

// CreatePlatformInput contains input for registering a platform
type CreatePlatformInput struct {
	Name      string
	Kind      fulfillment.PlatformKind
	Functions fulfillment.PlatformFunctions
}

// PlatformResponse represents a platform in API responses
type PlatformResponse struct {
	ID        uuid.UUID                     `json:"id"`
	Name      string                        `json:"name"`
	Kind      fulfillment.PlatformKind      `json:"kind"`
	Functions fulfillment.PlatformFunctions `json:"functions"`
	CreatedAt time.Time                     `json:"created_at"`
}

// ToPlatformResponse converts a domain Platform
func ToPlatformResponse(p *fulfillment.Platform) PlatformResponse {
	return PlatformResponse{
		ID:        p.ID,
		Name:      p.Name,
		Kind:      p.Kind,
		Functions: p.Functions,
		CreatedAt: p.CreatedAt,
	}
}

// CreateStoreInput contains input for registering a shop or channel
type CreateStoreInput struct {
	Name        string
	Domain      string
	AccessToken string
	PlatformID  uuid.UUID
}

// StoreResponse represents a shop or channel in API responses.
// The access token is never returned.
type StoreResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Domain     string    `json:"domain"`
	PlatformID uuid.UUID `json:"platform_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToStoreResponse converts a domain Store
func ToStoreResponse(s *fulfillment.Store) StoreResponse {
	return StoreResponse{
		ID:         s.ID,
		Name:       s.Name,
		Domain:     s.Domain,
		PlatformID: s.PlatformID,
		CreatedAt:  s.CreatedAt,
	}
}

// StoreRef points at a shop or a channel
type StoreRef struct {
	Kind fulfillment.PlatformKind
	ID   uuid.UUID
}

// ---------------------------------------------------------------------------
// Order DTOs
// ---------------------------------------------------------------------------

// LineItemInput is one line of an incoming shop order
type LineItemInput struct {
	ProductID string
	VariantID string
	Quantity  int
	Price     decimal.Decimal
	Name      string
	Image     string
}

// CreateOrderInput contains input for recording a shop order
type CreateOrderInput struct {
	ShopID          uuid.UUID
	ExternalOrderID string
	OrderName       string
	Email           string
	ShippingMethod  string
	Shipping        fulfillment.ShippingAddress
	LineItems       []LineItemInput
}

// AddTrackingInput contains tracking details to push to the shop
type AddTrackingInput struct {
	TrackingNumber string
	TrackingURL    string
	Carrier        string
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID                   `json:"id"`
	ShopID           uuid.UUID                   `json:"shop_id"`
	ExternalOrderID  string                      `json:"external_order_id"`
	OrderName        string                      `json:"order_name"`
	Email            string                      `json:"email,omitempty"`
	ShippingMethod   string                      `json:"shipping_method,omitempty"`
	Shipping         fulfillment.ShippingAddress `json:"shipping"`
	Status           fulfillment.OrderStatus     `json:"status"`
	OrderError       string                      `json:"order_error,omitempty"`
	LineItems        []LineItemResponse          `json:"line_items"`
	PlannedPurchases []PlannedPurchaseResponse   `json:"planned_purchases"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// LineItemResponse represents an order line item in API responses
type LineItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name,omitempty"`
}

// PlannedPurchaseResponse represents a planned purchase in API responses
type PlannedPurchaseResponse struct {
	ID         uuid.UUID       `json:"id"`
	ChannelID  uuid.UUID       `json:"channel_id"`
	ProductID  string          `json:"product_id"`
	VariantID  string          `json:"variant_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	PurchaseID string          `json:"purchase_id,omitempty"`
	URL        string          `json:"url,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ToOrderResponse converts a domain Order with its planned purchases
func ToOrderResponse(o *fulfillment.Order) OrderResponse {
	resp := OrderResponse{
		ID:               o.ID,
		ShopID:           o.ShopID,
		ExternalOrderID:  o.ExternalOrderID,
		OrderName:        o.OrderName,
		Email:            o.Email,
		ShippingMethod:   o.ShippingMethod,
		Shipping:         o.Shipping,
		Status:           o.Status,
		OrderError:       o.OrderError,
		LineItems:        make([]LineItemResponse, len(o.LineItems)),
		PlannedPurchases: make([]PlannedPurchaseResponse, len(o.PlannedPurchases)),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	for i, li := range o.LineItems {
		resp.LineItems[i] = LineItemResponse{
			ID:        li.ID,
			ProductID: li.ProductID,
			VariantID: li.VariantID,
			Quantity:  li.Quantity,
			Price:     li.Price,
			Name:      li.Name,
		}
	}
	for i, pp := range o.PlannedPurchases {
		resp.PlannedPurchases[i] = PlannedPurchaseResponse{
			ID:         pp.ID,
			ChannelID:  pp.ChannelID,
			ProductID:  pp.ProductID,
			VariantID:  pp.VariantID,
			Quantity:   pp.Quantity,
			Price:      pp.Price,
			PurchaseID: pp.PurchaseID,
			URL:        pp.URL,
			Error:      pp.Error,
		}
	}
	return resp
}
