package handler

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	"github.com/dropship/backend/internal/domain/fulfillment"
)

// SourceItemSpecRequest identifies a shop product at a quantity
type SourceItemSpecRequest struct {
	ShopID    uuid.UUID `json:"shop_id" binding:"required"`
	ProductID string    `json:"product_id" binding:"required,max=100"`
	VariantID string    `json:"variant_id" binding:"max=100"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

func (r SourceItemSpecRequest) toSpec() fulfillment.SourceItemSpec {
	return fulfillment.SourceItemSpec{
		ItemKey: fulfillment.ItemKey{ProductID: r.ProductID, VariantID: r.VariantID, Quantity: r.Quantity},
		ShopID:  r.ShopID,
	}
}

// ChannelItemSpecRequest identifies a channel product at a quantity and price
type ChannelItemSpecRequest struct {
	ChannelID uuid.UUID       `json:"channel_id" binding:"required"`
	ProductID string          `json:"product_id" binding:"required,max=100"`
	VariantID string          `json:"variant_id" binding:"max=100"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name" binding:"max=255"`
	Image     string          `json:"image"`
}

func (r ChannelItemSpecRequest) toSpec() fulfillment.ChannelItemSpec {
	return fulfillment.ChannelItemSpec{
		ItemKey:   fulfillment.ItemKey{ProductID: r.ProductID, VariantID: r.VariantID, Quantity: r.Quantity},
		ChannelID: r.ChannelID,
		Price:     r.Price,
		Name:      r.Name,
		Image:     r.Image,
	}
}

// MatchRequest is the body of the create, overwrite and upsert match endpoints
type MatchRequest struct {
	Inputs  []SourceItemSpecRequest  `json:"inputs" binding:"required,min=1,dive"`
	Outputs []ChannelItemSpecRequest `json:"outputs" binding:"required,min=1,dive"`
}

func (r MatchRequest) toInput() fulfillmentapp.MatchInput {
	in := fulfillmentapp.MatchInput{
		Inputs:  make([]fulfillment.SourceItemSpec, len(r.Inputs)),
		Outputs: make([]fulfillment.ChannelItemSpec, len(r.Outputs)),
	}
	for i, s := range r.Inputs {
		in.Inputs[i] = s.toSpec()
	}
	for i, s := range r.Outputs {
		in.Outputs[i] = s.toSpec()
	}
	return in
}

// IDListRequest carries the ids of a batch operation
type IDListRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=100,unique"`
}

// CatalogItemResponse is the id of an ensured catalog item
type CatalogItemResponse struct {
	ID uuid.UUID `json:"id"`
}

// PriceDeltaResponse is the live minus stored price of a match's outputs
type PriceDeltaResponse struct {
	MatchID    uuid.UUID       `json:"match_id"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// CreatePlatformRequest registers a platform configuration
type CreatePlatformRequest struct {
	Name      string                        `json:"name" binding:"required,max=100"`
	Kind      string                        `json:"kind" binding:"required,oneof=shop channel"`
	Functions fulfillment.PlatformFunctions `json:"functions"`
}

// CreateStoreRequest registers a shop or channel
type CreateStoreRequest struct {
	Name        string    `json:"name" binding:"required,max=100"`
	Domain      string    `json:"domain" binding:"max=255"`
	AccessToken string    `json:"access_token"`
	PlatformID  uuid.UUID `json:"platform_id" binding:"required"`
}

func (r CreateStoreRequest) toInput() fulfillmentapp.CreateStoreInput {
	return fulfillmentapp.CreateStoreInput{
		Name:        r.Name,
		Domain:      r.Domain,
		AccessToken: r.AccessToken,
		PlatformID:  r.PlatformID,
	}
}

// CreateWebhookRequest subscribes an endpoint to a platform topic
type CreateWebhookRequest struct {
	Topic    string `json:"topic" binding:"required"`
	Endpoint string `json:"endpoint" binding:"required,url"`
}

// WebhookResponse is the id of a created webhook
type WebhookResponse struct {
	ID string `json:"id"`
}

// LineItemRequest is one line of an incoming shop order
type LineItemRequest struct {
	ProductID string          `json:"product_id" binding:"required,max=100"`
	VariantID string          `json:"variant_id" binding:"max=100"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name" binding:"max=255"`
	Image     string          `json:"image"`
}

// CreateOrderRequest records a shop order
type CreateOrderRequest struct {
	ShopID          uuid.UUID                   `json:"shop_id" binding:"required"`
	ExternalOrderID string                      `json:"external_order_id" binding:"required,max=100"`
	OrderName       string                      `json:"order_name" binding:"max=100"`
	Email           string                      `json:"email" binding:"omitempty,email"`
	ShippingMethod  string                      `json:"shipping_method" binding:"max=100"`
	Shipping        fulfillment.ShippingAddress `json:"shipping"`
	LineItems       []LineItemRequest           `json:"line_items" binding:"required,min=1,dive"`
}

func (r CreateOrderRequest) toInput() fulfillmentapp.CreateOrderInput {
	in := fulfillmentapp.CreateOrderInput{
		ShopID:          r.ShopID,
		ExternalOrderID: r.ExternalOrderID,
		OrderName:       r.OrderName,
		Email:           r.Email,
		ShippingMethod:  r.ShippingMethod,
		Shipping:        r.Shipping,
		LineItems:       make([]fulfillmentapp.LineItemInput, len(r.LineItems)),
	}
	for i, li := range r.LineItems {
		in.LineItems[i] = fulfillmentapp.LineItemInput{
			ProductID: li.ProductID,
			VariantID: li.VariantID,
			Quantity:  li.Quantity,
			Price:     li.Price,
			Name:      li.Name,
			Image:     li.Image,
		}
	}
	return in
}

// AddTrackingRequest carries tracking details for the shop order
type AddTrackingRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
	TrackingURL    string `json:"tracking_url" binding:"omitempty,url"`
	Carrier        string `json:"carrier"`
}
