package fulfillment

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/shared"
)

// OrderStatus is the fulfillment status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusAwaiting  OrderStatus = "AWAITING"
	OrderStatusComplete  OrderStatus = "COMPLETE"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is known
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAwaiting, OrderStatusComplete, OrderStatusCancelled:
		return true
	}
	return false
}

// ShippingAddress is the buyer's delivery address
type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Province  string `json:"province,omitempty"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
}

// OrderLineItem is a line of the shop order that must be fulfilled
type OrderLineItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID string
	VariantID string
	Quantity  int
	Price     decimal.Decimal
	Name      string
	Image     string
}

// Key returns the natural key used for matching
func (li OrderLineItem) Key() ItemKey {
	return ItemKey{ProductID: li.ProductID, VariantID: li.VariantID, Quantity: li.Quantity}
}

// Order is a shop order awaiting fulfillment through channel purchases
type Order struct {
	shared.OwnedEntity
	ShopID           uuid.UUID
	ExternalOrderID  string
	OrderName        string
	Email            string
	ShippingMethod   string
	Shipping         ShippingAddress
	Status           OrderStatus
	OrderError       string
	LineItems        []OrderLineItem
	PlannedPurchases []PlannedPurchase
}

// NewOrder creates a PENDING order
func NewOrder(userID, shopID uuid.UUID, externalOrderID, orderName string) (*Order, error) {
	if shopID == uuid.Nil {
		return nil, fmt.Errorf("%w: shop id is required", shared.ErrInvalidInput)
	}
	return &Order{
		OwnedEntity:     shared.NewOwnedEntity(userID),
		ShopID:          shopID,
		ExternalOrderID: externalOrderID,
		OrderName:       orderName,
		Status:          OrderStatusPending,
	}, nil
}

// AddLineItem appends a line item
func (o *Order) AddLineItem(productID, variantID string, quantity int, price decimal.Decimal, name, image string) error {
	key := ItemKey{ProductID: productID, VariantID: variantID, Quantity: quantity}
	if err := key.Validate(); err != nil {
		return err
	}
	o.LineItems = append(o.LineItems, OrderLineItem{
		ID:        uuid.New(),
		OrderID:   o.ID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
		Price:     price,
		Name:      name,
		Image:     image,
	})
	return nil
}

// LineKeys returns the matching keys of all line items
func (o *Order) LineKeys() []ItemKey {
	keys := make([]ItemKey, len(o.LineItems))
	for i, li := range o.LineItems {
		keys[i] = li.Key()
	}
	return keys
}

// CheckResolvable rejects matching for orders in a terminal state
func (o *Order) CheckResolvable() error {
	if o.Status == OrderStatusCancelled || o.Status == OrderStatusComplete {
		return fmt.Errorf("%w: %s order cannot be resolved", shared.ErrInvalidState, o.Status)
	}
	return nil
}

// MarkUnmatched records that no line item could be matched
func (o *Order) MarkUnmatched() {
	o.OrderError = OrderErrorNoMatches
	o.Touch()
}

// MarkPartiallyMatched records that only some line items were matched
func (o *Order) MarkPartiallyMatched() {
	o.OrderError = OrderErrorPartialMatches
	o.Status = OrderStatusPending
	o.Touch()
}

// MarkMatched clears the matching diagnostic
func (o *Order) MarkMatched() {
	o.OrderError = ""
	o.Touch()
}

// SettleDispatch moves the order to AWAITING when nothing is left to dispatch, PENDING otherwise
func (o *Order) SettleDispatch(remaining int64) {
	if remaining == 0 {
		o.Status = OrderStatusAwaiting
	} else {
		o.Status = OrderStatusPending
	}
	o.Touch()
}

// Complete marks the order as fulfilled once tracking is attached
func (o *Order) Complete() error {
	if o.Status == OrderStatusCancelled {
		return fmt.Errorf("%w: cancelled order cannot be completed", shared.ErrInvalidState)
	}
	o.Status = OrderStatusComplete
	o.Touch()
	return nil
}

// Cancel moves the order to the terminal CANCELLED state
func (o *Order) Cancel() error {
	if o.Status == OrderStatusComplete {
		return fmt.Errorf("%w: completed order cannot be cancelled", shared.ErrInvalidState)
	}
	o.Status = OrderStatusCancelled
	o.Touch()
	return nil
}

// PlannedPurchase is a channel-side cart line derived from an order line.
// PurchaseID and URL stay empty until a successful dispatch.
type PlannedPurchase struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ChannelID  uuid.UUID
	ProductID  string
	VariantID  string
	Quantity   int
	Price      decimal.Decimal
	Name       string
	Image      string
	PurchaseID string
	URL        string
	Error      string
}

// PlannedPurchaseFromChannelItem plans buying item for orderID
func PlannedPurchaseFromChannelItem(orderID uuid.UUID, item ChannelItem) PlannedPurchase {
	return PlannedPurchase{
		ID:        uuid.New(),
		OrderID:   orderID,
		ChannelID: item.ChannelID,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		Price:     item.Price,
		Name:      item.Name,
		Image:     item.Image,
	}
}

// IsDispatched reports whether a purchase was placed for this line
func (p *PlannedPurchase) IsDispatched() bool {
	return p.PurchaseID != "" || p.URL != ""
}

// MarkPurchased records a successful purchase and clears any previous error
func (p *PlannedPurchase) MarkPurchased(purchaseID, url string) {
	p.PurchaseID = purchaseID
	p.URL = url
	p.Error = ""
}

// MarkFailed records the failure message; the line stays retry-eligible
func (p *PlannedPurchase) MarkFailed(message string) {
	p.Error = message
}
