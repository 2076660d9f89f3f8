package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/dropship/backend/internal/domain/fulfillment"
)

// OrderModel is the persistence model for the Order aggregate header
type OrderModel struct {
	BaseModel
	OwnerUserID     uuid.UUID                                       `gorm:"type:uuid;not null;index"`
	ShopID          uuid.UUID                                       `gorm:"type:uuid;not null;index"`
	ExternalOrderID string                                          `gorm:"type:varchar(100);not null;index"`
	OrderName       string                                          `gorm:"type:varchar(100)"`
	Email           string                                          `gorm:"type:varchar(255)"`
	ShippingMethod  string                                          `gorm:"type:varchar(100)"`
	Shipping        datatypes.JSONType[fulfillment.ShippingAddress] `gorm:"type:jsonb"`
	Status          string                                          `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	OrderError      string                                          `gorm:"type:text"`
	LineItems       []OrderLineItemModel                            `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineItemModel is the persistence model for an order line
type OrderLineItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null;default:0"`
	ProductID string          `gorm:"type:varchar(100);not null"`
	VariantID string          `gorm:"type:varchar(100);not null;default:''"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Name      string          `gorm:"type:varchar(255)"`
	Image     string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderLineItemModel) TableName() string {
	return "order_line_items"
}

// ToDomain converts the persistence model to a domain Order without planned purchases
func (m *OrderModel) ToDomain() *fulfillment.Order {
	order := &fulfillment.Order{
		OwnedEntity:     m.ToOwnedEntity(m.OwnerUserID),
		ShopID:          m.ShopID,
		ExternalOrderID: m.ExternalOrderID,
		OrderName:       m.OrderName,
		Email:           m.Email,
		ShippingMethod:  m.ShippingMethod,
		Shipping:        m.Shipping.Data(),
		Status:          fulfillment.OrderStatus(m.Status),
		OrderError:      m.OrderError,
		LineItems:       make([]fulfillment.OrderLineItem, 0, len(m.LineItems)),
	}
	for _, li := range m.LineItems {
		order.LineItems = append(order.LineItems, fulfillment.OrderLineItem{
			ID:        li.ID,
			OrderID:   li.OrderID,
			ProductID: li.ProductID,
			VariantID: li.VariantID,
			Quantity:  li.Quantity,
			Price:     li.Price,
			Name:      li.Name,
			Image:     li.Image,
		})
	}
	return order
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *fulfillment.Order) *OrderModel {
	m := &OrderModel{
		OwnerUserID:     o.OwnerUserID,
		ShopID:          o.ShopID,
		ExternalOrderID: o.ExternalOrderID,
		OrderName:       o.OrderName,
		Email:           o.Email,
		ShippingMethod:  o.ShippingMethod,
		Shipping:        datatypes.NewJSONType(o.Shipping),
		Status:          string(o.Status),
		OrderError:      o.OrderError,
		LineItems:       make([]OrderLineItemModel, 0, len(o.LineItems)),
	}
	m.FromDomainOwnedEntity(o.OwnedEntity)
	for i, li := range o.LineItems {
		m.LineItems = append(m.LineItems, OrderLineItemModel{
			ID:        li.ID,
			OrderID:   o.ID,
			Position:  i,
			ProductID: li.ProductID,
			VariantID: li.VariantID,
			Quantity:  li.Quantity,
			Price:     li.Price,
			Name:      li.Name,
			Image:     li.Image,
		})
	}
	return m
}

// PlannedPurchaseModel is the persistence model for a planned channel purchase.
// Position keeps insertion order among rows written together.
type PlannedPurchaseModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChannelID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position   int             `gorm:"not null;default:0"`
	ProductID  string          `gorm:"type:varchar(100);not null"`
	VariantID  string          `gorm:"type:varchar(100);not null;default:''"`
	Quantity   int             `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Name       string          `gorm:"type:varchar(255)"`
	Image      string          `gorm:"type:text"`
	PurchaseID string          `gorm:"type:varchar(255);not null;default:''"`
	URL        string          `gorm:"column:url;type:text;not null;default:''"`
	Error      string          `gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PlannedPurchaseModel) TableName() string {
	return "planned_purchases"
}

// ToDomain converts the persistence model to a domain PlannedPurchase
func (m *PlannedPurchaseModel) ToDomain() fulfillment.PlannedPurchase {
	return fulfillment.PlannedPurchase{
		ID:         m.ID,
		OrderID:    m.OrderID,
		ChannelID:  m.ChannelID,
		ProductID:  m.ProductID,
		VariantID:  m.VariantID,
		Quantity:   m.Quantity,
		Price:      m.Price,
		Name:       m.Name,
		Image:      m.Image,
		PurchaseID: m.PurchaseID,
		URL:        m.URL,
		Error:      m.Error,
	}
}

// PlannedPurchaseModelFromDomain creates a persistence model from a domain PlannedPurchase
func PlannedPurchaseModelFromDomain(p fulfillment.PlannedPurchase, position int) *PlannedPurchaseModel {
	return &PlannedPurchaseModel{
		ID:         p.ID,
		OrderID:    p.OrderID,
		ChannelID:  p.ChannelID,
		Position:   position,
		ProductID:  p.ProductID,
		VariantID:  p.VariantID,
		Quantity:   p.Quantity,
		Price:      p.Price,
		Name:       p.Name,
		Image:      p.Image,
		PurchaseID: p.PurchaseID,
		URL:        p.URL,
		Error:      p.Error,
	}
}
