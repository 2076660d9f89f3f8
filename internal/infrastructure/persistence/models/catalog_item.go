package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/fulfillment"
)

// SourceItemModel is the persistence model for the SourceItem domain entity.
// The natural key is unique per owner.
type SourceItemModel struct {
	BaseModel
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_source_items_key,priority:1"`
	ShopID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_source_items_key,priority:2"`
	ProductID   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_source_items_key,priority:3"`
	VariantID   string    `gorm:"type:varchar(100);not null;default:'';uniqueIndex:idx_source_items_key,priority:4"`
	Quantity    int       `gorm:"not null;uniqueIndex:idx_source_items_key,priority:5"`
}

// TableName returns the table name for GORM
func (SourceItemModel) TableName() string {
	return "source_items"
}

// ToDomain converts the persistence model to a domain SourceItem
func (m *SourceItemModel) ToDomain() *fulfillment.SourceItem {
	return &fulfillment.SourceItem{
		OwnedEntity: m.ToOwnedEntity(m.OwnerUserID),
		ItemKey: fulfillment.ItemKey{
			ProductID: m.ProductID,
			VariantID: m.VariantID,
			Quantity:  m.Quantity,
		},
		ShopID: m.ShopID,
	}
}

// SourceItemModelFromDomain creates a persistence model from a domain SourceItem
func SourceItemModelFromDomain(item *fulfillment.SourceItem) *SourceItemModel {
	m := &SourceItemModel{
		OwnerUserID: item.OwnerUserID,
		ShopID:      item.ShopID,
		ProductID:   item.ProductID,
		VariantID:   item.VariantID,
		Quantity:    item.Quantity,
	}
	m.FromDomainOwnedEntity(item.OwnedEntity)
	return m
}

// ChannelItemModel is the persistence model for the ChannelItem domain entity
type ChannelItemModel struct {
	BaseModel
	OwnerUserID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_channel_items_key,priority:1"`
	ChannelID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_channel_items_key,priority:2"`
	ProductID   string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_channel_items_key,priority:3"`
	VariantID   string          `gorm:"type:varchar(100);not null;default:'';uniqueIndex:idx_channel_items_key,priority:4"`
	Quantity    int             `gorm:"not null;uniqueIndex:idx_channel_items_key,priority:5"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Name        string          `gorm:"type:varchar(255)"`
	Image       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ChannelItemModel) TableName() string {
	return "channel_items"
}

// ToDomain converts the persistence model to a domain ChannelItem
func (m *ChannelItemModel) ToDomain() *fulfillment.ChannelItem {
	return &fulfillment.ChannelItem{
		OwnedEntity: m.ToOwnedEntity(m.OwnerUserID),
		ItemKey: fulfillment.ItemKey{
			ProductID: m.ProductID,
			VariantID: m.VariantID,
			Quantity:  m.Quantity,
		},
		ChannelID: m.ChannelID,
		Price:     m.Price,
		Name:      m.Name,
		Image:     m.Image,
	}
}

// ChannelItemModelFromDomain creates a persistence model from a domain ChannelItem
func ChannelItemModelFromDomain(item *fulfillment.ChannelItem) *ChannelItemModel {
	m := &ChannelItemModel{
		OwnerUserID: item.OwnerUserID,
		ChannelID:   item.ChannelID,
		ProductID:   item.ProductID,
		VariantID:   item.VariantID,
		Quantity:    item.Quantity,
		Price:       item.Price,
		Name:        item.Name,
		Image:       item.Image,
	}
	m.FromDomainOwnedEntity(item.OwnedEntity)
	return m
}
