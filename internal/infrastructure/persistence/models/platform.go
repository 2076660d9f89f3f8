package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dropship/backend/internal/domain/fulfillment"
)

// PlatformModel is the persistence model for a platform configuration.
// Functions is stored as one JSON document keyed by function name.
type PlatformModel struct {
	BaseModel
	OwnerUserID uuid.UUID                                        `gorm:"type:uuid;not null;index"`
	Name        string                                           `gorm:"type:varchar(100);not null"`
	Kind        string                                           `gorm:"type:varchar(20);not null"`
	Functions   datatypes.JSONType[fulfillment.PlatformFunctions] `gorm:"type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (PlatformModel) TableName() string {
	return "platforms"
}

// ToDomain converts the persistence model to a domain Platform
func (m *PlatformModel) ToDomain() *fulfillment.Platform {
	return &fulfillment.Platform{
		OwnedEntity: m.ToOwnedEntity(m.OwnerUserID),
		Name:        m.Name,
		Kind:        fulfillment.PlatformKind(m.Kind),
		Functions:   m.Functions.Data(),
	}
}

// PlatformModelFromDomain creates a persistence model from a domain Platform
func PlatformModelFromDomain(p *fulfillment.Platform) *PlatformModel {
	m := &PlatformModel{
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Kind:        string(p.Kind),
		Functions:   datatypes.NewJSONType(p.Functions),
	}
	m.FromDomainOwnedEntity(p.OwnedEntity)
	return m
}

// StoreModel holds the columns shops and channels share
type StoreModel struct {
	BaseModel
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Domain      string    `gorm:"type:varchar(255)"`
	AccessToken string    `gorm:"type:text"`
	PlatformID  uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (m *StoreModel) toDomain() fulfillment.Store {
	return fulfillment.Store{
		OwnedEntity: m.ToOwnedEntity(m.OwnerUserID),
		Name:        m.Name,
		Domain:      m.Domain,
		AccessToken: m.AccessToken,
		PlatformID:  m.PlatformID,
	}
}

func storeModelFromDomain(s fulfillment.Store) StoreModel {
	m := StoreModel{
		OwnerUserID: s.OwnerUserID,
		Name:        s.Name,
		Domain:      s.Domain,
		AccessToken: s.AccessToken,
		PlatformID:  s.PlatformID,
	}
	m.FromDomainOwnedEntity(s.OwnedEntity)
	return m
}

// ShopModel is the persistence model for a shop
type ShopModel struct {
	StoreModel
}

// TableName returns the table name for GORM
func (ShopModel) TableName() string {
	return "shops"
}

// ToDomain converts the persistence model to a domain Shop
func (m *ShopModel) ToDomain() *fulfillment.Shop {
	return &fulfillment.Shop{Store: m.toDomain()}
}

// ShopModelFromDomain creates a persistence model from a domain Shop
func ShopModelFromDomain(s *fulfillment.Shop) *ShopModel {
	return &ShopModel{StoreModel: storeModelFromDomain(s.Store)}
}

// ChannelModel is the persistence model for a channel
type ChannelModel struct {
	StoreModel
}

// TableName returns the table name for GORM
func (ChannelModel) TableName() string {
	return "channels"
}

// ToDomain converts the persistence model to a domain Channel
func (m *ChannelModel) ToDomain() *fulfillment.Channel {
	return &fulfillment.Channel{Store: m.toDomain()}
}

// ChannelModelFromDomain creates a persistence model from a domain Channel
func ChannelModelFromDomain(c *fulfillment.Channel) *ChannelModel {
	return &ChannelModel{StoreModel: storeModelFromDomain(c.Store)}
}
