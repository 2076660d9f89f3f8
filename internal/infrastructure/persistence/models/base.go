package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/shared"
)

// BaseModel provides the identity and timestamp columns of every table.
// Owner columns are declared per model so each table can index them with its natural key.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToOwnedEntity converts BaseModel plus the owner column to the domain OwnedEntity
func (m *BaseModel) ToOwnedEntity(ownerUserID uuid.UUID) shared.OwnedEntity {
	return shared.OwnedEntity{
		ID:          m.ID,
		OwnerUserID: ownerUserID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomainOwnedEntity populates BaseModel from the domain OwnedEntity
func (m *BaseModel) FromDomainOwnedEntity(e shared.OwnedEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}
