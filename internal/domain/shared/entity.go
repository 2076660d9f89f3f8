package shared

import (
	"time"

	"github.com/google/uuid"
)

// OwnedEntity carries the identity and ownership fields every persisted record shares.
// Records are visible only to the user that owns them.
type OwnedEntity struct {
	ID          uuid.UUID
	OwnerUserID uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOwnedEntity creates an entity with a generated ID owned by userID
func NewOwnedEntity(userID uuid.UUID) OwnedEntity {
	now := time.Now()
	return OwnedEntity{
		ID:          uuid.New(),
		OwnerUserID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// GetID returns the entity ID
func (e *OwnedEntity) GetID() uuid.UUID {
	return e.ID
}

// OwnedBy reports whether the entity belongs to userID
func (e *OwnedEntity) OwnedBy(userID uuid.UUID) bool {
	return e.OwnerUserID == userID
}

// Touch bumps UpdatedAt
func (e *OwnedEntity) Touch() {
	e.UpdatedAt = time.Now()
}
