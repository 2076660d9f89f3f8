package models

import (
	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/fulfillment"
)

// MatchModel is the persistence model for the Match aggregate.
// InputSignature is the sorted, comma-joined input id list; its unique index per owner
// is the final guard against two matches sharing an input set.
type MatchModel struct {
	BaseModel
	OwnerUserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_matches_owner_signature,priority:1;index:idx_matches_owner_count,priority:1"`
	InputSignature string    `gorm:"type:text;not null;uniqueIndex:idx_matches_owner_signature,priority:2"`
	InputCount     int       `gorm:"not null;index:idx_matches_owner_count,priority:2"`
}

// TableName returns the table name for GORM
func (MatchModel) TableName() string {
	return "matches"
}

// MatchInputModel links a match to one of its source items
type MatchInputModel struct {
	MatchID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	SourceItemID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for GORM
func (MatchInputModel) TableName() string {
	return "match_inputs"
}

// MatchOutputModel links a match to one of its channel items
type MatchOutputModel struct {
	MatchID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChannelItemID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for GORM
func (MatchOutputModel) TableName() string {
	return "match_outputs"
}

// MatchModelFromDomain creates the match row and its join rows from a domain Match
func MatchModelFromDomain(m *fulfillment.Match) (*MatchModel, []MatchInputModel, []MatchOutputModel) {
	model := &MatchModel{
		OwnerUserID:    m.OwnerUserID,
		InputSignature: m.InputSignature(),
		InputCount:     len(m.Inputs),
	}
	model.FromDomainOwnedEntity(m.OwnedEntity)

	inputs := make([]MatchInputModel, 0, len(m.Inputs))
	for _, in := range m.Inputs {
		inputs = append(inputs, MatchInputModel{MatchID: m.ID, SourceItemID: in.ID})
	}
	return model, inputs, MatchOutputModelsFromDomain(m)
}

// MatchOutputModelsFromDomain creates the output join rows of a domain Match
func MatchOutputModelsFromDomain(m *fulfillment.Match) []MatchOutputModel {
	outputs := make([]MatchOutputModel, 0, len(m.Outputs))
	for _, out := range m.Outputs {
		outputs = append(outputs, MatchOutputModel{MatchID: m.ID, ChannelItemID: out.ID})
	}
	return outputs
}

// ToDomain assembles a domain Match from the match row and its loaded items
func (m *MatchModel) ToDomain(inputs []fulfillment.SourceItem, outputs []fulfillment.ChannelItem) *fulfillment.Match {
	return &fulfillment.Match{
		OwnedEntity: m.ToOwnedEntity(m.OwnerUserID),
		Inputs:      inputs,
		Outputs:     outputs,
	}
}
