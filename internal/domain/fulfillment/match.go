package fulfillment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/shared"
)

// Match binds a set of SourceItems to the ChannelItems that fulfill them.
// No two Matches of one user share the same input id-set.
type Match struct {
	shared.OwnedEntity
	Inputs  []SourceItem
	Outputs []ChannelItem
}

// NewMatch creates a Match owned by userID
func NewMatch(userID uuid.UUID, inputs []SourceItem, outputs []ChannelItem) (*Match, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: match needs at least one input", shared.ErrInvalidInput)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("%w: match needs at least one output", shared.ErrInvalidInput)
	}
	return &Match{
		OwnedEntity: shared.NewOwnedEntity(userID),
		Inputs:      inputs,
		Outputs:     outputs,
	}, nil
}

// InputIDs returns the input ids in sorted order
func (m *Match) InputIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(m.Inputs))
	for i := range m.Inputs {
		ids[i] = m.Inputs[i].ID
	}
	return sortIDs(ids)
}

// OutputIDs returns the output ids in sorted order
func (m *Match) OutputIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(m.Outputs))
	for i := range m.Outputs {
		ids[i] = m.Outputs[i].ID
	}
	return sortIDs(ids)
}

// InputSignature is the canonical form of the input id-set
func (m *Match) InputSignature() string {
	return Signature(m.InputIDs())
}

// ReplaceOutputs disconnects the current outputs and connects the given ones
func (m *Match) ReplaceOutputs(outputs []ChannelItem) error {
	if len(outputs) == 0 {
		return fmt.Errorf("%w: match needs at least one output", shared.ErrInvalidInput)
	}
	m.Outputs = outputs
	m.Touch()
	return nil
}

// CoversExactly reports whether the inputs equal the given line keys as a multiset
func (m *Match) CoversExactly(keys []ItemKey) bool {
	if len(m.Inputs) != len(keys) {
		return false
	}
	remaining := make(map[ItemKey]int, len(keys))
	for _, k := range keys {
		remaining[k]++
	}
	for _, in := range m.Inputs {
		if remaining[in.ItemKey] == 0 {
			return false
		}
		remaining[in.ItemKey]--
	}
	return true
}

// Signature renders a sorted, comma-joined id list.
// Order of ids is irrelevant.
func Signature(ids []uuid.UUID) string {
	sorted := sortIDs(append([]uuid.UUID(nil), ids...))
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

func sortIDs(ids []uuid.UUID) []uuid.UUID {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
