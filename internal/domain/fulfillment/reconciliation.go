package fulfillment

import "github.com/shopspring/decimal"

// PricePair is the stored and live price of one output item
type PricePair struct {
	Stored decimal.Decimal
	Live   decimal.Decimal
}

// PriceDelta sums live - stored over all pairs
func PriceDelta(pairs []PricePair) decimal.Decimal {
	total := decimal.Zero
	for _, p := range pairs {
		total = total.Add(p.Live.Sub(p.Stored))
	}
	return total
}

// InventorySyncStatus compares live inventory of the two sides of a 1:1 match.
// When SyncEligible is false every other field is zero.
type InventorySyncStatus struct {
	SyncEligible   bool `json:"syncEligible"`
	SourceQuantity *int `json:"sourceQuantity"`
	TargetQuantity *int `json:"targetQuantity"`
	SyncNeeded     bool `json:"syncNeeded"`
}

// Delta is the adjustment that brings the source inventory to the target
func (s InventorySyncStatus) Delta() int {
	if !s.SyncNeeded {
		return 0
	}
	return *s.TargetQuantity - *s.SourceQuantity
}

// SyncShapeEligible reports whether m is a single quantity-1 input bound to a single quantity-1 output.
// Bulk and fan-out matches never sync.
func SyncShapeEligible(m *Match) bool {
	if len(m.Inputs) != 1 || len(m.Outputs) != 1 {
		return false
	}
	return m.Inputs[0].Quantity == 1 && m.Outputs[0].Quantity == 1
}

// EvaluateInventorySync builds the sync status of m from the live inventories of its source and target
func EvaluateInventorySync(m *Match, source, target *int) InventorySyncStatus {
	if !SyncShapeEligible(m) || source == nil || target == nil {
		return InventorySyncStatus{}
	}
	src, tgt := *source, *target
	return InventorySyncStatus{
		SyncEligible:   true,
		SourceQuantity: &src,
		TargetQuantity: &tgt,
		SyncNeeded:     src != tgt,
	}
}
