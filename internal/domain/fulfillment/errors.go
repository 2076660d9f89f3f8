package fulfillment

import "github.com/dropship/backend/internal/domain/shared"

// Fulfillment errors
var (
	// ErrAdapterNotConfigured means the platform has no function reference for the requested operation
	ErrAdapterNotConfigured = shared.NewDomainError("ADAPTER_NOT_CONFIGURED", "Platform function is not configured")
	// ErrAdapterCallFailed covers non-2xx HTTP results, error-bearing payloads, and timeouts
	ErrAdapterCallFailed = shared.NewDomainError("ADAPTER_CALL_FAILED", "Platform adapter call failed")
	// ErrDuplicateMatch means another Match of the same user already has this input set
	ErrDuplicateMatch = shared.NewDomainError("DUPLICATE_MATCH", "A match with the same inputs already exists")
	// ErrInventorySyncFailed is returned when some inventory updates did not apply
	ErrInventorySyncFailed = shared.NewDomainError("INVENTORY_SYNC_FAILED", "Inventory sync failed")
)

// Order diagnostics written to Order.OrderError
const (
	OrderErrorNoMatches      = "No matches found"
	OrderErrorPartialMatches = "Some lineItems not matched"
)
