package shared

import (
	"context"

	"github.com/google/uuid"
)

type scopeKey struct{}

// WithUserID returns a context scoped to the given user.
// Every fulfillment operation reads the caller from here.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, scopeKey{}, userID)
}

// UserIDFromContext returns the caller's user ID or ErrAuthenticationRequired
func UserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctx.Value(scopeKey{}).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, ErrAuthenticationRequired
	}
	return userID, nil
}
