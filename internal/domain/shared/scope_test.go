package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIDFromContext(t *testing.T) {
	t.Run("returns scoped user", func(t *testing.T) {
		userID := uuid.New()
		got, err := UserIDFromContext(WithUserID(context.Background(), userID))
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("missing user requires authentication", func(t *testing.T) {
		_, err := UserIDFromContext(context.Background())
		assert.ErrorIs(t, err, ErrAuthenticationRequired)
	})

	t.Run("nil user requires authentication", func(t *testing.T) {
		_, err := UserIDFromContext(WithUserID(context.Background(), uuid.Nil))
		assert.ErrorIs(t, err, ErrAuthenticationRequired)
	})
}

func TestOwnedEntity(t *testing.T) {
	userID := uuid.New()
	e := NewOwnedEntity(userID)

	assert.NotEqual(t, uuid.Nil, e.GetID())
	assert.True(t, e.OwnedBy(userID))
	assert.False(t, e.OwnedBy(uuid.New()))

	before := e.UpdatedAt
	e.Touch()
	assert.False(t, e.UpdatedAt.Before(before))
}
