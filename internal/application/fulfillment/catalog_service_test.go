package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
)

// racingSourceRepo simulates another request inserting the same key between lookup and insert
type racingSourceRepo struct {
	memSourceRepo
	winner *fulfillment.SourceItem
}

func (r racingSourceRepo) Create(ctx context.Context, _ *fulfillment.SourceItem) error {
	if err := r.memSourceRepo.Create(ctx, r.winner); err != nil {
		return err
	}
	return fmt.Errorf("%w: source item", shared.ErrAlreadyExists)
}

func TestCatalogService_EnsureSourceItem(t *testing.T) {
	t.Run("creates once and returns the same id afterwards", func(t *testing.T) {
		f := newFixture(t)
		spec := f.sourceSpec("p1", 1)

		first, err := f.catalog.EnsureSourceItem(f.ctx, spec)
		require.NoError(t, err)
		second, err := f.catalog.EnsureSourceItem(f.ctx, spec)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, f.store.sources, 1)
	})

	t.Run("different quantity is a different item", func(t *testing.T) {
		f := newFixture(t)
		a, err := f.catalog.EnsureSourceItem(f.ctx, f.sourceSpec("p1", 1))
		require.NoError(t, err)
		b, err := f.catalog.EnsureSourceItem(f.ctx, f.sourceSpec("p1", 2))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("items are scoped per user", func(t *testing.T) {
		f := newFixture(t)
		spec := f.sourceSpec("p1", 1)
		mine, err := f.catalog.EnsureSourceItem(f.ctx, spec)
		require.NoError(t, err)

		otherCtx := shared.WithUserID(context.Background(), uuid.New())
		theirs, err := f.catalog.EnsureSourceItem(otherCtx, spec)
		require.NoError(t, err)
		assert.NotEqual(t, mine, theirs)
	})

	t.Run("unique violation on create re-fetches the winner", func(t *testing.T) {
		f := newFixture(t)
		spec := f.sourceSpec("p1", 1)
		winner, err := fulfillment.NewSourceItem(f.userID, spec)
		require.NoError(t, err)

		svc := NewCatalogService(racingSourceRepo{memSourceRepo{f.store}, winner}, memChannelItemRepo{f.store})
		id, err := svc.EnsureSourceItem(f.ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, winner.ID, id)
	})

	t.Run("other storage errors propagate", func(t *testing.T) {
		f := newFixture(t)
		storageErr := errors.New("connection reset")
		f.store.sourceCreateErr = storageErr

		_, err := f.catalog.EnsureSourceItem(f.ctx, f.sourceSpec("p1", 1))
		assert.ErrorIs(t, err, storageErr)
	})

	t.Run("invalid spec is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.catalog.EnsureSourceItem(f.ctx, f.sourceSpec("", 1))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("requires authentication", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.catalog.EnsureSourceItem(context.Background(), f.sourceSpec("p1", 1))
		assert.ErrorIs(t, err, shared.ErrAuthenticationRequired)
	})
}

func TestCatalogService_EnsureChannelItem(t *testing.T) {
	f := newFixture(t)
	channel := f.addChannel("supplier")

	first, err := f.catalog.EnsureChannelItem(f.ctx, f.channelSpec(channel, "c1", 10))
	require.NoError(t, err)

	// A later price does not update the stored item
	second, err := f.catalog.EnsureChannelItem(f.ctx, f.channelSpec(channel, "c1", 99))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "10", f.store.channels[first].Price.String())
}
