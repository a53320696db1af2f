package certificate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
)

func TestInMemoryStore_MintOnce(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Mint(ctx, 1, "issuer-1"))

	err := store.Mint(ctx, 1, "someone-else")
	assert.ErrorIs(t, err, sentinel.ErrConflict, "a certificate is minted exactly once per asset")

	// The original binding survives the rejected mint.
	holder, err := store.Holder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, id.Participant("issuer-1"), holder)
}

func TestInMemoryStore_HolderUnminted(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Holder(context.Background(), 99)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_Transfer(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	t.Run("unminted certificate cannot transfer", func(t *testing.T) {
		err := store.Transfer(ctx, 1, "issuer-1", "holder-a")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	require.NoError(t, store.Mint(ctx, 1, "issuer-1"))

	t.Run("only the bearer can transfer", func(t *testing.T) {
		err := store.Transfer(ctx, 1, "holder-a", "holder-b")
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)

		holder, err := store.Holder(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, id.Participant("issuer-1"), holder)
	})

	t.Run("bearer transfer rebinds", func(t *testing.T) {
		require.NoError(t, store.Transfer(ctx, 1, "issuer-1", "holder-a"))

		holder, err := store.Holder(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, id.Participant("holder-a"), holder)
	})
}
