package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
)

func TestInMemoryStore_AbsentMeansZero(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	units, err := store.Units(ctx, 1, "nobody")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), units)
}

func TestInMemoryStore_CreditDebit(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Credit(ctx, 1, "holder-a", 1000))
	require.NoError(t, store.Debit(ctx, 1, "holder-a", 400))

	units, err := store.Units(ctx, 1, "holder-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(600), units)
}

func TestInMemoryStore_DebitRefusesOverdraw(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Credit(ctx, 1, "holder-a", 100))

	err := store.Debit(ctx, 1, "holder-a", 101)
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)

	// Balance unchanged after the refused debit.
	units, err := store.Units(ctx, 1, "holder-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), units)
}

func TestInMemoryStore_FullDebitRemovesPosition(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Credit(ctx, 1, "holder-a", 100))
	require.NoError(t, store.Debit(ctx, 1, "holder-a", 100))

	holdings, err := store.Holdings(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, holdings, "zero positions must be absent, not stored")
}

func TestInMemoryStore_HoldingsScopedPerAsset(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Credit(ctx, 1, "holder-a", 30))
	require.NoError(t, store.Credit(ctx, 1, "holder-b", 70))
	require.NoError(t, store.Credit(ctx, 2, "holder-a", 500))

	holdings, err := store.Holdings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	var sum uint64
	for _, p := range holdings {
		assert.Equal(t, id.AssetID(1), p.AssetID)
		sum += p.Units
	}
	assert.Equal(t, uint64(100), sum)
}
