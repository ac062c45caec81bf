package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "agreements/1/doc.pdf", []byte("%PDF"), "application/pdf"))

	data, err := store.Get(ctx, "agreements/1/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)
}

func TestLocalStoreMissingKey(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "nope.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), "../outside.pdf", []byte("x"), "application/pdf")
	assert.Error(t, err)
}

func TestLocalStoreDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "evaluations/3/employer.pdf", []byte("%PDF"), "application/pdf"))
	require.NoError(t, store.Delete(ctx, "evaluations/3/employer.pdf"))

	_, err = store.Get(ctx, "evaluations/3/employer.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Delete(ctx, "evaluations/3/employer.pdf"))
	assert.Error(t, store.Delete(ctx, "../outside.pdf"))
}
