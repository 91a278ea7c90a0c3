package storage

import (
	"context"
	"testing"

	"github.com/dshills/gocodequality/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCacheStoreContract checks the behavior every CacheStore must share
func runCacheStoreContract(t *testing.T, store CacheStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, store.Store(ctx, types.NamespaceChunkResult, "K1", `{"s1_a": 5}`))

		value, found, err := store.Lookup(ctx, types.NamespaceChunkResult, "K1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `{"s1_a": 5}`, value)
	})

	t.Run("missing key", func(t *testing.T) {
		value, found, err := store.Lookup(ctx, types.NamespaceChunkResult, "never-stored")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, "", value)
	})

	t.Run("last write wins", func(t *testing.T) {
		require.NoError(t, store.Store(ctx, types.NamespaceChunkResult, "K2", "first"))
		require.NoError(t, store.Store(ctx, types.NamespaceChunkResult, "K2", "second"))

		value, found, err := store.Lookup(ctx, types.NamespaceChunkResult, "K2")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "second", value)
	})

	t.Run("namespaces are isolated", func(t *testing.T) {
		require.NoError(t, store.Store(ctx, types.NamespaceRawAPIResponse, "K3", "raw"))

		_, found, err := store.Lookup(ctx, types.NamespaceChunkResult, "K3")
		require.NoError(t, err)
		assert.False(t, found)

		value, found, err := store.Lookup(ctx, types.NamespaceRawAPIResponse, "K3")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "raw", value)
	})

	t.Run("empty value", func(t *testing.T) {
		require.NoError(t, store.Store(ctx, types.NamespaceChunkResult, "K4", ""))

		value, found, err := store.Lookup(ctx, types.NamespaceChunkResult, "K4")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "", value)
	})

	t.Run("unknown namespace", func(t *testing.T) {
		err := store.Store(ctx, types.Namespace("bogus; DROP TABLE x"), "K", "V")
		assert.ErrorIs(t, err, types.ErrUnknownNamespace)

		_, _, err = store.Lookup(ctx, types.Namespace("bogus"), "K")
		assert.ErrorIs(t, err, types.ErrUnknownNamespace)
	})
}
