// Package storagetest holds the behaviour every storage.KVStore backend must
// share. Backend packages call Run from their own tests.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/cinedeck-go/pkg/storage"
)

// Run exercises store against the KVStore contract. The store must start
// empty for the keys used here.
func Run(t *testing.T, store storage.KVStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing/KEY")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("SetGetOverwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "p1/PREFERENCES", []byte(`{"a":1}`)))
		got, err := store.Get(ctx, "p1/PREFERENCES")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(got))

		require.NoError(t, store.Set(ctx, "p1/PREFERENCES", []byte(`{"a":2}`)))
		got, err = store.Get(ctx, "p1/PREFERENCES")
		require.NoError(t, err)
		assert.Equal(t, `{"a":2}`, string(got))
	})

	t.Run("ValueIsCopied", func(t *testing.T) {
		value := []byte("original")
		require.NoError(t, store.Set(ctx, "p1/COPY", value))
		value[0] = 'X'

		got, err := store.Get(ctx, "p1/COPY")
		require.NoError(t, err)
		assert.Equal(t, "original", string(got))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "p1/GONE", []byte("x")))
		require.NoError(t, store.Delete(ctx, "p1/GONE"))
		_, err := store.Get(ctx, "p1/GONE")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		assert.NoError(t, store.Delete(ctx, "p1/NEVER_SET"))
	})

	t.Run("KeysByPrefix", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "p2/B", []byte("b")))
		require.NoError(t, store.Set(ctx, "p2/A", []byte("a")))
		require.NoError(t, store.Set(ctx, "p20/A", []byte("other")))

		keys, err := store.Keys(ctx, "p2/")
		require.NoError(t, err)
		assert.Equal(t, []string{"p2/A", "p2/B"}, keys)

		keys, err = store.Keys(ctx, "nobody/")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})
}
