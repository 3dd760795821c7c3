package badger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/cinedeck-go/pkg/storage/badger"
	"github.com/oceanbase/cinedeck-go/pkg/storage/storagetest"
)

func TestBadgerStoreInMemory(t *testing.T) {
	store, err := badger.NewClient(&badger.Config{InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	storagetest.Run(t, store)
}

func TestBadgerStoreOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := badger.NewClient(&badger.Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "default/PREFERENCES", []byte(`{}`)))
	require.NoError(t, store.Close())

	reopened, err := badger.NewClient(&badger.Config{Path: dir})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "default/PREFERENCES")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))
}

func TestBadgerStoreRequiresPath(t *testing.T) {
	_, err := badger.NewClient(&badger.Config{})
	assert.Error(t, err)
}
