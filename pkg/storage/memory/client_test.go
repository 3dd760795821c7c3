package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/cinedeck-go/pkg/storage"
	"github.com/oceanbase/cinedeck-go/pkg/storage/memory"
	"github.com/oceanbase/cinedeck-go/pkg/storage/storagetest"
)

func TestMemoryStore(t *testing.T) {
	storagetest.Run(t, memory.NewClient())
}

func TestMemoryStoreCloseResets(t *testing.T) {
	ctx := context.Background()
	store := memory.NewClient()
	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	require.NoError(t, store.Close())

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
