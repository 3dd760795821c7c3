package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveryError(t *testing.T) {
	err := NewDiscoveryError("Swipe", ErrEmptyDeck)
	assert.Equal(t, "cinedeck: Swipe: deck is empty", err.Error())
	assert.ErrorIs(t, err, ErrEmptyDeck)

	var de *DiscoveryError
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, "Swipe", de.Op)

	assert.NoError(t, NewDiscoveryError("Swipe", nil))
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := storageError("Hide", cause)

	assert.ErrorIs(t, err, ErrStorageOperation)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cinedeck: Hide: storage operation failed: disk full", err.Error())
	assert.NoError(t, storageError("Hide", nil))
}
