package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/cinedeck-go/pkg/validation"
)

type request struct {
	Type  string `validate:"required,oneof=movie tv"`
	Pages int    `validate:"gte=0,lte=20"`
	URL   string `validate:"omitempty,url"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, validation.Struct(&request{Type: "movie", Pages: 3}))

	err := validation.Struct(&request{Type: "book", Pages: 50, URL: "::"})
	require.Error(t, err)

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 3)
	assert.Equal(t, "oneof", verr.Fields[0].Tag)
	assert.Equal(t, "request.Type must be one of: movie tv", verr.Fields[0].Message)
	assert.Equal(t, "request.Pages must be less than or equal to 20", verr.Fields[1].Message)
	assert.Contains(t, err.Error(), "request.URL must be a valid URL")
}

func TestStructRequired(t *testing.T) {
	err := validation.Struct(&request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request.Type is required")
}
