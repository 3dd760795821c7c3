package sampler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/catalog/catalogtest"
	"github.com/oceanbase/cinedeck-go/pkg/sampler"
)

func TestResolveUsesItemGenres(t *testing.T) {
	fake := catalogtest.New()
	r := sampler.NewGenreResolver(fake)

	got := r.Resolve(context.Background(), catalogtest.Movie(550, 18, 53))

	assert.Equal(t, []int{18, 53}, got)
	assert.Equal(t, 0, fake.DetailCalls)
}

func TestResolveLooksUpDetailsOnce(t *testing.T) {
	fake := catalogtest.New().SetDetails(catalog.TV, 1399, 10765, 18)
	r := sampler.NewGenreResolver(fake)

	got := r.Resolve(context.Background(), catalogtest.Show(1399))

	assert.Equal(t, []int{10765, 18}, got)
	assert.Equal(t, 1, fake.DetailCalls)
}

func TestResolveFailureIsEmpty(t *testing.T) {
	fake := catalogtest.New()
	r := sampler.NewGenreResolver(fake)

	got := r.Resolve(context.Background(), catalogtest.Movie(1))

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 1, fake.DetailCalls)
}
