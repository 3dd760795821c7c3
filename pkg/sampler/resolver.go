package sampler

import (
	"context"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/logging"
)

// GenreResolver backfills genre ids for items the catalog returned without them.
type GenreResolver struct {
	source catalog.Source
}

// NewGenreResolver creates a resolver over source.
func NewGenreResolver(source catalog.Source) *GenreResolver {
	return &GenreResolver{source: source}
}

// Resolve returns the item's genre ids. When the item carries none, it makes
// exactly one detail lookup. Failures are logged and yield an empty slice.
func (r *GenreResolver) Resolve(ctx context.Context, item catalog.Item) []int {
	if len(item.GenreIDs) > 0 {
		return item.GenreIDs
	}
	details, err := r.source.Details(ctx, item.Type, item.ID)
	if err != nil {
		logging.Warn().Err(err).Str("key", item.Key().String()).Msg("genre lookup failed")
		return []int{}
	}
	return details.GenreIDList()
}
