// Package catalogtest provides an in-memory catalog.Source for tests.
package catalogtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
)

// ErrUnavailable is returned for pages and titles registered as failing.
var ErrUnavailable = errors.New("catalogtest: unavailable")

// Fake serves scripted pages. Unknown pages return an empty page with the
// configured total.
type Fake struct {
	mu sync.Mutex

	pages      map[catalog.ContentType]map[int][]catalog.Item
	totalPages map[catalog.ContentType]int
	popular    map[catalog.ContentType][]catalog.Item
	details    map[catalog.Key]*catalog.Details
	failPages  map[catalog.ContentType]map[int]bool
	failAll    bool

	// Queries records every Discover call in arrival order.
	Queries []catalog.DiscoverQuery

	// DetailCalls counts Details lookups.
	DetailCalls int

	// PopularCalls counts Popular lookups.
	PopularCalls int
}

var _ catalog.Source = (*Fake)(nil)

// New creates an empty fake.
func New() *Fake {
	return &Fake{
		pages:      make(map[catalog.ContentType]map[int][]catalog.Item),
		totalPages: make(map[catalog.ContentType]int),
		popular:    make(map[catalog.ContentType][]catalog.Item),
		details:    make(map[catalog.Key]*catalog.Details),
		failPages:  make(map[catalog.ContentType]map[int]bool),
	}
}

// SetPage registers the items of one discover page.
func (f *Fake) SetPage(t catalog.ContentType, page int, items ...catalog.Item) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pages[t] == nil {
		f.pages[t] = make(map[int][]catalog.Item)
	}
	f.pages[t][page] = items
	if page > f.totalPages[t] {
		f.totalPages[t] = page
	}
	return f
}

// SetTotalPages overrides the reported total page count.
func (f *Fake) SetTotalPages(t catalog.ContentType, total int) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totalPages[t] = total
	return f
}

// SetPopular registers the popular list.
func (f *Fake) SetPopular(t catalog.ContentType, items ...catalog.Item) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.popular[t] = items
	return f
}

// SetDetails registers genres for a title.
func (f *Fake) SetDetails(t catalog.ContentType, id int64, genreIDs ...int) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &catalog.Details{Item: catalog.Item{ID: id, Type: t}}
	for _, g := range genreIDs {
		d.Genres = append(d.Genres, catalog.Genre{ID: g, Name: fmt.Sprintf("genre-%d", g)})
	}
	f.details[catalog.Key{Type: t, ID: id}] = d
	return f
}

// SetTitle registers a full detail view, replacing any SetDetails entry.
func (f *Fake) SetTitle(d *catalog.Details) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details[d.Key()] = d
	return f
}

// FailPage makes one discover page return ErrUnavailable.
func (f *Fake) FailPage(t catalog.ContentType, page int) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPages[t] == nil {
		f.failPages[t] = make(map[int]bool)
	}
	f.failPages[t][page] = true
	return f
}

// FailAll makes every call return ErrUnavailable.
func (f *Fake) FailAll() *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = true
	return f
}

// DiscoverCalls returns the number of Discover calls so far.
func (f *Fake) DiscoverCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Queries)
}

func (f *Fake) Discover(_ context.Context, q catalog.DiscoverQuery) (*catalog.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Queries = append(f.Queries, q)
	if f.failAll || f.failPages[q.Type][q.Page] {
		return nil, ErrUnavailable
	}
	items := append([]catalog.Item(nil), f.pages[q.Type][q.Page]...)
	return &catalog.Page{Page: q.Page, TotalPages: f.totalPages[q.Type], Results: items}, nil
}

func (f *Fake) Popular(_ context.Context, t catalog.ContentType, page int) (*catalog.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PopularCalls++
	if f.failAll {
		return nil, ErrUnavailable
	}
	items := append([]catalog.Item(nil), f.popular[t]...)
	total := 0
	if len(items) > 0 {
		total = 1
	}
	return &catalog.Page{Page: page, TotalPages: total, Results: items}, nil
}

func (f *Fake) Details(_ context.Context, t catalog.ContentType, id int64) (*catalog.Details, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DetailCalls++
	if f.failAll {
		return nil, ErrUnavailable
	}
	d, ok := f.details[catalog.Key{Type: t, ID: id}]
	if !ok {
		return nil, ErrUnavailable
	}
	return d, nil
}

func (f *Fake) Genres(_ context.Context, t catalog.ContentType) ([]catalog.Genre, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, ErrUnavailable
	}
	return []catalog.Genre{{ID: 28, Name: "Action"}, {ID: 12, Name: "Adventure"}, {ID: 35, Name: "Comedy"}}, nil
}

func (f *Fake) WatchProviders(_ context.Context, t catalog.ContentType) ([]catalog.WatchProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, ErrUnavailable
	}
	return []catalog.WatchProvider{{ID: 8, Name: "Netflix", DisplayPriority: 1}}, nil
}

func (f *Fake) Availability(_ context.Context, t catalog.ContentType, id int64) (*catalog.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, ErrUnavailable
	}
	return &catalog.Availability{Region: "ES", Providers: []catalog.WatchProvider{{ID: 8, Name: "Netflix"}}}, nil
}

func (f *Fake) Close() error { return nil }

// Movie builds a movie item with a poster.
func Movie(id int64, genres ...int) catalog.Item {
	return catalog.Item{ID: id, Type: catalog.Movie, Title: fmt.Sprintf("movie %d", id), PosterPath: fmt.Sprintf("/m%d.jpg", id), GenreIDs: genres}
}

// Show builds a tv item with a poster.
func Show(id int64, genres ...int) catalog.Item {
	return catalog.Item{ID: id, Type: catalog.TV, Title: fmt.Sprintf("show %d", id), PosterPath: fmt.Sprintf("/t%d.jpg", id), GenreIDs: genres}
}
