// Package catalog provides the types and the Source interface for the external movie/TV catalog.
//
// It defines the subset of catalog data the discovery core reads: candidate items, discover
// pages, genre and watch provider listings. Implementations live in subpackages (tmdb).
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ContentType identifies the kind of title.
type ContentType string

const (
	// Movie is a feature film.
	Movie ContentType = "movie"

	// TV is a series.
	TV ContentType = "tv"

	// All is only valid in sampling requests and selects mixed mode.
	All ContentType = "all"
)

// Valid reports whether t is a concrete content type (movie or tv).
func (t ContentType) Valid() bool {
	return t == Movie || t == TV
}

// ParseContentType parses "movie", "tv", "series" or "all".
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies":
		return Movie, nil
	case "tv", "series":
		return TV, nil
	case "all", "":
		return All, nil
	default:
		return "", fmt.Errorf("unknown content type %q", s)
	}
}

// ImageBaseURL is the poster CDN prefix used for w500 renditions.
const ImageBaseURL = "https://image.tmdb.org/t/p/w500"

// Key is the composite identity of a catalog entry.
type Key struct {
	Type ContentType `json:"type"`
	ID   int64       `json:"id"`
}

// String renders the key as "{type}-{id}", e.g. "movie-550".
func (k Key) String() string {
	return string(k.Type) + "-" + strconv.FormatInt(k.ID, 10)
}

// ParseKey is the inverse of Key.String. It also accepts "{type}:{id}" and
// "{type}_{id}", and the type aliases ParseContentType knows ("series-3").
func ParseKey(s string) (Key, error) {
	idx := strings.LastIndexAny(s, "-:_")
	if idx <= 0 || idx == len(s)-1 {
		return Key{}, fmt.Errorf("malformed key %q", s)
	}
	t, err := ParseContentType(s[:idx])
	if err != nil || !t.Valid() {
		return Key{}, fmt.Errorf("malformed key %q: unknown type", s)
	}
	id, err := strconv.ParseInt(s[idx+1:], 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("malformed key %q: %w", s, err)
	}
	return Key{Type: t, ID: id}, nil
}

// MarshalText lets keys be used as JSON map keys and list values.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the "{type}-{id}" form.
func (k *Key) UnmarshalText(b []byte) error {
	parsed, err := ParseKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Item is one candidate title returned by the catalog.
type Item struct {
	// ID is the catalog identifier, unique within Type.
	ID int64 `json:"id"`

	// Type is movie or tv.
	Type ContentType `json:"type"`

	// Title is the localized title (movie title or series name).
	Title string `json:"title"`

	// PosterPath is the relative poster path; empty when the entry has no poster.
	PosterPath string `json:"poster_path,omitempty"`

	// GenreIDs may be empty, in which case genres are resolved lazily.
	GenreIDs []int `json:"genre_ids,omitempty"`

	Overview    string  `json:"overview,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
	Popularity  float64 `json:"popularity,omitempty"`
}

// Key returns the composite identity of the item.
func (i Item) Key() Key {
	return Key{Type: i.Type, ID: i.ID}
}

// HasPoster reports whether the item can be rendered as a card.
func (i Item) HasPoster() bool {
	return strings.TrimSpace(i.PosterPath) != ""
}

// PosterURL returns the absolute w500 poster URL, or "" when there is none.
func (i Item) PosterURL() string {
	if !i.HasPoster() {
		return ""
	}
	return ImageBaseURL + i.PosterPath
}

// DiscoverQuery describes one page request against the discovery endpoint.
type DiscoverQuery struct {
	Type      ContentType
	Genres    []int
	Providers []int
	Page      int
}

// Signature identifies the result space of a query independent of the page.
func (q DiscoverQuery) Signature() string {
	return fmt.Sprintf("%s|g=%s|p=%s", q.Type, JoinIDs(q.Genres, ","), JoinIDs(q.Providers, "|"))
}

// Page is one page of catalog results.
type Page struct {
	Page       int
	TotalPages int
	Results    []Item
}

// Genre is a catalog genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// YouTubeWatchURL prefixes the key of a YouTube video.
const YouTubeWatchURL = "https://www.youtube.com/watch?v="

// TopCastSize is how many cast members the detail view shows.
const TopCastSize = 12

// Video is a clip attached to a title (trailer, teaser, featurette).
type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name,omitempty"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// CastMember is one credited actor, in billing order.
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// CrewMember is one credited crew role.
type CrewMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits are the cast and crew of a title.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Details is the detail-by-id view of a title.
type Details struct {
	Item
	Genres []Genre `json:"genres"`

	// Runtime is minutes; for series it is the first episode runtime.
	Runtime int    `json:"runtime,omitempty"`
	Status  string `json:"status,omitempty"`

	Videos  []Video `json:"videos,omitempty"`
	Credits Credits `json:"credits"`
}

// TrailerURL picks the official YouTube trailer, then any YouTube trailer,
// then any YouTube video. It returns "" when there is none.
func (d *Details) TrailerURL() string {
	matches := []func(Video) bool{
		func(v Video) bool { return v.Type == "Trailer" && v.Official },
		func(v Video) bool { return v.Type == "Trailer" },
		func(Video) bool { return true },
	}
	for _, match := range matches {
		for _, v := range d.Videos {
			if v.Site == "YouTube" && v.Key != "" && match(v) {
				return YouTubeWatchURL + v.Key
			}
		}
	}
	return ""
}

// Director returns the first crew member credited as Director, or "".
func (d *Details) Director() string {
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			return c.Name
		}
	}
	return ""
}

// TopCast returns at most n cast members in billing order.
func (d *Details) TopCast(n int) []CastMember {
	cast := d.Credits.Cast
	if n >= 0 && len(cast) > n {
		cast = cast[:n]
	}
	return append([]CastMember{}, cast...)
}

// GenreIDList extracts the genre identifiers in catalog order.
func (d *Details) GenreIDList() []int {
	ids := make([]int, 0, len(d.Genres))
	for _, g := range d.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// WatchProvider is a streaming/rental service.
type WatchProvider struct {
	ID              int    `json:"provider_id"`
	Name            string `json:"provider_name"`
	LogoPath        string `json:"logo_path,omitempty"`
	DisplayPriority int    `json:"display_priority"`
}

// Availability lists where a title can be watched in one region.
type Availability struct {
	Region    string          `json:"region"`
	Link      string          `json:"link,omitempty"`
	Providers []WatchProvider `json:"providers"`
}

// Source is the external catalog as seen by the discovery core.
//
// Implementations must be safe for concurrent use: the sampler fetches
// random pages in parallel.
type Source interface {
	// Discover returns one page of titles sorted by popularity.
	Discover(ctx context.Context, q DiscoverQuery) (*Page, error)

	// Popular returns one page of the unfiltered popular list.
	Popular(ctx context.Context, t ContentType, page int) (*Page, error)

	// Details returns the detail view of one title.
	Details(ctx context.Context, t ContentType, id int64) (*Details, error)

	// Genres lists the genres available for a content type.
	Genres(ctx context.Context, t ContentType) ([]Genre, error)

	// WatchProviders lists the providers of the configured region, by display priority.
	WatchProviders(ctx context.Context, t ContentType) ([]WatchProvider, error)

	// Availability lists where one title can be watched.
	Availability(ctx context.Context, t ContentType, id int64) (*Availability, error)

	// Close releases resources.
	Close() error
}

// JoinIDs joins ids with sep, e.g. "28,12" or "8|119".
func JoinIDs(ids []int, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, sep)
}
