package tmdb

import (
	"sort"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
)

// missingPriority is used for providers without display_priority.
const missingPriority = 999

// pageResponse is the shape shared by /discover and /popular.
type pageResponse struct {
	Page         int       `json:"page"`
	TotalPages   *int      `json:"total_pages"`
	TotalResults int       `json:"total_results"`
	Results      []rawItem `json:"results"`
}

// rawItem covers both movie and tv entries. Movies carry title/release_date,
// series carry name/first_air_date.
type rawItem struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	PosterPath   *string `json:"poster_path"`
	GenreIDs     []int   `json:"genre_ids"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
}

func (r rawItem) toItem(t catalog.ContentType) catalog.Item {
	item := catalog.Item{
		ID:          r.ID,
		Type:        t,
		Title:       r.Title,
		Overview:    r.Overview,
		ReleaseDate: r.ReleaseDate,
		VoteAverage: r.VoteAverage,
		Popularity:  r.Popularity,
	}
	if item.Title == "" {
		item.Title = r.Name
	}
	if item.ReleaseDate == "" {
		item.ReleaseDate = r.FirstAirDate
	}
	if r.PosterPath != nil {
		item.PosterPath = *r.PosterPath
	}
	if len(r.GenreIDs) > 0 {
		item.GenreIDs = append([]int(nil), r.GenreIDs...)
	}
	return item
}

func (p *pageResponse) toPage(t catalog.ContentType) *catalog.Page {
	out := &catalog.Page{
		Page:    p.Page,
		Results: make([]catalog.Item, 0, len(p.Results)),
	}
	for _, r := range p.Results {
		out.Results = append(out.Results, r.toItem(t))
	}
	switch {
	case p.TotalPages != nil:
		out.TotalPages = *p.TotalPages
	case len(out.Results) > 0:
		out.TotalPages = 1
	}
	return out
}

type rawCast struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
}

type detailResponse struct {
	rawItem
	Genres  []catalog.Genre `json:"genres"`
	Runtime int             `json:"runtime"`
	// EpisodeRunTime replaces runtime for series.
	EpisodeRunTime []int  `json:"episode_run_time"`
	Status         string `json:"status"`

	// Appended with append_to_response=credits,videos.
	Videos struct {
		Results []catalog.Video `json:"results"`
	} `json:"videos"`
	Credits struct {
		Cast []rawCast            `json:"cast"`
		Crew []catalog.CrewMember `json:"crew"`
	} `json:"credits"`
}

func (d *detailResponse) toDetails(t catalog.ContentType) *catalog.Details {
	out := &catalog.Details{
		Item:    d.rawItem.toItem(t),
		Genres:  d.Genres,
		Runtime: d.Runtime,
		Status:  d.Status,
	}
	if out.Runtime == 0 && len(d.EpisodeRunTime) > 0 {
		out.Runtime = d.EpisodeRunTime[0]
	}
	if out.Genres == nil {
		out.Genres = []catalog.Genre{}
	}
	if len(out.GenreIDs) == 0 {
		out.GenreIDs = out.GenreIDList()
	}
	out.Videos = append([]catalog.Video{}, d.Videos.Results...)
	out.Credits.Cast = make([]catalog.CastMember, 0, len(d.Credits.Cast))
	for _, c := range d.Credits.Cast {
		member := catalog.CastMember{ID: c.ID, Name: c.Name, Character: c.Character}
		if c.ProfilePath != nil {
			member.ProfilePath = *c.ProfilePath
		}
		out.Credits.Cast = append(out.Credits.Cast, member)
	}
	out.Credits.Crew = append([]catalog.CrewMember{}, d.Credits.Crew...)
	return out
}

type genreListResponse struct {
	Genres []catalog.Genre `json:"genres"`
}

type rawProvider struct {
	ProviderID      int     `json:"provider_id"`
	ProviderName    string  `json:"provider_name"`
	LogoPath        *string `json:"logo_path"`
	DisplayPriority *int    `json:"display_priority"`
}

func (r rawProvider) toProvider() catalog.WatchProvider {
	p := catalog.WatchProvider{
		ID:              r.ProviderID,
		Name:            r.ProviderName,
		DisplayPriority: missingPriority,
	}
	if r.LogoPath != nil {
		p.LogoPath = *r.LogoPath
	}
	if r.DisplayPriority != nil {
		p.DisplayPriority = *r.DisplayPriority
	}
	return p
}

type providerListResponse struct {
	Results []rawProvider `json:"results"`
}

// byPriority converts and orders providers by display priority, keeping at most limit.
func (r *providerListResponse) byPriority(limit int) []catalog.WatchProvider {
	out := make([]catalog.WatchProvider, 0, len(r.Results))
	for _, p := range r.Results {
		out = append(out, p.toProvider())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayPriority < out[j].DisplayPriority
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type regionProviders struct {
	Link     string        `json:"link"`
	Flatrate []rawProvider `json:"flatrate"`
	Free     []rawProvider `json:"free"`
	Rent     []rawProvider `json:"rent"`
	Buy      []rawProvider `json:"buy"`
}

// merged concatenates flatrate, free, rent and buy, dropping repeated provider ids.
func (r regionProviders) merged() []catalog.WatchProvider {
	seen := make(map[int]struct{})
	out := []catalog.WatchProvider{}
	for _, group := range [][]rawProvider{r.Flatrate, r.Free, r.Rent, r.Buy} {
		for _, p := range group {
			if _, dup := seen[p.ProviderID]; dup {
				continue
			}
			seen[p.ProviderID] = struct{}{}
			out = append(out, p.toProvider())
		}
	}
	return out
}

type titleProvidersResponse struct {
	ID      int64                      `json:"id"`
	Results map[string]regionProviders `json:"results"`
}
