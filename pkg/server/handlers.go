package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/core"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	"github.com/oceanbase/cinedeck-go/pkg/userstate"
)

type swipeRequest struct {
	Action  string `json:"action" validate:"required,oneof=like dislike watch_later seen skip cancel"`
	Verdict string `json:"verdict" validate:"omitempty,oneof=liked disliked cancelled"`
}

type hideRequest struct {
	Type string `json:"type" validate:"required,oneof=movie tv"`
	ID   int64  `json:"id" validate:"required,gt=0"`
}

type filtersRequest struct {
	Type      string `json:"type" validate:"omitempty,oneof=movie tv all"`
	Genres    []int  `json:"genres" validate:"max=20,dive,gt=0"`
	Providers []int  `json:"providers" validate:"max=20,dive,gt=0"`
}

type moodRequest struct {
	Type string `json:"type" validate:"omitempty,oneof=movie tv all"`
	Text string `json:"text" validate:"required,max=500"`
}

type swipeResponse struct {
	*core.SwipeResult
	Deck    core.DeckState `json:"deck"`
	Warning string         `json:"warning,omitempty"`
}

type filtersResponse struct {
	userstate.Filters
	Onboarded bool `json:"onboarded"`
}

type moodResponse struct {
	GenreIDs []int `json:"genre_ids"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getDeck handles GET /api/v1/deck?limit=
func (s *Server) getDeck(w http.ResponseWriter, r *http.Request) {
	limit := DefaultDeckLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, fmt.Errorf("%w: limit must be a non-negative integer", core.ErrInvalidInput))
			return
		}
		limit = min(n, MaxDeckLimit)
	}
	respondJSON(w, http.StatusOK, s.session.State(limit))
}

// swipe handles POST /api/v1/deck/swipe
//
// A storage failure after the deck moved is reported as a warning next to
// the result rather than as an error status.
func (s *Server) swipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	decision := intelligence.Decision{
		Action:  intelligence.Action(req.Action),
		Verdict: intelligence.Verdict(req.Verdict),
	}

	result, err := s.session.Swipe(r.Context(), decision)
	if result == nil {
		respondError(w, err)
		return
	}
	resp := swipeResponse{SwipeResult: result, Deck: s.session.State(0)}
	if err != nil {
		resp.Warning = err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

// hide handles POST /api/v1/deck/hide
func (s *Server) hide(w http.ResponseWriter, r *http.Request) {
	var req hideRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	hidden, err := s.session.Hide(r.Context(), catalog.Key{Type: catalog.ContentType(req.Type), ID: req.ID})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"hidden": hidden})
}

// putFilters handles PUT /api/v1/filters. The deck is rebuilt.
func (s *Server) putFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	f := userstate.Filters{
		Type:      catalog.ContentType(req.Type),
		Genres:    req.Genres,
		Providers: req.Providers,
	}
	if err := s.session.ApplyFilters(r.Context(), f); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.session.State(DefaultDeckLimit))
}

// getFilters handles GET /api/v1/filters
func (s *Server) getFilters(w http.ResponseWriter, r *http.Request) {
	f, onboarded, err := s.client.Filters(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, filtersResponse{Filters: f, Onboarded: onboarded})
}

// getProfile handles GET /api/v1/profile
func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.client.Profile(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// getList handles GET /api/v1/lists/{name}
func (s *Server) getList(w http.ResponseWriter, r *http.Request) {
	name, err := listParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	entries, err := s.client.List(r.Context(), name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// deleteListEntry handles DELETE /api/v1/lists/{name}/{type}/{id}
func (s *Server) deleteListEntry(w http.ResponseWriter, r *http.Request) {
	name, err := listParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	key, err := keyParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.client.RemoveFromList(r.Context(), name, key); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getGenres handles GET /api/v1/catalog/{type}/genres
func (s *Server) getGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.client.Genres(r.Context(), catalog.ContentType(chi.URLParam(r, "type")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, genres)
}

// getProviders handles GET /api/v1/catalog/{type}/providers
func (s *Server) getProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := s.client.WatchProviders(r.Context(), catalog.ContentType(chi.URLParam(r, "type")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, providers)
}

// getTitle handles GET /api/v1/titles/{type}/{id}
func (s *Server) getTitle(w http.ResponseWriter, r *http.Request) {
	key, err := keyParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	details, err := s.client.TitleDetails(r.Context(), key.Type, key.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// getAvailability handles GET /api/v1/titles/{type}/{id}/providers
func (s *Server) getAvailability(w http.ResponseWriter, r *http.Request) {
	key, err := keyParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	availability, err := s.client.Availability(r.Context(), key.Type, key.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, availability)
}

// interpretMood handles POST /api/v1/mood
func (s *Server) interpretMood(w http.ResponseWriter, r *http.Request) {
	var req moodRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	ids, err := s.client.InterpretMood(r.Context(), catalog.ContentType(req.Type), req.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, moodResponse{GenreIDs: ids})
}

func listParam(r *http.Request) (userstate.ListName, error) {
	name, err := userstate.ParseListName(chi.URLParam(r, "name"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrInvalidInput, err)
	}
	return name, nil
}

func keyParams(r *http.Request) (catalog.Key, error) {
	t := catalog.ContentType(chi.URLParam(r, "type"))
	if !t.Valid() {
		return catalog.Key{}, fmt.Errorf("%w: content type must be movie or tv", core.ErrInvalidInput)
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return catalog.Key{}, fmt.Errorf("%w: invalid id %q", core.ErrInvalidInput, chi.URLParam(r, "id"))
	}
	return catalog.Key{Type: t, ID: id}, nil
}
