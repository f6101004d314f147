// Spotify Web API client built on the authenticated request [Pipeline]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/domgiordano/xomify/internal/models"
	"github.com/domgiordano/xomify/internal/shared"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

// maxPages caps next-URL traversal so a misbehaving response cannot loop
// forever.
const maxPages = 100

// Valid time ranges for top-item endpoints.
const (
	RangeShortTerm  = "short_term"
	RangeMediumTerm = "medium_term"
	RangeLongTerm   = "long_term"
)

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyFollowers struct {
	Total int `json:"total"`
}

type spotifyUser struct {
	ID          string           `json:"id"`
	DisplayName string           `json:"display_name"`
	Email       string           `json:"email"`
	Country     string           `json:"country"`
	Product     string           `json:"product"` // premium, free, etc.
	Followers   spotifyFollowers `json:"followers"`
	Images      []spotifyImage   `json:"images"`
}

type spotifyArtist struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Genres    []string         `json:"genres"`
	Followers spotifyFollowers `json:"followers"`
	URI       string           `json:"uri"`
}

type spotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []spotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	URI         string          `json:"uri"`
}

type spotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []spotifyArtist `json:"artists"`
	Album      spotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

type spotifyPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	URI         string `json:"uri"`
	Tracks      struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// paging is one offset/limit or cursor page; Next is an absolute URL in
// both styles, which is what makes "get all pages" uniform.
type paging[T any] struct {
	Items []T     `json:"items"`
	Total int     `json:"total"`
	Next  *string `json:"next"`
}

// SpotifyClient wraps the Spotify Web API endpoints the app consumes.
// Endpoint methods are thin; auth, classification, and decoding live in
// the [Pipeline].
type SpotifyClient struct {
	pipeline *Pipeline
	baseURL  string
}

// NewSpotifyClient creates a client over the given pipeline.
func NewSpotifyClient(pipeline *Pipeline) *SpotifyClient {
	return &SpotifyClient{pipeline: pipeline, baseURL: spotifyBaseURL}
}

// Profile retrieves the current authenticated user's profile.
func (s *SpotifyClient) Profile(ctx context.Context) (*models.User, error) {
	var user spotifyUser
	if err := s.pipeline.Execute(ctx, http.MethodGet, s.baseURL+"/me", nil, &user); err != nil {
		return nil, err
	}

	profile := models.User{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
		Followers:   user.Followers.Total,
	}
	if len(user.Images) > 0 {
		profile.ImageURL = user.Images[0].URL
	}

	return &profile, nil
}

// TopTracks retrieves the user's top tracks for a time range, following
// offset pagination until limit items (0 for all pages).
func (s *SpotifyClient) TopTracks(ctx context.Context, timeRange string, limit int) ([]models.Track, error) {
	first := fmt.Sprintf("%s/me/top/tracks?time_range=%s&limit=50", s.baseURL, rangeOrDefault(timeRange))

	items, err := allPages[spotifyTrack](ctx, s.pipeline, first, limit)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(items))
	for _, t := range items {
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}

// TopArtists retrieves the user's top artists for a time range.
func (s *SpotifyClient) TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Artist, error) {
	first := fmt.Sprintf("%s/me/top/artists?time_range=%s&limit=50", s.baseURL, rangeOrDefault(timeRange))

	items, err := allPages[spotifyArtist](ctx, s.pipeline, first, limit)
	if err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(items))
	for _, a := range items {
		artists = append(artists, convertArtist(a))
	}
	return artists, nil
}

// FollowedArtists retrieves all artists the user follows. The endpoint
// uses cursor (after) pagination; the next URL carries the cursor, so
// traversal is identical to the offset endpoints.
func (s *SpotifyClient) FollowedArtists(ctx context.Context) ([]models.Artist, error) {
	next := s.baseURL + "/me/following?type=artist&limit=50"

	var artists []models.Artist
	for page := 0; next != "" && page < maxPages; page++ {
		var response struct {
			Artists paging[spotifyArtist] `json:"artists"`
		}
		if err := s.pipeline.Execute(ctx, http.MethodGet, next, nil, &response); err != nil {
			return nil, err
		}

		for _, a := range response.Artists.Items {
			artists = append(artists, convertArtist(a))
		}

		next = ""
		if response.Artists.Next != nil {
			next = *response.Artists.Next
		}
	}

	return artists, nil
}

// SavedAlbums retrieves the user's saved albums, following offset
// pagination until limit items (0 for all pages).
func (s *SpotifyClient) SavedAlbums(ctx context.Context, limit int) ([]models.Album, error) {
	type savedAlbum struct {
		AddedAt string       `json:"added_at"`
		Album   spotifyAlbum `json:"album"`
	}

	items, err := allPages[savedAlbum](ctx, s.pipeline, s.baseURL+"/me/albums?limit=50", limit)
	if err != nil {
		return nil, err
	}

	albums := make([]models.Album, 0, len(items))
	for _, item := range items {
		albums = append(albums, convertAlbum(item.Album))
	}
	return albums, nil
}

// NewReleases retrieves newly released albums.
func (s *SpotifyClient) NewReleases(ctx context.Context, limit int) ([]models.Album, error) {
	next := s.baseURL + "/browse/new-releases?limit=50"

	var albums []models.Album
	for page := 0; next != "" && page < maxPages; page++ {
		var response struct {
			Albums paging[spotifyAlbum] `json:"albums"`
		}
		if err := s.pipeline.Execute(ctx, http.MethodGet, next, nil, &response); err != nil {
			return nil, err
		}

		for _, a := range response.Albums.Items {
			albums = append(albums, convertAlbum(a))
			if limit > 0 && len(albums) >= limit {
				return albums[:limit], nil
			}
		}

		next = ""
		if response.Albums.Next != nil {
			next = *response.Albums.Next
		}
	}

	return albums, nil
}

// Playlists retrieves all playlists of the current user.
func (s *SpotifyClient) Playlists(ctx context.Context) ([]models.Playlist, error) {
	items, err := allPages[spotifyPlaylist](ctx, s.pipeline, s.baseURL+"/me/playlists?limit=50", 0)
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(items))
	for _, p := range items {
		playlists = append(playlists, models.Playlist{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			TrackCount:  p.Tracks.Total,
			Public:      p.Public,
			URI:         p.URI,
		})
	}
	return playlists, nil
}

// CreatePlaylist creates a playlist for the current user.
func (s *SpotifyClient) CreatePlaylist(ctx context.Context, name, description string, public bool) (*models.Playlist, error) {
	profile, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var created spotifyPlaylist
	endpoint := fmt.Sprintf("%s/users/%s/playlists", s.baseURL, url.PathEscape(profile.ID))
	if err := s.pipeline.Execute(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		Public:      created.Public,
		URI:         created.URI,
	}, nil
}

// AddTracks adds track URIs to a playlist in batches of 100, the endpoint
// maximum.
func (s *SpotifyClient) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return fmt.Errorf("%w: no track URIs provided", shared.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("%s/playlists/%s/tracks", s.baseURL, url.PathEscape(playlistID))
	for start := 0; start < len(uris); start += 100 {
		end := min(start+100, len(uris))
		body := map[string]any{"uris": uris[start:end]}
		if err := s.pipeline.Execute(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			return err
		}
	}

	return nil
}

// SearchTrack searches for a track by title and artist, returning the best
// match or [shared.ErrNotFound].
func (s *SpotifyClient) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	query := title
	if artist != "" {
		query = fmt.Sprintf("track:%s artist:%s", title, artist)
	}

	endpoint := fmt.Sprintf("%s/search?type=track&limit=1&q=%s", s.baseURL, url.QueryEscape(query))

	var response struct {
		Tracks paging[spotifyTrack] `json:"tracks"`
	}
	if err := s.pipeline.Execute(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	if len(response.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: no match for %q", shared.ErrNotFound, query)
	}

	track := convertTrack(response.Tracks.Items[0])
	return &track, nil
}

// allPages follows next URLs collecting items until limit (0 for all).
func allPages[T any](ctx context.Context, pipeline *Pipeline, first string, limit int) ([]T, error) {
	var items []T

	next := first
	for page := 0; next != "" && page < maxPages; page++ {
		var response paging[T]
		if err := pipeline.Execute(ctx, http.MethodGet, next, nil, &response); err != nil {
			return nil, err
		}

		items = append(items, response.Items...)
		if limit > 0 && len(items) >= limit {
			return items[:limit], nil
		}

		next = ""
		if response.Next != nil {
			next = *response.Next
		}
	}

	return items, nil
}

func rangeOrDefault(timeRange string) string {
	switch timeRange {
	case RangeShortTerm, RangeMediumTerm, RangeLongTerm:
		return timeRange
	default:
		return RangeMediumTerm
	}
}

func convertTrack(t spotifyTrack) models.Track {
	track := models.Track{
		ID:         t.ID,
		Title:      t.Name,
		Album:      t.Album.Name,
		Duration:   t.DurationMS / 1000,
		Popularity: t.Popularity,
		URI:        t.URI,
	}
	if len(t.Artists) > 0 {
		track.Artist = joinArtists(t.Artists)
	}
	return track
}

func convertArtist(a spotifyArtist) models.Artist {
	return models.Artist{
		ID:        a.ID,
		Name:      a.Name,
		Genres:    a.Genres,
		Followers: a.Followers.Total,
		URI:       a.URI,
	}
}

func convertAlbum(a spotifyAlbum) models.Album {
	album := models.Album{
		ID:          a.ID,
		Name:        a.Name,
		ReleaseDate: a.ReleaseDate,
		TotalTracks: a.TotalTracks,
		URI:         a.URI,
	}
	if len(a.Artists) > 0 {
		album.Artist = joinArtists(a.Artists)
	}
	return album
}

func joinArtists(artists []spotifyArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}
