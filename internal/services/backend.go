// Client for the xomify statistics backend
//
// The backend serves precomputed Wrapped and Release Radar data over
// HTTPS from a managed NoSQL store. Field names arrive as snake_case or
// camelCase depending on the write path, and some counts arrive as
// strings; decoding tolerates both.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/domgiordano/xomify/internal/models"
	"github.com/domgiordano/xomify/internal/shared"
)

// BackendClient performs static-token authenticated calls to the xomify
// backend. Responses are kept in a simple in-memory map per user; nothing
// is persisted.
//
// Implements the auth package's TokenSink for refresh-token propagation.
type BackendClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger

	mu      sync.Mutex
	wrapped map[string]*models.WrappedSummary
}

// NewBackendClient creates a backend client for the given base URL and
// static API token.
func NewBackendClient(baseURL, token string, client *http.Client, logger *log.Logger) *BackendClient {
	if baseURL == "" {
		baseURL = "https://api.xomify.com"
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &BackendClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: client,
		logger:     logger,
		wrapped:    make(map[string]*models.WrappedSummary),
	}
}

// Wrapped retrieves the precomputed year-in-review summary for a user.
// Results are memoized in memory for the life of the process.
func (b *BackendClient) Wrapped(ctx context.Context, userID string) (*models.WrappedSummary, error) {
	b.mu.Lock()
	if cached, ok := b.wrapped[userID]; ok {
		b.mu.Unlock()
		return cached, nil
	}
	b.mu.Unlock()

	var payload wrappedPayload
	endpoint := fmt.Sprintf("%s/wrapped/%s", b.baseURL, url.PathEscape(userID))
	if err := b.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	summary := payload.toModel()
	if summary.UserID == "" {
		summary.UserID = userID
	}

	b.mu.Lock()
	b.wrapped[userID] = summary
	b.mu.Unlock()

	return summary, nil
}

// ReleaseRadar retrieves fresh releases from the user's followed artists.
func (b *BackendClient) ReleaseRadar(ctx context.Context, userID string) ([]models.ReleaseRadarEntry, error) {
	var payload struct {
		Entries []radarEntryPayload `json:"entries"`
	}

	endpoint := fmt.Sprintf("%s/release-radar/%s", b.baseURL, url.PathEscape(userID))
	if err := b.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	entries := make([]models.ReleaseRadarEntry, 0, len(payload.Entries))
	for _, e := range payload.Entries {
		entries = append(entries, e.toModel())
	}
	return entries, nil
}

// PushRefreshToken uploads the current refresh token so server-side
// background jobs can refresh on the user's behalf. Callers treat failure
// as best-effort; see auth.TokenSink.
func (b *BackendClient) PushRefreshToken(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	return b.do(ctx, http.MethodPost, b.baseURL+"/auth/refresh-token", body, nil)
}

func (b *BackendClient) get(ctx context.Context, endpoint string, result any) error {
	return b.do(ctx, http.MethodGet, endpoint, nil, result)
}

func (b *BackendClient) do(ctx context.Context, method, endpoint string, body, result any) error {
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = strings.NewReader(string(data))
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+b.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	return ClassifyResponse(resp, result)
}

// pick returns the first raw value present under any of the given keys.
func pick(fields map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		if raw, ok := fields[key]; ok {
			return raw, true
		}
	}
	return nil, false
}

// decodeField decodes the first present key into dest, ignoring values
// that do not match; absent fields stay zero.
func decodeField[T any](fields map[string]json.RawMessage, dest *T, keys ...string) {
	if raw, ok := pick(fields, keys...); ok {
		_ = json.Unmarshal(raw, dest)
	}
}

type wrappedPayload struct {
	UserID          string
	Year            models.FlexInt
	MinutesListened models.FlexInt
	TrackCount      models.FlexInt
	ArtistCount     models.FlexInt
	TopGenres       []string
	TopTracks       []backendTrack
	TopArtists      []backendArtist
}

func (p *wrappedPayload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	decodeField(fields, &p.UserID, "user_id", "userId")
	decodeField(fields, &p.Year, "year")
	decodeField(fields, &p.MinutesListened, "minutes_listened", "minutesListened")
	decodeField(fields, &p.TrackCount, "track_count", "trackCount")
	decodeField(fields, &p.ArtistCount, "artist_count", "artistCount")
	decodeField(fields, &p.TopGenres, "top_genres", "topGenres")
	decodeField(fields, &p.TopTracks, "top_tracks", "topTracks")
	decodeField(fields, &p.TopArtists, "top_artists", "topArtists")
	return nil
}

func (p *wrappedPayload) toModel() *models.WrappedSummary {
	summary := &models.WrappedSummary{
		UserID:          p.UserID,
		Year:            p.Year.Int(),
		MinutesListened: p.MinutesListened.Int(),
		TrackCount:      p.TrackCount.Int(),
		ArtistCount:     p.ArtistCount.Int(),
		TopGenres:       p.TopGenres,
	}
	for _, t := range p.TopTracks {
		summary.TopTracks = append(summary.TopTracks, t.toModel())
	}
	for _, a := range p.TopArtists {
		summary.TopArtists = append(summary.TopArtists, a.toModel())
	}
	return summary
}

type backendTrack struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration models.FlexInt
	URI      string
}

func (t *backendTrack) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	decodeField(fields, &t.ID, "id")
	decodeField(fields, &t.Title, "title", "name")
	decodeField(fields, &t.Artist, "artist", "artist_name", "artistName")
	decodeField(fields, &t.Album, "album", "album_name", "albumName")
	decodeField(fields, &t.Duration, "duration", "duration_s", "durationS")
	decodeField(fields, &t.URI, "uri")
	return nil
}

func (t backendTrack) toModel() models.Track {
	return models.Track{
		ID:       t.ID,
		Title:    t.Title,
		Artist:   t.Artist,
		Album:    t.Album,
		Duration: t.Duration.Int(),
		URI:      t.URI,
	}
}

type backendArtist struct {
	ID        string
	Name      string
	Genres    []string
	Followers models.FlexInt
	URI       string
}

func (a *backendArtist) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	decodeField(fields, &a.ID, "id")
	decodeField(fields, &a.Name, "name")
	decodeField(fields, &a.Genres, "genres")
	decodeField(fields, &a.Followers, "followers", "follower_count", "followerCount")
	decodeField(fields, &a.URI, "uri")
	return nil
}

func (a backendArtist) toModel() models.Artist {
	return models.Artist{
		ID:        a.ID,
		Name:      a.Name,
		Genres:    a.Genres,
		Followers: a.Followers.Int(),
		URI:       a.URI,
	}
}

type radarEntryPayload struct {
	AlbumID     string
	AlbumName   string
	ArtistID    string
	ArtistName  string
	ReleaseDate string
	TrackCount  models.FlexInt
	URI         string
}

func (e *radarEntryPayload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	decodeField(fields, &e.AlbumID, "album_id", "albumId")
	decodeField(fields, &e.AlbumName, "album_name", "albumName")
	decodeField(fields, &e.ArtistID, "artist_id", "artistId")
	decodeField(fields, &e.ArtistName, "artist_name", "artistName")
	decodeField(fields, &e.ReleaseDate, "release_date", "releaseDate")
	decodeField(fields, &e.TrackCount, "track_count", "trackCount")
	decodeField(fields, &e.URI, "uri")
	return nil
}

func (e radarEntryPayload) toModel() models.ReleaseRadarEntry {
	return models.ReleaseRadarEntry{
		Album: models.Album{
			ID:          e.AlbumID,
			Name:        e.AlbumName,
			Artist:      e.ArtistName,
			ReleaseDate: e.ReleaseDate,
			TotalTracks: e.TrackCount.Int(),
			URI:         e.URI,
		},
		ArtistID:   e.ArtistID,
		ArtistName: e.ArtistName,
		TrackCount: e.TrackCount.Int(),
	}
}
