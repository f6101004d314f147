package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/domgiordano/xomify/internal/models"
	"github.com/domgiordano/xomify/internal/shared"
	"golang.org/x/time/rate"
)

// TrackQuery identifies a track to search for on Spotify.
type TrackQuery struct {
	Title  string // Track or album title
	Artist string // Artist name
}

// TrackMatchResult represents the result of attempting to match a single query.
type TrackMatchResult struct {
	Query   TrackQuery    // Original query from the radar
	Matched *models.Track // Matched track (nil if not found)
	Error   error         // Error if match failed
}

// BuildOpts contains configuration for playlist builds.
type BuildOpts struct {
	Description string  // Playlist description (default derived from the name)
	Public      bool    // Playlist visibility
	NumWorkers  int     // Concurrent search workers (default: 5)
	RateLimit   float64 // Requests per second (default: 5)
}

// BuildResult contains all data from a playlist build operation.
type BuildResult struct {
	Playlist        *models.Playlist   // Created playlist
	TrackMatches    []TrackMatchResult // Individual track match results
	SuccessCount    int                // Number of successfully matched tracks
	FailedCount     int                // Number of failed matches
	TotalQueries    int                // Total queries processed
	MatchPercentage float64            // Success rate as percentage
}

// BuildEngine defines operations for building playlists from radar data.
type BuildEngine interface {
	// BuildFromRadar fetches the user's release radar, matches each release
	// on Spotify, and creates a playlist from the matches.
	BuildFromRadar(ctx context.Context, progress chan<- ProgressUpdate, userID, name string, opts BuildOpts) (*BuildResult, error)
}

// PlaylistService defines the Spotify operations the engine depends on.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type PlaylistService interface {
	SearchTrack(ctx context.Context, title, artist string) (*models.Track, error)
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*models.Playlist, error)
	AddTracks(ctx context.Context, playlistID string, uris []string) error
}

// RadarSource defines the backend operation the engine depends on.
type RadarSource interface {
	ReleaseRadar(ctx context.Context, userID string) ([]models.ReleaseRadarEntry, error)
}

// PlaylistEngine implements BuildEngine for playlist operations.
type PlaylistEngine struct {
	spotify PlaylistService
	radar   RadarSource
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided services.
func NewPlaylistEngine(spotify PlaylistService, radar RadarSource) *PlaylistEngine {
	return &PlaylistEngine{
		spotify: spotify,
		radar:   radar,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

type matchJob struct {
	index int
	query TrackQuery
}

type matchOutcome struct {
	index  int
	result TrackMatchResult
}

// BuildFromRadar builds a playlist from the user's release radar.
//
// Track searches run on a worker pool with a shared rate limiter so bursts
// of releases do not trip the Spotify API. Partial matches still produce a
// playlist; only a fully-missed radar aborts the build.
func (e *PlaylistEngine) BuildFromRadar(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	userID, name string,
	opts BuildOpts,
) (*BuildResult, error) {
	if e.spotify == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if e.radar == nil {
		return nil, fmt.Errorf("%w: backend service not initialized", shared.ErrServiceUnavailable)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Description == "" {
		opts.Description = fmt.Sprintf("Fresh releases from artists you follow: %s", name)
	}

	e.sendProgress(progress, fetchRadarUpdate(1, 1))

	entries, err := e.radar.ReleaseRadar(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch release radar: %v", shared.ErrAPIRequest, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: release radar is empty", shared.ErrNotFound)
	}

	queries := make([]TrackQuery, len(entries))
	for i, entry := range entries {
		queries[i] = TrackQuery{Title: entry.Album.Name, Artist: entry.ArtistName}
	}

	result := &BuildResult{TotalQueries: len(queries)}
	e.sendProgress(progress, searchTracksUpdate(0, len(queries), nil))

	matches := e.matchAll(ctx, progress, queries, opts)
	result.TrackMatches = matches

	for _, match := range matches {
		if match.Matched != nil {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
	}
	result.MatchPercentage = float64(result.SuccessCount) / float64(result.TotalQueries) * 100

	if result.SuccessCount == 0 {
		return result, fmt.Errorf("no tracks were matched - cannot create empty playlist")
	}

	e.sendProgress(progress, createPlaylistUpdate(name))

	playlist, err := e.spotify.CreatePlaylist(ctx, name, opts.Description, opts.Public)
	if err != nil {
		return result, fmt.Errorf("%w: failed to create playlist: %v", shared.ErrAPIRequest, err)
	}
	result.Playlist = playlist

	uris := make([]string, 0, result.SuccessCount)
	for _, match := range matches {
		if match.Matched != nil {
			uris = append(uris, match.Matched.URI)
		}
	}

	e.sendProgress(progress, addTracksUpdate(len(uris)))
	if err := e.spotify.AddTracks(ctx, playlist.ID, uris); err != nil {
		return result, fmt.Errorf("%w: failed to add tracks: %v", shared.ErrAPIRequest, err)
	}

	playlist.TrackCount = len(uris)
	e.sendProgress(progress, playlistCreatedUpdate(playlist))
	return result, nil
}

// matchAll runs track searches on a rate-limited worker pool and returns
// results ordered to match the input queries.
func (e *PlaylistEngine) matchAll(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	queries []TrackQuery,
	opts BuildOpts,
) []TrackMatchResult {
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan matchJob, len(queries))
	outcomes := make(chan matchOutcome, len(queries))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.searchWorker(ctx, &wg, limiter, jobs, outcomes)
	}

	for i, q := range queries {
		jobs <- matchJob{index: i, query: q}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	matches := make([]TrackMatchResult, len(queries))
	completed := 0
	for outcome := range outcomes {
		completed++
		matches[outcome.index] = outcome.result

		if outcome.result.Matched != nil {
			q := outcome.result.Query
			e.sendProgress(progress, searchTracksUpdate(completed, len(queries), &q))
		} else {
			e.sendProgress(progress, searchMissedUpdate(completed, len(queries), outcome.result.Query))
		}
	}
	return matches
}

// searchWorker is a worker goroutine that matches queries from the jobs channel.
func (e *PlaylistEngine) searchWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan matchJob,
	outcomes chan<- matchOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			outcomes <- matchOutcome{
				index:  job.index,
				result: TrackMatchResult{Query: job.query, Error: err},
			}
			continue
		}

		track, err := e.spotify.SearchTrack(ctx, job.query.Title, job.query.Artist)
		outcomes <- matchOutcome{
			index: job.index,
			result: TrackMatchResult{
				Query:   job.query,
				Matched: track,
				Error:   err,
			},
		}
	}
}
