// Package tasks orchestrates playlist construction from release radar data with real-time progress reporting.
//
// # Core Operation
//
// The [BuildEngine] interface defines one operation:
//
//  1. [BuildEngine.BuildFromRadar] : Release Radar → Spotify playlist
//     - Fetches release radar entries from the statistics backend
//     - Searches each release's lead track on Spotify via a rate-limited worker pool
//     - Creates a playlist and adds every matched track
//     - Returns detailed results including misses
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [PlaylistEngine] implements [BuildEngine] with dependencies on:
//   - [PlaylistService] : Spotify Web API client (services.SpotifyClient)
//   - [RadarSource] : statistics backend client (services.BackendClient)
package tasks
