// Package services implements the authenticated request pipeline and the
// HTTP clients built on it.
//
// # Pipeline
//
// [Pipeline.Execute] performs one outbound call with correct auth and
// classifies the response uniformly for every caller:
//
//   - 2xx        → JSON decode into the caller's shape; a mismatch is a
//     [DecodeError], distinct from transport and server failures
//   - 401        → [shared.ErrUnauthorized]; the session is invalidated so
//     the UI can prompt a fresh login
//   - 404        → [shared.ErrNotFound]
//   - 429        → [RateLimitError] carrying the Retry-After value
//     (1 second when absent or unparsable)
//   - other      → [StatusError] with status and body text
//   - no response → wrapped [shared.ErrTransport]
//
// The pipeline never retries; [RateLimitError] is retryable by the caller
// after the indicated delay. The only cascaded side effect is the
// session's single-flight refresh inside the token lookup.
//
// # Clients
//
// [SpotifyClient] wraps the Spotify Web API endpoints the app consumes:
// profile, top items, followed artists, saved albums, new releases,
// playlists, search, playlist creation. Paginated endpoints follow the
// response's next URL, so offset/limit and cursor (after) styles are
// transparent to callers that fetch all pages.
//
// [BackendClient] consumes the xomify statistics backend (Wrapped, Release
// Radar) with a static bearer token, tolerating snake_case or camelCase
// field names and string-encoded counts. It also implements the auth
// package's TokenSink for refresh-token propagation.
package services
