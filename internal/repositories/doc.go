// Package repositories implements durable storage over SQLite.
//
// The only persistent state the client keeps is the credential record:
// three opaque string entries (access token, refresh token, expiry) in the
// credentials table. [CredentialRepository] implements the auth package's
// CredentialStore contract over it; the 0600-mode database file is the CLI
// substitute for a mobile keychain. Catalog data (tracks, playlists,
// statistics) is deliberately never persisted.
package repositories
