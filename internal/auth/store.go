package auth

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Credential store keys. Three application-scoped entries hold the whole
// durable authentication state.
const (
	KeyAccessToken  = "spotify_access_token"
	KeyRefreshToken = "spotify_refresh_token"
	KeyExpiresAt    = "spotify_expires_at"
)

// CredentialStore persists opaque credential strings across process
// restarts. Values are tokens or a stringified Unix timestamp; no parsing
// happens at this layer.
//
// Read reports absence through its boolean, never through the error. Delete
// is a no-op for a missing key.
type CredentialStore interface {
	Save(key, value string) error
	Read(key string) (string, bool, error)
	Delete(key string) error
}

// Credentials is the in-memory form of the durable credential record.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// loadCredentials reads the three store entries. A missing or unparsable
// expiry leaves ExpiresAt zero, which the session treats as expired.
func loadCredentials(store CredentialStore) (Credentials, error) {
	var creds Credentials

	access, ok, err := store.Read(KeyAccessToken)
	if err != nil {
		return creds, fmt.Errorf("failed to read access token: %w", err)
	}
	if ok {
		creds.AccessToken = access
	}

	refresh, ok, err := store.Read(KeyRefreshToken)
	if err != nil {
		return creds, fmt.Errorf("failed to read refresh token: %w", err)
	}
	if ok {
		creds.RefreshToken = refresh
	}

	expiry, ok, err := store.Read(KeyExpiresAt)
	if err != nil {
		return creds, fmt.Errorf("failed to read expiry: %w", err)
	}
	if ok {
		if unix, err := strconv.ParseInt(expiry, 10, 64); err == nil {
			creds.ExpiresAt = time.Unix(unix, 0)
		}
	}

	return creds, nil
}

// persistCredentials writes all three entries.
func persistCredentials(store CredentialStore, creds Credentials) error {
	if err := store.Save(KeyAccessToken, creds.AccessToken); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	if err := store.Save(KeyRefreshToken, creds.RefreshToken); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	if err := store.Save(KeyExpiresAt, strconv.FormatInt(creds.ExpiresAt.Unix(), 10)); err != nil {
		return fmt.Errorf("failed to save expiry: %w", err)
	}
	return nil
}

// clearCredentials deletes all three entries. Deleting an absent key is a
// no-op, so repeated calls succeed.
func clearCredentials(store CredentialStore) error {
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyExpiresAt} {
		if err := store.Delete(key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}

// MemoryStore is an in-process [CredentialStore] for tests and ephemeral
// runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryStore) Read(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
