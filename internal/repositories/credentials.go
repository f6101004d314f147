package repositories

import (
	"database/sql"
	"fmt"
)

// CredentialRepository persists opaque credential strings in the
// credentials table. Implements auth.CredentialStore.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Save upserts the value for a key. Idempotent; overwrites any prior value.
func (r *CredentialRepository) Save(key, value string) error {
	query := `
		INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to save credential %s: %w", key, err)
	}

	return nil
}

// Read returns the stored value for a key. Absence is reported through the
// boolean, not an error.
func (r *CredentialRepository) Read(key string) (string, bool, error) {
	var value string

	err := r.db.QueryRow("SELECT value FROM credentials WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read credential %s: %w", key, err)
	}

	return value, true, nil
}

// Delete removes the entry for a key; no-op if absent.
func (r *CredentialRepository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM credentials WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete credential %s: %w", key, err)
	}

	return nil
}
