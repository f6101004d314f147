package auth

import (
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	t.Run("ReadMissingKey", func(t *testing.T) {
		_, ok, err := store.Read("absent")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if ok {
			t.Error("Read() reported presence for a missing key")
		}
	})

	t.Run("SaveAndRead", func(t *testing.T) {
		if err := store.Save("k", "v"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, ok, err := store.Read("k")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if !ok || got != "v" {
			t.Errorf("Read() = %q, %v, want v, true", got, ok)
		}
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		store.Save("k", "v1")
		store.Save("k", "v2")
		got, _, _ := store.Read("k")
		if got != "v2" {
			t.Errorf("Read() = %q, want v2", got)
		}
	})

	t.Run("DeleteMissingKeyIsNoOp", func(t *testing.T) {
		if err := store.Delete("never_saved"); err != nil {
			t.Errorf("Delete() error = %v, want nil", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store.Save("gone", "v")
		if err := store.Delete("gone"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, ok, _ := store.Read("gone"); ok {
			t.Error("key still present after delete")
		}
	})
}

func TestCredentialRecord(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		store := NewMemoryStore()
		want := Credentials{
			AccessToken:  "a1",
			RefreshToken: "r1",
			ExpiresAt:    time.Unix(1924992000, 0),
		}

		if err := persistCredentials(store, want); err != nil {
			t.Fatalf("persistCredentials() error = %v", err)
		}

		got, err := loadCredentials(store)
		if err != nil {
			t.Fatalf("loadCredentials() error = %v", err)
		}
		if got.AccessToken != want.AccessToken {
			t.Errorf("AccessToken = %q, want %q", got.AccessToken, want.AccessToken)
		}
		if got.RefreshToken != want.RefreshToken {
			t.Errorf("RefreshToken = %q, want %q", got.RefreshToken, want.RefreshToken)
		}
		if !got.ExpiresAt.Equal(want.ExpiresAt) {
			t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, want.ExpiresAt)
		}
	})

	t.Run("EmptyStore", func(t *testing.T) {
		got, err := loadCredentials(NewMemoryStore())
		if err != nil {
			t.Fatalf("loadCredentials() error = %v", err)
		}
		if got.AccessToken != "" || got.RefreshToken != "" || !got.ExpiresAt.IsZero() {
			t.Errorf("loadCredentials() = %+v, want zero record", got)
		}
	})

	t.Run("UnparsableExpiry", func(t *testing.T) {
		store := NewMemoryStore()
		store.Save(KeyAccessToken, "a1")
		store.Save(KeyExpiresAt, "not-a-timestamp")

		got, err := loadCredentials(store)
		if err != nil {
			t.Fatalf("loadCredentials() error = %v", err)
		}
		if !got.ExpiresAt.IsZero() {
			t.Errorf("ExpiresAt = %v, want zero", got.ExpiresAt)
		}
	})

	t.Run("ClearIsIdempotent", func(t *testing.T) {
		store := NewMemoryStore()
		persistCredentials(store, Credentials{AccessToken: "a1", RefreshToken: "r1", ExpiresAt: time.Now()})

		for i := 0; i < 2; i++ {
			if err := clearCredentials(store); err != nil {
				t.Fatalf("clearCredentials() call %d error = %v", i+1, err)
			}
		}

		if _, ok, _ := store.Read(KeyAccessToken); ok {
			t.Error("access token still present after clear")
		}
	})
}
