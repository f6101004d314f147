package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func TestNewExchangeContext(t *testing.T) {
	t.Run("ChallengeIsS256OfVerifier", func(t *testing.T) {
		pkce := NewExchangeContext()

		if pkce.Verifier == "" {
			t.Fatal("verifier is empty")
		}

		sum := sha256.Sum256([]byte(pkce.Verifier))
		want := base64.RawURLEncoding.EncodeToString(sum[:])
		if pkce.Challenge != want {
			t.Errorf("Challenge = %q, want %q", pkce.Challenge, want)
		}
	})

	t.Run("VerifierLength", func(t *testing.T) {
		// RFC 7636 requires 43 to 128 characters.
		pkce := NewExchangeContext()
		if n := len(pkce.Verifier); n < 43 || n > 128 {
			t.Errorf("verifier length = %d, want 43..128", n)
		}
	})

	t.Run("ContextsAreUnique", func(t *testing.T) {
		a := NewExchangeContext()
		b := NewExchangeContext()
		if a.Verifier == b.Verifier {
			t.Error("two exchange contexts share a verifier")
		}
	})
}
