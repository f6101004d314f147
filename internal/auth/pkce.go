package auth

import "golang.org/x/oauth2"

// ExchangeContext is a single-use PKCE verifier/challenge pair.
//
// Created at the start of a login attempt, consumed exactly once when the
// authorization code is exchanged, then discarded. Reusing a context across
// login attempts would be a replay risk.
type ExchangeContext struct {
	Verifier  string
	Challenge string
}

// NewExchangeContext generates a fresh PKCE pair: a cryptographically
// random base64url verifier and its base64url-encoded SHA-256 challenge.
func NewExchangeContext() ExchangeContext {
	verifier := oauth2.GenerateVerifier()
	return ExchangeContext{
		Verifier:  verifier,
		Challenge: oauth2.S256ChallengeFromVerifier(verifier),
	}
}
