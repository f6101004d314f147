// Package auth owns the Spotify OAuth 2.0 (PKCE) token lifecycle.
//
// # Session
//
// [Session] is the single owner of authentication state: the interactive
// login handshake, in-memory token state, expiry evaluation, refresh
// orchestration, and credential persistence. All mutations of the stored
// credential record go through it; no other component touches the
// [CredentialStore].
//
// Validity of the access token is evaluated against a 60 second safety
// margin ([ExpiryMargin]) so a request is never dispatched with a token
// that expires mid-flight.
//
// # Refresh single-flight
//
// Concurrent [Session.Token] callers during an expired-token window
// collapse into one network refresh; all callers share the outcome. Some
// authorization servers invalidate a refresh token after first use, so a
// refresh storm would log the user out.
//
// # Authorization scheme
//
// The session authenticates as a public PKCE client: the token endpoint
// receives the client id and code verifier, never a client secret. The
// interactive part of the handshake is abstracted behind [Authorizer];
// [BrowserAuthorizer] implements it with the system browser and a local
// callback server.
//
// # Backend propagation
//
// After a successful login (and after refresh-token rotation) the current
// refresh token is pushed to the xomify backend through [TokenSink] so
// server-side background jobs can act on the user's behalf. Propagation is
// best-effort: it runs asynchronously and never blocks or fails the
// primary flow.
package auth
