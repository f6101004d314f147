package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/domgiordano/xomify/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// ExpiryMargin is subtracted from the stored expiry when evaluating token
// validity. It absorbs clock skew and in-flight request latency.
const ExpiryMargin = 60 * time.Second

// Scopes is the fixed list requested on login: profile, top items,
// playlist read/write, follow read/write, library read.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-top-read",
	"playlist-read-private",
	"playlist-modify-public",
	"playlist-modify-private",
	"user-follow-read",
	"user-follow-modify",
	"user-library-read",
}

// State describes the session's position in the auth lifecycle.
type State string

const (
	StateLoggedOut State = "logged_out"
	StateLoggedIn  State = "logged_in"
	StateExpired   State = "expired"
)

// Authorizer presents an interactive authorization session and returns the
// authorization code captured from the redirect.
//
// Failure modes map onto [shared.ErrUserCancelled],
// [shared.ErrNoCodeReturned] and [shared.ErrSessionFailed].
type Authorizer interface {
	Authorize(ctx context.Context, authURL, state string) (code string, err error)
}

// TokenSink receives the current refresh token after login or rotation so
// the backend can run background jobs on the user's behalf.
type TokenSink interface {
	PushRefreshToken(ctx context.Context, refreshToken string) error
}

// refreshFlight carries the outcome of one in-flight refresh to every
// caller that joined it.
type refreshFlight struct {
	done  chan struct{}
	token string
	err   error
}

// Session owns authentication state for the user's Spotify account. It is
// the sole writer of the [CredentialStore]; see the package documentation.
type Session struct {
	config     *oauth2.Config
	store      CredentialStore
	authorizer Authorizer
	sink       TokenSink
	httpClient *http.Client
	logger     *log.Logger
	now        func() time.Time

	mu         sync.Mutex
	creds      Credentials
	loggingIn  bool
	inflight   *refreshFlight
	generation uint64 // bumped whenever credentials are cleared or replaced
}

// SessionOpts contains dependencies for creating a [Session].
type SessionOpts struct {
	ClientID    string
	RedirectURI string
	Store       CredentialStore
	Authorizer  Authorizer
	Sink        TokenSink    // optional
	HTTPClient  *http.Client // optional, used for token endpoint calls
	Logger      *log.Logger  // optional
}

// NewSession creates a session and restores any persisted credential
// record, so an app relaunch with a far-future expiry needs no network
// call before the first request.
func NewSession(opts SessionOpts) (*Session, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: missing credential store", shared.ErrInvalidConfig)
	}
	if opts.RedirectURI == "" {
		opts.RedirectURI = "http://127.0.0.1:3000/callback"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:    opts.ClientID,
		RedirectURL: opts.RedirectURI,
		Scopes:      Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	s := &Session{
		config:     config,
		store:      opts.Store,
		authorizer: opts.Authorizer,
		sink:       opts.Sink,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		now:        time.Now,
	}

	creds, err := loadCredentials(s.store)
	if err != nil {
		return nil, err
	}
	s.creds = creds

	return s, nil
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.creds.AccessToken == "" {
		return StateLoggedOut
	}
	if s.validLocked() {
		return StateLoggedIn
	}
	return StateExpired
}

// ExpiresAt returns the absolute expiry instant of the current access token.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.ExpiresAt
}

// validLocked reports whether the access token is usable without a network
// call. Callers hold s.mu.
func (s *Session) validLocked() bool {
	return s.creds.AccessToken != "" && s.now().Before(s.creds.ExpiresAt.Add(-ExpiryMargin))
}

// Login runs the full interactive PKCE handshake: fresh exchange context,
// authorization URL, delegated browser session, code-for-token exchange,
// persistence. Only one login may be in flight; a concurrent call fails
// fast with [shared.ErrLoginInProgress] instead of opening a second
// interactive session.
//
// Accepted entry states are logged out and expired. A session holding a
// valid token refuses with [shared.ErrInvalidInput]; log out first to
// switch accounts.
func (s *Session) Login(ctx context.Context) error {
	s.mu.Lock()
	if s.loggingIn {
		s.mu.Unlock()
		return shared.ErrLoginInProgress
	}
	if s.validLocked() {
		s.mu.Unlock()
		return fmt.Errorf("%w: already logged in", shared.ErrInvalidInput)
	}
	s.loggingIn = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loggingIn = false
		s.mu.Unlock()
	}()

	if s.authorizer == nil {
		return fmt.Errorf("%w: no authorizer configured", shared.ErrSessionFailed)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}

	pkce := NewExchangeContext()
	authURL := s.config.AuthCodeURL(state, oauth2.S256ChallengeOption(pkce.Verifier))

	code, err := s.authorizer.Authorize(ctx, authURL, state)
	if err != nil {
		// Taxonomy errors (UserCancelled, NoCodeReturned, SessionFailed)
		// pass through so the caller can tell an intentional cancel from a
		// failure.
		return err
	}

	tok, err := s.config.Exchange(s.httpContext(ctx), code, oauth2.VerifierOption(pkce.Verifier))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTokenExchangeFailed, err)
	}

	s.mu.Lock()
	s.generation++
	s.creds = Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	refreshToken := s.creds.RefreshToken
	perr := persistCredentials(s.store, s.creds)
	s.mu.Unlock()

	if perr != nil {
		return fmt.Errorf("failed to persist credentials: %w", perr)
	}

	s.propagate(refreshToken)
	return nil
}

// Token returns a currently valid access token, the primary entry point
// for the request pipeline. An expired token triggers (or joins) a
// single-flight refresh; with no refresh token available it fails with
// [shared.ErrNotAuthenticated] and no network call happens.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()

	if s.validLocked() {
		token := s.creds.AccessToken
		s.mu.Unlock()
		return token, nil
	}

	if f := s.inflight; f != nil {
		s.mu.Unlock()
		select {
		case <-f.done:
			return f.token, f.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if s.creds.RefreshToken == "" {
		s.mu.Unlock()
		return "", shared.ErrNotAuthenticated
	}

	f := &refreshFlight{done: make(chan struct{})}
	s.inflight = f
	refreshToken := s.creds.RefreshToken
	gen := s.generation
	s.mu.Unlock()

	f.token, f.err = s.refresh(ctx, refreshToken, gen)
	close(f.done)
	return f.token, f.err
}

// refresh exchanges the refresh token for a fresh access token and
// persists the outcome. Exactly one caller runs this at a time; see Token.
//
// gen is the credential generation the flight started under. A logout,
// invalidation, or re-login during the network call bumps the generation;
// the cleared or replaced state wins and the refresh result is discarded.
func (s *Session) refresh(ctx context.Context, refreshToken string, gen uint64) (string, error) {
	src := s.config.TokenSource(s.httpContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		s.logger.Warn("discarding refresh that completed after credentials changed")
		return "", shared.ErrNotAuthenticated
	}
	s.inflight = nil

	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			// The authorization server rejected the refresh token (revoked
			// or consumed); only a new interactive login can recover.
			s.logger.Warn("refresh token rejected, clearing credentials", "status", retrieveErr.Response.StatusCode)
			if cerr := s.clearLocked(); cerr != nil {
				s.logger.Errorf("failed to clear credentials: %v", cerr)
			}
			return "", fmt.Errorf("%w: status %d", shared.ErrRefreshFailed, retrieveErr.Response.StatusCode)
		}
		// Transient transport failure; keep the record so a flaky network
		// cannot log the user out.
		return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	rotated := tok.RefreshToken != "" && tok.RefreshToken != refreshToken

	s.creds.AccessToken = tok.AccessToken
	s.creds.ExpiresAt = tok.Expiry
	if tok.RefreshToken != "" {
		s.creds.RefreshToken = tok.RefreshToken
	}

	if perr := persistCredentials(s.store, s.creds); perr != nil {
		s.logger.Errorf("failed to persist refreshed credentials: %v", perr)
	}

	if rotated {
		s.propagate(s.creds.RefreshToken)
	}

	return s.creds.AccessToken, nil
}

// Logout clears in-memory state and all store entries. Idempotent: repeated
// calls leave the store empty and return nil.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

// Invalidate drops all credential state after a post-hoc 401 from a
// resource call. The next Token call fails with ErrNotAuthenticated,
// prompting a fresh login.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Warn("session invalidated by unauthorized response")
	if err := s.clearLocked(); err != nil {
		s.logger.Errorf("failed to clear credentials: %v", err)
	}
}

func (s *Session) clearLocked() error {
	s.generation++
	s.inflight = nil
	s.creds = Credentials{}
	return clearCredentials(s.store)
}

// propagate uploads the refresh token to the backend sink, best-effort.
func (s *Session) propagate(refreshToken string) {
	if s.sink == nil || refreshToken == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.sink.PushRefreshToken(ctx, refreshToken); err != nil {
			s.logger.Warnf("refresh token propagation failed: %v", err)
		}
	}()
}

// httpContext injects the session's HTTP client for oauth2 endpoint calls.
func (s *Session) httpContext(ctx context.Context) context.Context {
	if s.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}
