package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/domgiordano/xomify/internal/shared"
)

// stubAuthorizer implements Authorizer with canned results.
type stubAuthorizer struct {
	code    string
	err     error
	release chan struct{} // optional, blocks Authorize until closed
	calls   atomic.Int32
}

func (a *stubAuthorizer) Authorize(ctx context.Context, authURL, state string) (string, error) {
	a.calls.Add(1)
	if a.release != nil {
		select {
		case <-a.release:
		case <-ctx.Done():
			return "", shared.ErrUserCancelled
		}
	}
	return a.code, a.err
}

// recordingSink captures propagated refresh tokens.
type recordingSink struct {
	tokens chan string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{tokens: make(chan string, 4)}
}

func (s *recordingSink) PushRefreshToken(ctx context.Context, refreshToken string) error {
	s.tokens <- refreshToken
	return nil
}

func newTestSession(t *testing.T, store CredentialStore, authorizer Authorizer) *Session {
	t.Helper()
	s, err := NewSession(SessionOpts{
		ClientID:    "test_client_id",
		RedirectURI: "http://127.0.0.1:9999/callback",
		Store:       store,
		Authorizer:  authorizer,
		Logger:      shared.NewLogger(io.Discard),
	})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return s
}

// tokenEndpoint serves the OAuth token endpoint, counting requests. When
// rotateTo is non-empty the response includes a rotated refresh token.
func tokenEndpoint(t *testing.T, count *atomic.Int32, rotateTo string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		time.Sleep(20 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		body := `{"access_token":"fresh_access","token_type":"Bearer","expires_in":3600`
		if rotateTo != "" {
			body += fmt.Sprintf(`,"refresh_token":%q`, rotateTo)
		}
		body += `}`
		fmt.Fprint(w, body)
	}))
}

func seedCredentials(t *testing.T, store CredentialStore, creds Credentials) {
	t.Helper()
	if err := persistCredentials(store, creds); err != nil {
		t.Fatalf("failed to seed credentials: %v", err)
	}
}

func TestSessionState(t *testing.T) {
	t.Run("LoggedOut", func(t *testing.T) {
		s := newTestSession(t, NewMemoryStore(), nil)
		if got := s.State(); got != StateLoggedOut {
			t.Errorf("State() = %v, want %v", got, StateLoggedOut)
		}
	})

	t.Run("LoggedIn", func(t *testing.T) {
		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "a1",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(time.Hour),
		})
		s := newTestSession(t, store, nil)
		if got := s.State(); got != StateLoggedIn {
			t.Errorf("State() = %v, want %v", got, StateLoggedIn)
		}
	})

	t.Run("ExpiredWithinMargin", func(t *testing.T) {
		// A token 30 seconds from expiry sits inside the safety margin and
		// must count as expired.
		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "a1",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(30 * time.Second),
		})
		s := newTestSession(t, store, nil)
		if got := s.State(); got != StateExpired {
			t.Errorf("State() = %v, want %v", got, StateExpired)
		}
	})

	t.Run("ExpiredInPast", func(t *testing.T) {
		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "a1",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(-time.Hour),
		})
		s := newTestSession(t, store, nil)
		if got := s.State(); got != StateExpired {
			t.Errorf("State() = %v, want %v", got, StateExpired)
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var sawVerifier, sawSecret bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("failed to parse form: %v", err)
			}
			sawVerifier = r.Form.Get("code_verifier") != ""
			sawSecret = r.Form.Get("client_secret") != ""
			if got := r.Form.Get("code"); got != "auth_code" {
				t.Errorf("code = %q, want auth_code", got)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"a1","token_type":"Bearer","refresh_token":"r1","expires_in":3600}`)
		}))
		defer srv.Close()

		store := NewMemoryStore()
		s := newTestSession(t, store, &stubAuthorizer{code: "auth_code"})
		s.config.Endpoint.TokenURL = srv.URL

		if err := s.Login(context.Background()); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		if !sawVerifier {
			t.Error("token request did not carry a PKCE code_verifier")
		}
		if sawSecret {
			t.Error("token request carried a client_secret; the session is a public client")
		}

		if got := s.State(); got != StateLoggedIn {
			t.Errorf("State() = %v, want %v", got, StateLoggedIn)
		}

		access, ok, _ := store.Read(KeyAccessToken)
		if !ok || access != "a1" {
			t.Errorf("stored access token = %q, want a1", access)
		}
		refresh, ok, _ := store.Read(KeyRefreshToken)
		if !ok || refresh != "r1" {
			t.Errorf("stored refresh token = %q, want r1", refresh)
		}
	})

	t.Run("ConcurrentLoginFailsFast", func(t *testing.T) {
		release := make(chan struct{})
		authorizer := &stubAuthorizer{err: shared.ErrUserCancelled, release: release}
		s := newTestSession(t, NewMemoryStore(), authorizer)

		first := make(chan error, 1)
		go func() { first <- s.Login(context.Background()) }()

		// Wait for the first login to enter the authorizer.
		for authorizer.calls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}

		if err := s.Login(context.Background()); !errors.Is(err, shared.ErrLoginInProgress) {
			t.Errorf("second Login() error = %v, want ErrLoginInProgress", err)
		}

		close(release)
		if err := <-first; !errors.Is(err, shared.ErrUserCancelled) {
			t.Errorf("first Login() error = %v, want ErrUserCancelled", err)
		}

		// The gate must have lifted.
		if err := s.Login(context.Background()); errors.Is(err, shared.ErrLoginInProgress) {
			t.Error("login gate still held after first login finished")
		}
	})

	t.Run("RejectsWhenAlreadyLoggedIn", func(t *testing.T) {
		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "a1",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(time.Hour),
		})

		authorizer := &stubAuthorizer{code: "auth_code"}
		s := newTestSession(t, store, authorizer)

		if err := s.Login(context.Background()); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("Login() error = %v, want ErrInvalidInput", err)
		}
		if got := authorizer.calls.Load(); got != 0 {
			t.Errorf("authorizer called %d times, want 0", got)
		}
	})

	t.Run("UserCancelledPassesThrough", func(t *testing.T) {
		s := newTestSession(t, NewMemoryStore(), &stubAuthorizer{err: shared.ErrUserCancelled})
		if err := s.Login(context.Background()); !errors.Is(err, shared.ErrUserCancelled) {
			t.Errorf("Login() error = %v, want ErrUserCancelled", err)
		}
		if got := s.State(); got != StateLoggedOut {
			t.Errorf("State() after cancelled login = %v, want %v", got, StateLoggedOut)
		}
	})

	t.Run("ExchangeFailure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
		}))
		defer srv.Close()

		s := newTestSession(t, NewMemoryStore(), &stubAuthorizer{code: "bad_code"})
		s.config.Endpoint.TokenURL = srv.URL

		if err := s.Login(context.Background()); !errors.Is(err, shared.ErrTokenExchangeFailed) {
			t.Errorf("Login() error = %v, want ErrTokenExchangeFailed", err)
		}
	})

	t.Run("PropagatesRefreshToken", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"a1","token_type":"Bearer","refresh_token":"r1","expires_in":3600}`)
		}))
		defer srv.Close()

		sink := newRecordingSink()
		s := newTestSession(t, NewMemoryStore(), &stubAuthorizer{code: "auth_code"})
		s.sink = sink
		s.config.Endpoint.TokenURL = srv.URL

		if err := s.Login(context.Background()); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		select {
		case tok := <-sink.tokens:
			if tok != "r1" {
				t.Errorf("propagated token = %q, want r1", tok)
			}
		case <-time.After(2 * time.Second):
			t.Error("refresh token was never propagated to the sink")
		}
	})
}

func TestToken(t *testing.T) {
	t.Run("ValidTokenNoNetwork", func(t *testing.T) {
		var count atomic.Int32
		srv := tokenEndpoint(t, &count, "")
		defer srv.Close()

		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "a1",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(time.Hour),
		})
		s := newTestSession(t, store, nil)
		s.config.Endpoint.TokenURL = srv.URL

		tok, err := s.Token(context.Background())
		if err != nil {
			t.Fatalf("Token() error = %v", err)
		}
		if tok != "a1" {
			t.Errorf("Token() = %q, want a1", tok)
		}
		if count.Load() != 0 {
			t.Errorf("token endpoint hit %d times, want 0", count.Load())
		}
	})

	t.Run("NotAuthenticated", func(t *testing.T) {
		s := newTestSession(t, NewMemoryStore(), nil)
		if _, err := s.Token(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("Token() error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("RefreshWithinMargin", func(t *testing.T) {
		// 30 seconds of validity is inside the safety margin, so the token
		// must be refreshed rather than returned.
		var count atomic.Int32
		srv := tokenEndpoint(t, &count, "")
		defer srv.Close()

		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "stale",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(30 * time.Second),
		})
		s := newTestSession(t, store, nil)
		s.config.Endpoint.TokenURL = srv.URL

		tok, err := s.Token(context.Background())
		if err != nil {
			t.Fatalf("Token() error = %v", err)
		}
		if tok != "fresh_access" {
			t.Errorf("Token() = %q, want fresh_access", tok)
		}
		if count.Load() != 1 {
			t.Errorf("token endpoint hit %d times, want 1", count.Load())
		}
	})

	t.Run("SingleFlight", func(t *testing.T) {
		var count atomic.Int32
		srv := tokenEndpoint(t, &count, "")
		defer srv.Close()

		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "stale",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(-time.Minute),
		})
		s := newTestSession(t, store, nil)
		s.config.Endpoint.TokenURL = srv.URL

		const callers = 10
		tokens := make([]string, callers)
		errs := make([]error, callers)

		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tokens[i], errs[i] = s.Token(context.Background())
			}(i)
		}
		wg.Wait()

		for i := 0; i < callers; i++ {
			if errs[i] != nil {
				t.Fatalf("caller %d: Token() error = %v", i, errs[i])
			}
			if tokens[i] != "fresh_access" {
				t.Errorf("caller %d: Token() = %q, want fresh_access", i, tokens[i])
			}
		}

		if count.Load() != 1 {
			t.Errorf("token endpoint hit %d times, want exactly 1", count.Load())
		}
	})

	t.Run("RetainsRefreshTokenWhenOmitted", func(t *testing.T) {
		var count atomic.Int32
		srv := tokenEndpoint(t, &count, "")
		defer srv.Close()

		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "stale",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(-time.Minute),
		})
		s := newTestSession(t, store, nil)
		s.config.Endpoint.TokenURL = srv.URL

		if _, err := s.Token(context.Background()); err != nil {
			t.Fatalf("Token() error = %v", err)
		}

		refresh, ok, _ := store.Read(KeyRefreshToken)
		if !ok || refresh != "r1" {
			t.Errorf("stored refresh token = %q, want retained r1", refresh)
		}
	})

	t.Run("RotatedRefreshTokenPropagates", func(t *testing.T) {
		var count atomic.Int32
		srv := tokenEndpoint(t, &count, "r2")
		defer srv.Close()

		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "stale",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(-time.Minute),
		})
		sink := newRecordingSink()
		s := newTestSession(t, store, nil)
		s.sink = sink
		s.config.Endpoint.TokenURL = srv.URL

		if _, err := s.Token(context.Background()); err != nil {
			t.Fatalf("Token() error = %v", err)
		}

		refresh, _, _ := store.Read(KeyRefreshToken)
		if refresh != "r2" {
			t.Errorf("stored refresh token = %q, want rotated r2", refresh)
		}

		select {
		case tok := <-sink.tokens:
			if tok != "r2" {
				t.Errorf("propagated token = %q, want r2", tok)
			}
		case <-time.After(2 * time.Second):
			t.Error("rotated refresh token was never propagated")
		}
	})

	t.Run("RejectedRefreshClearsCredentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
		}))
		defer srv.Close()

		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "stale",
			RefreshToken: "revoked",
			ExpiresAt:    time.Now().Add(-time.Minute),
		})
		s := newTestSession(t, store, nil)
		s.config.Endpoint.TokenURL = srv.URL

		if _, err := s.Token(context.Background()); !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("Token() error = %v, want ErrRefreshFailed", err)
		}

		if got := s.State(); got != StateLoggedOut {
			t.Errorf("State() after rejected refresh = %v, want %v", got, StateLoggedOut)
		}
		if _, ok, _ := store.Read(KeyRefreshToken); ok {
			t.Error("rejected refresh token should be deleted from the store")
		}
	})

	t.Run("TransportFailureKeepsCredentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close() // connection refused from here on

		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "stale",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(-time.Minute),
		})
		s := newTestSession(t, store, nil)
		s.config.Endpoint.TokenURL = url

		if _, err := s.Token(context.Background()); !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("Token() error = %v, want ErrRefreshFailed", err)
		}

		// Flaky network must not log the user out.
		if got := s.State(); got != StateExpired {
			t.Errorf("State() after transport failure = %v, want %v", got, StateExpired)
		}
		if refresh, ok, _ := store.Read(KeyRefreshToken); !ok || refresh != "r1" {
			t.Errorf("stored refresh token = %q, want retained r1", refresh)
		}
	})

	t.Run("LogoutDuringRefreshDiscardsResult", func(t *testing.T) {
		arrived := make(chan struct{})
		release := make(chan struct{})
		var count atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count.Add(1)
			close(arrived)
			<-release
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"fresh_access","token_type":"Bearer","expires_in":3600}`)
		}))
		defer srv.Close()

		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "stale",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(-time.Minute),
		})
		s := newTestSession(t, store, nil)
		s.config.Endpoint.TokenURL = srv.URL

		inflight := make(chan error, 1)
		go func() {
			_, err := s.Token(context.Background())
			inflight <- err
		}()

		<-arrived
		if err := s.Logout(); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		close(release)

		// The logout wins: the refresh that was in flight when it ran must
		// not resurrect the session or repopulate the store.
		if err := <-inflight; !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("in-flight Token() error = %v, want ErrNotAuthenticated", err)
		}
		if got := s.State(); got != StateLoggedOut {
			t.Errorf("State() after logout = %v, want %v", got, StateLoggedOut)
		}
		if access, ok, _ := store.Read(KeyAccessToken); ok {
			t.Errorf("store repopulated after logout: access token = %q", access)
		}
		if _, err := s.Token(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("Token() after logout error = %v, want ErrNotAuthenticated", err)
		}
		if count.Load() != 1 {
			t.Errorf("token endpoint hit %d times, want 1", count.Load())
		}
	})
}

func TestLogout(t *testing.T) {
	t.Run("ClearsState", func(t *testing.T) {
		store := NewMemoryStore()
		seedCredentials(t, store, Credentials{
			AccessToken:  "a1",
			RefreshToken: "r1",
			ExpiresAt:    time.Now().Add(time.Hour),
		})
		s := newTestSession(t, store, nil)

		if err := s.Logout(); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if got := s.State(); got != StateLoggedOut {
			t.Errorf("State() = %v, want %v", got, StateLoggedOut)
		}
		if _, ok, _ := store.Read(KeyAccessToken); ok {
			t.Error("access token still present after logout")
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		s := newTestSession(t, NewMemoryStore(), nil)
		for i := 0; i < 3; i++ {
			if err := s.Logout(); err != nil {
				t.Fatalf("Logout() call %d error = %v", i+1, err)
			}
		}
		if got := s.State(); got != StateLoggedOut {
			t.Errorf("State() = %v, want %v", got, StateLoggedOut)
		}
	})
}

func TestInvalidate(t *testing.T) {
	store := NewMemoryStore()
	seedCredentials(t, store, Credentials{
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	s := newTestSession(t, store, nil)

	s.Invalidate()

	if got := s.State(); got != StateLoggedOut {
		t.Errorf("State() = %v, want %v", got, StateLoggedOut)
	}
	if _, err := s.Token(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("Token() after Invalidate error = %v, want ErrNotAuthenticated", err)
	}
}

func TestSessionRestart(t *testing.T) {
	// A relaunch with persisted credentials restores the session without any
	// network traffic.
	store := NewMemoryStore()
	seedCredentials(t, store, Credentials{
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second),
	})

	s := newTestSession(t, store, nil)
	if got := s.State(); got != StateLoggedIn {
		t.Fatalf("State() = %v, want %v", got, StateLoggedIn)
	}

	tok, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok != "a1" {
		t.Errorf("Token() = %q, want a1", tok)
	}
}
