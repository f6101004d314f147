package auth

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/domgiordano/xomify/internal/server"
	"github.com/domgiordano/xomify/internal/shared"
)

// BrowserAuthorizer implements [Authorizer] with the system browser and a
// temporary local HTTP server that captures the redirect.
type BrowserAuthorizer struct {
	Host    string
	Port    int
	Timeout time.Duration      // defaults to 2 minutes
	OpenURL func(string) error // defaults to the system browser launcher
	Logger  *log.Logger
}

// openBrowser launches the default system browser for the authorization
// URL. The three desktop platforms spell the launcher differently.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}

// Authorize opens the authorization URL in the browser and waits for the
// redirect carrying the authorization code.
//
// Context cancellation resolves as [shared.ErrUserCancelled]; the deadline
// resolves as [shared.ErrTimeout].
func (b *BrowserAuthorizer) Authorize(ctx context.Context, authURL, state string) (string, error) {
	logger := b.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	openURL := b.OpenURL
	if openURL == nil {
		openURL = openBrowser
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	handler := server.NewCallbackHandler(state)
	router := server.NewCallbackRouter()
	router.Handler(handler)

	serverAddr := fmt.Sprintf("%s:%d", b.Host, b.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Infof("starting authorization callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	if err := openURL(authURL); err != nil {
		logger.Warnf("failed to open browser automatically %v", err)
		logger.Infof("open this URL in your browser: %s", authURL)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return "", result.Error()
		}
		return result.Code, nil
	case err := <-serverErrors:
		return "", fmt.Errorf("%w: %v", shared.ErrSessionFailed, err)
	case <-ctx.Done():
		return "", shared.ErrUserCancelled
	case <-timer.C:
		return "", fmt.Errorf("%w: no authorization after %v", shared.ErrTimeout, timeout)
	}
}
