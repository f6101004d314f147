package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/domgiordano/xomify/internal/shared"
)

// TokenSource yields a currently valid access token, refreshing behind the
// scenes when needed. Invalidate drops the session after a post-hoc 401.
//
// auth.Session satisfies this interface.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// StatusError reports a non-2xx response outside the dedicated
// classifications.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: status %d: %s", e.Status, e.Body)
}

// RateLimitError reports a 429 with the delay after which the caller may
// retry. The pipeline itself never retries.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %v", e.RetryAfter)
}

func (e *RateLimitError) Is(target error) bool {
	return target == shared.ErrRateLimited
}

// DecodeError reports a 2xx response whose body did not match the
// caller-specified shape. The server was fine; the shape was not.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Pipeline performs authenticated HTTP calls and classifies responses
// uniformly for every caller. It is oblivious to endpoint semantics.
type Pipeline struct {
	tokens     TokenSource
	httpClient *http.Client
	logger     *log.Logger
}

// NewPipeline creates a pipeline over the given token source. The HTTP
// client defaults to a 30 second timeout.
func NewPipeline(tokens TokenSource, client *http.Client, logger *log.Logger) *Pipeline {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Pipeline{
		tokens:     tokens,
		httpClient: client,
		logger:     logger,
	}
}

// Execute performs one authenticated request. A non-nil body is serialized
// as JSON; a non-nil result receives the decoded 2xx payload.
//
// A token failure (including shared.ErrNotAuthenticated) propagates
// immediately with no network call.
func (p *Pipeline) Execute(ctx context.Context, method, url string, body, result any) error {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		p.logger.Warn("unauthorized response", "method", method, "url", url)
		p.tokens.Invalidate()
		return shared.ErrUnauthorized
	}

	return ClassifyResponse(resp, result)
}

// ClassifyResponse maps an HTTP response onto the pipeline's outcome
// contract. Shared with clients that authenticate outside the session
// (the backend's static token).
func ClassifyResponse(resp *http.Response, result any) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if result == nil || resp.StatusCode == http.StatusNoContent {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return &DecodeError{Cause: err}
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return shared.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return shared.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: retryAfter(resp.Header)}
	default:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
}

// retryAfter parses the Retry-After header, defaulting to one second.
func retryAfter(h http.Header) time.Duration {
	if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Second
}
