// Package transport issues single-attempt HTTP requests to the local
// controller and to the cloud relay, classifying failures into ErrorKinds.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"nexadomus/internal/models"
)

// Fixed per-transport timeouts.
const (
	DefaultDirectTimeout = 5 * time.Second
	DefaultRelayTimeout  = 10 * time.Second

	maxBodyBytes   = 64 << 10
	maxDetailBytes = 512
	userAgent      = "nexadomus/1.0"
)

// get performs exactly one GET and returns the body of a 2xx response.
func get(ctx context.Context, client clientDoer, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", models.NewCommandError(models.ErrKindEncoding, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", classify(err)
	}
	text := strings.TrimSpace(string(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", models.HTTPStatusError(resp.StatusCode, truncate(text, maxDetailBytes))
	}
	return text, nil
}

// classify maps a client error to Timeout or HostUnreachable. A caller
// cancellation is NoConnectivity, not a controller fault.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewCommandError(models.ErrKindTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return models.NewCommandError(models.ErrKindTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return models.NewCommandError(models.ErrKindNoConnectivity, err)
	}
	return models.NewCommandError(models.ErrKindHostUnreachable, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
