package transport

import (
	"context"
	"strings"
	"time"
)

// DefaultControllerURL is the controller's access-point address.
const DefaultControllerURL = "http://192.168.4.1"

// Direct talks to the controller's local HTTP surface.
type Direct struct {
	baseURL string
	client  clientDoer
}

// NewDirect builds a direct transport. timeout <= 0 selects DefaultDirectTimeout.
func NewDirect(baseURL string, timeout time.Duration) *Direct {
	if baseURL == "" {
		baseURL = DefaultControllerURL
	}
	if timeout <= 0 {
		timeout = DefaultDirectTimeout
	}
	return &Direct{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newClient(timeout),
	}
}

// Send requests endpoint (a path with optional query, e.g. "/garage?state=open")
// and returns the raw response text.
func (d *Direct) Send(ctx context.Context, endpoint string) (string, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return get(ctx, d.client, d.baseURL+endpoint)
}

// BaseURL returns the controller address in use.
func (d *Direct) BaseURL() string { return d.baseURL }
