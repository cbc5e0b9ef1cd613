package transport

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nexadomus/internal/models"
)

// Relay defaults match the relay channel the controller polls.
const (
	DefaultRelayURL   = "https://api.thingspeak.com/update"
	DefaultRelayField = 3
)

// RelayConfig configures the relay write endpoint.
type RelayConfig struct {
	URL     string
	APIKey  string
	Field   int
	Timeout time.Duration
}

// Relay writes command strings to the cloud relay.
type Relay struct {
	endpoint string
	apiKey   string
	field    string
	client   clientDoer
}

// NewRelay builds a relay transport, applying defaults to zero fields.
func NewRelay(cfg RelayConfig) *Relay {
	if cfg.URL == "" {
		cfg.URL = DefaultRelayURL
	}
	if cfg.Field <= 0 {
		cfg.Field = DefaultRelayField
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRelayTimeout
	}
	return &Relay{
		endpoint: cfg.URL,
		apiKey:   cfg.APIKey,
		field:    "field" + strconv.Itoa(cfg.Field),
		client:   newClient(cfg.Timeout),
	}
}

// Send URL-encodes command into the write request and returns the relay's reply.
func (r *Relay) Send(ctx context.Context, command string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", models.NewCommandError(models.ErrKindEncoding, errors.New("empty relay command"))
	}
	u, err := r.requestURL(command)
	if err != nil {
		return "", models.NewCommandError(models.ErrKindEncoding, err)
	}
	return get(ctx, r.client, u)
}

func (r *Relay) requestURL(command string) (string, error) {
	u, err := url.Parse(r.endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("api_key", r.apiKey)
	q.Set(r.field, command)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
