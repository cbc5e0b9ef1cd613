package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexadomus/internal/models"
)

func TestRelaySendEncodesCommand(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte("42"))
	}))
	defer srv.Close()

	r := NewRelay(RelayConfig{URL: srv.URL + "/update", APIKey: "KEY", Timeout: time.Second})
	body, err := r.Send(context.Background(), "sprinkler_schedule_1010000_6_0_0_30_0")
	require.NoError(t, err)
	assert.Equal(t, "42", body)
	assert.Equal(t, "KEY", got.Get("api_key"))
	assert.Equal(t, "sprinkler_schedule_1010000_6_0_0_30_0", got.Get("field3"))
}

func TestRelaySendEscapesReservedCharacters(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.RawQuery
	}))
	defer srv.Close()

	r := NewRelay(RelayConfig{URL: srv.URL, APIKey: "k", Field: 5})
	_, err := r.Send(context.Background(), "a&b=c d")
	require.NoError(t, err)
	assert.Equal(t, "api_key=k&field5=a%26b%3Dc+d", raw)
}

func TestRelaySendEmptyCommand(t *testing.T) {
	r := NewRelay(RelayConfig{URL: "http://127.0.0.1:1"})
	_, err := r.Send(context.Background(), "  ")
	assert.ErrorIs(t, err, models.ErrEncoding)
}

func TestRelaySendNon2xxCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid api key"))
	}))
	defer srv.Close()

	_, err := NewRelay(RelayConfig{URL: srv.URL}).Send(context.Background(), "lights_off")
	require.Error(t, err)
	assert.ErrorIs(t, err, &models.CommandError{Kind: models.ErrKindHTTPStatus, StatusCode: http.StatusBadRequest})
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestRelaySendTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r := NewRelay(RelayConfig{URL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := r.Send(context.Background(), "garage_open")
	assert.ErrorIs(t, err, models.ErrTimeout)
}

func TestNewRelayDefaults(t *testing.T) {
	r := NewRelay(RelayConfig{})
	assert.Equal(t, DefaultRelayURL, r.endpoint)
	assert.Equal(t, "field3", r.field)
	assert.Equal(t, DefaultRelayTimeout, r.client.(*http.Client).Timeout)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
