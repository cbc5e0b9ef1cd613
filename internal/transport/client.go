package transport

import "net/http"

// clientDoer is the subset of *http.Client the transports use.
type clientDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
