package service

import "time"

// LogFilter supports history filtering by time range and device kind.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Kind string    // "", "garage", "lights", "sprinklers", "climate", "custom"
}
