package llm

import (
	"context"
	"errors"
)

// ErrEmptyContent is returned when a provider answers without any text.
var ErrEmptyContent = errors.New("llm: model returned empty content")

// Client is one round trip to a hosted or local chat model. Implementations
// return the raw assistant text untouched; recovering structure from it is
// the planner's job.
type Client interface {
	Name() string
	Chat(ctx context.Context, system, user string) (string, error)
	Close() error
}
