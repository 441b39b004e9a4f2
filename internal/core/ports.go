package core

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss is returned when a cache entry is not found or has expired
	ErrCacheMiss = errors.New("cache miss")
	// ErrModelInvocation is returned when the language model call fails
	ErrModelInvocation = errors.New("model invocation failed")
	// ErrUnknownTask is returned for a task outside category, priority and action
	ErrUnknownTask = errors.New("unknown classification task")
	// ErrUnparseable is returned when a model response does not match the expected format
	ErrUnparseable = errors.New("unparseable model response")
)

// MailSource retrieves recent messages from a mail provider
type MailSource interface {
	// Authenticate obtains or refreshes provider credentials
	Authenticate(ctx context.Context) error

	// ListRecent returns up to limit messages, newest first
	ListRecent(ctx context.Context, limit int) ([]RawMessage, error)
}

// LLMClient opens scoped sessions against a language model
type LLMClient interface {
	// NewSession starts a session; the caller must Close it
	NewSession(ctx context.Context) (LLMSession, error)
}

// LLMSession is a single scoped exchange with a language model
type LLMSession interface {
	// Generate returns the model's text completion for prompt
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)

	// Close releases the session
	Close() error
}

// CacheRepository stores raw model responses keyed by request fingerprint
type CacheRepository interface {
	// Get retrieves a cached response; ErrCacheMiss when absent or expired
	Get(ctx context.Context, key string) (string, error)

	// Set stores a response with the given time-to-live
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error

	// Close releases backend resources
	Close() error
}
