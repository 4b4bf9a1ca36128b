// Package cache provides pluggable caching for expensive pipeline stages.
//
// The CLI caches generation responses and computed layouts between runs so
// that repeated invocations with identical inputs skip the network or the
// layout solver entirely. The [Cache] interface abstracts the backing store
// (file-based for CLI usage, null for tests) and the [Keyer] interface
// produces collision-free keys from stage inputs.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys with optional TTL.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit;
	// a miss is (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// GenerationKeyOpts captures the request parameters that affect a
// generated graph. Two requests with the same prompt but different
// parameters must never share a cache entry.
type GenerationKeyOpts struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// LayoutKeyOpts captures the layout parameters that affect node positions.
type LayoutKeyOpts struct {
	Mode string `json:"mode"`
}

// Keyer generates cache keys for the stages worth caching.
type Keyer interface {
	// GenerationKey keys a model response by prompt text and request options.
	GenerationKey(prompt string, opts GenerationKeyOpts) string

	// LayoutKey keys computed positions by canonical graph hash and mode.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// SequenceKey keys a compiled transcript by canonical graph hash.
	SequenceKey(graphHash string) string
}

// DefaultKeyer generates deterministic keys by hashing inputs and options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GenerationKey hashes the prompt together with its options so prompt
// text never leaks into filenames.
func (k *DefaultKeyer) GenerationKey(prompt string, opts GenerationKeyOpts) string {
	return hashKey("gen", prompt, opts)
}

// LayoutKey combines the graph hash with layout options.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// SequenceKey keys a transcript by graph hash alone; sequencing has no
// tunable options.
func (k *DefaultKeyer) SequenceKey(graphHash string) string {
	return hashKey("seq", graphHash)
}
