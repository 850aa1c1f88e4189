package analyzer

import (
	"fmt"
	"sync"
)

// Kind names a cached collaborator.
type Kind int

const (
	KindSentiment Kind = iota
	KindEmotion
	KindFrames
	KindPitch
	KindTranscriber
)

func (k Kind) String() string {
	switch k {
	case KindSentiment:
		return "sentiment"
	case KindEmotion:
		return "emotion"
	case KindFrames:
		return "frames"
	case KindPitch:
		return "pitch"
	case KindTranscriber:
		return "transcriber"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Cache holds collaborator handles built on first use. Entries are never
// evicted and failed builds are not stored.
type Cache struct {
	mu      sync.Mutex
	entries map[Kind]any
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Kind]any)}
}

// Load returns the handle for kind, building it with build on first use.
// Concurrent first callers wait for a single build.
func Load[T any](c *Cache, kind Kind, build func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[Kind]any)
	}
	if cached, ok := c.entries[kind]; ok {
		value, ok := cached.(T)
		if !ok {
			var zero T
			return zero, fmt.Errorf("analyzer cache: %s holds %T", kind, cached)
		}
		return value, nil
	}
	value, err := build()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("analyzer cache: build %s: %w", kind, err)
	}
	c.entries[kind] = value
	return value, nil
}

// Len reports how many handles are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
