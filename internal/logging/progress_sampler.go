package logging

import (
	"strings"
	"sync"
)

// ProgressSampler thins out progress logging. It lets an update through
// when the label changes or the fraction enters a new bucket. It is safe for
// concurrent use.
type ProgressSampler struct {
	mu         sync.Mutex
	bucketSize float64
	lastLabel  string
	lastBucket int
}

// NewProgressSampler constructs a sampler with buckets of bucketSize, as a
// fraction of the whole. Sizes outside (0,1] fall back to 0.05.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 || bucketSize > 1 {
		bucketSize = 0.05
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether the update at fraction with label should be
// logged. A negative fraction means unknown and only a label change emits.
func (s *ProgressSampler) ShouldLog(fraction float64, label string) bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	emit := false
	if label = strings.TrimSpace(label); label != "" && label != s.lastLabel {
		s.lastLabel = label
		emit = true
	}
	if fraction < 0 {
		return emit
	}
	bucket := int(min(fraction, 1) / s.bucketSize)
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		emit = true
	}
	return emit
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.lastLabel = ""
	s.lastBucket = -1
	s.mu.Unlock()
}
