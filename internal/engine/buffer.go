package engine

import (
	"time"
)

// SlidingWindowBuffer is an append-only, time-evicting store of samples.
// Eviction is driven by the evaluation instant passed to Push/Trim, not by
// sample timestamps, so trimming follows wall-clock progression even when
// device timestamps stall. Samples are evicted whole; an RR sequence is
// never split. The buffer is not safe for concurrent use; the engine
// serializes access.
type SlidingWindowBuffer struct {
	window  time.Duration
	samples []Sample
}

// NewSlidingWindowBuffer creates a buffer retaining samples no older than
// window relative to the eviction instant.
func NewSlidingWindowBuffer(window time.Duration) *SlidingWindowBuffer {
	return &SlidingWindowBuffer{window: window}
}

// Push appends a sample, then evicts every sample whose timestamp is older
// than now minus the window.
func (b *SlidingWindowBuffer) Push(sample Sample, now time.Time) {
	b.samples = append(b.samples, sample)
	b.Trim(now)
}

// Trim evicts samples older than now minus the window. Timestamps are
// externally supplied and may be non-monotonic, so every sample is checked,
// not just a prefix.
func (b *SlidingWindowBuffer) Trim(now time.Time) {
	cutoff := now.Add(-b.window)
	kept := b.samples[:0]
	for _, s := range b.samples {
		if !s.Timestamp.Before(cutoff) {
			kept = append(kept, s)
		}
	}
	b.samples = kept
}

// Snapshot returns a copy of the buffered samples in insertion order.
func (b *SlidingWindowBuffer) Snapshot() []Sample {
	out := make([]Sample, len(b.samples))
	copy(out, b.samples)
	return out
}

// Len returns the number of buffered samples.
func (b *SlidingWindowBuffer) Len() int {
	return len(b.samples)
}

// Clear empties the buffer.
func (b *SlidingWindowBuffer) Clear() {
	b.samples = b.samples[:0]
}
