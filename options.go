// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq

// Heuristic selects the load metric the d-choice dispatcher minimizes.
type Heuristic int

const (
	// LengthHeuristic picks the sub-queue with the lowest enqCount-deqCount
	// for enqueue, and the highest for dequeue.
	LengthHeuristic Heuristic = iota
	// CountHeuristic picks the sub-queue with the lowest enqCount for
	// enqueue, and the lowest deqCount for dequeue.
	CountHeuristic
)

// TraceMode selects whether and how a queue records operation timestamps for
// the relaxation analyzer.
type TraceMode int

const (
	// TraceNone disables recording entirely (zero overhead).
	TraceNone TraceMode = iota
	// TraceLockBased guards every recorded event with a mutex, matching the
	// "insert immediately under lock" strategy of the original implementation.
	TraceLockBased
	// TraceTimer records a single timestamp taken at the FAA linearization
	// point, used for both start and end.
	TraceTimer
	// TraceLinearizationTimestamp records distinct start/end timestamps
	// bracketing the whole operation. This is the mode the relaxation
	// analyzer (§4.3) is designed to consume and is the recommended mode
	// for analysis (the Config default is TraceNone).
	TraceLinearizationTimestamp
)

// GCMode controls whether the memory provider participates in reclamation.
type GCMode int

const (
	// GCOn retires exhausted segments through the configured MemoryProvider
	// (default: deferred to the Go garbage collector once unreachable).
	GCOn GCMode = iota
	// GCOff never retires segments; they are leaked for the process
	// lifetime. Useful for benchmarking the queue algorithm in isolation
	// from reclamation overhead.
	GCOff
)

// Config configures a MultiQueue at construction time. Zero-value fields take
// their documented defaults except Width and Choices, which must be set.
type Config struct {
	// Width is w, the number of independent sub-queues. Must be >= 1.
	Width int
	// Choices is d, the number of sub-queues sampled per operation.
	// Must satisfy 1 <= Choices <= Width.
	Choices int
	// BufferSize is B, the segment capacity. Defaults to 1024 if <= 0.
	BufferSize int
	// Heuristic selects the load metric for dispatch. Defaults to LengthHeuristic.
	Heuristic Heuristic
	// Trace selects the recording strategy. Defaults to TraceNone.
	Trace TraceMode
	// TraceCap bounds each registered handle's per-kind trace buffer.
	// Defaults to 1<<20 events if <= 0.
	TraceCap int
	// GC controls reclamation participation. Defaults to GCOn.
	GC GCMode
	// Provider overrides the default MemoryProvider for the selected GCMode.
	Provider MemoryProvider
}

const defaultBufferSize = 1024
const defaultTraceCap = 1 << 20

func (c Config) validate() error {
	if c.Width <= 0 || c.Choices <= 0 || c.Choices > c.Width {
		return ErrInvalidConfig
	}
	return nil
}

func (c Config) bufferSize() int {
	if c.BufferSize <= 0 {
		return defaultBufferSize
	}
	return c.BufferSize
}

func (c Config) traceCap() int {
	if c.TraceCap <= 0 {
		return defaultTraceCap
	}
	return c.TraceCap
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill a cache line after an 8-byte field.
type padShort [64 - 8]byte
