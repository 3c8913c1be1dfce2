// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// Enqueue never returns it: the queue is unbounded and slot races are
// retried internally, never surfaced.
// For Dequeue: the double-collect sweep confirmed the multi-queue is empty.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency with
// every other queue package built on code.hybscloud.com.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrInvalidConfig is returned by NewMultiQueue when Width or Choices violate
// the construction invariants (w == 0, d == 0, d > w). A non-positive
// BufferSize is not an error: it silently takes its documented default
// (see [Config.BufferSize]).
var ErrInvalidConfig = errors.New("relaxq: invalid configuration")

// ErrReservedValue is returned by Enqueue when the caller tries to enqueue
// Empty or Taken, which are reserved sentinels, not legal values.
var ErrReservedValue = errors.New("relaxq: value is reserved (Empty or Taken)")

// ErrTraceOverflow is the panic value raised when a per-thread trace buffer
// exceeds its configured capacity. The caller's workload must size TraceCap
// for its run; this is fatal rather than silently dropping events, since a
// dropped event would corrupt the relaxation analysis, and the enqueue or
// dequeue a trace write accompanies has already committed by the time the
// buffer is appended to, so there is no well-defined error return that
// wouldn't also misrepresent that operation's own outcome.
var ErrTraceOverflow = errors.New("relaxq: trace buffer overflow")

// ErrInconsistentTrace is returned by Analyzer.Analyze when a get event's
// value cannot be matched to any remaining put in the reconstructed queue.
type ErrInconsistentTrace struct {
	GetIndex int
	Value    Value
}

func (e *ErrInconsistentTrace) Error() string {
	return fmt.Sprintf("relaxq: get #%d (value=%d) has no matching unconsumed put", e.GetIndex, e.Value)
}

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
