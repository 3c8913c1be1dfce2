// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/relaxq"
)

// TestTraceOverflow checks a small TraceCap panics with ErrTraceOverflow
// rather than silently dropping an event (a dropped event would corrupt
// relaxation analysis) or returning an error indistinguishable from the
// already-committed enqueue itself having failed.
func TestTraceOverflow(t *testing.T) {
	q, err := relaxq.NewMultiQueue(relaxq.Config{
		Width: 1, Choices: 1, BufferSize: 8, Trace: relaxq.TraceLinearizationTimestamp, TraceCap: 2,
	})
	if err != nil {
		t.Fatalf("NewMultiQueue: %v", err)
	}
	h := q.Register()
	defer q.Deregister(h)

	if err := h.Enqueue(1); err != nil {
		t.Fatalf("Enqueue(1): %v", err)
	}
	if err := h.Enqueue(2); err != nil {
		t.Fatalf("Enqueue(2): %v", err)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("Enqueue(3): want panic(ErrTraceOverflow), got no panic")
		}
		if err, ok := r.(error); !ok || !errors.Is(err, relaxq.ErrTraceOverflow) {
			t.Fatalf("Enqueue(3): panic value %v, want ErrTraceOverflow", r)
		}
	}()
	_ = h.Enqueue(3)
}

// TestTraceNoneIsZeroOverhead checks the default TraceNone mode records
// nothing, so an Analyzer fed from it sees only empty logs.
func TestTraceNoneIsZeroOverhead(t *testing.T) {
	q, err := relaxq.NewMultiQueue(relaxq.Config{Width: 1, Choices: 1, BufferSize: 8})
	if err != nil {
		t.Fatalf("NewMultiQueue: %v", err)
	}
	h := q.Register()
	defer q.Deregister(h)

	if err := h.Enqueue(1); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := h.Dequeue(); err != nil {
		t.Fatalf("Dequeue: %v", err)
	}

	a := relaxq.NewAnalyzer()
	a.AddHandle(h)
	report, err := a.Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(report.RankErrors) != 0 {
		t.Fatalf("RankErrors: got %v, want empty", report.RankErrors)
	}
}

// TestLockBasedTrace exercises the mutex-guarded recorder end to end: one
// handle's puts and gets on a two-sub-queue queue are recorded and analyzed.
func TestLockBasedTrace(t *testing.T) {
	q, err := relaxq.NewMultiQueue(relaxq.Config{
		Width: 2, Choices: 2, BufferSize: 8, Trace: relaxq.TraceLockBased,
	})
	if err != nil {
		t.Fatalf("NewMultiQueue: %v", err)
	}
	h := q.Register()
	defer q.Deregister(h)

	for i := relaxq.Value(0); i < 5; i++ {
		if err := h.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	for i := 0; i < 5; i++ {
		if _, err := h.Dequeue(); err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
	}

	a := relaxq.NewAnalyzer()
	a.AddHandle(h)
	if _, err := a.Analyze(); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
}
