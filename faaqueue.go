// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// FAAQueue is a lock-free FIFO built from a chain of fixed-size segments.
// Enqueue and dequeue claim slot indices via fetch-and-add and publish/claim
// values via compare-and-exchange / atomic swap — the hard part is the
// segment-transition handling and safe reclamation of exhausted segments
// (§4.1). FAAQueue is the building block partialQueue and MultiQueue share;
// it is also usable standalone as a single unbounded MPMC FIFO.
type FAAQueue struct {
	_          pad
	head       atomic.Pointer[segment]
	_          pad
	tail       atomic.Pointer[segment]
	bufferSize int
	provider   MemoryProvider
}

// NewFAAQueue creates an empty segmented FAA queue with the given segment
// capacity and memory provider. If provider is nil, NewGCProvider() is used.
func NewFAAQueue(bufferSize int, provider MemoryProvider) *FAAQueue {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if provider == nil {
		provider = NewGCProvider()
	}
	q := &FAAQueue{bufferSize: bufferSize, provider: provider}
	first := provider.Alloc(0, bufferSize, 0, false)
	q.head.Store(first)
	q.tail.Store(first)
	return q
}

// casSwapTaken atomically exchanges slot's value with Taken, returning the
// value previously stored there. Implemented as a CompareAndSwap retry loop
// rather than a dedicated Swap primitive (atomix's observed surface across
// this corpus exposes Load/Store/Add/CompareAndSwap, never a bare Swap).
func casSwapTaken(slot *atomix.Uint64) Value {
	cur := slot.LoadAcquire()
	for !slot.CompareAndSwapAcqRel(cur, Taken) {
		cur = slot.LoadAcquire()
	}
	return cur
}

// Enqueue adds v to the queue. Always eventually succeeds — an unbounded
// segmented queue never reports "full". h is the calling thread's handle
// (supplies the trace recorder); v must not be Empty or Taken.
func (q *FAAQueue) Enqueue(h *Handle, v Value) error {
	if reserved(v) {
		return ErrReservedValue
	}

	rec := h.trace
	sw := spin.Wait{}
	q.provider.Pin(h)
	defer q.provider.Unpin(h)

	// Dual recorders stamp the invocation once; TraceTimer re-samples at
	// each attempt so its single stamp sits next to the FAA that succeeds.
	start := rec.Now()
	for {
		if !rec.Dual() {
			start = rec.Now()
		}
		t := q.tail.Load()

		// Linearization point: the fetch-and-add that reserves the index.
		idx := t.enqIdx.AddAcqRel(1) - 1

		switch {
		case idx < uint64(q.bufferSize):
			if t.items[idx].CompareAndSwapAcqRel(Empty, v) {
				end := endTimestamp(rec, start)
				rec.RecordPut(v, start, end)
				return nil
			}
			// A racing consumer forced this slot to Taken ahead of us (§4.1
			// dequeue "skip" case). Retry from the top.
			sw.Once()

		case idx == uint64(q.bufferSize):
			// Exactly one producer ever observes this exact index.
			if q.tail.Load() != t {
				sw.Once()
				continue
			}
			next := q.provider.Alloc(t.nodeIdx+1, q.bufferSize, v, true)
			if t.next.CompareAndSwap(nil, next) {
				q.tail.CompareAndSwap(t, next) // advisory; failure is harmless
				end := endTimestamp(rec, start)
				rec.RecordPut(v, start, end)
				return nil
			}
			// Another producer already linked a successor; our candidate is
			// discarded (never published, so the GC reclaims it directly).
			sw.Once()

		default: // idx > bufferSize: segment full, help advance tail.
			if next := t.next.Load(); next != nil {
				q.tail.CompareAndSwap(t, next)
			}
			sw.Once()
		}
	}
}

// Dequeue removes and returns a value previously enqueued, or reports
// ErrWouldBlock if the caller observed a consistent moment at which the
// queue was empty.
func (q *FAAQueue) Dequeue(h *Handle) (Value, error) {
	rec := h.trace
	sw := spin.Wait{}
	q.provider.Pin(h)
	defer q.provider.Unpin(h)

	start := rec.Now()
	for {
		if !rec.Dual() {
			start = rec.Now()
		}
		hd := q.head.Load()

		// Only linearization point for an empty-return: both indices
		// coincide and there is no successor to advance into.
		if hd.deqIdx.LoadAcquire() >= hd.enqIdx.LoadAcquire() && hd.next.Load() == nil {
			return Empty, ErrWouldBlock
		}

		idx := hd.deqIdx.AddAcqRel(1) - 1

		switch {
		case idx < uint64(q.bufferSize):
			x := casSwapTaken(&hd.items[idx])
			if x != Empty {
				end := endTimestamp(rec, start)
				rec.RecordGet(x, start, end)
				return x, nil
			}
			// Consumer raced ahead of the producer for this index; the slot
			// is now permanently Taken. The producer that eventually claims
			// idx will fail its CAS and retry (§4.1). We loop.
			sw.Once()

		default: // idx >= bufferSize
			next := hd.next.Load()
			if next == nil {
				return Empty, ErrWouldBlock // drained concurrently
			}
			if q.head.CompareAndSwap(hd, next) {
				q.provider.Retire(h, hd)
			}
			sw.Once()
		}
	}
}

// approxSize walks the segment chain summing live slots. It is O(n) and
// non-linearizable — a best-effort diagnostic, not part of the hot path
// (§11 supplemented feature, grounded on the original's faaaq_queue_size).
func (q *FAAQueue) approxSize() int {
	n := 0
	for s := q.head.Load(); s != nil; s = s.next.Load() {
		for i := range s.items {
			v := s.items[i].LoadAcquire()
			if v != Empty && v != Taken {
				n++
			}
		}
	}
	return n
}
