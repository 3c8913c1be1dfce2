// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq

import "code.hybscloud.com/atomix"

// MultiQueue is an array of w independent FIFO sub-queues; each operation
// samples d of them at random and operates on the one with the lowest load
// (§4.2). It intentionally trades strict FIFO order for throughput. Width
// and choice count are fixed for the queue's lifetime (no dynamic resize).
type MultiQueue struct {
	_        pad
	nextID   atomix.Uint64
	_        pad
	queues   []*partialQueue
	cfg      Config
	provider MemoryProvider
}

// NewMultiQueue constructs a MultiQueue with cfg.Width independent
// sub-queues. Returns ErrInvalidConfig if Width == 0, Choices == 0, or
// Choices > Width.
func NewMultiQueue(cfg Config) (*MultiQueue, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	provider := defaultProvider(cfg)
	q := &MultiQueue{
		queues:   make([]*partialQueue, cfg.Width),
		cfg:      cfg,
		provider: provider,
	}
	for i := range q.queues {
		q.queues[i] = newPartialQueue(cfg.bufferSize(), provider)
	}
	return q, nil
}

func defaultProvider(cfg Config) MemoryProvider {
	if cfg.Provider != nil {
		return cfg.Provider
	}
	if cfg.GC == GCOff {
		return NewLeakProvider()
	}
	return NewGCProvider()
}

// Width returns w, the number of sub-queues.
func (q *MultiQueue) Width() int { return len(q.queues) }

// Choices returns d, the number of sub-queues sampled per operation.
func (q *MultiQueue) Choices() int { return q.cfg.Choices }

func (q *MultiQueue) width() int { return len(q.queues) }

// Register performs per-thread initialization (§5 thread registration): a
// dense thread id, double-collect scratch sized to Width, a trace log
// buffer per the configured TraceMode, and RNG seeds for d-choice dispatch.
// The returned Handle must be passed to every subsequent operation from the
// calling thread.
func (q *MultiQueue) Register() *Handle {
	id := int(q.nextID.AddAcqRel(1) - 1)
	s1, s2 := seedPair()
	rec := newRecorder(q.cfg.Trace, q.cfg.traceCap())
	h := newHandle(q, id, s1, s2, rec)
	q.provider.RegisterThread(h)
	return h
}

// Deregister releases h's provider-side bookkeeping. The caller must not use
// h for further operations afterward.
func (q *MultiQueue) Deregister(h *Handle) {
	q.provider.DeregisterThread(h)
}

// Size sums sub-queue lengths. Best-effort and non-linearizable (§6.1).
func (q *MultiQueue) Size() int {
	total := 0
	for _, pq := range q.queues {
		if l := pq.length(); l > 0 {
			total += int(l)
		}
	}
	return total
}

// Enqueue dispatches v to the sub-queue the d-choice heuristic selects.
func (h *Handle) Enqueue(v Value) error {
	return h.mq.enqueue(h, v)
}

// Dequeue dispatches to the d-choice-selected sub-queue; if it reports
// empty, the double-collect protocol verifies the entire multi-queue is
// empty before returning ErrWouldBlock (§4.2).
func (h *Handle) Dequeue() (Value, error) {
	return h.mq.dequeue(h)
}

func (q *MultiQueue) enqueue(h *Handle, v Value) error {
	if reserved(v) {
		return ErrReservedValue
	}
	idx := q.pick(h, true)
	if err := q.queues[idx].enqueue(h, v); err != nil {
		return err
	}
	return nil
}

func (q *MultiQueue) dequeue(h *Handle) (Value, error) {
	idx := q.pick(h, false)
	v, err := q.queues[idx].dequeue(h)
	if err == nil {
		return v, nil
	}
	if !IsWouldBlock(err) {
		return Empty, err
	}
	return q.doubleCollect(h, (idx+1)%len(q.queues))
}

// pick draws Choices independent uniform indices and returns the one with
// the lowest heuristic value (first wins on ties, per §4.2 dispatch).
func (q *MultiQueue) pick(h *Handle, forEnqueue bool) int {
	w := len(q.queues)
	best := h.randIndex(w)
	bestLoad := q.heuristic(best, forEnqueue)
	for i := 1; i < q.cfg.Choices; i++ {
		idx := h.randIndex(w)
		load := q.heuristic(idx, forEnqueue)
		if load < bestLoad {
			best, bestLoad = idx, load
		}
	}
	return best
}

// heuristic implements the two selectable load metrics (§4.2): length
// (enqCount-deqCount, sign-flipped for dequeue so the maximum-length
// sub-queue sorts first) or count (raw enqCount/deqCount).
func (q *MultiQueue) heuristic(idx int, forEnqueue bool) int64 {
	pq := q.queues[idx]
	switch q.cfg.Heuristic {
	case CountHeuristic:
		if forEnqueue {
			return int64(pq.enqCount())
		}
		return int64(pq.deqCount())
	default: // LengthHeuristic
		if forEnqueue {
			return pq.length()
		}
		return -pq.length()
	}
}

// doubleCollect is the emptiness-confirmation sweep (§4.2): snapshot every
// sub-queue's tail version, attempt a dequeue on each in turn, and if all w
// report empty, re-read every version. Equal versions confirm a consistent
// empty instant; any difference restarts the sweep from the first differing
// index (L2: double-collect soundness).
func (q *MultiQueue) doubleCollect(h *Handle, start int) (Value, error) {
	w := len(q.queues)
restart:
	for i := 0; i < w; i++ {
		k := (start + i) % w
		h.versions[k] = q.queues[k].tailVer()
		v, err := q.queues[k].dequeue(h)
		if err == nil {
			return v, nil
		}
		if !IsWouldBlock(err) {
			return Empty, err
		}
	}

	for i := 0; i < w; i++ {
		k := (start + i) % w
		if q.queues[k].tailVer() != h.versions[k] {
			start = k
			goto restart
		}
	}

	return Empty, ErrWouldBlock
}
