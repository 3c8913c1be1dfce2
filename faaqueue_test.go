// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq_test

import (
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/relaxq"
)

func newHandle(t *testing.T, cfg relaxq.Config) (*relaxq.MultiQueue, *relaxq.Handle) {
	t.Helper()
	q, err := relaxq.NewMultiQueue(cfg)
	if err != nil {
		t.Fatalf("NewMultiQueue: %v", err)
	}
	return q, q.Register()
}

// TestSingleThreadedFullCycle is spec scenario 1: w=1, d=1, B=4, forces a
// segment roll on the fifth enqueue.
func TestSingleThreadedFullCycle(t *testing.T) {
	q, h := newHandle(t, relaxq.Config{Width: 1, Choices: 1, BufferSize: 4})
	defer q.Deregister(h)

	values := []relaxq.Value{10, 20, 30, 40, 50}
	for _, v := range values {
		if err := h.Enqueue(v); err != nil {
			t.Fatalf("Enqueue(%d): %v", v, err)
		}
	}

	for i, want := range values {
		got, err := h.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if got != want {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, got, want)
		}
	}

	if _, err := h.Dequeue(); !errors.Is(err, relaxq.ErrWouldBlock) {
		t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
	}
}

// TestEnqueueThenDequeueOnEmpty is law L1.
func TestEnqueueThenDequeueOnEmpty(t *testing.T) {
	q, h := newHandle(t, relaxq.Config{Width: 1, Choices: 1, BufferSize: 8})
	defer q.Deregister(h)

	if err := h.Enqueue(42); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	v, err := h.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if v != 42 {
		t.Fatalf("Dequeue: got %d, want 42", v)
	}
}

// TestReservedValueRejected checks Enqueue rejects the Empty/Taken sentinels.
func TestReservedValueRejected(t *testing.T) {
	q, h := newHandle(t, relaxq.Config{Width: 1, Choices: 1})
	defer q.Deregister(h)

	for _, v := range []relaxq.Value{relaxq.Empty, relaxq.Taken} {
		if err := h.Enqueue(v); !errors.Is(err, relaxq.ErrReservedValue) {
			t.Fatalf("Enqueue(%d): got %v, want ErrReservedValue", v, err)
		}
	}
}

// TestTwoProducersOneConsumer is spec scenario 2: two producers tag their
// values so the union is unique, one consumer drains until it observes
// EMPTY twice in a row after both producers have joined (P1, P2, P5).
func TestTwoProducersOneConsumer(t *testing.T) {
	q, err := relaxq.NewMultiQueue(relaxq.Config{Width: 1, Choices: 1, BufferSize: 16})
	if err != nil {
		t.Fatalf("NewMultiQueue: %v", err)
	}

	const n = 100
	producer := func(tag relaxq.Value) {
		h := q.Register()
		defer q.Deregister(h)
		for i := relaxq.Value(1); i <= n; i++ {
			v := tag<<32 | i
			for h.Enqueue(v) != nil {
			}
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); producer(1) }()
	go func() { defer wg.Done(); producer(2) }()

	results := make([]relaxq.Value, 0, 2*n)
	done := make(chan struct{})
	go func() {
		h := q.Register()
		defer q.Deregister(h)
		misses := 0
		for misses < 2 || len(results) < 2*n {
			v, err := h.Dequeue()
			if err != nil {
				misses++
				if misses >= 2 && len(results) >= 2*n {
					break
				}
				continue
			}
			misses = 0
			results = append(results, v)
		}
		close(done)
	}()

	wg.Wait()
	<-done

	if len(results) != 2*n {
		t.Fatalf("got %d results, want %d", len(results), 2*n)
	}

	seen := make(map[relaxq.Value]bool, len(results))
	var lastTag1, lastTag2 relaxq.Value
	for _, v := range results {
		if seen[v] {
			t.Fatalf("duplicate value %d", v)
		}
		seen[v] = true
		tag, idx := v>>32, v&0xffffffff
		switch tag {
		case 1:
			if idx <= lastTag1 {
				t.Fatalf("producer 1 order violated at %d (last %d)", idx, lastTag1)
			}
			lastTag1 = idx
		case 2:
			if idx <= lastTag2 {
				t.Fatalf("producer 2 order violated at %d (last %d)", idx, lastTag2)
			}
			lastTag2 = idx
		default:
			t.Fatalf("unexpected tag %d", tag)
		}
	}
	if lastTag1 != n || lastTag2 != n {
		t.Fatalf("incomplete drain: tag1=%d tag2=%d, want %d each", lastTag1, lastTag2, n)
	}
}

// TestContendedEmpty is spec scenario 4: w=2, d=2, repeated dequeues with no
// producer must always report EMPTY without panicking or returning a value.
func TestContendedEmpty(t *testing.T) {
	q, err := relaxq.NewMultiQueue(relaxq.Config{Width: 2, Choices: 2})
	if err != nil {
		t.Fatalf("NewMultiQueue: %v", err)
	}

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := q.Register()
			defer q.Deregister(h)
			for range 1000 {
				if _, err := h.Dequeue(); !errors.Is(err, relaxq.ErrWouldBlock) {
					t.Errorf("Dequeue: got %v, want ErrWouldBlock", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

// TestSegmentBoundaryRace is spec scenario 6: B=2, single sub-queue, two
// producers and one consumer interleaving across segment rolls; every
// enqueued value must appear exactly once in the dequeued output.
func TestSegmentBoundaryRace(t *testing.T) {
	q, err := relaxq.NewMultiQueue(relaxq.Config{Width: 1, Choices: 1, BufferSize: 2})
	if err != nil {
		t.Fatalf("NewMultiQueue: %v", err)
	}

	const total = 1000
	const perProducer = total / 2

	var wg sync.WaitGroup
	producer := func(base relaxq.Value) {
		defer wg.Done()
		h := q.Register()
		defer q.Deregister(h)
		for i := relaxq.Value(0); i < perProducer; i++ {
			v := base + i
			for h.Enqueue(v) != nil {
			}
		}
	}
	wg.Add(2)
	go producer(0)
	go producer(perProducer)

	results := make([]relaxq.Value, 0, total)
	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		h := q.Register()
		defer q.Deregister(h)
		for {
			v, err := h.Dequeue()
			if err == nil {
				mu.Lock()
				results = append(results, v)
				drained := len(results) == total
				mu.Unlock()
				if drained {
					break
				}
				continue
			}
		}
		close(done)
	}()

	wg.Wait()
	<-done

	if len(results) != total {
		t.Fatalf("got %d results, want %d", len(results), total)
	}
	seen := make([]bool, total)
	for _, v := range results {
		if v < 0 || int(v) >= total {
			t.Fatalf("value %d out of range", v)
		}
		if seen[v] {
			t.Fatalf("duplicate value %d", v)
		}
		seen[v] = true
	}
}

func TestInvalidConfig(t *testing.T) {
	cases := []relaxq.Config{
		{Width: 0, Choices: 1},
		{Width: 1, Choices: 0},
		{Width: 2, Choices: 3},
	}
	for _, cfg := range cases {
		if _, err := relaxq.NewMultiQueue(cfg); !errors.Is(err, relaxq.ErrInvalidConfig) {
			t.Fatalf("NewMultiQueue(%+v): got %v, want ErrInvalidConfig", cfg, err)
		}
	}
}
