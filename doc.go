// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package relaxq provides a relaxed, unbounded FIFO queue built from
// independently scalable sub-queues, plus an offline analyzer that measures
// how far its actual dequeue order drifts from strict FIFO.
//
// # Quick Start
//
//	q, err := relaxq.NewMultiQueue(relaxq.Config{Width: 8, Choices: 2})
//	if err != nil {
//	    // Width/Choices misconfigured
//	}
//	h := q.Register()
//	defer q.Deregister(h)
//
//	if err := h.Enqueue(42); err != nil {
//	    // reserved value
//	}
//	v, err := h.Dequeue()
//	if relaxq.IsWouldBlock(err) {
//	    // nothing to dequeue right now
//	}
//
// # Sub-queues and d-choice dispatch
//
// A MultiQueue holds Width (w) independent segmented FAA queues. Every
// Enqueue and Dequeue samples Choices (d) of them uniformly at random and
// acts on the one the configured [Heuristic] reports as least loaded:
//
//	relaxq.LengthHeuristic // enqCount - deqCount (default)
//	relaxq.CountHeuristic  // raw enqCount or deqCount
//
// d=1 degenerates to random dispatch across w disjoint FIFOs. d=w samples
// every sub-queue on every operation, the most load-balanced and most
// expensive configuration. This trades strict global FIFO order for
// contention that scales with w instead of collapsing to a single point of
// serialization — see [Analyzer] to measure how much order is actually
// given up for a given (w, d).
//
// # Sub-queue structure
//
// Each sub-queue is a [FAAQueue]: a lock-free MPMC FIFO built from a linked
// chain of fixed-size segments. An uncontended operation synchronizes with
// one fetch-and-add (FAA) on a segment's enqueue or dequeue index plus one
// compare-and-swap on the claimed slot; segments are allocated lazily as producers outrun the chain and
// retired once every consumer has moved past them. FAAQueue can also be used
// directly as a single unbounded MPMC queue (Width=1, Choices=1).
//
// # Emptiness and double-collect
//
// A single sub-queue reporting empty does not mean the MultiQueue is empty:
// another sub-queue may hold items. Dequeue falls back to a double-collect
// sweep across every sub-queue, comparing before/after tail version
// snapshots, before returning [ErrWouldBlock]. This mirrors the instant the
// structure is confirmed to have no item available to any thread, not a
// coarse global lock.
//
// # Memory reclamation
//
// Segments a FAAQueue has fully drained are handed to a [MemoryProvider] for
// reclamation:
//
//	relaxq.NewGCProvider()    // default: retired segments become unreachable
//	                          // and Go's collector frees them (GCOn)
//	relaxq.NewLeakProvider()  // retired segments are kept alive forever (GCOff)
//	relaxq.NewEpochProvider() // three-generation epoch reclamation, for
//	                          // GC-independent, bounded-lag freeing
//
// Every operation brackets its body with Pin/Unpin so a provider doing real
// reclamation never frees a segment a concurrent thread still holds a
// reference to.
//
// # Relaxation analysis
//
// [Analyzer] reconstructs what a strict FIFO would have dequeued, given the
// same puts, and reports how far each actual dequeue's rank differs from
// that reconstruction:
//
//	a := relaxq.NewAnalyzer()
//	a.AddHandle(h1)
//	a.AddHandle(h2)
//	report, err := a.Analyze()
//	report.Fprint(os.Stdout)
//
// Analysis is offline: it consumes completed per-handle operation logs
// recorded by the configured [TraceMode], not a live queue. [WriteTrace]
// dumps the same logs as CSV rows (thread_id, value, KIND, start_ns, end_ns)
// for external tooling.
//
// # Error Handling
//
// Operations return [ErrWouldBlock] when they cannot proceed immediately.
// This error is sourced from [code.hybscloud.com/iox] for ecosystem
// consistency with the rest of code.hybscloud.com.
//
//	v, err := h.Dequeue()
//	if relaxq.IsWouldBlock(err) {
//	    // empty, try again later
//	}
//
// [ErrReservedValue] rejects enqueues of the two sentinel values ([Empty],
// [Taken]) a slot uses internally. [ErrInconsistentTrace] surfaces a
// corrupted or incomplete operation log during analysis rather than
// silently mis-measuring relaxation.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channels, WaitGroup) but cannot observe happens-before relationships
// established purely through acquire-release atomics on separate memory
// locations. FAAQueue's segment indices and slot values rely on exactly
// that, so the detector can false-positive on correct lock-free sequences.
// [RaceEnabled] reports whether the detector is active; the package's own
// stress tests are not gated on it and run in both modes.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit memory
// ordering, and [code.hybscloud.com/spin] for CPU pause instructions during
// contended retry loops.
package relaxq
