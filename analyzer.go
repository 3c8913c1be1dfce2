// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq

import (
	"fmt"
	"io"
	"sort"
)

// stamp is one timestamped put or get, after merging every handle's log.
type stamp struct {
	Value      Value
	Start, End int64
}

// item is one node of the offline FIFO reconstruction: the linked list of
// values enqueued but not yet matched to a dequeue, in enqueue order.
type item struct {
	next  *item
	value Value
}

// Report is the result of Analyze: the rank-error distribution between the
// order items were actually dequeued and the order a strict FIFO queue would
// have dequeued them in, given the same puts (§4.3).
type Report struct {
	Mean     float64
	Max      uint64
	Variance float64
	// RankErrors holds one entry per get, in combined-get order, for callers
	// that want the raw distribution rather than just its moments.
	RankErrors []uint64
}

// Analyzer reconstructs a synthetic FIFO ordering from every registered
// handle's recorded operation log and measures how far the structure's
// actual dequeue order deviates from it (§4.3, §6.4). It is offline: it
// consumes completed logs, not a live queue.
type Analyzer struct {
	puts []stamp
	gets []stamp
}

// NewAnalyzer returns an empty Analyzer. Use AddHandle or AddLog to feed it
// recorded operations before calling Analyze.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// AddHandle merges h's recorded puts and gets into the analyzer. h's
// MultiQueue must have been configured with a TraceMode other than
// TraceNone, or its logs will be empty.
func (a *Analyzer) AddHandle(h *Handle) {
	a.AddLog(h.trace.Puts(), h.trace.Gets())
}

// AddLog merges one thread's raw put/get logs into the analyzer directly,
// for callers that captured logs some other way than via a Handle.
func (a *Analyzer) AddLog(puts, gets []LogEntry) {
	for _, e := range puts {
		a.puts = append(a.puts, stamp{Value: e.Value, Start: e.Start, End: e.End})
	}
	for _, e := range gets {
		a.gets = append(a.gets, stamp{Value: e.Value, Start: e.Start, End: e.End})
	}
}

// Analyze merges every added log in ascending start-timestamp order,
// replays the puts into a linked-list FIFO snapshot, then walks the gets in
// order: each get searches forward from the current head for its value,
// counting the nodes it has to skip as that get's rank error, then unlinks
// the matched node (§4.3's offline relaxation algorithm). It returns
// ErrInconsistentTrace if a get's value cannot be found in the remaining
// snapshot, which indicates a corrupted or incomplete trace rather than a
// property of the queue under analysis.
func (a *Analyzer) Analyze() (*Report, error) {
	puts := append([]stamp(nil), a.puts...)
	gets := append([]stamp(nil), a.gets...)
	sort.SliceStable(puts, func(i, j int) bool { return puts[i].Start < puts[j].Start })
	sort.SliceStable(gets, func(i, j int) bool { return gets[i].Start < gets[j].Start })

	if len(gets) == 0 {
		return &Report{}, nil
	}

	nodes := make([]item, len(puts))
	for i := range puts {
		nodes[i].value = puts[i].Value
		if i+1 < len(puts) {
			nodes[i].next = &nodes[i+1]
		}
	}
	var head *item
	if len(nodes) > 0 {
		head = &nodes[0]
	}

	rankErrors := make([]uint64, len(gets))
	var sum, max uint64
	for i, g := range gets {
		if head == nil {
			return nil, &ErrInconsistentTrace{GetIndex: i, Value: g.Value}
		}
		var rankErr uint64
		if head.value == g.Value {
			head = head.next
		} else {
			rankErr = 1
			cur := head
			for {
				if cur.next == nil {
					return nil, &ErrInconsistentTrace{GetIndex: i, Value: g.Value}
				}
				if cur.next.value == g.Value {
					break
				}
				cur = cur.next
				rankErr++
			}
			cur.next = cur.next.next
		}
		rankErrors[i] = rankErr
		sum += rankErr
		if rankErr > max {
			max = rankErr
		}
	}

	mean := float64(sum) / float64(len(gets))

	// Sample variance over the rank-error distribution. The original
	// implementation's loop counter is left uninitialized here (a latent
	// bug in original_source/include/relaxation_linearization_timestamps.c);
	// this walks every rank error from index 0, the only reading consistent
	// with the printed variance actually describing the whole distribution.
	var variance float64
	if len(gets) > 1 {
		var ss float64
		for _, re := range rankErrors {
			off := float64(re) - mean
			ss += off * off
		}
		variance = ss / float64(len(gets)-1)
	}

	return &Report{Mean: mean, Max: max, Variance: variance, RankErrors: rankErrors}, nil
}

// Fprint writes the three-line summary in the original tool's exact format:
// "mean_relaxation , %.4f\nmax_relaxation , %d\nvariance_relaxation , %.4f\n".
func (r *Report) Fprint(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "mean_relaxation , %.4f\n", r.Mean); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "max_relaxation , %d\n", r.Max); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "variance_relaxation , %.4f\n", r.Variance); err != nil {
		return err
	}
	return nil
}
