// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq

import "code.hybscloud.com/atomix"

// partialQueue is a FAAQueue plus the derived load metrics MultiQueue's
// d-choice dispatch and double-collect protocol need (§3, §4.2): enqueue
// count, dequeue count, length, and tail version. Metrics are read without
// locking and may be stale — that staleness is intentional and contributes
// to the multi-queue's relaxation (§4.2).
type partialQueue struct {
	_           pad
	tailVersion atomix.Uint64 // increments on every successful enqueue
	_           pad
	faa         *FAAQueue
}

func newPartialQueue(bufferSize int, provider MemoryProvider) *partialQueue {
	return &partialQueue{faa: NewFAAQueue(bufferSize, provider)}
}

func (p *partialQueue) enqueue(h *Handle, v Value) error {
	if err := p.faa.Enqueue(h, v); err != nil {
		return err
	}
	p.tailVersion.AddAcqRel(1)
	return nil
}

func (p *partialQueue) dequeue(h *Handle) (Value, error) {
	return p.faa.Dequeue(h)
}

// cumulativeIndex returns idx + bufferSize*nodeIdx, capping idx at
// bufferSize for a segment observed mid-roll. Grounded on the original's
// faaaq_enq_count/faaaq_deq_count (original_source/src/faaaq/faaaq.c), which
// compute exactly this to give a monotonically increasing count across
// segment boundaries rather than resetting every time the chain rolls.
func cumulativeIndex(idx, nodeIdx uint64, bufferSize int) uint64 {
	b := uint64(bufferSize)
	if idx > b {
		idx = b
	}
	return idx + b*nodeIdx
}

func (p *partialQueue) enqCount() uint64 {
	t := p.faa.tail.Load()
	return cumulativeIndex(t.enqIdx.LoadAcquire(), t.nodeIdx, p.faa.bufferSize)
}

func (p *partialQueue) deqCount() uint64 {
	hd := p.faa.head.Load()
	return cumulativeIndex(hd.deqIdx.LoadAcquire(), hd.nodeIdx, p.faa.bufferSize)
}

// length is enqCount-deqCount, signed since reads of the two counters are
// not atomic with respect to each other and may transiently disagree.
func (p *partialQueue) length() int64 {
	return int64(p.enqCount()) - int64(p.deqCount())
}

func (p *partialQueue) tailVer() uint64 {
	return p.tailVersion.LoadAcquire()
}

func (p *partialQueue) approxSize() int {
	return p.faa.approxSize()
}
