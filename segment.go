// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// segment is a fixed-capacity slot array forming one node of a FAAQueue's
// linked chain. enqIdx and deqIdx are monotonically non-decreasing FAA
// counters; either may exceed bufferSize, which signals "full/drained,
// advance". Once next is set by a successful CompareAndSwap it never
// changes again.
type segment struct {
	_       pad
	enqIdx  atomix.Uint64
	_       pad
	deqIdx  atomix.Uint64
	_       pad
	next    atomic.Pointer[segment]
	_       pad
	nodeIdx uint64 // immutable after construction
	items   []atomix.Uint64
}

// newSegment allocates a segment for the given chain position. If v0 is
// provided (ok == true), slot 0 is pre-filled and enqIdx starts at 1,
// matching the producer that creates a successor segment while holding a
// value to publish into it (spec §4.1 enqueue case i==B).
func newSegment(nodeIdx uint64, bufferSize int, v0 Value, ok bool) *segment {
	s := &segment{
		nodeIdx: nodeIdx,
		items:   make([]atomix.Uint64, bufferSize),
	}
	for i := range s.items {
		s.items[i].StoreRelaxed(Empty)
	}
	if ok {
		s.items[0].StoreRelease(v0)
		s.enqIdx.StoreRelaxed(1)
	}
	return s
}
