// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq

import (
	"math/rand/v2"
	"sync/atomic"
)

// inactiveEpoch marks a handle as not currently inside a critical section,
// for consumption by EpochProvider. GCProvider ignores this field entirely.
const inactiveEpoch = ^uint64(0)

// Handle is a per-thread registration returned by MultiQueue.Register. It
// carries everything the original C implementation kept in thread-local
// storage (§9): the RNG seed, the double-collect scratch buffer, and the
// trace log. There is no hidden global state — every operation in this
// package takes its Handle explicitly.
type Handle struct {
	id  int
	mq  *MultiQueue
	rng *rand.Rand

	// versions is double-collect scratch: one tail-version snapshot per
	// sub-queue, sized once at registration (§5 thread registration).
	versions []uint64

	trace Recorder

	// epoch is this handle's locally observed epoch, used only by
	// EpochProvider; inactiveEpoch while the handle is outside any
	// queue operation.
	epoch atomic.Uint64
}

// ID returns the dense thread id this handle was registered with.
func (h *Handle) ID() int { return h.id }

func newHandle(mq *MultiQueue, id int, seed1, seed2 uint64, trace Recorder) *Handle {
	h := &Handle{
		id:       id,
		mq:       mq,
		rng:      rand.New(rand.NewPCG(seed1, seed2)),
		versions: make([]uint64, mq.width()),
		trace:    trace,
	}
	h.epoch.Store(inactiveEpoch)
	return h
}
