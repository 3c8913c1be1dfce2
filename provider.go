// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq

import "sync"

// MemoryProvider is the allocation/reclamation boundary a FAAQueue consumes
// (§6.5). The low-level slab/allocator internals are out of scope (§1); this
// package only defines and consumes the contract, plus two implementations
// suitable for a garbage-collected language.
type MemoryProvider interface {
	// Alloc returns a freshly constructed segment at the given chain
	// position. If ok, slot 0 is pre-filled with v0 (the producer that
	// observed a full tail and is creating its own successor, §4.1 case i==B).
	Alloc(nodeIdx uint64, bufferSize int, v0 Value, ok bool) *segment
	// Retire hands a segment that head has advanced past to the provider
	// for reclamation. The caller must not dereference s after calling Retire.
	Retire(h *Handle, s *segment)
	// RegisterThread wires a newly registered handle into the provider.
	RegisterThread(h *Handle)
	// DeregisterThread removes a handle's bookkeeping from the provider.
	DeregisterThread(h *Handle)
	// Pin marks the start of a critical section in which h may hold
	// references to segments reachable from the queue at call time. Unpin
	// ends it. Every FAAQueue operation brackets its body with Pin/Unpin so
	// a provider with real reclamation (EpochProvider) never frees a
	// segment a thread is still touching.
	Pin(h *Handle)
	Unpin(h *Handle)
}

// GCProvider defers reclamation entirely to the Go garbage collector: once
// FAAQueue.head advances past a segment and no handle holds a reference to
// it, it becomes unreachable and the runtime frees it. This is the idiomatic
// Go answer to spec §5's "opaque memory provider" — no hazard/epoch
// bookkeeping is needed because the language already guarantees a reference
// is never freed while reachable.
type GCProvider struct{}

// NewGCProvider returns the default memory provider (GCOn).
func NewGCProvider() *GCProvider { return &GCProvider{} }

func (*GCProvider) Alloc(nodeIdx uint64, bufferSize int, v0 Value, ok bool) *segment {
	return newSegment(nodeIdx, bufferSize, v0, ok)
}
func (*GCProvider) Retire(*Handle, *segment)      {}
func (*GCProvider) RegisterThread(*Handle)        {}
func (*GCProvider) DeregisterThread(*Handle)      {}
func (*GCProvider) Pin(*Handle)                   {}
func (*GCProvider) Unpin(*Handle)                 {}

// LeakProvider never reclaims retired segments: they are kept alive for the
// process lifetime. This backs GCOff, for callers who want to benchmark the
// queue algorithm itself without any reclamation or collector interference.
type LeakProvider struct {
	mu   sync.Mutex
	kept []*segment
}

// NewLeakProvider returns a memory provider that never frees retired segments.
func NewLeakProvider() *LeakProvider { return &LeakProvider{} }

func (*LeakProvider) Alloc(nodeIdx uint64, bufferSize int, v0 Value, ok bool) *segment {
	return newSegment(nodeIdx, bufferSize, v0, ok)
}

func (p *LeakProvider) Retire(_ *Handle, s *segment) {
	p.mu.Lock()
	p.kept = append(p.kept, s)
	p.mu.Unlock()
}

func (*LeakProvider) RegisterThread(*Handle)   {}
func (*LeakProvider) DeregisterThread(*Handle) {}
func (*LeakProvider) Pin(*Handle)              {}
func (*LeakProvider) Unpin(*Handle)            {}

// epochGenerations is the number of garbage generations EpochProvider keeps
// before actually dropping references. Three generations is the standard
// bound for this style of reclamation: a segment retired at epoch e cannot
// be touched by a thread that was pinned at e, e-1 (it would have observed
// the retirement and moved on), so it is safe to drop once the global
// epoch has advanced two steps past e. Retire drops a bag when the epoch
// comes back round to its generation, three steps past e, one step later
// than that bound requires.
const epochGenerations = 3

// EpochProvider is a compact, bounded-lag reclamation scheme for callers who
// want deterministic, GC-independent freeing instead of relying on Go's
// tracing collector. It is grounded on the interface contract spec §6.5
// names (register/deregister/retire) and the three-epoch discipline spec §5
// and §9 describe, not on a specific third-party implementation — nothing in
// the example pack implements epoch reclamation.
type EpochProvider struct {
	mu      sync.Mutex
	epoch   uint64
	handles []*Handle
	garbage [epochGenerations][]*segment
}

// NewEpochProvider returns a new epoch-based memory provider.
func NewEpochProvider() *EpochProvider {
	return &EpochProvider{}
}

func (p *EpochProvider) Alloc(nodeIdx uint64, bufferSize int, v0 Value, ok bool) *segment {
	return newSegment(nodeIdx, bufferSize, v0, ok)
}

func (p *EpochProvider) RegisterThread(h *Handle) {
	p.mu.Lock()
	p.handles = append(p.handles, h)
	p.mu.Unlock()
}

func (p *EpochProvider) DeregisterThread(h *Handle) {
	p.mu.Lock()
	for i, hh := range p.handles {
		if hh == h {
			p.handles = append(p.handles[:i], p.handles[i+1:]...)
			break
		}
	}
	p.mu.Unlock()
}

func (p *EpochProvider) Pin(h *Handle) {
	p.mu.Lock()
	e := p.epoch
	p.mu.Unlock()
	h.epoch.Store(e)
}

func (p *EpochProvider) Unpin(h *Handle) {
	h.epoch.Store(inactiveEpoch)
}

// Retire stashes s in the current generation's garbage bag and opportunistically
// tries to advance the global epoch, dropping the bag of segments retired
// three epochs before the new one.
func (p *EpochProvider) Retire(_ *Handle, s *segment) {
	p.mu.Lock()
	defer p.mu.Unlock()

	gen := p.epoch % epochGenerations
	p.garbage[gen] = append(p.garbage[gen], s)

	for _, hh := range p.handles {
		if e := hh.epoch.Load(); e != inactiveEpoch && e != p.epoch {
			return // some thread hasn't caught up to the current epoch yet
		}
	}

	p.epoch++
	staleGen := p.epoch % epochGenerations
	p.garbage[staleGen] = nil // drop references; runtime reclaims once unreachable
}
