// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq

import (
	"crypto/rand"
	"encoding/binary"
)

// seedPair draws two independent uint64 seeds for a per-handle PCG source.
// Platform RNG seeding is explicitly out of scope (spec §1); this only needs
// to avoid every registered handle sampling the same sequence, so a single
// crypto/rand read at registration time is sufficient and avoids
// reintroducing the global thread-local seed state §9 removes.
func seedPair() (uint64, uint64) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is effectively unreachable on supported
		// platforms; fall back to a fixed, clearly non-unique seed rather
		// than panicking Register.
		return 0x9e3779b97f4a7c15, 0xbf58476d1ce4e5b9
	}
	return binary.LittleEndian.Uint64(b[0:8]), binary.LittleEndian.Uint64(b[8:16])
}

// randIndex draws a uniform index in [0, w).
func (h *Handle) randIndex(w int) int {
	return h.rng.IntN(w)
}
