// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq

// Value is a machine-word-sized opaque identifier. Keys and values in this
// package's queues are always Value; callers wanting richer payloads store an
// index or handle into their own table and enqueue that.
type Value = uint64

const (
	// Empty marks an unwritten slot. Never enqueue this value.
	Empty Value = ^Value(0)
	// Taken marks a slot whose value has been consumed. Never enqueue this value.
	Taken Value = ^Value(0) - 1
)

// reserved reports whether v is one of the sentinel values producers must
// never enqueue.
func reserved(v Value) bool {
	return v == Empty || v == Taken
}
