// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package relaxq

// RaceEnabled is true when the race detector is active.
// Tests can consult it to skip stress tests whose correctness depends on
// acquire-release ordering the race detector cannot observe; none of this
// package's own tests do.
const RaceEnabled = true
