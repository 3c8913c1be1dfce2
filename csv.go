// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxq

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteTrace writes one row per recorded put/get across all handles, in the
// original tool's exact column order and kind tags: thread_id, value, KIND
// ("PUT" or "GET"), start_ns, end_ns. There is no header row, matching the
// original implementation's raw fprintf loop
// (original_source/include/relaxation_linearization_timestamps.c).
func WriteTrace(w io.Writer, handles []*Handle) error {
	cw := csv.NewWriter(w)
	for _, h := range handles {
		id := strconv.Itoa(h.ID())
		for _, e := range h.trace.Puts() {
			if err := cw.Write([]string{id, strconv.FormatUint(uint64(e.Value), 10), "PUT",
				strconv.FormatInt(e.Start, 10), strconv.FormatInt(e.End, 10)}); err != nil {
				return err
			}
		}
		for _, e := range h.trace.Gets() {
			if err := cw.Write([]string{id, strconv.FormatUint(uint64(e.Value), 10), "GET",
				strconv.FormatInt(e.Start, 10), strconv.FormatInt(e.End, 10)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
