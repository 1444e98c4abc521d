// Released under an MIT license. See LICENSE.

// Package stats provides discdiag's I/O statistics: byte/IOP counters
// and the per-command scaled throughput report.
package stats

import (
	"fmt"
	"time"
)

// T accumulates read/write IOP and byte counters.
type T struct {
	IOPRead   int64
	IOPWrite  int64
	ByteRead  int64
	ByteWrite int64
}

// Reset zeroes all counters, done at the start of each top-level
// command.
func (s *T) Reset() {
	*s = T{}
}

// RecordRead accounts for a completed read of n bytes.
func (s *T) RecordRead(n int64) {
	s.IOPRead++
	s.ByteRead += n
}

// RecordWrite accounts for a completed write of n bytes.
func (s *T) RecordWrite(n int64) {
	s.IOPWrite++
	s.ByteWrite += n
}

// Window brackets one top-level command's timing: zero counters and
// record a start time on entry, then report elapsed time and
// throughput on return.
type Window struct {
	stats *T
	start time.Time
}

// Begin starts a new timing window, resetting s.
func Begin(s *T) *Window {
	s.Reset()
	return &Window{stats: s, start: time.Now()}
}

// Report renders the "Time: t IOW: ... IOR: ... IO: ... BW: ... BR: ... BT: ..."
// line for the window's elapsed time and the accumulated counters.
func (w *Window) Report() string {
	elapsed := time.Since(w.start).Seconds()

	s := w.stats

	return fmt.Sprintf(
		"Time: %.3f IOW: %s IOR: %s IO: %s BW: %s BR: %s BT: %s",
		elapsed,
		scale(s.IOPWrite), scale(s.IOPRead), scale(s.IOPWrite+s.IOPRead),
		scale(s.ByteWrite), scale(s.ByteRead), scale(s.ByteWrite+s.ByteRead),
	)
}

// scale renders n with SI-like scaling: k at >= 1024, M at >= 1024^2.
func scale(n int64) string {
	const (
		k = 1024
		m = k * 1024
	)

	switch {
	case n >= m:
		return fmt.Sprintf("%.2fM", float64(n)/m)
	case n >= k:
		return fmt.Sprintf("%.2fk", float64(n)/k)
	default:
		return fmt.Sprintf("%d", n)
	}
}
