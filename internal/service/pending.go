package service

import "sync/atomic"

// writeTracker counts in-flight writes for one resource
type writeTracker struct {
	inFlight atomic.Int32
}

// begin marks a write as started and returns the matching completion func
func (w *writeTracker) begin() func() {
	w.inFlight.Add(1)
	return func() { w.inFlight.Add(-1) }
}

func (w *writeTracker) pending() bool {
	return w.inFlight.Load() > 0
}
