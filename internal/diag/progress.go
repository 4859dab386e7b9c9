package diag

import "sync/atomic"

// Progress is one (current, total) update from a long-running stage.
type Progress struct {
	Stage   string
	Current int
	Total   int
}

// Reporter receives progress updates. Implementations must not block.
type Reporter interface {
	Report(p Progress)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(p Progress)

// Report calls f(p).
func (f ReporterFunc) Report(p Progress) { f(p) }

// Discard ignores every update.
var Discard Reporter = ReporterFunc(func(Progress) {})

// ProgressInterval is how many faces a stage processes between updates.
const ProgressInterval = 5000

// ChannelReporter forwards updates to a channel, dropping them when the
// receiver is not ready. It is safe for concurrent use.
type ChannelReporter struct {
	ch      chan<- Progress
	dropped atomic.Int64
}

// NewChannelReporter returns a reporter that never blocks on ch.
func NewChannelReporter(ch chan<- Progress) *ChannelReporter {
	return &ChannelReporter{ch: ch}
}

// Report sends p if the channel has room.
func (r *ChannelReporter) Report(p Progress) {
	select {
	case r.ch <- p:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns the number of updates that were discarded.
func (r *ChannelReporter) Dropped() int {
	return int(r.dropped.Load())
}

// Step reports progress every ProgressInterval items and on the last one.
func Step(r Reporter, stage string, current, total int) {
	if r == nil {
		return
	}
	if current%ProgressInterval == 0 || current == total-1 {
		r.Report(Progress{Stage: stage, Current: current + 1, Total: total})
	}
}
