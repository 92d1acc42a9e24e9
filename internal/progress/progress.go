// Package progress hands samples from the transfer goroutine to an
// observer without ever blocking the transfer.
package progress

import (
	"sync"

	"sftpgrab/internal/models"
)

// Reporter is a one-slot conflating channel. Publish replaces any pending
// unconsumed sample, which is lossless for display purposes because samples
// are monotonic and only the latest value matters to a progress bar. The
// terminal sample handed to Finish is always delivered.
//
// All methods are safe on a nil Reporter, so callers that do not observe
// progress can simply pass nil.
type Reporter struct {
	ch        chan models.ProgressSample
	closeOnce sync.Once
}

func NewReporter() *Reporter {
	return &Reporter{ch: make(chan models.ProgressSample, 1)}
}

// Publish offers a sample to the observer. Never blocks: if the previous
// sample has not been consumed yet it is replaced.
func (r *Reporter) Publish(s models.ProgressSample) {
	if r == nil {
		return
	}
	for {
		select {
		case r.ch <- s:
			return
		default:
		}
		// Slot full: drop the superseded sample and retry.
		select {
		case <-r.ch:
		default:
		}
	}
}

// Finish publishes the terminal sample and closes the stream. The sample
// stays buffered in the slot, so the observer always sees it before the
// channel reports closed.
func (r *Reporter) Finish(s models.ProgressSample) {
	if r == nil {
		return
	}
	r.closeOnce.Do(func() {
		r.Publish(s)
		close(r.ch)
	})
}

// Close ends the stream without a terminal sample, for failed attempts.
func (r *Reporter) Close() {
	if r == nil {
		return
	}
	r.closeOnce.Do(func() {
		close(r.ch)
	})
}

// Samples is the observer side of the reporter. The channel is closed when
// the attempt reaches a terminal state.
func (r *Reporter) Samples() <-chan models.ProgressSample {
	return r.ch
}
