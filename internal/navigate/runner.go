package navigate

import (
	"sync"
	"time"
)

// Runner drives a tick function off a real timer for hosts that have no
// recurring-timer primitive of their own. At most one runner should be live
// per controller; starting a replacement jump means stopping the old runner
// first, which the viewer engine takes care of.
//
// Design decision: the Runner calls the tick function from its own
// goroutine. The engine serializes access to its state internally, so the
// core stays single-threaded in contract even when the host is not.
type Runner struct {
	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// StartRunner begins invoking tick every interval until tick returns true or
// Stop is called.
func StartRunner(interval time.Duration, tick func() bool) *Runner {
	if interval <= 0 {
		interval = time.Millisecond
	}
	r := &Runner{
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go func() {
		defer close(r.stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				if tick() {
					return
				}
			}
		}
	}()
	return r
}

// Stop halts the runner and waits for its goroutine to exit. Safe to call
// more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.stopped
}
