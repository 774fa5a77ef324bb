package tracker

import (
	"sync"
	"time"
)

// Cancel stops a scheduled task. It is safe to call more than once and
// never blocks on the task itself.
type Cancel func()

// Scheduler runs the runtime's timed callbacks.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Cancel
	After(delay time.Duration, fn func()) Cancel
}

var _ Scheduler = RealScheduler{}

type RealScheduler struct{}

func (RealScheduler) Every(interval time.Duration, fn func()) Cancel {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (RealScheduler) After(delay time.Duration, fn func()) Cancel {
	t := time.AfterFunc(delay, fn)
	return func() {
		t.Stop()
	}
}
