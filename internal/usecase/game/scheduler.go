package game

import (
	"time"
)

// Scheduler defers a task. The returned cancel func must be safe to call
// after the task already ran.
type Scheduler interface {
	Schedule(delay time.Duration, task func()) (cancel func())
}

type timerScheduler struct{}

func (timerScheduler) Schedule(delay time.Duration, task func()) func() {
	timer := time.AfterFunc(delay, task)
	return func() {
		timer.Stop()
	}
}
