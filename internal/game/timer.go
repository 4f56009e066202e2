package game

import "time"

// PlayTimer accumulates play time across pauses. It never runs in the
// background; elapsed time is computed on demand from the clock.
type PlayTimer struct {
	now         func() time.Time
	accumulated time.Duration
	startedAt   time.Time
	running     bool
	paused      bool
}

func newPlayTimer(now func() time.Time) PlayTimer {
	if now == nil {
		now = time.Now
	}
	return PlayTimer{now: now}
}

func (t *PlayTimer) Start() {
	if t.running {
		return
	}
	t.startedAt = t.now()
	t.running = true
	t.paused = false
}

func (t *PlayTimer) Pause() {
	if !t.running {
		return
	}
	t.Stop()
	t.paused = true
}

func (t *PlayTimer) Resume() {
	if !t.paused {
		return
	}
	t.Start()
}

// Stop freezes the accumulated time without marking the timer paused.
func (t *PlayTimer) Stop() {
	if !t.running {
		return
	}
	t.accumulated += t.now().Sub(t.startedAt)
	t.running = false
}

func (t *PlayTimer) Reset() {
	*t = newPlayTimer(t.now)
}

func (t *PlayTimer) IsPaused() bool {
	return t.paused
}

func (t *PlayTimer) Elapsed() time.Duration {
	if t.running {
		return t.accumulated + t.now().Sub(t.startedAt)
	}
	return t.accumulated
}

// restore sets the timer to a stopped state holding elapsed.
func (t *PlayTimer) restore(elapsed time.Duration, paused bool) {
	t.Reset()
	t.accumulated = elapsed
	t.paused = paused
}
