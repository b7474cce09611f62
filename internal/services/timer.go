package services

import (
	"sync"
	"time"
)

// ExpiryTimers schedules one cancellable expiry callback per session. The
// callback fires once when the session's allotted time elapses; cancelling on
// any terminal transition prevents a stale timer from triggering a second
// scoring pass. The submit/expiry race itself is decided by the session
// store's CAS, so a late firing is harmless but still cancelled eagerly.
type ExpiryTimers struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewExpiryTimers() *ExpiryTimers {
	return &ExpiryTimers{
		timers: make(map[string]*time.Timer),
	}
}

// Arm schedules fn to run after d. A previous timer for the same session is
// stopped first.
func (t *ExpiryTimers) Arm(sessionID string, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, ok := t.timers[sessionID]; ok {
		timer.Stop()
	}
	t.timers[sessionID] = time.AfterFunc(d, func() {
		t.remove(sessionID)
		fn()
	})
}

// Cancel stops and forgets the session's timer, if any.
func (t *ExpiryTimers) Cancel(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, ok := t.timers[sessionID]; ok {
		timer.Stop()
		delete(t.timers, sessionID)
	}
}

// Stop cancels every armed timer. Used on shutdown.
func (t *ExpiryTimers) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}

func (t *ExpiryTimers) remove(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.timers, sessionID)
}
