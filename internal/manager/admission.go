package manager

import (
	"context"
	"time"
)

// beginGeneration reserves a queue slot and then the single in-flight slot.
// Returns a release func to be deferred.
func (m *Manager) beginGeneration(ctx context.Context, inst *Instance) (func(), error) {
	key := inst.Key.String()
	m.mu.RLock()
	draining := inst.State == StateDraining
	m.mu.RUnlock()
	// If draining, reject new work to allow graceful unload
	if draining {
		return func() {}, tooBusyError{key: key}
	}

	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	// Try to reserve a queue slot with timeout
	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case inst.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{key: key}
	}

	// Wait to acquire the single in-flight slot
	acquired := false
	defer func() {
		if !acquired {
			<-inst.queueCh
		}
	}()
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	timer2 := time.NewTimer(m.maxWait)
	defer timer2.Stop()
	select {
	case inst.genCh <- struct{}{}:
		m.mu.Lock()
		closed := inst.closed
		if !closed {
			inst.LastUsed = time.Now()
		}
		m.mu.Unlock()
		if closed {
			// Released by unload while this request was queued.
			<-inst.genCh
			return func() {}, tooBusyError{key: key}
		}
		acquired = true
		return func() { <-inst.genCh; <-inst.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer2.C:
		return func() {}, tooBusyError{key: key}
	}
}
