package manager

import (
	"time"
)

// Unload initiates a graceful drain of a translator instance and removes it.
// - Sets instance state to draining to reject new enqueues.
// - Waits up to drainTimeout for in-flight and queued requests to finish.
// - Removes the instance entry and releases its backend handles. After a
//   drain timeout the release waits for the in-flight generation in the
//   background.
//
// An instance that is still loading is removed at once; its preparation
// releases the handles when it completes.
//
// key is the instance key as reported by /status (model|task|quantize).
func (m *Manager) Unload(key string) error {
	if key == "" {
		return ErrModelNotFound("(unspecified)")
	}
	m.mu.Lock()
	inst := m.findLocked(key)
	if inst == nil {
		m.mu.Unlock()
		return ErrModelNotFound(key)
	}
	loading := inst.State == StateLoading
	inst.State = StateDraining
	if loading {
		delete(m.instances, inst.Key)
	}
	m.mu.Unlock()
	m.publisher.Publish(Event{Name: "unload_start", Key: key, Fields: map[string]any{}})
	if loading {
		m.log.Info().Str("key", key).Msg("translator unloaded while loading")
		m.publisher.Publish(Event{Name: "unload_done", Key: key, Fields: map[string]any{}})
		return nil
	}

	deadline := time.Now().Add(m.drainTimeout)
	drained := true
	for {
		qlen := len(inst.queueCh)
		inflight := len(inst.genCh)
		if inflight == 0 && qlen == 0 {
			break
		}
		if time.Now().After(deadline) {
			m.log.Warn().Str("key", key).Int("inflight", inflight).Int("queue", qlen).Msg("unload drain timed out")
			m.publisher.Publish(Event{Name: "unload_timeout", Key: key, Fields: map[string]any{"inflight": inflight, "queue": qlen}})
			drained = false
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	m.mu.Lock()
	if m.instances[inst.Key] == inst {
		delete(m.instances, inst.Key)
	}
	m.mu.Unlock()
	if drained {
		m.closeInstance(inst)
	} else {
		go m.closeInstance(inst)
	}

	m.log.Info().Str("key", key).Msg("translator unloaded")
	m.publisher.Publish(Event{Name: "unload_done", Key: key, Fields: map[string]any{}})
	return nil
}

// UnloadAll drains every instance. Used on shutdown.
func (m *Manager) UnloadAll() {
	m.mu.RLock()
	keys := make([]string, 0, len(m.instances))
	for k := range m.instances {
		keys = append(keys, k.String())
	}
	m.mu.RUnlock()
	for _, k := range keys {
		_ = m.Unload(k)
	}
}

// findLocked looks an instance up by its string key. Caller must hold m.mu.
func (m *Manager) findLocked(key string) *Instance {
	for k, inst := range m.instances {
		if k.String() == key {
			return inst
		}
	}
	return nil
}
