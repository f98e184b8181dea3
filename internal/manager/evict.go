package manager

// evictLocked drops least-recently-used idle ready instances until there is
// room for one more and returns them. Their handles are still held: the caller
// passes them to closeInstance once m.mu is released. Instances that are
// loading, draining or have queued work are never evicted; if none qualifies
// the cap is temporarily exceeded.
// Caller must hold m.mu.
func (m *Manager) evictLocked() []*Instance {
	if m.maxInstances <= 0 {
		return nil
	}
	var out []*Instance
	for len(m.instances) >= m.maxInstances {
		var lru *Instance
		for _, inst := range m.instances {
			if inst.State != StateReady || len(inst.genCh) > 0 || len(inst.queueCh) > 0 {
				continue
			}
			if lru == nil || inst.LastUsed.Before(lru.LastUsed) {
				lru = inst
			}
		}
		if lru == nil {
			break
		}
		lru.State = StateDraining
		delete(m.instances, lru.Key)
		out = append(out, lru)
		evictionsTotal.Inc()
		m.log.Info().Str("key", lru.Key.String()).Msg("evicted idle translator")
		// Publish must not block; it runs under the manager lock here.
		m.publisher.Publish(Event{Name: "evict", Key: lru.Key.String(), Fields: map[string]any{}})
	}
	return out
}
