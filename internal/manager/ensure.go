package manager

import (
	"context"
	"time"

	"mtbench/internal/translator"
)

// EnsureInstance returns a prepared translator instance for key, preparing it
// on first use. Concurrent callers for the same key wait for a single
// preparation. The preparation runs on the manager's base context, so a
// caller that gives up does not fail the others; every caller waits on its
// own ctx.
//
// A failed preparation is not cached: the instance is removed and every
// waiter gets the error, so the next request retries.
func (m *Manager) EnsureInstance(ctx context.Context, key Key) (*Instance, error) {
	if m.backend == nil {
		return nil, ErrDependencyUnavailable("model backend not configured")
	}
	m.mu.Lock()
	inst, ok := m.instances[key]
	switch {
	case !ok:
		inst = m.startPrepareLocked(key)
	case inst.State == StateReady:
		inst.LastUsed = time.Now()
		m.mu.Unlock()
		return inst, nil
	case inst.State == StateDraining:
		m.mu.Unlock()
		return nil, tooBusyError{key: key.String()}
	}
	ready := inst.ready
	m.mu.Unlock()

	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch inst.State {
	case StateReady:
		inst.LastUsed = time.Now()
		return inst, nil
	case StateError:
		return nil, inst.prepErr
	default:
		// Unloaded or evicted before anyone could use it.
		return nil, tooBusyError{key: key.String()}
	}
}

// Warmup prepares the default translator when both a default model and task
// are configured. Until some translator is ready, Ready reports false.
func (m *Manager) Warmup(ctx context.Context) error {
	key, err := m.keyFor("", "", "")
	if err != nil {
		return nil
	}
	m.mu.Lock()
	m.warm = true
	m.mu.Unlock()
	_, err = m.EnsureInstance(ctx, key)
	return err
}

// startPrepareLocked registers a loading instance and starts its preparation.
// Caller must hold m.mu.
func (m *Manager) startPrepareLocked(key Key) *Instance {
	evicted := m.evictLocked()
	inst := &Instance{
		Key:      key,
		State:    StateLoading,
		LastUsed: time.Now(),
		ready:    make(chan struct{}),
		genCh:    make(chan struct{}, 1),
		queueCh:  make(chan struct{}, m.maxQueueDepth),
	}
	m.instances[key] = inst
	m.state = StateLoading
	go m.prepare(inst, evicted)
	return inst
}

// prepare frees evicted instances first, then builds the translator for inst.
func (m *Manager) prepare(inst *Instance, evicted []*Instance) {
	for _, old := range evicted {
		m.closeInstance(old)
	}
	key := inst.Key
	m.publisher.Publish(Event{Name: "prepare_start", Key: key.String(), Fields: map[string]any{}})
	start := time.Now()
	tr, err := translator.New(m.baseCtx, m.backend, translator.Options{
		ModelID:  key.ModelID,
		Task:     key.Task,
		Quantize: string(key.Quant),
		Catalog:  m.catalog,
		Out:      m.out,
		Logger:   &m.log,
		OnBatch:  observeBatch,
	})

	m.mu.Lock()
	m.loadsTotal++
	k := key
	m.last = &k
	orphaned := err == nil && (inst.State == StateDraining || m.instances[key] != inst)
	switch {
	case err != nil:
		inst.State = StateError
		inst.Err = err.Error()
		inst.prepErr = err
		if m.instances[key] == inst {
			delete(m.instances, key)
		}
		m.state = StateError
		m.err = err.Error()
	case orphaned:
		inst.State = StateDraining
		inst.closed = true
	default:
		inst.tr = tr
		inst.State = StateReady
		inst.LastUsed = time.Now()
		m.state = StateReady
		m.err = ""
	}
	close(inst.ready)
	m.mu.Unlock()

	dur := time.Since(start)
	switch {
	case err != nil:
		preparesTotal.WithLabelValues("error").Inc()
		m.log.Error().Err(err).Str("key", key.String()).Dur("dur", dur).Msg("translator prepare failed")
		m.publisher.Publish(Event{Name: "prepare_error", Key: key.String(), Fields: map[string]any{"error": err.Error()}})
	case orphaned:
		preparesTotal.WithLabelValues("discarded").Inc()
		m.log.Info().Str("key", key.String()).Dur("dur", dur).Msg("translator unloaded while preparing; releasing")
		m.closeTranslator(key, tr)
		m.publisher.Publish(Event{Name: "prepare_discarded", Key: key.String(), Fields: map[string]any{}})
	default:
		preparesTotal.WithLabelValues("ok").Inc()
		m.log.Info().Str("key", key.String()).Str("device", string(tr.Device())).Dur("dur", dur).Msg("translator ready")
		m.publisher.Publish(Event{Name: "prepare_done", Key: key.String(), Fields: map[string]any{"device": string(tr.Device())}})
	}
}

// closeInstance releases the backend handles of an instance that is no longer
// in m.instances. It waits for the in-flight generation, if any, to finish.
func (m *Manager) closeInstance(inst *Instance) {
	inst.genCh <- struct{}{}
	defer func() { <-inst.genCh }()
	m.mu.Lock()
	tr := inst.tr
	inst.tr = nil
	inst.closed = true
	m.mu.Unlock()
	if tr != nil {
		m.closeTranslator(inst.Key, tr)
	}
}

func (m *Manager) closeTranslator(key Key, tr *translator.Translator) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(m.baseCtx), m.drainTimeout)
	defer cancel()
	if err := tr.Close(ctx); err != nil {
		m.log.Warn().Err(err).Str("key", key.String()).Msg("release translator")
	}
}
