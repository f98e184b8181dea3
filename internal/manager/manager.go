package manager

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mtbench/internal/catalog"
	"mtbench/internal/translator"
	"mtbench/pkg/types"
)

type Manager struct {
	mu      sync.RWMutex
	state   State
	last    *Key
	err     string
	catalog *catalog.Catalog
	backend translator.Backend

	defaultModel string
	defaultTask  string
	defaultQuant string

	instances    map[Key]*Instance
	maxInstances int
	loadsTotal   uint64

	// warm is set once a warm-up of the default translator was requested.
	warm bool

	// Queue config
	maxQueueDepth int
	maxWait       time.Duration
	drainTimeout  time.Duration

	baseCtx   context.Context
	out       io.Writer
	log       zerolog.Logger
	publisher EventPublisher
	startTime time.Time
}

// New builds a Manager with package defaults for queueing.
func New(b translator.Backend, cat *catalog.Catalog, defaultModel, defaultTask string) *Manager {
	return NewWithConfig(ManagerConfig{
		Backend:      b,
		Catalog:      cat,
		DefaultModel: defaultModel,
		DefaultTask:  defaultTask,
	})
}

// Ready reports whether the manager can serve requests. It is ready while any
// translator is prepared. With none prepared it is ready only if translators
// are prepared lazily, that is when no Warmup is pending or has failed.
// A failed preparation of one key never affects readiness on its own.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, inst := range m.instances {
		if inst.State == StateReady {
			return true
		}
	}
	return !m.warm
}

// ListModels returns every model the catalog knows about.
func (m *Manager) ListModels() []types.Model {
	return m.catalog.Models()
}

// ListTasks returns every task the catalog knows about.
func (m *Manager) ListTasks() []types.Task {
	ts := m.catalog.Tasks()
	out := make([]types.Task, len(ts))
	for i, t := range ts {
		out[i] = types.Task{Name: t.Name, SrcLang: t.SrcLang, TgtLang: t.TgtLang}
	}
	return out
}

// Resolve returns the tokenizer codes for a model/task pair without loading anything.
func (m *Manager) Resolve(modelID, task string) (types.ResolveResponse, error) {
	src, tgt, err := m.catalog.Resolve(modelID, task)
	if err != nil {
		return types.ResolveResponse{}, err
	}
	return types.ResolveResponse{SrcLang: src, TgtLang: tgt}, nil
}

// keyFor applies server defaults to a request.
func (m *Manager) keyFor(modelID, task, quant string) (Key, error) {
	if modelID == "" {
		modelID = m.defaultModel
		if modelID == "" {
			return Key{}, modelNotFoundError{id: "(unspecified)"}
		}
	}
	if task == "" {
		task = m.defaultTask
		if task == "" {
			return Key{}, &catalog.UnrecognizedError{Kind: "task", ID: "(unspecified)"}
		}
	}
	if quant == "" {
		quant = m.defaultQuant
	}
	return Key{ModelID: modelID, Task: task, Quant: translator.ParseQuantMode(quant)}, nil
}
