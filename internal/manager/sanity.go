package manager

import (
	"context"
	"time"
)

const sanityTimeout = 5 * time.Second

// SanityReport describes runtime checks for external dependencies.
type SanityReport struct {
	BackendConfigured bool   `json:"backend_configured"`
	BackendReachable  bool   `json:"backend_reachable"`
	Accelerator       bool   `json:"accelerator"`
	Error             string `json:"error,omitempty"`
}

// SanityCheck asks the backend whether an accelerator is available, which is
// also the cheapest reachability probe it offers. It does not mutate state
// and is safe to call at any time.
func (m *Manager) SanityCheck(ctx context.Context) SanityReport {
	var r SanityReport
	if m.backend == nil {
		r.Error = "model backend not configured"
		return r
	}
	r.BackendConfigured = true
	ctx, cancel := context.WithTimeout(ctx, sanityTimeout)
	defer cancel()
	accel, err := m.backend.AcceleratorAvailable(ctx)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.BackendReachable = true
	r.Accelerator = accel
	return r
}
