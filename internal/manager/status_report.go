package manager

import (
	"cmp"
	"slices"
	"time"

	"mtbench/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, Last: m.last, Err: m.err}
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	resp := types.StatusResponse{
		LastError:      m.err,
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
		LoadsTotal:     m.loadsTotal,
		State:          string(m.state),
	}
	resp.Instances = make([]types.InstanceStatus, 0, len(m.instances))
	warmups := 0
	for _, inst := range m.instances {
		if inst.State == StateLoading {
			warmups++
		}
		st := types.InstanceStatus{
			Key:           inst.Key.String(),
			ModelID:       inst.Key.ModelID,
			Task:          inst.Key.Task,
			Precision:     string(inst.Key.Quant),
			State:         string(inst.State),
			LastUsed:      inst.LastUsed.Unix(),
			QueueLen:      len(inst.queueCh),
			Inflight:      len(inst.genCh),
			MaxQueueDepth: cap(inst.queueCh),
		}
		if inst.tr != nil {
			st.Device = string(inst.tr.Device())
		}
		resp.Instances = append(resp.Instances, st)
	}
	slices.SortFunc(resp.Instances, func(a, b types.InstanceStatus) int { return cmp.Compare(a.Key, b.Key) })
	resp.WarmupsInProgress = warmups
	return resp
}
