package manager

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"mtbench/internal/translator"
	"mtbench/pkg/types"
)

// Translate resolves the request against server defaults, ensures the
// translator instance exists, waits for admission and streams one NDJSON
// line per result followed by a final {"done":true,"count":n} line.
//
// Online requests stream results in input order. Offline requests stream in
// length-sorted order; every line carries the input index.
func (m *Manager) Translate(ctx context.Context, req types.TranslateRequest, w io.Writer, flusher func()) error {
	key, err := m.keyFor(req.Model, req.Task, req.Quantize)
	if err != nil {
		return err
	}
	// Reject unknown or unsupported combinations before touching the backend.
	if _, _, err := m.catalog.Resolve(key.ModelID, key.Task); err != nil {
		return err
	}
	inst, err := m.EnsureInstance(ctx, key)
	if err != nil {
		return err
	}
	// Admission: per-instance FIFO queue, single in-flight
	release, err := m.beginGeneration(ctx, inst)
	if err != nil {
		return err
	}
	defer release()

	mode := "online"
	var s *translator.Stream
	if req.Offline {
		mode = "offline"
		s = inst.tr.PredictOffline(ctx, req.Inputs)
	} else {
		s = inst.tr.Predict(ctx, req.Inputs)
	}
	start := time.Now()
	n := 0
	for s.Next() {
		r := s.Result()
		if err := writeLine(w, types.TranslateLine{Index: r.Index, Text: r.Text}); err != nil {
			return err
		}
		n++
		if flusher != nil {
			flusher()
		}
	}
	if err := s.Err(); err != nil {
		translateRequestsTotal.WithLabelValues(mode, "error").Inc()
		return err
	}
	translateRequestsTotal.WithLabelValues(mode, "ok").Inc()
	m.log.Debug().Str("key", key.String()).Str("mode", mode).Int("count", n).Dur("dur", time.Since(start)).Msg("translate done")
	if err := writeLine(w, types.TranslateDone{Done: true, Count: n}); err != nil {
		return err
	}
	if flusher != nil {
		flusher()
	}
	return nil
}

// writeLine formats an NDJSON line using json.Marshal for correctness.
func writeLine(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
