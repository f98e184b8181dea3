package manager

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"unicode"

	"mtbench/internal/translator"
)

// fakeBackend encodes text as rune ids and "translates" by upper-casing.
// It is stateless per call so several instances can share it.
type fakeBackend struct {
	accel    bool
	accelErr error

	mu       sync.Mutex
	modelErr error

	loads  atomic.Int32
	gens   atomic.Int32
	closed atomic.Int32

	// loadGate, when set, blocks LoadModel until closed.
	loadGate chan struct{}
	// genGate, when set, blocks Generate until a value is received or ctx ends.
	genGate chan struct{}
	// genStarted receives one value per Generate call, if set.
	genStarted chan struct{}
}

func (b *fakeBackend) AcceleratorAvailable(ctx context.Context) (bool, error) {
	return b.accel, b.accelErr
}

func (b *fakeBackend) LoadTokenizer(ctx context.Context, modelID, src, tgt string) (translator.Tokenizer, error) {
	return fakeTokenizer{}, nil
}

func (b *fakeBackend) LoadModel(ctx context.Context, kind, modelID string, opts translator.LoadOptions) (translator.Model, error) {
	b.loads.Add(1)
	if b.loadGate != nil {
		select {
		case <-b.loadGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	b.mu.Lock()
	err := b.modelErr
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &fakeModel{b: b, device: translator.DeviceCPU}, nil
}

func (b *fakeBackend) setModelErr(err error) {
	b.mu.Lock()
	b.modelErr = err
	b.mu.Unlock()
}

type fakeTokenizer struct{}

func (fakeTokenizer) EncodeBatch(ctx context.Context, texts []string) (translator.TokenIDs, error) {
	ids := make(translator.TokenIDs, len(texts))
	for i, s := range texts {
		for _, r := range s {
			ids[i] = append(ids[i], int64(r))
		}
	}
	return ids, nil
}

func (fakeTokenizer) DecodeBatch(ctx context.Context, ids translator.TokenIDs, skip bool) ([]string, error) {
	out := make([]string, len(ids))
	for i, row := range ids {
		rs := make([]rune, len(row))
		for j, id := range row {
			rs[j] = rune(id)
		}
		out[i] = " " + string(rs) + " "
	}
	return out, nil
}

func (fakeTokenizer) LangID(ctx context.Context, code string) (int64, error) {
	return int64(len(code)) + 128000, nil
}

func (fakeTokenizer) Close(ctx context.Context) error { return nil }

func (fakeTokenizer) LangCodeToID() map[string]int64 {
	return map[string]int64{"en_XX": 250004, "ro_RO": 250020, "de_DE": 250003}
}

type fakeModel struct {
	b      *fakeBackend
	device translator.Device
}

func (m *fakeModel) Device() translator.Device { return m.device }

func (m *fakeModel) To(ctx context.Context, d translator.Device) error {
	m.device = d
	return nil
}

func (m *fakeModel) Eval(ctx context.Context) error { return nil }

func (m *fakeModel) Close(ctx context.Context) error {
	m.b.closed.Add(1)
	return nil
}

func (m *fakeModel) Generate(ctx context.Context, ids translator.TokenIDs, args translator.ControlArgs) (translator.TokenIDs, error) {
	m.b.gens.Add(1)
	if m.b.genStarted != nil {
		m.b.genStarted <- struct{}{}
	}
	if m.b.genGate != nil {
		select {
		case <-m.b.genGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	out := make(translator.TokenIDs, len(ids))
	for i, row := range ids {
		out[i] = make([]int64, len(row))
		for j, id := range row {
			out[i][j] = int64(unicode.ToUpper(rune(id)))
		}
	}
	return out, nil
}

func newTestManager(t *testing.T, b translator.Backend, cfg ManagerConfig) *Manager {
	t.Helper()
	cfg.Backend = b
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	return NewWithConfig(cfg)
}
