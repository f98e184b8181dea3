package translator

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

// fakeBackend is an in-memory Backend. "Generation" upper-cases each input
// and pads the decoded text with spaces so trimming is exercised.
type fakeBackend struct {
	accel    bool
	accelErr error
	tokErr   error
	modelErr error
	genErr   error
	evalErr  error
	genErrAt int // fail on the n-th generate call (1-based); 0 means genErr always
	// autoDevice overrides where DeviceMap "auto" places the weights.
	autoDevice Device
	tokenizer  *fakeTokenizer
	model      *fakeModel

	loadedKind string
	loadOpts   LoadOptions
	tokSrc     string
	tokTgt     string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tokenizer: &fakeTokenizer{table: map[string]int64{
			"en_XX": 250004, "ro_RO": 250020, "de_DE": 250003,
		}, m2m: map[string]int64{"en": 128022, "ro": 128079, "de": 128017}},
	}
}

func (b *fakeBackend) AcceleratorAvailable(ctx context.Context) (bool, error) {
	return b.accel, b.accelErr
}

func (b *fakeBackend) LoadTokenizer(ctx context.Context, modelID, src, tgt string) (Tokenizer, error) {
	if b.tokErr != nil {
		return nil, b.tokErr
	}
	b.tokSrc, b.tokTgt = src, tgt
	return b.tokenizer, nil
}

func (b *fakeBackend) LoadModel(ctx context.Context, kind, modelID string, opts LoadOptions) (Model, error) {
	if b.modelErr != nil {
		return nil, b.modelErr
	}
	b.loadedKind = kind
	b.loadOpts = opts
	b.model = &fakeModel{b: b, device: DeviceCPU}
	if opts.DeviceMap == "auto" && b.accel {
		b.model.device = DeviceCUDA
	}
	if opts.DeviceMap == "auto" && b.autoDevice != "" {
		b.model.device = b.autoDevice
	}
	return b.model, nil
}

type fakeTokenizer struct {
	table   map[string]int64
	m2m     map[string]int64
	vocab   []string
	batches []int
	langIDs []string
	closed  int
}

func (t *fakeTokenizer) EncodeBatch(ctx context.Context, texts []string) (TokenIDs, error) {
	t.batches = append(t.batches, len(texts))
	ids := make(TokenIDs, len(texts))
	for i, s := range texts {
		ids[i] = []int64{int64(len(t.vocab))}
		t.vocab = append(t.vocab, s)
	}
	return ids, nil
}

func (t *fakeTokenizer) DecodeBatch(ctx context.Context, ids TokenIDs, skip bool) ([]string, error) {
	out := make([]string, len(ids))
	for i, row := range ids {
		out[i] = "  " + t.vocab[row[0]] + "\n"
	}
	return out, nil
}

func (t *fakeTokenizer) LangID(ctx context.Context, code string) (int64, error) {
	t.langIDs = append(t.langIDs, code)
	return t.m2m[code], nil
}

func (t *fakeTokenizer) LangCodeToID() map[string]int64 { return t.table }

func (t *fakeTokenizer) Close(ctx context.Context) error { t.closed++; return nil }

type fakeModel struct {
	b       *fakeBackend
	device  Device
	evaled  bool
	moved   []Device
	calls   int
	lastArg ControlArgs
	closed  int
}

func (m *fakeModel) Device() Device { return m.device }

func (m *fakeModel) To(ctx context.Context, d Device) error {
	m.moved = append(m.moved, d)
	m.device = d
	return nil
}

func (m *fakeModel) Eval(ctx context.Context) error { m.evaled = true; return m.b.evalErr }

func (m *fakeModel) Close(ctx context.Context) error { m.closed++; return nil }

func (m *fakeModel) Generate(ctx context.Context, ids TokenIDs, args ControlArgs) (TokenIDs, error) {
	m.calls++
	m.lastArg = args
	if m.b.genErr != nil && (m.b.genErrAt == 0 || m.b.genErrAt == m.calls) {
		return nil, m.b.genErr
	}
	tok := m.b.tokenizer
	out := make(TokenIDs, len(ids))
	for i, row := range ids {
		out[i] = []int64{int64(len(tok.vocab))}
		tok.vocab = append(tok.vocab, strings.ToUpper(tok.vocab[row[0]]))
	}
	return out, nil
}

func newTestTranslator(t *testing.T, b *fakeBackend, model, task, quant string) (*Translator, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	tr, err := New(context.Background(), b, Options{ModelID: model, Task: task, Quantize: quant, Out: &out})
	if err != nil {
		t.Fatalf("new translator: %v", err)
	}
	return tr, &out
}
