package translator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mtbench/internal/catalog"
)

func TestPrepareMBARTUsesDecoderStart(t *testing.T) {
	b := newFakeBackend()
	tr, _ := newTestTranslator(t, b, "facebook/mbart-large-en-ro", "wmt16-en-ro", "")
	if b.tokSrc != "en_XX" || b.tokTgt != "ro_RO" {
		t.Fatalf("tokenizer codes = %s/%s", b.tokSrc, b.tokTgt)
	}
	args := tr.ControlArgs()
	if len(args) != 1 || args["decoder_start_token_id"] != 250020 {
		t.Fatalf("control args = %v", args)
	}
	if b.loadedKind != "MBartForConditionalGeneration" {
		t.Fatalf("model kind = %s", b.loadedKind)
	}
	if len(b.tokenizer.langIDs) != 0 {
		t.Fatalf("mbart must use the code table, got LangID calls %v", b.tokenizer.langIDs)
	}
}

func TestPrepareMBART50UsesForcedBOS(t *testing.T) {
	b := newFakeBackend()
	tr, _ := newTestTranslator(t, b, "facebook/mbart-large-50-many-to-many-mmt", "wmt16-de-en", "")
	args := tr.ControlArgs()
	if len(args) != 1 || args["forced_bos_token_id"] != 250004 {
		t.Fatalf("control args = %v", args)
	}
	src, tgt := tr.LangIDs()
	if src != 250003 || tgt != 250004 {
		t.Fatalf("lang ids = %d/%d", src, tgt)
	}
}

func TestPrepareM2M100UsesLangID(t *testing.T) {
	b := newFakeBackend()
	tr, _ := newTestTranslator(t, b, "facebook/m2m100_418M", "wmt16-en-de", "")
	if b.tokSrc != "en" || b.tokTgt != "de" {
		t.Fatalf("tokenizer codes = %s/%s", b.tokSrc, b.tokTgt)
	}
	if got := strings.Join(b.tokenizer.langIDs, ","); got != "en,de" {
		t.Fatalf("LangID calls = %s", got)
	}
	if tr.ControlArgs()["forced_bos_token_id"] != 128017 {
		t.Fatalf("control args = %v", tr.ControlArgs())
	}
	if b.loadedKind != "M2M100ForConditionalGeneration" {
		t.Fatalf("model kind = %s", b.loadedKind)
	}
}

func TestControlArgsIsACopy(t *testing.T) {
	b := newFakeBackend()
	tr, _ := newTestTranslator(t, b, "facebook/m2m100_418M", "wmt16-en-de", "")
	args := tr.ControlArgs()
	args["forced_bos_token_id"] = 1
	if tr.ControlArgs()["forced_bos_token_id"] == 1 {
		t.Fatalf("control args mutated through returned map")
	}
}

func TestQuantizeModes(t *testing.T) {
	cases := []struct {
		mode      string
		opts      LoadOptions
		banner    string
		gpuLine   string
		explicitM bool
	}{
		{"fp16", LoadOptions{DType: DTypeFloat16}, "Declaring fp16 precision model", "", true},
		{"bf16", LoadOptions{DType: DTypeBFloat16}, "Declaring bf16 precision model", "", true},
		{"bb8", LoadOptions{LoadIn8Bit: true, DeviceMap: "auto"}, "Declaring 8-bit precision model", "8-bit Model is on GPU? true", false},
		{"bb4", LoadOptions{LoadIn4Bit: true, DeviceMap: "auto"}, "Declaring 4-bit precision model", "4-bit Model is on GPU? true", false},
		{"", LoadOptions{}, "No model weight quantization selected. Loading in full-precision", "", true},
		{"int3", LoadOptions{}, "No model weight quantization selected. Loading in full-precision", "", true},
		{"FP16", LoadOptions{}, "No model weight quantization selected. Loading in full-precision", "", true},
	}
	for _, c := range cases {
		b := newFakeBackend()
		b.accel = true
		tr, out := newTestTranslator(t, b, "facebook/m2m100_418M", "wmt16-en-de", c.mode)
		if b.loadOpts != c.opts {
			t.Fatalf("%q: load opts = %+v, want %+v", c.mode, b.loadOpts, c.opts)
		}
		if !strings.Contains(out.String(), c.banner) {
			t.Fatalf("%q: status output %q missing %q", c.mode, out.String(), c.banner)
		}
		if c.gpuLine != "" && !strings.Contains(out.String(), c.gpuLine) {
			t.Fatalf("%q: status output %q missing %q", c.mode, out.String(), c.gpuLine)
		}
		if c.explicitM {
			if len(b.model.moved) != 1 || b.model.moved[0] != DeviceCUDA {
				t.Fatalf("%q: expected explicit move to cuda, got %v", c.mode, b.model.moved)
			}
		} else if len(b.model.moved) != 0 {
			t.Fatalf("%q: quantized model must not be moved, got %v", c.mode, b.model.moved)
		}
		if !b.model.evaled {
			t.Fatalf("%q: model not set to eval", c.mode)
		}
		if tr.Device() != DeviceCUDA {
			t.Fatalf("%q: device = %s", c.mode, tr.Device())
		}
	}
}

func TestQuantizedReportsDeviceMismatch(t *testing.T) {
	b := newFakeBackend()
	b.accel = true
	b.autoDevice = DeviceCPU
	_, out := newTestTranslator(t, b, "facebook/m2m100_418M", "wmt16-en-de", "bb4")
	if !strings.Contains(out.String(), "4-bit Model is on GPU? false") {
		t.Fatalf("status output %q", out.String())
	}
}

func TestFullPrecisionOnCPU(t *testing.T) {
	b := newFakeBackend()
	tr, _ := newTestTranslator(t, b, "facebook/m2m100_418M", "wmt16-en-de", "")
	if tr.Device() != DeviceCPU {
		t.Fatalf("device = %s", tr.Device())
	}
	if tr.Precision() != QuantFull {
		t.Fatalf("precision = %s", tr.Precision())
	}
}

func TestNewUnrecognizedModelFailsBeforeLoading(t *testing.T) {
	b := newFakeBackend()
	_, err := New(context.Background(), b, Options{ModelID: "facebook/nllb-200", Task: "wmt16-en-de"})
	if !catalog.IsUnrecognized(err) {
		t.Fatalf("expected unrecognized error, got %v", err)
	}
	if b.model != nil || b.tokSrc != "" {
		t.Fatalf("backend should not be touched after a resolution failure")
	}
}

func TestNewUnsupportedTask(t *testing.T) {
	b := newFakeBackend()
	_, err := New(context.Background(), b, Options{ModelID: "facebook/mbart-large-en-ro", Task: "wmt16-de-en"})
	if !catalog.IsUnsupported(err) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestNewPropagatesBackendErrors(t *testing.T) {
	boom := errors.New("boom")
	for name, set := range map[string]func(*fakeBackend){
		"accelerator": func(b *fakeBackend) { b.accelErr = boom },
		"tokenizer":   func(b *fakeBackend) { b.tokErr = boom },
		"model":       func(b *fakeBackend) { b.modelErr = boom },
	} {
		b := newFakeBackend()
		set(b)
		_, err := New(context.Background(), b, Options{ModelID: "facebook/m2m100_418M", Task: "wmt16-en-de"})
		if !errors.Is(err, boom) {
			t.Fatalf("%s: expected boom, got %v", name, err)
		}
	}
}

func TestNewMissingLangCodeInTable(t *testing.T) {
	b := newFakeBackend()
	delete(b.tokenizer.table, "ro_RO")
	_, err := New(context.Background(), b, Options{ModelID: "facebook/mbart-large-en-ro", Task: "wmt16-en-ro"})
	if err == nil || !strings.Contains(err.Error(), "ro_RO") {
		t.Fatalf("expected missing code error, got %v", err)
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	b1, b2 := newFakeBackend(), newFakeBackend()
	a, _ := newTestTranslator(t, b1, "facebook/m2m100_418M", "wmt16-en-de", "")
	c, _ := newTestTranslator(t, b2, "facebook/mbart-large-50-many-to-one-mmt", "wmt16-ro-en", "")
	if _, tgt := a.Langs(); tgt != "de" {
		t.Fatalf("a tgt = %s", tgt)
	}
	if _, tgt := c.Langs(); tgt != "en_XX" {
		t.Fatalf("c tgt = %s", tgt)
	}
}

func TestParseQuantMode(t *testing.T) {
	cases := map[string]QuantMode{
		"fp16": QuantFP16, "bf16": QuantBF16, "bb8": Quant8Bit, "bb4": Quant4Bit,
		"": QuantFull, "fp32": QuantFull, "bb2": QuantFull,
	}
	for in, want := range cases {
		if got := ParseQuantMode(in); got != want {
			t.Fatalf("ParseQuantMode(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestCloseReleasesHandlesOnce(t *testing.T) {
	b := newFakeBackend()
	b.accel = true
	tr, _ := newTestTranslator(t, b, "facebook/mbart-large-en-ro", "wmt16-en-ro", "")
	if err := tr.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := tr.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if b.model.closed != 1 || b.tokenizer.closed != 1 {
		t.Fatalf("closed model=%d tokenizer=%d, want 1/1", b.model.closed, b.tokenizer.closed)
	}
	if tr.Device() != DeviceCUDA {
		t.Fatalf("device after close = %s", tr.Device())
	}
}

func TestFailedPrepareReleasesLoadedHandles(t *testing.T) {
	b := newFakeBackend()
	b.evalErr = errors.New("eval failed")
	if _, err := New(context.Background(), b, Options{
		ModelID: "facebook/mbart-large-en-ro", Task: "wmt16-en-ro", Out: &strings.Builder{},
	}); err == nil {
		t.Fatalf("expected error")
	}
	if b.model.closed != 1 || b.tokenizer.closed != 1 {
		t.Fatalf("closed model=%d tokenizer=%d, want 1/1", b.model.closed, b.tokenizer.closed)
	}
}
