// Package translator wraps a loaded tokenizer/model pair for one
// (model, task, precision) combination and exposes batch prediction.
//
// A Translator is prepared once, synchronously, in New. After that its
// language ids and control arguments never change. A Translator is not safe
// for concurrent use: every generation call mutates backend state, so callers
// that share one across goroutines must serialize access (internal/manager
// does this with a per-instance admission queue).
package translator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"time"

	"github.com/rs/zerolog"

	"mtbench/internal/catalog"
)

// Options configures a Translator.
type Options struct {
	ModelID  string
	Task     string
	Quantize string
	// Catalog used for resolution; nil means catalog.Default().
	Catalog *catalog.Catalog
	// Out receives the human-readable preparation status lines; nil means os.Stdout.
	Out io.Writer
	// Logger for structured debug output; nil disables it.
	Logger *zerolog.Logger
	// OnBatch, if set, is called after every generated batch.
	OnBatch func(size int, dur time.Duration)
}

// Translator is a prepared model/tokenizer pair.
type Translator struct {
	modelID string
	task    string
	quant   QuantMode
	family  catalog.FamilySpec
	device  Device

	srcLang, tgtLang string
	srcID, tgtID     int64
	control          ControlArgs

	tok   Tokenizer
	model Model

	out     io.Writer
	log     zerolog.Logger
	onBatch func(int, time.Duration)
}

// New builds a Translator and prepares it. Any failure, from resolution or
// from the backend, is returned as-is and no Translator is produced.
func New(ctx context.Context, b Backend, opts Options) (*Translator, error) {
	t := &Translator{
		modelID: opts.ModelID,
		task:    opts.Task,
		quant:   ParseQuantMode(opts.Quantize),
		out:     opts.Out,
		onBatch: opts.OnBatch,
	}
	if t.out == nil {
		t.out = os.Stdout
	}
	if opts.Logger != nil {
		t.log = opts.Logger.With().Str("model", t.modelID).Str("task", t.task).Logger()
	} else {
		t.log = zerolog.Nop()
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	if err := t.prepare(ctx, b, cat); err != nil {
		if cerr := t.Close(context.WithoutCancel(ctx)); cerr != nil {
			t.log.Warn().Err(cerr).Msg("release after failed prepare")
		}
		return nil, err
	}
	return t, nil
}

// Close releases the model and tokenizer handles. It is safe to call more
// than once; later calls do nothing.
func (t *Translator) Close(ctx context.Context) error {
	var errs []error
	if t.model != nil {
		t.device = t.model.Device()
		errs = append(errs, t.model.Close(ctx))
		t.model = nil
	}
	if t.tok != nil {
		errs = append(errs, t.tok.Close(ctx))
		t.tok = nil
	}
	return errors.Join(errs...)
}

func (t *Translator) prepare(ctx context.Context, b Backend, cat *catalog.Catalog) error {
	accel, err := b.AcceleratorAvailable(ctx)
	if err != nil {
		return err
	}
	t.device = DeviceCPU
	if accel {
		t.device = DeviceCUDA
	}

	t.srcLang, t.tgtLang, err = cat.Resolve(t.modelID, t.task)
	if err != nil {
		return err
	}

	// The codes are passed again even though Resolve already validated them.
	t.tok, err = b.LoadTokenizer(ctx, t.modelID, t.srcLang, t.tgtLang)
	if err != nil {
		return err
	}

	fam, ok := cat.Family(t.modelID)
	if !ok {
		return &catalog.UnrecognizedError{Kind: "model", ID: t.modelID}
	}
	t.family = fam

	if fam.Name == catalog.FamilyM2M100 {
		if t.srcID, err = t.tok.LangID(ctx, t.srcLang); err != nil {
			return err
		}
		if t.tgtID, err = t.tok.LangID(ctx, t.tgtLang); err != nil {
			return err
		}
	} else {
		table := t.tok.LangCodeToID()
		if t.srcID, ok = table[t.srcLang]; !ok {
			return fmt.Errorf("tokenizer for %s has no language id for %s", t.modelID, t.srcLang)
		}
		if t.tgtID, ok = table[t.tgtLang]; !ok {
			return fmt.Errorf("tokenizer for %s has no language id for %s", t.modelID, t.tgtLang)
		}
	}

	switch fam.Control {
	case catalog.ControlDecoderStart, catalog.ControlForcedBOS:
		t.control = ControlArgs{string(fam.Control): t.tgtID}
	default:
		return &catalog.UnrecognizedError{Kind: "model", ID: t.modelID}
	}

	if err := t.loadModel(ctx, b); err != nil {
		return err
	}
	if err := t.model.Eval(ctx); err != nil {
		return err
	}
	t.log.Debug().
		Str("src_lang", t.srcLang).Str("tgt_lang", t.tgtLang).
		Int64("tgt_id", t.tgtID).Str("precision", string(t.quant)).
		Str("device", string(t.model.Device())).
		Msg("translator prepared")
	return nil
}

func (t *Translator) loadModel(ctx context.Context, b Backend) error {
	fmt.Fprintln(t.out, t.quant.banner())
	m, err := b.LoadModel(ctx, t.family.ModelKind, t.modelID, t.quant.loadOptions())
	if err != nil {
		return err
	}
	t.model = m
	if t.quant.Quantized() {
		fmt.Fprintf(t.out, "%s Model is on GPU? %t\n", t.quant.bits(), m.Device() == t.device)
		return nil
	}
	return m.To(ctx, t.device)
}

// ModelID returns the pretrained model identifier.
func (t *Translator) ModelID() string { return t.modelID }

// Task returns the task name.
func (t *Translator) Task() string { return t.task }

// Precision returns the effective quantization mode.
func (t *Translator) Precision() QuantMode { return t.quant }

// Family returns the model family.
func (t *Translator) Family() catalog.Family { return t.family.Name }

// Langs returns the resolved tokenizer codes.
func (t *Translator) Langs() (src, tgt string) { return t.srcLang, t.tgtLang }

// LangIDs returns the resolved language token ids.
func (t *Translator) LangIDs() (src, tgt int64) { return t.srcID, t.tgtID }

// ControlArgs returns a copy of the generation control arguments.
func (t *Translator) ControlArgs() ControlArgs { return maps.Clone(t.control) }

// Device returns where the model weights live, or lived before Close.
func (t *Translator) Device() Device {
	if t.model == nil {
		return t.device
	}
	return t.model.Device()
}
