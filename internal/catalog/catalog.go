// Package catalog holds the immutable model-family and task tables and the
// task resolver that maps (model id, task) to tokenizer language codes.
//
// The tables are declarative: every model carries its own restriction kind,
// so no caller has to know roster positions. A Catalog is built once (from
// the embedded default or an override file) and never mutated afterwards.
package catalog

import (
	"fmt"
	"sort"

	"mtbench/pkg/types"
)

// Family identifies a pretrained model architecture.
type Family string

const (
	FamilyMBART   Family = "mbart"
	FamilyMBART50 Family = "mbart50"
	FamilyM2M100  Family = "m2m100"
)

// ControlKind names the generation argument that pins the output language.
type ControlKind string

const (
	ControlDecoderStart ControlKind = "decoder_start_token_id"
	ControlForcedBOS    ControlKind = "forced_bos_token_id"
)

// Restriction describes which language pairs a single model accepts.
type Restriction string

const (
	RestrictNone Restriction = "none"
	RestrictSrc  Restriction = "src-only"   // one-to-many: source is pinned
	RestrictTgt  Restriction = "tgt-only"   // many-to-one: target is pinned
	RestrictPair Restriction = "fixed-pair" // single direction only
)

// ModelEntry is one roster row.
type ModelEntry struct {
	ID          string      `json:"id" yaml:"id" toml:"id"`
	Restriction Restriction `json:"restriction" yaml:"restriction" toml:"restriction"`
	SrcLang     string      `json:"src_lang,omitempty" yaml:"src_lang,omitempty" toml:"src_lang,omitempty"`
	TgtLang     string      `json:"tgt_lang,omitempty" yaml:"tgt_lang,omitempty" toml:"tgt_lang,omitempty"`
}

// FamilySpec describes a model family: its roster, pipeline classes, control
// argument and the language-code length its tokenizer expects.
type FamilySpec struct {
	Name      Family       `json:"name" yaml:"name" toml:"name"`
	Tokenizer string       `json:"tokenizer" yaml:"tokenizer" toml:"tokenizer"`
	ModelKind string       `json:"model" yaml:"model" toml:"model"`
	Control   ControlKind  `json:"control" yaml:"control" toml:"control"`
	CodeLen   int          `json:"code_len" yaml:"code_len" toml:"code_len"`
	Models    []ModelEntry `json:"models" yaml:"models" toml:"models"`
}

// Task is a named translation direction with 5-character codes.
type Task struct {
	Name    string `json:"-" yaml:"-" toml:"-"`
	SrcLang string `json:"src_lang" yaml:"src_lang" toml:"src_lang"`
	TgtLang string `json:"tgt_lang" yaml:"tgt_lang" toml:"tgt_lang"`
}

// document is the on-disk shape shared by every supported format.
type document struct {
	Families []FamilySpec   `json:"families" yaml:"families" toml:"families"`
	Tasks    map[string]Task `json:"tasks" yaml:"tasks" toml:"tasks"`
}

type modelRef struct {
	entry  ModelEntry
	family Family
}

// Catalog is the read-only lookup built from a document.
type Catalog struct {
	families map[Family]FamilySpec
	order    []Family
	models   map[string]modelRef
	tasks    map[string]Task
}

func build(doc document) (*Catalog, error) {
	c := &Catalog{
		families: make(map[Family]FamilySpec, len(doc.Families)),
		models:   make(map[string]modelRef),
		tasks:    make(map[string]Task, len(doc.Tasks)),
	}
	for _, f := range doc.Families {
		if f.Name == "" {
			return nil, fmt.Errorf("family without name")
		}
		if _, dup := c.families[f.Name]; dup {
			return nil, fmt.Errorf("duplicate family %q", f.Name)
		}
		switch f.Control {
		case ControlDecoderStart, ControlForcedBOS:
		default:
			return nil, fmt.Errorf("family %s: unknown control %q", f.Name, f.Control)
		}
		if f.CodeLen <= 0 {
			return nil, fmt.Errorf("family %s: code_len must be positive", f.Name)
		}
		for i, m := range f.Models {
			if m.Restriction == "" {
				m.Restriction = RestrictNone
				f.Models[i] = m
			}
			if err := checkEntry(m); err != nil {
				return nil, fmt.Errorf("family %s: %w", f.Name, err)
			}
			if prev, dup := c.models[m.ID]; dup {
				return nil, fmt.Errorf("model %s listed in both %s and %s", m.ID, prev.family, f.Name)
			}
			c.models[m.ID] = modelRef{entry: m, family: f.Name}
		}
		c.families[f.Name] = f
		c.order = append(c.order, f.Name)
	}
	for name, t := range doc.Tasks {
		if t.SrcLang == "" || t.TgtLang == "" {
			return nil, fmt.Errorf("task %s: src_lang and tgt_lang are required", name)
		}
		for _, code := range []string{t.SrcLang, t.TgtLang} {
			if err := checkCode(code); err != nil {
				return nil, fmt.Errorf("task %s: %w", name, err)
			}
		}
		t.Name = name
		c.tasks[name] = t
	}
	return c, nil
}

func checkEntry(m ModelEntry) error {
	if m.ID == "" {
		return fmt.Errorf("model without id")
	}
	hasSrc, hasTgt := m.SrcLang != "", m.TgtLang != ""
	ok := false
	switch m.Restriction {
	case RestrictNone:
		ok = !hasSrc && !hasTgt
	case RestrictSrc:
		ok = hasSrc && !hasTgt
	case RestrictTgt:
		ok = !hasSrc && hasTgt
	case RestrictPair:
		ok = hasSrc && hasTgt
	default:
		return fmt.Errorf("model %s: unknown restriction %q", m.ID, m.Restriction)
	}
	if !ok {
		return fmt.Errorf("model %s: restriction %s does not match pinned codes", m.ID, m.Restriction)
	}
	for _, code := range []string{m.SrcLang, m.TgtLang} {
		if code == "" {
			continue
		}
		if err := checkCode(code); err != nil {
			return fmt.Errorf("model %s: %w", m.ID, err)
		}
	}
	return nil
}

// Family returns the family spec for a model id.
func (c *Catalog) Family(modelID string) (FamilySpec, bool) {
	ref, ok := c.models[modelID]
	if !ok {
		return FamilySpec{}, false
	}
	return c.families[ref.family], true
}

// Task looks up a task by name.
func (c *Catalog) Task(name string) (Task, bool) {
	t, ok := c.tasks[name]
	return t, ok
}

// Tasks returns all tasks sorted by name.
func (c *Catalog) Tasks() []Task {
	out := make([]Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Models returns the API view of every roster entry, in family then roster order.
func (c *Catalog) Models() []types.Model {
	var out []types.Model
	for _, name := range c.order {
		f := c.families[name]
		for _, m := range f.Models {
			out = append(out, types.Model{
				ID:          m.ID,
				Family:      string(f.Name),
				Restriction: string(m.Restriction),
				Tokenizer:   f.Tokenizer,
				ModelKind:   f.ModelKind,
				Control:     string(f.Control),
			})
		}
	}
	return out
}
