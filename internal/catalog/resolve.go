package catalog

// Resolve returns the tokenizer source and target language codes for running
// task on modelID. It fails with *UnrecognizedError when either name is
// unknown and with *UnsupportedError when the model's restriction rejects the
// task's language pair. Families with a shorter code length (M2M100) get the
// language prefix only, e.g. "en_XX" becomes "en".
func (c *Catalog) Resolve(modelID, task string) (src, tgt string, err error) {
	t, ok := c.tasks[task]
	if !ok {
		return "", "", &UnrecognizedError{Kind: "task", ID: task}
	}
	ref, ok := c.models[modelID]
	if !ok {
		return "", "", &UnrecognizedError{Kind: "model", ID: modelID}
	}
	src, tgt = t.SrcLang, t.TgtLang

	m := ref.entry
	switch m.Restriction {
	case RestrictPair, RestrictSrc:
		if src != m.SrcLang {
			return "", "", &UnsupportedError{ModelID: modelID, Field: "src_lang", Code: src}
		}
	}
	switch m.Restriction {
	case RestrictPair, RestrictTgt:
		if tgt != m.TgtLang {
			return "", "", &UnsupportedError{ModelID: modelID, Field: "tgt_lang", Code: tgt}
		}
	}

	n := c.families[ref.family].CodeLen
	return truncate(src, n), truncate(tgt, n), nil
}

func truncate(code string, n int) string {
	if len(code) > n {
		return code[:n]
	}
	return code
}
