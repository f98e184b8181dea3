package catalog

import (
	"errors"
	"fmt"
)

// UnsupportedError reports a task whose language pair the model cannot serve.
type UnsupportedError struct {
	ModelID string
	Field   string // "src_lang" or "tgt_lang"
	Code    string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("model %s does not support %s: %s", e.ModelID, e.Field, e.Code)
}

// IsUnsupported reports whether err is an unsupported model/task combination.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

// UnrecognizedError reports a model id or task name missing from the catalog.
type UnrecognizedError struct {
	Kind string // "model" or "task"
	ID   string
}

func (e *UnrecognizedError) Error() string {
	return fmt.Sprintf("%s %s not recognized", e.Kind, e.ID)
}

// IsUnrecognized reports whether err names an unknown model or task.
func IsUnrecognized(err error) bool {
	var ue *UnrecognizedError
	return errors.As(err, &ue)
}
