package catalog

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// checkCode validates a tokenizer language code of the form "xx" or "xx_YY".
// Only the language prefix is checked; the suffix is a tokenizer convention
// ("en_XX") rather than an ISO region.
func checkCode(code string) error {
	if len(code) != 2 && (len(code) != 5 || code[2] != '_') {
		return fmt.Errorf("language code %q: want xx or xx_YY", code)
	}
	if _, err := language.ParseBase(code[:2]); err != nil {
		return fmt.Errorf("language code %q: %w", code, err)
	}
	return nil
}

// LanguageName returns the English name of a code's language, or the code
// itself when it cannot be parsed.
func LanguageName(code string) string {
	if len(code) < 2 {
		return code
	}
	b, err := language.ParseBase(code[:2])
	if err != nil {
		return code
	}
	if n := display.English.Languages().Name(b); n != "" {
		return n
	}
	return code
}
