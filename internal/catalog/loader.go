package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"mtbench/internal/common/fsutil"
)

//go:embed catalog.toml
var defaultTOML []byte

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(defaultTOML, ".toml")
})

// Default returns the built-in catalog. It is parsed once per process.
func Default() *Catalog {
	c, err := loadDefault()
	if err != nil {
		// The embedded file is covered by tests; a failure here is a build defect.
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file based on its extension, replacing the built-in
// tables entirely. An empty path returns Default().
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b, filepath.Ext(p))
}

// Parse decodes a catalog document in the format named by ext.
func Parse(b []byte, ext string) (*Catalog, error) {
	var doc document
	switch ext = strings.ToLower(ext); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported catalog extension: %s", ext)
	}
	return build(doc)
}
