// Package format defines the three supported data formats and the registry
// that maps file extensions onto them.
package format

import (
	"fmt"
	"strings"

	"github.com/mcncl/confconv/internal/errors"
)

// Format is one of JSON, TOML or YAML.
type Format int

const (
	JSON Format = iota + 1
	TOML
	YAML
)

// All lists every format in a stable order.
var All = []Format{JSON, TOML, YAML}

// Name returns the canonical lower-case name.
func (f Format) Name() string {
	switch f {
	case JSON:
		return "json"
	case TOML:
		return "toml"
	case YAML:
		return "yaml"
	}
	return ""
}

func (f Format) String() string {
	if n := f.Name(); n != "" {
		return strings.ToUpper(n)
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Valid reports whether f is one of the enumerated formats.
func (f Format) Valid() bool {
	return f == JSON || f == TOML || f == YAML
}

// Extensions returns the recognised file extensions, canonical first.
func (f Format) Extensions() []string {
	switch f {
	case JSON:
		return []string{".json"}
	case TOML:
		return []string{".toml", ".tml"}
	case YAML:
		return []string{".yaml", ".yml"}
	}
	return nil
}

// Extension returns the extension used for files written in f.
func (f Format) Extension() string {
	if exts := f.Extensions(); len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// Binary reports whether f is read and written as raw bytes rather than text.
func (f Format) Binary() bool {
	return f == TOML
}

// ParseFormat maps a case-insensitive name onto a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, nil
	case "toml":
		return TOML, nil
	case "yaml":
		return YAML, nil
	}
	return 0, errors.NewUnsupportedFormatError(name)
}

// Names returns the canonical names of All.
func Names() []string {
	names := make([]string, len(All))
	for i, f := range All {
		names[i] = f.Name()
	}
	return names
}
