package format

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mcncl/confconv/internal/errors"
)

// Registry maps file extensions onto formats. It is built once and never
// modified, so a single instance can be shared freely.
type Registry struct {
	byExt map[string]Format
}

// NewRegistry builds the extension table for All. It panics if two formats
// claim the same extension, since inference would then be ambiguous.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Format)}
	for _, f := range All {
		for _, ext := range f.Extensions() {
			if other, ok := r.byExt[ext]; ok {
				panic(fmt.Sprintf("extension %s claimed by both %s and %s", ext, other, f))
			}
			r.byExt[ext] = f
		}
	}
	return r
}

// ResolveByExtension infers the format of path from its lower-cased suffix.
func (r *Registry) ResolveByExtension(path string) (Format, error) {
	ext := strings.ToLower(suffix(path))
	if f, ok := r.byExt[ext]; ok {
		return f, nil
	}
	return 0, errors.NewUnknownFormatError(path)
}

// Resolve returns the explicitly named format when explicit is non-empty,
// otherwise it infers one from path.
func (r *Registry) Resolve(explicit, path string) (Format, error) {
	if explicit != "" {
		return ParseFormat(explicit)
	}
	return r.ResolveByExtension(path)
}

// OutputPath replaces the extension of input with target's extension.
func OutputPath(input string, target Format) string {
	return strings.TrimSuffix(input, suffix(input)) + target.Extension()
}

// suffix is filepath.Ext, except that a dotfile such as ".json" has no
// extension: its leading dot starts the name.
func suffix(path string) string {
	ext := filepath.Ext(path)
	if ext == filepath.Base(path) {
		return ""
	}
	return ext
}
