// Package formatter serializes models.Document as JSON, TOML or YAML.
package formatter

import (
	"io"
	"time"

	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/format"
	"github.com/mcncl/confconv/internal/models"
)

// Options control serialization. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// JSONIndent is the number of spaces per nesting level. Zero writes
	// compact JSON on one line.
	JSONIndent int
	// YAMLIndent is the number of spaces per nesting level.
	YAMLIndent int
	// SortKeys orders mapping keys bytewise instead of keeping source order.
	SortKeys bool
}

// DefaultOptions returns four-space JSON, two-space YAML and source key order.
func DefaultOptions() Options {
	return Options{
		JSONIndent: 4,
		YAMLIndent: 2,
	}
}

// Encode writes doc to w in format f.
func Encode(f format.Format, doc models.Document, w io.Writer, opts Options) error {
	if opts.SortKeys {
		doc = sortKeys(doc)
	}
	switch f {
	case format.JSON:
		return encodeJSON(doc, w, opts.JSONIndent)
	case format.TOML:
		return encodeTOML(doc, w)
	case format.YAML:
		return encodeYAML(doc, w, opts.YAMLIndent)
	}
	return errors.NewUnsupportedFormatError(f.String())
}

// sortKeys returns a copy of d with every mapping sorted.
func sortKeys(d models.Document) models.Document {
	switch d.Kind() {
	case models.KindSequence:
		items := make([]models.Document, len(d.Items()))
		for i, item := range d.Items() {
			items[i] = sortKeys(item)
		}
		return models.Sequence(items...)
	case models.KindMapping:
		sorted := d.AsMapping().Sorted()
		out := models.NewMapping()
		for _, mem := range sorted.Members() {
			out.Set(mem.Key, sortKeys(mem.Value))
		}
		return models.FromMapping(out)
	}
	return d
}

// datetimeText renders a datetime the way TOML writes it, except that local
// date-times use a space separator so YAML still reads them as timestamps.
func datetimeText(t time.Time, dk models.DatetimeKind, sep string) string {
	switch dk {
	case models.LocalDate:
		return t.Format("2006-01-02")
	case models.LocalTime:
		return t.Format("15:04:05.999999999")
	case models.LocalDateTime:
		return t.Format("2006-01-02" + sep + "15:04:05.999999999")
	}
	return t.Format(time.RFC3339Nano)
}
