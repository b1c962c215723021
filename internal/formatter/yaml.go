package formatter

import (
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/models"
	"gopkg.in/yaml.v3"
)

func encodeYAML(doc models.Document, w io.Writer, indent int) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if indent > 0 {
		enc.SetIndent(indent)
	}
	if err := enc.Encode(yamlNode(doc)); err != nil {
		return errors.NewEncodeError("yaml", "failed to encode YAML", err)
	}
	if err := enc.Close(); err != nil {
		return errors.NewEncodeError("yaml", "failed to finish YAML stream", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.NewIOError("failed to write YAML output", err)
	}
	return nil
}

// yamlNode builds the node tree for d. Every scalar carries its tag; the
// encoder drops tags that the plain text already implies and quotes strings
// that would otherwise read back as another type.
func yamlNode(d models.Document) *yaml.Node {
	switch d.Kind() {
	case models.KindNull:
		return scalarNode("!!null", "null")
	case models.KindBool:
		return scalarNode("!!bool", strconv.FormatBool(d.AsBool()))
	case models.KindInt:
		return scalarNode("!!int", strconv.FormatInt(d.AsInt(), 10))
	case models.KindFloat:
		return scalarNode("!!float", yamlFloat(d.AsFloat()))
	case models.KindString:
		return scalarNode("!!str", d.AsString())
	case models.KindDatetime:
		t, dk := d.AsTime()
		if dk == models.LocalTime {
			// YAML has no time-of-day type.
			return scalarNode("!!str", datetimeText(t, dk, " "))
		}
		return scalarNode("!!timestamp", datetimeText(t, dk, " "))
	case models.KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range d.Items() {
			n.Content = append(n.Content, yamlNode(item))
		}
		return n
	case models.KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, mem := range d.AsMapping().Members() {
			n.Content = append(n.Content, scalarNode("!!str", mem.Key), yamlNode(mem.Value))
		}
		return n
	}
	return scalarNode("!!null", "null")
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	fmtByte := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		fmtByte = 'e'
	}
	s := strconv.FormatFloat(f, fmtByte, -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
