package parser

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/models"
	"gopkg.in/yaml.v3"
)

func decodeYAML(data []byte) (models.Document, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node
	if err := decoder.Decode(&root); err != nil {
		if stderrors.Is(err, io.EOF) {
			// An empty stream is a null document.
			return models.Null(), nil
		}
		return models.Document{}, errors.NewDecodeError("yaml", "failed to decode YAML", err)
	}

	var next yaml.Node
	if err := decoder.Decode(&next); !stderrors.Is(err, io.EOF) {
		if err == nil {
			return models.Document{}, errors.NewDecodeError("yaml", "stream holds more than one document", errors.ErrTrailingData)
		}
		return models.Document{}, errors.NewDecodeError("yaml", "failed to decode YAML", err)
	}

	w := &yamlWalker{active: make(map[*yaml.Node]bool)}
	doc, err := w.node(&root)
	if err != nil {
		return models.Document{}, errors.NewDecodeError("yaml", "unsupported YAML structure", err)
	}
	return doc, nil
}

// yamlWalker turns a yaml.Node tree into a Document. active holds the
// alias targets being expanded, to reject self-referencing anchors.
// decoded and aliased count the nodes visited overall and under an alias,
// so nested anchors cannot expand without bound.
type yamlWalker struct {
	active     map[*yaml.Node]bool
	aliasDepth int
	decoded    int
	aliased    int
}

// allowedAliasRatio follows yaml.v3: small documents may be almost all
// alias expansions, large ones only a tenth.
func allowedAliasRatio(decoded int) float64 {
	const low, high = 400000, 4000000
	switch {
	case decoded <= low:
		return 0.99
	case decoded >= high:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(decoded-low)/float64(high-low))
	}
}

func (w *yamlWalker) count() error {
	w.decoded++
	if w.aliasDepth > 0 {
		w.aliased++
	}
	if w.aliased > 100 && w.decoded > 1000 && float64(w.aliased)/float64(w.decoded) > allowedAliasRatio(w.decoded) {
		return errors.ErrAliasBomb
	}
	return nil
}

func (w *yamlWalker) node(n *yaml.Node) (models.Document, error) {
	if err := w.count(); err != nil {
		return models.Document{}, err
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return models.Null(), nil
		}
		return w.node(n.Content[0])
	case yaml.AliasNode:
		if w.active[n.Alias] {
			return models.Document{}, fmt.Errorf("line %d: alias *%s refers to itself", n.Line, n.Value)
		}
		w.active[n.Alias] = true
		w.aliasDepth++
		defer func() {
			delete(w.active, n.Alias)
			w.aliasDepth--
		}()
		return w.node(n.Alias)
	case yaml.SequenceNode:
		items := make([]models.Document, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := w.node(c)
			if err != nil {
				return models.Document{}, err
			}
			items = append(items, item)
		}
		return models.Sequence(items...), nil
	case yaml.MappingNode:
		return w.mapping(n)
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return models.Document{}, fmt.Errorf("line %d: unexpected node kind %d", n.Line, n.Kind)
}

func (w *yamlWalker) mapping(n *yaml.Node) (models.Document, error) {
	m := models.NewMapping()
	var merges []*models.Mapping

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == "!!merge" {
			sources, err := w.mergeSources(valueNode)
			if err != nil {
				return models.Document{}, err
			}
			merges = append(merges, sources...)
			continue
		}

		key, err := w.key(keyNode)
		if err != nil {
			return models.Document{}, err
		}
		value, err := w.node(valueNode)
		if err != nil {
			return models.Document{}, err
		}
		m.Set(key, value)
	}

	// Explicit keys win over merged ones; earlier merge sources win over later.
	for _, src := range merges {
		for _, mem := range src.Members() {
			if !m.Has(mem.Key) {
				m.Set(mem.Key, mem.Value)
			}
		}
	}
	return models.FromMapping(m), nil
}

func (w *yamlWalker) mergeSources(n *yaml.Node) ([]*models.Mapping, error) {
	doc, err := w.node(n)
	if err != nil {
		return nil, err
	}
	switch doc.Kind() {
	case models.KindMapping:
		return []*models.Mapping{doc.AsMapping()}, nil
	case models.KindSequence:
		var out []*models.Mapping
		for _, item := range doc.Items() {
			if item.Kind() != models.KindMapping {
				return nil, fmt.Errorf("line %d: merge key needs mappings, got %s", n.Line, item.Kind())
			}
			out = append(out, item.AsMapping())
		}
		return out, nil
	}
	return nil, fmt.Errorf("line %d: merge key needs a mapping, got %s", n.Line, doc.Kind())
}

// key returns the text of a scalar key. Non-string scalars keep their
// literal spelling; collection keys are rejected.
func (w *yamlWalker) key(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: mapping keys must be scalars", n.Line)
	}
	if n.ShortTag() == "!!null" {
		return "null", nil
	}
	return n.Value, nil
}

func yamlScalar(n *yaml.Node) (models.Document, error) {
	switch n.ShortTag() {
	case "!!null":
		return models.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return models.Document{}, err
		}
		return models.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return models.Int(i), nil
		}
		// Too large for int64.
		var f float64
		if err := n.Decode(&f); err != nil {
			return models.Document{}, fmt.Errorf("line %d: integer %s out of range", n.Line, n.Value)
		}
		return models.Float(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return models.Document{}, err
		}
		return models.Float(f), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return models.Document{}, err
		}
		return models.Datetime(t, timestampKind(n.Value)), nil
	}
	// !!str, !!binary (kept as its base64 text) and application tags.
	return models.String(n.Value), nil
}

// timestampKind classifies a YAML timestamp literal: a bare date, a date
// and time without zone, or a date and time with a zone.
func timestampKind(s string) models.DatetimeKind {
	s = strings.TrimSpace(s)
	sep := strings.IndexAny(s, "Tt \t")
	if sep < 0 {
		return models.LocalDate
	}
	clock := strings.TrimSpace(s[sep+1:])
	if strings.HasSuffix(clock, "Z") || strings.HasSuffix(clock, "z") || strings.ContainsAny(clock, "+-") {
		return models.OffsetDateTime
	}
	return models.LocalDateTime
}
