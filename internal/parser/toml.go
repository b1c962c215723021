package parser

import (
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/models"
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

func decodeTOML(data []byte) (models.Document, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		var decodeErr *toml.DecodeError
		if stderrors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return models.Document{}, errors.NewDecodeError("toml", fmt.Sprintf("line %d, column %d", row, col), err)
		}
		return models.Document{}, errors.NewDecodeError("toml", "failed to decode TOML", err)
	}

	order := scanTOMLKeyOrder(data)
	doc, err := tomlValue(raw, order, "")
	if err != nil {
		return models.Document{}, errors.NewDecodeError("toml", "unsupported TOML value", err)
	}
	return doc, nil
}

// keyOrder records, per table path, the keys in the order the document
// first mentions them. Elements of arrays share their parent's path.
type keyOrder map[string][]string

func (o keyOrder) add(path, key string) {
	for _, k := range o[path] {
		if k == key {
			return
		}
	}
	o[path] = append(o[path], key)
}

// addKeys registers every step of a dotted key below base.
func (o keyOrder) addKeys(base string, parts []string) string {
	path := base
	for _, part := range parts {
		o.add(path, part)
		path = joinPath(path, part)
	}
	return path
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "\x00" + key
}

// scanTOMLKeyOrder walks the expression stream of data. The document has
// already been validated by toml.Unmarshal, so parser errors end the scan.
func scanTOMLKeyOrder(data []byte) keyOrder {
	order := keyOrder{}
	p := unstable.Parser{}
	p.Reset(data)

	current := ""
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			current = order.addKeys("", keyParts(expr.Key()))
		case unstable.KeyValue:
			path := order.addKeys(current, keyParts(expr.Key()))
			order.walkValue(path, expr.Value())
		}
	}
	return order
}

func (o keyOrder) walkValue(path string, value *unstable.Node) {
	switch value.Kind {
	case unstable.InlineTable:
		it := value.Children()
		for it.Next() {
			kv := it.Node()
			if kv.Kind != unstable.KeyValue {
				continue
			}
			o.walkValue(o.addKeys(path, keyParts(kv.Key())), kv.Value())
		}
	case unstable.Array:
		it := value.Children()
		for it.Next() {
			o.walkValue(path, it.Node())
		}
	}
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func tomlValue(v any, order keyOrder, path string) (models.Document, error) {
	switch x := v.(type) {
	case nil:
		return models.Null(), nil
	case map[string]any:
		m := models.NewMapping()
		for _, key := range orderedKeys(x, order[path]) {
			child, err := tomlValue(x[key], order, joinPath(path, key))
			if err != nil {
				return models.Document{}, err
			}
			m.Set(key, child)
		}
		return models.FromMapping(m), nil
	case []any:
		items := make([]models.Document, len(x))
		for i, item := range x {
			child, err := tomlValue(item, order, path)
			if err != nil {
				return models.Document{}, err
			}
			items[i] = child
		}
		return models.Sequence(items...), nil
	case string:
		return models.String(x), nil
	case bool:
		return models.Bool(x), nil
	case int64:
		return models.Int(x), nil
	case float64:
		return models.Float(x), nil
	case time.Time:
		return models.Datetime(x, models.OffsetDateTime), nil
	case toml.LocalDateTime:
		return models.Datetime(localDateTime(x.LocalDate, x.LocalTime), models.LocalDateTime), nil
	case toml.LocalDate:
		return models.Datetime(localDateTime(x, toml.LocalTime{}), models.LocalDate), nil
	case toml.LocalTime:
		return models.Datetime(localDateTime(toml.LocalDate{Year: 1, Month: 1, Day: 1}, x), models.LocalTime), nil
	}
	return models.Document{}, fmt.Errorf("value of type %T", v)
}

func localDateTime(d toml.LocalDate, t toml.LocalTime) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, t.Hour, t.Minute, t.Second, t.Nanosecond, time.UTC)
}

// orderedKeys returns the keys of m that appear in seen, in that order,
// followed by any others sorted.
func orderedKeys(m map[string]any, seen []string) []string {
	keys := make([]string, 0, len(m))
	used := make(map[string]bool, len(m))
	for _, k := range seen {
		if _, ok := m[k]; ok && !used[k] {
			keys = append(keys, k)
			used[k] = true
		}
	}
	var rest []string
	for k := range m {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
