package formatter

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/models"
	"github.com/pelletier/go-toml/v2"
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

func encodeTOML(doc models.Document, w io.Writer) error {
	if doc.Kind() != models.KindMapping {
		return errors.NewEncodeError("toml", fmt.Sprintf("top-level value is a %s", doc.Kind()), errors.ErrTOMLTopLevel)
	}

	v, err := tomlNative(doc, "")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return errors.NewEncodeError("toml", "failed to encode TOML", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.NewIOError("failed to write TOML output", err)
	}
	return nil
}

// tomlNative converts d into values go-toml encodes faithfully. Mappings
// become structs built at run time so that their key order survives; the
// encoder would sort a map's keys.
func tomlNative(d models.Document, path string) (any, error) {
	switch d.Kind() {
	case models.KindNull:
		where := path
		if where == "" {
			where = "the top level"
		}
		return nil, errors.NewEncodeError("toml", fmt.Sprintf("null value at %s", where), errors.ErrTOMLNull)
	case models.KindBool:
		return d.AsBool(), nil
	case models.KindInt:
		return d.AsInt(), nil
	case models.KindFloat:
		return d.AsFloat(), nil
	case models.KindString:
		return d.AsString(), nil
	case models.KindDatetime:
		return tomlDatetime(d.AsTime()), nil
	case models.KindSequence:
		out := make([]any, len(d.Items()))
		for i, item := range d.Items() {
			v, err := tomlNative(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case models.KindMapping:
		return tomlTable(d.AsMapping(), path)
	}
	return nil, errors.NewEncodeError("toml", fmt.Sprintf("unknown value kind at %s", path), nil)
}

func tomlTable(m *models.Mapping, path string) (any, error) {
	members := m.Members()
	values := make([]any, len(members))
	ordered := true
	for i, mem := range members {
		v, err := tomlNative(mem.Value, joinKey(path, mem.Key))
		if err != nil {
			return nil, err
		}
		values[i] = v
		if !taggable(mem.Key) {
			ordered = false
		}
	}

	if !ordered {
		out := make(map[string]any, len(members))
		for i, mem := range members {
			out[mem.Key] = values[i]
		}
		return out, nil
	}

	fields := make([]reflect.StructField, len(members))
	for i, mem := range members {
		fields[i] = reflect.StructField{
			Name: "F" + strconv.Itoa(i),
			Type: anyType,
			Tag:  reflect.StructTag(`toml:` + strconv.Quote(mem.Key)),
		}
	}
	sv := reflect.New(reflect.StructOf(fields)).Elem()
	for i, v := range values {
		sv.Field(i).Set(reflect.ValueOf(&v).Elem())
	}
	return sv.Interface(), nil
}

// taggable reports whether key survives a round trip through a toml struct
// tag: the tag parser splits on commas and treats "" and "-" specially.
func taggable(key string) bool {
	return key != "" && key != "-" && !strings.Contains(key, ",")
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func tomlDatetime(t time.Time, dk models.DatetimeKind) any {
	date := toml.LocalDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
	clock := toml.LocalTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanosecond: t.Nanosecond()}
	switch dk {
	case models.LocalDate:
		return date
	case models.LocalTime:
		return clock
	case models.LocalDateTime:
		return toml.LocalDateTime{LocalDate: date, LocalTime: clock}
	}
	return t
}
