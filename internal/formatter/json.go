package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/models"
)

type jsonWriter struct {
	buf    bytes.Buffer
	indent string
	// scratch holds single encoded strings and numbers.
	scratch bytes.Buffer
	enc     *json.Encoder
}

func encodeJSON(doc models.Document, w io.Writer, indent int) error {
	jw := &jsonWriter{}
	if indent > 0 {
		jw.indent = strings.Repeat(" ", indent)
	}
	jw.enc = json.NewEncoder(&jw.scratch)
	jw.enc.SetEscapeHTML(false)

	if err := jw.value(doc, 0, "$"); err != nil {
		return err
	}
	jw.buf.WriteByte('\n')

	if _, err := w.Write(jw.buf.Bytes()); err != nil {
		return errors.NewIOError("failed to write JSON output", err)
	}
	return nil
}

func (jw *jsonWriter) newline(depth int) {
	if jw.indent == "" {
		return
	}
	jw.buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		jw.buf.WriteString(jw.indent)
	}
}

func (jw *jsonWriter) value(d models.Document, depth int, path string) error {
	switch d.Kind() {
	case models.KindNull:
		jw.buf.WriteString("null")
	case models.KindBool:
		if d.AsBool() {
			jw.buf.WriteString("true")
		} else {
			jw.buf.WriteString("false")
		}
	case models.KindInt:
		fmt.Fprintf(&jw.buf, "%d", d.AsInt())
	case models.KindFloat:
		f := d.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.NewEncodeError("json", fmt.Sprintf("cannot encode %v at %s", f, path), errors.ErrNonFinite)
		}
		text, err := jw.scalar(f)
		if err != nil {
			return errors.NewEncodeError("json", fmt.Sprintf("cannot encode number at %s", path), err)
		}
		// Keep a fraction so the value reads back as a float.
		if !strings.ContainsAny(text, ".eE") {
			text += ".0"
		}
		jw.buf.WriteString(text)
	case models.KindString:
		return jw.str(d.AsString(), path)
	case models.KindDatetime:
		t, dk := d.AsTime()
		return jw.str(datetimeText(t, dk, "T"), path)
	case models.KindSequence:
		items := d.Items()
		if len(items) == 0 {
			jw.buf.WriteString("[]")
			return nil
		}
		jw.buf.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				jw.separator()
			}
			jw.newline(depth + 1)
			if err := jw.value(item, depth+1, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		jw.newline(depth)
		jw.buf.WriteByte(']')
	case models.KindMapping:
		members := d.AsMapping().Members()
		if len(members) == 0 {
			jw.buf.WriteString("{}")
			return nil
		}
		jw.buf.WriteByte('{')
		for i, mem := range members {
			if i > 0 {
				jw.separator()
			}
			jw.newline(depth + 1)
			if err := jw.str(mem.Key, path); err != nil {
				return err
			}
			jw.buf.WriteString(": ")
			if err := jw.value(mem.Value, depth+1, path+"."+mem.Key); err != nil {
				return err
			}
		}
		jw.newline(depth)
		jw.buf.WriteByte('}')
	}
	return nil
}

// separator writes the item separator: "," when indenting, ", " otherwise.
func (jw *jsonWriter) separator() {
	if jw.indent == "" {
		jw.buf.WriteString(", ")
		return
	}
	jw.buf.WriteByte(',')
}

func (jw *jsonWriter) str(s, path string) error {
	text, err := jw.scalar(s)
	if err != nil {
		return errors.NewEncodeError("json", fmt.Sprintf("cannot encode string at %s", path), err)
	}
	jw.buf.WriteString(text)
	return nil
}

// scalar encodes a single string or number with encoding/json.
func (jw *jsonWriter) scalar(v any) (string, error) {
	jw.scratch.Reset()
	if err := jw.enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(jw.scratch.String(), "\n"), nil
}
