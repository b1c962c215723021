package parser

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/models"
)

func decodeJSON(data []byte) (models.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Document{}, errors.NewDecodeError("json", "input is empty", errors.ErrEmptyInput)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // keep integer and float literals apart

	root, err := readJSONValue(decoder, 0)
	if err != nil {
		return models.Document{}, jsonDecodeError(data, decoder, err)
	}

	// Anything but whitespace after the first value is rejected.
	if _, err := decoder.Token(); !stderrors.Is(err, io.EOF) {
		if err == nil {
			return models.Document{}, errors.NewDecodeError("json", "multiple JSON values found at the root", errors.ErrTrailingData)
		}
		return models.Document{}, jsonDecodeError(data, decoder, err)
	}
	return root, nil
}

// maxJSONDepth matches the nesting limit of encoding/json.
const maxJSONDepth = 10000

func readJSONValue(decoder *json.Decoder, depth int) (models.Document, error) {
	if depth > maxJSONDepth {
		return models.Document{}, fmt.Errorf("more than %d levels of nesting: %w", maxJSONDepth, errors.ErrTooDeep)
	}
	tok, err := decoder.Token()
	if err != nil {
		if depth > 0 && stderrors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return models.Document{}, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			m := models.NewMapping()
			for decoder.More() {
				keyTok, err := decoder.Token()
				if err != nil {
					return models.Document{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return models.Document{}, fmt.Errorf("object key is %T, not a string", keyTok)
				}
				value, err := readJSONValue(decoder, depth+1)
				if err != nil {
					return models.Document{}, err
				}
				m.Set(key, value)
			}
			if err := closeJSON(decoder); err != nil {
				return models.Document{}, err
			}
			return models.FromMapping(m), nil
		case '[':
			items := []models.Document{}
			for decoder.More() {
				item, err := readJSONValue(decoder, depth+1)
				if err != nil {
					return models.Document{}, err
				}
				items = append(items, item)
			}
			if err := closeJSON(decoder); err != nil {
				return models.Document{}, err
			}
			return models.Sequence(items...), nil
		}
		return models.Document{}, fmt.Errorf("unexpected delimiter %q", v)
	case string:
		return models.String(v), nil
	case json.Number:
		return jsonNumber(v)
	case bool:
		return models.Bool(v), nil
	case nil:
		return models.Null(), nil
	}
	return models.Document{}, fmt.Errorf("unexpected token %v", tok)
}

// closeJSON consumes the closing delimiter of an object or array.
func closeJSON(decoder *json.Decoder) error {
	if _, err := decoder.Token(); err != nil {
		if stderrors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// jsonNumber yields an Int for integral literals that fit in int64 and a
// Float for everything else.
func jsonNumber(n json.Number) (models.Document, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return models.Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.Document{}, fmt.Errorf("number %s out of range", s)
	}
	return models.Float(f), nil
}

func jsonDecodeError(data []byte, decoder *json.Decoder, err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		line, col := lineCol(data, syntaxError.Offset)
		return errors.NewDecodeError("json", fmt.Sprintf("syntax error at line %d, column %d", line, col), err)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewDecodeError("json", "unexpected end of input", err)
	}
	line, col := lineCol(data, decoder.InputOffset())
	return errors.NewDecodeError("json", fmt.Sprintf("invalid JSON near line %d, column %d", line, col), err)
}
