// Package transform rewrites documents between decoding and encoding.
package transform

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/models"
)

// KeyCase names a mapping-key spelling.
type KeyCase string

const (
	Preserve       KeyCase = "preserve"
	Snake          KeyCase = "snake"
	Kebab          KeyCase = "kebab"
	Camel          KeyCase = "camel"
	Pascal         KeyCase = "pascal"
	ScreamingSnake KeyCase = "screaming-snake"
)

// KeyCases lists every supported style.
var KeyCases = []KeyCase{Preserve, Snake, Kebab, Camel, Pascal, ScreamingSnake}

// ParseKeyCase accepts a style name; the empty string means Preserve.
func ParseKeyCase(name string) (KeyCase, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Preserve, nil
	}
	for _, kc := range KeyCases {
		if string(kc) == name {
			return kc, nil
		}
	}
	return "", errors.NewConfigError(fmt.Sprintf("unknown key case %q", name), nil)
}

// Apply converts a single key.
func (kc KeyCase) Apply(key string) string {
	switch kc {
	case Snake:
		return strcase.ToSnake(key)
	case Kebab:
		return strcase.ToKebab(key)
	case Camel:
		return strcase.ToLowerCamel(key)
	case Pascal:
		return strcase.ToCamel(key)
	case ScreamingSnake:
		return strcase.ToScreamingSnake(key)
	}
	return key
}

// Keys returns a copy of doc with every mapping key rewritten to kc. doc is
// returned unchanged for Preserve. Two keys of one mapping that end up equal
// is an error rather than a silent overwrite.
func Keys(doc models.Document, kc KeyCase) (models.Document, error) {
	if kc == Preserve || kc == "" {
		return doc, nil
	}
	return rewrite(doc, kc, "$")
}

func rewrite(d models.Document, kc KeyCase, path string) (models.Document, error) {
	switch d.Kind() {
	case models.KindSequence:
		items := make([]models.Document, len(d.Items()))
		for i, item := range d.Items() {
			v, err := rewrite(item, kc, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return models.Document{}, err
			}
			items[i] = v
		}
		return models.Sequence(items...), nil
	case models.KindMapping:
		out := models.NewMapping()
		origin := make(map[string]string, d.AsMapping().Len())
		for _, mem := range d.AsMapping().Members() {
			key := kc.Apply(mem.Key)
			if prev, dup := origin[key]; dup {
				return models.Document{}, errors.NewTransformError(
					fmt.Sprintf("keys %q and %q at %s both become %q", prev, mem.Key, path, key),
					errors.ErrKeyCollision,
				)
			}
			origin[key] = mem.Key
			v, err := rewrite(mem.Value, kc, path+"."+key)
			if err != nil {
				return models.Document{}, err
			}
			out.Set(key, v)
		}
		return models.FromMapping(out), nil
	}
	return d, nil
}
