// Package models holds Document, the format-independent value tree that every
// decoder produces and every encoder consumes.
package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Kind tags which variant a Document holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindDatetime
	KindSequence
	KindMapping
)

var kindNames = [...]string{"null", "bool", "int", "float", "string", "datetime", "sequence", "mapping"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DatetimeKind distinguishes the four TOML date/time shapes.
type DatetimeKind int

const (
	OffsetDateTime DatetimeKind = iota
	LocalDateTime
	LocalDate
	LocalTime
)

// Document is a closed sum type over null, bool, int, float, string,
// datetime, sequence and mapping. The zero Document is null.
type Document struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	t     time.Time
	dk    DatetimeKind
	items []Document
	m     *Mapping
}

// Member is one key/value pair of a Mapping.
type Member struct {
	Key   string
	Value Document
}

// Mapping is a string-keyed map that remembers insertion order.
type Mapping struct {
	members []Member
	index   map[string]int
}

func Null() Document { return Document{} }

func Bool(v bool) Document { return Document{kind: KindBool, b: v} }

func Int(v int64) Document { return Document{kind: KindInt, i: v} }

func Float(v float64) Document { return Document{kind: KindFloat, f: v} }

func String(v string) Document { return Document{kind: KindString, s: v} }

// Datetime wraps t. For the local kinds the location of t is ignored.
func Datetime(t time.Time, dk DatetimeKind) Document {
	return Document{kind: KindDatetime, t: t, dk: dk}
}

// Sequence builds a sequence document. A nil slice is an empty sequence.
func Sequence(items ...Document) Document {
	if items == nil {
		items = []Document{}
	}
	return Document{kind: KindSequence, items: items}
}

// FromMapping wraps m. A nil m is an empty mapping.
func FromMapping(m *Mapping) Document {
	if m == nil {
		m = NewMapping()
	}
	return Document{kind: KindMapping, m: m}
}

func (d Document) Kind() Kind { return d.kind }

func (d Document) IsNull() bool { return d.kind == KindNull }

func (d Document) AsBool() bool { return d.b }

func (d Document) AsInt() int64 { return d.i }

func (d Document) AsFloat() float64 { return d.f }

func (d Document) AsString() string { return d.s }

// AsTime returns the time value and its datetime kind.
func (d Document) AsTime() (time.Time, DatetimeKind) { return d.t, d.dk }

// Items returns the elements of a sequence. Callers must not modify it.
func (d Document) Items() []Document { return d.items }

// AsMapping returns the mapping of a mapping document, or nil.
func (d Document) AsMapping() *Mapping { return d.m }

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Set appends key, or replaces its value in place if it already exists.
func (m *Mapping) Set(key string, v Document) {
	if i, ok := m.index[key]; ok {
		m.members[i].Value = v
		return
	}
	m.index[key] = len(m.members)
	m.members = append(m.members, Member{Key: key, Value: v})
}

func (m *Mapping) Get(key string) (Document, bool) {
	i, ok := m.index[key]
	if !ok {
		return Document{}, false
	}
	return m.members[i].Value, true
}

func (m *Mapping) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

func (m *Mapping) Len() int { return len(m.members) }

// Members returns the pairs in insertion order. Callers must not modify it.
func (m *Mapping) Members() []Member { return m.members }

func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.members))
	for i, mem := range m.members {
		keys[i] = mem.Key
	}
	return keys
}

// Sorted returns a copy of m with its keys in byte order.
func (m *Mapping) Sorted() *Mapping {
	members := make([]Member, len(m.members))
	copy(members, m.members)
	sort.SliceStable(members, func(i, j int) bool { return members[i].Key < members[j].Key })
	out := &Mapping{members: members, index: make(map[string]int, len(members))}
	for i, mem := range members {
		out.index[mem.Key] = i
	}
	return out
}

// Equal reports deep equality. Mapping comparison ignores key order; NaN
// equals NaN so that round trips of non-finite floats compare equal.
func Equal(a, b Document) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		if math.IsNaN(a.f) && math.IsNaN(b.f) {
			return true
		}
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindDatetime:
		if a.dk != b.dk {
			return false
		}
		if a.dk == OffsetDateTime {
			return a.t.Equal(b.t)
		}
		// Local values carry no zone; compare wall clock readings.
		return a.t.Format("2006-01-02T15:04:05.999999999") == b.t.Format("2006-01-02T15:04:05.999999999")
	case KindSequence:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if a.m.Len() != b.m.Len() {
			return false
		}
		for _, mem := range a.m.members {
			other, ok := b.m.Get(mem.Key)
			if !ok || !Equal(mem.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// ToNative converts d into plain Go values: nil, bool, int64, float64,
// string, time.Time, []any and map[string]any.
func ToNative(d Document) any {
	switch d.kind {
	case KindBool:
		return d.b
	case KindInt:
		return d.i
	case KindFloat:
		return d.f
	case KindString:
		return d.s
	case KindDatetime:
		return d.t
	case KindSequence:
		out := make([]any, len(d.items))
		for i, item := range d.items {
			out[i] = ToNative(item)
		}
		return out
	case KindMapping:
		out := make(map[string]any, d.m.Len())
		for _, mem := range d.m.members {
			out[mem.Key] = ToNative(mem.Value)
		}
		return out
	}
	return nil
}
