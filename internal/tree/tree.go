// Package tree holds the generic context document passed through the chat
// pipeline: an immutable-by-convention union of scalar, sequence and mapping
// nodes. Mapping keys are unique and keep their insertion order, which is
// what makes reduction and rendering deterministic for a given document.
package tree

import (
	"fmt"
	"sort"
)

// Kind discriminates the three node variants.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return "unknown"
}

// Entry is one ordered key/value pair of a mapping node.
type Entry struct {
	Key   string
	Value *Value
}

// Value is a single node. The zero value is not usable; build nodes through
// the constructors below. Pipeline stages never mutate a Value they were
// handed, they build new ones.
type Value struct {
	kind    Kind
	scalar  interface{} // nil, string, float64 or bool
	items   []*Value
	entries []Entry
	index   map[string]int
}

// ==========================
// Constructors
// ==========================

func String(s string) *Value  { return &Value{kind: KindScalar, scalar: s} }
func Number(f float64) *Value { return &Value{kind: KindScalar, scalar: f} }
func Bool(b bool) *Value      { return &Value{kind: KindScalar, scalar: b} }
func Null() *Value            { return &Value{kind: KindScalar, scalar: nil} }

// Seq builds a sequence node from the given items in order.
func Seq(items ...*Value) *Value {
	return &Value{kind: KindSequence, items: items}
}

// NewMapping builds an empty mapping node.
func NewMapping() *Value {
	return &Value{kind: KindMapping, index: make(map[string]int)}
}

// Set adds or replaces a key on a mapping node and returns the node so calls
// can be chained during construction. New keys keep insertion order.
func (v *Value) Set(key string, val *Value) *Value {
	if v.kind != KindMapping {
		return v
	}
	if i, ok := v.index[key]; ok {
		v.entries[i].Value = val
		return v
	}
	v.index[key] = len(v.entries)
	v.entries = append(v.entries, Entry{Key: key, Value: val})
	return v
}

// ==========================
// Inspection
// ==========================

func (v *Value) Kind() Kind       { return v.kind }
func (v *Value) IsScalar() bool   { return v.kind == KindScalar }
func (v *Value) IsSequence() bool { return v.kind == KindSequence }
func (v *Value) IsMapping() bool  { return v.kind == KindMapping }

// IsNull reports whether the node is the null scalar.
func (v *Value) IsNull() bool { return v.kind == KindScalar && v.scalar == nil }

// Len returns the number of items of a sequence or entries of a mapping.
// Scalars have length zero.
func (v *Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.items)
	case KindMapping:
		return len(v.entries)
	}
	return 0
}

// Items returns the sequence items. Nil for non-sequences.
func (v *Value) Items() []*Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.items
}

// Entries returns the ordered mapping entries. Nil for non-mappings.
func (v *Value) Entries() []Entry {
	if v.kind != KindMapping {
		return nil
	}
	return v.entries
}

// Keys returns the mapping keys in insertion order.
func (v *Value) Keys() []string {
	if v.kind != KindMapping {
		return nil
	}
	keys := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Get looks up a mapping key.
func (v *Value) Get(key string) (*Value, bool) {
	if v.kind != KindMapping {
		return nil, false
	}
	i, ok := v.index[key]
	if !ok {
		return nil, false
	}
	return v.entries[i].Value, true
}

// Has reports whether a mapping contains the key.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Scalar returns the raw scalar payload (nil, string, float64 or bool).
func (v *Value) Scalar() (interface{}, bool) {
	if v.kind != KindScalar {
		return nil, false
	}
	return v.scalar, true
}

func (v *Value) StringValue() (string, bool) {
	s, ok := v.scalar.(string)
	return s, ok && v.kind == KindScalar
}

func (v *Value) NumberValue() (float64, bool) {
	f, ok := v.scalar.(float64)
	return f, ok && v.kind == KindScalar
}

func (v *Value) BoolValue() (bool, bool) {
	b, ok := v.scalar.(bool)
	return b, ok && v.kind == KindScalar
}

// TypeName names the runtime kind of a node the way report summaries expose
// it: "string", "number", "boolean", "null", "sequence" or "mapping".
func (v *Value) TypeName() string {
	switch v.kind {
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	switch v.scalar.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	}
	return "null"
}

// Head returns a new sequence holding at most the first n items. Non-sequence
// nodes are returned unchanged.
func (v *Value) Head(n int) *Value {
	if v.kind != KindSequence || len(v.items) <= n {
		return v
	}
	return Seq(v.items[:n]...)
}

// TableShaped reports whether v is a non-empty sequence whose first element
// is a mapping, i.e. usable as tabular rows. Shared by the analyzer, the
// reducer and the table renderer.
func TableShaped(v *Value) bool {
	return v != nil && v.kind == KindSequence && len(v.items) > 0 && v.items[0].kind == KindMapping
}

// ==========================
// Conversion
// ==========================

// FromAny converts decoded-JSON style Go values (map[string]interface{},
// []interface{}, string, float64, bool, nil and the common int widths) into a
// tree. Map keys are sorted so that trees built from Go maps are
// deterministic; documents decoded through UnmarshalJSON keep their wire
// order instead.
func FromAny(data interface{}) (*Value, error) {
	switch t := data.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case bool:
		return Bool(t), nil
	case []interface{}:
		items := make([]*Value, 0, len(t))
		for _, raw := range t {
			item, err := FromAny(raw)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return Seq(items...), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, k := range keys {
			val, err := FromAny(t[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, val)
		}
		return m, nil
	}
	return nil, fmt.Errorf("tree: unsupported value type %T", data)
}

// MustFromAny is FromAny for values known to be JSON-shaped; it panics on
// unsupported types and exists for literals in tests and wiring code.
func MustFromAny(data interface{}) *Value {
	v, err := FromAny(data)
	if err != nil {
		panic(err)
	}
	return v
}

// ToAny converts the tree back into plain Go values. Mapping order is lost
// (Go maps are unordered); use MarshalJSON when order matters on the wire.
func (v *Value) ToAny() interface{} {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindSequence:
		out := make([]interface{}, 0, len(v.items))
		for _, item := range v.items {
			out = append(out, item.ToAny())
		}
		return out
	case KindMapping:
		out := make(map[string]interface{}, len(v.entries))
		for _, e := range v.entries {
			out[e.Key] = e.Value.ToAny()
		}
		return out
	}
	return nil
}
