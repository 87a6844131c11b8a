// Package decode turns raw response bodies into ordered, read-only values.
//
// Every decoder returns one of:
//   - *Map for object-like documents (keys keep document order)
//   - *List for array-like documents
//   - a scalar: string, int64, float64, bool or nil
//
// Map and List expose no mutators, so a decoded document can be handed out
// freely without callers being able to alter it.
package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"
)

// Map is an ordered key/value mapping.
type Map struct {
	keys   []string
	values map[string]any
}

// MapBuilder assembles a Map. Adding an existing key replaces its value
// and keeps its original position.
type MapBuilder struct {
	m *Map
}

// NewMapBuilder creates an empty builder.
func NewMapBuilder() *MapBuilder {
	return &MapBuilder{m: &Map{values: make(map[string]any)}}
}

// Add sets key to value.
func (b *MapBuilder) Add(key string, value any) *MapBuilder {
	if _, ok := b.m.values[key]; !ok {
		b.m.keys = append(b.m.keys, key)
	}
	b.m.values[key] = value
	return b
}

// Map returns the built map. The builder must not be used afterwards.
func (b *MapBuilder) Map() *Map {
	m := b.m
	b.m = &Map{values: make(map[string]any)}
	return m
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in document order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Each calls fn for every entry in order until fn returns false.
func (m *Map) Each(fn func(key string, value any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Interface returns a deep copy as plain Go maps and slices.
func (m *Map) Interface() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = Plain(m.values[k])
	}
	return out
}

// MarshalJSON encodes the map keeping key order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the map as a YAML mapping keeping key order.
func (m *Map) MarshalYAML() (any, error) {
	if m == nil {
		return nil, nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		var value yaml.Node
		if err := value.Encode(m.values[k]); err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		node.Content = append(node.Content, key, &value)
	}
	return node, nil
}

// List is an ordered sequence.
type List struct {
	items []any
}

// NewList copies items into a new List.
func NewList(items ...any) *List {
	l := &List{items: make([]any, len(items))}
	copy(l.items, items)
	return l
}

// Len returns the number of items.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Get returns the item at index i.
func (l *List) Get(i int) (any, bool) {
	if l == nil || i < 0 || i >= len(l.items) {
		return nil, false
	}
	return l.items[i], true
}

// Each calls fn for every item in order until fn returns false.
func (l *List) Each(fn func(index int, value any) bool) {
	if l == nil {
		return
	}
	for i, v := range l.items {
		if !fn(i, v) {
			return
		}
	}
}

// Interface returns a deep copy as plain Go maps and slices.
func (l *List) Interface() []any {
	if l == nil {
		return nil
	}
	out := make([]any, len(l.items))
	for i, v := range l.items {
		out[i] = Plain(v)
	}
	return out
}

// MarshalJSON encodes the list.
func (l *List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}
	return json.Marshal(l.items)
}

// MarshalYAML encodes the list as a YAML sequence.
func (l *List) MarshalYAML() (any, error) {
	if l == nil {
		return nil, nil
	}
	if l.items == nil {
		return []any{}, nil
	}
	return l.items, nil
}

// Plain converts Map and List values (recursively) to map[string]any and
// []any. Scalars are returned unchanged.
func Plain(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Interface()
	case *List:
		return t.Interface()
	default:
		return v
	}
}

// Normalize converts arbitrary decoder output into the value model: maps
// with string keys become *Map (keys sorted), slices and arrays become
// *List and integer kinds become int64.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, *Map, *List, string, bool, int64, float64:
		return v
	case []byte:
		return string(t)
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			b := NewMapBuilder()
			keys := make([]string, 0, rv.Len())
			byKey := make(map[string]reflect.Value, rv.Len())
			for _, k := range rv.MapKeys() {
				s := fmt.Sprint(k.Interface())
				keys = append(keys, s)
				byKey[s] = rv.MapIndex(k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				b.Add(k, Normalize(byKey[k].Interface()))
			}
			return b.Map()
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		b := NewMapBuilder()
		for _, k := range keys {
			b.Add(k, Normalize(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()))
		}
		return b.Map()
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = Normalize(rv.Index(i).Interface())
		}
		return &List{items: items}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	}
	return v
}
