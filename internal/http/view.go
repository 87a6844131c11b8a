package http

import (
	"fmt"
	"strconv"

	"github.com/wesleyorama2/restclient/pkg/decode"
)

// Iterator walks the top level of a decoded body in order. Map entries
// yield string keys, list items yield int keys and a scalar body yields
// nothing.
//
//	it, err := resp.Iterator()
//	for it.Next() {
//		fmt.Println(it.Key(), it.Value())
//	}
type Iterator struct {
	value any
	keys  []string
	size  int
	pos   int
}

func newIterator(v any) *Iterator {
	it := &Iterator{value: v, pos: -1}
	switch t := v.(type) {
	case *decode.Map:
		it.keys = t.Keys()
		it.size = len(it.keys)
	case *decode.List:
		it.size = t.Len()
	}
	return it
}

// Next advances to the next element and reports whether one exists.
func (it *Iterator) Next() bool {
	if it.pos < it.size {
		it.pos++
	}
	return it.pos < it.size
}

// Valid reports whether the iterator is positioned on an element.
func (it *Iterator) Valid() bool {
	return it.pos >= 0 && it.pos < it.size
}

// Key returns the current key, or nil when not positioned on an element.
func (it *Iterator) Key() any {
	if !it.Valid() {
		return nil
	}
	if it.keys != nil {
		return it.keys[it.pos]
	}
	return it.pos
}

// Value returns the current value, or nil when not positioned on an element.
func (it *Iterator) Value() any {
	if !it.Valid() {
		return nil
	}
	switch t := it.value.(type) {
	case *decode.Map:
		v, _ := t.Get(it.keys[it.pos])
		return v
	case *decode.List:
		v, _ := t.Get(it.pos)
		return v
	}
	return nil
}

// Len returns the number of elements.
func (it *Iterator) Len() int {
	return it.size
}

// Rewind moves back before the first element.
func (it *Iterator) Rewind() {
	it.pos = -1
}

// lookup finds key in a decoded value. Maps take any key rendered as a
// string; lists take an integer or a numeric string.
func lookup(v any, key any) (any, bool) {
	switch t := v.(type) {
	case *decode.Map:
		return t.Get(keyString(key))
	case *decode.List:
		i, ok := keyIndex(key)
		if !ok {
			return nil, false
		}
		return t.Get(i)
	}
	return nil, false
}

func keyString(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprint(k)
	}
}

func keyIndex(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, true
	case int64:
		return int(k), true
	case int32:
		return int(k), true
	case uint:
		return int(k), true
	case string:
		i, err := strconv.Atoi(k)
		return i, err == nil
	}
	return 0, false
}
