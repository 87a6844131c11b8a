package decode

import (
	"errors"
	"strconv"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by JSON for malformed input.
var ErrInvalidJSON = errors.New("invalid JSON document")

// JSON decodes a JSON document. Object members keep their document order
// and integral numbers are returned as int64.
func JSON(raw string) (any, error) {
	if !gjson.Valid(raw) {
		return nil, ErrInvalidJSON
	}
	return fromResult(gjson.Parse(raw)), nil
}

func fromResult(r gjson.Result) any {
	switch {
	case r.IsObject():
		b := NewMapBuilder()
		r.ForEach(func(key, value gjson.Result) bool {
			b.Add(key.String(), fromResult(value))
			return true
		})
		return b.Map()
	case r.IsArray():
		var items []any
		r.ForEach(func(_, value gjson.Result) bool {
			items = append(items, fromResult(value))
			return true
		})
		return &List{items: items}
	}

	switch r.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return i
		}
		return r.Num
	case gjson.String:
		return r.Str
	default:
		return nil
	}
}
