// Package jsonpath evaluates simple JSONPath expressions ($.users[0].name)
// against raw JSON documents and against decoded response bodies of any
// format.
package jsonpath

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/restclient/pkg/decode"
)

var (
	// ErrEmptyPath is returned for an empty expression.
	ErrEmptyPath = errors.New("empty JSONPath expression")

	// ErrNotFound is returned when the path does not resolve to a value.
	ErrNotFound = errors.New("path not found")
)

// Segment is one step of a path: either a member name or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return "." + s.Key
}

// Parse splits an expression into segments. The leading "$" is optional;
// members may be written as .name, ['name'] or ["name"] and indexes as [n].
// The root path ("$" or "") parses to no segments.
func Parse(path string) ([]Segment, error) {
	p := strings.TrimSpace(path)
	p = strings.TrimPrefix(p, "$")

	var segs []Segment
	for i := 0; i < len(p); {
		switch p[i] {
		case '.':
			i++
			start := i
			for i < len(p) && p[i] != '.' && p[i] != '[' {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("invalid path %q: empty member name at offset %d", path, start)
			}
			segs = append(segs, Segment{Key: p[start:i]})
		case '[':
			end := strings.IndexByte(p[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("invalid path %q: unclosed bracket", path)
			}
			inner := p[i+1 : i+end]
			seg, err := bracketSegment(inner)
			if err != nil {
				return nil, fmt.Errorf("invalid path %q: %w", path, err)
			}
			segs = append(segs, seg)
			i += end + 1
		default:
			if len(segs) > 0 {
				return nil, fmt.Errorf("invalid path %q: unexpected %q at offset %d", path, p[i], i)
			}
			// bare leading member: users[0].name
			start := i
			for i < len(p) && p[i] != '.' && p[i] != '[' {
				i++
			}
			segs = append(segs, Segment{Key: p[start:i]})
		}
	}
	return segs, nil
}

func bracketSegment(inner string) (Segment, error) {
	if len(inner) >= 2 {
		q := inner[0]
		if (q == '\'' || q == '"') && inner[len(inner)-1] == q {
			return Segment{Key: inner[1 : len(inner)-1]}, nil
		}
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n < 0 {
		return Segment{}, fmt.Errorf("invalid index %q", inner)
	}
	return Segment{Index: n, IsIndex: true}, nil
}

// Extract evaluates path against a raw JSON document and returns the
// matched value as text. Strings are returned unquoted, null as "null" and
// objects or arrays as their raw JSON.
func Extract(body []byte, path string) (string, error) {
	if len(body) == 0 {
		return "", fmt.Errorf("empty JSON document")
	}
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}
	segs, err := Parse(path)
	if err != nil {
		return "", err
	}

	result := gjson.GetBytes(body, gjsonPath(segs))
	if !result.Exists() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// gjsonPath renders segments in gjson syntax, escaping gjson's
// metacharacters inside member names.
func gjsonPath(segs []Segment) string {
	if len(segs) == 0 {
		return "@this"
	}
	parts := make([]string, len(segs))
	for i, s := range segs {
		if s.IsIndex {
			parts[i] = strconv.Itoa(s.Index)
			continue
		}
		var b strings.Builder
		for _, r := range s.Key {
			switch r {
			case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
		parts[i] = b.String()
	}
	return strings.Join(parts, ".")
}

// Select evaluates path against a decoded value (*decode.Map, *decode.List
// or plain maps and slices). Numeric member names also index lists, so
// $.items.0 and $.items[0] are equivalent.
func Select(value any, path string) (any, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	segs, err := Parse(path)
	if err != nil {
		return nil, err
	}

	cur := value
	for i, s := range segs {
		next, ok := step(cur, s)
		if !ok {
			return nil, fmt.Errorf("%w: %s (at %s)", ErrNotFound, path, pathPrefix(segs[:i+1]))
		}
		cur = next
	}
	return cur, nil
}

func step(cur any, s Segment) (any, bool) {
	switch t := cur.(type) {
	case *decode.Map:
		if s.IsIndex {
			return t.Get(strconv.Itoa(s.Index))
		}
		return t.Get(s.Key)
	case map[string]any:
		key := s.Key
		if s.IsIndex {
			key = strconv.Itoa(s.Index)
		}
		v, ok := t[key]
		return v, ok
	case *decode.List:
		i, ok := index(s)
		if !ok {
			return nil, false
		}
		return t.Get(i)
	case []any:
		i, ok := index(s)
		if !ok || i >= len(t) {
			return nil, false
		}
		return t[i], true
	}
	return nil, false
}

func index(s Segment) (int, bool) {
	if s.IsIndex {
		return s.Index, true
	}
	n, err := strconv.Atoi(s.Key)
	return n, err == nil && n >= 0
}

func pathPrefix(segs []Segment) string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range segs {
		b.WriteString(s.String())
	}
	return b.String()
}

// String renders a selected value for display: strings as-is, nil as
// "null", everything else as JSON.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	}
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}

// Expression is a named path, written on the command line as name=path.
type Expression struct {
	Name string
	Path string
}

// ParseExpressions parses name=path pairs. A pair without a name uses the
// path itself as the name.
func ParseExpressions(pairs []string) ([]Expression, error) {
	exprs := make([]Expression, 0, len(pairs))
	for _, pair := range pairs {
		name, path, ok := strings.Cut(pair, "=")
		if !ok {
			name, path = pair, pair
		}
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if path == "" {
			return nil, fmt.Errorf("extraction %q: %w", pair, ErrEmptyPath)
		}
		if _, err := Parse(path); err != nil {
			return nil, err
		}
		exprs = append(exprs, Expression{Name: name, Path: path})
	}
	return exprs, nil
}

// SelectMultiple evaluates every expression against value. Values that
// resolve are returned even when others fail; the failures are joined into
// the returned error.
func SelectMultiple(value any, exprs []Expression) (map[string]any, error) {
	return evaluate(exprs, func(path string) (any, error) {
		return Select(value, path)
	})
}

// ExtractMultiple is SelectMultiple over a raw JSON document; every value
// comes back in Extract's text form.
func ExtractMultiple(body []byte, exprs []Expression) (map[string]any, error) {
	return evaluate(exprs, func(path string) (any, error) {
		return Extract(body, path)
	})
}

// Valid reports whether body is a single well-formed JSON document.
func Valid(body []byte) bool {
	return gjson.ValidBytes(body)
}

func evaluate(exprs []Expression, eval func(path string) (any, error)) (map[string]any, error) {
	if len(exprs) == 0 {
		return nil, fmt.Errorf("no JSONPath expressions provided")
	}

	results := make(map[string]any, len(exprs))
	var failures []string
	for _, e := range exprs {
		v, err := eval(e.Path)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", e.Name, err))
			continue
		}
		results[e.Name] = v
	}
	if len(failures) > 0 {
		return results, fmt.Errorf("extraction errors: %s", strings.Join(failures, "; "))
	}
	return results, nil
}
