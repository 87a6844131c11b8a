package http

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// indexedQueryKey matches the innermost numeric index of an encoded
// parameter key, e.g. the `%5B0%5D=` in `tags%5B0%5D=a`.
var indexedQueryKey = regexp.MustCompile(`(?i)%5B[0-9]+%5D=`)

// EncodeParams serializes params in PHP http_build_query form: nested maps
// become `key[sub]`, sequences `key[0]`, `key[1]`, booleans 1/0, nil
// values are skipped. Keys are emitted in sorted order. Unless indexed is
// true the numeric indices are rewritten to a bare `[]`, so repeated keys
// read `tags%5B%5D=a&tags%5B%5D=b`.
func EncodeParams(params Params, indexed bool) string {
	var pairs []string
	for _, key := range sortedKeys(params) {
		pairs = appendParam(pairs, url.QueryEscape(key), params[key])
	}
	encoded := strings.Join(pairs, "&")
	if !indexed {
		encoded = indexedQueryKey.ReplaceAllString(encoded, "%5B%5D=")
	}
	return encoded
}

func appendParam(pairs []string, prefix string, value any) []string {
	switch v := value.(type) {
	case nil:
		return pairs
	case string:
		return append(pairs, prefix+"="+url.QueryEscape(v))
	case []byte:
		return append(pairs, prefix+"="+url.QueryEscape(string(v)))
	case bool:
		if v {
			return append(pairs, prefix+"=1")
		}
		return append(pairs, prefix+"=0")
	case fmt.Stringer:
		return append(pairs, prefix+"="+url.QueryEscape(v.String()))
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		for _, k := range rv.MapKeys() {
			s := fmt.Sprint(k.Interface())
			keys = append(keys, s)
			byKey[s] = rv.MapIndex(k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pairs = appendParam(pairs, prefix+"%5B"+url.QueryEscape(k)+"%5D", byKey[k].Interface())
		}
		return pairs
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			pairs = appendParam(pairs, prefix+"%5B"+strconv.Itoa(i)+"%5D", rv.Index(i).Interface())
		}
		return pairs
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return pairs
		}
		return appendParam(pairs, prefix, rv.Elem().Interface())
	case reflect.Float32, reflect.Float64:
		return append(pairs, prefix+"="+strconv.FormatFloat(rv.Float(), 'f', -1, 64))
	}
	return append(pairs, prefix+"="+url.QueryEscape(fmt.Sprint(value)))
}

func sortedKeys(p Params) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// asParams reports whether params is a mapping and returns it as Params.
func asParams(params any) (Params, bool) {
	switch p := params.(type) {
	case nil:
		return Params{}, true
	case Params:
		return p, true
	case map[string]any:
		return Params(p), true
	case map[string]string:
		out := make(Params, len(p))
		for k, v := range p {
			out[k] = v
		}
		return out, true
	case url.Values:
		return valuesToParams(p), true
	case map[string][]string:
		return valuesToParams(p), true
	}
	return nil, false
}

func valuesToParams(values map[string][]string) Params {
	out := make(Params, len(values))
	for k, v := range values {
		if len(v) == 1 {
			out[k] = v[0]
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	return out
}

// payloadString renders non-mapping parameters verbatim.
func payloadString(params any) string {
	switch p := params.(type) {
	case string:
		return p
	case []byte:
		return string(p)
	case fmt.Stringer:
		return p.String()
	default:
		return fmt.Sprint(p)
	}
}
