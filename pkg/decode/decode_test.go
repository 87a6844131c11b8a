package decode

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestJSON(t *testing.T) {
	v, err := JSON(`{"name":"John","age":30,"ratio":0.5,"tags":["a","b"],"active":true,"meta":null,"nested":{"z":1,"a":2}}`)
	require.NoError(t, err)

	m, ok := v.(*Map)
	require.True(t, ok, "expected *Map, got %T", v)
	assert.Equal(t, []string{"name", "age", "ratio", "tags", "active", "meta", "nested"}, m.Keys())

	name, _ := m.Get("name")
	assert.Equal(t, "John", name)
	age, _ := m.Get("age")
	assert.Equal(t, int64(30), age)
	ratio, _ := m.Get("ratio")
	assert.Equal(t, 0.5, ratio)
	active, _ := m.Get("active")
	assert.Equal(t, true, active)
	meta, ok := m.Get("meta")
	assert.True(t, ok)
	assert.Nil(t, meta)

	tags, _ := m.Get("tags")
	list, ok := tags.(*List)
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, list.Interface())

	nested, _ := m.Get("nested")
	assert.Equal(t, []string{"z", "a"}, nested.(*Map).Keys())
}

func TestJSON_Invalid(t *testing.T) {
	tests := []string{"", "{", `{"a":}`, "[1,2"}
	for _, raw := range tests {
		_, err := JSON(raw)
		assert.ErrorIs(t, err, ErrInvalidJSON, "input %q", raw)
	}
}

func TestJSON_Scalars(t *testing.T) {
	tests := []struct {
		raw      string
		expected any
	}{
		{raw: `42`, expected: int64(42)},
		{raw: `-1.25`, expected: -1.25},
		{raw: `1e3`, expected: 1000.0},
		{raw: `"text"`, expected: "text"},
		{raw: `false`, expected: false},
		{raw: `null`, expected: nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := JSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestMap_MarshalJSONKeepsOrder(t *testing.T) {
	v, err := JSON(`{"z":1,"a":{"y":[1,"x"],"b":null}}`)
	require.NoError(t, err)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":{"y":[1,"x"],"b":null}}`, string(out))
}

func TestYAML(t *testing.T) {
	v, err := YAML("name: John\nage: 30\ntags:\n  - a\n  - b\nweights: {z: 1.5, a: 2}\n")
	require.NoError(t, err)

	m, ok := v.(*Map)
	require.True(t, ok, "expected *Map, got %T", v)
	assert.Equal(t, []string{"name", "age", "tags", "weights"}, m.Keys())

	age, _ := m.Get("age")
	assert.Equal(t, int64(30), age)
	tags, _ := m.Get("tags")
	assert.Equal(t, []any{"a", "b"}, tags.(*List).Interface())
	weights, _ := m.Get("weights")
	assert.Equal(t, []string{"z", "a"}, weights.(*Map).Keys())
}

func TestYAML_EmptyAndInvalid(t *testing.T) {
	v, err := YAML("")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = YAML("a: [1, 2")
	assert.Error(t, err)
}

func TestYAML_Alias(t *testing.T) {
	v, err := YAML("base: &b {x: 1}\ncopy: *b\n")
	require.NoError(t, err)
	copied, _ := v.(*Map).Get("copy")
	x, _ := copied.(*Map).Get("x")
	assert.Equal(t, int64(1), x)
}

func TestPHP(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected any
	}{
		{name: "null", raw: `N;`, expected: nil},
		{name: "true", raw: `b:1;`, expected: true},
		{name: "false", raw: `b:0;`, expected: false},
		{name: "int", raw: `i:-42;`, expected: int64(-42)},
		{name: "float", raw: `d:0.5;`, expected: 0.5},
		{name: "string", raw: `s:5:"hello";`, expected: "hello"},
		{name: "string with quotes and semicolons", raw: `s:6:"a";"b;";`, expected: `a";"b;`},
		{name: "multibyte string", raw: `s:2:"é";`, expected: "é"},
		{name: "list", raw: `a:2:{i:0;s:1:"a";i:1;s:1:"b";}`, expected: []any{"a", "b"}},
		{name: "empty array", raw: `a:0:{}`, expected: []any{}},
		{
			name:     "map",
			raw:      `a:2:{s:4:"name";s:4:"John";s:3:"age";i:30;}`,
			expected: map[string]any{"name": "John", "age": int64(30)},
		},
		{
			name:     "sparse integer keys",
			raw:      `a:2:{i:3;s:1:"a";i:7;s:1:"b";}`,
			expected: map[string]any{"3": "a", "7": "b"},
		},
		{
			name:     "object",
			raw:      `O:8:"stdClass":2:{s:1:"a";i:1;s:4:"list";a:1:{i:0;b:1;}}`,
			expected: map[string]any{"a": int64(1), "list": []any{true}},
		},
		{
			name:     "private and protected properties",
			raw:      "O:4:\"User\":2:{s:10:\"\x00User\x00name\";s:3:\"Ann\";s:6:\"\x00*\x00age\";i:5;}",
			expected: map[string]any{"name": "Ann", "age": int64(5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := PHP(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, Plain(v))
		})
	}
}

func TestPHP_KeepsOrder(t *testing.T) {
	v, err := PHP(`a:3:{s:1:"z";i:1;s:1:"a";i:2;s:1:"m";i:3;}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, v.(*Map).Keys())
}

func TestPHP_SpecialFloats(t *testing.T) {
	v, err := PHP(`d:INF;`)
	require.NoError(t, err)
	assert.True(t, math.IsInf(v.(float64), 1))

	v, err = PHP(`d:NAN;`)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.(float64)))
}

func TestPHP_Invalid(t *testing.T) {
	tests := []string{
		``,
		`x:1;`,
		`i:abc;`,
		`b:2;`,
		`s:10:"short";`,
		`a:2:{i:0;s:1:"a";}`,
		`N;trailing`,
		`a:1:{d:1.5;s:1:"a";}`,
		`s:1:"a":`,
		`O:8:"stdClass";0:{}`,
		`a:99999999999999:{}`,
		`a:99999999999999999999:{}`,
		`s:9223372036854775807:"x";`,
		`a:1:{i:0;s:9223372036854775807:"x";}`,
	}
	for _, raw := range tests {
		assert.NotPanics(t, func() {
			_, err := PHP(raw)
			assert.Error(t, err, "input %q", raw)
		}, "input %q", raw)
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize(map[string]any{
		"b": []int{1, 2},
		"a": map[string]string{"k": "v"},
		"c": int32(7),
	})

	m, ok := v.(*Map)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
	assert.Equal(t, map[string]any{
		"a": map[string]any{"k": "v"},
		"b": []any{int64(1), int64(2)},
		"c": int64(7),
	}, m.Interface())

	assert.Nil(t, Normalize(nil))
	assert.Equal(t, "x", Normalize([]byte("x")))
	assert.Equal(t, int64(3), Normalize(json.Number("3")))
}

func TestMapBuilder_ReplaceKeepsPosition(t *testing.T) {
	m := NewMapBuilder().Add("a", 1).Add("b", 2).Add("a", 3).Map()
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	a, _ := m.Get("a")
	assert.Equal(t, 3, a)
}

func TestList_Bounds(t *testing.T) {
	l := NewList("x")
	_, ok := l.Get(-1)
	assert.False(t, ok)
	_, ok = l.Get(1)
	assert.False(t, ok)

	var nilList *List
	assert.Equal(t, 0, nilList.Len())
	var nilMap *Map
	assert.Equal(t, 0, nilMap.Len())
}

func TestMap_MarshalYAMLKeepsOrder(t *testing.T) {
	v, err := JSON(`{"z":1,"a":{"y":[true,"x"]}}`)
	require.NoError(t, err)

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "z: 1\na:\n    y:\n        - true\n        - x\n", string(out))
}
