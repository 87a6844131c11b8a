package jsonpath

import (
	"errors"
	"strings"
	"testing"

	"github.com/wesleyorama2/restclient/pkg/decode"
)

const document = `{
	"name": "John Doe",
	"age": 30,
	"address": {
		"street": "123 Main St",
		"city": "Anytown"
	},
	"phones": [
		{"type": "home", "number": "555-1234"},
		{"type": "work", "number": "555-5678"}
	],
	"active": true,
	"scores": [10, 20, 30, 40],
	"metadata": null,
	"dotted.key": "escaped"
}`

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		expected      []Segment
		expectedError bool
	}{
		{name: "Root", path: "$", expected: nil},
		{name: "Member", path: "$.name", expected: []Segment{{Key: "name"}}},
		{
			name:     "Nested with index",
			path:     "$.phones[1].number",
			expected: []Segment{{Key: "phones"}, {Index: 1, IsIndex: true}, {Key: "number"}},
		},
		{
			name:     "Bracket quoted members",
			path:     `$['address']["city"]`,
			expected: []Segment{{Key: "address"}, {Key: "city"}},
		},
		{name: "Root index", path: "$[0]", expected: []Segment{{Index: 0, IsIndex: true}}},
		{
			name:     "Without dollar",
			path:     "phones[0]",
			expected: []Segment{{Key: "phones"}, {Index: 0, IsIndex: true}},
		},
		{name: "Unclosed bracket", path: "$.phones[0", expectedError: true},
		{name: "Negative index", path: "$.scores[-1]", expectedError: true},
		{name: "Empty member", path: "$..name", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, err := Parse(tt.path)
			if tt.expectedError {
				if err == nil {
					t.Errorf("Expected error, got segments %v", segs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(segs) != len(tt.expected) {
				t.Fatalf("Expected %d segments, got %d (%v)", len(tt.expected), len(segs), segs)
			}
			for i := range segs {
				if segs[i] != tt.expected[i] {
					t.Errorf("Segment %d: expected %+v, got %+v", i, tt.expected[i], segs[i])
				}
			}
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		expected      string
		expectedError bool
	}{
		{name: "Root path", path: "$", expected: document},
		{name: "Simple property", path: "$.name", expected: "John Doe"},
		{name: "Numeric property", path: "$.age", expected: "30"},
		{name: "Boolean property", path: "$.active", expected: "true"},
		{name: "Nested property", path: "$.address.city", expected: "Anytown"},
		{name: "Array element", path: "$.scores[1]", expected: "20"},
		{name: "Object in array", path: "$.phones[0].number", expected: "555-1234"},
		{name: "Null value", path: "$.metadata", expected: "null"},
		{name: "Member containing a dot", path: "$['dotted.key']", expected: "escaped"},
		{name: "Non-existent property", path: "$.nonexistent", expectedError: true},
		{name: "Array index out of bounds", path: "$.scores[10]", expectedError: true},
		{name: "Empty path", path: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Extract([]byte(document), tt.path)

			if tt.expectedError && err == nil {
				t.Errorf("Expected error, got nil")
			}
			if !tt.expectedError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if !tt.expectedError && result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}

	if _, err := Extract(nil, "$.name"); err == nil {
		t.Errorf("Expected error for empty document, got nil")
	}
}

func TestSelect(t *testing.T) {
	decoded, err := decode.JSON(document)
	if err != nil {
		t.Fatalf("Failed to decode fixture: %v", err)
	}

	tests := []struct {
		name          string
		path          string
		expected      string
		expectedError bool
	}{
		{name: "Simple property", path: "$.name", expected: "John Doe"},
		{name: "Numeric property", path: "$.age", expected: "30"},
		{name: "Nested property", path: "$.address.city", expected: "Anytown"},
		{name: "Array element", path: "$.scores[3]", expected: "40"},
		{name: "Dotted index", path: "$.scores.2", expected: "30"},
		{name: "Object keeps order", path: "$.phones[1]", expected: `{"type":"work","number":"555-5678"}`},
		{name: "Null value", path: "$.metadata", expected: "null"},
		{name: "Index into object", path: "$.address[0]", expectedError: true},
		{name: "Member of scalar", path: "$.name.first", expectedError: true},
		{name: "Out of bounds", path: "$.scores[4]", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Select(decoded, tt.path)
			if tt.expectedError {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got := String(v); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSelect_PlainValues(t *testing.T) {
	value := map[string]any{
		"items": []any{map[string]any{"id": 1}},
		"7":     "seven",
	}

	v, err := Select(value, "$.items[0].id")
	if err != nil || v != 1 {
		t.Errorf("Expected 1, got %v (err %v)", v, err)
	}
	v, err = Select(value, "$[7]")
	if err != nil || v != "seven" {
		t.Errorf("Expected numeric key lookup, got %v (err %v)", v, err)
	}
}

func TestSelectMultiple(t *testing.T) {
	decoded, err := decode.JSON(`{"user":{"name":"John"},"status":"active","items":[{"id":1}]}`)
	if err != nil {
		t.Fatalf("Failed to decode fixture: %v", err)
	}

	exprs, err := ParseExpressions([]string{"name=$.user.name", "status=$.status", "$.items[0].id", "missing=$.nope"})
	if err != nil {
		t.Fatalf("ParseExpressions: %v", err)
	}
	if exprs[2].Name != "$.items[0].id" {
		t.Errorf("Expected unnamed expression to be named after its path, got %q", exprs[2].Name)
	}

	results, err := SelectMultiple(decoded, exprs)
	if err == nil {
		t.Fatalf("Expected error for missing path")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("Expected error to name the failed extraction, got %v", err)
	}
	if results["name"] != "John" || results["status"] != "active" || results["$.items[0].id"] != int64(1) {
		t.Errorf("Unexpected results %v", results)
	}

	if _, err := SelectMultiple(decoded, nil); err == nil {
		t.Errorf("Expected error for no expressions")
	}
	if _, err := ParseExpressions([]string{"name="}); err == nil {
		t.Errorf("Expected error for empty path")
	}
}

func TestExtractMultiple(t *testing.T) {
	body := []byte(`{"user":{"name":"John","id":7},"tags":["a","b"]}`)

	exprs, err := ParseExpressions([]string{"name=$.user.name", "id=$.user.id", "tags=$.tags", "missing=$.nope"})
	if err != nil {
		t.Fatalf("ParseExpressions: %v", err)
	}

	results, err := ExtractMultiple(body, exprs)
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Errorf("Expected error naming the failed extraction, got %v", err)
	}
	if results["name"] != "John" || results["id"] != "7" || results["tags"] != `["a","b"]` {
		t.Errorf("Unexpected results %v", results)
	}
}

func TestValid(t *testing.T) {
	if !Valid([]byte(`{"a":[1,2]}`)) {
		t.Errorf("Expected object to be valid")
	}
	if !Valid([]byte(`"text"`)) {
		t.Errorf("Expected string to be valid")
	}
	for _, body := range []string{``, `{"a":`, `a=1&b=2`} {
		if Valid([]byte(body)) {
			t.Errorf("Expected %q to be invalid", body)
		}
	}
}
