// Package jsonschema validates response bodies against JSON Schema
// documents. Bodies can be given as raw JSON or as values produced by any
// of the response decoders.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const resourceName = "schema.json"

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validator is a compiled schema. It is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile compiles a schema document.
func Compile(schema []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceName, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	s, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// CompileFile reads and compiles the schema stored at path.
func CompileFile(path string) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	return Compile(data)
}

// ValidateBytes validates a raw JSON document. A document that does not
// satisfy the schema yields ValidationErrors; malformed JSON yields a plain
// error.
func (v *Validator) ValidateBytes(doc []byte) error {
	// numbers stay json.Number so large integers are checked exactly
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("invalid JSON: unexpected data after the document")
	}
	return v.validate(instance)
}

// ValidateValue validates a decoded value. The value is round-tripped
// through JSON first so ordered maps and lists, as well as values decoded
// from other formats, are checked the same way as a JSON body.
func (v *Validator) ValidateValue(value any) error {
	doc, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("value cannot be represented as JSON: %w", err)
	}
	return v.ValidateBytes(doc)
}

func (v *Validator) validate(instance any) error {
	err := v.schema.Validate(instance)
	if err == nil {
		return nil
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		if errs := extractValidationErrors(validationErr); len(errs) > 0 {
			return errs
		}
	}
	return ValidationErrors{err}
}

// extractValidationErrors flattens a jsonschema.ValidationError tree
func extractValidationErrors(err *jsonschema.ValidationError) ValidationErrors {
	var errs ValidationErrors

	if err.Message != "" {
		errs = append(errs, fmt.Errorf("validation error at %s: %s", instanceLocation(err.InstanceLocation), err.Message))
	}

	for _, cause := range err.Causes {
		errs = append(errs, extractValidationErrors(cause)...)
	}

	return errs
}

func instanceLocation(loc string) string {
	if loc == "" {
		return "/"
	}
	return loc
}
