// Package extract parses free-form model output into strict JSON shapes.
//
// Model responses are routinely wrapped in prose or markdown code fences, so
// extraction slices between the first opening delimiter and the last closing
// delimiter of the requested shape instead of scanning recursively. Failures
// are typed: domain.ErrMalformedResponse for missing delimiters, invalid
// JSON, or a top-level type mismatch; domain.ErrSchemaMismatch when a
// required sub-shape is absent.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"cataloger/internal/domain"
)

// Shape tags the expected top-level JSON value.
type Shape string

const (
	ShapeObject Shape = "object"
	ShapeArray  Shape = "array"
)

func (s Shape) delimiters() (byte, byte) {
	if s == ShapeArray {
		return '[', ']'
	}
	return '{', '}'
}

// Fragment returns the raw JSON fragment of the requested shape, stripped of
// code fences and surrounding prose.
func Fragment(raw string, shape Shape) (json.RawMessage, error) {
	cleaned := stripFences(raw)
	opening, closing := shape.delimiters()
	start := strings.IndexByte(cleaned, opening)
	end := strings.LastIndexByte(cleaned, closing)
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON %s found in response", domain.ErrMalformedResponse, shape)
	}
	fragment := json.RawMessage(cleaned[start : end+1])
	if !json.Valid(fragment) {
		return nil, fmt.Errorf("%w: invalid JSON %s", domain.ErrMalformedResponse, shape)
	}
	return fragment, nil
}

// Decode extracts a fragment of the requested shape and unmarshals it into T.
func Decode[T any](raw string, shape Shape) (T, error) {
	var out T
	fragment, err := Fragment(raw, shape)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(fragment, &out); err != nil {
		return out, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return out, nil
}

// Object extracts the outermost JSON object from raw.
func Object(raw string) (map[string]any, error) {
	return Decode[map[string]any](raw, ShapeObject)
}

// Array extracts the outermost JSON array from raw as raw elements.
func Array(raw string) ([]json.RawMessage, error) {
	return Decode[[]json.RawMessage](raw, ShapeArray)
}

// StringArray extracts the outermost JSON array and requires every element
// to be a string.
func StringArray(raw string) ([]string, error) {
	return Decode[[]string](raw, ShapeArray)
}

// ObjectWithArrayField extracts an object and additionally validates that it
// carries an array under the given key. A structurally valid object missing
// the key fails fast with domain.ErrSchemaMismatch instead of flowing
// downstream.
func ObjectWithArrayField(raw, key string) (map[string]any, error) {
	obj, err := Object(raw)
	if err != nil {
		return nil, err
	}
	value, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q array", domain.ErrSchemaMismatch, key)
	}
	if _, ok := value.([]any); !ok {
		return nil, fmt.Errorf("%w: %q is not an array", domain.ErrSchemaMismatch, key)
	}
	return obj, nil
}

func stripFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```JSON", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
