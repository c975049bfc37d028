// Package compare walks a resolved OpenAPI schema fragment and a decoded
// JSON payload in parallel, reporting the first structural mismatch.
package compare

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Mismatch describes the first point at which the payload diverged from
// the schema. Path addresses the payload, e.g.
// "response.data.results[2].owner".
type Mismatch struct {
	Path     string
	Reason   string
	Expected string
	Actual   any
}

func (m *Mismatch) Error() string {
	var b strings.Builder
	b.WriteString(m.Path)
	b.WriteString(": ")
	b.WriteString(m.Reason)
	if m.Expected != "" {
		fmt.Fprintf(&b, " (expected %s", m.Expected)
		if m.Actual != nil {
			fmt.Fprintf(&b, ", got %v", m.Actual)
		}
		b.WriteString(")")
	}
	return b.String()
}

// KeyCheck validates a payload object key (typically its casing). A nil
// KeyCheck skips key validation.
type KeyCheck func(key string) error

// Options tune a single comparison. KeyMap translates schema property
// names to the form they take in the payload (for example camelizing
// snake_case names); nil means identity.
type Options struct {
	KeyCheck KeyCheck
	KeyMap   func(string) string
}

// Compare verifies value against schema, fail-fast. root names the
// payload in mismatch paths ("response" or "request"). Neither input is
// mutated.
func Compare(schema *openapi3.Schema, value any, root string, opts Options) error {
	w := &walker{opts: opts}
	return w.walk(schema, value, root)
}

type walker struct {
	opts Options
}

func (w *walker) keyed(name string) string {
	if w.opts.KeyMap == nil {
		return name
	}
	return w.opts.KeyMap(name)
}

func (w *walker) walk(schema *openapi3.Schema, value any, path string) error {
	if schema == nil {
		return nil
	}
	schema = flatten(schema)

	// Composition: the value must satisfy at least one branch.
	if len(schema.OneOf) > 0 || len(schema.AnyOf) > 0 {
		return w.walkBranches(schema, value, path)
	}

	if value == nil {
		if schema.Nullable {
			return nil
		}
		return &Mismatch{Path: path, Reason: "value is null but is not documented as nullable", Expected: schemaTypeName(schema)}
	}

	switch schemaType(schema, value) {
	case "object":
		return w.walkObject(schema, value, path)
	case "array":
		return w.walkArray(schema, value, path)
	case "string":
		s, ok := value.(string)
		if !ok {
			return typeMismatch(path, "string", value)
		}
		return w.checkEnum(schema, s, path)
	case "integer":
		n, ok := asNumber(value)
		if !ok || n != math.Trunc(n) {
			return typeMismatch(path, "integer", value)
		}
		return w.checkEnum(schema, value, path)
	case "number":
		if _, ok := asNumber(value); !ok {
			return typeMismatch(path, "number", value)
		}
		return w.checkEnum(schema, value, path)
	case "boolean":
		if _, ok := value.(bool); !ok {
			return typeMismatch(path, "boolean", value)
		}
		return w.checkEnum(schema, value, path)
	default:
		// Untyped schema with no structure to recurse into: accept.
		return w.checkEnum(schema, value, path)
	}
}

// walkBranches tries each oneOf/anyOf branch and succeeds on the first
// branch the value satisfies.
func (w *walker) walkBranches(schema *openapi3.Schema, value any, path string) error {
	branches := schema.OneOf
	if len(branches) == 0 {
		branches = schema.AnyOf
	}
	for _, ref := range branches {
		if ref == nil || ref.Value == nil {
			continue
		}
		if err := w.walk(ref.Value, value, path); err == nil {
			return nil
		}
	}
	if value == nil && schema.Nullable {
		return nil
	}
	return &Mismatch{Path: path, Reason: "value does not match any of the documented schema variants", Actual: describe(value)}
}

func (w *walker) walkObject(schema *openapi3.Schema, value any, path string) error {
	obj, ok := value.(map[string]any)
	if !ok {
		return typeMismatch(path, "object", value)
	}

	// Schema properties keyed by the form they take in the payload.
	props := make(map[string]*openapi3.SchemaRef, len(schema.Properties))
	for name, ref := range schema.Properties {
		props[w.keyed(name)] = ref
	}

	for _, name := range schema.Required {
		key := w.keyed(name)
		if _, present := obj[key]; !present {
			return &Mismatch{Path: path + "." + key, Reason: "required key is missing"}
		}
	}

	for _, key := range sortedKeys(obj) {
		keyPath := path + "." + key
		if w.opts.KeyCheck != nil {
			if err := w.opts.KeyCheck(key); err != nil {
				return &Mismatch{Path: keyPath, Reason: err.Error()}
			}
		}

		ref, documented := props[key]
		if documented {
			if ref == nil || ref.Value == nil {
				continue
			}
			if err := w.walk(ref.Value, obj[key], keyPath); err != nil {
				return err
			}
			continue
		}

		ap := schema.AdditionalProperties
		switch {
		case ap.Schema != nil && ap.Schema.Value != nil:
			if err := w.walk(ap.Schema.Value, obj[key], keyPath); err != nil {
				return err
			}
		case ap.Has != nil && *ap.Has:
			// explicitly permitted, nothing to verify
		default:
			return &Mismatch{Path: keyPath, Reason: "key is not documented in the schema"}
		}
	}
	return nil
}

func (w *walker) walkArray(schema *openapi3.Schema, value any, path string) error {
	arr, ok := value.([]any)
	if !ok {
		return typeMismatch(path, "array", value)
	}
	if schema.Items == nil || schema.Items.Value == nil {
		return nil
	}
	for i, elem := range arr {
		if err := w.walk(schema.Items.Value, elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) checkEnum(schema *openapi3.Schema, value any, path string) error {
	if len(schema.Enum) == 0 {
		return nil
	}
	for _, allowed := range schema.Enum {
		if jsonEqual(value, allowed) {
			return nil
		}
	}
	return &Mismatch{
		Path:     path,
		Reason:   "value is not a documented enum member",
		Expected: fmt.Sprintf("one of %v", schema.Enum),
		Actual:   value,
	}
}

// flatten merges allOf composition into a single schema so the walk sees
// one set of properties and required names. Inputs are never modified.
func flatten(schema *openapi3.Schema) *openapi3.Schema {
	if len(schema.AllOf) == 0 {
		return schema
	}
	merged := *schema
	merged.AllOf = nil
	merged.Properties = make(map[string]*openapi3.SchemaRef, len(schema.Properties))
	for name, ref := range schema.Properties {
		merged.Properties[name] = ref
	}
	merged.Required = append([]string(nil), schema.Required...)

	for _, ref := range schema.AllOf {
		if ref == nil || ref.Value == nil {
			continue
		}
		sub := flatten(ref.Value)
		for name, prop := range sub.Properties {
			merged.Properties[name] = prop
		}
		merged.Required = append(merged.Required, sub.Required...)
		if merged.Type == nil && sub.Type != nil {
			merged.Type = sub.Type
		}
		if sub.Nullable {
			merged.Nullable = true
		}
		if merged.Items == nil {
			merged.Items = sub.Items
		}
	}
	return &merged
}

// schemaType returns the declared type, or infers one from the schema's
// structure (and, failing that, the value) when the document omits it.
func schemaType(schema *openapi3.Schema, value any) string {
	if schema.Type != nil {
		types := schema.Type.Slice()
		if len(types) == 1 {
			return types[0]
		}
		// Multi-typed schemas (3.1): pick the declared type the value
		// satisfies structurally, if any, so scalar checks still run.
		for _, t := range types {
			if valueFitsType(t, value) {
				return t
			}
		}
		if len(types) > 0 {
			return types[0]
		}
	}
	if len(schema.Properties) > 0 || schema.AdditionalProperties.Schema != nil {
		return "object"
	}
	if schema.Items != nil {
		return "array"
	}
	return ""
}

func schemaTypeName(schema *openapi3.Schema) string {
	if t := schemaType(schema, nil); t != "" {
		return t
	}
	return "value"
}

func valueFitsType(t string, value any) bool {
	switch t {
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "integer", "number":
		_, ok := asNumber(value)
		return ok
	}
	return false
}

func typeMismatch(path, expected string, value any) *Mismatch {
	return &Mismatch{Path: path, Reason: "value does not match the documented type", Expected: expected, Actual: describe(value)}
}

// describe names a payload value for error messages: its JSON type, plus
// the value itself for scalars.
func describe(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return fmt.Sprintf("string %q", v)
	case bool:
		return fmt.Sprintf("boolean %v", v)
	default:
		if n, ok := asNumber(value); ok {
			if n == math.Trunc(n) {
				return fmt.Sprintf("number %d", int64(n))
			}
			return fmt.Sprintf("number %v", n)
		}
		return fmt.Sprintf("%T", value)
	}
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// jsonEqual compares a payload value with an enum member, normalizing
// numeric representations first.
func jsonEqual(a, b any) bool {
	if na, ok := asNumber(a); ok {
		nb, ok := asNumber(b)
		return ok && na == nb
	}
	return reflect.DeepEqual(a, b)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
