package oasguard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// SchemaLoader obtains the parsed OpenAPI document validation runs
// against. Load is called once, when the Validator is constructed; the
// returned document is treated as read-only from then on.
type SchemaLoader interface {
	Load() (*openapi3.T, error)
}

// FileLoader reads an OpenAPI document from a JSON or YAML file on disk,
// dispatching on the file extension. Swagger 2.0 documents are converted
// to OpenAPI 3 so the rest of the package sees a single model.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load() (*openapi3.T, error) {
	ext := strings.ToLower(filepath.Ext(l.Path))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, configErrorf("the schema path `%s` does not seem to point to a JSON or YAML file", l.Path)
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, configErrorf("could not read the OpenAPI specification at `%s`: %v", l.Path, err)
	}

	doc, err := parseDocument(data, ext == ".json")
	if err != nil {
		return nil, configErrorf("could not parse the OpenAPI specification at `%s`: %v", l.Path, err)
	}
	return doc, nil
}

// DocumentLoader wraps an already-parsed document, for schemas generated
// dynamically by the host application rather than read from disk.
type DocumentLoader struct {
	Doc *openapi3.T
}

func (l DocumentLoader) Load() (*openapi3.T, error) {
	if l.Doc == nil {
		return nil, configErrorf("DocumentLoader requires a non-nil document")
	}
	return l.Doc, nil
}

func parseDocument(data []byte, isJSON bool) (*openapi3.T, error) {
	if isSwagger2(data, isJSON) {
		return convertSwagger2(data, isJSON)
	}
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// isSwagger2 sniffs the top-level version field without committing to a
// full parse.
func isSwagger2(data []byte, isJSON bool) bool {
	var header struct {
		Swagger string `json:"swagger" yaml:"swagger"`
	}
	if isJSON {
		_ = json.Unmarshal(data, &header)
	} else {
		_ = yaml.Unmarshal(data, &header)
	}
	return strings.HasPrefix(header.Swagger, "2")
}

func convertSwagger2(data []byte, isJSON bool) (*openapi3.T, error) {
	if !isJSON {
		// openapi2 only unmarshals JSON; YAML goes through a generic
		// decode first. yaml.v3 produces string-keyed maps, so the
		// round trip is lossless for well-formed documents.
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode swagger yaml: %w", err)
		}
		var err error
		data, err = json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("re-encode swagger yaml: %w", err)
		}
	}
	var doc2 openapi2.T
	if err := json.Unmarshal(data, &doc2); err != nil {
		return nil, fmt.Errorf("decode swagger document: %w", err)
	}
	doc, err := openapi2conv.ToV3(&doc2)
	if err != nil {
		return nil, fmt.Errorf("convert swagger document to openapi 3: %w", err)
	}
	return doc, nil
}

var validMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"}

func normalizeMethod(method string) (string, error) {
	m := strings.ToUpper(strings.TrimSpace(method))
	for _, valid := range validMethods {
		if m == valid {
			return m, nil
		}
	}
	return "", configErrorf("method `%s` is invalid. Should be one of: %s.", method, strings.Join(validMethods, ", "))
}

// operationFor resolves the operation documented for a templated path
// key and method.
func operationFor(doc *openapi3.T, template, method string) (*openapi3.Operation, error) {
	item := doc.Paths.Find(template)
	if item == nil {
		return nil, configErrorf("path `%s` is not documented in the schema", template)
	}
	op := item.GetOperation(method)
	if op == nil {
		return nil, configErrorf("no `%s` operation is documented for path `%s`", method, template)
	}
	return op, nil
}

// responseSchema resolves the JSON response schema fragment for a
// templated path, method, and status code. A `default` response is used
// when the status code itself is not documented.
func responseSchema(doc *openapi3.T, template, method string, status int) (*openapi3.Schema, error) {
	op, err := operationFor(doc, template, method)
	if err != nil {
		return nil, err
	}
	if op.Responses == nil {
		return nil, configErrorf("no responses are documented for `%s %s`", method, template)
	}

	ref := op.Responses.Status(status)
	if ref == nil {
		ref = op.Responses.Value("default")
	}
	if ref == nil || ref.Value == nil {
		return nil, configErrorf("status code %d is not documented for `%s %s`. Documented codes: %s",
			status, method, template, strings.Join(documentedStatuses(op), ", "))
	}

	media := ref.Value.Content.Get("application/json")
	if media == nil {
		return nil, configErrorf("no application/json content is documented for `%s %s` status %d", method, template, status)
	}
	if media.Schema == nil || media.Schema.Value == nil {
		return nil, configErrorf("no schema is documented for the application/json content of `%s %s` status %d", method, template, status)
	}
	return media.Schema.Value, nil
}

// requestBodySchema resolves the JSON request body schema fragment for a
// templated path and method.
func requestBodySchema(doc *openapi3.T, template, method string) (*openapi3.Schema, error) {
	op, err := operationFor(doc, template, method)
	if err != nil {
		return nil, err
	}
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, configErrorf("no request body is documented for `%s %s`", method, template)
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil {
		return nil, configErrorf("no application/json request body is documented for `%s %s`", method, template)
	}
	if media.Schema == nil || media.Schema.Value == nil {
		return nil, configErrorf("no schema is documented for the application/json request body of `%s %s`", method, template)
	}
	return media.Schema.Value, nil
}

func documentedStatuses(op *openapi3.Operation) []string {
	var out []string
	for code := range op.Responses.Map() {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.Atoi(out[i])
		b, errB := strconv.Atoi(out[j])
		if errA != nil || errB != nil {
			return out[i] < out[j]
		}
		return a < b
	})
	return out
}
