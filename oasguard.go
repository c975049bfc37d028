// Package oasguard validates API traffic against an OpenAPI 2/3 schema:
// response (and optionally request) bodies are checked structurally
// against the documented schema fragments, and JSON key casing is checked
// against a configured naming convention.
//
// The three invocation surfaces are Validator.Middleware for runtime
// validation, AssertResponse for test suites, and the oasguard CLI for
// captured payloads.
package oasguard

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/oasguard/oasguard/internal/compare"
	"github.com/oasguard/oasguard/internal/pathmatch"
)

// Validator checks payloads against one loaded OpenAPI document. It is
// immutable after construction and safe for concurrent use; every
// validation call is independent.
type Validator struct {
	doc       *openapi3.T
	templates []string
	cfg       *validated
}

// New validates the configuration, loads the schema document, and
// returns a ready Validator. All configuration problems surface here as
// *ConfigError.
func New(cfg Config) (*Validator, error) {
	checked, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	doc, err := cfg.Loader.Load()
	if err != nil {
		return nil, err
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, configErrorf("the loaded OpenAPI document has no paths to validate against")
	}

	templates := make([]string, 0, doc.Paths.Len())
	for key := range doc.Paths.Map() {
		templates = append(templates, key)
	}
	sort.Strings(templates)

	return &Validator{doc: doc, templates: templates, cfg: checked}, nil
}

// Document exposes the loaded OpenAPI document, read-only.
func (v *Validator) Document() *openapi3.T { return v.doc }

// ResolvePath maps a concrete request path to the templated path key it
// is documented under. On failure it returns a *ResolutionError carrying
// near-miss suggestions.
func (v *Validator) ResolvePath(path string) (string, error) {
	template, suggestions, ok := pathmatch.Resolve(path, v.templates)
	if !ok {
		return "", &ResolutionError{Path: path, Suggestions: suggestions}
	}
	return template, nil
}

// ValidateResponseBytes checks a captured response body against the
// schema documented for (path, method, status). A *ValidationError
// describes the first mismatch; a *ResolutionError or *ConfigError means
// the schema does not document the call at all.
func (v *Validator) ValidateResponseBytes(path, method string, status int, body []byte) error {
	m, err := normalizeMethod(method)
	if err != nil {
		return err
	}
	template, err := v.ResolvePath(path)
	if err != nil {
		return err
	}
	schema, err := responseSchema(v.doc, template, m, status)
	if err != nil {
		return err
	}
	return v.compareBody(schema, body, "response")
}

// ValidateRequestBytes checks a captured request body against the
// request body schema documented for (path, method).
func (v *Validator) ValidateRequestBytes(path, method string, body []byte) error {
	m, err := normalizeMethod(method)
	if err != nil {
		return err
	}
	template, err := v.ResolvePath(path)
	if err != nil {
		return err
	}
	schema, err := requestBodySchema(v.doc, template, m)
	if err != nil {
		return err
	}
	return v.compareBody(schema, body, "request")
}

// ValidateResponse checks an *http.Response against the schema. The
// response must carry its originating request (as responses produced by
// http.Client and httptest do). The body is read and then restored so
// callers can still consume it.
func (v *Validator) ValidateResponse(resp *http.Response) error {
	if resp == nil {
		return configErrorf("cannot validate a nil response")
	}
	if resp.Request == nil || resp.Request.URL == nil {
		return configErrorf("cannot validate a response without its originating request")
	}
	body, err := replaceBody(&resp.Body)
	if err != nil {
		return err
	}
	return v.ValidateResponseBytes(resp.Request.URL.Path, resp.Request.Method, resp.StatusCode, body)
}

// ValidateRequest checks an *http.Request body against the schema. The
// body is read and then restored.
func (v *Validator) ValidateRequest(req *http.Request) error {
	if req == nil || req.URL == nil {
		return configErrorf("cannot validate a nil request")
	}
	body, err := replaceBody(&req.Body)
	if err != nil {
		return err
	}
	return v.ValidateRequestBytes(req.URL.Path, req.Method, body)
}

func (v *Validator) compareBody(schema *openapi3.Schema, body []byte, root string) error {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return &ValidationError{
			Path:   root,
			Reason: "body is not JSON-formatted and cannot be checked against the documented schema",
		}
	}

	err := compare.Compare(schema, payload, root, compare.Options{
		KeyCheck: v.cfg.caseChecker.Check,
		KeyMap:   v.cfg.keyMap,
	})
	if err == nil {
		return nil
	}

	var m *compare.Mismatch
	if errors.As(err, &m) {
		return &ValidationError{Path: m.Path, Reason: m.Reason, Expected: m.Expected, Actual: m.Actual}
	}
	return err
}

// replaceBody drains a body and swaps in an equivalent re-readable one.
func replaceBody(body *io.ReadCloser) ([]byte, error) {
	if *body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(*body)
	if err != nil {
		return nil, configErrorf("could not read body for validation: %v", err)
	}
	_ = (*body).Close()
	*body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}
