package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const vehiclesSchema = "../../testdata/vehicles-openapi.yaml"

func newTestRoot(t *testing.T) (*bytes.Buffer, *bytes.Buffer, func(args ...string) error) {
	t.Helper()

	root := NewRootCmd()
	var out bytes.Buffer
	var errBuf bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errBuf)

	run := func(args ...string) error {
		root.SetArgs(args)
		return root.Execute()
	}
	return &out, &errBuf, run
}

func TestValidateConformingPayload(t *testing.T) {
	out, errBuf, run := newTestRoot(t)
	err := run("validate",
		"--schema", vehiclesSchema,
		"--path", "/api/v1/vehicles/42/",
		"--data", `{"name": "T-1", "vehicle_type": "truck"}`,
	)
	if err != nil {
		t.Fatalf("execute: %v (stderr=%s)", err, errBuf.String())
	}
	if !strings.Contains(out.String(), "ok") {
		t.Fatalf("expected ok output, got %q", out.String())
	}
}

func TestValidateNonConformingPayloadFails(t *testing.T) {
	_, _, run := newTestRoot(t)
	err := run("validate",
		"--schema", vehiclesSchema,
		"--path", "/api/v1/vehicles/42/",
		"--data", `{"name": "T-1"}`,
	)
	if err == nil {
		t.Fatal("expected a non-zero result for a non-conforming payload")
	}
	if !strings.Contains(err.Error(), "vehicle_type") {
		t.Fatalf("error should name the missing key, got %v", err)
	}
}

func TestValidateJSONOutput(t *testing.T) {
	out, _, run := newTestRoot(t)
	err := run("--json", "validate",
		"--schema", vehiclesSchema,
		"--path", "/api/v1/vehicles/42/",
		"--data", `{"name": "T-1"}`,
	)
	if err == nil {
		t.Fatal("expected a non-zero result")
	}
	if !strings.Contains(out.String(), `"path"`) || !strings.Contains(out.String(), "vehicle_type") {
		t.Fatalf("expected a JSON mismatch on stdout, got %q", out.String())
	}
}

func TestValidatePayloadFromFile(t *testing.T) {
	payload := filepath.Join(t.TempDir(), "payload.json")
	if err := os.WriteFile(payload, []byte(`{"name": "T-1", "vehicle_type": "car"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, errBuf, run := newTestRoot(t)
	err := run("validate",
		"--schema", vehiclesSchema,
		"--path", "/api/v1/vehicles/42/",
		"--data", "@"+payload,
	)
	if err != nil {
		t.Fatalf("execute: %v (stderr=%s)", err, errBuf.String())
	}
}

func TestValidateRequestBody(t *testing.T) {
	_, _, run := newTestRoot(t)
	err := run("validate",
		"--schema", vehiclesSchema,
		"--path", "/api/v1/vehicles/",
		"--method", "POST",
		"--request",
		"--data", `{"name": "T-1", "vehicle_type": "truck"}`,
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	err = run("validate",
		"--schema", vehiclesSchema,
		"--path", "/api/v1/vehicles/",
		"--method", "POST",
		"--request",
		"--data", `{"name": "T-1"}`,
	)
	if err == nil {
		t.Fatal("expected a non-zero result for a non-conforming request body")
	}
}

func TestValidateUnresolvablePathSuggests(t *testing.T) {
	_, _, run := newTestRoot(t)
	err := run("validate",
		"--schema", vehiclesSchema,
		"--path", "/api/v1/veicles/",
		"--data", `{}`,
	)
	if err == nil {
		t.Fatal("expected a non-zero result for an unresolvable path")
	}
	if !strings.Contains(err.Error(), "Did you mean one of these") {
		t.Fatalf("expected suggestions, got %v", err)
	}
}

func TestValidateRequiresSchema(t *testing.T) {
	_, _, run := newTestRoot(t)
	err := run("validate", "--path", "/api/v1/vehicles/", "--data", `{}`)
	if err == nil || !strings.Contains(err.Error(), "no schema specified") {
		t.Fatalf("expected a missing-schema error, got %v", err)
	}
}

func TestSpecList(t *testing.T) {
	out, errBuf, run := newTestRoot(t)
	err := run("spec", "list", "--schema", vehiclesSchema)
	if err != nil {
		t.Fatalf("execute: %v (stderr=%s)", err, errBuf.String())
	}
	for _, want := range []string{
		"GET     /api/v1/vehicles/",
		"POST    /api/v1/vehicles/",
		"GET     /api/v1/vehicles/{id}/",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("spec list output missing %q:\n%s", want, out.String())
		}
	}
}

func TestSpecVerify(t *testing.T) {
	out, errBuf, run := newTestRoot(t)
	err := run("spec", "verify", "--schema", vehiclesSchema)
	if err != nil {
		t.Fatalf("execute: %v (stderr=%s)", err, errBuf.String())
	}
	if !strings.Contains(out.String(), "ok") {
		t.Fatalf("expected ok, got %q", out.String())
	}
}

func TestValidateWithConfigFile(t *testing.T) {
	// The config file references the schema relative to the module
	// root, so write a copy pointing at an absolute path.
	schema, err := filepath.Abs(vehiclesSchema)
	if err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(t.TempDir(), "oasguard.yaml")
	cfg := "schema: " + schema + "\ncase_convention: snake_case\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	_, errBuf, run := newTestRoot(t)
	err = run("validate",
		"--config", cfgPath,
		"--path", "/api/v1/vehicles/42/",
		"--data", `{"name": "T-1", "vehicle_type": "car"}`,
	)
	if err != nil {
		t.Fatalf("execute: %v (stderr=%s)", err, errBuf.String())
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, run := newTestRoot(t)
	if err := run("version"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Fatal("expected version output")
	}
}
