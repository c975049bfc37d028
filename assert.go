package oasguard

import "net/http"

// TestingT is the subset of *testing.T the assertion helpers need.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

// AssertResponse fails the test when resp does not conform to the
// documented schema. Intended for responses produced by httptest
// servers or an http.Client in test suites:
//
//	resp, _ := client.Get(srv.URL + "/api/v1/trucks/correct/")
//	oasguard.AssertResponse(t, validator, resp)
//
// The response body is restored after reading, so it can still be
// consumed by the test.
func AssertResponse(t TestingT, v *Validator, resp *http.Response) {
	t.Helper()
	if err := v.ValidateResponse(resp); err != nil {
		t.Fatalf("response validation failed: %v", err)
	}
}

// AssertRequest is the request body counterpart of AssertResponse.
func AssertRequest(t TestingT, v *Validator, req *http.Request) {
	t.Helper()
	if err := v.ValidateRequest(req); err != nil {
		t.Fatalf("request validation failed: %v", err)
	}
}
