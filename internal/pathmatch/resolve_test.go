package pathmatch

import "testing"

var templates = []string{
	"/api/v1/cars/correct/",
	"/api/v1/trucks/correct/",
	"/api/v1/cars/incorrect/",
	"/api/v1/trucks/incorrect/",
	"/api/v1/{vehicle_type}/correct/",
	"/api/v1/vehicles/{id}/",
}

func TestResolveExactPaths(t *testing.T) {
	for _, tmpl := range []string{
		"/api/v1/cars/correct/",
		"/api/v1/trucks/correct/",
		"/api/v1/cars/incorrect/",
		"/api/v1/trucks/incorrect/",
	} {
		variants := []string{
			tmpl,
			tmpl[1:],              // missing leading slash
			tmpl[:len(tmpl)-1],    // missing trailing slash
			tmpl[1 : len(tmpl)-1], // missing both
		}
		for _, path := range variants {
			got, _, ok := Resolve(path, templates)
			if !ok {
				t.Fatalf("Resolve(%q) failed, want %q", path, tmpl)
			}
			if got != tmpl {
				t.Fatalf("Resolve(%q) = %q, want %q", path, got, tmpl)
			}
		}
	}
}

func TestResolvePrefersLiteralOverParam(t *testing.T) {
	// /api/v1/cars/correct/ matches both its own template and
	// /api/v1/{vehicle_type}/correct/; the literal one must win.
	got, _, ok := Resolve("/api/v1/cars/correct/", templates)
	if !ok || got != "/api/v1/cars/correct/" {
		t.Fatalf("Resolve = %q ok=%v, want the literal template", got, ok)
	}

	got, _, ok = Resolve("/api/v1/boats/correct/", templates)
	if !ok || got != "/api/v1/{vehicle_type}/correct/" {
		t.Fatalf("Resolve = %q ok=%v, want the templated match", got, ok)
	}
}

func TestResolveParamSegment(t *testing.T) {
	got, _, ok := Resolve("/api/v1/vehicles/42/", templates)
	if !ok || got != "/api/v1/vehicles/{id}/" {
		t.Fatalf("Resolve = %q ok=%v, want /api/v1/vehicles/{id}/", got, ok)
	}
}

func TestResolveNearMissSuggests(t *testing.T) {
	// The typo is in the literal last segment, so not even the
	// {vehicle_type} template matches.
	_, suggestions, ok := Resolve("/api/v1/trucks/corect/", templates)
	if ok {
		t.Fatal("expected resolution to fail")
	}
	if len(suggestions) == 0 {
		t.Fatal("expected suggestions for a near miss")
	}
	found := false
	for _, s := range suggestions {
		if s == "/api/v1/trucks/correct/" {
			found = true
		}
	}
	if !found {
		t.Fatalf("suggestions %v do not include /api/v1/trucks/correct/", suggestions)
	}
}

func TestResolveUnrelatedPathNoSuggestions(t *testing.T) {
	_, suggestions, ok := Resolve("this is not a path", templates)
	if ok {
		t.Fatal("expected resolution to fail")
	}
	if len(suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %v", suggestions)
	}
}

func TestSuggestionsAreCapped(t *testing.T) {
	got := Suggestions("/api/v1/cars/corect/", templates)
	if len(got) > maxSuggestions {
		t.Fatalf("got %d suggestions, cap is %d", len(got), maxSuggestions)
	}
	if len(got) == 0 || got[0] != "/api/v1/cars/correct/" {
		t.Fatalf("best suggestion should be the closest template, got %v", got)
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"trucks", "truck", 1},
		{"same", "same", 0},
	}
	for _, tc := range cases {
		if got := levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
