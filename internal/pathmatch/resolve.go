// Package pathmatch maps concrete request paths to the templated path
// keys declared in an OpenAPI document.
package pathmatch

import (
	"sort"
	"strings"
)

// Resolve matches path against the templated keys, treating {param}
// segments as wildcards. Leading and trailing slashes on path are
// normalized away before matching. When several templates match, the one
// with the most literal segments wins, ties broken lexicographically.
//
// On failure it returns ok=false along with near-miss suggestions (best
// first, possibly empty).
func Resolve(path string, templates []string) (match string, suggestions []string, ok bool) {
	segs := splitPath(path)

	bestLiterals := -1
	for _, tmpl := range sortedCopy(templates) {
		tsegs := splitPath(tmpl)
		literals, matched := matchSegments(segs, tsegs)
		if matched && literals > bestLiterals {
			bestLiterals = literals
			match = tmpl
		}
	}
	if bestLiterals >= 0 {
		return match, nil, true
	}
	return "", Suggestions(path, templates), false
}

// matchSegments reports whether the concrete segments fit the template
// segments, and how many template segments matched literally.
func matchSegments(segs, tsegs []string) (literals int, ok bool) {
	if len(segs) != len(tsegs) {
		return 0, false
	}
	for i, ts := range tsegs {
		if isParam(ts) {
			continue
		}
		if ts != segs[i] {
			return 0, false
		}
		literals++
	}
	return literals, true
}

func isParam(seg string) bool {
	return len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}'
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

// suggestion list tuning. A normalized similarity below the cutoff is
// considered noise rather than a near miss.
const (
	maxSuggestions   = 3
	similarityCutoff = 0.6
)

// Suggestions returns up to maxSuggestions templates similar to path,
// ordered most similar first.
func Suggestions(path string, templates []string) []string {
	path = "/" + strings.Trim(path, "/")

	type scored struct {
		tmpl  string
		score float64
	}
	var candidates []scored
	for _, tmpl := range sortedCopy(templates) {
		s := similarity(path, "/"+strings.Trim(tmpl, "/"))
		if s >= similarityCutoff {
			candidates = append(candidates, scored{tmpl: tmpl, score: s})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	var out []string
	for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
		out = append(out, candidates[i].tmpl)
	}
	return out
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes the edit distance between two strings with the
// usual two-row dynamic program.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
