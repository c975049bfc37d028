// Package casing provides JSON key naming-convention predicates and the
// whitelist-aware checker used during schema validation.
package casing

import (
	"fmt"
	"strings"
)

// Convention is a named naming rule a JSON key either satisfies or not.
// Pick one of the package variables or look one up with FromName; the
// zero value accepts every key.
type Convention struct {
	name  string
	valid func(string) bool
}

func (c Convention) Name() string { return c.name }

// Valid reports whether key satisfies the convention. Empty keys are
// always invalid except under None.
func (c Convention) Valid(key string) bool {
	if c.valid == nil {
		return true
	}
	return c.valid(key)
}

var (
	SnakeCase  = Convention{name: "snake_case", valid: isSnake}
	CamelCase  = Convention{name: "camelCase", valid: isCamel}
	PascalCase = Convention{name: "PascalCase", valid: isPascal}
	KebabCase  = Convention{name: "kebab-case", valid: isKebab}

	// None skips case validation entirely.
	None = Convention{name: "none", valid: nil}
)

// FromName resolves a convention by its configuration name. Both the
// display names ("snake_case") and a few spellings seen in config files
// ("snake", "camel_case") are accepted.
func FromName(name string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "snake_case", "snake case", "snake":
		return SnakeCase, nil
	case "camelcase", "camel_case", "camel case", "camel":
		return CamelCase, nil
	case "pascalcase", "pascal_case", "pascal case", "pascal":
		return PascalCase, nil
	case "kebab-case", "kebab_case", "kebab case", "kebab":
		return KebabCase, nil
	case "", "none":
		return None, nil
	}
	return Convention{}, fmt.Errorf("`%s` is not a valid case convention. Should be one of: snake_case, camelCase, PascalCase, kebab-case, none", name)
}

type runeCategory int

const (
	catOther runeCategory = iota
	catLower
	catUpper
	catDigit
)

func categorize(r rune) runeCategory {
	switch {
	case r >= 'a' && r <= 'z':
		return catLower
	case r >= 'A' && r <= 'Z':
		return catUpper
	case r >= '0' && r <= '9':
		return catDigit
	default:
		return catOther
	}
}

func isSnake(s string) bool {
	return isSeparated(s, '_')
}

func isKebab(s string) bool {
	return isSeparated(s, '-')
}

// isSeparated accepts lowercase words of letters and digits joined by a
// single sep, with no leading, trailing, or doubled separators.
func isSeparated(s string, sep rune) bool {
	if s == "" {
		return false
	}
	prevSep := true // a separator at position 0 is invalid
	for _, r := range s {
		if r == sep {
			if prevSep {
				return false
			}
			prevSep = true
			continue
		}
		switch categorize(r) {
		case catLower, catDigit:
			prevSep = false
		default:
			return false
		}
	}
	return !prevSep
}

func isCamel(s string) bool {
	return isHump(s, false)
}

func isPascal(s string) bool {
	return isHump(s, true)
}

// isHump accepts letter/digit keys with no separators. The first letter
// must be uppercase for PascalCase, lowercase for camelCase. Runs of
// consecutive uppercase letters (HTTPServer) are rejected; acronyms are
// expected to be cased as words (httpServer, HttpServer).
func isHump(s string, upperFirst bool) bool {
	if s == "" {
		return false
	}
	prevCat := catOther
	for i, r := range s {
		cat := categorize(r)
		switch cat {
		case catLower, catDigit:
		case catUpper:
			if i == 0 && !upperFirst {
				return false
			}
			if prevCat == catUpper {
				return false
			}
		default:
			return false
		}
		if i == 0 && upperFirst && cat != catUpper {
			return false
		}
		prevCat = cat
	}
	return true
}

// ToCamel converts a snake_case or kebab-case key to camelCase. Keys
// without separators are returned with the first rune lowered.
func ToCamel(s string) string {
	parts := splitWords(s)
	if len(parts) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i, p := range parts {
		if i == 0 {
			b.WriteString(strings.ToLower(p[:1]) + p[1:])
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}

// ToSnake converts a camelCase, PascalCase, or kebab-case key to
// snake_case.
func ToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	prevCat := catOther
	for i, r := range s {
		cat := categorize(r)
		switch cat {
		case catUpper:
			if i > 0 && (prevCat == catLower || prevCat == catDigit) {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		case catLower, catDigit:
			b.WriteRune(r)
		default:
			if i > 0 && prevCat != catOther {
				b.WriteByte('_')
			}
		}
		prevCat = cat
	}
	return strings.Trim(b.String(), "_")
}

func splitWords(s string) []string {
	var out []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' }) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
