// Package codec converts between the platform's camelCase wire format and
// the snake_case names used by the query and result model.
package codec

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	snakeFirst  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	snakeSecond = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// ToSnake converts a camelCase name to snake_case: "totalNumHits" becomes
// "total_num_hits" and "HTTPResponse" becomes "http_response".
func ToSnake(name string) string {
	s := snakeFirst.ReplaceAllString(name, "${1}_${2}")
	s = snakeSecond.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// ToCamel converts a snake_case name to camelCase. The first component is
// kept as is; each following component is title-cased.
func ToCamel(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	b.Grow(len(name))
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		b.WriteString(title(p))
	}
	return b.String()
}

// title upper-cases the first letter of every run of letters and
// lower-cases the rest.
func title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if prevLetter {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}

// KeysToSnake rewrites every object key in v, recursively, with ToSnake.
func KeysToSnake(v any) any { return mapKeys(v, ToSnake) }

// KeysToCamel rewrites every object key in v, recursively, with ToCamel.
func KeysToCamel(v any) any { return mapKeys(v, ToCamel) }

func mapKeys(v any, conv func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[conv(k)] = mapKeys(val, conv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = mapKeys(val, conv)
		}
		return out
	default:
		return v
	}
}
