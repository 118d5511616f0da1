package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencePattern matches a markdown code fence, optionally tagged json, and
// captures its interior lazily.
var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ExtractJSON recovers a JSON payload from model output. It never fails: when
// no payload can be located it returns the trimmed input and leaves the
// parse failure to the caller.
//
// Input that is already valid JSON is returned unchanged. Otherwise the
// interior of the first code fence wins, then the first balanced object or
// array (brackets inside string literals do not count toward nesting).
func ExtractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if json.Valid([]byte(trimmed)) {
		return trimmed
	}

	if m := fencePattern.FindStringSubmatch(trimmed); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}

	if s, ok := balancedSpan(trimmed); ok {
		return s
	}
	return trimmed
}

// balancedSpan returns the span from the first '[' or '{' to the bracket
// that brings nesting depth back to zero.
func balancedSpan(s string) (string, bool) {
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
