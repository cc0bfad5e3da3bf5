package utils

import (
	"errors"
	"strings"
)

var ErrNoJSONObject = errors.New("no JSON object found in text")

// ExtractJSONObject returns the first balanced JSON object embedded in free
// text. LLM output often wraps the payload in code fences or surrounds it
// with prose; this strips fences, then scans from the first '{' tracking
// string/escape state until the braces balance. If the text ends before the
// object closes (truncated response), it falls back to slicing at the last
// '}' so a best-effort parse can still be attempted.
func ExtractJSONObject(s string) (string, error) {
	s = stripCodeFences(s)

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	// Unbalanced: best effort up to the last closing brace.
	end := strings.LastIndexByte(s, '}')
	if end <= start {
		return "", ErrNoJSONObject
	}
	return s[start : end+1], nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop a language tag like "json" on the fence line
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if len(first) <= 10 && !strings.ContainsAny(first, "{}") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
