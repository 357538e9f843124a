package ai

import (
	"regexp"
	"strings"
)

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		} else {
			s = strings.TrimLeft(s, "`")
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// findFirstJSON returns the first balanced {...} or [...] in s, ignoring
// brackets inside string literals.
func findFirstJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return ""
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
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

var (
	boldMarkers   = regexp.MustCompile(`\*\*|__`)
	headingPrefix = regexp.MustCompile(`(?m)^\s*#+\s*`)
	starBullet    = regexp.MustCompile(`(?m)^(\s*)[*•]\s+`)
)

// cleanSummary removes markdown markers the model sometimes emits despite
// the prompt, keeping one hyphen bullet per line.
func cleanSummary(s string) string {
	s = stripCodeFences(s)
	s = boldMarkers.ReplaceAllString(s, "")
	s = headingPrefix.ReplaceAllString(s, "")
	s = starBullet.ReplaceAllString(s, "$1- ")

	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
