// Package planparse recovers and validates structured plans from raw
// language model output.
//
// Model output is rarely clean JSON: it arrives fenced in Markdown,
// wrapped in prose, or carrying Python literals and trailing commas.
// The parser runs a staged, increasingly permissive repair chain and
// stops at the first stage that yields valid JSON. Every failed stage
// is recorded, even when a later stage succeeds, so callers can observe
// how far from conforming the output was.
package planparse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// stage is one step of the repair chain: a label for error reporting
// and a transform applied to the working text before reattempting a
// parse.
type stage struct {
	label     string
	transform func(string) (string, error)
}

// stages is the ordered repair chain. Order matters: each transform
// operates on the output of the previous one, so later stages see
// progressively cleaner text.
var stages = []stage{
	{"direct", func(s string) (string, error) { return s, nil }},
	{"fenced", stripFences},
	{"balanced", extractBalanced},
	{"quotes", normaliseQuotes},
	{"trailing_commas", stripTrailingCommas},
	{"python_literals", replacePythonLiterals},
}

// Parse attempts to recover a JSON object from raw model output.
// It returns the decoded object, the labelled errors of every failed
// stage, and whether any stage succeeded. The error list is non-empty
// whenever the direct parse failed, even on eventual success.
func Parse(raw string) (map[string]any, []string, bool) {
	var errs []string
	working := raw

	for _, st := range stages {
		transformed, err := st.transform(working)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", st.label, err))
			continue
		}
		working = transformed

		var obj map[string]any
		if err := json.Unmarshal([]byte(working), &obj); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", st.label, err))
			continue
		}
		return obj, errs, true
	}

	return nil, errs, false
}

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(.*?)```")

// stripFences removes Markdown code fences, keeping the fenced body.
func stripFences(s string) (string, error) {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	// No closing fence: drop a lone opening fence line if present.
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "```") {
		if _, rest, ok := strings.Cut(trimmed, "\n"); ok {
			return strings.TrimSpace(rest), nil
		}
	}
	return trimmed, nil
}

// extractBalanced returns the first balanced {...} substring. Braces
// inside quoted strings are ignored by tracking string-literal state
// and escape sequences.
func extractBalanced(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no object start found")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// Braces inside string literals do not count.
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced braces")
}

var curlyQuoteReplacer = strings.NewReplacer(
	"“", `"`, // left double
	"”", `"`, // right double
	"‘", "'", // left single
	"’", "'", // right single
)

// normaliseQuotes replaces curly quotes with straight quotes.
func normaliseQuotes(s string) (string, error) {
	return curlyQuoteReplacer.Replace(s), nil
}

var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// stripTrailingCommas removes commas immediately preceding a closing
// brace or bracket.
func stripTrailingCommas(s string) (string, error) {
	return trailingCommaPattern.ReplaceAllString(s, "$1"), nil
}

var pythonLiteralPattern = regexp.MustCompile(`\b(True|False|None)\b`)

// replacePythonLiterals maps bare Python literals to their JSON
// counterparts.
func replacePythonLiterals(s string) (string, error) {
	return pythonLiteralPattern.ReplaceAllStringFunc(s, func(tok string) string {
		switch tok {
		case "True":
			return "true"
		case "False":
			return "false"
		default:
			return "null"
		}
	}), nil
}
