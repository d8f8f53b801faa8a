// Package sanitize converts raw oracle text into a string a strict JSON
// parser can consume. Oracles wrap their answers in prose and markdown
// fences no matter how firmly the prompt forbids it; every known noise
// pattern handled here has been observed in live responses.
package sanitize

import (
	"encoding/json"
	"strings"

	"carspotter/internal/types"
)

// Sanitize extracts the JSON object embedded in raw oracle output.
// Steps, each a no-op when its pattern is absent:
//  1. trim surrounding whitespace
//  2. unwrap a leading markdown code fence (```json ... ```)
//  3. take the first balanced {...} span, string-aware
//  4. if that span is not valid JSON, repair the double-stringified quirk
//     (escaped newlines, escaped quotes, quotes hugging braces) and
//     re-extract
//
// Returns *types.SanitizationError when no balanced span exists.
func Sanitize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &types.SanitizationError{Reason: "empty response"}
	}

	candidate := trimmed
	if strings.HasPrefix(trimmed, "```") {
		if body, ok := stripFence(trimmed); ok {
			candidate = body
		}
	}

	span, ok := findJSONObject(candidate)
	if !ok {
		// Fence stripping may have eaten the object on malformed fences.
		span, ok = findJSONObject(trimmed)
	}
	if !ok {
		// A fully double-stringified answer ("{\"k\": ...}") hides its
		// braces inside a string literal; repair first, then rescan.
		span, ok = findJSONObject(repair(candidate))
	}
	if !ok {
		return "", &types.SanitizationError{Reason: "no JSON object in response"}
	}

	if json.Valid([]byte(span)) {
		return span, nil
	}

	repaired := repair(span)
	if again, ok := findJSONObject(repaired); ok && json.Valid([]byte(again)) {
		return again, nil
	}
	return repaired, nil
}

// stripFence removes an opening ``` marker (with optional language tag) and
// its closing fence, returning the body.
func stripFence(s string) (string, bool) {
	end := strings.Index(s[3:], "```")
	if end == -1 {
		return "", false
	}
	content := s[3 : 3+end]
	if idx := strings.Index(content, "\n"); idx != -1 {
		content = content[idx+1:]
	} else {
		// Single-line fence: drop a bare language tag like "json".
		content = strings.TrimPrefix(content, "json")
	}
	return strings.TrimSpace(content), true
}

// findJSONObject returns the first balanced top-level {...} span, tracking
// string literals so braces inside quoted values do not confuse the depth
// count.
func findJSONObject(input string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(input); i++ {
		ch := input[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				return input[start : i+1], true
			}
		}
	}
	return "", false
}

var repairer = strings.NewReplacer(
	`\n`, "",
	`\"`, `"`,
	`"{`, `{`,
	`}"`, `}`,
)

// repair undoes the double-stringification some oracle outputs apply to
// nested objects: literal \n sequences, escaped quotes, and quote characters
// wrapped around braces. Only invoked when the extracted span failed a
// strict parse, so well-formed content is never mangled.
func repair(s string) string {
	return repairer.Replace(s)
}
