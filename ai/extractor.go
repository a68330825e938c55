package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Extraction cascade for raw model output. Models wrap JSON in prose, fences,
// or nothing at all, so we try a fenced block first, then the first bracketed
// span, then the whole text. Strict parsing runs over every candidate before
// any lenient stage, so a throwaway fragment in prose cannot be "repaired"
// ahead of a valid payload. A miss is reported via ok, never an error, so
// callers always have a fallback path.

var (
	fencedJSONRe  = regexp.MustCompile("```json\\n([\\s\\S]*?)\\n```")
	fencedPlainRe = regexp.MustCompile("```\\n([\\s\\S]*?)\\n```")
)

// Extract locates and parses a JSON payload inside raw model output. The
// second return value reports whether any stage succeeded.
func Extract(raw string) (interface{}, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}

	candidates := make([]string, 0, 4)
	if m := fencedJSONRe.FindStringSubmatch(trimmed); m != nil {
		candidates = append(candidates, m[1])
	}
	if m := fencedPlainRe.FindStringSubmatch(trimmed); m != nil {
		candidates = append(candidates, m[1])
	}
	if span := bracketedSpan(trimmed); span != "" {
		candidates = append(candidates, span)
	}
	candidates = append(candidates, trimmed)

	for _, candidate := range candidates {
		if value, ok := parseStrict(candidate); ok {
			return value, true
		}
	}
	for _, candidate := range candidates {
		if value, ok := parseLenient(candidate); ok {
			return value, true
		}
	}
	return nil, false
}

// bracketedSpan returns the span starting at the first opening bracket and
// ending at the last matching close of the same kind. Greedy on purpose: an
// object whose fields hold arrays must come out as the object, not as its
// first inner array.
func bracketedSpan(s string) string {
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")

	start, closing := objStart, "}"
	if objStart < 0 || (arrStart >= 0 && arrStart < objStart) {
		start, closing = arrStart, "]"
	}
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(s, closing)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

// parseStrict attempts one candidate span as-is, then with BOM and control
// characters stripped.
func parseStrict(candidate string) (interface{}, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, false
	}

	var value interface{}
	if err := json.Unmarshal([]byte(candidate), &value); err == nil {
		return value, true
	}

	cleaned := stripControlCharacters(candidate)
	if cleaned != candidate {
		if err := json.Unmarshal([]byte(cleaned), &value); err == nil {
			return value, true
		}
	}
	return nil, false
}

// parseLenient runs the repair and hjson stages on one candidate span.
// Lenient parsers happily turn prose into a bare string, which would mask
// the text-heuristic fallback, so only structured results count here.
func parseLenient(candidate string) (interface{}, bool) {
	cleaned := stripControlCharacters(strings.TrimSpace(candidate))
	if cleaned == "" {
		return nil, false
	}

	var value interface{}
	if repaired, err := jsonrepair.RepairJSON(cleaned); err == nil {
		if err := json.Unmarshal([]byte(repaired), &value); err == nil {
			if isStructured(value) {
				return value, true
			}
		}
	}

	if err := hjson.Unmarshal([]byte(cleaned), &value); err == nil {
		if isStructured(value) {
			return value, true
		}
	}

	return nil, false
}

// stripControlCharacters removes BOMs and C0/C1 controls that corrupt model
// output, keeping tab, newline, and carriage return.
func stripControlCharacters(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return r
		}
		if r < 0x20 || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, s)
}

func isStructured(v interface{}) bool {
	switch t := v.(type) {
	case map[string]interface{}:
		return len(t) > 0
	case []interface{}:
		return len(t) > 0
	}
	return false
}
