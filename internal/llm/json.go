package llm

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	bareObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON returns the JSON object embedded in model output: the body of
// a fenced code block if present, else the outermost {...} span, else the
// text itself
func ExtractJSON(text string) string {
	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil && strings.HasPrefix(strings.TrimSpace(m[1]), "{") {
		return m[1]
	}
	if m := bareObjectPattern.FindString(text); m != "" {
		return m
	}
	return strings.TrimSpace(text)
}

// record is an untyped JSON object read field by field. Every accessor
// substitutes a zero default when the field is missing or has the wrong type.
type record map[string]any

func parseRecord(text string) (record, error) {
	var r record
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &r); err != nil {
		return nil, err
	}
	if r == nil {
		r = record{}
	}
	return r, nil
}

func (r record) boolean(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

func (r record) number(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "%"), 64)
		return f
	default:
		return 0
	}
}

// percent reads a 0-100 integer, clamping out-of-range values
func (r record) percent(key string) int {
	f := r.number(key)
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

func (r record) text(key string) string {
	if s, ok := r[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func (r record) list(key string) []string {
	items, ok := r[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func (r record) objects(key string) []record {
	items, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, record(m))
		}
	}
	return out
}
