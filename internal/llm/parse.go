package llm

import (
	"encoding/json"
	"strings"
)

// StripFences removes a ```json ... ``` (or bare ```) wrapper from model
// output so the payload can be unmarshaled directly.
func StripFences(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```json")
		t = strings.TrimPrefix(t, "```")
		if i := strings.LastIndex(t, "```"); i >= 0 {
			t = t[:i]
		}
		t = strings.TrimSpace(t)
	}
	return t
}

// UnmarshalLoose parses model output into v: direct unmarshal first, then a
// brace-scan for the first {...} substring. Returns false when no JSON object
// could be recovered.
func UnmarshalLoose(s string, v any) bool {
	t := StripFences(s)
	if strings.HasPrefix(t, "{") {
		if err := json.Unmarshal([]byte(t), v); err == nil {
			return true
		}
	}
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(t[start:end+1]), v); err == nil {
			return true
		}
	}
	return false
}
