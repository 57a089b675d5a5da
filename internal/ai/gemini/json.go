package gemini

import (
	"encoding/json"
	"strings"
)

// ExtractJSON strips a surrounding Markdown code fence (``` or ```json) from
// model output. Text without fences comes back unchanged apart from
// whitespace trimming, so the call is idempotent.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// DecodeJSON strips fences from raw model output and unmarshals it into v.
// Parse failures come back as *InvalidJSONError carrying a truncated copy of
// the raw text.
func DecodeJSON(raw string, v any) error {
	cleaned := ExtractJSON(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		preview := raw
		if len(preview) > rawPreviewLimit {
			preview = preview[:rawPreviewLimit]
		}
		return &InvalidJSONError{Raw: preview, Err: err}
	}
	return nil
}
