package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Schema is a task output shape: a JSON-taggable struct with ozzo
// validation rules and a Trim that bounds over-long arrays to the schema's
// declared maxima instead of rejecting otherwise-valid output.
type Schema interface {
	Validate() error
	Trim()
}

// decodeInto parses raw model output into the schema. Free-text responses
// are stripped of surrounding code fences first; validation failure is the
// caller's MalformedOutput, distinct from transport errors.
func decodeInto(raw string, out Schema) error {
	cleaned := strings.TrimSpace(stripCodeFences(raw))
	if cleaned == "" {
		return fmt.Errorf("empty response")
	}

	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if err := out.Validate(); err != nil {
		return fmt.Errorf("validate response: %w", err)
	}

	out.Trim()
	return nil
}

// stripCodeFences removes a surrounding markdown code fence, with or
// without a language tag, from a free-text model response.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop the language tag on the opening fence line.
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "" || isLanguageTag(firstLine) {
			trimmed = trimmed[idx+1:]
		}
	}

	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(s) <= 12
}
