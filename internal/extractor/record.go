package extractor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is the terminal artifact of a pipeline run: a mapping conforming to
// the target schema (fields are always a subset of the declared fields, and
// never hold null — absence encodes "unknown"), plus token accounting.
type Record struct {
	Fields           map[string]any `json:"fields"`
	Model            string         `json:"model,omitempty"`
	PromptTokens     int            `json:"promptTokens"`
	CompletionTokens int            `json:"completionTokens"`
	// BestEffort marks a vision-path record that did not pass full schema
	// validation but is returned anyway.
	BestEffort bool `json:"bestEffort,omitempty"`
}

// parseJSONObject decodes model output into a map, tolerating markdown code
// fences around the payload.
func parseJSONObject(content string) (map[string]any, error) {
	cleaned := stripCodeFences(content)
	var m map[string]any
	if err := json.Unmarshal([]byte(cleaned), &m); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	return m, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:] // drop the fence language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
