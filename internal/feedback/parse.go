package feedback

import (
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type structuredPayload struct {
	Summary     string   `mapstructure:"summary"`
	Suggestions []string `mapstructure:"suggestions"`
	Headline    string   `mapstructure:"headline"`
}

// parseResponse turns a model answer into a Result. JSON objects with the
// expected keys become Structured, anything else PlainText.
func parseResponse(raw string) *Result {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return PlainText(raw)
	}

	var payload structuredPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &payload,
	})
	if err != nil {
		return PlainText(raw)
	}
	if err := decoder.Decode(data); err != nil {
		return PlainText(raw)
	}

	if payload.Summary == "" && payload.Headline == "" && len(payload.Suggestions) == 0 {
		return PlainText(raw)
	}

	return Structured(payload.Summary, payload.Suggestions, payload.Headline)
}

func extractJSON(raw string) string {
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
