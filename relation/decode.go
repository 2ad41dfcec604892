package relation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// payload is the strict response schema expected from the model. It is
// decoded exactly once at this boundary; the rest of the pipeline never
// sees maybe-JSON values.
type payload struct {
	Relations  []relationPayload `json:"relations"`
	Confidence float64           `json:"confidence"`
}

type relationPayload struct {
	Subject    string             `json:"subject"`
	Action     string             `json:"action"`
	Object     string             `json:"object"`
	Conditions []conditionPayload `json:"conditions"`
	Confidence float64            `json:"confidence"`
	Reasoning  string             `json:"reasoning"`
}

type conditionPayload struct {
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

// DecodeError reports a model response that could not be decoded into the
// expected schema. It keeps the raw text for diagnostics.
type DecodeError struct {
	Reason string
	Raw    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("model response decode failed: %s", e.Reason)
}

// decodePayload extracts and decodes the JSON object from raw model text.
// Models wrap JSON in markdown fences or surround it with prose, so the
// candidate object is located first: fenced block if present, otherwise
// the span from the first '{' to the last '}'.
func decodePayload(raw string) (*payload, error) {
	candidate := extractJSON(raw)
	if candidate == "" {
		return nil, &DecodeError{Reason: "no JSON object found", Raw: raw}
	}

	var p payload
	if err := json.Unmarshal([]byte(candidate), &p); err != nil {
		return nil, &DecodeError{Reason: err.Error(), Raw: raw}
	}
	if p.Relations == nil {
		return nil, &DecodeError{Reason: "missing relations array", Raw: raw}
	}
	return &p, nil
}

// extractJSON locates the JSON object inside raw model output.
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			text = strings.TrimSpace(rest[:end])
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}
