package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"educraft-session-service/internal/domain"
)

// ExtractJSON returns the outermost {...} span of model output, which is
// often wrapped in prose or code fences.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no json object in output", domain.ErrMalformedContent)
	}
	return text[start : end+1], nil
}

// DecodeJSON extracts and decodes a JSON object from model output into v.
func DecodeJSON(text string, v any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedContent, err)
	}
	return nil
}

// ParseQuestion decodes and validates a question from model output.
func ParseQuestion(text string) (domain.Question, error) {
	var q domain.Question
	// correct_index missing would decode as 0; require it explicitly.
	var probe struct {
		CorrectIndex *int `json:"correct_index"`
	}
	if err := DecodeJSON(text, &probe); err != nil {
		return domain.Question{}, err
	}
	if probe.CorrectIndex == nil {
		return domain.Question{}, fmt.Errorf("%w: missing correct_index", domain.ErrMalformedContent)
	}
	if err := DecodeJSON(text, &q); err != nil {
		return domain.Question{}, err
	}
	if err := q.Validate(); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}
