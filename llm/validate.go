package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance used across the package.
var validate = validator.New()

// Validate checks s against its `validate` struct tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// DecodeStructured parses a JSON reply into out and validates the result.
// A reply wrapped in a markdown code fence is unwrapped first.
//
// Example:
//
//	type verdict struct {
//	    Answer string `json:"answer" validate:"required,oneof=yes no"`
//	}
//
//	var v verdict
//	err := DecodeStructured(`{"answer": "yes"}`, &v)
func DecodeStructured(reply string, out any) error {
	text := unfence(strings.TrimSpace(reply))
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}
	if err := Validate(out); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}

func unfence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	// Drop the opening fence line, which may carry a language tag.
	_, body, ok := strings.Cut(text, "\n")
	if !ok {
		return text
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(body), "```"))
}
