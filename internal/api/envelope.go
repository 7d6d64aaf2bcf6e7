package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/smart-expense-tracker/internal/model"
)

// Envelope is the uniform wrapper of every API response.
type Envelope[T any] struct {
	Data    *T                 `json:"data,omitempty"`
	Message string             `json:"message"`
	Errors  []model.FieldError `json:"errors,omitempty"`
	Success bool               `json:"success"`
}

// FieldErrors groups validation messages by field.
func (e *Envelope[T]) FieldErrors() map[string][]string {
	return model.GroupFieldErrors(e.Errors)
}

// validator is implemented by payloads that check their own required fields.
type validator interface {
	Validate() error
}

// rawEnvelope mirrors Envelope with presence tracking for schema checks.
type rawEnvelope struct {
	Success *bool              `json:"success"`
	Message *string            `json:"message"`
	Data    json.RawMessage    `json:"data"`
	Errors  []model.FieldError `json:"errors"`
}

var errMissingData = errors.New("response has no data")

// parseEnvelope validates body against the envelope schema. It does not
// look at the HTTP status.
func parseEnvelope(body []byte) (rawEnvelope, error) {
	var raw rawEnvelope
	if len(bytes.TrimSpace(body)) == 0 {
		return raw, errors.New("empty response body")
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return raw, fmt.Errorf("invalid envelope: %w", err)
	}
	if raw.Success == nil {
		return raw, errors.New("invalid envelope: missing success flag")
	}
	for i, fe := range raw.Errors {
		if fe.Message == "" {
			return raw, fmt.Errorf("invalid envelope: errors[%d] has no message", i)
		}
	}
	return raw, nil
}

// decodeData decodes and validates the data member into T.
func decodeData[T any](raw json.RawMessage, required bool) (*T, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if required {
			return nil, errMissingData
		}
		return nil, nil
	}

	data := new(T)
	if _, ok := any(data).(*struct{}); ok {
		// Operations without a payload ignore whatever the server sends.
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	if v, ok := any(data).(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("invalid data: %w", err)
		}
	}
	return data, nil
}

// unwrapMember decodes data[key] into target when data is an object that has
// that key, and data itself otherwise. The API is not consistent about
// wrapping single resources.
func unwrapMember(data []byte, key string, target any) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err == nil {
		if inner, ok := obj[key]; ok {
			return json.Unmarshal(inner, target)
		}
	}
	return json.Unmarshal(data, target)
}
