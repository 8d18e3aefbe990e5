package submit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Result is a settled submission outcome.
type Result struct {
	Success bool
	// Message is data.message on success, or the failure data joined with a
	// single space.
	Message string
}

var errNotEnvelope = errors.New("submit: response is not a {success,data} envelope")

type envelope struct {
	Success *bool `json:"success"`
	Data    any   `json:"data"`
}

func decodeResult(body []byte) (Result, error) {
	var env envelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return Result{}, fmt.Errorf("submit: decode response: %w", err)
	}
	if env.Success == nil {
		return Result{}, errNotEnvelope
	}
	result := Result{Success: *env.Success}
	if result.Success {
		result.Message = successMessage(env.Data)
	} else {
		result.Message = failureMessage(env.Data)
	}
	return result, nil
}

func successMessage(data any) string {
	switch v := data.(type) {
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	case string:
		return v
	}
	return ""
}

func failureMessage(data any) string {
	switch v := data.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			} else if item != nil {
				parts = append(parts, fmt.Sprint(item))
			}
		}
		return strings.Join(parts, " ")
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return ""
}
