package validation

import (
	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// chatRequestSchema is the JSON schema for the POST /api/chat/message body.
var chatRequestSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"message"},
	"properties": map[string]interface{}{
		"message": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 2000,
		},
		"sessionId": map[string]interface{}{
			"type": "string",
		},
		"userId": map[string]interface{}{
			"type": "string",
		},
		"currentPage": map[string]interface{}{
			"type": "string",
		},
		"systemContext": map[string]interface{}{
			"type": "object",
		},
		"userPreferences": map[string]interface{}{
			"type": "object",
		},
	},
	"additionalProperties": false,
}

// ValidateChatRequest checks a decoded request body against the chat
// message schema.
func ValidateChatRequest(body map[string]interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(chatRequestSchema)
	documentLoader := gojsonschema.NewGoLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, err
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}, nil
	}

	out := &ValidationResult{Valid: false}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return out, nil
}

// GetErrorMessages flattens validation errors into printable strings.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Field+": "+e.Message)
	}
	return messages
}
