package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChatRequest(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]interface{}
		valid bool
	}{
		{
			name:  "minimal valid request",
			body:  map[string]interface{}{"message": "hello"},
			valid: true,
		},
		{
			name: "full valid request",
			body: map[string]interface{}{
				"message":       "hello",
				"sessionId":     "sess-1",
				"userId":        "user-1",
				"currentPage":   "/dashboard",
				"systemContext": map[string]interface{}{"cpu": 42.0},
			},
			valid: true,
		},
		{
			name:  "missing message",
			body:  map[string]interface{}{"userId": "user-1"},
			valid: false,
		},
		{
			name:  "empty message",
			body:  map[string]interface{}{"message": ""},
			valid: false,
		},
		{
			name:  "message too long",
			body:  map[string]interface{}{"message": strings.Repeat("x", 2001)},
			valid: false,
		},
		{
			name:  "message not a string",
			body:  map[string]interface{}{"message": 42},
			valid: false,
		},
		{
			name:  "context not an object",
			body:  map[string]interface{}{"message": "hi", "systemContext": "nope"},
			valid: false,
		},
		{
			name:  "unknown field rejected",
			body:  map[string]interface{}{"message": "hi", "surprise": true},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateChatRequest(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.GetErrorMessages())
			}
		})
	}
}

func TestGetErrorMessages(t *testing.T) {
	result, err := ValidateChatRequest(map[string]interface{}{"message": ""})
	require.NoError(t, err)
	require.False(t, result.Valid)

	messages := result.GetErrorMessages()
	require.NotEmpty(t, messages)
	assert.Contains(t, messages[0], "message")
}
