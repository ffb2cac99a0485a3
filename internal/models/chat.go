// internal/models/chat.go
package models

import (
	"time"

	"chatbot-backend/internal/tree"
)

// MaxMessageLength is the upper bound on an incoming chat message.
const MaxMessageLength = 2000

// ChatRequest is the inbound wire record for one user message.
type ChatRequest struct {
	Message         string      `json:"message"`
	SessionID       string      `json:"sessionId,omitempty"`
	UserID          string      `json:"userId,omitempty"`
	CurrentPage     string      `json:"currentPage,omitempty"`
	SystemContext   *tree.Value `json:"systemContext,omitempty"`
	UserPreferences *tree.Value `json:"userPreferences,omitempty"`
}

// ChatResponse is the outbound wire record. Content carries the
// format-specific variant (TextContent, CardContent, ListContent,
// TableContent or ChartContent).
type ChatResponse struct {
	SessionID        string                 `json:"sessionId,omitempty"`
	Message          string                 `json:"message"`
	ResponseFormat   ResponseFormat         `json:"responseFormat"`
	Content          interface{}            `json:"content,omitempty"`
	Timestamp        time.Time              `json:"timestamp"`
	Success          bool                   `json:"success"`
	Error            string                 `json:"error,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	SuggestedActions []ActionButton         `json:"suggestedActions,omitempty"`
}

// ActionButton is a follow-up action the UI can offer next to a response.
type ActionButton struct {
	Label      string                 `json:"label"`
	Action     string                 `json:"action"`
	Type       string                 `json:"type"` // "navigation", "function" or "link"
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

const (
	ActionTypeNavigation = "navigation"
	ActionTypeFunction   = "function"
	ActionTypeLink       = "link"
)
