// Package classify derives a lightweight Analysis of a user message: the
// intent, the kind of data being asked for, extracted entities and a
// suggested response format. Classification is keyword and shape based,
// deterministic, and never calls out.
package classify

import (
	"regexp"
	"strings"

	"chatbot-backend/internal/models"
	"chatbot-backend/internal/tree"
)

// Analysis is the classifier's verdict on one message.
type Analysis struct {
	Intent             models.Intent         `json:"intent"`
	DataType           models.DataType       `json:"dataType"`
	Entities           map[string]string     `json:"entities"`
	SuggestedFormat    models.ResponseFormat `json:"suggestedFormat"`
	Confidence         float64               `json:"confidence"`
	RequiresSystemData bool                  `json:"requiresSystemData"`
}

var (
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern  = regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`)
	systemPattern = regexp.MustCompile(`(?i)\b(system|status|info|data|query)\b`)
	formatPattern = regexp.MustCompile(`(?i)\b(table|list|card|chart|graph)\b`)
)

// Classify analyzes a message against an optional context tree. Pure function
// of its inputs.
func Classify(message string, context *tree.Value) Analysis {
	lower := strings.ToLower(message)

	intent := detectIntent(lower)
	dataType := detectDataType(lower)
	entities := extractEntities(message)

	return Analysis{
		Intent:             intent,
		DataType:           dataType,
		Entities:           entities,
		SuggestedFormat:    suggestFormat(intent, dataType),
		Confidence:         confidence(intent, entities, context),
		RequiresSystemData: intent == models.IntentSystemInfo || intent == models.IntentDataQuery,
	}
}

// detectIntent tests disjoint keyword groups in a fixed precedence order; the
// first group with a hit wins.
func detectIntent(lower string) models.Intent {
	switch {
	case containsAny(lower, "system", "info", "status"):
		return models.IntentSystemInfo
	case containsAny(lower, "data", "query", "show"):
		return models.IntentDataQuery
	case containsAny(lower, "help", "how", "what"):
		return models.IntentHelpRequest
	default:
		return models.IntentGeneralQuery
	}
}

func detectDataType(lower string) models.DataType {
	switch {
	case containsAny(lower, "table", "list", "format"):
		return models.DataTypeStructured
	case containsAny(lower, "chart", "graph", "visual"):
		return models.DataTypeVisual
	case containsAny(lower, "summary", "overview"):
		return models.DataTypeSummary
	default:
		return models.DataTypeText
	}
}

func extractEntities(message string) map[string]string {
	entities := make(map[string]string)

	if email := emailPattern.FindString(message); email != "" {
		entities["email"] = email
	}
	if phone := phonePattern.FindString(message); phone != "" {
		entities["phone"] = phone
	}
	if systemPattern.MatchString(message) {
		entities["type"] = "system_query"
	}
	if formatPattern.MatchString(message) {
		entities["format"] = "structured"
	}

	return entities
}

// suggestFormat is a fixed lookup over the (intent, dataType) pair.
func suggestFormat(intent models.Intent, dataType models.DataType) models.ResponseFormat {
	switch intent {
	case models.IntentSystemInfo:
		switch dataType {
		case models.DataTypeStructured:
			return models.FormatTable
		case models.DataTypeVisual:
			return models.FormatCard
		default:
			return models.FormatList
		}
	case models.IntentDataQuery:
		if dataType == models.DataTypeStructured {
			return models.FormatTable
		}
		return models.FormatText
	default:
		return models.FormatText
	}
}

// confidence starts at the 0.5 base, rewarding a system_info intent backed by
// actual context and any extracted entity, clamped to 1.0.
func confidence(intent models.Intent, entities map[string]string, context *tree.Value) float64 {
	c := 0.5

	if intent == models.IntentSystemInfo && context != nil && context.Len() > 0 {
		c += 0.3
	}
	if len(entities) > 0 {
		c += 0.2
	}

	if c > 1.0 {
		c = 1.0
	}
	return c
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
