package ai

import (
	"strings"

	"chatbot-backend/internal/chat/classify"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/tree"
)

const systemPrompt = "You are a helpful AI assistant that can process system data and provide formatted responses."

// BuildPrompt assembles the contextual prompt sent to the provider: system
// context first, then recent conversation turns, then the page the user is
// on, then the user query, then intent-specific instructions.
func BuildPrompt(request *models.ChatRequest, history []string, analysis *classify.Analysis) string {
	var b strings.Builder

	if request.SystemContext != nil && request.SystemContext.Len() > 0 {
		b.WriteString("System Context and Available Data:\n")
		b.WriteString(formatContext(request.SystemContext))
		b.WriteString("\n\n")
	}

	if len(history) > 0 {
		b.WriteString("Previous Conversation:\n")
		for _, turn := range history {
			b.WriteString(turn)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if request.CurrentPage != "" {
		b.WriteString("Current page: ")
		b.WriteString(request.CurrentPage)
		b.WriteString("\n\n")
	}

	b.WriteString("User Query: ")
	b.WriteString(request.Message)
	b.WriteString("\n\n")

	b.WriteString("Instructions: ")
	switch analysis.Intent {
	case models.IntentSystemInfo:
		b.WriteString("Provide detailed system information in a structured format. ")
		b.WriteString("If system data is available, use it to provide accurate information. ")
		b.WriteString("Format the response appropriately based on the data type requested.")
	case models.IntentDataQuery:
		b.WriteString("Process the available system data to answer the query. ")
		b.WriteString("Format the response as requested (table, list, or card format). ")
		b.WriteString("Ensure data accuracy and provide relevant context.")
	default:
		b.WriteString("Provide a helpful and informative response. ")
		b.WriteString("If system data is relevant, incorporate it appropriately.")
	}

	return b.String()
}

// formatContext renders the context mapping one top-level entry per line.
// Nested containers collapse into a size summary to keep the prompt short.
func formatContext(ctx *tree.Value) string {
	var lines []string
	for _, e := range ctx.Entries() {
		lines = append(lines, e.Key+": "+contextValue(e.Value))
	}
	return strings.Join(lines, "\n")
}

func contextValue(v *tree.Value) string {
	switch v.Kind() {
	case tree.KindMapping:
		parts := make([]string, 0, v.Len())
		for _, e := range v.Entries() {
			parts = append(parts, e.Key+"="+scalarText(e.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case tree.KindSequence:
		parts := make([]string, 0, v.Len())
		for _, it := range v.Items() {
			parts = append(parts, scalarText(it))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return scalarText(v)
}

func scalarText(v *tree.Value) string {
	switch v.Kind() {
	case tree.KindMapping:
		return "{...}"
	case tree.KindSequence:
		return "[...]"
	}
	if s, ok := v.StringValue(); ok {
		return s
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}
