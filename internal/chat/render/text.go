package render

import (
	"fmt"
	"strings"

	"chatbot-backend/internal/models"
	"chatbot-backend/internal/tree"
)

func renderText(message string, reduced *tree.Value) FormattedResponse {
	var (
		text        string
		contentType string
	)
	switch reduced.Kind() {
	case tree.KindMapping:
		text = mappingText(reduced)
		contentType = "structured_data"
	case tree.KindSequence:
		text = sequenceText(reduced)
		contentType = "list_data"
	default:
		text = displayScalar(reduced)
		contentType = "simple_text"
	}

	return FormattedResponse{
		Message: message,
		Format:  models.FormatText,
		Content: models.TextContent{Text: text},
		Metadata: map[string]interface{}{
			"formatted_at": nowMillis(),
			"content_type": contentType,
		},
		Success: true,
	}
}

// mappingText renders each top-level entry as a bold-titled paragraph.
// Metadata entries (underscore-prefixed keys) are skipped.
func mappingText(m *tree.Value) string {
	var paragraphs []string
	for _, e := range m.Entries() {
		if strings.HasPrefix(e.Key, "_") {
			continue
		}
		var b strings.Builder
		b.WriteString("**")
		b.WriteString(titleCase(e.Key))
		b.WriteString("**: ")
		switch e.Value.Kind() {
		case tree.KindMapping:
			b.WriteString("\n")
			b.WriteString(nestedMappingLines(e.Value))
		case tree.KindSequence:
			b.WriteString(inlineSequence(e.Value))
		default:
			b.WriteString(displayScalar(e.Value))
		}
		paragraphs = append(paragraphs, b.String())
	}
	return strings.Join(paragraphs, "\n\n")
}

func nestedMappingLines(m *tree.Value) string {
	lines := make([]string, 0, m.Len())
	for _, e := range m.Entries() {
		lines = append(lines, fmt.Sprintf("  - %s: %s", titleCase(e.Key), summarize(e.Value)))
	}
	return strings.Join(lines, "\n")
}

func inlineSequence(s *tree.Value) string {
	items := s.Items()
	switch len(items) {
	case 0:
		return "Empty list"
	case 1:
		return summarize(items[0])
	}
	shown := items
	suffix := ""
	if len(items) > 3 {
		shown = items[:3]
		suffix = "..."
	}
	parts := make([]string, 0, len(shown))
	for _, it := range shown {
		parts = append(parts, summarize(it))
	}
	return fmt.Sprintf("%d items: %s%s", len(items), strings.Join(parts, ", "), suffix)
}

// sequenceText renders a top-level sequence as bullet lines, capped at
// MaxListItems with a trailing overflow note.
func sequenceText(s *tree.Value) string {
	items := s.Items()
	var lines []string
	for i, it := range items {
		if i >= MaxListItems {
			lines = append(lines, fmt.Sprintf("... and %d more items", len(items)-MaxListItems))
			break
		}
		lines = append(lines, "• "+itemLine(it))
	}
	return strings.Join(lines, "\n")
}

// itemLine renders one sequence element inline. Mapping elements show their
// first few entries as "key: value" pairs.
func itemLine(v *tree.Value) string {
	if !v.IsMapping() {
		return summarize(v)
	}
	entries := v.Entries()
	shown := entries
	if len(entries) > 3 {
		shown = entries[:3]
	}
	parts := make([]string, 0, len(shown))
	for _, e := range shown {
		parts = append(parts, fmt.Sprintf("%s: %s", titleCase(e.Key), summarize(e.Value)))
	}
	return strings.Join(parts, ", ")
}
