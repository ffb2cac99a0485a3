package render

import (
	"strings"

	"chatbot-backend/internal/models"
	"chatbot-backend/internal/tree"
)

func renderList(message string, reduced *tree.Value) FormattedResponse {
	items, total := collectListItems(reduced)

	content := models.ListContent{
		Title:      "System Information",
		Items:      items,
		TotalCount: total,
	}

	return FormattedResponse{
		Message: message,
		Format:  models.FormatList,
		Content: content,
		Metadata: map[string]interface{}{
			"formatted_at": nowMillis(),
			"list_type":    listType(reduced),
		},
		Success: true,
	}
}

// collectListItems gathers list entries from the reduced tree. A sequence
// input contributes its own elements; a mapping input contributes the
// elements of every sequence-valued entry. The returned total counts all
// candidate elements before the MaxListItems cap is applied.
func collectListItems(reduced *tree.Value) ([]models.ListItem, int) {
	items := make([]models.ListItem, 0, MaxListItems)
	total := 0

	appendFrom := func(seq *tree.Value) {
		total += seq.Len()
		for _, it := range seq.Items() {
			if len(items) >= MaxListItems {
				return
			}
			items = append(items, listItem(it))
		}
	}

	switch reduced.Kind() {
	case tree.KindSequence:
		appendFrom(reduced)
	case tree.KindMapping:
		for _, e := range reduced.Entries() {
			if strings.HasPrefix(e.Key, "_") {
				continue
			}
			if e.Value.IsSequence() {
				appendFrom(e.Value)
			}
		}
	}
	return items, total
}

func listItem(v *tree.Value) models.ListItem {
	if !v.IsMapping() {
		return models.ListItem{Title: summarize(v), Metadata: map[string]interface{}{}}
	}

	item := models.ListItem{Metadata: map[string]interface{}{}}
	for _, key := range []string{"name", "title"} {
		if s, ok := v.Get(key); ok && s.IsScalar() {
			item.Title = displayScalar(s)
			break
		}
	}
	if item.Title == "" {
		if id, ok := v.Get("id"); ok && id.IsScalar() {
			item.Title = "Item " + displayScalar(id)
		} else {
			item.Title = "List Item"
		}
	}
	for _, key := range []string{"description", "summary"} {
		if s, ok := v.Get(key); ok && s.IsScalar() {
			item.Description = displayScalar(s)
			break
		}
	}
	for _, e := range v.Entries() {
		switch e.Key {
		case "name", "title", "description":
			continue
		}
		item.Metadata[e.Key] = e.Value.ToAny()
	}
	return item
}

func listType(reduced *tree.Value) string {
	if reduced.IsMapping() {
		switch {
		case reduced.Has("users"), reduced.Has("user_list"):
			return "user_list"
		case reduced.Has("alerts"):
			return "alert_list"
		case reduced.Has("logs"):
			return "log_list"
		}
	}
	return "generic_list"
}
