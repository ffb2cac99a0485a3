package render

import (
	"fmt"
	"strings"

	"chatbot-backend/internal/models"
	"chatbot-backend/internal/tree"
)

func renderCard(message string, reduced *tree.Value) FormattedResponse {
	content := models.CardContent{
		Title:       cardTitle(reduced),
		Description: message,
		Fields:      cardFields(reduced),
		Actions:     cardActions(reduced),
	}

	return FormattedResponse{
		Message: message,
		Format:  models.FormatCard,
		Content: content,
		Metadata: map[string]interface{}{
			"formatted_at": nowMillis(),
			"card_type":    cardType(reduced),
		},
		SuggestedActions: suggestedActions(reduced),
		Success:          true,
	}
}

func cardTitle(m *tree.Value) string {
	for _, key := range []string{"title", "name"} {
		if v, ok := m.Get(key); ok && v.IsScalar() {
			return displayScalar(v)
		}
	}
	switch {
	case m.Has("system_info"), m.Has("system"):
		return "System Information"
	case m.Has("user_list"), m.Has("users"):
		return "User Management"
	}
	return "Information Card"
}

func cardFields(m *tree.Value) []models.CardField {
	fields := make([]models.CardField, 0, MaxCardFields)
	for _, e := range m.Entries() {
		if strings.HasPrefix(e.Key, "_") {
			continue
		}
		if len(fields) >= MaxCardFields {
			break
		}
		fields = append(fields, models.CardField{
			Name:  titleCase(e.Key),
			Value: fieldValue(e.Value),
			Type:  fieldType(e.Value),
		})
	}
	return fields
}

func fieldValue(v *tree.Value) string {
	switch v.Kind() {
	case tree.KindSequence:
		return fmt.Sprintf("%d items", v.Len())
	case tree.KindMapping:
		return fmt.Sprintf("%d properties", v.Len())
	}
	raw, ok := v.Scalar()
	if !ok || raw == nil {
		return "N/A"
	}
	switch t := raw.(type) {
	case string:
		return t
	case float64:
		return formatNumber(t)
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	}
	return "N/A"
}

func fieldType(v *tree.Value) string {
	switch v.Kind() {
	case tree.KindSequence:
		return "list"
	case tree.KindMapping:
		return "object"
	}
	raw, _ := v.Scalar()
	switch raw.(type) {
	case float64:
		return "number"
	case bool:
		return "boolean"
	}
	return "text"
}

func cardActions(m *tree.Value) []models.ActionButton {
	var actions []models.ActionButton
	if m.Has("user_list") || m.Has("users") {
		actions = append(actions, models.ActionButton{
			Label:  "View All Users",
			Action: "view_users",
			Type:   models.ActionTypeNavigation,
		})
	}
	if m.Has("system_info") || m.Has("system") {
		actions = append(actions, models.ActionButton{
			Label:  "System Details",
			Action: "system_details",
			Type:   models.ActionTypeFunction,
		})
	}
	return actions
}

func suggestedActions(m *tree.Value) []models.ActionButton {
	var actions []models.ActionButton
	if m.Has("user_list") || m.Has("users") {
		actions = append(actions, models.ActionButton{
			Label:  "View All Users",
			Action: "view_users",
			Type:   models.ActionTypeNavigation,
		})
	}
	if m.Has("system_info") || m.Has("system") {
		actions = append(actions, models.ActionButton{
			Label:  "System Settings",
			Action: "system_settings",
			Type:   models.ActionTypeFunction,
		})
	}
	return actions
}

func cardType(m *tree.Value) string {
	switch {
	case m.Has("status"):
		return "status_card"
	case m.Has("metrics"), m.Has("performance_metrics"), m.Has("performance"):
		return "metrics_card"
	case m.Has("users"), m.Has("user_list"):
		return "user_card"
	}
	return "info_card"
}
