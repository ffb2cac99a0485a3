package render

import (
	"strings"
	"time"

	"chatbot-backend/internal/models"
	"chatbot-backend/internal/tree"
)

func renderTable(message string, reduced *tree.Value) FormattedResponse {
	source := tableSource(reduced)

	content := models.TableContent{
		Title:      "Data Table",
		Columns:    tableColumns(source),
		Rows:       tableRows(source),
		Pagination: tablePagination(source),
	}

	return FormattedResponse{
		Message: message,
		Format:  models.FormatTable,
		Content: content,
		Metadata: map[string]interface{}{
			"formatted_at": nowMillis(),
			"table_type":   tableType(reduced),
		},
		Success: true,
	}
}

// tableSource finds the first table-shaped entry in the reduced mapping:
// a non-empty sequence whose first element is a mapping. Both columns and
// rows come from the same entry.
func tableSource(reduced *tree.Value) *tree.Value {
	if !reduced.IsMapping() {
		if tree.TableShaped(reduced) {
			return reduced
		}
		return nil
	}
	for _, e := range reduced.Entries() {
		if strings.HasPrefix(e.Key, "_") {
			continue
		}
		if tree.TableShaped(e.Value) {
			return e.Value
		}
	}
	return nil
}

func tableColumns(source *tree.Value) []models.TableColumn {
	if source == nil {
		return []models.TableColumn{}
	}
	first := source.Items()[0]
	columns := make([]models.TableColumn, 0, first.Len())
	for _, e := range first.Entries() {
		columns = append(columns, models.TableColumn{
			Key:      e.Key,
			Title:    titleCase(e.Key),
			Type:     columnType(e.Value),
			Sortable: true,
		})
	}
	return columns
}

func columnType(v *tree.Value) string {
	raw, _ := v.Scalar()
	switch t := raw.(type) {
	case float64:
		return "number"
	case bool:
		return "boolean"
	case string:
		if _, err := time.Parse(time.RFC3339, t); err == nil {
			return "date"
		}
	}
	return "text"
}

func tableRows(source *tree.Value) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0)
	if source == nil {
		return rows
	}
	for i, it := range source.Items() {
		if i >= MaxTableRows {
			break
		}
		if !it.IsMapping() {
			continue
		}
		row := make(map[string]interface{}, it.Len())
		for _, e := range it.Entries() {
			row[e.Key] = e.Value.ToAny()
		}
		rows = append(rows, row)
	}
	return rows
}

func tablePagination(source *tree.Value) models.Pagination {
	total := 0
	if source != nil {
		total = source.Len()
	}
	pageSize := MaxTableRows
	if total < pageSize {
		pageSize = total
	}
	totalPages := (total + MaxTableRows - 1) / MaxTableRows
	if totalPages < 1 {
		totalPages = 1
	}
	return models.Pagination{
		Total:       total,
		PageSize:    pageSize,
		CurrentPage: 1,
		TotalPages:  totalPages,
	}
}

func tableType(reduced *tree.Value) string {
	if reduced.IsMapping() {
		switch {
		case reduced.Has("users"), reduced.Has("user_list"):
			return "user_table"
		case reduced.Has("logs"):
			return "log_table"
		case reduced.Has("metrics"), reduced.Has("performance_metrics"):
			return "metrics_table"
		}
	}
	return "data_table"
}
