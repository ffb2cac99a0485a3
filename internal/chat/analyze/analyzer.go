// Package analyze characterizes the structure of a context tree: what kinds
// of data it holds, how complex it is and which visualization suits it. The
// facts corroborate the classifier's format suggestion before reduction runs.
package analyze

import "chatbot-backend/internal/tree"

// StructuralFacts is the analyzer's summary of one context tree.
type StructuralFacts struct {
	HasUserData      bool     `json:"has_user_data"`
	HasSystemMetrics bool     `json:"has_system_metrics"`
	HasListData      bool     `json:"has_list_data"`
	HasTableData     bool     `json:"has_table_data"`
	Complexity       string   `json:"data_complexity"` // "low", "medium" or "high"
	Categories       []string `json:"data_categories"`
	Visualization    string   `json:"visualization_type"`
}

var (
	userKeys   = []string{"users", "user", "userList", "currentUser"}
	metricKeys = []string{"metrics", "performance", "cpu", "memory"}
)

// Analyze inspects the top level of a context tree. Pure, deterministic and
// independent of mapping entry order.
func Analyze(context *tree.Value) StructuralFacts {
	facts := StructuralFacts{
		HasUserData:      hasAnyKey(context, userKeys),
		HasSystemMetrics: hasAnyKey(context, metricKeys),
		HasListData:      hasListData(context),
		HasTableData:     hasTableData(context),
	}
	facts.Complexity = complexity(context)
	facts.Categories = categories(facts)
	facts.Visualization = visualization(facts)
	return facts
}

func hasAnyKey(context *tree.Value, keys []string) bool {
	if context == nil {
		return false
	}
	for _, key := range keys {
		if context.Has(key) {
			return true
		}
	}
	return false
}

func hasListData(context *tree.Value) bool {
	if context == nil {
		return false
	}
	for _, e := range context.Entries() {
		if e.Value.IsSequence() {
			return true
		}
	}
	return false
}

func hasTableData(context *tree.Value) bool {
	if context == nil {
		return false
	}
	for _, e := range context.Entries() {
		if tree.TableShaped(e.Value) {
			return true
		}
	}
	return false
}

// complexity scores 2 per mapping value and 1 per sequence value at the top
// level; scalars are free.
func complexity(context *tree.Value) string {
	score := 0
	if context != nil {
		for _, e := range context.Entries() {
			switch e.Value.Kind() {
			case tree.KindMapping:
				score += 2
			case tree.KindSequence:
				score++
			}
		}
	}

	switch {
	case score > 10:
		return "high"
	case score > 5:
		return "medium"
	default:
		return "low"
	}
}

// categories appends tags in a fixed order so downstream consumers see a
// stable list.
func categories(facts StructuralFacts) []string {
	var cats []string
	if facts.HasUserData {
		cats = append(cats, "user_management")
	}
	if facts.HasSystemMetrics {
		cats = append(cats, "system_metrics")
	}
	if facts.HasListData {
		cats = append(cats, "list_data")
	}
	if facts.HasTableData {
		cats = append(cats, "table_data")
	}
	return cats
}

func visualization(facts StructuralFacts) string {
	switch {
	case facts.HasSystemMetrics:
		return "metrics_dashboard"
	case facts.HasTableData:
		return "data_table"
	case facts.HasListData:
		return "list_view"
	default:
		return "text_display"
	}
}
