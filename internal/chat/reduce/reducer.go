// Package reduce extracts the intent-relevant subset of a context tree and
// applies the truncation caps that keep responses safe for the UI. Each
// strategy returns a freshly built mapping tagged with a response_format
// hint; the input tree is never mutated.
package reduce

import (
	"strings"
	"time"

	"chatbot-backend/internal/chat/analyze"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/tree"
)

// UI safety caps. These are invariants, not tunables.
const (
	MaxUserEntries = 10
	MaxListItems   = 20
	MaxTableRows   = 50

	maxGeneralMapEntries = 5
	maxGeneralListItems  = 10
)

// FormatHintKey carries the reduction's preferred render format inside the
// reduced mapping.
const FormatHintKey = "response_format"

// MetadataKey is the reserved key the reducer attaches bookkeeping under.
const MetadataKey = "_metadata"

var performanceKeys = []string{"cpu", "memory", "disk", "network", "performance"}

// Reduce applies the strategy for the given intent. Unrecognized intents get
// the general strategy; a nil or empty context reduces to an empty mapping.
func Reduce(context *tree.Value, intent models.Intent) *tree.Value {
	if context == nil || !context.IsMapping() || context.Len() == 0 {
		return tree.NewMapping()
	}

	var result *tree.Value
	switch intent {
	case models.IntentSystemDataQuery:
		result = reduceSystemData(context)
	case models.IntentUserManagement:
		result = reduceUserManagement(context)
	case models.IntentSystemStatus:
		result = reduceSystemStatus(context)
	case models.IntentListQuery:
		result = reduceListData(context)
	case models.IntentTableQuery:
		result = reduceTableData(context)
	case models.IntentReportGeneration:
		result = reduceReport(context)
	default:
		result = reduceGeneral(context)
	}

	attachMetadata(result, intent)
	return result
}

// FormatHint reads the response_format hint off a reduced tree.
func FormatHint(reduced *tree.Value) (models.ResponseFormat, bool) {
	if reduced == nil {
		return "", false
	}
	hint, ok := reduced.Get(FormatHintKey)
	if !ok {
		return "", false
	}
	s, ok := hint.StringValue()
	if !ok {
		return "", false
	}
	return models.ParseResponseFormat(s), true
}

func reduceSystemData(context *tree.Value) *tree.Value {
	result := tree.NewMapping()

	result.Set("system_info", subMapping(context, "system"))
	result.Set("performance_metrics", pickKeys(context, performanceKeys))
	result.Set("resource_usage", subMapping(context, "resources"))

	if sessions, ok := context.Get("activeSessions"); ok {
		result.Set("active_sessions", sessions)
	} else {
		result.Set("active_sessions", tree.String("No active session data available"))
	}

	return result
}

func reduceUserManagement(context *tree.Value) *tree.Value {
	result := tree.NewMapping()

	if users, ok := context.Get("users"); ok {
		result.Set("user_list", users.Head(MaxUserEntries))
		result.Set("user_stats", userStats(users))
	}
	if roles, ok := context.Get("roles"); ok {
		result.Set("roles", roles)
	}
	if permissions, ok := context.Get("permissions"); ok {
		result.Set("permissions", permissions)
	}

	result.Set(FormatHintKey, tree.String("table"))
	return result
}

func userStats(users *tree.Value) *tree.Value {
	stats := tree.NewMapping()
	if users.IsSequence() {
		total := users.Len()
		displayed := total
		if displayed > MaxUserEntries {
			displayed = MaxUserEntries
		}
		stats.Set("total_users", tree.Number(float64(total)))
		stats.Set("displayed_users", tree.Number(float64(displayed)))
	}
	return stats
}

func reduceSystemStatus(context *tree.Value) *tree.Value {
	result := tree.NewMapping()

	result.Set("status", valueOr(context, "status", tree.String("Unknown")))
	result.Set("uptime", valueOr(context, "uptime", tree.String("Unknown")))
	result.Set("health_check", healthCheck(context))
	result.Set("alerts", valueOr(context, "alerts", tree.Seq()))

	result.Set(FormatHintKey, tree.String("card"))
	return result
}

// healthCheck starts from an OK baseline and lets any supplied health
// sub-object override it.
func healthCheck(context *tree.Value) *tree.Value {
	health := tree.NewMapping().
		Set("status", tree.String("OK")).
		Set("timestamp", tree.Number(float64(time.Now().UnixMilli())))

	if supplied, ok := context.Get("health"); ok && supplied.IsMapping() {
		for _, e := range supplied.Entries() {
			health.Set(e.Key, e.Value)
		}
	}
	return health
}

func reduceListData(context *tree.Value) *tree.Value {
	result := tree.NewMapping()
	for _, e := range context.Entries() {
		if e.Value.IsSequence() {
			result.Set(e.Key, e.Value.Head(MaxListItems))
		}
	}
	result.Set(FormatHintKey, tree.String("list"))
	return result
}

func reduceTableData(context *tree.Value) *tree.Value {
	result := tree.NewMapping()
	for _, e := range context.Entries() {
		if tree.TableShaped(e.Value) {
			result.Set(e.Key, e.Value.Head(MaxTableRows))
		}
	}
	result.Set(FormatHintKey, tree.String("table"))
	return result
}

func reduceReport(context *tree.Value) *tree.Value {
	facts := analyze.Analyze(context)

	summary := tree.NewMapping().
		Set("total_data_points", tree.Number(float64(context.Len()))).
		Set("data_types", distinctTypes(context))

	trends := tree.NewMapping().
		Set("status", tree.String("No trend data available"))

	var insights []*tree.Value
	if facts.HasUserData {
		insights = append(insights, tree.String("User management data is available for analysis"))
	}
	if facts.HasSystemMetrics {
		insights = append(insights, tree.String("System performance metrics can be monitored"))
	}

	result := tree.NewMapping().
		Set("summary", summary).
		Set("trends", trends).
		Set("insights", tree.Seq(insights...))

	result.Set(FormatHintKey, tree.String("card"))
	return result
}

// distinctTypes lists the runtime kinds observed across top-level values, in
// encounter order.
func distinctTypes(context *tree.Value) *tree.Value {
	seen := make(map[string]bool)
	var types []*tree.Value
	for _, e := range context.Entries() {
		name := e.Value.TypeName()
		if !seen[name] {
			seen[name] = true
			types = append(types, tree.String(name))
		}
	}
	return tree.Seq(types...)
}

// reduceGeneral passes relevant data through, trimming oversized values so
// an unclassified query still gets a bounded response.
func reduceGeneral(context *tree.Value) *tree.Value {
	result := tree.NewMapping()
	for _, e := range context.Entries() {
		if strings.HasPrefix(e.Key, "_") || e.Value.IsNull() {
			continue
		}
		result.Set(e.Key, simplify(e.Value))
	}
	return result
}

func simplify(v *tree.Value) *tree.Value {
	switch {
	case v.IsMapping() && v.Len() > maxGeneralMapEntries:
		trimmed := tree.NewMapping()
		for _, e := range v.Entries()[:maxGeneralMapEntries] {
			trimmed.Set(e.Key, e.Value)
		}
		return trimmed
	case v.IsSequence() && v.Len() > maxGeneralListItems:
		return v.Head(maxGeneralListItems)
	}
	return v
}

func attachMetadata(result *tree.Value, intent models.Intent) {
	var keys []*tree.Value
	for _, e := range result.Entries() {
		if !strings.HasPrefix(e.Key, "_") {
			keys = append(keys, tree.String(e.Key))
		}
	}

	result.Set(MetadataKey, tree.NewMapping().
		Set("intent", tree.String(string(intent))).
		Set("processed_at", tree.Number(float64(time.Now().UnixMilli()))).
		Set("data_keys", tree.Seq(keys...)))
}

func subMapping(context *tree.Value, key string) *tree.Value {
	sub := tree.NewMapping()
	if v, ok := context.Get(key); ok && v.IsMapping() {
		for _, e := range v.Entries() {
			sub.Set(e.Key, e.Value)
		}
	}
	return sub
}

func pickKeys(context *tree.Value, keys []string) *tree.Value {
	picked := tree.NewMapping()
	for _, key := range keys {
		if v, ok := context.Get(key); ok {
			picked.Set(key, v)
		}
	}
	return picked
}

func valueOr(context *tree.Value, key string, fallback *tree.Value) *tree.Value {
	if v, ok := context.Get(key); ok {
		return v
	}
	return fallback
}
