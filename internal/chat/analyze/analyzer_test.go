package analyze

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"chatbot-backend/internal/tree"
)

func TestAnalyze_NilContext(t *testing.T) {
	facts := Analyze(nil)

	assert.False(t, facts.HasUserData)
	assert.False(t, facts.HasSystemMetrics)
	assert.False(t, facts.HasListData)
	assert.False(t, facts.HasTableData)
	assert.Equal(t, "low", facts.Complexity)
	assert.Empty(t, facts.Categories)
	assert.Equal(t, "text_display", facts.Visualization)
}

func TestAnalyze_UserData(t *testing.T) {
	context := tree.NewMapping().Set("users", tree.Seq(
		tree.NewMapping().Set("name", tree.String("alice")),
	))

	facts := Analyze(context)

	assert.True(t, facts.HasUserData)
	assert.True(t, facts.HasListData)
	assert.True(t, facts.HasTableData)
	assert.Equal(t, []string{"user_management", "list_data", "table_data"}, facts.Categories)
	assert.Equal(t, "data_table", facts.Visualization)
}

func TestAnalyze_SystemMetricsWinVisualization(t *testing.T) {
	context := tree.NewMapping().
		Set("metrics", tree.NewMapping().Set("cpu", tree.Number(42))).
		Set("logs", tree.Seq(
			tree.NewMapping().Set("level", tree.String("error")),
		))

	facts := Analyze(context)

	assert.True(t, facts.HasSystemMetrics)
	assert.True(t, facts.HasTableData)
	assert.Equal(t, "metrics_dashboard", facts.Visualization)
	assert.Equal(t, []string{"system_metrics", "list_data", "table_data"}, facts.Categories)
}

func TestAnalyze_ScalarSequenceIsListNotTable(t *testing.T) {
	context := tree.NewMapping().Set("tags", tree.Seq(tree.String("prod"), tree.String("eu")))

	facts := Analyze(context)

	assert.True(t, facts.HasListData)
	assert.False(t, facts.HasTableData)
	assert.Equal(t, "list_view", facts.Visualization)
}

func TestAnalyze_Complexity(t *testing.T) {
	// Mappings score 2, sequences 1, scalars 0.
	build := func(mappings, sequences, scalars int) *tree.Value {
		context := tree.NewMapping()
		for i := 0; i < mappings; i++ {
			context.Set(fmt.Sprintf("m%d", i), tree.NewMapping())
		}
		for i := 0; i < sequences; i++ {
			context.Set(fmt.Sprintf("s%d", i), tree.Seq())
		}
		for i := 0; i < scalars; i++ {
			context.Set(fmt.Sprintf("v%d", i), tree.Number(float64(i)))
		}
		return context
	}

	tests := []struct {
		name     string
		context  *tree.Value
		expected string
	}{
		{"empty", tree.NewMapping(), "low"},
		{"scalars only", build(0, 0, 20), "low"},
		{"score five is still low", build(2, 1, 0), "low"},
		{"score six is medium", build(2, 2, 0), "medium"},
		{"score ten is still medium", build(5, 0, 0), "medium"},
		{"score eleven is high", build(5, 1, 0), "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Analyze(tt.context).Complexity)
		})
	}
}
