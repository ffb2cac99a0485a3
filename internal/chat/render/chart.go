package render

import (
	"strings"

	"chatbot-backend/internal/models"
	"chatbot-backend/internal/tree"
)

// chartPalette is the fixed Chart.js color family cycled over datasets.
var chartPalette = []string{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0",
	"#9966FF", "#FF9F40", "#C9CBCF", "#7BC225",
}

func renderChart(message string, reduced *tree.Value) FormattedResponse {
	labels, values := chartSeries(reduced)

	content := models.ChartContent{
		Title:     "Data Visualization",
		ChartType: chartType(reduced),
		Data: models.ChartData{
			Labels: labels,
			Datasets: []models.ChartDataset{
				{
					Label:           "Data",
					Data:            values,
					BackgroundColor: paletteFor(len(values)),
				},
			},
		},
		Config: models.ChartConfig{
			Responsive:          true,
			MaintainAspectRatio: false,
			Plugins: map[string]interface{}{
				"legend": map[string]interface{}{"display": true},
				"title":  map[string]interface{}{"display": true, "text": "Data Visualization"},
			},
		},
	}

	return FormattedResponse{
		Message: message,
		Format:  models.FormatChart,
		Content: content,
		Metadata: map[string]interface{}{
			"formatted_at":  nowMillis(),
			"chart_library": "Chart.js",
		},
		Success: true,
	}
}

// chartSeries pulls every top-level numeric entry into a label/value pair,
// preserving mapping order.
func chartSeries(reduced *tree.Value) ([]string, []float64) {
	labels := make([]string, 0)
	values := make([]float64, 0)
	if !reduced.IsMapping() {
		return labels, values
	}
	for _, e := range reduced.Entries() {
		if strings.HasPrefix(e.Key, "_") {
			continue
		}
		if n, ok := e.Value.NumberValue(); ok {
			labels = append(labels, titleCase(e.Key))
			values = append(values, n)
		}
	}
	return labels, values
}

func chartType(reduced *tree.Value) string {
	if reduced.IsMapping() {
		switch {
		case reduced.Has("metrics"), reduced.Has("performance"), reduced.Has("performance_metrics"):
			return "line"
		case reduced.Has("categories"):
			return "bar"
		case reduced.Has("percentage"), reduced.Has("ratio"):
			return "pie"
		}
	}
	return "bar"
}

// paletteFor cycles the base palette out to n entries.
func paletteFor(n int) []string {
	colors := make([]string, n)
	for i := 0; i < n; i++ {
		colors[i] = chartPalette[i%len(chartPalette)]
	}
	return colors
}
