// internal/models/content.go
package models

// TextContent is the plain-text response variant.
type TextContent struct {
	Text string `json:"text"`
}

// CardContent is the card response variant: a titled summary with up to
// eight fields and optional inline actions.
type CardContent struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Fields      []CardField    `json:"fields"`
	Actions     []ActionButton `json:"actions"`
}

type CardField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type"` // "number", "boolean", "list", "object" or "text"
}

// ListContent is the list response variant. TotalCount is the pre-cap item
// count, not the number of displayed items.
type ListContent struct {
	Title      string     `json:"title"`
	Items      []ListItem `json:"items"`
	TotalCount int        `json:"total_count"`
}

type ListItem struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// TableContent is the table response variant.
type TableContent struct {
	Title      string                   `json:"title"`
	Columns    []TableColumn            `json:"columns"`
	Rows       []map[string]interface{} `json:"rows"`
	Pagination Pagination               `json:"pagination"`
}

type TableColumn struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Type     string `json:"type"` // "number", "boolean", "date" or "text"
	Sortable bool   `json:"sortable"`
}

type Pagination struct {
	Total       int `json:"total"`
	PageSize    int `json:"page_size"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// ChartContent is the chart response variant, shaped for Chart.js on the UI
// side.
type ChartContent struct {
	Title     string      `json:"title"`
	ChartType string      `json:"chart_type"` // "line", "bar" or "pie"
	Data      ChartData   `json:"data"`
	Config    ChartConfig `json:"config"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
}

type ChartConfig struct {
	Responsive          bool                   `json:"responsive"`
	MaintainAspectRatio bool                   `json:"maintainAspectRatio"`
	Plugins             map[string]interface{} `json:"plugins"`
}
