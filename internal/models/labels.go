// internal/models/labels.go
package models

import "strings"

// Intent is the coarse classification of what a user message asks for. The
// first four values are produced by the classifier; the remaining six name
// the reduction strategies the data reducer understands.
type Intent string

const (
	IntentSystemInfo   Intent = "system_info"
	IntentDataQuery    Intent = "data_query"
	IntentHelpRequest  Intent = "help_request"
	IntentGeneralQuery Intent = "general_query"

	IntentSystemDataQuery  Intent = "system_data_query"
	IntentUserManagement   Intent = "user_management"
	IntentSystemStatus     Intent = "system_status"
	IntentListQuery        Intent = "list_query"
	IntentTableQuery       Intent = "table_query"
	IntentReportGeneration Intent = "report_generation"
)

// DataType labels what kind of data the message seems to want back.
type DataType string

const (
	DataTypeStructured DataType = "structured_data"
	DataTypeVisual     DataType = "visual_data"
	DataTypeSummary    DataType = "summary_data"
	DataTypeText       DataType = "text_data"
)

// ResponseFormat is one of the five renderable output shapes. The uppercase
// values are the stable wire contract in ChatResponse.responseFormat.
type ResponseFormat string

const (
	FormatText  ResponseFormat = "TEXT"
	FormatCard  ResponseFormat = "CARD"
	FormatList  ResponseFormat = "LIST"
	FormatTable ResponseFormat = "TABLE"
	FormatChart ResponseFormat = "CHART"
)

// ParseResponseFormat maps a format string, in any case, onto a known format.
// Unknown or empty strings fall back to TEXT rather than failing.
func ParseResponseFormat(s string) ResponseFormat {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CARD":
		return FormatCard
	case "LIST":
		return FormatList
	case "TABLE":
		return FormatTable
	case "CHART":
		return FormatChart
	default:
		return FormatText
	}
}
