// Package render converts a reduced context tree into one of the five
// UI-renderable response shapes. Every formatter is total over arbitrary
// trees: unknown formats fall back to text, and any rendering panic is
// caught at this boundary and degraded into a text response instead of
// propagating.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	stderrors "chatbot-backend/internal/common/errors"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/tree"
)

// UI caps enforced by the formatters regardless of input size.
const (
	MaxCardFields = 8
	MaxListItems  = 20
	MaxTableRows  = 50
)

// FormattedResponse is the renderer's output: the typed content variant plus
// the bookkeeping other layers fold into the wire response.
type FormattedResponse struct {
	Message          string
	Format           models.ResponseFormat
	Content          interface{}
	Metadata         map[string]interface{}
	SuggestedActions []models.ActionButton
	Success          bool
	Error            string
}

// Render formats the reduced tree for the requested format. It never returns
// an error: failures surface as a success=false text response carrying the
// original message.
func Render(message string, reduced *tree.Value, format models.ResponseFormat) (resp FormattedResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = FormattedResponse{
				Message: message,
				Format:  models.FormatText,
				Success: false,
				Error:   stderrors.NewRenderFailedError(string(format), fmt.Errorf("%v", r)).Error(),
			}
		}
	}()

	if reduced == nil {
		reduced = tree.NewMapping()
	}

	switch format {
	case models.FormatCard:
		return renderCard(message, reduced)
	case models.FormatList:
		return renderList(message, reduced)
	case models.FormatTable:
		return renderTable(message, reduced)
	case models.FormatChart:
		return renderChart(message, reduced)
	default:
		return renderText(message, reduced)
	}
}

// ==========================
// Shared helpers
// ==========================

// titleCase turns a snake_case key into a display title: "cpu_usage" ->
// "Cpu Usage".
func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// displayScalar renders a scalar node for humans. Nulls show as "N/A".
func displayScalar(v *tree.Value) string {
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
		return strconv.FormatBool(t)
	}
	return "N/A"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// summarize gives the one-line form of any node: scalars display as
// themselves, containers as a size summary.
func summarize(v *tree.Value) string {
	switch v.Kind() {
	case tree.KindSequence:
		return fmt.Sprintf("%d items", v.Len())
	case tree.KindMapping:
		return fmt.Sprintf("%d properties", v.Len())
	}
	return displayScalar(v)
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
