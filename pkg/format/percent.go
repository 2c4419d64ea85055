package format

import (
	"fmt"

	"github.com/iwvelando/hotel-forecast/pkg/kpi"
)

// NotApplicable is rendered for changes against a zero baseline.
const NotApplicable = "N/A"

// Percent renders a percentage with one decimal (e.g., "78.6%").
func Percent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// Change renders a signed percentage change (e.g., "+12.5%"), or N/A for an
// undefined change. A nil change renders as an empty string.
func Change(c *kpi.Change) string {
	if c == nil {
		return ""
	}
	if c.Undefined {
		return NotApplicable
	}
	return fmt.Sprintf("%+.1f%%", c.Percent)
}
