package breakdown

import (
	"strings"

	"github.com/iwvelando/hotel-forecast/pkg/constants"
)

// Mapping renames raw categories before grouping. Categories absent from
// Table go to Fallback, or keep their name when Fallback is empty.
type Mapping struct {
	Table    map[string]string `json:"table" yaml:"table" mapstructure:"table"`
	Fallback string            `json:"fallback,omitempty" yaml:"fallback,omitempty" mapstructure:"fallback"`
}

// DefaultTypeMapping folds the PMS segment names into the reporting
// categories.
var DefaultTypeMapping = Mapping{
	Table: map[string]string{
		"INDIV PUBL DIRECT":   "INDIV D",
		"INDIV PUBL INDIRECT": "INDIV I",
		"NEGOCIES":            "NEGOCIES",
		"GROUPES":             "GROUPES",
		"B":                   "OTHER",
		"AUTRE":               "OTHER",
		"** Type Non défini":  "OTHER",
	},
	Fallback: "OTHER",
}

// Apply returns the reporting category for raw. A blank category is treated
// like any unknown one.
func (m Mapping) Apply(raw string) string {
	key := strings.TrimSpace(raw)
	if mapped, ok := m.Table[key]; ok {
		return mapped
	}
	if m.Fallback != "" {
		return m.Fallback
	}
	if key == "" {
		return constants.OtherCategory
	}
	return key
}

// IsZero reports whether the mapping has no effect.
func (m Mapping) IsZero() bool {
	return len(m.Table) == 0 && m.Fallback == ""
}
