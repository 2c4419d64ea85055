package ingest

import (
	"strings"
)

// Canonical room-sales column names.
const (
	ColDay        = "day"
	ColType       = "type"
	ColSousType   = "sous_type"
	ColRooms      = "n_rooms"
	ColCustomers  = "n_customers"
	ColRevenue    = "ca_room"
	ColPM         = "pm"
	ColSourceFile = "source_file"
)

// Canonical financial column names.
const (
	ColDate            = "date"
	ColFinRevenue      = "revenue"
	ColCost            = "cost"
	ColRevenueCategory = "revenue_category"
	ColCostCategory    = "cost_category"
)

// roomSalesColumns maps PMS export headers to canonical names. Canonical
// names map to themselves so that already-normalized files load unchanged.
var roomSalesColumns = map[string]string{
	"date":             ColDay,
	"day":              ColDay,
	"type":             ColType,
	"type.1":           ColType,
	"sous type":        ColSousType,
	"sous_type":        ColSousType,
	"nbre ch.":         ColRooms,
	"n_rooms":          ColRooms,
	"nbre clients":     ColCustomers,
	"n_customers":      ColCustomers,
	"c.a. chambre":     ColRevenue,
	"ca_room":          ColRevenue,
	"room_pm":          ColPM,
	"pm total chambre": ColPM,
	"pm":               ColPM,
	"source_file":      ColSourceFile,
}

var financialColumns = map[string]string{
	"date":             ColDate,
	"month":            ColDate,
	"revenue":          ColFinRevenue,
	"revenues":         ColFinRevenue,
	"sales":            ColFinRevenue,
	"income":           ColFinRevenue,
	"cost":             ColCost,
	"costs":            ColCost,
	"expenses":         ColCost,
	"revenue_category": ColRevenueCategory,
	"revenue category": ColRevenueCategory,
	"cost_category":    ColCostCategory,
	"cost category":    ColCostCategory,
}

// normalizeHeader folds case and whitespace of a header cell.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// mapColumns returns canonical name → column index. When several headers map
// to the same name the rightmost one wins: PMS exports carry two "Type"
// columns and the second holds the segment.
func mapColumns(headers []string, table map[string]string) map[string]int {
	cols := make(map[string]int)
	for i, h := range headers {
		if canonical, ok := table[normalizeHeader(h)]; ok {
			cols[canonical] = i
		}
	}
	return cols
}
