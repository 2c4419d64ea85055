// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"testing"

	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/record"
)

// Room builds a room-sale record for the given canonical date.
func Room(day, category string, rooms int, revenue float64) record.RoomSaleRecord {
	return record.RoomSaleRecord{
		Day:    datetime.MustParseDate(day),
		Type:   category,
		NRooms: rooms,
		CARoom: revenue,
	}
}

// DailyRooms builds one record per day starting at start, each selling the
// same rooms for the same revenue.
func DailyRooms(start string, days int, category string, rooms int, revenue float64) []record.RoomSaleRecord {
	first := datetime.MustParseDate(start)
	out := make([]record.RoomSaleRecord, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, record.RoomSaleRecord{
			Day:    first.AddDate(0, 0, i),
			Type:   category,
			NRooms: rooms,
			CARoom: revenue,
		})
	}
	return out
}

// Period builds a financial period for the given canonical date.
func Period(date string, revenue, cost float64) record.FinancialPeriod {
	return record.FinancialPeriod{
		Date:    datetime.MustParseDate(date),
		Revenue: revenue,
		Cost:    cost,
	}
}

// AssertClose fails the test when got and want differ by more than tolerance.
func AssertClose(t *testing.T, name string, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s = %v, expected %v (±%v)", name, got, want, tolerance)
	}
}
