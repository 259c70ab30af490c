package orders

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRecordID(t *testing.T) {
	cases := []struct {
		raw string
		id  int64
		ok  bool
	}{
		{raw: "12", id: 12, ok: true},
		{raw: "-3", id: -3, ok: true},
		{raw: "12.0", id: 12, ok: true},
		{raw: "1e3", id: 1000, ok: true},
		{raw: "12.5"},
		{raw: "abc"},
		{raw: "NaN"},
		{raw: "Inf"},
		{raw: "1e300"},
		{raw: "0x10"},
	}
	for _, tc := range cases {
		id, ok := parseRecordID(tc.raw)
		require.Equal(t, tc.ok, ok, tc.raw)
		require.Equal(t, tc.id, id, tc.raw)
	}
}

func TestParseItemMessages(t *testing.T) {
	_, err := parseItem(2, ItemInput{QtyKg: "1"})
	require.Equal(t, "items[2].record_id is required", err.Message())

	_, err = parseItem(1, ItemInput{RecordID: "x", QtyKg: "1"})
	require.Equal(t, "items[1].record_id must be an integer", err.Message())

	_, err = parseItem(0, ItemInput{RecordID: "4", QtyKg: "a lot"})
	require.Equal(t, "items[0].qty_kg must be numeric", err.Message())

	_, err = parseItem(0, ItemInput{RecordID: "4", QtyKg: "0"})
	require.Equal(t, "qty_kg must be > 0 for record 4", err.Message())

	got, err := parseItem(3, ItemInput{RecordID: " 7 ", QtyKg: "2.25"})
	require.Nil(t, err)
	require.Equal(t, parsedItem{index: 3, recordID: 7, qty: 2.25}, got)
}

func TestLineTotalRounding(t *testing.T) {
	lt, err := lineTotal(10.0/3.0, 2)
	require.NoError(t, err)
	require.Equal(t, "6.67", lt.StringFixed(2))

	lt, err = lineTotal(0.125, 1)
	require.NoError(t, err)
	require.Equal(t, "0.13", lt.StringFixed(2))

	_, err = lineTotal(math.MaxFloat64, 10)
	require.Error(t, err)
}

// Halves are rounded on the shortest decimal form of the float, away from
// zero, so 1.005 becomes 1.01 although its binary value sits below 1.005.
func TestLineTotalRoundsDecimalHalvesUp(t *testing.T) {
	cases := map[float64]string{
		1.005:  "1.01",
		2.675:  "2.68",
		-0.125: "-0.13",
	}
	for unit, want := range cases {
		lt, err := lineTotal(unit, 1)
		require.NoError(t, err)
		require.Equal(t, want, lt.StringFixed(2), "unit %v", unit)
	}
}

func TestFormatKg(t *testing.T) {
	require.Equal(t, "6", formatKg(6))
	require.Equal(t, "2.5", formatKg(2.5))
}
