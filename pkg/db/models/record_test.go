package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestRecordAvailable(t *testing.T) {
	require.Equal(t, 6.0, Record{MassKg: f(10), AvailableKg: f(6)}.Available())
	require.Equal(t, 0.0, Record{MassKg: f(10), AvailableKg: f(0)}.Available())
	require.Equal(t, 10.0, Record{MassKg: f(10)}.Available())
	require.Equal(t, 0.0, Record{}.Available())
}

func TestRecordUnitPrice(t *testing.T) {
	require.Equal(t, 5.0, Record{MassKg: f(10), RevenueEstimate: f(50)}.UnitPrice())
	require.Equal(t, 0.0, Record{MassKg: f(0), RevenueEstimate: f(50)}.UnitPrice())
	require.Equal(t, 0.0, Record{RevenueEstimate: f(50)}.UnitPrice())
	require.Equal(t, 0.0, Record{MassKg: f(10)}.UnitPrice())
	require.Equal(t, 0.0, Record{MassKg: f(10), RevenueEstimate: f(0)}.UnitPrice())
}
