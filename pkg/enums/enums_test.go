package enums

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("  Farmer ")
	require.NoError(t, err)
	require.Equal(t, UserRoleFarmer, role)

	_, err = ParseUserRole("vendor")
	require.Error(t, err)
	require.False(t, UserRole("vendor").IsValid())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("placed")
	require.NoError(t, err)
	require.Equal(t, OrderStatusPlaced, status)
	require.Equal(t, "placed", status.String())

	_, err = ParseOrderStatus("shipped")
	require.Error(t, err)
}

func TestParseMassSource(t *testing.T) {
	for _, raw := range []string{"measured", "predicted", "none"} {
		ms, err := ParseMassSource(raw)
		require.NoError(t, err)
		require.True(t, ms.IsValid())
	}
	_, err := ParseMassSource("guessed")
	require.Error(t, err)
}
