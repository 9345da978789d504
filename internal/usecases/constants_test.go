package usecases

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectorsMatchKnownValues(t *testing.T) {
	require.Equal(t, "0xdd62ed3e", AllowanceSelector)
	require.Equal(t, "0x095ea7b3", ApproveSelector)
	require.Equal(t, "0xa9059cbb", TransferSelector)
}

func TestComputeSelectorHex(t *testing.T) {
	// balanceOf(address) is the canonical reference selector
	require.Equal(t, "0x70a08231", computeSelectorHex("balanceOf(address)"))
}
