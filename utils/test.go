package utils

import (
	"testing"

	"github.com/NethermindEth/invokev3/core/felt"
	"github.com/stretchr/testify/require"
)

func HexToFelt(t testing.TB, hex string) *felt.Felt {
	t.Helper()

	f, err := new(felt.Felt).SetString(hex)
	require.NoError(t, err)
	return f
}

func HexArrToFelt(t testing.TB, hexArr []string) []*felt.Felt {
	t.Helper()

	return Map(hexArr, func(hex string) *felt.Felt {
		return HexToFelt(t, hex)
	})
}
