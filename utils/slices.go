package utils

import (
	"strings"

	"github.com/NethermindEth/invokev3/core/felt"
)

func Map[T1, T2 any](slice []T1, f func(T1) T2) []T2 {
	if slice == nil {
		return nil
	}

	result := make([]T2, len(slice))
	for i, e := range slice {
		result[i] = f(e)
	}

	return result
}

// CloneFelts returns a deep copy of felts. Nil elements stay nil.
func CloneFelts(felts []*felt.Felt) []*felt.Felt {
	return Map(felts, func(f *felt.Felt) *felt.Felt {
		if f == nil {
			return nil
		}
		return f.Clone()
	})
}

func FeltArrToString(arr []*felt.Felt) string {
	res := make([]string, len(arr))
	for i, felt := range arr {
		res[i] = felt.String()
	}
	return strings.Join(res, ", ")
}
