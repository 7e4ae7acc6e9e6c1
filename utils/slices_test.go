package utils_test

import (
	"testing"

	"github.com/NethermindEth/invokev3/core/felt"
	"github.com/NethermindEth/invokev3/utils"
	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		var input []int
		assert.Nil(t, utils.Map(input, func(int) int { return 0 }))
	})

	t.Run("empty stays empty", func(t *testing.T) {
		out := utils.Map([]int{}, func(int) int { return 0 })
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})

	assert.Equal(t, []string{"0x1", "0x2"}, utils.Map([]*felt.Felt{felt.NewFromUint64(1), felt.NewFromUint64(2)}, (*felt.Felt).String))
}

func TestCloneFelts(t *testing.T) {
	in := []*felt.Felt{felt.NewFromUint64(1), nil}
	out := utils.CloneFelts(in)
	assert.Equal(t, in, out)
	assert.NotSame(t, in[0], out[0])
	assert.Nil(t, out[1])

	in[0].SetUint64(7)
	assert.Equal(t, uint64(1), out[0].Uint64())

	assert.Nil(t, utils.CloneFelts(nil))
}

func TestFeltArrToString(t *testing.T) {
	assert.Equal(t, "0x1, 0xa", utils.FeltArrToString([]*felt.Felt{felt.NewFromUint64(1), felt.NewFromUint64(10)}))
}
