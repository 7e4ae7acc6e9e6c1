package crypto

import (
	"fmt"

	"github.com/NethermindEth/invokev3/core/felt"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

const (
	stateWidth    = 3
	fullRounds    = 8
	partialRounds = 83
	totalRounds   = fullRounds + partialRounds
)

var roundConstants [totalRounds][stateWidth]fp.Element

func init() {
	for r := range roundConstantsHex {
		for i, key := range roundConstantsHex[r] {
			if _, err := roundConstants[r][i].SetString(key); err != nil {
				panic(fmt.Sprintf("poseidon: invalid round constant %d/%d: %v", r, i, err))
			}
		}
	}
}

// hadesPermutation applies the Hades permutation in place. state must hold
// exactly stateWidth elements.
func hadesPermutation(state []felt.Felt) {
	s := [stateWidth]*fp.Element{state[0].Impl(), state[1].Impl(), state[2].Impl()}

	round := 0
	for r := 0; r < fullRounds/2; r++ {
		addRoundKey(s, round)
		for i := range s {
			cube(s[i])
		}
		mixLayer(s)
		round++
	}
	for r := 0; r < partialRounds; r++ {
		addRoundKey(s, round)
		cube(s[stateWidth-1])
		mixLayer(s)
		round++
	}
	for r := 0; r < fullRounds/2; r++ {
		addRoundKey(s, round)
		for i := range s {
			cube(s[i])
		}
		mixLayer(s)
		round++
	}
}

func addRoundKey(s [stateWidth]*fp.Element, round int) {
	for i := range s {
		s[i].Add(s[i], &roundConstants[round][i])
	}
}

func cube(x *fp.Element) {
	var sq fp.Element
	sq.Square(x)
	x.Mul(x, &sq)
}

// mixLayer multiplies the state by M = [[3, 1, 1], [1, -1, 1], [1, 1, -2]]
func mixLayer(s [stateWidth]*fp.Element) {
	var t, d fp.Element
	t.Add(s[0], s[1])
	t.Add(&t, s[2])

	d.Double(s[0])
	s[0].Add(&t, &d)

	d.Double(s[1])
	s[1].Sub(&t, &d)

	d.Double(s[2])
	d.Add(&d, s[2])
	s[2].Sub(&t, &d)
}

// Poseidon implements the [Poseidon hash] of two field elements.
//
// [Poseidon hash]: https://docs.starknet.io/architecture-and-concepts/cryptography/hash-functions/#poseidon_hash
func Poseidon(x, y *felt.Felt) *felt.Felt {
	state := []felt.Felt{*x, *y, *felt.NewFromUint64(2)}
	hadesPermutation(state)
	return new(felt.Felt).Set(&state[0])
}

// PoseidonArray implements [Poseidon array hashing]. The input is padded with
// a single 1 followed by a 0 if needed to reach an even length, so the empty
// array hashes to a fixed non-zero value.
//
// [Poseidon array hashing]: https://docs.starknet.io/architecture-and-concepts/cryptography/hash-functions/#poseidon_array_hash
func PoseidonArray(elems ...*felt.Felt) *felt.Felt {
	var digest PoseidonDigest
	return digest.Update(elems...).Finish()
}

var _ Digest = (*PoseidonDigest)(nil)

// PoseidonDigest is the sponge construction behind PoseidonArray with rate 2
// and capacity 1. The zero value is ready to use.
type PoseidonDigest struct {
	state      [stateWidth]felt.Felt
	pending    felt.Felt
	hasPending bool
}

func (d *PoseidonDigest) Update(elems ...*felt.Felt) Digest {
	for _, elem := range elems {
		if !d.hasPending {
			d.pending.Set(elem)
			d.hasPending = true
			continue
		}
		d.state[0].Add(&d.state[0], &d.pending)
		d.state[1].Add(&d.state[1], elem)
		hadesPermutation(d.state[:])
		d.hasPending = false
	}
	return d
}

func (d *PoseidonDigest) Finish() *felt.Felt {
	if d.hasPending {
		d.state[0].Add(&d.state[0], &d.pending)
		d.state[1].Add(&d.state[1], &felt.One)
	} else {
		d.state[0].Add(&d.state[0], &felt.One)
	}
	hadesPermutation(d.state[:])
	d.hasPending = false
	return new(felt.Felt).Set(&d.state[0])
}
