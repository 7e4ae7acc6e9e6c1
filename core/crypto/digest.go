package crypto

import "github.com/NethermindEth/invokev3/core/felt"

// Digest absorbs field elements incrementally. Finish returns a newly
// allocated felt and leaves the digest in an unspecified state.
type Digest interface {
	Update(...*felt.Felt) Digest
	Finish() *felt.Felt
}
