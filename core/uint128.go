package core

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/NethermindEth/invokev3/core/felt"
	"github.com/fxamacker/cbor/v2"
)

// Uint128 is the representation of prices in resource bounds
type Uint128 struct {
	hi uint64
	lo uint64
}

func NewUint128(hi, lo uint64) Uint128 {
	return Uint128{
		hi: hi,
		lo: lo,
	}
}

// Uint128FromFelt fails with ErrConversionOverflow if f has more than 128
// significant bits.
func Uint128FromFelt(f *felt.Felt) (Uint128, error) {
	if f.BitLen() > 128 {
		return Uint128{}, fmt.Errorf("%w: %s does not fit in 128 bits", ErrConversionOverflow, f)
	}
	b := f.Bytes()
	return Uint128{
		hi: binary.BigEndian.Uint64(b[16:24]),
		lo: binary.BigEndian.Uint64(b[24:]),
	}, nil
}

func (u Uint128) Bytes() []byte {
	bytes := make([]byte, 16)
	binary.BigEndian.PutUint64(bytes[:8], u.hi)
	binary.BigEndian.PutUint64(bytes[8:], u.lo)
	return bytes
}

// Felt returns u as a newly allocated felt. Every Uint128 is a canonical felt.
func (u Uint128) Felt() *felt.Felt {
	return new(felt.Felt).SetBytes(u.Bytes())
}

func (u Uint128) IsZero() bool {
	return u.hi == 0 && u.lo == 0
}

func (u Uint128) Equal(o Uint128) bool {
	return u.hi == o.hi && u.lo == o.lo
}

func (u Uint128) String() string {
	return "0x" + new(big.Int).SetBytes(u.Bytes()).Text(felt.Base16)
}

func (u Uint128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *Uint128) UnmarshalJSON(data []byte) error {
	var f felt.Felt
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	v, err := Uint128FromFelt(&f)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// MarshalCBOR encodes u as a 16 bytes big-endian byte string
func (u Uint128) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(u.Bytes())
}

func (u *Uint128) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return err
	}
	if len(b) != 16 {
		return fmt.Errorf("invalid Uint128 encoding: expected 16 bytes, got %d", len(b))
	}
	*u = Uint128{
		hi: binary.BigEndian.Uint64(b[:8]),
		lo: binary.BigEndian.Uint64(b[8:]),
	}
	return nil
}
