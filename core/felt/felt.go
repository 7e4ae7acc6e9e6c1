package felt

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/fxamacker/cbor/v2"
)

const (
	Base10 = 10
	Base16 = 16
)

const (
	Limbs = fp.Limbs // number of 64 bits words needed to represent a Element
	Bits  = fp.Bits  // number of bits needed to represent a Element
	Bytes = fp.Bytes // number of bytes needed to represent a Element
)

var (
	ErrNotCanonical = errors.New("value is not a canonical field element")
	ErrValueTooLong = errors.New("value too large (max = Element.Bits * 3)")
)

type Felt struct {
	val fp.Element
}

// zero felt constant
var Zero = Felt{}

// One is the felt with value 1. It must not be modified.
var One = *new(Felt).SetUint64(1)

var bigIntPool = sync.Pool{
	New: func() any {
		return new(big.Int)
	},
}

func NewFelt(element *fp.Element) *Felt {
	return &Felt{
		val: *element,
	}
}

func NewFromUint64(v uint64) *Felt {
	return new(Felt).SetUint64(v)
}

// Modulus returns the prime of the field.
func Modulus() *big.Int {
	return fp.Modulus()
}

// Impl returns the underlying field element type
func (z *Felt) Impl() *fp.Element {
	return &z.val
}

// UnmarshalJSON accepts numbers and strings as input.
// Strings are 0x-prefixed hex or decimal, and fall back to plain hex. Unlike the underlying field element, values that are not
// smaller than the modulus are rejected instead of being reduced.
func (z *Felt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) > fp.Bits*3 {
		return ErrValueTooLong
	}

	// we accept numbers and strings, remove leading and trailing quotes if any
	if len(s) > 0 && s[0] == '"' {
		s = s[1:]
	}
	if len(s) > 0 && s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}

	_, err := z.SetString(s)
	return err
}

// MarshalJSON encodes the felt as a 0x-prefixed hex string
func (z *Felt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + z.String() + `"`), nil
}

// SetString parses a 0x-prefixed hex or a decimal number, falling back to
// unprefixed hex. Digit separators and other base prefixes are refused.
// Non-canonical values are rejected with ErrNotCanonical.
func (z *Felt) SetString(number string) (*Felt, error) {
	// get temporary big int from the pool
	vv := bigIntPool.Get().(*big.Int)
	defer bigIntPool.Put(vv)

	if !parseNumber(vv, number) {
		return z, fmt.Errorf("can't parse into a big.Int: %q", number)
	}

	if vv.Sign() < 0 || vv.Cmp(fp.Modulus()) >= 0 {
		return z, fmt.Errorf("%w: %s", ErrNotCanonical, number)
	}

	z.val.SetBigInt(vv)
	return z, nil
}

func parseNumber(v *big.Int, number string) bool {
	lower := strings.ToLower(number)
	if strings.Contains(lower, "_") || strings.HasPrefix(lower, "0b") || strings.HasPrefix(lower, "0o") {
		return false
	}

	if digits, ok := strings.CutPrefix(lower, "0x"); ok {
		if digits == "" || digits[0] == '+' || digits[0] == '-' {
			return false
		}
		_, ok = v.SetString(digits, Base16)
		return ok
	}

	if _, ok := v.SetString(number, Base10); ok {
		return true
	}
	_, ok := v.SetString(number, Base16)
	return ok
}

// SetBytes interprets e as the bytes of a big-endian unsigned integer and
// reduces it modulo the field prime.
func (z *Felt) SetBytes(e []byte) *Felt {
	z.val.SetBytes(e)
	return z
}

// SetBytesCanonical is like SetBytes but fails instead of reducing.
func (z *Felt) SetBytesCanonical(e []byte) error {
	if len(e) > Bytes {
		return ErrNotCanonical
	}
	vv := bigIntPool.Get().(*big.Int)
	defer bigIntPool.Put(vv)

	if vv.SetBytes(e).Cmp(fp.Modulus()) >= 0 {
		return ErrNotCanonical
	}
	z.val.SetBigInt(vv)
	return nil
}

// SetUint64 forwards the call to underlying field element implementation
func (z *Felt) SetUint64(v uint64) *Felt {
	z.val.SetUint64(v)
	return z
}

// SetBigInt reduces v modulo the field prime
func (z *Felt) SetBigInt(v *big.Int) *Felt {
	z.val.SetBigInt(v)
	return z
}

// Set copies x into z
func (z *Felt) Set(x *Felt) *Felt {
	z.val.Set(&x.val)
	return z
}

// Clone returns a newly allocated copy of z
func (z *Felt) Clone() *Felt {
	return new(Felt).Set(z)
}

// SetRandom forwards the call to underlying field element implementation
func (z *Felt) SetRandom() (*Felt, error) {
	_, err := z.val.SetRandom()
	return z, err
}

// String returns the 0x-prefixed hex representation
func (z *Felt) String() string {
	return "0x" + z.val.Text(Base16)
}

// Text forwards the call to underlying field element implementation
func (z *Felt) Text(base int) string {
	return z.val.Text(base)
}

// BigInt writes the regular form of z into res and returns it
func (z *Felt) BigInt(res *big.Int) *big.Int {
	return z.val.BigInt(res)
}

// BitLen returns the number of significant bits of the regular form of z
func (z *Felt) BitLen() int {
	vv := bigIntPool.Get().(*big.Int)
	defer bigIntPool.Put(vv)
	return z.val.BigInt(vv).BitLen()
}

// IsUint64 reports whether z fits into an uint64
func (z *Felt) IsUint64() bool {
	return z.val.IsUint64()
}

// Uint64 returns the lowest 64 bits of z. Callers must check IsUint64 first.
func (z *Felt) Uint64() uint64 {
	return z.val.Uint64()
}

// Equal forwards the call to underlying field element implementation
func (z *Felt) Equal(x *Felt) bool {
	return z.val.Equal(&x.val)
}

// Marshal forwards the call to underlying field element implementation
func (z *Felt) Marshal() []byte {
	return z.val.Marshal()
}

// Bytes forwards the call to underlying field element implementation
func (z *Felt) Bytes() [32]byte {
	return z.val.Bytes()
}

// IsOne forwards the call to underlying field element implementation
func (z *Felt) IsOne() bool {
	return z.val.IsOne()
}

// IsZero forwards the call to underlying field element implementation
func (z *Felt) IsZero() bool {
	return z.val.IsZero()
}

// Add forwards the call to underlying field element implementation
func (z *Felt) Add(x, y *Felt) *Felt {
	z.val.Add(&x.val, &y.val)
	return z
}

// Sub forwards the call to underlying field element implementation
func (z *Felt) Sub(x, y *Felt) *Felt {
	z.val.Sub(&x.val, &y.val)
	return z
}

// Mul forwards the call to underlying field element implementation
func (z *Felt) Mul(x, y *Felt) *Felt {
	z.val.Mul(&x.val, &y.val)
	return z
}

// Double forwards the call to underlying field element implementation
func (z *Felt) Double(x *Felt) *Felt {
	z.val.Double(&x.val)
	return z
}

// Cmp compares the regular forms of z and x
func (z *Felt) Cmp(x *Felt) int {
	return z.val.Cmp(&x.val)
}

// MarshalCBOR encodes the felt as a 32 bytes big-endian byte string
func (z *Felt) MarshalCBOR() ([]byte, error) {
	b := z.val.Bytes()
	return cbor.Marshal(b[:])
}

// UnmarshalCBOR decodes a byte string produced by MarshalCBOR
func (z *Felt) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return err
	}
	return z.SetBytesCanonical(b)
}
