package address

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/invokev3/core/felt"
)

var ErrInvalidAddress = errors.New("invalid contract address")

// PatriciaKeyUpperBound is 2^251. Contract addresses are keys of the global
// state trie and must be strictly below it.
var PatriciaKeyUpperBound = func() felt.Felt {
	var b [felt.Bytes]byte
	b[0] = 0x08
	return *new(felt.Felt).SetBytes(b[:])
}()

// reserved holds system addresses that can never be the sender of a transaction
var reserved = []felt.Felt{
	felt.Zero, // not deployable
	felt.One,  // block hash mapping contract
}

// ContractAddress is a felt that has passed Validate
type ContractAddress felt.Felt

func (a *ContractAddress) AsFelt() *felt.Felt {
	return (*felt.Felt)(a)
}

func (a *ContractAddress) String() string {
	return (*felt.Felt)(a).String()
}

func (a *ContractAddress) Equal(b *ContractAddress) bool {
	return (*felt.Felt)(a).Equal((*felt.Felt)(b))
}

func (a *ContractAddress) MarshalJSON() ([]byte, error) {
	return (*felt.Felt)(a).MarshalJSON()
}

func (a *ContractAddress) UnmarshalJSON(data []byte) error {
	var f felt.Felt
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	validated, err := Validate(&f)
	if err != nil {
		return err
	}
	*a = validated
	return nil
}

// Validator turns an untrusted felt into a contract address
type Validator interface {
	Validate(f *felt.Felt) (ContractAddress, error)
}

// ValidatorFunc adapts a function to the Validator interface
type ValidatorFunc func(f *felt.Felt) (ContractAddress, error)

func (fn ValidatorFunc) Validate(f *felt.Felt) (ContractAddress, error) {
	return fn(f)
}

// Default is the Validator used when none is configured
var Default Validator = ValidatorFunc(Validate)

// Validate checks that f is below PatriciaKeyUpperBound and is not a reserved
// system address. The returned address is a copy of f.
func Validate(f *felt.Felt) (ContractAddress, error) {
	if f == nil {
		return ContractAddress{}, fmt.Errorf("%w: missing", ErrInvalidAddress)
	}
	if f.Cmp(&PatriciaKeyUpperBound) >= 0 {
		return ContractAddress{}, fmt.Errorf("%w: %s is out of range", ErrInvalidAddress, f)
	}
	for i := range reserved {
		if f.Equal(&reserved[i]) {
			return ContractAddress{}, fmt.Errorf("%w: %s is reserved", ErrInvalidAddress, f)
		}
	}
	return ContractAddress(*f), nil
}

func (a ContractAddress) MarshalCBOR() ([]byte, error) {
	return (*felt.Felt)(&a).MarshalCBOR()
}

// UnmarshalCBOR validates the decoded address like UnmarshalJSON does
func (a *ContractAddress) UnmarshalCBOR(data []byte) error {
	var f felt.Felt
	if err := f.UnmarshalCBOR(data); err != nil {
		return err
	}
	validated, err := Validate(&f)
	if err != nil {
		return err
	}
	*a = validated
	return nil
}
