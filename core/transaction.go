package core

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/NethermindEth/invokev3/core/address"
	"github.com/NethermindEth/invokev3/core/felt"
)

type Transaction interface {
	Hash() *felt.Felt
	Signature() []*felt.Felt
}

var _ Transaction = (*InvokeTransaction)(nil)

type Resource uint32

const (
	ResourceL1Gas Resource = iota + 1
	ResourceL2Gas
	ResourceL1DataGas
)

func (r Resource) String() string {
	switch r {
	case ResourceL1Gas:
		return "L1_GAS"
	case ResourceL2Gas:
		return "L2_GAS"
	case ResourceL1DataGas:
		return "L1_DATA_GAS"
	default:
		return "<unknown>"
	}
}

// hashName is the short string packed into the resource bound felt. It is
// limited to 7 bytes, which is why L1_DATA_GAS is shortened.
func (r Resource) hashName() string {
	switch r {
	case ResourceL1Gas:
		return "L1_GAS"
	case ResourceL2Gas:
		return "L2_GAS"
	case ResourceL1DataGas:
		return "L1_DATA"
	default:
		return ""
	}
}

func (r Resource) MarshalText() ([]byte, error) {
	switch r {
	case ResourceL1Gas, ResourceL2Gas, ResourceL1DataGas:
		return []byte(r.String()), nil
	default:
		return nil, fmt.Errorf("unknown Resource %d", r)
	}
}

func (r *Resource) UnmarshalText(data []byte) error {
	switch strings.ToUpper(string(data)) {
	case "L1_GAS":
		*r = ResourceL1Gas
	case "L2_GAS":
		*r = ResourceL2Gas
	case "L1_DATA_GAS":
		*r = ResourceL1DataGas
	default:
		return fmt.Errorf("unknown Resource: %q", string(data))
	}
	return nil
}

type ResourceBounds struct {
	MaxAmount       uint64  `json:"max_amount"`
	MaxPricePerUnit Uint128 `json:"max_price_per_unit"`
}

// Bytes packs the bounds as [0 | resource name (56 bits) | max_amount (64 bits) | max_price_per_unit (128 bits)]
func (rb ResourceBounds) Bytes(resource Resource) []byte {
	buf := make([]byte, felt.Bytes)
	name := resource.hashName()
	copy(buf[8-len(name):8], name)
	binary.BigEndian.PutUint64(buf[8:16], rb.MaxAmount)
	copy(buf[16:], rb.MaxPricePerUnit.Bytes())
	return buf
}

func (rb ResourceBounds) Felt(resource Resource) *felt.Felt {
	return new(felt.Felt).SetBytes(rb.Bytes(resource))
}

type DataAvailabilityMode uint32

const (
	DAModeL1 DataAvailabilityMode = iota
	DAModeL2
)

var ErrInvalidDAMode = errors.New("invalid data availability mode")

func (m DataAvailabilityMode) Validate() error {
	switch m {
	case DAModeL1, DAModeL2:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidDAMode, uint32(m))
	}
}

func (m DataAvailabilityMode) String() string {
	switch m {
	case DAModeL1:
		return "L1"
	case DAModeL2:
		return "L2"
	default:
		return "<unknown>"
	}
}

// Keep in sync with the query version offset used by wallets and the sequencer
var queryBit = func() felt.Felt {
	var b [16 + 1]byte
	b[0] = 1
	return *new(felt.Felt).SetBytes(b[:])
}()

// TransactionVersion is the version field of a transaction. Versions
// offset by 2^128 mark transactions that are only meant for simulation or
// fee estimation.
type TransactionVersion felt.Felt

func (v *TransactionVersion) SetUint64(u uint64) *TransactionVersion {
	v.AsFelt().SetUint64(u)
	return v
}

func (v *TransactionVersion) AsFelt() *felt.Felt {
	return (*felt.Felt)(v)
}

func (v *TransactionVersion) String() string {
	return v.AsFelt().String()
}

// Is checks the version without the query bit against u
func (v *TransactionVersion) Is(u uint64) bool {
	withoutQueryBit := v.WithoutQueryBit()
	return withoutQueryBit.AsFelt().Equal(new(felt.Felt).SetUint64(u))
}

func (v *TransactionVersion) HasQueryBit() bool {
	versionWithoutQueryBit := new(felt.Felt).Sub(v.AsFelt(), &queryBit)
	// if versionWithoutQueryBit moves to higher values, it means that the query bit was not set
	return versionWithoutQueryBit.Cmp(v.AsFelt()) < 0
}

// WithoutQueryBit returns a copy of v with the query bit cleared
func (v *TransactionVersion) WithoutQueryBit() TransactionVersion {
	vFelt := *v.AsFelt()
	if v.HasQueryBit() {
		vFelt.Sub(&vFelt, &queryBit)
	}
	return TransactionVersion(vFelt)
}

func (v *TransactionVersion) MarshalJSON() ([]byte, error) {
	return v.AsFelt().MarshalJSON()
}

func (v *TransactionVersion) UnmarshalJSON(data []byte) error {
	return v.AsFelt().UnmarshalJSON(data)
}

func (v *TransactionVersion) MarshalCBOR() ([]byte, error) {
	return v.AsFelt().MarshalCBOR()
}

func (v *TransactionVersion) UnmarshalCBOR(data []byte) error {
	return v.AsFelt().UnmarshalCBOR(data)
}

// InvokeTransaction is an INVOKE v3 transaction ready to be handed to the
// execution engine. It owns all of its slices and felts.
type InvokeTransaction struct {
	TransactionHash *felt.Felt
	// Simulation or fee estimation only; never part of the hash.
	OnlyQuery bool
	Version   *TransactionVersion
	// The address of the account sending this transaction.
	SenderAddress address.ContractAddress
	// The transaction nonce.
	Nonce *felt.Felt
	// The arguments that are passed to the validate and execute functions.
	CallData []*felt.Felt
	// Additional information given by the sender, used to validate the transaction.
	TransactionSignature []*felt.Felt
	// The max amount and max price per unit of each resource the sender is willing to pay.
	ResourceBounds map[Resource]ResourceBounds
	// The tip for the sequencer.
	Tip uint64
	// Data needed to allow the paymaster to pay for the transaction in native tokens.
	PaymasterData []*felt.Felt
	// Data needed to deploy the account contract from which this tx will be initiated.
	AccountDeploymentData []*felt.Felt
	// Where the nonce and the fee are published.
	NonceDAMode DataAvailabilityMode
	FeeDAMode   DataAvailabilityMode
}

func (i *InvokeTransaction) Hash() *felt.Felt {
	return i.TransactionHash
}

func (i *InvokeTransaction) Signature() []*felt.Felt {
	return i.TransactionSignature
}
