package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/NethermindEth/invokev3/core"
	"github.com/NethermindEth/invokev3/core/address"
	"github.com/NethermindEth/invokev3/core/felt"
	"github.com/NethermindEth/invokev3/utils"
	"github.com/NethermindEth/invokev3/validator"
)

var ErrInvalidTransaction = errors.New("invalid transaction")

type DataAvailabilityMode uint32

const (
	DAModeL1 DataAvailabilityMode = iota
	DAModeL2
)

func (m DataAvailabilityMode) MarshalJSON() ([]byte, error) {
	switch m {
	case DAModeL1, DAModeL2:
		return json.Marshal(uint32(m))
	default:
		return nil, fmt.Errorf("unknown DataAvailabilityMode %d", m)
	}
}

// UnmarshalJSON accepts both the integer encoding and the "L1"/"L2" strings
func (m *DataAvailabilityMode) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `0`, `"L1"`:
		*m = DAModeL1
	case `1`, `"L2"`:
		*m = DAModeL2
	default:
		return fmt.Errorf("unknown DataAvailabilityMode: %q", string(data))
	}
	return nil
}

type Resource uint32

const (
	ResourceL1Gas Resource = iota + 1
	ResourceL2Gas
	ResourceL1DataGas
)

func (r Resource) MarshalText() ([]byte, error) {
	switch r {
	case ResourceL1Gas:
		return []byte("l1_gas"), nil
	case ResourceL2Gas:
		return []byte("l2_gas"), nil
	case ResourceL1DataGas:
		return []byte("l1_data_gas"), nil
	default:
		return nil, fmt.Errorf("unknown Resource %v", uint32(r))
	}
}

func (r *Resource) UnmarshalText(data []byte) error {
	str := string(data)
	switch strings.ToLower(str) {
	case "l1_gas":
		*r = ResourceL1Gas
	case "l2_gas":
		*r = ResourceL2Gas
	case "l1_data_gas":
		*r = ResourceL1DataGas
	default:
		return fmt.Errorf("unknown Resource: %q", str)
	}
	return nil
}

type ResourceBounds struct {
	MaxAmount       *felt.Felt `json:"max_amount" validate:"required,felt_bits=64"`
	MaxPricePerUnit *felt.Felt `json:"max_price_per_unit" validate:"required,felt_bits=128"`
}

func (rb *ResourceBounds) adapt() (core.ResourceBounds, error) {
	if rb.MaxAmount == nil || rb.MaxPricePerUnit == nil {
		return core.ResourceBounds{}, errors.New("incomplete resource bounds")
	}
	if !rb.MaxAmount.IsUint64() {
		return core.ResourceBounds{}, fmt.Errorf("%w: max_amount %s does not fit in 64 bits",
			core.ErrConversionOverflow, rb.MaxAmount)
	}
	price, err := core.Uint128FromFelt(rb.MaxPricePerUnit)
	if err != nil {
		return core.ResourceBounds{}, fmt.Errorf("max_price_per_unit: %w", err)
	}
	return core.ResourceBounds{
		MaxAmount:       rb.MaxAmount.Uint64(),
		MaxPricePerUnit: price,
	}, nil
}

// ResourceBoundsMap holds the bounds of every resource. L1 data gas is
// optional for transactions that predate it.
type ResourceBoundsMap struct {
	L1Gas     *ResourceBounds `json:"l1_gas" validate:"required"`
	L2Gas     *ResourceBounds `json:"l2_gas" validate:"required"`
	L1DataGas *ResourceBounds `json:"l1_data_gas,omitempty"`
}

// UnmarshalJSON matches resource names case-insensitively and rejects unknown
// resources, resources given more than once and unknown bound fields
func (r *ResourceBoundsMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil {
		return err
	} else if tok != json.Delim('{') {
		return errors.New("resource bounds must be an object")
	}

	*r = ResourceBoundsMap{}
	seen := make(map[Resource]struct{}, 3)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected resource name %v", tok)
		}

		var resource Resource
		if err = resource.UnmarshalText([]byte(key)); err != nil {
			return err
		}
		if _, ok = seen[resource]; ok {
			return fmt.Errorf("duplicate resource %s", resource)
		}
		seen[resource] = struct{}{}

		var msg json.RawMessage
		if err = dec.Decode(&msg); err != nil {
			return err
		}
		bounds := new(ResourceBounds)
		if err = decodeStrict(bytes.NewReader(msg), bounds); err != nil {
			return fmt.Errorf("%s: %w", resource, err)
		}
		switch resource {
		case ResourceL1Gas:
			r.L1Gas = bounds
		case ResourceL2Gas:
			r.L2Gas = bounds
		case ResourceL1DataGas:
			r.L1DataGas = bounds
		}
	}
	_, err := dec.Token()
	return err
}

func (r Resource) String() string {
	text, err := r.MarshalText()
	if err != nil {
		return "<unknown>"
	}
	return string(text)
}

func (r *ResourceBoundsMap) adapt() (map[core.Resource]core.ResourceBounds, error) {
	resourceBounds := make(map[core.Resource]core.ResourceBounds, 3)
	for resource, bounds := range map[core.Resource]*ResourceBounds{
		core.ResourceL1Gas:     r.L1Gas,
		core.ResourceL2Gas:     r.L2Gas,
		core.ResourceL1DataGas: r.L1DataGas,
	} {
		if bounds == nil {
			continue
		}
		adapted, err := bounds.adapt()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", resource, err)
		}
		resourceBounds[resource] = adapted
	}
	return resourceBounds, nil
}

// Tip is a non-negative integer that fits in 64 bits. It is decoded from a
// JSON number or from a felt string.
type Tip uint64

func (t Tip) MarshalJSON() ([]byte, error) {
	return new(felt.Felt).SetUint64(uint64(t)).MarshalJSON()
}

func (t *Tip) UnmarshalJSON(data []byte) error {
	var f felt.Felt
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	if !f.IsUint64() {
		return fmt.Errorf("%w: tip %s does not fit in 64 bits", core.ErrConversionOverflow, f.String())
	}
	*t = Tip(f.Uint64())
	return nil
}

// https://github.com/starkware-libs/starknet-specs/blob/v0.7.1/api/starknet_api_openrpc.json#L1500
type BroadcastedTransactionCommonV3 struct {
	Version        *felt.Felt            `json:"version" validate:"required,version_0x3"`
	Signature      []*felt.Felt          `json:"signature" validate:"required,dive,required"`
	Nonce          *felt.Felt            `json:"nonce" validate:"required"`
	ResourceBounds ResourceBoundsMap     `json:"resource_bounds"`
	Tip            *Tip                  `json:"tip" validate:"required"`
	PaymasterData  []*felt.Felt          `json:"paymaster_data" validate:"required,dive,required"`
	NonceDAMode    *DataAvailabilityMode `json:"nonce_data_availability_mode" validate:"required"`
	FeeDAMode      *DataAvailabilityMode `json:"fee_data_availability_mode" validate:"required"`
}

var _ core.CommonFieldsExtractor = (*BroadcastedTransactionCommonV3)(nil)

// adapt returns the fields of c in the execution engine representation. All
// felts are copied.
func (c *BroadcastedTransactionCommonV3) adapt() (*core.CommonFieldsV3, error) {
	if c.Version == nil {
		return nil, fmt.Errorf("%w: missing version", core.ErrUnsupportedVersion)
	}
	if c.Nonce == nil || c.Tip == nil || c.NonceDAMode == nil || c.FeeDAMode == nil {
		return nil, errors.New("nonce, tip and data availability modes are required")
	}
	if err := checkFelts("paymaster_data", c.PaymasterData); err != nil {
		return nil, err
	}

	resourceBounds, err := c.ResourceBounds.adapt()
	if err != nil {
		return nil, err
	}

	return &core.CommonFieldsV3{
		Version:        (*core.TransactionVersion)(c.Version.Clone()),
		Nonce:          c.Nonce.Clone(),
		Tip:            uint64(*c.Tip),
		ResourceBounds: resourceBounds,
		PaymasterData:  utils.CloneFelts(c.PaymasterData),
		NonceDAMode:    core.DataAvailabilityMode(*c.NonceDAMode),
		FeeDAMode:      core.DataAvailabilityMode(*c.FeeDAMode),
	}, nil
}

func (c *BroadcastedTransactionCommonV3) CommonFieldsForHash(prefix, chainID, sender *felt.Felt) ([]*felt.Felt, error) {
	common, err := c.adapt()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMalformedCommonFields, err)
	}
	return common.CommonFieldsForHash(prefix, chainID, sender)
}

type BroadcastedInvokeTransaction struct {
	BroadcastedTransactionCommonV3
	SenderAddress         *felt.Felt   `json:"sender_address" validate:"required"`
	CallData              []*felt.Felt `json:"calldata" validate:"required,dive,required"`
	AccountDeploymentData []*felt.Felt `json:"account_deployment_data" validate:"required,dive,required"`
}

func decodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after the transaction")
	}
	return nil
}

// DecodeBroadcastedInvokeTransaction reads a single transaction from r. Unknown fields,
// missing fields and non-canonical felts are rejected.
func DecodeBroadcastedInvokeTransaction(r io.Reader) (*BroadcastedInvokeTransaction, error) {
	txn := new(BroadcastedInvokeTransaction)
	if err := decodeStrict(r, txn); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	if err := validator.Validator().Struct(txn); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	return txn, nil
}

// DecodeBroadcastedInvokeTransactions reads a JSON array of transactions from r
func DecodeBroadcastedInvokeTransactions(r io.Reader) ([]*BroadcastedInvokeTransaction, error) {
	var txns []*BroadcastedInvokeTransaction
	if err := decodeStrict(r, &txns); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	for i, txn := range txns {
		if txn == nil {
			return nil, fmt.Errorf("%w: transaction %d is null", ErrInvalidTransaction, i)
		}
		if err := validator.Validator().Struct(txn); err != nil {
			return nil, fmt.Errorf("%w: transaction %d: %w", ErrInvalidTransaction, i, err)
		}
	}
	return txns, nil
}

func checkFelts(name string, felts []*felt.Felt) error {
	for i, f := range felts {
		if f == nil {
			return fmt.Errorf("%w: %s[%d] is missing", ErrInvalidTransaction, name, i)
		}
	}
	return nil
}

// TransactionHash computes the hash txn will have on the chain identified by chainID.
func TransactionHash(txn *BroadcastedInvokeTransaction, chainID *felt.Felt) (*felt.Felt, error) {
	if err := checkFelts("calldata", txn.CallData); err != nil {
		return nil, err
	}
	if err := checkFelts("account_deployment_data", txn.AccountDeploymentData); err != nil {
		return nil, err
	}
	return core.InvokeTransactionHashV3(&txn.BroadcastedTransactionCommonV3, chainID, txn.SenderAddress,
		txn.AccountDeploymentData, txn.CallData)
}

// Converter turns submitted transactions into execution transactions. The zero
// value validates senders with address.Default.
type Converter struct {
	Validator address.Validator
}

func (c Converter) addressValidator() address.Validator {
	if utils.IsNil(c.Validator) {
		return address.Default
	}
	return c.Validator
}

// Adapt hashes txn, validates its sender and copies every field into a new
// core.InvokeTransaction. txn can be reused by the caller afterwards.
func (c Converter) Adapt(txn *BroadcastedInvokeTransaction, chainID *felt.Felt,
	onlyQuery bool,
) (*core.InvokeTransaction, error) {
	txnHash, err := TransactionHash(txn, chainID)
	if err != nil {
		return nil, err
	}

	sender, err := c.addressValidator().Validate(txn.SenderAddress)
	if err != nil {
		return nil, err
	}

	if err = checkFelts("signature", txn.Signature); err != nil {
		return nil, err
	}

	common, err := txn.adapt()
	if err != nil {
		return nil, err
	}

	return &core.InvokeTransaction{
		TransactionHash:       txnHash,
		OnlyQuery:             onlyQuery,
		Version:               common.Version,
		SenderAddress:         sender,
		Nonce:                 common.Nonce,
		CallData:              utils.CloneFelts(txn.CallData),
		TransactionSignature:  utils.CloneFelts(txn.Signature),
		ResourceBounds:        common.ResourceBounds,
		Tip:                   common.Tip,
		PaymasterData:         common.PaymasterData,
		AccountDeploymentData: utils.CloneFelts(txn.AccountDeploymentData),
		NonceDAMode:           common.NonceDAMode,
		FeeDAMode:             common.FeeDAMode,
	}, nil
}

// AdaptBroadcastedInvokeTransaction converts txn with the default address validation
func AdaptBroadcastedInvokeTransaction(txn *BroadcastedInvokeTransaction, chainID *felt.Felt,
	onlyQuery bool,
) (*core.InvokeTransaction, error) {
	return Converter{}.Adapt(txn, chainID, onlyQuery)
}
