package core

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/invokev3/core/crypto"
	"github.com/NethermindEth/invokev3/core/felt"
)

var (
	ErrMalformedCommonFields   = errors.New("malformed common fields")
	ErrUnsupportedVersion      = errors.New("unsupported transaction version")
	ErrMissingResourceBounds   = errors.New("missing resource bounds")
	ErrConversionOverflow      = errors.New("value does not fit in target type")
	ErrTransactionHashMismatch = errors.New("transaction hash mismatch")
)

var invokeFelt = new(felt.Felt).SetBytes([]byte("invoke"))

// CommonFieldsExtractor produces the ordered felts shared by every v3
// transaction type, given the transaction type prefix.
//
//go:generate mockgen -destination=../mocks/mock_extractor.go -package=mocks github.com/NethermindEth/invokev3/core CommonFieldsExtractor
type CommonFieldsExtractor interface {
	CommonFieldsForHash(prefix, chainID, sender *felt.Felt) ([]*felt.Felt, error)
}

var _ CommonFieldsExtractor = (*CommonFieldsV3)(nil)

// CommonFieldsV3 is the part of a v3 transaction that is hashed the same way
// for every transaction type.
type CommonFieldsV3 struct {
	Version        *TransactionVersion
	Nonce          *felt.Felt
	Tip            uint64
	ResourceBounds map[Resource]ResourceBounds
	PaymasterData  []*felt.Felt
	NonceDAMode    DataAvailabilityMode
	FeeDAMode      DataAvailabilityMode
}

func (c *CommonFieldsV3) validate() error {
	if c.Version == nil {
		return fmt.Errorf("%w: missing version", ErrUnsupportedVersion)
	}
	if !c.Version.Is(3) {
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, c.Version)
	}
	if c.Nonce == nil {
		return errors.New("nonce is required")
	}
	for _, r := range []Resource{ResourceL1Gas, ResourceL2Gas} {
		if _, ok := c.ResourceBounds[r]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingResourceBounds, r)
		}
	}
	if err := c.NonceDAMode.Validate(); err != nil {
		return fmt.Errorf("nonce: %w", err)
	}
	if err := c.FeeDAMode.Validate(); err != nil {
		return fmt.Errorf("fee: %w", err)
	}
	return nil
}

// CommonFieldsForHash returns
// [prefix, version, sender, h(tip, bounds...), h(paymaster_data), chain_id, nonce, da_modes]
// where L1_DATA_GAS bounds are only included when present.
func (c *CommonFieldsV3) CommonFieldsForHash(prefix, chainID, sender *felt.Felt) ([]*felt.Felt, error) {
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCommonFields, err)
	}
	if prefix == nil || chainID == nil || sender == nil {
		return nil, fmt.Errorf("%w: prefix, chain id and sender are required", ErrMalformedCommonFields)
	}

	tipAndBounds := []*felt.Felt{
		new(felt.Felt).SetUint64(c.Tip),
		c.ResourceBounds[ResourceL1Gas].Felt(ResourceL1Gas),
		c.ResourceBounds[ResourceL2Gas].Felt(ResourceL2Gas),
	}
	if bounds, ok := c.ResourceBounds[ResourceL1DataGas]; ok {
		tipAndBounds = append(tipAndBounds, bounds.Felt(ResourceL1DataGas))
	}

	return []*felt.Felt{
		prefix.Clone(),
		c.Version.AsFelt().Clone(),
		sender.Clone(),
		crypto.PoseidonArray(tipAndBounds...),
		crypto.PoseidonArray(c.PaymasterData...),
		chainID.Clone(),
		c.Nonce.Clone(),
		new(felt.Felt).SetUint64(uint64(c.NonceDAMode)<<32 | uint64(c.FeeDAMode)),
	}, nil
}

// InvokeTransactionHashV3 is
// h(common_fields..., h(account_deployment_data), h(calldata))
func InvokeTransactionHashV3(extractor CommonFieldsExtractor, chainID, sender *felt.Felt,
	accountDeploymentData, callData []*felt.Felt,
) (*felt.Felt, error) {
	common, err := extractor.CommonFieldsForHash(invokeFelt, chainID, sender)
	if err != nil {
		return nil, err
	}

	var digest crypto.PoseidonDigest
	return digest.
		Update(common...).
		Update(crypto.PoseidonArray(accountDeploymentData...), crypto.PoseidonArray(callData...)).
		Finish(), nil
}

func (i *InvokeTransaction) commonFields() *CommonFieldsV3 {
	return &CommonFieldsV3{
		Version:        i.Version,
		Nonce:          i.Nonce,
		Tip:            i.Tip,
		ResourceBounds: i.ResourceBounds,
		PaymasterData:  i.PaymasterData,
		NonceDAMode:    i.NonceDAMode,
		FeeDAMode:      i.FeeDAMode,
	}
}

// TransactionHash recomputes the hash of transaction on the given chain.
func TransactionHash(transaction Transaction, chainID *felt.Felt) (*felt.Felt, error) {
	switch t := transaction.(type) {
	case *InvokeTransaction:
		return InvokeTransactionHashV3(t.commonFields(), chainID, t.SenderAddress.AsFelt(),
			t.AccountDeploymentData, t.CallData)
	default:
		return nil, fmt.Errorf("%w: unknown transaction %T", ErrUnsupportedVersion, transaction)
	}
}

func VerifyTransactionHash(transaction Transaction, chainID *felt.Felt) error {
	if transaction.Hash() == nil {
		return errors.New("nil transaction hash")
	}

	calculated, err := TransactionHash(transaction, chainID)
	if err != nil {
		return err
	}
	if !calculated.Equal(transaction.Hash()) {
		return fmt.Errorf("%w: expected %s, calculated %s",
			ErrTransactionHashMismatch, transaction.Hash(), calculated)
	}
	return nil
}
