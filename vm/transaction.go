package vm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NethermindEth/invokev3/core"
	"github.com/NethermindEth/invokev3/core/felt"
)

// MarshalTxn returns a json structure that includes the transaction serde will
// unmarshal to the execution engine type and a boolean to indicate if the
// transaction must only be simulated.
func MarshalTxn(txn core.Transaction) (json.RawMessage, error) {
	invoke, ok := txn.(*core.InvokeTransaction)
	if !ok {
		return nil, fmt.Errorf("unsupported txn type %T", txn)
	}
	if invoke.Version == nil {
		return nil, errors.New("missing transaction version")
	}

	t := adaptTransaction(invoke)
	txnAndQueryBit := struct {
		QueryBit bool           `json:"query_bit"`
		Txn      map[string]any `json:"txn"`
		TxnHash  *felt.Felt     `json:"txn_hash"`
	}{Txn: make(map[string]any), QueryBit: invoke.OnlyQuery || invoke.Version.HasQueryBit(), TxnHash: txn.Hash()}

	versionWithoutQueryBit := invoke.Version.WithoutQueryBit()
	t.Version = versionWithoutQueryBit.AsFelt()
	txnAndQueryBit.Txn["Invoke"] = map[string]any{
		"V" + t.Version.Text(felt.Base10): t,
	}

	return json.Marshal(txnAndQueryBit)
}

type Transaction struct {
	Version               *felt.Felt                  `json:"version"`
	SenderAddress         *felt.Felt                  `json:"sender_address"`
	Signature             []*felt.Felt                `json:"signature"`
	CallData              []*felt.Felt                `json:"calldata"`
	Nonce                 *felt.Felt                  `json:"nonce"`
	ResourceBounds        map[Resource]ResourceBounds `json:"resource_bounds"`
	Tip                   *felt.Felt                  `json:"tip"`
	NonceDAMode           DataAvailabilityMode        `json:"nonce_data_availability_mode"`
	FeeDAMode             DataAvailabilityMode        `json:"fee_data_availability_mode"`
	AccountDeploymentData []*felt.Felt                `json:"account_deployment_data"`
	PaymasterData         []*felt.Felt                `json:"paymaster_data"`
}

type DataAvailabilityMode uint32

const (
	DAModeL1 DataAvailabilityMode = iota
	DAModeL2
)

func (m DataAvailabilityMode) MarshalJSON() ([]byte, error) {
	switch m {
	case DAModeL1:
		return []byte(`"L1"`), nil
	case DAModeL2:
		return []byte(`"L2"`), nil
	default:
		return nil, errors.New("unknown data availability mode")
	}
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
		return []byte("L1_GAS"), nil
	case ResourceL2Gas:
		return []byte("L2_GAS"), nil
	case ResourceL1DataGas:
		return []byte("L1_DATA_GAS"), nil
	default:
		return nil, errors.New("unknown resource")
	}
}

type ResourceBounds struct {
	MaxAmount       *felt.Felt `json:"max_amount"`
	MaxPricePerUnit *felt.Felt `json:"max_price_per_unit"`
}

func adaptTransaction(t *core.InvokeTransaction) *Transaction {
	return &Transaction{
		Version:               t.Version.AsFelt(),
		SenderAddress:         t.SenderAddress.AsFelt(),
		Signature:             nonNil(t.Signature()),
		CallData:              nonNil(t.CallData),
		Nonce:                 t.Nonce,
		ResourceBounds:        adaptResourceBounds(t.ResourceBounds),
		Tip:                   new(felt.Felt).SetUint64(t.Tip),
		NonceDAMode:           DataAvailabilityMode(t.NonceDAMode),
		FeeDAMode:             DataAvailabilityMode(t.FeeDAMode),
		AccountDeploymentData: nonNil(t.AccountDeploymentData),
		PaymasterData:         nonNil(t.PaymasterData),
	}
}

// nonNil makes sure empty sequences are encoded as [] instead of null
func nonNil(felts []*felt.Felt) []*felt.Felt {
	if felts == nil {
		return []*felt.Felt{}
	}
	return felts
}

func adaptResourceBounds(rb map[core.Resource]core.ResourceBounds) map[Resource]ResourceBounds {
	vmResourceBounds := make(map[Resource]ResourceBounds, len(rb))
	for resource, bounds := range rb {
		vmResourceBounds[Resource(resource)] = ResourceBounds{
			MaxAmount:       new(felt.Felt).SetUint64(bounds.MaxAmount),
			MaxPricePerUnit: bounds.MaxPricePerUnit.Felt(),
		}
	}
	return vmResourceBounds
}
