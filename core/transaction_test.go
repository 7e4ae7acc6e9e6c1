package core_test

import (
	"errors"
	"testing"

	"github.com/NethermindEth/invokev3/core"
	"github.com/NethermindEth/invokev3/core/address"
	"github.com/NethermindEth/invokev3/core/crypto"
	"github.com/NethermindEth/invokev3/core/felt"
	"github.com/NethermindEth/invokev3/mocks"
	"github.com/NethermindEth/invokev3/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const senderHex = "0x3f6f3bc663aedc5285d6013cc3ffcbc4341d86ab488b8b68d297f8258793c41"

func version(t *testing.T, hex string) *core.TransactionVersion {
	t.Helper()
	return (*core.TransactionVersion)(utils.HexToFelt(t, hex))
}

func sender(t *testing.T, hex string) address.ContractAddress {
	t.Helper()
	addr, err := address.Validate(utils.HexToFelt(t, hex))
	require.NoError(t, err)
	return addr
}

// integrationInvoke was accepted on the integration network
func integrationInvoke(t *testing.T) *core.InvokeTransaction {
	t.Helper()
	return &core.InvokeTransaction{
		TransactionHash: utils.HexToFelt(t, "0x41906f1c314cca5f43170ea75d3b1904196a10101190d2b12a41cc61cfd17c"),
		Version:         version(t, "0x3"),
		SenderAddress:   sender(t, senderHex),
		Nonce:           utils.HexToFelt(t, "0x8a9"),
		CallData: utils.HexArrToFelt(t, []string{
			"0x2",
			"0x4c312760dfd17a954cdd09e76aa9f149f806d88ec3e402ffaf5c4926f568a42",
			"0x31aafc75f498fdfa7528880ad27246b4c15af4954f96228c9a132b328de1c92",
			"0x0",
			"0x6",
			"0x450703c32370cf7ffff540b9352e7ee4ad583af143a361155f2b485c0c39684",
			"0xb17d8a2731ba7ca1816631e6be14f0fc1b8390422d649fa27f0fbb0c91eea8",
			"0x6",
			"0x0",
			"0x6",
			"0x6333f10b24ed58cc33e9bac40b0d52e067e32a175a97ca9e2ce89fe2b002d82",
			"0x3",
			"0x602e89fe5703e5b093d13d0a81c9e6d213338dc15c59f4d3ff3542d1d7dfb7d",
			"0x20d621301bea11ffd9108af1d65847e9049412159294d0883585d4ad43ad61b",
			"0x276faadb842bfcbba834f3af948386a2eb694f7006e118ad6c80305791d3247",
			"0x613816405e6334ab420e53d4b38a0451cb2ebca2755171315958c87d303cf6",
		}),
		ResourceBounds: map[core.Resource]core.ResourceBounds{
			core.ResourceL1Gas: {MaxAmount: 0x186a0, MaxPricePerUnit: core.NewUint128(0, 0x5af3107a4000)},
			core.ResourceL2Gas: {},
		},
		PaymasterData:         []*felt.Felt{},
		AccountDeploymentData: []*felt.Felt{},
		NonceDAMode:           core.DAModeL1,
		FeeDAMode:             core.DAModeL1,
	}
}

func fullInvoke(t *testing.T) *core.InvokeTransaction {
	t.Helper()
	return &core.InvokeTransaction{
		Version:       version(t, "0x3"),
		SenderAddress: sender(t, senderHex),
		Nonce:         felt.NewFromUint64(7),
		Tip:           0x10,
		ResourceBounds: map[core.Resource]core.ResourceBounds{
			core.ResourceL1Gas:     {MaxAmount: 0x186a0, MaxPricePerUnit: core.NewUint128(0, 0x5af3107a4000)},
			core.ResourceL2Gas:     {MaxAmount: 0x2710, MaxPricePerUnit: core.NewUint128(0, 1)},
			core.ResourceL1DataGas: {MaxAmount: 0x100, MaxPricePerUnit: core.NewUint128(0, 2)},
		},
		PaymasterData:         []*felt.Felt{felt.NewFromUint64(5), felt.NewFromUint64(6)},
		AccountDeploymentData: []*felt.Felt{felt.NewFromUint64(0xa), felt.NewFromUint64(0xb)},
		CallData:              []*felt.Felt{felt.NewFromUint64(1), felt.NewFromUint64(2), felt.NewFromUint64(3)},
		NonceDAMode:           core.DAModeL2,
		FeeDAMode:             core.DAModeL1,
	}
}

func TestResourceBoundsFelt(t *testing.T) {
	tests := map[string]struct {
		resource core.Resource
		bounds   core.ResourceBounds
		expected string
	}{
		"l1 gas": {
			resource: core.ResourceL1Gas,
			bounds:   core.ResourceBounds{MaxAmount: 0x186a0, MaxPricePerUnit: core.NewUint128(0, 0x5af3107a4000)},
			expected: "0x4c315f47415300000000000186a0000000000000000000005af3107a4000",
		},
		"l2 gas": {
			resource: core.ResourceL2Gas,
			bounds:   core.ResourceBounds{MaxAmount: 0x2710, MaxPricePerUnit: core.NewUint128(0, 1)},
			expected: "0x4c325f474153000000000000271000000000000000000000000000000001",
		},
		"l1 data gas": {
			resource: core.ResourceL1DataGas,
			bounds:   core.ResourceBounds{MaxAmount: 0x100, MaxPricePerUnit: core.NewUint128(0, 2)},
			expected: "0x4c315f44415441000000000000010000000000000000000000000000000002",
		},
		"all bits set": {
			resource: core.ResourceL2Gas,
			bounds: core.ResourceBounds{
				MaxAmount:       ^uint64(0),
				MaxPricePerUnit: core.NewUint128(^uint64(0), ^uint64(0)),
			},
			expected: "0x4c325f474153ffffffffffffffffffffffffffffffffffffffffffffffff",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.bounds.Felt(test.resource).String())
		})
	}
}

func TestResourceText(t *testing.T) {
	for _, r := range []core.Resource{core.ResourceL1Gas, core.ResourceL2Gas, core.ResourceL1DataGas} {
		text, err := r.MarshalText()
		require.NoError(t, err)

		var decoded core.Resource
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, r, decoded)
	}

	var r core.Resource
	require.NoError(t, r.UnmarshalText([]byte("l1_data_gas")))
	assert.Equal(t, core.ResourceL1DataGas, r)
	require.Error(t, r.UnmarshalText([]byte("L1_DATA")))

	_, err := core.Resource(0).MarshalText()
	require.Error(t, err)
}

func TestDataAvailabilityMode(t *testing.T) {
	require.NoError(t, core.DAModeL1.Validate())
	require.NoError(t, core.DAModeL2.Validate())
	require.ErrorIs(t, core.DataAvailabilityMode(2).Validate(), core.ErrInvalidDAMode)
	assert.Equal(t, "L2", core.DAModeL2.String())
}

func TestTransactionVersion(t *testing.T) {
	tests := map[string]struct {
		hex         string
		hasQueryBit bool
		is3         bool
		stripped    string
	}{
		"plain v3": {
			hex:      "0x3",
			is3:      true,
			stripped: "0x3",
		},
		"query v3": {
			hex:         "0x100000000000000000000000000000003",
			hasQueryBit: true,
			is3:         true,
			stripped:    "0x3",
		},
		"plain v1": {
			hex:      "0x1",
			stripped: "0x1",
		},
		"query v1": {
			hex:         "0x100000000000000000000000000000001",
			hasQueryBit: true,
			stripped:    "0x1",
		},
		"just below query bit": {
			hex:      "0xffffffffffffffffffffffffffffffff",
			stripped: "0xffffffffffffffffffffffffffffffff",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			v := version(t, test.hex)
			assert.Equal(t, test.hasQueryBit, v.HasQueryBit())
			assert.Equal(t, test.is3, v.Is(3))

			stripped := v.WithoutQueryBit()
			assert.Equal(t, test.stripped, stripped.String())
			// the receiver is untouched
			assert.Equal(t, utils.HexToFelt(t, test.hex), v.AsFelt())
		})
	}
}

func TestCommonFieldsV3(t *testing.T) {
	txn := fullInvoke(t)
	common := core.CommonFieldsV3{
		Version:        txn.Version,
		Nonce:          txn.Nonce,
		Tip:            txn.Tip,
		ResourceBounds: txn.ResourceBounds,
		PaymasterData:  txn.PaymasterData,
		NonceDAMode:    txn.NonceDAMode,
		FeeDAMode:      txn.FeeDAMode,
	}

	prefix := new(felt.Felt).SetBytes([]byte("invoke"))
	fields, err := common.CommonFieldsForHash(prefix, utils.Mainnet.ChainID(), txn.SenderAddress.AsFelt())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0x696e766f6b65",
		"0x3",
		senderHex,
		"0x2f6acc845b6f608e36a3c5636506a59cd721731e465073684c61d48067e2e32",
		"0x1160145b02735dc081307a4f20392a8139739275ad49d5c9c32190ba5fbd054",
		"0x534e5f4d41494e",
		"0x7",
		"0x100000000",
	}, utils.Map(fields, (*felt.Felt).String))

	t.Run("fields are fresh copies", func(t *testing.T) {
		assert.NotSame(t, prefix, fields[0])
		assert.NotSame(t, txn.Version.AsFelt(), fields[1])
		assert.NotSame(t, txn.Nonce, fields[6])
	})

	t.Run("l1 data gas is optional", func(t *testing.T) {
		withoutData := common
		withoutData.ResourceBounds = map[core.Resource]core.ResourceBounds{
			core.ResourceL1Gas: txn.ResourceBounds[core.ResourceL1Gas],
			core.ResourceL2Gas: txn.ResourceBounds[core.ResourceL2Gas],
		}
		other, err := withoutData.CommonFieldsForHash(prefix, utils.Mainnet.ChainID(), txn.SenderAddress.AsFelt())
		require.NoError(t, err)

		expected := crypto.PoseidonArray(
			new(felt.Felt).SetUint64(0x10),
			txn.ResourceBounds[core.ResourceL1Gas].Felt(core.ResourceL1Gas),
			txn.ResourceBounds[core.ResourceL2Gas].Felt(core.ResourceL2Gas),
		)
		assert.Equal(t, expected, other[3])
		assert.NotEqual(t, fields[3], other[3])
	})
}

func TestCommonFieldsV3Malformed(t *testing.T) {
	valid := func() core.CommonFieldsV3 {
		txn := fullInvoke(t)
		return core.CommonFieldsV3{
			Version:        txn.Version,
			Nonce:          txn.Nonce,
			ResourceBounds: txn.ResourceBounds,
			NonceDAMode:    txn.NonceDAMode,
			FeeDAMode:      txn.FeeDAMode,
		}
	}

	tests := map[string]struct {
		mutate func(c *core.CommonFieldsV3)
		target error
	}{
		"version 1": {
			mutate: func(c *core.CommonFieldsV3) { c.Version = version(t, "0x1") },
			target: core.ErrUnsupportedVersion,
		},
		"missing version": {
			mutate: func(c *core.CommonFieldsV3) { c.Version = nil },
			target: core.ErrUnsupportedVersion,
		},
		"missing l1 gas": {
			mutate: func(c *core.CommonFieldsV3) {
				c.ResourceBounds = map[core.Resource]core.ResourceBounds{core.ResourceL2Gas: {}}
			},
			target: core.ErrMissingResourceBounds,
		},
		"missing l2 gas": {
			mutate: func(c *core.CommonFieldsV3) {
				c.ResourceBounds = map[core.Resource]core.ResourceBounds{core.ResourceL1Gas: {}}
			},
			target: core.ErrMissingResourceBounds,
		},
		"invalid nonce da mode": {
			mutate: func(c *core.CommonFieldsV3) { c.NonceDAMode = 7 },
			target: core.ErrInvalidDAMode,
		},
		"invalid fee da mode": {
			mutate: func(c *core.CommonFieldsV3) { c.FeeDAMode = 2 },
			target: core.ErrInvalidDAMode,
		},
		"missing nonce": {
			mutate: func(c *core.CommonFieldsV3) { c.Nonce = nil },
			target: core.ErrMalformedCommonFields,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			test.mutate(&c)
			_, err := c.CommonFieldsForHash(felt.NewFromUint64(1), utils.Sepolia.ChainID(), felt.NewFromUint64(2))
			require.ErrorIs(t, err, core.ErrMalformedCommonFields)
			require.ErrorIs(t, err, test.target)
		})
	}
}

func TestInvokeTransactionHashV3(t *testing.T) {
	tests := map[string]struct {
		txn      func(t *testing.T) *core.InvokeTransaction
		network  utils.Network
		expected string
	}{
		"accepted on integration": {
			txn:      integrationInvoke,
			network:  utils.Integration,
			expected: "0x41906f1c314cca5f43170ea75d3b1904196a10101190d2b12a41cc61cfd17c",
		},
		"same transaction on sepolia": {
			txn:      integrationInvoke,
			network:  utils.Sepolia,
			expected: "0x6d0e3ff991d62a10189a0ea11685d26b7efdb5baa9fa0d0a4edd1711185f671",
		},
		"query version": {
			txn: func(t *testing.T) *core.InvokeTransaction {
				txn := integrationInvoke(t)
				txn.Version = version(t, "0x100000000000000000000000000000003")
				return txn
			},
			network:  utils.Integration,
			expected: "0x453e102e32f57dc9766ed6eaec36a4696930aa70515fae3269dcb80f1e58521",
		},
		"empty sequences": {
			txn: func(t *testing.T) *core.InvokeTransaction {
				return &core.InvokeTransaction{
					Version:       version(t, "0x3"),
					SenderAddress: sender(t, "0x1234"),
					Nonce:         new(felt.Felt),
					ResourceBounds: map[core.Resource]core.ResourceBounds{
						core.ResourceL1Gas: {},
						core.ResourceL2Gas: {},
					},
				}
			},
			network:  utils.Sepolia,
			expected: "0x4e43981f909c1943c584c95c48855a517f7489b496f1daa37ec8b422b304eaf",
		},
		"every field set": {
			txn:      fullInvoke,
			network:  utils.Mainnet,
			expected: "0x77309f120140b3f2fb6b1f368496e56538740ac0b423871a3cd8053c308a37e",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			hash, err := core.TransactionHash(test.txn(t), test.network.ChainID())
			require.NoError(t, err)
			assert.Equal(t, test.expected, hash.String())
		})
	}
}

func TestInvokeTransactionHashV3Properties(t *testing.T) {
	chainID := utils.Integration.ChainID()
	base, err := core.TransactionHash(integrationInvoke(t), chainID)
	require.NoError(t, err)

	t.Run("deterministic", func(t *testing.T) {
		again, err := core.TransactionHash(integrationInvoke(t), chainID)
		require.NoError(t, err)
		assert.Equal(t, base, again)
	})

	t.Run("signature and only query are not hashed", func(t *testing.T) {
		txn := integrationInvoke(t)
		txn.TransactionSignature = []*felt.Felt{felt.NewFromUint64(1), felt.NewFromUint64(2)}
		txn.OnlyQuery = true
		hash, err := core.TransactionHash(txn, chainID)
		require.NoError(t, err)
		assert.Equal(t, base, hash)
	})

	t.Run("nil and empty sequences agree", func(t *testing.T) {
		txn := integrationInvoke(t)
		txn.PaymasterData = nil
		txn.AccountDeploymentData = nil
		hash, err := core.TransactionHash(txn, chainID)
		require.NoError(t, err)
		assert.Equal(t, base, hash)
	})

	otherSender := sender(t, "0x1234")
	mutations := map[string]func(txn *core.InvokeTransaction){
		"nonce":         func(txn *core.InvokeTransaction) { txn.Nonce = felt.NewFromUint64(0x8aa) },
		"tip":           func(txn *core.InvokeTransaction) { txn.Tip = 1 },
		"calldata":      func(txn *core.InvokeTransaction) { txn.CallData[0] = felt.NewFromUint64(3) },
		"paymaster":     func(txn *core.InvokeTransaction) { txn.PaymasterData = []*felt.Felt{new(felt.Felt)} },
		"deployment":    func(txn *core.InvokeTransaction) { txn.AccountDeploymentData = []*felt.Felt{new(felt.Felt)} },
		"fee da mode":   func(txn *core.InvokeTransaction) { txn.FeeDAMode = core.DAModeL2 },
		"nonce da mode": func(txn *core.InvokeTransaction) { txn.NonceDAMode = core.DAModeL2 },
		"l2 gas bounds": func(txn *core.InvokeTransaction) {
			txn.ResourceBounds[core.ResourceL2Gas] = core.ResourceBounds{MaxAmount: 1}
		},
		"l1 data gas bounds present": func(txn *core.InvokeTransaction) {
			txn.ResourceBounds[core.ResourceL1DataGas] = core.ResourceBounds{}
		},
		"sender": func(txn *core.InvokeTransaction) { txn.SenderAddress = otherSender },
	}
	for name, mutate := range mutations {
		t.Run("sensitive to "+name, func(t *testing.T) {
			txn := integrationInvoke(t)
			mutate(txn)
			hash, err := core.TransactionHash(txn, chainID)
			require.NoError(t, err)
			assert.NotEqual(t, base, hash)
		})
	}

	t.Run("sensitive to chain id", func(t *testing.T) {
		hash, err := core.TransactionHash(integrationInvoke(t), utils.Mainnet.ChainID())
		require.NoError(t, err)
		assert.NotEqual(t, base, hash)
	})

	t.Run("inputs are not modified", func(t *testing.T) {
		txn := integrationInvoke(t)
		before := utils.CloneFelts(txn.CallData)
		_, err := core.TransactionHash(txn, chainID)
		require.NoError(t, err)
		assert.Equal(t, before, txn.CallData)
	})
}

func TestInvokeTransactionHashV3Extractor(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	t.Cleanup(mockCtrl.Finish)

	chainID := utils.Sepolia.ChainID()
	senderFelt := felt.NewFromUint64(0x42)
	invokePrefix := new(felt.Felt).SetBytes([]byte("invoke"))

	t.Run("common fields are hashed in front of the invoke fields", func(t *testing.T) {
		extractor := mocks.NewMockCommonFieldsExtractor(mockCtrl)
		extractor.EXPECT().CommonFieldsForHash(invokePrefix, chainID, senderFelt).Return(
			[]*felt.Felt{felt.NewFromUint64(1), felt.NewFromUint64(2), felt.NewFromUint64(3)}, nil,
		)

		hash, err := core.InvokeTransactionHashV3(extractor, chainID, senderFelt,
			[]*felt.Felt{felt.NewFromUint64(4)},
			[]*felt.Felt{felt.NewFromUint64(5), felt.NewFromUint64(6)},
		)
		require.NoError(t, err)
		assert.Equal(t, "0x791760e7d9567333abc08013ab3cf1de503a9637169286750a853f675d9af3d", hash.String())
	})

	t.Run("extractor errors are returned as is", func(t *testing.T) {
		extractorErr := errors.New("boom")
		extractor := mocks.NewMockCommonFieldsExtractor(mockCtrl)
		extractor.EXPECT().CommonFieldsForHash(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, extractorErr)

		hash, err := core.InvokeTransactionHashV3(extractor, chainID, senderFelt, nil, nil)
		require.ErrorIs(t, err, extractorErr)
		assert.Nil(t, hash)
	})
}

func TestVerifyTransactionHash(t *testing.T) {
	txn := integrationInvoke(t)
	require.NoError(t, core.VerifyTransactionHash(txn, utils.Integration.ChainID()))
	require.ErrorIs(t, core.VerifyTransactionHash(txn, utils.Mainnet.ChainID()), core.ErrTransactionHashMismatch)

	txn.TransactionHash = nil
	require.Error(t, core.VerifyTransactionHash(txn, utils.Integration.ChainID()))
}
