package utils_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/NethermindEth/invokev3/core/felt"
	"github.com/NethermindEth/invokev3/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var networkStrings = map[utils.Network]string{
	utils.Mainnet:            "mainnet",
	utils.Goerli:             "goerli",
	utils.Goerli2:            "goerli2",
	utils.Integration:        "integration",
	utils.Sepolia:            "sepolia",
	utils.SepoliaIntegration: "sepolia-integration",
}

func TestNetwork(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		for network, str := range networkStrings {
			assert.Equal(t, str, network.String())
		}
	})
	t.Run("chainId", func(t *testing.T) {
		for n := range networkStrings {
			switch n {
			case utils.Goerli, utils.Integration:
				assert.Equal(t, new(felt.Felt).SetBytes([]byte("SN_GOERLI")), n.ChainID())
			case utils.Mainnet:
				assert.Equal(t, new(felt.Felt).SetBytes([]byte("SN_MAIN")), n.ChainID())
			case utils.Goerli2:
				assert.Equal(t, new(felt.Felt).SetBytes([]byte("SN_GOERLI2")), n.ChainID())
			case utils.Sepolia:
				assert.Equal(t, new(felt.Felt).SetBytes([]byte("SN_SEPOLIA")), n.ChainID())
			case utils.SepoliaIntegration:
				assert.Equal(t, new(felt.Felt).SetBytes([]byte("SN_INTEGRATION_SEPOLIA")), n.ChainID())
			default:
				assert.Fail(t, "unexpected network")
			}
		}
	})
	t.Run("known chain id values", func(t *testing.T) {
		assert.Equal(t, "0x534e5f4d41494e", utils.Mainnet.ChainID().String())
		assert.Equal(t, "0x534e5f474f45524c49", utils.Integration.ChainID().String())
	})
	t.Run("every network is listed", func(t *testing.T) {
		assert.Len(t, utils.Networks, len(networkStrings))
	})
}

//nolint:dupl // see comment in utils/log_test.go
func TestNetworkSet(t *testing.T) {
	for network, str := range networkStrings {
		t.Run("network "+str, func(t *testing.T) {
			n := new(utils.Network)
			require.NoError(t, n.Set(str))
			assert.Equal(t, network, *n)
		})
		uppercase := strings.ToUpper(str)
		t.Run("network "+uppercase, func(t *testing.T) {
			n := new(utils.Network)
			require.NoError(t, n.Set(uppercase))
			assert.Equal(t, network, *n)
		})
	}

	t.Run("underscore alias", func(t *testing.T) {
		n := new(utils.Network)
		require.NoError(t, n.Set("SEPOLIA_INTEGRATION"))
		assert.Equal(t, utils.SepoliaIntegration, *n)
	})

	t.Run("unknown network", func(t *testing.T) {
		n := new(utils.Network)
		require.ErrorIs(t, n.Set("blah"), utils.ErrUnknownNetwork)
	})
}

func TestNetworkUnmarshalText(t *testing.T) {
	for network, str := range networkStrings {
		t.Run("network "+str, func(t *testing.T) {
			n := new(utils.Network)
			require.NoError(t, n.UnmarshalText([]byte(str)))
			assert.Equal(t, network, *n)
		})
	}

	t.Run("unknown network", func(t *testing.T) {
		l := new(utils.Network)
		require.ErrorIs(t, l.UnmarshalText([]byte("blah")), utils.ErrUnknownNetwork)
	})
}

func TestNetworkMarshal(t *testing.T) {
	n := utils.Sepolia
	b, err := json.Marshal(&n)
	require.NoError(t, err)
	assert.Equal(t, `"sepolia"`, string(b))

	y, err := yaml.Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, "sepolia\n", string(y))
}

func TestNetworkType(t *testing.T) {
	assert.Equal(t, "Network", new(utils.Network).Type())
}
