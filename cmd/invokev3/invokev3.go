package main

import (
	"fmt"
	"io"
	"os"

	"github.com/NethermindEth/invokev3/config"
	"github.com/NethermindEth/invokev3/rpc"
	"github.com/NethermindEth/invokev3/utils"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version string

const (
	configF    = "config"
	logLevelF  = "log-level"
	colourF    = "colour"
	networkF   = "network"
	onlyQueryF = "only-query"
	outputF    = "output"
	workersF   = "workers"
	cacheSizeF = "cache-size"
	cacheTTLF  = "cache-ttl"

	defaultConfig = ""

	configFlagUsage   = "The YAML configuration file."
	logLevelFlagUsage = "Options: debug, info, warn, error, fatal."
	colourUsage       = "Uses --colour=false command to disable colourized outputs (ANSI Escape Codes)."
	networkUsage      = "Options: mainnet, goerli, goerli2, integration, sepolia, sepolia-integration. " +
		"Selects the chain id transactions are hashed for."
	onlyQueryUsage = "Marks converted transactions as simulation only (query)."
	outputUsage    = "Options: json, yaml, table, cbor."
	workersUsage   = "Maximum number of transactions admitted concurrently."
	cacheSizeUsage = "Number of recently admitted transaction hashes remembered to reject duplicates. " +
		"0 disables duplicate detection."
	cacheTTLUsage = "How long an admitted transaction hash is remembered."
)

// NewCmd returns the invokev3 root command with the hash, convert and admit
// subcommands.
func NewCmd() *cobra.Command {
	invokeCmd := &cobra.Command{
		Use:           "invokev3 [command]",
		Short:         "Starknet INVOKE v3 transaction hashing and conversion.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultLogLevel := config.DefaultLogLevel
	defaultNetwork := config.DefaultNetwork

	flags := invokeCmd.PersistentFlags()
	flags.String(configF, defaultConfig, configFlagUsage)
	flags.Var(&defaultLogLevel, logLevelF, logLevelFlagUsage)
	flags.Bool(colourF, true, colourUsage)
	flags.Var(&defaultNetwork, networkF, networkUsage)

	invokeCmd.AddCommand(HashCmd(), ConvertCmd(), AdmitCmd())
	return invokeCmd
}

// loadConfig merges, in order of precedence, the flags of cmd, the config file
// and the flag defaults
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()

	cfgFile, err := cmd.Flags().GetString(configF)
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(cfgFile)
		if err = v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	if err = v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if err = v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(), mapstructure.StringToTimeDurationHookFunc()))); err != nil {
		return nil, err
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (utils.SimpleLogger, error) {
	log, err := utils.NewZapLogger(cfg.LogLevel, cfg.Colour)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

func openTransactions(path string, decode func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return decode(f)
}

func readTransaction(path string) (*rpc.BroadcastedInvokeTransaction, error) {
	var txn *rpc.BroadcastedInvokeTransaction
	err := openTransactions(path, func(r io.Reader) error {
		var err error
		txn, err = rpc.DecodeBroadcastedInvokeTransaction(r)
		return err
	})
	return txn, err
}

func readTransactions(path string) ([]*rpc.BroadcastedInvokeTransaction, error) {
	var txns []*rpc.BroadcastedInvokeTransaction
	err := openTransactions(path, func(r io.Reader) error {
		var err error
		txns, err = rpc.DecodeBroadcastedInvokeTransactions(r)
		return err
	})
	return txns, err
}
