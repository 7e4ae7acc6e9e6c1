package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/NethermindEth/invokev3/config"
	"github.com/NethermindEth/invokev3/core"
	"github.com/NethermindEth/invokev3/core/felt"
	"github.com/NethermindEth/invokev3/encoder"
	_ "github.com/NethermindEth/invokev3/encoder/registry"
	"github.com/NethermindEth/invokev3/rpc"
	"github.com/NethermindEth/invokev3/utils"
	"github.com/NethermindEth/invokev3/vm"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func ConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a submitted transaction into an execution transaction",
		Long: `This subcommand decodes a JSON submitted INVOKE v3 transaction, validates it and prints ` +
			`the execution transaction in the selected output format.`,
		Args: cobra.ExactArgs(1),
		RunE: convert,
	}

	defaultOutput := config.DefaultOutput
	cmd.Flags().Var(&defaultOutput, outputF, outputUsage)
	cmd.Flags().Bool(onlyQueryF, false, onlyQueryUsage)
	return cmd
}

func convert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	txn, err := readTransaction(args[0])
	if err != nil {
		return err
	}

	adapted, err := rpc.AdaptBroadcastedInvokeTransaction(txn, cfg.Network.ChainID(), cfg.OnlyQuery)
	if err != nil {
		return err
	}
	log.Debugw("Converted transaction", "network", cfg.Network, "hash", adapted.Hash(), "output", cfg.Output)

	return writeTransaction(cmd.OutOrStdout(), adapted, cfg.Output)
}

func writeTransaction(w io.Writer, txn *core.InvokeTransaction, output config.Output) error {
	switch output {
	case config.JSON:
		b, err := vm.MarshalTxn(txn)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case config.YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newTransactionView(txn)); err != nil {
			return err
		}
		return enc.Close()
	case config.Table:
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Field", "Value"})
		table.SetAutoWrapText(false)
		table.AppendBulk(tableRows(txn))
		table.Render()
		return nil
	case config.CBOR:
		return encoder.NewEncoder(w).Encode(txn)
	default:
		return config.ErrUnknownOutput
	}
}

type resourceBoundsView struct {
	MaxAmount       uint64 `yaml:"max_amount"`
	MaxPricePerUnit string `yaml:"max_price_per_unit"`
}

// transactionView is the human readable form of an execution transaction
type transactionView struct {
	TransactionHash       string                        `yaml:"transaction_hash"`
	OnlyQuery             bool                          `yaml:"only_query"`
	Version               string                        `yaml:"version"`
	SenderAddress         string                        `yaml:"sender_address"`
	Nonce                 string                        `yaml:"nonce"`
	CallData              []string                      `yaml:"calldata"`
	Signature             []string                      `yaml:"signature"`
	ResourceBounds        map[string]resourceBoundsView `yaml:"resource_bounds"`
	Tip                   uint64                        `yaml:"tip"`
	PaymasterData         []string                      `yaml:"paymaster_data"`
	AccountDeploymentData []string                      `yaml:"account_deployment_data"`
	NonceDAMode           string                        `yaml:"nonce_data_availability_mode"`
	FeeDAMode             string                        `yaml:"fee_data_availability_mode"`
}

func feltString(f *felt.Felt) string {
	return f.String()
}

func newTransactionView(txn *core.InvokeTransaction) *transactionView {
	resourceBounds := make(map[string]resourceBoundsView, len(txn.ResourceBounds))
	for resource, bounds := range txn.ResourceBounds {
		resourceBounds[resource.String()] = resourceBoundsView{
			MaxAmount:       bounds.MaxAmount,
			MaxPricePerUnit: bounds.MaxPricePerUnit.String(),
		}
	}

	return &transactionView{
		TransactionHash:       txn.Hash().String(),
		OnlyQuery:             txn.OnlyQuery,
		Version:               txn.Version.String(),
		SenderAddress:         txn.SenderAddress.String(),
		Nonce:                 txn.Nonce.String(),
		CallData:              utils.Map(txn.CallData, feltString),
		Signature:             utils.Map(txn.Signature(), feltString),
		ResourceBounds:        resourceBounds,
		Tip:                   txn.Tip,
		PaymasterData:         utils.Map(txn.PaymasterData, feltString),
		AccountDeploymentData: utils.Map(txn.AccountDeploymentData, feltString),
		NonceDAMode:           txn.NonceDAMode.String(),
		FeeDAMode:             txn.FeeDAMode.String(),
	}
}

func tableRows(txn *core.InvokeTransaction) [][]string {
	rows := [][]string{
		{"transaction_hash", txn.Hash().String()},
		{"only_query", strconv.FormatBool(txn.OnlyQuery)},
		{"version", txn.Version.String()},
		{"sender_address", txn.SenderAddress.String()},
		{"nonce", txn.Nonce.String()},
		{"tip", strconv.FormatUint(txn.Tip, 10)},
	}
	for _, resource := range []core.Resource{core.ResourceL1Gas, core.ResourceL2Gas, core.ResourceL1DataGas} {
		bounds, ok := txn.ResourceBounds[resource]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			resource.String(),
			fmt.Sprintf("max_amount=%d max_price_per_unit=%s", bounds.MaxAmount, bounds.MaxPricePerUnit),
		})
	}
	return append(rows,
		[]string{"nonce_data_availability_mode", txn.NonceDAMode.String()},
		[]string{"fee_data_availability_mode", txn.FeeDAMode.String()},
		[]string{"calldata", utils.FeltArrToString(txn.CallData)},
		[]string{"signature", utils.FeltArrToString(txn.Signature())},
		[]string{"paymaster_data", utils.FeltArrToString(txn.PaymasterData)},
		[]string{"account_deployment_data", utils.FeltArrToString(txn.AccountDeploymentData)},
	)
}
