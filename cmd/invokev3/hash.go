package main

import (
	"fmt"

	"github.com/NethermindEth/invokev3/rpc"
	"github.com/spf13/cobra"
)

func HashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>",
		Short: "Calculate the hash of a submitted transaction",
		Long:  `This subcommand decodes a JSON submitted INVOKE v3 transaction and prints its hash for the selected network.`,
		Args:  cobra.ExactArgs(1),
		RunE:  hash,
	}
}

func hash(cmd *cobra.Command, args []string) error {
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

	txnHash, err := rpc.TransactionHash(txn, cfg.Network.ChainID())
	if err != nil {
		return err
	}
	log.Debugw("Calculated transaction hash", "network", cfg.Network, "hash", txnHash)

	_, err = fmt.Fprintln(cmd.OutOrStdout(), txnHash)
	return err
}
