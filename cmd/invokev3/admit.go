package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/NethermindEth/invokev3/config"
	"github.com/NethermindEth/invokev3/mempool"
	"github.com/NethermindEth/invokev3/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func AdmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admit <file>",
		Short: "Admit a batch of submitted transactions",
		Long: `This subcommand decodes a JSON array of submitted INVOKE v3 transactions, hashes, validates ` +
			`and converts them concurrently, and reports the outcome of each one.`,
		Args: cobra.ExactArgs(1),
		RunE: admit,
	}

	cmd.Flags().Bool(onlyQueryF, false, onlyQueryUsage)
	cmd.Flags().Int(workersF, config.DefaultWorkers, workersUsage)
	cmd.Flags().Int(cacheSizeF, config.DefaultCacheSize, cacheSizeUsage)
	cmd.Flags().Duration(cacheTTLF, config.DefaultCacheTTL, cacheTTLUsage)
	return cmd
}

func admit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	txns, err := readTransactions(args[0])
	if err != nil {
		return err
	}

	admitter := mempool.NewAdmitter(cfg.Network, log).
		WithWorkers(cfg.Workers).
		WithOnlyQuery(cfg.OnlyQuery).
		WithDuplicateDetection(cfg.CacheSize, cfg.CacheTTL)

	reg := prometheus.NewRegistry()
	if err = admitter.RegisterMetrics(reg); err != nil {
		return err
	}

	results, err := admitter.Admit(cmd.Context(), txns)
	if err != nil {
		return err
	}

	writeResults(cmd.OutOrStdout(), results)
	return logSummary(log, reg)
}

func writeResults(w io.Writer, results []mempool.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Result", "Transaction hash"})
	table.SetAutoWrapText(false)
	for i, result := range results {
		row := []string{strconv.Itoa(i), "admitted", ""}
		if result.Err != nil {
			row[1] = "error: " + result.Err.Error()
		} else {
			row[2] = result.Transaction.Hash().String()
		}
		table.Append(row)
	}
	table.Render()
}

// logSummary logs the admission counters gathered from reg
func logSummary(log utils.SimpleLogger, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var keysAndValues []any
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if metric.GetCounter() == nil {
				continue
			}
			for _, label := range metric.GetLabel() {
				keysAndValues = append(keysAndValues, label.GetValue(), metric.GetCounter().GetValue())
			}
		}
	}
	log.Infow("Batch admitted", keysAndValues...)
	return nil
}
