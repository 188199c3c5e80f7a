package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cupcakehq/pos/internal/basket"
	"github.com/cupcakehq/pos/internal/bill"
	"github.com/cupcakehq/pos/internal/config"
	"github.com/cupcakehq/pos/internal/obs"
	"github.com/cupcakehq/pos/internal/store"
	"github.com/cupcakehq/pos/internal/tax"
	"github.com/cupcakehq/pos/internal/terminal"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "pos",
		Short: "Single-terminal point-of-sale: baskets, bills and tax rollups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the pos version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("pos", version)
		},
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().
		Str("env", cfg.AppEnv).
		Str("session_id", uuid.NewString()).
		Logger()

	handles, err := store.Initialize(store.Paths{Bills: cfg.BillsDir, Tax: cfg.TaxDir}, logger)
	if err != nil {
		return err
	}

	session := &terminal.Session{
		In:      bufio.NewScanner(os.Stdin),
		Out:     os.Stdout,
		Basket:  basket.New(),
		Bills:   &bill.Service{Store: handles.Bills, Log: logger},
		Tax:     &tax.Service{Bills: handles.Bills, Tax: handles.Tax, Log: logger},
		TaxRate: cfg.TaxRatePercent,
		Log:     logger,
	}
	logger.Info().Str("bills_dir", cfg.BillsDir).Str("tax_dir", cfg.TaxDir).Msg("session started")
	return session.Run(ctx)
}
