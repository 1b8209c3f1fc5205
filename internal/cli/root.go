// Package cli implements the pricing command-line tool.
package cli

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/xenking/kart-pricing/internal/app"
	"github.com/xenking/kart-pricing/internal/quote"
)

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "pricing",
		Short:         "Price carts under discount promotions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (defaults to config.yaml, /etc/pricing/config.yaml)")

	load := func() (*quote.Service, error) {
		files := app.DefaultFiles
		if configFile != "" {
			files = []string{configFile}
		}
		cfg, err := app.LoadConfigFiles(files...)
		if err != nil {
			return nil, err
		}
		promotions, err := cfg.Promotions.Registry()
		if err != nil {
			return nil, err
		}
		svc, err := quote.NewService(promotions, otel.GetTracerProvider(), otel.GetMeterProvider())
		if err != nil {
			return nil, errors.Wrap(err, "create quote service")
		}
		return svc, nil
	}

	cmd.AddCommand(newDemoCmd(load))
	cmd.AddCommand(newBatchCmd(load))
	return cmd
}

// serviceLoader builds the quote service from configuration.
type serviceLoader func() (*quote.Service, error)

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
