package cli

import (
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xenking/kart-pricing/internal/batch"
)

func newBatchCmd(load serviceLoader) *cobra.Command {
	var (
		in, out string
		opts    batch.Options
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Price an NDJSON file of quote requests",
		Long: "Reads one quote request per line and writes one result per line in input order.\n" +
			"Files ending in .gz are read and written with parallel gzip.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lg, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer func() { _ = lg.Sync() }()

			svc, err := load()
			if err != nil {
				return err
			}

			src, closeSrc, err := openInput(cmd, in)
			if err != nil {
				return err
			}
			defer closeSrc()

			dst, closeDst, err := openOutput(cmd, out)
			if err != nil {
				return err
			}

			opts.GzipInput = opts.GzipInput || strings.HasSuffix(in, ".gz")
			opts.GzipOutput = opts.GzipOutput || strings.HasSuffix(out, ".gz")

			ctx := zctx.Base(cmd.Context(), lg)
			stats, runErr := batch.Run(ctx, svc, opts, src, dst)
			if err := closeDst(); err != nil && runErr == nil {
				runErr = errors.Wrap(err, "close output")
			}
			if runErr != nil {
				return runErr
			}
			if stats.Failed > 0 {
				lg.Warn("Some lines failed", zap.Int("failed", stats.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "-", "input file, - for stdin")
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "concurrent quotes")
	cmd.Flags().BoolVar(&opts.GzipInput, "gzip-in", false, "input is gzip-compressed")
	cmd.Flags().BoolVar(&opts.GzipOutput, "gzip-out", false, "compress output with gzip")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	lg, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return lg, nil
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "create %s", path)
	}
	return f, f.Close, nil
}
