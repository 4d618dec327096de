package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd(ctx context.Context, logger *zap.Logger, level zap.AtomicLevel) *cobra.Command {
	root := &cobra.Command{
		Use:           "nekopage",
		Short:         "Serve a page with a random cat",
		Long:          `nekopage renders a page with a random cat image from thecatapi.com and swaps it for a new one on every button click.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(ctx, logger, level))
	return root
}

// Execute runs the command line. It returns the process exit code.
func Execute(ctx context.Context, logger *zap.Logger, level zap.AtomicLevel) int {
	root := newRootCmd(ctx, logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("execution failed", zap.Error(err))
		return 1
	}
	return 0
}
