// Command oxyblend loads blend set documents and samples, plays, or stress tests their
// synchronized blend groups.
package main

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cli holds the global flags and the logger shared by the subcommands.
type cli struct {
	verbose bool
	logger  *zap.Logger
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "oxyblend",
		Short: "Sample and play synchronized animation blend sets",
		Long: `oxyblend loads a YAML blend set (a skeleton, clips, and the blend group that
mixes them) and drives it without a renderer.

Clips in a synchronized group are time-scaled so they all finish one cycle
together; the cycle length follows the blend weights.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if c.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			common.SetLogger(logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		c.newSampleCmd(),
		c.newPlayCmd(),
		c.newStressCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
