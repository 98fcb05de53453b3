package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type sampleOptions struct {
	at      []time.Duration
	weights []string
}

func (c *cli) newSampleCmd() *cobra.Command {
	opts := &sampleOptions{}
	cmd := &cobra.Command{
		Use:   "sample FILE",
		Short: "Print the blended values of a blend set at given times",
		Long: `Loads FILE, creates one playback of its blend group, and prints every bound
property at each time given with --at.

Example:
  oxyblend sample examples/locomotion.yaml --at 0s,250ms,500ms --weight run=0.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSample(cmd, args[0], opts)
		},
	}
	cmd.Flags().DurationSliceVar(&opts.at, "at", []time.Duration{0}, "times to sample, comma separated")
	cmd.Flags().StringArrayVarP(&opts.weights, "weight", "w", nil, "blend weight override as clip=weight (repeatable)")
	return cmd
}

func (c *cli) runSample(cmd *cobra.Command, path string, opts *sampleOptions) error {
	set, err := c.loadBlendSet(path, opts.weights)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printGroup(out, set)

	target := set.NewTarget()
	inst, err := set.Group.NewInstance()
	if err != nil {
		return err
	}
	defer inst.Stop()
	bound := inst.Bind(target)
	c.logger.Debug("sampling", zap.String("path", path), zap.Durations("at", opts.at))

	for _, t := range opts.at {
		inst.SetTime(t)
		if err := inst.Apply(); err != nil {
			return fmt.Errorf("sample at %v: %w", t, err)
		}
		fmt.Fprintf(out, "%v %s (%d properties)\n", t, inst.State(), bound)
		printTarget(out, set, target)
	}
	return nil
}
