package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type stressOptions struct {
	writers  int
	readers  int
	duration time.Duration
	step     time.Duration
	weights  []string
}

func (c *cli) newStressCmd() *cobra.Command {
	opts := &stressOptions{}
	cmd := &cobra.Command{
		Use:   "stress FILE",
		Short: "Change blend weights concurrently with running playbacks",
		Long: `Loads FILE and runs --writers goroutines that keep setting random blend weights
while --readers goroutines each advance and apply their own playback of the
same blend group. Every sample is checked for normalized weights outside
[0, 1], invalid time factors, and non-finite values.

Exits with an error if any invalid sample was seen.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStress(cmd, args[0], opts)
		},
	}
	cmd.Flags().IntVar(&opts.writers, "writers", 2, "weight writer goroutines")
	cmd.Flags().IntVar(&opts.readers, "readers", 4, "playback reader goroutines")
	cmd.Flags().DurationVar(&opts.duration, "for", time.Second, "how long to run")
	cmd.Flags().DurationVar(&opts.step, "step", time.Millisecond, "playback time advanced per sample")
	cmd.Flags().StringArrayVarP(&opts.weights, "weight", "w", nil, "initial blend weight as clip=weight (repeatable)")
	return cmd
}

func (c *cli) runStress(cmd *cobra.Command, path string, opts *stressOptions) error {
	if opts.writers < 0 || opts.readers < 1 {
		return fmt.Errorf("need at least one reader and no negative writer count")
	}
	set, err := c.loadBlendSet(path, opts.weights)
	if err != nil {
		return err
	}
	g := set.Group
	entries := g.Len()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.duration)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	var writes, reads, invalid atomic.Int64
	for w := range opts.writers {
		eg.Go(func() error {
			r := rand.New(rand.NewPCG(uint64(w), uint64(time.Now().UnixNano())))
			for ctx.Err() == nil {
				// One in eight writes zeroes a weight so empty groups are exercised too.
				weight := r.Float32() * 2
				if r.IntN(8) == 0 {
					weight = 0
				}
				if err := g.SetWeight(r.IntN(entries), weight); err != nil {
					return err
				}
				writes.Add(1)
			}
			return nil
		})
	}
	for reader := range opts.readers {
		eg.Go(func() error {
			target := set.NewTarget()
			inst, err := g.NewInstance()
			if err != nil {
				return err
			}
			defer inst.Stop()
			inst.Bind(target)
			for ctx.Err() == nil {
				inst.AdvanceTime(opts.step)
				if err := inst.Apply(); err != nil {
					return fmt.Errorf("reader %d: %w", reader, err)
				}
				reads.Add(1)
				if !validSample(g, target) {
					if invalid.Add(1) == 1 {
						at, _ := inst.Time()
						c.logger.Warn("invalid sample", zap.Int("reader", reader), zap.Duration("time", at))
					}
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d writers, %d readers, %v: %d weight writes, %d samples, %d invalid\n",
		set.Name, opts.writers, opts.readers, opts.duration, writes.Load(), reads.Load(), invalid.Load())
	if n := invalid.Load(); n > 0 {
		return fmt.Errorf("%d invalid samples", n)
	}
	return nil
}
