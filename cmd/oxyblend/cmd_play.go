package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/engine"
	"github.com/Carmen-Shannon/oxy-blend/engine/animator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type playOptions struct {
	duration time.Duration
	rate     float64
	weights  []string
	fade     string
	profile  bool
	workers  int
}

func (c *cli) newPlayCmd() *cobra.Command {
	opts := &playOptions{}
	cmd := &cobra.Command{
		Use:   "play FILE",
		Short: "Play a blend set on the headless engine",
		Long: `Loads FILE and plays its blend group on the engine's fixed-rate tick loop for
the --for duration (or until interrupted), then prints the final values.

With --fade CLIP the weight of CLIP is ramped from its current value to 1
while every other clip fades to 0 over the run, which changes the
synchronized cycle length during playback.

Example:
  oxyblend play examples/locomotion.yaml --for 3s --rate 120 --fade run --profile`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlay(cmd, args[0], opts)
		},
	}
	cmd.Flags().DurationVar(&opts.duration, "for", 2*time.Second, "wall-clock playing time")
	cmd.Flags().Float64Var(&opts.rate, "rate", engine.DefaultTickRate, "ticks per second")
	cmd.Flags().StringArrayVarP(&opts.weights, "weight", "w", nil, "blend weight override as clip=weight (repeatable)")
	cmd.Flags().StringVar(&opts.fade, "fade", "", "clip to fade in over the run")
	cmd.Flags().BoolVar(&opts.profile, "profile", false, "log profiler stats every second")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "animator workers (0 for one per spare CPU)")
	return cmd
}

func (c *cli) runPlay(cmd *cobra.Command, path string, opts *playOptions) error {
	if opts.duration <= 0 {
		return fmt.Errorf("--for must be positive")
	}
	set, err := c.loadBlendSet(path, opts.weights)
	if err != nil {
		return err
	}
	fade := -1
	var start []float32
	if opts.fade != "" {
		if fade = set.ClipIndex(opts.fade); fade < 0 {
			return fmt.Errorf("--fade: blend set %q has no clip %q", set.Name, opts.fade)
		}
		for i := range set.Group.Len() {
			w, _ := set.Group.GetWeight(i)
			start = append(start, w)
		}
	}

	a := animator.NewAnimator(animator.WithLogger(c.logger), animator.WithWorkers(opts.workers))
	defer a.Release()
	target := set.NewTarget()
	id, err := a.Play(set.Group, target)
	if err != nil {
		return err
	}

	began := time.Now()
	e := engine.NewEngine(
		engine.WithTickRate(opts.rate),
		engine.WithAnimator(0, a),
		engine.WithLogger(c.logger),
		engine.WithProfiling(opts.profile),
		engine.WithTickCallback(func(float32) {
			if fade < 0 {
				return
			}
			p := min(float32(time.Since(began).Seconds()/opts.duration.Seconds()), 1)
			for i, w := range start {
				goal := float32(0)
				if i == fade {
					goal = 1
				}
				if err := set.Group.SetWeight(i, w+(goal-w)*p); err != nil {
					c.logger.Warn("fade weight rejected", zap.Int("entry", i), zap.Error(err))
				}
			}
		}),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.duration)
	defer cancel()
	go func() {
		<-ctx.Done()
		e.Quit()
	}()

	if err := e.Run(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	inst := a.Instance(id)
	at, _ := inst.Time()
	fmt.Fprintf(out, "%d ticks, playback time %v, %s\n", e.Ticks(), at.Round(time.Millisecond), inst.State())
	printGroup(out, set)
	printTarget(out, set, target)
	return nil
}
