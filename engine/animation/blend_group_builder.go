package animation

import (
	"errors"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"go.uber.org/zap"
)

// BlendGroupBuilderOption is a functional option for configuring a BlendGroup during construction.
type BlendGroupBuilderOption func(*BlendGroup)

// WithTimelines is an option builder that adds timelines with weight 1.
//
// Parameters:
//   - timelines: the entries to add, in order
//
// Returns:
//   - BlendGroupBuilderOption: a function that adds the entries to a blend group
func WithTimelines(timelines ...Timeline) BlendGroupBuilderOption {
	return func(g *BlendGroup) {
		for _, tl := range timelines {
			g.buildErr = errors.Join(g.buildErr, g.Add(tl))
		}
	}
}

// WithWeightedTimeline is an option builder that adds one timeline with the given weight.
//
// Parameters:
//   - tl: the entry to add
//   - weight: its initial weight
//
// Returns:
//   - BlendGroupBuilderOption: a function that adds the entry to a blend group
func WithWeightedTimeline(tl Timeline, weight float32) BlendGroupBuilderOption {
	return func(g *BlendGroup) {
		g.buildErr = errors.Join(g.buildErr, g.AddWithWeight(tl, weight))
	}
}

// WithDurationSynchronization is an option builder that enables duration synchronization.
// The entry durations are cached when the option runs, so pass it after the entries.
//
// Returns:
//   - BlendGroupBuilderOption: a function that enables synchronization on a blend group
func WithDurationSynchronization() BlendGroupBuilderOption {
	return func(g *BlendGroup) {
		g.buildErr = errors.Join(g.buildErr, g.EnableDurationSynchronization())
	}
}

// WithDelay is an option builder that sets the start delay.
func WithDelay(delay time.Duration) BlendGroupBuilderOption {
	return func(g *BlendGroup) {
		g.buildErr = errors.Join(g.buildErr, g.SetDelay(delay))
	}
}

// WithSpeed is an option builder that sets the playback speed.
func WithSpeed(speed float32) BlendGroupBuilderOption {
	return func(g *BlendGroup) {
		g.buildErr = errors.Join(g.buildErr, g.SetSpeed(speed))
	}
}

// WithFillBehavior is an option builder that sets the fill behavior.
func WithFillBehavior(fill FillBehavior) BlendGroupBuilderOption {
	return func(g *BlendGroup) {
		g.buildErr = errors.Join(g.buildErr, g.SetFillBehavior(fill))
	}
}

// WithLoopBehavior is an option builder that sets the loop behavior.
func WithLoopBehavior(loop LoopBehavior) BlendGroupBuilderOption {
	return func(g *BlendGroup) {
		g.buildErr = errors.Join(g.buildErr, g.SetLoopBehavior(loop))
	}
}

// WithDuration is an option builder that sets an explicit active duration.
func WithDuration(d time.Duration) BlendGroupBuilderOption {
	return func(g *BlendGroup) {
		g.buildErr = errors.Join(g.buildErr, g.SetDuration(d))
	}
}

// WithInstancePool is an option builder that makes the group take its playback instances
// from a shared pool.
//
// Parameters:
//   - pool: a pool created by NewInstancePool
//
// Returns:
//   - BlendGroupBuilderOption: a function that sets the instance pool of a blend group
func WithInstancePool(pool *common.Pool[*BlendGroupInstance]) BlendGroupBuilderOption {
	return func(g *BlendGroup) {
		g.instancePool = pool
	}
}

// WithLogger is an option builder that sets the logger of the group. Defaults to common.Logger.
func WithLogger(logger *zap.Logger) BlendGroupBuilderOption {
	return func(g *BlendGroup) {
		g.logger = logger
	}
}

// NewInstancePool creates a pool of blend group playback instances.
func NewInstancePool() *common.Pool[*BlendGroupInstance] {
	return common.NewPool(
		func() *BlendGroupInstance { return &BlendGroupInstance{} },
		func(inst *BlendGroupInstance) { inst.reset() },
	)
}
