package animation

import (
	"fmt"
	"slices"
	"time"
)

// AnimationGroup bundles timelines that play together, such as the bone tracks and curve
// tracks of one clip. Children are evaluated with the parent-local time passed to the group;
// the group adds no delay or speed of its own. It plays for as long as its longest child.
type AnimationGroup struct {
	timelines    []Timeline
	FillBehavior FillBehavior
}

var _ TimelineGroup = &AnimationGroup{}

// NewAnimationGroup creates a group from the given timelines. Nil entries are skipped.
func NewAnimationGroup(timelines ...Timeline) *AnimationGroup {
	g := &AnimationGroup{timelines: make([]Timeline, 0, len(timelines))}
	for _, tl := range timelines {
		if tl != nil {
			g.timelines = append(g.timelines, tl)
		}
	}
	return g
}

// Add appends a child timeline.
//
// Parameters:
//   - tl: the timeline to add
//
// Returns:
//   - error: ErrInvalidArgument if tl is nil
func (g *AnimationGroup) Add(tl Timeline) error {
	if tl == nil {
		return fmt.Errorf("animation group: nil timeline: %w", ErrInvalidArgument)
	}
	g.timelines = append(g.timelines, tl)
	return nil
}

// Len returns the number of children.
func (g *AnimationGroup) Len() int {
	return len(g.timelines)
}

func (g *AnimationGroup) Timelines() []Timeline {
	return slices.Clone(g.timelines)
}

func (g *AnimationGroup) duration() time.Duration {
	var longest time.Duration
	for _, tl := range g.timelines {
		longest = max(longest, tl.GetTotalDuration())
	}
	return longest
}

func (g *AnimationGroup) timing() Timing {
	tm := DefaultTiming()
	tm.FillBehavior = g.FillBehavior
	return tm
}

func (g *AnimationGroup) GetState(t time.Duration) AnimationState {
	return g.timing().State(t, g.duration())
}

func (g *AnimationGroup) GetAnimationTime(t time.Duration) (time.Duration, bool) {
	d := g.duration()
	return g.timing().AnimationTime(t, d, d)
}

func (g *AnimationGroup) GetTotalDuration() time.Duration {
	return g.duration()
}
