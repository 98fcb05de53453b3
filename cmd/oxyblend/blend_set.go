package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
	"github.com/Carmen-Shannon/oxy-blend/engine/loader"
)

// loadBlendSet loads the document at path and applies "clip=weight" overrides. The clip
// may be named or given by entry index.
func (c *cli) loadBlendSet(path string, weights []string) (*loader.BlendSet, error) {
	set, err := loader.NewLoader(loader.BackendTypeYAML, loader.WithLogger(c.logger)).Load(path)
	if err != nil {
		return nil, err
	}
	for _, arg := range weights {
		clip, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("weight %q: want clip=weight", arg)
		}
		w, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", arg, err)
		}
		if i, convErr := strconv.Atoi(clip); convErr == nil {
			err = set.Group.SetWeight(i, float32(w))
		} else {
			err = set.SetWeight(clip, float32(w))
		}
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", arg, err)
		}
	}
	return set, nil
}

// printGroup writes the weights and synchronization state of a blend set.
func printGroup(w io.Writer, set *loader.BlendSet) {
	g := set.Group
	if d, ok := g.SynchronizedDuration(); ok {
		fmt.Fprintf(w, "%s: synchronized cycle %v\n", set.Name, d)
	} else {
		fmt.Fprintf(w, "%s: cycle %v\n", set.Name, g.DefaultDuration())
	}
	for i, name := range set.Clips() {
		weight, _ := g.GetWeight(i)
		nw, _ := g.GetNormalizedWeight(i)
		f, _ := g.GetTimeNormalizationFactor(i)
		fmt.Fprintf(w, "  %-10s weight %.3g normalized %.3f factor %.3f\n", name, weight, nw, f)
	}
}

// printTarget writes every curve property and bone transform of target.
func printTarget(w io.Writer, set *loader.BlendSet, target *loader.Target) {
	for _, name := range target.Properties.Names() {
		if v, ok := target.Scalar(name); ok {
			fmt.Fprintf(w, "  %s = %s\n", name, formatFloats(v))
		} else if v, ok := target.Vector3(name); ok {
			fmt.Fprintf(w, "  %s = %s\n", name, formatFloats(v[:]...))
		}
	}
	if target.Pose == nil {
		return
	}
	for _, b := range set.Skeleton.Bones {
		tr, _ := target.Pose.BoneTransform(b.Name)
		fmt.Fprintf(w, "  %s.translation = %s\n", b.Name, formatFloats(tr.Translation[:]...))
		fmt.Fprintf(w, "  %s.rotation = %s\n", b.Name, formatFloats(tr.Rotation[:]...))
	}
}

func formatFloats(v ...float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		// Avoid printing -0.
		parts[i] = strconv.FormatFloat(float64(f)+0, 'g', 4, 32)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// validSample reports whether the group's weights and the target's values are usable: every
// normalized weight in [0, 1], every factor finite and non-negative, every value finite.
func validSample(g *animation.BlendGroup, target *loader.Target) bool {
	for i := range g.Len() {
		nw, err := g.GetNormalizedWeight(i)
		if err != nil || !(nw >= 0 && nw <= 1) {
			return false
		}
		f, err := g.GetTimeNormalizationFactor(i)
		if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	for _, name := range target.Properties.Names() {
		if v, ok := target.Scalar(name); ok && !common.IsFinite32(v) {
			return false
		}
		if v, ok := target.Vector3(name); ok && !allFinite(v[:]...) {
			return false
		}
	}
	if target.Pose != nil {
		for _, tr := range target.Pose.Current().Transforms {
			if !allFinite(tr.Translation[:]...) || !allFinite(tr.Rotation[:]...) || !allFinite(tr.Scale[:]...) {
				return false
			}
		}
	}
	return true
}

func allFinite(v ...float32) bool {
	for _, f := range v {
		if !common.IsFinite32(f) {
			return false
		}
	}
	return true
}
