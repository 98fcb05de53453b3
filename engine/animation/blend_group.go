package animation

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"go.uber.org/zap"
)

// WeightPropertyPrefix names the animatable weights of a blend group: "Weight0", "Weight1", ...
const WeightPropertyPrefix = "Weight"

// BlendGroup plays several timelines at once and blends their values per target property.
//
// Every entry has a weight. Weights are normalized to sum to 1 before blending. With duration
// synchronization enabled, the group also stretches every entry to a common synchronized
// duration: the weighted sum of the entry durations. Entry i then runs at d_i/D of the group
// time, so a walk cycle and a run cycle stay in phase while the blend moves between them.
//
// Weights may be changed from any goroutine at any time. The entry list and the timing may
// only be changed while no playback instance is attached; structural changes during
// playback fail with ErrInvalidOperation.
//
// Normalized weights and time factors are published one scalar at a time. A reader racing a
// recompute can see some entries from the old assignment and some from the new one; every
// single value it sees is finite and non-negative.
type BlendGroup struct {
	// mu guards the recompute; the derived values themselves are read atomically.
	mu      sync.Mutex
	entries []blendEntry
	weights []float32

	timing      Timing
	duration    time.Duration
	hasDuration bool

	syncDurations bool
	isDirty       atomic.Bool
	synchronized  atomic.Bool
	syncDuration  atomic.Int64

	tableMu         sync.Mutex
	blendAnimations map[string]BlendedAnimation

	activeInstances atomic.Int32
	instancePool    *common.Pool[*BlendGroupInstance]
	logger          *zap.Logger
	buildErr        error
}

type blendEntry struct {
	timeline   Timeline
	weight     *BlendWeight
	duration   time.Duration
	normalized atomic.Uint32
	factor     atomic.Uint64
}

var (
	_ Timeline         = &BlendGroup{}
	_ AnimatableObject = &BlendGroup{}
	_ Playable         = &BlendGroup{}
)

// NewBlendGroup creates an empty blend group with default timing.
//
// Parameters:
//   - options: functional options applied in order
//
// Returns:
//   - *BlendGroup: the group
//   - error: the errors of every invalid option joined, each wrapping ErrInvalidArgument
func NewBlendGroup(options ...BlendGroupBuilderOption) (*BlendGroup, error) {
	g := &BlendGroup{
		timing: DefaultTiming(),
	}
	for _, opt := range options {
		opt(g)
	}
	if g.buildErr != nil {
		return nil, g.buildErr
	}
	if g.instancePool == nil {
		g.instancePool = NewInstancePool()
	}
	return g, nil
}

func (g *BlendGroup) log() *zap.Logger {
	if g.logger != nil {
		return g.logger
	}
	return common.Logger()
}

// invalidate marks the derived weights and durations stale.
func (g *BlendGroup) invalidate() {
	g.isDirty.Store(true)
}

func (g *BlendGroup) checkMutable(op string) error {
	if n := g.activeInstances.Load(); n > 0 {
		return fmt.Errorf("blend group %s: %d playback instance(s) attached: %w", op, n, ErrInvalidOperation)
	}
	return nil
}

func (g *BlendGroup) checkIndex(op string, index, limit int) error {
	if index < 0 || index >= limit {
		return fmt.Errorf("blend group %s: index %d not in [0, %d): %w", op, index, limit, ErrIndexOutOfRange)
	}
	return nil
}

func validateWeight(op string, weight float32) error {
	if weight < 0 || !common.IsFinite32(weight) {
		return fmt.Errorf("blend group %s: weight %v must be finite and non-negative: %w", op, weight, ErrInvalidArgument)
	}
	return nil
}

// structureChanged drops the blend table and marks the group dirty after an entry change.
func (g *BlendGroup) structureChanged() {
	g.tableMu.Lock()
	g.blendAnimations = nil
	g.tableMu.Unlock()
	g.invalidate()
}

// Len returns the number of entries.
func (g *BlendGroup) Len() int {
	return len(g.entries)
}

// Timeline returns the timeline of entry index, or nil when out of range.
func (g *BlendGroup) Timeline(index int) Timeline {
	if index < 0 || index >= len(g.entries) {
		return nil
	}
	return g.entries[index].timeline
}

// Timelines returns the entry timelines in order.
func (g *BlendGroup) Timelines() []Timeline {
	out := make([]Timeline, len(g.entries))
	for i := range g.entries {
		out[i] = g.entries[i].timeline
	}
	return out
}

// IndexOf returns the index of the first entry holding tl, or -1.
func (g *BlendGroup) IndexOf(tl Timeline) int {
	if tl == nil {
		return -1
	}
	for i := range g.entries {
		if g.entries[i].timeline == tl {
			return i
		}
	}
	return -1
}

// Contains reports whether tl is an entry of the group.
func (g *BlendGroup) Contains(tl Timeline) bool {
	return g.IndexOf(tl) >= 0
}

// Add appends tl with weight 1.
//
// Parameters:
//   - tl: the timeline to add
//
// Returns:
//   - error: ErrInvalidArgument for a nil timeline, ErrInvalidOperation during playback
func (g *BlendGroup) Add(tl Timeline) error {
	return g.AddWithWeight(tl, 1)
}

// AddWithWeight appends tl with the given weight.
//
// Parameters:
//   - tl: the timeline to add
//   - weight: the initial weight, finite and non-negative
//
// Returns:
//   - error: ErrInvalidArgument for a nil timeline or invalid weight, ErrInvalidOperation during playback
func (g *BlendGroup) AddWithWeight(tl Timeline, weight float32) error {
	if tl == nil {
		return fmt.Errorf("blend group add: nil timeline: %w", ErrInvalidArgument)
	}
	if err := validateWeight("add", weight); err != nil {
		return err
	}
	if err := g.checkMutable("add"); err != nil {
		return err
	}
	g.insert(len(g.entries), tl, weight)
	return nil
}

// Insert inserts tl with weight 1 before entry index. index may equal Len.
//
// Parameters:
//   - index: the insert position
//   - tl: the timeline to insert
//
// Returns:
//   - error: ErrInvalidArgument or ErrIndexOutOfRange for bad input, ErrInvalidOperation during playback
func (g *BlendGroup) Insert(index int, tl Timeline) error {
	if tl == nil {
		return fmt.Errorf("blend group insert: nil timeline: %w", ErrInvalidArgument)
	}
	if err := g.checkIndex("insert", index, len(g.entries)+1); err != nil {
		return err
	}
	if err := g.checkMutable("insert"); err != nil {
		return err
	}
	g.insert(index, tl, 1)
	return nil
}

func (g *BlendGroup) insert(index int, tl Timeline, weight float32) {
	g.mu.Lock()
	g.entries = append(g.entries, blendEntry{})
	copy(g.entries[index+1:], g.entries[index:])
	e := &g.entries[index]
	e.timeline = tl
	e.weight = newBlendWeight(g, weight)
	e.duration = 0
	if g.syncDurations {
		e.duration = tl.GetTotalDuration()
	}
	e.normalized.Store(0)
	e.factor.Store(math.Float64bits(1))
	g.mu.Unlock()
	g.structureChanged()
}

// Set replaces the timeline of entry index and keeps its weight.
//
// Parameters:
//   - index: the entry to replace
//   - tl: the new timeline
//
// Returns:
//   - error: ErrInvalidArgument or ErrIndexOutOfRange for bad input, ErrInvalidOperation during playback
func (g *BlendGroup) Set(index int, tl Timeline) error {
	if tl == nil {
		return fmt.Errorf("blend group set: nil timeline: %w", ErrInvalidArgument)
	}
	if err := g.checkIndex("set", index, len(g.entries)); err != nil {
		return err
	}
	if err := g.checkMutable("set"); err != nil {
		return err
	}
	g.mu.Lock()
	e := &g.entries[index]
	e.timeline = tl
	if g.syncDurations {
		e.duration = tl.GetTotalDuration()
	}
	g.mu.Unlock()
	g.structureChanged()
	return nil
}

// RemoveAt removes entry index. Its weight is detached and no longer affects the group.
//
// Parameters:
//   - index: the entry to remove
//
// Returns:
//   - error: ErrIndexOutOfRange for a bad index, ErrInvalidOperation during playback
func (g *BlendGroup) RemoveAt(index int) error {
	if err := g.checkIndex("remove", index, len(g.entries)); err != nil {
		return err
	}
	if err := g.checkMutable("remove"); err != nil {
		return err
	}
	g.mu.Lock()
	g.entries[index].weight.detach()
	last := len(g.entries) - 1
	copy(g.entries[index:], g.entries[index+1:])
	g.entries[last] = blendEntry{}
	g.entries = g.entries[:last]
	g.mu.Unlock()
	g.structureChanged()
	return nil
}

// Remove removes the first entry holding tl.
//
// Returns:
//   - bool: true if an entry was removed
//   - error: ErrInvalidOperation during playback
func (g *BlendGroup) Remove(tl Timeline) (bool, error) {
	i := g.IndexOf(tl)
	if i < 0 {
		return false, nil
	}
	if err := g.RemoveAt(i); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes every entry.
//
// Returns:
//   - error: ErrInvalidOperation during playback
func (g *BlendGroup) Clear() error {
	if err := g.checkMutable("clear"); err != nil {
		return err
	}
	g.mu.Lock()
	for i := range g.entries {
		g.entries[i].weight.detach()
		g.entries[i] = blendEntry{}
	}
	g.entries = g.entries[:0]
	g.mu.Unlock()
	g.structureChanged()
	return nil
}

// Weight returns the animatable weight of entry index, or nil when out of range.
func (g *BlendGroup) Weight(index int) *BlendWeight {
	if index < 0 || index >= len(g.entries) {
		return nil
	}
	return g.entries[index].weight
}

// GetWeight returns the effective weight of entry index.
//
// Returns:
//   - float32: the weight
//   - error: ErrIndexOutOfRange for a bad index
func (g *BlendGroup) GetWeight(index int) (float32, error) {
	if err := g.checkIndex("get weight", index, len(g.entries)); err != nil {
		return 0, err
	}
	return g.entries[index].weight.Value(), nil
}

// SetWeight sets the base weight of entry index. Safe to call from any goroutine during
// playback. Nothing changes when it fails.
//
// Parameters:
//   - index: the entry
//   - weight: the new weight, finite and non-negative
//
// Returns:
//   - error: ErrInvalidArgument for an invalid weight, ErrIndexOutOfRange for a bad index
func (g *BlendGroup) SetWeight(index int, weight float32) error {
	if err := validateWeight("set weight", weight); err != nil {
		return err
	}
	if err := g.checkIndex("set weight", index, len(g.entries)); err != nil {
		return err
	}
	g.entries[index].weight.SetBaseValue(weight)
	return nil
}

// SetWeightOf sets the base weight of the entry holding tl.
//
// Returns:
//   - error: ErrInvalidArgument for an invalid weight or a timeline that is not an entry
func (g *BlendGroup) SetWeightOf(tl Timeline, weight float32) error {
	if err := validateWeight("set weight", weight); err != nil {
		return err
	}
	i := g.IndexOf(tl)
	if i < 0 {
		return fmt.Errorf("blend group set weight: timeline is not an entry: %w", ErrInvalidArgument)
	}
	return g.SetWeight(i, weight)
}

// GetNormalizedWeight returns the weight of entry index divided by the sum of all weights.
//
// Returns:
//   - float32: the normalized weight in [0, 1]
//   - error: ErrIndexOutOfRange for a bad index
func (g *BlendGroup) GetNormalizedWeight(index int) (float32, error) {
	if err := g.checkIndex("get normalized weight", index, len(g.entries)); err != nil {
		return 0, err
	}
	g.Update()
	return g.normalizedWeight(index), nil
}

// GetTimeNormalizationFactor returns d_i/D for entry index, or 1 when durations are not
// synchronized.
//
// Returns:
//   - float64: the factor applied to the group time for this entry
//   - error: ErrIndexOutOfRange for a bad index
func (g *BlendGroup) GetTimeNormalizationFactor(index int) (float64, error) {
	if err := g.checkIndex("get time normalization factor", index, len(g.entries)); err != nil {
		return 0, err
	}
	g.Update()
	return g.timeNormalizationFactor(index), nil
}

func (g *BlendGroup) normalizedWeight(index int) float32 {
	if index >= len(g.entries) {
		return 0
	}
	return math.Float32frombits(g.entries[index].normalized.Load())
}

func (g *BlendGroup) timeNormalizationFactor(index int) float64 {
	if index >= len(g.entries) {
		return 1
	}
	return math.Float64frombits(g.entries[index].factor.Load())
}

// EnableDurationSynchronization turns duration synchronization on and caches the current
// total duration of every entry. Call it again after an entry's own duration changes.
// Synchronization cannot be turned off again.
//
// Returns:
//   - error: ErrInvalidOperation during playback
func (g *BlendGroup) EnableDurationSynchronization() error {
	if err := g.checkMutable("synchronize durations"); err != nil {
		return err
	}
	g.mu.Lock()
	g.syncDurations = true
	for i := range g.entries {
		g.entries[i].duration = g.entries[i].timeline.GetTotalDuration()
	}
	g.mu.Unlock()
	g.invalidate()
	return nil
}

// IsDurationSynchronizationEnabled reports whether EnableDurationSynchronization was called.
func (g *BlendGroup) IsDurationSynchronizationEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.syncDurations
}

// IsSynchronized reports whether the entries currently run at synchronized speed. This is
// false when synchronization is off or every weighted entry has zero duration.
func (g *BlendGroup) IsSynchronized() bool {
	g.Update()
	return g.synchronized.Load()
}

// SynchronizedDuration returns the current synchronized duration D.
//
// Returns:
//   - time.Duration: D, or 0
//   - bool: whether the group is synchronized
func (g *BlendGroup) SynchronizedDuration() (time.Duration, bool) {
	g.Update()
	if !g.synchronized.Load() {
		return 0, false
	}
	return time.Duration(g.syncDuration.Load()), true
}

// Update recomputes the normalized weights and synchronized duration if any weight changed
// since the last call. Safe to call from any goroutine; evaluation calls it implicitly.
func (g *BlendGroup) Update() {
	if !g.isDirty.Load() {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	// Clear before recomputing so a weight written during the recompute marks the group
	// dirty again instead of being lost.
	if !g.isDirty.CompareAndSwap(true, false) {
		return
	}
	g.recompute()
}

func (g *BlendGroup) recompute() {
	n := len(g.entries)
	g.weights = slices.Grow(g.weights[:0], n)[:n]

	var sum float64
	for i := range g.entries {
		w := g.entries[i].weight.Value()
		if !(w > 0) || !common.IsFinite32(w) {
			w = 0
		}
		g.weights[i] = w
		sum += float64(w)
	}
	for i := range g.entries {
		var nw float32
		if sum > 0 && !math.IsInf(sum, 0) {
			nw = float32(float64(g.weights[i]) / sum)
		}
		g.weights[i] = nw
		g.entries[i].normalized.Store(math.Float32bits(nw))
	}

	var total time.Duration
	if g.syncDurations {
		for i := range g.entries {
			if g.weights[i] > 0 {
				total = common.AddDuration(total, common.ScaleDuration(g.entries[i].duration, float64(g.weights[i])))
			}
		}
	}
	if total <= 0 {
		for i := range g.entries {
			g.entries[i].factor.Store(math.Float64bits(1))
		}
		g.syncDuration.Store(0)
		g.synchronized.Store(false)
		return
	}
	for i := range g.entries {
		g.entries[i].factor.Store(math.Float64bits(float64(g.entries[i].duration) / float64(total)))
	}
	g.syncDuration.Store(int64(total))
	g.synchronized.Store(true)
}

// Delay returns the start delay of the group.
func (g *BlendGroup) Delay() time.Duration {
	return g.timing.Delay
}

// SetDelay sets the start delay of the group.
//
// Returns:
//   - error: ErrInvalidOperation during playback
func (g *BlendGroup) SetDelay(delay time.Duration) error {
	if err := g.checkMutable("set delay"); err != nil {
		return err
	}
	g.timing.Delay = delay
	return nil
}

// Speed returns the speed of the group.
func (g *BlendGroup) Speed() float32 {
	return g.timing.Speed
}

// SetSpeed sets the speed of the group.
//
// Returns:
//   - error: ErrInvalidArgument for negative or non-finite speeds, ErrInvalidOperation during playback
func (g *BlendGroup) SetSpeed(speed float32) error {
	if err := ValidateSpeed(speed); err != nil {
		return fmt.Errorf("blend group set speed: %w", err)
	}
	if err := g.checkMutable("set speed"); err != nil {
		return err
	}
	g.timing.Speed = speed
	return nil
}

// FillBehavior returns the fill behavior of the group.
func (g *BlendGroup) FillBehavior() FillBehavior {
	return g.timing.FillBehavior
}

// SetFillBehavior sets the fill behavior of the group.
//
// Returns:
//   - error: ErrInvalidOperation during playback
func (g *BlendGroup) SetFillBehavior(fill FillBehavior) error {
	if err := g.checkMutable("set fill behavior"); err != nil {
		return err
	}
	g.timing.FillBehavior = fill
	return nil
}

// LoopBehavior returns the loop behavior of the group.
func (g *BlendGroup) LoopBehavior() LoopBehavior {
	return g.timing.LoopBehavior
}

// SetLoopBehavior sets the loop behavior of the group. Blended entries have no common value
// offset, so LoopBehaviorCycleOffset is rejected.
//
// Returns:
//   - error: ErrInvalidArgument for LoopBehaviorCycleOffset or unknown values, ErrInvalidOperation during playback
func (g *BlendGroup) SetLoopBehavior(loop LoopBehavior) error {
	switch loop {
	case LoopBehaviorConstant, LoopBehaviorCycle, LoopBehaviorOscillate:
	default:
		return fmt.Errorf("blend group set loop behavior: %v is not supported: %w", loop, ErrInvalidArgument)
	}
	if err := g.checkMutable("set loop behavior"); err != nil {
		return err
	}
	g.timing.LoopBehavior = loop
	return nil
}

// Duration returns the explicit active duration of the group, if one is set.
func (g *BlendGroup) Duration() (time.Duration, bool) {
	return g.duration, g.hasDuration
}

// SetDuration sets an explicit active duration. Use MaxDuration for a group that loops
// forever.
//
// Returns:
//   - error: ErrInvalidArgument for negative durations, ErrInvalidOperation during playback
func (g *BlendGroup) SetDuration(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("blend group set duration: %v: %w", d, ErrInvalidArgument)
	}
	if err := g.checkMutable("set duration"); err != nil {
		return err
	}
	g.duration = d
	g.hasDuration = true
	return nil
}

// ClearDuration falls back to the default duration.
//
// Returns:
//   - error: ErrInvalidOperation during playback
func (g *BlendGroup) ClearDuration() error {
	if err := g.checkMutable("clear duration"); err != nil {
		return err
	}
	g.duration = 0
	g.hasDuration = false
	return nil
}

// DefaultDuration returns the length of one cycle: the synchronized duration while
// synchronized, else the longest total duration of any entry.
func (g *BlendGroup) DefaultDuration() time.Duration {
	if d, ok := g.SynchronizedDuration(); ok {
		return d
	}
	var longest time.Duration
	for i := range g.entries {
		longest = max(longest, g.entries[i].timeline.GetTotalDuration())
	}
	return longest
}

// durations returns the active duration and the cycle length.
func (g *BlendGroup) durations() (active, cycle time.Duration) {
	cycle = g.DefaultDuration()
	if g.hasDuration {
		return g.duration, cycle
	}
	return cycle, cycle
}

func (g *BlendGroup) GetState(t time.Duration) AnimationState {
	active, _ := g.durations()
	return g.timing.State(t, active)
}

func (g *BlendGroup) GetAnimationTime(t time.Duration) (time.Duration, bool) {
	active, cycle := g.durations()
	return g.timing.AnimationTime(t, active, cycle)
}

func (g *BlendGroup) GetTotalDuration() time.Duration {
	active, _ := g.durations()
	return g.timing.TotalDuration(active)
}

// AdjustTimeline keeps a looping playback in phase when the synchronized duration changes.
// If the group is synchronized, loops, and D changed from *previousDuration, the part of t
// after the delay is scaled by D/previous. The current D (or 0 when not synchronized) is
// always written back to previousDuration.
//
// Parameters:
//   - t: the parent-local time of the playback
//   - previousDuration: the synchronized duration seen at the last adjustment
//
// Returns:
//   - time.Duration: the adjusted time
func (g *BlendGroup) AdjustTimeline(t time.Duration, previousDuration *time.Duration) time.Duration {
	current, _ := g.SynchronizedDuration()
	prev := *previousDuration
	*previousDuration = current
	if current <= 0 || prev <= 0 || current == prev {
		return t
	}
	if g.timing.LoopBehavior != LoopBehaviorCycle && g.timing.LoopBehavior != LoopBehaviorOscillate {
		return t
	}
	local := t - g.timing.Delay
	if local <= 0 {
		return t
	}
	return g.timing.Delay + common.ScaleDuration(local, float64(current)/float64(prev))
}

// GetAnimatableProperty returns the weight named "Weight<i>", or nil.
func (g *BlendGroup) GetAnimatableProperty(name string) any {
	suffix, ok := strings.CutPrefix(name, WeightPropertyPrefix)
	if !ok {
		return nil
	}
	i, err := strconv.Atoi(suffix)
	if err != nil || strconv.Itoa(i) != suffix {
		return nil
	}
	if w := g.Weight(i); w != nil {
		return w
	}
	return nil
}

// BlendAnimation returns the blend aggregator of a target property, building the blend
// table if needed. Returns nil if no entry animates the property.
func (g *BlendGroup) BlendAnimation(property string) BlendedAnimation {
	g.tableMu.Lock()
	defer g.tableMu.Unlock()
	g.buildBlendAnimations()
	return g.blendAnimations[property]
}

// BlendAnimationOf returns the typed blend aggregator of a target property.
//
// Returns:
//   - *BlendAnimation[T]: the aggregator
//   - bool: false if no entry animates the property with values of type T
func BlendAnimationOf[T any](g *BlendGroup, property string) (*BlendAnimation[T], bool) {
	ba, ok := g.BlendAnimation(property).(*BlendAnimation[T])
	return ba, ok && ba != nil
}

// TargetProperties returns the animated property names in sorted order.
func (g *BlendGroup) TargetProperties() []string {
	g.tableMu.Lock()
	defer g.tableMu.Unlock()
	g.buildBlendAnimations()
	names := make([]string, 0, len(g.blendAnimations))
	for name := range g.blendAnimations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// blendAnimationsSorted returns the blend aggregators ordered by property name.
func (g *BlendGroup) blendAnimationsSorted() []BlendedAnimation {
	names := g.TargetProperties()
	g.tableMu.Lock()
	defer g.tableMu.Unlock()
	out := make([]BlendedAnimation, 0, len(names))
	for _, name := range names {
		if ba, ok := g.blendAnimations[name]; ok {
			out = append(out, ba)
		}
	}
	return out
}

// buildBlendAnimations builds one blend aggregator per target property. Animations and the
// direct child animations of timeline groups contribute; nested blend groups do not.
// Callers hold tableMu.
func (g *BlendGroup) buildBlendAnimations() {
	if g.blendAnimations != nil {
		return
	}
	table := make(map[string]BlendedAnimation)
	for i := range g.entries {
		switch tl := g.entries[i].timeline.(type) {
		case Animation:
			g.addBlendSlot(table, i, tl)
		case *BlendGroup:
			// A nested blend group has weights of its own; its children are not slotted here.
			g.log().Debug("nested blend group skipped in blend table", zap.Int("entry", i))
		case TimelineGroup:
			for _, child := range tl.Timelines() {
				if a, ok := child.(Animation); ok {
					g.addBlendSlot(table, i, a)
				}
			}
		}
	}
	g.blendAnimations = table
	g.log().Debug("blend table built",
		zap.Int("entries", len(g.entries)),
		zap.Int("properties", len(table)),
	)
}

func (g *BlendGroup) addBlendSlot(table map[string]BlendedAnimation, index int, a Animation) {
	name := a.TargetProperty()
	ba, ok := table[name]
	if !ok {
		ba = a.CreateBlendAnimation()
		if ba == nil {
			return
		}
		ba.attach(g, name, len(g.entries))
		table[name] = ba
	}
	if err := ba.setSlot(index, a); err != nil {
		g.log().Warn("animation skipped in blend table",
			zap.String("property", name),
			zap.Int("entry", index),
			zap.Error(err),
		)
	}
}

// NewInstance creates a playback instance. While any instance is attached the entry list
// and timing of the group are frozen.
//
// Returns:
//   - *BlendGroupInstance: the instance, taken from the instance pool
//   - error: the build error of the group, if any
func (g *BlendGroup) NewInstance() (*BlendGroupInstance, error) {
	if g.instancePool == nil {
		return nil, fmt.Errorf("blend group was not created with NewBlendGroup: %w", ErrInvalidOperation)
	}
	g.tableMu.Lock()
	g.buildBlendAnimations()
	g.tableMu.Unlock()

	inst := g.instancePool.Get()
	inst.attach(g)
	return inst, nil
}

func (g *BlendGroup) CreateInstance() (Instance, error) {
	inst, err := g.NewInstance()
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// ActiveInstances returns the number of attached playback instances.
func (g *BlendGroup) ActiveInstances() int {
	return int(g.activeInstances.Load())
}

// IsActive reports whether a playback instance is attached. Structural changes are rejected
// while it is.
func (g *BlendGroup) IsActive() bool {
	return g.activeInstances.Load() > 0
}

func (g *BlendGroup) release(inst *BlendGroupInstance) {
	g.activeInstances.Add(-1)
	g.instancePool.Put(inst)
}
