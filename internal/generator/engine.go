package generator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/metrasynth/gallery/pkg/patch"
)

// State is the growth loop's state machine position.
type State uint8

const (
	Running State = iota
	Exhausted
	Converged
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Exhausted:
		return "exhausted"
	case Converged:
		return "converged"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Options configure one generation run.
type Options struct {
	// Seed is the root seed every stream is derived from.
	Seed int64

	// ModuleCountMin and ModuleCountMax bound the target module count.
	ModuleCountMin int
	ModuleCountMax int

	// MaxBifurcations is the largest fan-out of one bifurcation.
	MaxBifurcations int

	// MaxCycles is the stall budget: the run is exhausted once the module
	// count has stayed unchanged for more than MaxCycles checks.
	MaxCycles int

	// Categories holds the aggregate activation probability per category.
	// Missing categories use DefaultProbability.
	Categories map[Category]int

	// RuleProbabilities overrides rule probabilities by rule name.
	RuleProbabilities map[string]int

	// Rules is the mutation catalog; nil means DefaultRules.
	Rules []Rule

	// RootModule is the module type of the root track; empty means MultiSynth.
	RootModule string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ModuleCountMin:  1,
		ModuleCountMax:  20,
		MaxBifurcations: 4,
		MaxCycles:       10000,
	}
}

// Validate checks the options eagerly, before any growth happens.
func (o Options) Validate() error {
	var errs []error
	if o.ModuleCountMin < 1 {
		errs = append(errs, fmt.Errorf("module count min %d must be at least 1", o.ModuleCountMin))
	}
	if o.ModuleCountMin > o.ModuleCountMax {
		errs = append(errs, fmt.Errorf("module count min %d is greater than max %d", o.ModuleCountMin, o.ModuleCountMax))
	}
	if o.MaxBifurcations < 2 {
		errs = append(errs, fmt.Errorf("max bifurcations %d must be at least 2", o.MaxBifurcations))
	}
	if o.MaxCycles < 1 {
		errs = append(errs, fmt.Errorf("max cycles %d must be at least 1", o.MaxCycles))
	}
	if o.Seed < 0 {
		errs = append(errs, fmt.Errorf("seed %d must not be negative", o.Seed))
	}
	for c, p := range o.Categories {
		if !c.Valid() {
			errs = append(errs, fmt.Errorf("unknown category %d", uint8(c)))
			continue
		}
		if p < 0 || p > 100 {
			errs = append(errs, fmt.Errorf("category %s probability %d outside [0, 100]", c, p))
		}
	}

	known := make(map[string]bool)
	for _, r := range o.rules() {
		known[r.Name] = true
	}
	for name, p := range o.RuleProbabilities {
		if !known[name] {
			errs = append(errs, fmt.Errorf("unknown rule '%s'", name))
			continue
		}
		if p < 0 || p > 100 {
			errs = append(errs, fmt.Errorf("rule %s probability %d outside [0, 100]", name, p))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, errors.Join(errs...))
	}
	return nil
}

func (o Options) rules() []Rule {
	if o.Rules == nil {
		return DefaultRules()
	}
	return o.Rules
}

func (o Options) rootModule() string {
	if o.RootModule == "" {
		return patch.TypeMultiSynth
	}
	return o.RootModule
}

func (o Options) categoryProbability(c Category) int {
	if p, ok := o.Categories[c]; ok {
		return p
	}
	return DefaultProbability
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Application records one rule applied to a track.
type Application struct {
	Iteration int                `json:"iteration" yaml:"iteration"`
	Rule      string             `json:"rule" yaml:"rule"`
	Category  Category           `json:"category" yaml:"category"`
	Track     TrackID            `json:"track" yaml:"track"`
	TailCaps  patch.Capabilities `json:"tail_caps" yaml:"tail_caps"`
	Finished  bool               `json:"finished" yaml:"finished"`

	// Created lists the modules the operation added to the graph.
	Created []patch.ModuleID `json:"created,omitempty" yaml:"created,omitempty"`

	// Partner is the second track of a reunion, NoTrack otherwise.
	Partner TrackID `json:"partner" yaml:"partner"`

	// Destination is the feedback target when HasDestination is set.
	Destination    patch.ModuleID `json:"destination,omitempty" yaml:"destination,omitempty"`
	HasDestination bool           `json:"has_destination,omitempty" yaml:"has_destination,omitempty"`
}

// Result is the outcome of a converged run.
type Result struct {
	State       State                `json:"state" yaml:"state"`
	Seed        int64                `json:"seed" yaml:"seed"`
	Target      int                  `json:"target" yaml:"target"`
	ModuleCount int                  `json:"module_count" yaml:"module_count"`
	Iterations  int                  `json:"iterations" yaml:"iterations"`
	Tracks      []TrackInfo          `json:"tracks" yaml:"tracks"`
	SinkSources []patch.ModuleID     `json:"sink_sources" yaml:"sink_sources"`
	Groups      []patch.ControlGroup `json:"groups" yaml:"groups"`
	Applied     []Application        `json:"applied" yaml:"applied"`
}

// Engine grows one graph. An Engine runs once and is not safe for concurrent use.
type Engine struct {
	opts    Options
	graph   Graph
	catalog *Catalog
	streams *StreamSet
	forest  *Forest
	log     *zap.Logger

	state      State
	ran        bool
	iterations int
	applied    []Application
}

// New validates opts and the mutation catalog and prepares a run against graph.
func New(opts Options, graph Graph, options ...Option) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	catalog := NewCatalog(opts.rules(), opts.RuleProbabilities)
	if err := ValidateCatalog(catalog, graph, opts.rootModule()); err != nil {
		return nil, err
	}

	streams := NewStreamSet(opts.Seed)
	e := &Engine{
		opts:    opts,
		graph:   graph,
		catalog: catalog,
		streams: streams,
		forest:  NewForest(graph, streams.Tracks),
		log:     zap.NewNop(),
	}
	for _, o := range options {
		o(e)
	}
	return e, nil
}

// State returns the engine's current state.
func (e *Engine) State() State {
	return e.state
}

// Forest returns the engine's track forest.
func (e *Engine) Forest() *Forest {
	return e.forest
}

// Applied returns the mutation history so far.
func (e *Engine) Applied() []Application {
	return append([]Application(nil), e.applied...)
}

// Run grows the graph until the module count reaches the target drawn from
// the configured range, or until the stall budget is exceeded. On success
// every open audio track is connected into the output sink and the control
// surface is labeled. On exhaustion nothing is connected to the sink and the
// returned error is an *ExhaustedError.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.ran {
		return nil, errors.New("engine has already run")
	}
	e.ran = true

	target, err := e.plant()
	if err != nil {
		return nil, err
	}
	e.log.Debug("Starting growth",
		zap.Int64("seed", e.opts.Seed),
		zap.Int("target", target),
		zap.Int("module_count", e.graph.ModuleCount()))

	last := e.graph.ModuleCount()
	stall := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		count := e.graph.ModuleCount()
		if count == last {
			stall++
			if stall > e.opts.MaxCycles {
				e.state = Exhausted
				e.log.Warn("Growth exhausted",
					zap.Int("module_count", count),
					zap.Int("target", target),
					zap.Int("stall", stall),
					zap.Int("iterations", e.iterations))
				return nil, &ExhaustedError{
					ModuleCount: count,
					Target:      target,
					Stall:       stall,
					Budget:      e.opts.MaxCycles,
					Iterations:  e.iterations,
				}
			}
		} else {
			stall = 0
			last = count
		}

		e.iterations++
		if err := e.step(); err != nil {
			return nil, fmt.Errorf("iteration %d: %w", e.iterations, err)
		}

		if e.graph.ModuleCount() >= target {
			break
		}
	}
	e.state = Converged

	sources, err := e.connectSink()
	if err != nil {
		return nil, err
	}

	names := NewNameGenerator(e.streams.Names)
	groups, err := LabelControls(e.graph, names, e.streams.Names)
	if err != nil {
		return nil, fmt.Errorf("failed to label controls: %w", err)
	}

	e.log.Debug("Growth converged",
		zap.Int("module_count", e.graph.ModuleCount()),
		zap.Int("target", target),
		zap.Int("iterations", e.iterations),
		zap.Int("tracks", e.forest.Len()),
		zap.Int("sink_sources", len(sources)))

	return &Result{
		State:       e.state,
		Seed:        e.opts.Seed,
		Target:      target,
		ModuleCount: e.graph.ModuleCount(),
		Iterations:  e.iterations,
		Tracks:      e.forest.Snapshot(),
		SinkSources: sources,
		Groups:      groups,
		Applied:     e.Applied(),
	}, nil
}

// plant creates the root track and draws the target module count.
func (e *Engine) plant() (int, error) {
	root, err := e.graph.NewModule(e.opts.rootModule(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create root module: %w", err)
	}
	e.forest.Add(NoTrack, root)
	e.state = Running
	return e.streams.Root.IntRange(e.opts.ModuleCountMin, e.opts.ModuleCountMax), nil
}

// step runs one dispatch. Failed gates and missing candidates are no-ops.
func (e *Engine) step() error {
	mut := e.streams.Mutations

	cat := Categories[mut.Pick(len(Categories))]
	if mut.Percent() > e.opts.categoryProbability(cat) {
		e.log.Debug("Category gate closed", zap.Int("iteration", e.iterations), zap.Stringer("category", cat))
		return nil
	}

	rules := e.catalog.Rules(cat)
	if len(rules) == 0 {
		return nil
	}
	rule := rules[mut.Pick(len(rules))]
	if mut.Percent() > rule.Probability {
		e.log.Debug("Rule gate closed", zap.Int("iteration", e.iterations), zap.String("rule", rule.Name))
		return nil
	}

	eligible := e.forest.Eligible(cat, NoTrack)
	if len(eligible) == 0 {
		e.log.Debug("No eligible track", zap.Int("iteration", e.iterations), zap.String("rule", rule.Name))
		return nil
	}
	id := eligible[mut.Pick(len(eligible))]

	t := e.forest.Track(id)
	tail, _ := e.forest.Tail(id)
	app := Application{
		Iteration: e.iterations,
		Rule:      rule.Name,
		Category:  cat,
		Track:     id,
		TailCaps:  e.graph.Capabilities(tail),
		Finished:  t.Finished,
		Partner:   NoTrack,
	}
	before := e.graph.ModuleCount()
	if err := e.apply(rule, id, &app); err != nil {
		return fmt.Errorf("failed to apply rule '%s' to track %d: %w", rule.Name, id, err)
	}
	e.applied = append(e.applied, app)

	e.log.Debug("Applied mutation",
		zap.Int("iteration", e.iterations),
		zap.String("rule", rule.Name),
		zap.Stringer("category", cat),
		zap.Int("track", int(id)),
		zap.Int("created", e.graph.ModuleCount()-before),
		zap.Int("module_count", e.graph.ModuleCount()))
	return nil
}

// connectSink wires the tails of every effect-eligible track into the output.
func (e *Engine) connectSink() ([]patch.ModuleID, error) {
	seen := make(map[patch.ModuleID]bool)
	var sources []patch.ModuleID
	for _, id := range e.forest.Eligible(Effect, NoTrack) {
		tail, ok := e.forest.Tail(id)
		if !ok || seen[tail] {
			continue
		}
		seen[tail] = true
		sources = append(sources, tail)
	}
	if err := e.graph.ConnectAll(sources, e.graph.Output()); err != nil {
		return nil, fmt.Errorf("failed to connect output: %w", err)
	}
	return sources, nil
}
