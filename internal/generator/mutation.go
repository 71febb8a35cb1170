package generator

import (
	"errors"
	"fmt"

	"github.com/metrasynth/gallery/pkg/patch"
)

// OpKind tags the operation a rule performs.
type OpKind uint8

const (
	// OpModule appends one module of Op.Module to the track
	OpModule OpKind = iota

	// OpSpectral appends a module and sets its harmonic array entries individually
	OpSpectral

	// OpFeedback inserts a feedback pair from the tail back to a previous module
	OpFeedback

	// OpBifurcate adds sibling tracks descending from the track
	OpBifurcate

	// OpTerminate finishes the track
	OpTerminate

	// OpReunionMix merges a second track's tail into a new mixing module
	OpReunionMix

	// OpReunionModulate feeds a second track's tail into a new module's modulation input
	OpReunionModulate

	// OpStub participates in selection but changes nothing
	OpStub
)

var opKindNames = map[OpKind]string{
	OpModule:          "module",
	OpSpectral:        "spectral",
	OpFeedback:        "feedback",
	OpBifurcate:       "bifurcate",
	OpTerminate:       "terminate",
	OpReunionMix:      "reunion_mix",
	OpReunionModulate: "reunion_modulate",
	OpStub:            "stub",
}

func (k OpKind) String() string {
	if name, ok := opKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", uint8(k))
}

// createsModule reports whether the operation appends a new module to the track.
func (k OpKind) createsModule() bool {
	switch k {
	case OpModule, OpSpectral, OpReunionMix, OpReunionModulate:
		return true
	}
	return false
}

// Op is the operation value of a rule.
type Op struct {
	Kind   OpKind
	Module string   // module type to create, when the kind creates one
	Skip   []string // controllers left at their defaults by randomization
}

// Rule is one entry of the mutation catalog.
type Rule struct {
	Name        string
	Category    Category
	Probability int
	Op          Op
}

// DefaultProbability is the activation probability of rules and categories that
// are not configured explicitly.
const DefaultProbability = 50

func module(name string, c Category, typ string, skip ...string) Rule {
	return Rule{Name: name, Category: c, Probability: DefaultProbability, Op: Op{Kind: OpModule, Module: typ, Skip: skip}}
}

func stub(name string, c Category) Rule {
	return Rule{Name: name, Category: c, Probability: DefaultProbability, Op: Op{Kind: OpStub}}
}

// DefaultRules returns the built-in mutation catalog in registration order.
// Registration order is part of the determinism contract.
func DefaultRules() []Rule {
	return []Rule{
		module("analog_gen", Synth, patch.TypeAnalogGenerator),
		module("drumsynth", Synth, patch.TypeDrumSynth),
		module("fm", Synth, patch.TypeFM),
		module("generator", Synth, patch.TypeGenerator),
		module("kicker", Synth, patch.TypeKicker),
		{Name: "spectravoice", Category: Synth, Probability: DefaultProbability, Op: Op{Kind: OpSpectral, Module: patch.TypeSpectraVoice}},
		module("glide", Synth, patch.TypeGlide),
		module("multisynth", Synth, patch.TypeMultiSynth),
		stub("pitch2ctl", Synth),
		stub("velocity2ctl", Synth),

		module("amplifier", Effect, patch.TypeAmplifier, "dc_offset", "gain"),
		module("compressor", Effect, patch.TypeCompressor),
		module("dc_blocker", Effect, patch.TypeDCBlocker),
		module("delay", Effect, patch.TypeDelay),
		module("distortion", Effect, patch.TypeDistortion),
		module("echo", Effect, patch.TypeEcho),
		module("eq", Effect, patch.TypeEQ),
		module("filter", Effect, patch.TypeFilter),
		module("filter_pro", Effect, patch.TypeFilterPro),
		module("lfo", Effect, patch.TypeLFO),
		module("loop", Effect, patch.TypeLoop),
		module("pitch_shifter", Effect, patch.TypePitchShifter),
		module("reverb", Effect, patch.TypeReverb),
		module("vibrato", Effect, patch.TypeVibrato),
		module("vocal_filter", Effect, patch.TypeVocalFilter),
		module("waveshaper", Effect, patch.TypeWaveShaper),
		{Name: "feedback", Category: Effect, Probability: DefaultProbability, Op: Op{Kind: OpFeedback, Module: patch.TypeFeedback}},
		stub("sound2ctl", Effect),

		{Name: "bifurcate", Category: Bifurcation, Probability: DefaultProbability, Op: Op{Kind: OpBifurcate}},
		{Name: "terminate", Category: Termination, Probability: DefaultProbability, Op: Op{Kind: OpTerminate}},

		{Name: "reunion_amp", Category: Reunion, Probability: DefaultProbability, Op: Op{Kind: OpReunionMix, Module: patch.TypeAmplifier, Skip: []string{"dc_offset"}}},
		{Name: "modulator", Category: Reunion, Probability: DefaultProbability, Op: Op{Kind: OpReunionModulate, Module: patch.TypeModulator}},
	}
}

// RuleNames returns the names of DefaultRules in registration order.
func RuleNames() []string {
	rules := DefaultRules()
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}

// Catalog is the static rule table keyed by category.
type Catalog struct {
	rules      []Rule
	byCategory [numCategories][]Rule
}

// NewCatalog builds a catalog from rules. Probabilities found in overrides
// (keyed by rule name) replace the rules' own.
func NewCatalog(rules []Rule, overrides map[string]int) *Catalog {
	c := &Catalog{}
	for _, r := range rules {
		if p, ok := overrides[r.Name]; ok {
			r.Probability = p
		}
		r.Op.Skip = append([]string(nil), r.Op.Skip...)
		c.rules = append(c.rules, r)
		if r.Category.Valid() {
			c.byCategory[r.Category] = append(c.byCategory[r.Category], r)
		}
	}
	return c
}

// Rules returns the rules of one category in registration order.
func (c *Catalog) Rules(cat Category) []Rule {
	if !cat.Valid() {
		return nil
	}
	return c.byCategory[cat]
}

// All returns every rule in registration order.
func (c *Catalog) All() []Rule {
	return append([]Rule(nil), c.rules...)
}

// TypeLookup resolves module type names; *patch.Catalog and *patch.Project implement it.
type TypeLookup interface {
	ModuleType(name string) (*patch.ModuleType, bool)
}

var (
	_ TypeLookup = (*patch.Catalog)(nil)
	_ TypeLookup = (*patch.Project)(nil)
)

// requiredInput is the capability a module created by a rule of the category
// must accept, since the track's tail is connected into it.
func requiredInput(c Category) (patch.Capability, bool) {
	switch c {
	case Synth:
		return patch.ReceivesNotes, true
	case Effect, Reunion:
		return patch.ReceivesAudio, true
	}
	return 0, false
}

// ValidateCatalog rejects malformed catalog entries: unknown categories,
// probabilities outside [0,100], unknown or incompatible module types, and
// rules whose category no track growing from rootType could ever support.
func ValidateCatalog(c *Catalog, types TypeLookup, rootType string) error {
	root, ok := types.ModuleType(rootType)
	if !ok {
		return fmt.Errorf("%w: unknown root module type '%s'", ErrMalformedCatalog, rootType)
	}

	seen := make(map[string]bool, len(c.rules))
	var errs []error
	for _, r := range c.rules {
		if r.Name == "" {
			errs = append(errs, errors.New("rule with empty name"))
			continue
		}
		if seen[r.Name] {
			errs = append(errs, fmt.Errorf("duplicate rule '%s'", r.Name))
		}
		seen[r.Name] = true

		if !r.Category.Valid() {
			errs = append(errs, fmt.Errorf("rule '%s': invalid category %d", r.Name, uint8(r.Category)))
			continue
		}
		if r.Probability < 0 || r.Probability > 100 {
			errs = append(errs, fmt.Errorf("rule '%s': probability %d outside [0, 100]", r.Name, r.Probability))
		}
		if err := validateOp(r, types); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrMalformedCatalog, errors.Join(errs...))
	}

	// Grow the set of tail capability sets reachable from the root. Feedback,
	// bifurcation and termination never change a tail, so only module-creating
	// rules extend it.
	reachable := []patch.Capabilities{root.Caps}
	known := map[patch.Capabilities]bool{root.Caps: true}
	for changed := true; changed; {
		changed = false
		for _, r := range c.rules {
			if !r.Op.Kind.createsModule() {
				continue
			}
			mt, _ := types.ModuleType(r.Op.Module)
			if known[mt.Caps] || !supportedByAny(reachable, r.Category) {
				continue
			}
			known[mt.Caps] = true
			reachable = append(reachable, mt.Caps)
			changed = true
		}
	}

	for _, r := range c.rules {
		if !supportedByAny(reachable, r.Category) {
			errs = append(errs, fmt.Errorf("rule '%s': no track can ever support category %s", r.Name, r.Category))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrMalformedCatalog, errors.Join(errs...))
	}
	return nil
}

func validateOp(r Rule, types TypeLookup) error {
	switch r.Op.Kind {
	case OpModule, OpSpectral, OpReunionMix, OpReunionModulate, OpFeedback:
	case OpBifurcate, OpTerminate, OpStub:
		return nil
	default:
		return fmt.Errorf("rule '%s': unknown operation %s", r.Name, r.Op.Kind)
	}

	mt, ok := types.ModuleType(r.Op.Module)
	if !ok {
		return fmt.Errorf("rule '%s': unknown module type '%s'", r.Name, r.Op.Module)
	}
	for _, name := range r.Op.Skip {
		if _, ok := mt.Controller(name); !ok {
			return fmt.Errorf("rule '%s': module type '%s' has no controller '%s' to skip", r.Name, mt.Name, name)
		}
	}

	switch r.Op.Kind {
	case OpSpectral:
		if mt.Harmonics == 0 {
			return fmt.Errorf("rule '%s': module type '%s' has no harmonics", r.Name, mt.Name)
		}
	case OpFeedback:
		if r.Category != Effect {
			return fmt.Errorf("rule '%s': feedback rules must be in category effect", r.Name)
		}
		if !mt.Caps.Has(patch.ReceivesAudio) || !mt.Caps.Has(patch.SendsAudio) || !mt.Caps.Has(patch.ReceivesControls) {
			return fmt.Errorf("rule '%s': feedback module '%s' must pass audio and receive controls", r.Name, mt.Name)
		}
		if _, ok := mt.Controller(feedbackVolume); !ok {
			return fmt.Errorf("rule '%s': feedback module '%s' has no '%s' controller", r.Name, mt.Name, feedbackVolume)
		}
		ctl, ok := types.ModuleType(patch.TypeMultiCtl)
		if !ok || !ctl.Caps.Has(patch.SendsControls) {
			return fmt.Errorf("rule '%s': catalog has no control module for feedback amount", r.Name)
		}
		return nil
	}

	if need, ok := requiredInput(r.Category); ok && !mt.Caps.Has(need) {
		return fmt.Errorf("rule '%s': module type '%s' cannot accept the input of category %s", r.Name, mt.Name, r.Category)
	}
	return nil
}

func supportedByAny(reachable []patch.Capabilities, c Category) bool {
	for _, caps := range reachable {
		if CategoriesFor(caps, true, false).Has(c) {
			return true
		}
	}
	return false
}
