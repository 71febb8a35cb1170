package patch

import (
	"fmt"
	"strconv"
	"strings"
)

// ModuleID identifies a module within a single project.
type ModuleID int

// Capability is a single flag describing what kind of signal a module can send or receive.
type Capability uint8

const (
	// SendsAudio marks modules that emit an audio signal downstream
	SendsAudio Capability = 1 << iota

	// ReceivesAudio marks modules that accept an audio signal
	ReceivesAudio

	// SendsNotes marks modules that emit note/trigger events downstream
	SendsNotes

	// ReceivesNotes marks modules that accept note/trigger events
	ReceivesNotes

	// SendsControls marks modules that drive other modules' controllers
	SendsControls

	// ReceivesControls marks modules whose controllers can be driven by a control module
	ReceivesControls
)

var capabilityNames = []struct {
	flag Capability
	name string
}{
	{SendsAudio, "sends_audio"},
	{ReceivesAudio, "receives_audio"},
	{SendsNotes, "sends_notes"},
	{ReceivesNotes, "receives_notes"},
	{SendsControls, "sends_controls"},
	{ReceivesControls, "receives_controls"},
}

// Capabilities is a set of Capability flags.
type Capabilities uint8

// Caps builds a capability set from individual flags.
func Caps(flags ...Capability) Capabilities {
	var c Capabilities
	for _, f := range flags {
		c |= Capabilities(f)
	}
	return c
}

// Has reports whether the set includes the given flag.
func (c Capabilities) Has(flag Capability) bool {
	return c&Capabilities(flag) != 0
}

// String renders the set as a "|"-separated list of flag names.
func (c Capabilities) String() string {
	var names []string
	for _, cn := range capabilityNames {
		if c.Has(cn.flag) {
			names = append(names, cn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// DomainKind names the shape of a controller's value domain.
type DomainKind string

const (
	// DomainRange is an inclusive integer range
	DomainRange DomainKind = "range"

	// DomainBool is a boolean stored as 0 or 1
	DomainBool DomainKind = "bool"

	// DomainEnum is an index into a list of named choices
	DomainEnum DomainKind = "enum"
)

// Domain describes the values a controller accepts.
type Domain struct {
	Kind    DomainKind `json:"kind" yaml:"kind"`
	Min     int        `json:"min,omitempty" yaml:"min,omitempty"`
	Max     int        `json:"max,omitempty" yaml:"max,omitempty"`
	Choices []string   `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Range returns an inclusive integer range domain.
func Range(min, max int) Domain {
	return Domain{Kind: DomainRange, Min: min, Max: max}
}

// Bool returns a boolean domain.
func Bool() Domain {
	return Domain{Kind: DomainBool, Min: 0, Max: 1}
}

// Enum returns a domain of named choices, stored as their index.
func Enum(choices ...string) Domain {
	return Domain{Kind: DomainEnum, Min: 0, Max: len(choices) - 1, Choices: choices}
}

// Contains reports whether v is a legal value for the domain.
func (d Domain) Contains(v int) bool {
	switch d.Kind {
	case DomainBool:
		return v == 0 || v == 1
	case DomainEnum:
		return v >= 0 && v < len(d.Choices)
	default:
		return v >= d.Min && v <= d.Max
	}
}

// Format renders v the way a user would read it.
func (d Domain) Format(v int) string {
	switch d.Kind {
	case DomainBool:
		return strconv.FormatBool(v != 0)
	case DomainEnum:
		if v >= 0 && v < len(d.Choices) {
			return d.Choices[v]
		}
		return fmt.Sprintf("<invalid:%d>", v)
	default:
		return strconv.Itoa(v)
	}
}

// Scale maps v from domain d onto domain to, preserving its relative position.
func (d Domain) Scale(v int, to Domain) int {
	if d.Max == d.Min {
		return to.Min
	}
	return to.Min + (v-d.Min)*(to.Max-to.Min)/(d.Max-d.Min)
}

// ControllerSpec declares one named parameter of a module type.
type ControllerSpec struct {
	Name    string
	Domain  Domain
	Default int

	// Internal controllers are not attached to the module's external interface:
	// they cannot be automated, randomized or exposed on a control surface.
	Internal bool
}

// Attached reports whether the controller is externally reachable.
func (c ControllerSpec) Attached() bool {
	return !c.Internal
}

// Harmonic is one entry of a module's harmonic array (SpectraVoice).
type Harmonic struct {
	FreqHz int `json:"freq_hz" yaml:"freq_hz"`
	Volume int `json:"volume" yaml:"volume"`
	Width  int `json:"width" yaml:"width"`
	Type   int `json:"type" yaml:"type"`
}

// HarmonicTypes are the waveform choices for a Harmonic.
var HarmonicTypes = []string{"hsin", "rect", "org1", "org2", "org3", "org4", "sin", "random", "triangle1", "triangle2", "overtones1", "overtones2", "overtones3", "overtones4"}

// ModuleType is a catalog entry: a kind of module with its capabilities and controllers.
type ModuleType struct {
	Name        string
	Caps        Capabilities
	Controllers []ControllerSpec

	// Harmonics is the length of the module's harmonic array; zero when it has none.
	Harmonics int
}

// Controller returns the named controller spec.
func (t *ModuleType) Controller(name string) (ControllerSpec, bool) {
	for _, c := range t.Controllers {
		if c.Name == name {
			return c, true
		}
	}
	return ControllerSpec{}, false
}

// ConnectionKind distinguishes what a connection carries into its destination.
type ConnectionKind string

const (
	// Signal carries audio or note events into the destination's main input
	Signal ConnectionKind = "signal"

	// Modulation feeds the destination's modulation input
	Modulation ConnectionKind = "modulation"

	// Control drives controller values of the destination
	Control ConnectionKind = "control"
)

// Valid reports whether k is a known connection kind.
func (k ConnectionKind) Valid() bool {
	return k == Signal || k == Modulation || k == Control
}

// Connection is a directed edge between two modules.
type Connection struct {
	Src  ModuleID       `json:"src" yaml:"src"`
	Dst  ModuleID       `json:"dst" yaml:"dst"`
	Kind ConnectionKind `json:"kind" yaml:"kind"`
}

// Binding ties a controller of a control module to a controller of another module.
// Setting the source controller sets every bound target to the scaled value.
type Binding struct {
	Source           ModuleID `json:"source" yaml:"source"`
	SourceController string   `json:"source_controller" yaml:"source_controller"`
	Target           ModuleID `json:"target" yaml:"target"`
	TargetController string   `json:"target_controller" yaml:"target_controller"`
}

// ControlEntry is one labeled controller on the control surface.
type ControlEntry struct {
	Label      string   `json:"label" yaml:"label"`
	Module     ModuleID `json:"module" yaml:"module"`
	Controller string   `json:"controller" yaml:"controller"`
}

// ControlGroup is a named group of control surface entries.
type ControlGroup struct {
	Name    string         `json:"name" yaml:"name"`
	Entries []ControlEntry `json:"entries" yaml:"entries"`
}
