package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/metrasynth/gallery/pkg/patch"
)

const (
	// LabelGroups is the number of control surface groups generated per run.
	LabelGroups = 8

	// LabelsPerGroup caps the entries of one control surface group.
	LabelsPerGroup = 8

	// maxNameAttempts bounds retries on one structure before another is drawn.
	maxNameAttempts = 256
)

// RandomizeControllers assigns random values to a random subset of the module's
// attached controllers. Controllers named in skip keep their current values.
// The subset size is uniform in [0, eligible].
func RandomizeControllers(g Graph, id patch.ModuleID, rng *Stream, skip ...string) error {
	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	specs := make(map[string]patch.ControllerSpec)
	var choices []string
	for _, c := range g.Controllers(id) {
		if !c.Attached() || skipped[c.Name] {
			continue
		}
		specs[c.Name] = c
		choices = append(choices, c.Name)
	}
	sort.Strings(choices)

	count := rng.IntRange(0, len(choices))
	for range count {
		i := rng.Pick(len(choices))
		name := choices[i]
		choices = append(choices[:i], choices[i+1:]...)

		if err := g.SetController(id, name, randomValue(specs[name].Domain, rng)); err != nil {
			return fmt.Errorf("failed to randomize controller '%s' of module %d: %w", name, id, err)
		}
	}
	return nil
}

func randomValue(d patch.Domain, rng *Stream) int {
	switch d.Kind {
	case patch.DomainBool:
		return rng.Pick(2)
	case patch.DomainEnum:
		return rng.Pick(len(d.Choices))
	default:
		return rng.IntRange(d.Min, d.Max)
	}
}

var (
	namesLead = []string{"pen", "tao", "uber", "angul", "baron", "zarg", "yes", "no", "hero", "oct", "touch", "scene", "arp", "chord", "scale", "sus", "garn", "con", "eff", "sync", "super", "meta"}
	namesMid  = []string{"ultimate", "ish", "istic", "tronic", "ating", "onomous", "alpha", "betron", "thespa", "ave", "scale", "scene", "pad", "trol", "fect", "sync"}
	namesRoot = []string{"zes", "transmob", "farn", "garb", "sonos", "chronos", "mab", "sort", "port", "part", "suss", "pitch", "shift", "easy", "master", "zono", "ren", "part", "hyper", "sub"}
	namesTail = []string{"ticulator", "ulator", "system", "ule", "ran", "icle", "ishment", "erator", "stin", "tain", "mod", "tap", "guide", "master", "plasty", "ticular"}

	// sep marks the word break inside a structure.
	sep []string
)

// nameStructures are the templates a name is built from; a nil entry is the
// "_" separator.
var nameStructures = [][][]string{
	{namesLead, namesMid, sep, namesRoot, namesTail},
	{namesLead, namesTail, sep, namesRoot, namesMid},
	{namesRoot, namesTail, sep, namesLead, namesMid},
	{namesRoot, namesMid, sep, namesLead, namesTail},
	{namesLead, sep, namesLead, namesMid},
	{namesLead, sep, namesLead, namesTail},
	{namesLead, sep, namesRoot, namesMid},
	{namesLead, sep, namesRoot, namesTail},
	{namesRoot, sep, namesLead, namesMid},
	{namesRoot, sep, namesLead, namesTail},
	{namesRoot, sep, namesRoot, namesMid},
	{namesRoot, sep, namesRoot, namesTail},
	{namesLead, namesMid, sep, namesLead},
	{namesLead, namesTail, sep, namesLead},
	{namesRoot, namesMid, sep, namesLead},
	{namesRoot, namesTail, sep, namesLead},
	{namesLead, namesMid, sep, namesRoot},
	{namesLead, namesTail, sep, namesRoot},
	{namesRoot, namesMid, sep, namesRoot},
	{namesRoot, namesTail, sep, namesRoot},
	{namesLead, namesMid},
	{namesRoot, namesTail},
	{namesLead, namesTail},
	{namesRoot, namesMid},
}

// NameGenerator produces human-readable names that are unique for its lifetime.
type NameGenerator struct {
	rng  *Stream
	used map[string]bool
}

// NewNameGenerator creates a generator drawing from rng.
func NewNameGenerator(rng *Stream) *NameGenerator {
	return &NameGenerator{rng: rng, used: make(map[string]bool)}
}

// Next returns a name not returned before. A structure is drawn once per name
// and fragments are redrawn until the result is unused.
func (n *NameGenerator) Next() string {
	for {
		structure := nameStructures[n.rng.Pick(len(nameStructures))]
		for range maxNameAttempts {
			name := n.build(structure)
			if !n.used[name] {
				n.used[name] = true
				return name
			}
		}
	}
}

func (n *NameGenerator) build(structure [][]string) string {
	var b strings.Builder
	for _, part := range structure {
		if part == nil {
			b.WriteByte('_')
			continue
		}
		b.WriteString(part[n.rng.Pick(len(part))])
	}
	return b.String()
}

// Used reports whether name has been handed out.
func (n *NameGenerator) Used(name string) bool {
	return n.used[name]
}

type exposedController struct {
	module patch.ModuleID
	name   string
}

// LabelControls shuffles every attached controller of every non-sink module and
// exposes up to LabelGroups groups of LabelsPerGroup labeled entries. Controllers
// that are the target of a binding follow their source and are left off the
// surface. Group names are always drawn, even when controllers run out; groups
// left without entries are not returned.
func LabelControls(g Graph, names *NameGenerator, rng *Stream) ([]patch.ControlGroup, error) {
	bound := make(map[exposedController]bool)
	for _, b := range g.Bindings() {
		bound[exposedController{module: b.Target, name: b.TargetController}] = true
	}

	var all []exposedController
	for _, id := range g.ModuleIDs() {
		for _, c := range g.Controllers(id) {
			if c.Attached() && !bound[exposedController{module: id, name: c.Name}] {
				all = append(all, exposedController{module: id, name: c.Name})
			}
		}
	}
	rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	var groups []patch.ControlGroup
	for range LabelGroups {
		group := patch.ControlGroup{Name: names.Next()}
		for range LabelsPerGroup {
			if len(all) == 0 {
				break
			}
			label := names.Next()
			c := all[len(all)-1]
			all = all[:len(all)-1]
			if err := g.Expose(group.Name, label, c.module, c.name); err != nil {
				return nil, fmt.Errorf("failed to expose %d.%s as '%s': %w", c.module, c.name, label, err)
			}
			group.Entries = append(group.Entries, patch.ControlEntry{Label: label, Module: c.module, Controller: c.name})
		}
		if len(group.Entries) > 0 {
			groups = append(groups, group)
		}
	}
	return groups, nil
}
