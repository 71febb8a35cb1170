package generator

import (
	"fmt"
	"strings"

	"github.com/metrasynth/gallery/pkg/patch"
)

// Graph is the project the generator grows. *patch.Project implements it.
type Graph interface {
	ModuleType(name string) (*patch.ModuleType, bool)
	NewModule(typeName string, params map[string]int) (patch.ModuleID, error)
	Connect(src, dst patch.ModuleID, kind patch.ConnectionKind) error
	ConnectAll(srcs []patch.ModuleID, dst patch.ModuleID) error
	Capabilities(id patch.ModuleID) patch.Capabilities
	Controllers(id patch.ModuleID) []patch.ControllerSpec
	SetController(id patch.ModuleID, name string, value int) error
	HarmonicCount(id patch.ModuleID) int
	SetHarmonic(id patch.ModuleID, index int, h patch.Harmonic) error
	Bind(source patch.ModuleID, srcName string, target patch.ModuleID, dstName string) error
	Bindings() []patch.Binding
	Expose(group, label string, id patch.ModuleID, controller string) error
	ModuleIDs() []patch.ModuleID
	ModuleCount() int
	Output() patch.ModuleID
}

// Category groups mutation rules by the kind of structural change they make.
type Category uint8

const (
	Synth Category = iota
	Effect
	Bifurcation
	Termination
	Reunion

	numCategories
)

// Categories lists every category in selection order.
var Categories = [numCategories]Category{Synth, Effect, Bifurcation, Termination, Reunion}

var categoryNames = [numCategories]string{"synth", "effect", "bifurcation", "termination", "reunion"}

func (c Category) String() string {
	if c < numCategories {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Valid reports whether c is one of the five categories.
func (c Category) Valid() bool {
	return c < numCategories
}

// ParseCategory maps a category name back to its value.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mutation category '%s'", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CategorySet is a set of categories.
type CategorySet uint8

// Has reports whether the set contains c.
func (s CategorySet) Has(c Category) bool {
	return s&(1<<c) != 0
}

// With returns the set plus c.
func (s CategorySet) With(c Category) CategorySet {
	return s | 1<<c
}

// Slice returns the members in category order.
func (s CategorySet) Slice() []Category {
	var out []Category
	for _, c := range Categories {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s CategorySet) String() string {
	var names []string
	for _, c := range s.Slice() {
		names = append(names, c.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// CategoriesFor projects a track's tail capabilities and finished flag onto the
// mutation categories it supports. A track without a tail supports none.
func CategoriesFor(caps patch.Capabilities, hasTail, finished bool) CategorySet {
	var s CategorySet
	if !hasTail {
		return s
	}
	if caps.Has(patch.SendsAudio) {
		s = s.With(Effect)
		if !finished {
			s = s.With(Reunion)
		}
	}
	if caps.Has(patch.SendsNotes) {
		s = s.With(Synth)
	}
	if !finished {
		s = s.With(Bifurcation).With(Termination)
	}
	return s
}
