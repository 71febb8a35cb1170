package patch

import (
	"fmt"
	"sort"
)

// Module is a node of the project graph.
type Module struct {
	ID        ModuleID
	Type      *ModuleType
	Values    map[string]int
	Harmonics []Harmonic
}

// Project owns a graph of modules and the connections between them.
// Module 0 is the output sink. A Project is not safe for concurrent use.
type Project struct {
	Name string

	catalog   *Catalog
	modules   []*Module
	conns     []Connection
	connIndex map[Connection]struct{}
	bindings  []Binding
	groups    []ControlGroup
}

// NewProject creates a project whose module 0 is the catalog's Output sink.
// It panics if the catalog has no Output type, which is a programming error.
func NewProject(name string, catalog *Catalog) *Project {
	p := &Project{
		Name:      name,
		catalog:   catalog,
		connIndex: make(map[Connection]struct{}),
	}
	if _, err := p.NewModule(TypeOutput, nil); err != nil {
		panic(fmt.Sprintf("patch: catalog cannot create output sink: %v", err))
	}
	return p
}

// Catalog returns the catalog modules are created from.
func (p *Project) Catalog() *Catalog {
	return p.catalog
}

// ModuleType looks up a module type in the project's catalog.
func (p *Project) ModuleType(name string) (*ModuleType, bool) {
	return p.catalog.Lookup(name)
}

// Output returns the id of the output sink.
func (p *Project) Output() ModuleID {
	return 0
}

// NewModule creates a module of the named type, applies controller defaults and
// then the given initial parameters.
func (p *Project) NewModule(typeName string, params map[string]int) (ModuleID, error) {
	t, ok := p.catalog.Lookup(typeName)
	if !ok {
		return 0, fmt.Errorf("unknown module type '%s'", typeName)
	}

	m := &Module{
		ID:     ModuleID(len(p.modules)),
		Type:   t,
		Values: make(map[string]int, len(t.Controllers)),
	}
	for _, c := range t.Controllers {
		m.Values[c.Name] = c.Default
	}
	if t.Harmonics > 0 {
		m.Harmonics = make([]Harmonic, t.Harmonics)
	}

	// Validate all params before the module becomes visible
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		spec, ok := t.Controller(name)
		if !ok {
			return 0, fmt.Errorf("module type '%s' has no controller '%s'", typeName, name)
		}
		if !spec.Domain.Contains(params[name]) {
			return 0, fmt.Errorf("value %d outside domain of %s.%s", params[name], typeName, name)
		}
		m.Values[name] = params[name]
	}

	p.modules = append(p.modules, m)
	return m.ID, nil
}

// Module returns the module with the given id.
func (p *Project) Module(id ModuleID) (*Module, error) {
	if id < 0 || int(id) >= len(p.modules) {
		return nil, fmt.Errorf("unknown module %d", id)
	}
	return p.modules[id], nil
}

// ModuleIDs returns the ids of every module except the output sink, in creation order.
func (p *Project) ModuleIDs() []ModuleID {
	ids := make([]ModuleID, 0, len(p.modules)-1)
	for _, m := range p.modules[1:] {
		ids = append(ids, m.ID)
	}
	return ids
}

// ModuleCount returns the number of modules, excluding the output sink.
func (p *Project) ModuleCount() int {
	return len(p.modules) - 1
}

// Capabilities returns the capability flags of a module; unknown ids have none.
func (p *Project) Capabilities(id ModuleID) Capabilities {
	m, err := p.Module(id)
	if err != nil {
		return 0
	}
	return m.Type.Caps
}

// Controllers returns the controller specs of a module in declaration order.
func (p *Project) Controllers(id ModuleID) []ControllerSpec {
	m, err := p.Module(id)
	if err != nil {
		return nil
	}
	return m.Type.Controllers
}

// Value returns the current value of a controller.
func (p *Project) Value(id ModuleID, name string) (int, error) {
	m, err := p.Module(id)
	if err != nil {
		return 0, err
	}
	v, ok := m.Values[name]
	if !ok {
		return 0, fmt.Errorf("module %d (%s) has no controller '%s'", id, m.Type.Name, name)
	}
	return v, nil
}

// SetController sets a controller value after checking it against the controller's
// domain. Bound targets follow the new value.
func (p *Project) SetController(id ModuleID, name string, value int) error {
	m, err := p.Module(id)
	if err != nil {
		return err
	}
	spec, ok := m.Type.Controller(name)
	if !ok {
		return fmt.Errorf("module %d (%s) has no controller '%s'", id, m.Type.Name, name)
	}
	if !spec.Domain.Contains(value) {
		return fmt.Errorf("value %d outside domain of %s.%s", value, m.Type.Name, name)
	}
	m.Values[name] = value

	for _, b := range p.bindings {
		if b.Source != id || b.SourceController != name {
			continue
		}
		target := p.modules[b.Target]
		tspec, _ := target.Type.Controller(b.TargetController)
		target.Values[b.TargetController] = spec.Domain.Scale(value, tspec.Domain)
	}
	return nil
}

// HarmonicCount returns the length of a module's harmonic array.
func (p *Project) HarmonicCount(id ModuleID) int {
	m, err := p.Module(id)
	if err != nil {
		return 0
	}
	return len(m.Harmonics)
}

// SetHarmonic sets one entry of a module's harmonic array.
func (p *Project) SetHarmonic(id ModuleID, index int, h Harmonic) error {
	m, err := p.Module(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(m.Harmonics) {
		return fmt.Errorf("module %d (%s) has no harmonic %d", id, m.Type.Name, index)
	}
	switch {
	case h.FreqHz < 0 || h.FreqHz > 22050:
		return fmt.Errorf("harmonic freq_hz %d out of range [0, 22050]", h.FreqHz)
	case h.Volume < 0 || h.Volume > 255:
		return fmt.Errorf("harmonic volume %d out of range [0, 255]", h.Volume)
	case h.Width < 0 || h.Width > 255:
		return fmt.Errorf("harmonic width %d out of range [0, 255]", h.Width)
	case h.Type < 0 || h.Type >= len(HarmonicTypes):
		return fmt.Errorf("harmonic type %d out of range", h.Type)
	}
	m.Harmonics[index] = h
	return nil
}

// Connect adds a connection from src into dst. Connecting the same pair with the
// same kind twice is a no-op.
func (p *Project) Connect(src, dst ModuleID, kind ConnectionKind) error {
	if !kind.Valid() {
		return fmt.Errorf("invalid connection kind '%s'", kind)
	}
	if _, err := p.Module(src); err != nil {
		return fmt.Errorf("connect source: %w", err)
	}
	if _, err := p.Module(dst); err != nil {
		return fmt.Errorf("connect destination: %w", err)
	}
	if src == dst {
		return fmt.Errorf("cannot connect module %d to itself", src)
	}
	if dst == p.Output() && kind != Signal {
		return fmt.Errorf("output sink only accepts signal connections")
	}
	if src == p.Output() {
		return fmt.Errorf("output sink cannot be a connection source")
	}

	c := Connection{Src: src, Dst: dst, Kind: kind}
	if _, exists := p.connIndex[c]; exists {
		return nil
	}
	p.connIndex[c] = struct{}{}
	p.conns = append(p.conns, c)
	return nil
}

// ConnectAll connects every source into dst with signal connections.
func (p *Project) ConnectAll(srcs []ModuleID, dst ModuleID) error {
	for _, src := range srcs {
		if err := p.Connect(src, dst, Signal); err != nil {
			return err
		}
	}
	return nil
}

// Connections returns all connections in the order they were made.
func (p *Project) Connections() []Connection {
	if len(p.conns) == 0 {
		return nil
	}
	out := make([]Connection, len(p.conns))
	copy(out, p.conns)
	return out
}

// Inputs returns the sources connected into dst, in connection order.
func (p *Project) Inputs(dst ModuleID) []ModuleID {
	var out []ModuleID
	for _, c := range p.conns {
		if c.Dst == dst {
			out = append(out, c.Src)
		}
	}
	return out
}

// Bind ties source.srcName to target.dstName. The source must be able to send
// controls and the target must accept them.
func (p *Project) Bind(source ModuleID, srcName string, target ModuleID, dstName string) error {
	sm, err := p.Module(source)
	if err != nil {
		return err
	}
	tm, err := p.Module(target)
	if err != nil {
		return err
	}
	if !sm.Type.Caps.Has(SendsControls) {
		return fmt.Errorf("module %d (%s) cannot send controls", source, sm.Type.Name)
	}
	if !tm.Type.Caps.Has(ReceivesControls) {
		return fmt.Errorf("module %d (%s) cannot receive controls", target, tm.Type.Name)
	}
	if _, ok := sm.Type.Controller(srcName); !ok {
		return fmt.Errorf("module %d (%s) has no controller '%s'", source, sm.Type.Name, srcName)
	}
	if _, ok := tm.Type.Controller(dstName); !ok {
		return fmt.Errorf("module %d (%s) has no controller '%s'", target, tm.Type.Name, dstName)
	}
	p.bindings = append(p.bindings, Binding{
		Source:           source,
		SourceController: srcName,
		Target:           target,
		TargetController: dstName,
	})
	return nil
}

// Bindings returns all controller bindings.
func (p *Project) Bindings() []Binding {
	if len(p.bindings) == 0 {
		return nil
	}
	out := make([]Binding, len(p.bindings))
	copy(out, p.bindings)
	return out
}

// Expose adds a labeled controller to a control surface group, creating the group
// on first use.
func (p *Project) Expose(group, label string, id ModuleID, controller string) error {
	m, err := p.Module(id)
	if err != nil {
		return err
	}
	spec, ok := m.Type.Controller(controller)
	if !ok {
		return fmt.Errorf("module %d (%s) has no controller '%s'", id, m.Type.Name, controller)
	}
	if !spec.Attached() {
		return fmt.Errorf("controller %s.%s is not attached", m.Type.Name, controller)
	}

	entry := ControlEntry{Label: label, Module: id, Controller: controller}
	for i := range p.groups {
		if p.groups[i].Name == group {
			p.groups[i].Entries = append(p.groups[i].Entries, entry)
			return nil
		}
	}
	p.groups = append(p.groups, ControlGroup{Name: group, Entries: []ControlEntry{entry}})
	return nil
}

// Groups returns the control surface groups in creation order.
func (p *Project) Groups() []ControlGroup {
	if len(p.groups) == 0 {
		return nil
	}
	out := make([]ControlGroup, len(p.groups))
	for i, g := range p.groups {
		out[i] = ControlGroup{Name: g.Name, Entries: append([]ControlEntry(nil), g.Entries...)}
	}
	return out
}
