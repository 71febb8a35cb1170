// Package patch provides the module system that generated synthesizer patches are
// built from: a catalog of module types, their capability flags and controller
// domains, and an in-memory project graph of modules and connections.
//
// # Overview
//
// A Project owns every module it creates. Module 0 is always the output sink.
// Modules are created through the project's factory (NewModule), wired together
// with Connect, and tuned by setting controller values. Controller values are
// plain integers interpreted through the controller's Domain: a numeric range,
// a boolean (0 or 1), or an index into a list of enumerated choices.
//
// # Capabilities
//
// Each module type declares what it can send and receive:
//
//	SendsAudio | ReceivesAudio       effects, amplifiers, feedback nodes
//	ReceivesNotes | SendsAudio       synthesizers
//	ReceivesNotes | SendsNotes       note routers (MultiSynth, Glide)
//	SendsControls                    controller nodes (MultiCtl)
//
// The generator package only ever reads capabilities; it never inspects module
// internals beyond controller values.
//
// # Control surface
//
// Controllers can be exposed under a named group and label (Expose). Groups are
// organizational metadata for building an external control surface and have no
// effect on the graph itself.
//
// # Usage Example
//
//	project := patch.NewProject("demo", patch.DefaultCatalog())
//	synth, _ := project.NewModule("AnalogGenerator", map[string]int{"polyphony_ch": 1})
//	reverb, _ := project.NewModule("Reverb", nil)
//	_ = project.Connect(synth, reverb, patch.Signal)
//	_ = project.Connect(reverb, project.Output(), patch.Signal)
//
//	doc := project.Document()
//	_ = patch.Encode(os.Stdout, doc, patch.FormatYAML)
package patch
