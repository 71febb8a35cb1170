package generator

import (
	"fmt"

	"github.com/metrasynth/gallery/pkg/patch"
)

const (
	feedbackVolume = "volume"
	feedbackAmount = "value"
)

func (e *Engine) apply(rule Rule, id TrackID, app *Application) error {
	switch rule.Op.Kind {
	case OpModule:
		m, err := e.appendModule(id, rule.Op)
		if err != nil {
			return err
		}
		app.Created = []patch.ModuleID{m}
		return nil

	case OpSpectral:
		return e.spectral(id, rule.Op, app)

	case OpFeedback:
		return e.feedback(id, rule.Op, app)

	case OpBifurcate:
		e.bifurcate(id)
		return nil

	case OpTerminate:
		e.forest.Finish(id)
		return nil

	case OpReunionMix:
		return e.reunion(id, rule.Op, patch.Signal, app)

	case OpReunionModulate:
		return e.reunion(id, rule.Op, patch.Modulation, app)

	case OpStub:
		return nil
	}
	return fmt.Errorf("unknown operation %s", rule.Op.Kind)
}

// appendModule creates a module, randomizes it with the track's stream, feeds
// the track's tail into it and appends it to the track.
func (e *Engine) appendModule(id TrackID, op Op) (patch.ModuleID, error) {
	t := e.forest.Track(id)
	tail, hasTail := e.forest.Tail(id)

	m, err := e.graph.NewModule(op.Module, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", op.Module, err)
	}
	if err := RandomizeControllers(e.graph, m, t.Random(), op.Skip...); err != nil {
		return 0, err
	}
	if hasTail {
		if err := e.graph.Connect(tail, m, patch.Signal); err != nil {
			return 0, fmt.Errorf("failed to connect tail %d into %d: %w", tail, m, err)
		}
	}
	if err := e.forest.Append(id, m); err != nil {
		return 0, err
	}
	return m, nil
}

func (e *Engine) spectral(id TrackID, op Op, app *Application) error {
	m, err := e.appendModule(id, op)
	if err != nil {
		return err
	}
	app.Created = []patch.ModuleID{m}

	rng := e.forest.Track(id).Random()
	n := e.graph.HarmonicCount(m)
	if n == 0 {
		return nil
	}
	count := rng.IntRange(1, n)
	for i := range count {
		h := patch.Harmonic{
			FreqHz: rng.IntRange(0, 22050),
			Volume: rng.IntRange(0, 255),
			Width:  rng.IntRange(0, 3),
			Type:   rng.Pick(len(patch.HarmonicTypes)),
		}
		if err := e.graph.SetHarmonic(m, i, h); err != nil {
			return fmt.Errorf("failed to set harmonic %d of module %d: %w", i, m, err)
		}
	}
	return nil
}

// feedback routes the tail back into a module on the track's own ancestor
// path through two feedback nodes whose volume follows one shared control.
// Neither node is appended to the track.
func (e *Engine) feedback(id TrackID, op Op, app *Application) error {
	previous := e.forest.Previous(id)
	if len(previous) == 0 {
		return nil
	}
	rng := e.forest.Track(id).Random()
	dest := previous[rng.Pick(len(previous))]
	tail, _ := e.forest.Tail(id)

	fb1, err := e.graph.NewModule(op.Module, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", op.Module, err)
	}
	fb2, err := e.graph.NewModule(op.Module, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", op.Module, err)
	}
	ctl, err := e.graph.NewModule(patch.TypeMultiCtl, nil)
	if err != nil {
		return fmt.Errorf("failed to create feedback control: %w", err)
	}
	app.Created = []patch.ModuleID{fb1, fb2, ctl}
	app.Destination = dest
	app.HasDestination = true

	skip := append([]string{feedbackVolume}, op.Skip...)
	for _, fb := range []patch.ModuleID{fb1, fb2} {
		if err := RandomizeControllers(e.graph, fb, rng, skip...); err != nil {
			return err
		}
		if err := e.graph.Bind(ctl, feedbackAmount, fb, feedbackVolume); err != nil {
			return fmt.Errorf("failed to bind feedback amount: %w", err)
		}
		if err := e.graph.Connect(ctl, fb, patch.Control); err != nil {
			return fmt.Errorf("failed to connect feedback control: %w", err)
		}
	}

	amount, err := controllerDomain(e.graph, ctl, feedbackAmount)
	if err != nil {
		return err
	}
	if err := e.graph.SetController(ctl, feedbackAmount, randomValue(amount, rng)); err != nil {
		return fmt.Errorf("failed to set feedback amount: %w", err)
	}

	for _, c := range [][2]patch.ModuleID{{tail, fb1}, {fb1, fb2}, {fb2, dest}} {
		if err := e.graph.Connect(c[0], c[1], patch.Signal); err != nil {
			return fmt.Errorf("failed to connect feedback path %d -> %d: %w", c[0], c[1], err)
		}
	}
	return nil
}

// bifurcate adds k-1 sibling tracks below the track, k in [2, MaxBifurcations].
// The acting track is finished lazily by the first child append.
func (e *Engine) bifurcate(id TrackID) {
	k := e.forest.Track(id).Random().IntRange(2, e.opts.MaxBifurcations)
	for i := 1; i < k; i++ {
		e.forest.Add(id)
	}
}

// reunion appends a new module to the track and feeds a second open audio
// track's tail into it with the given connection kind.
func (e *Engine) reunion(id TrackID, op Op, kind patch.ConnectionKind, app *Application) error {
	partners := e.forest.Eligible(Reunion, id)
	if len(partners) == 0 {
		return nil
	}
	partner := partners[e.forest.Track(id).Random().Pick(len(partners))]

	// Resolved before the append, which may splice the partner's tail.
	partnerTail, ok := e.forest.Tail(partner)
	if !ok {
		return fmt.Errorf("reunion partner %d has no tail", partner)
	}

	m, err := e.appendModule(id, op)
	if err != nil {
		return err
	}
	app.Created = []patch.ModuleID{m}
	app.Partner = partner

	if partnerTail == m {
		return nil
	}
	if err := e.graph.Connect(partnerTail, m, kind); err != nil {
		return fmt.Errorf("failed to connect reunion partner %d into %d: %w", partner, m, err)
	}
	return nil
}

func controllerDomain(g Graph, id patch.ModuleID, name string) (patch.Domain, error) {
	for _, c := range g.Controllers(id) {
		if c.Name == name {
			return c.Domain, nil
		}
	}
	return patch.Domain{}, fmt.Errorf("module %d has no controller '%s'", id, name)
}
