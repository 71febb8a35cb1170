package generator

import (
	"fmt"

	"github.com/metrasynth/gallery/pkg/patch"
)

// TrackID indexes a track in its Forest.
type TrackID int

// NoTrack is the ancestor of root tracks.
const NoTrack TrackID = -1

// Track is one growing lineage of modules.
type Track struct {
	ID       TrackID
	Ancestor TrackID
	Modules  []patch.ModuleID
	Finished bool

	// tail is the cached tail reference. It is set by the track's own appends and
	// by splices from its first-appending child; when unset the tail is inherited
	// from the ancestor.
	tail    patch.ModuleID
	hasTail bool

	rng *Stream
}

// Random returns the track's private stream.
func (t *Track) Random() *Stream {
	return t.rng
}

// TrackInfo is a read-only snapshot of a track for diagnostics.
type TrackInfo struct {
	ID        TrackID          `json:"id" yaml:"id"`
	Ancestor  TrackID          `json:"ancestor" yaml:"ancestor"`
	Modules   []patch.ModuleID `json:"modules" yaml:"modules"`
	Finished  bool             `json:"finished" yaml:"finished"`
	Tail      patch.ModuleID   `json:"tail" yaml:"tail"`
	HasTail   bool             `json:"has_tail" yaml:"has_tail"`
	Supported []Category       `json:"supported" yaml:"supported"`
}

// Forest is the arena of every track of a run. Tracks are never removed; the
// ancestor of a track is an index into the same arena.
type Forest struct {
	graph  Graph
	seeds  *Stream
	tracks []*Track
}

// NewForest creates an empty forest. Each track's private stream is seeded from seeds.
func NewForest(graph Graph, seeds *Stream) *Forest {
	return &Forest{graph: graph, seeds: seeds}
}

// Len returns the number of tracks.
func (f *Forest) Len() int {
	return len(f.tracks)
}

// Track returns the track with the given id, or nil.
func (f *Forest) Track(id TrackID) *Track {
	if id < 0 || int(id) >= len(f.tracks) {
		return nil
	}
	return f.tracks[id]
}

// Add creates a track descending from ancestor (NoTrack for a root) holding the
// given initial modules. Initial modules are not appends and do not splice.
func (f *Forest) Add(ancestor TrackID, mods ...patch.ModuleID) TrackID {
	t := &Track{
		ID:       TrackID(len(f.tracks)),
		Ancestor: ancestor,
		Modules:  append([]patch.ModuleID(nil), mods...),
		rng:      NewStream(f.seeds.Seed()),
	}
	if len(mods) > 0 {
		t.tail = mods[len(mods)-1]
		t.hasTail = true
	}
	f.tracks = append(f.tracks, t)
	return t.ID
}

// Tail returns the most recent module reachable from the track, walking the
// ancestor index when the track has no tail of its own.
func (f *Forest) Tail(id TrackID) (patch.ModuleID, bool) {
	for cur := id; cur != NoTrack; {
		t := f.tracks[cur]
		if t.hasTail {
			return t.tail, true
		}
		cur = t.Ancestor
	}
	return 0, false
}

// Previous returns the track's own modules except the last, newest first,
// followed by its ancestor's previous sequence. These are the only legal
// feedback destinations for the track.
func (f *Forest) Previous(id TrackID) []patch.ModuleID {
	var out []patch.ModuleID
	for cur := id; cur != NoTrack; cur = f.tracks[cur].Ancestor {
		mods := f.tracks[cur].Modules
		for i := len(mods) - 2; i >= 0; i-- {
			out = append(out, mods[i])
		}
	}
	return out
}

// Lineage returns the track id followed by all of its ancestors.
func (f *Forest) Lineage(id TrackID) []TrackID {
	var out []TrackID
	for cur := id; cur != NoTrack; cur = f.tracks[cur].Ancestor {
		out = append(out, cur)
	}
	return out
}

// Append adds m to the track. The first append to a track with an ancestor
// splices the ancestor's tail forward to m and finishes the ancestor.
func (f *Forest) Append(id TrackID, m patch.ModuleID) error {
	t := f.Track(id)
	if t == nil {
		return fmt.Errorf("unknown track %d", id)
	}
	t.Modules = append(t.Modules, m)
	t.tail = m
	t.hasTail = true

	if len(t.Modules) != 1 || t.Ancestor == NoTrack {
		return nil
	}
	ancestor := f.tracks[t.Ancestor]
	if prev, ok := f.Tail(ancestor.ID); ok && prev != m {
		if err := f.graph.Connect(prev, m, patch.Signal); err != nil {
			return fmt.Errorf("failed to splice track %d into ancestor %d: %w", id, ancestor.ID, err)
		}
	}
	ancestor.tail = m
	ancestor.hasTail = true
	ancestor.Finished = true
	return nil
}

// Finish marks the track finished. Finishing is terminal.
func (f *Forest) Finish(id TrackID) {
	if t := f.Track(id); t != nil {
		t.Finished = true
	}
}

// Supported returns the mutation categories the track currently supports.
func (f *Forest) Supported(id TrackID) CategorySet {
	t := f.Track(id)
	if t == nil {
		return 0
	}
	tail, ok := f.Tail(id)
	if !ok {
		return CategoriesFor(0, false, t.Finished)
	}
	return CategoriesFor(f.graph.Capabilities(tail), true, t.Finished)
}

// Eligible returns, in id order, the tracks supporting c, skipping exclude.
func (f *Forest) Eligible(c Category, exclude TrackID) []TrackID {
	var out []TrackID
	for _, t := range f.tracks {
		if t.ID == exclude {
			continue
		}
		if f.Supported(t.ID).Has(c) {
			out = append(out, t.ID)
		}
	}
	return out
}

// Snapshot returns diagnostic copies of every track.
func (f *Forest) Snapshot() []TrackInfo {
	out := make([]TrackInfo, 0, len(f.tracks))
	for _, t := range f.tracks {
		tail, ok := f.Tail(t.ID)
		out = append(out, TrackInfo{
			ID:        t.ID,
			Ancestor:  t.Ancestor,
			Modules:   append([]patch.ModuleID(nil), t.Modules...),
			Finished:  t.Finished,
			Tail:      tail,
			HasTail:   ok,
			Supported: f.Supported(t.ID).Slice(),
		})
	}
	return out
}
