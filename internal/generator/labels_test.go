package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrasynth/gallery/pkg/patch"
)

func TestRandomizeControllers(t *testing.T) {
	t.Run("values stay inside their domains", func(t *testing.T) {
		p := patch.NewProject("test", patch.DefaultCatalog())
		rng := NewStream(5)
		for range 50 {
			id := newModule(t, p, patch.TypeFilterPro)
			require.NoError(t, RandomizeControllers(p, id, rng))
			for _, c := range p.Controllers(id) {
				v, err := p.Value(id, c.Name)
				require.NoError(t, err)
				assert.True(t, c.Domain.Contains(v), "%s=%d", c.Name, v)
			}
		}
	})

	t.Run("skipped controllers keep defaults", func(t *testing.T) {
		p := patch.NewProject("test", patch.DefaultCatalog())
		rng := NewStream(11)
		for range 50 {
			id := newModule(t, p, patch.TypeAmplifier)
			require.NoError(t, RandomizeControllers(p, id, rng, "dc_offset", "gain"))

			v, err := p.Value(id, "dc_offset")
			require.NoError(t, err)
			assert.Equal(t, 0, v)
			v, err = p.Value(id, "gain")
			require.NoError(t, err)
			assert.Equal(t, 1, v)
		}
	})

	t.Run("internal controllers are never touched", func(t *testing.T) {
		p := patch.NewProject("test", patch.DefaultCatalog())
		rng := NewStream(3)
		for range 50 {
			id := newModule(t, p, patch.TypeMultiCtl)
			require.NoError(t, RandomizeControllers(p, id, rng))
			v, err := p.Value(id, "gain")
			require.NoError(t, err)
			assert.Equal(t, 256, v)
		}
	})

	t.Run("same stream seed gives same values", func(t *testing.T) {
		values := func() map[string]int {
			p := patch.NewProject("test", patch.DefaultCatalog())
			id := newModule(t, p, patch.TypeFM)
			require.NoError(t, RandomizeControllers(p, id, NewStream(77)))
			m, err := p.Module(id)
			require.NoError(t, err)
			return m.Values
		}
		assert.Equal(t, values(), values())
	})
}

func TestNameGenerator(t *testing.T) {
	n := NewNameGenerator(NewStream(0))
	seen := make(map[string]bool)
	for range 2000 {
		name := n.Next()
		require.NotEmpty(t, name)
		require.False(t, seen[name], "name %q handed out twice", name)
		seen[name] = true
		assert.True(t, n.Used(name))
	}
	assert.False(t, n.Used("not_a_generated_name"))
}

func TestNameGenerator_Deterministic(t *testing.T) {
	a := NewNameGenerator(NewStream(9))
	b := NewNameGenerator(NewStream(9))
	for range 100 {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestLabelControls(t *testing.T) {
	t.Run("caps at eight groups of eight", func(t *testing.T) {
		p := patch.NewProject("test", patch.DefaultCatalog())
		for range 20 {
			newModule(t, p, patch.TypeFilterPro)
		}
		names := NewNameGenerator(NewStream(1))

		groups, err := LabelControls(p, names, NewStream(2))
		require.NoError(t, err)
		require.Len(t, groups, LabelGroups)
		for _, g := range groups {
			assert.Len(t, g.Entries, LabelsPerGroup)
		}
		assert.Equal(t, groups, p.Groups())
	})

	t.Run("labels are unique and reference attached controllers", func(t *testing.T) {
		p := patch.NewProject("test", patch.DefaultCatalog())
		newModule(t, p, patch.TypeMultiSynth)
		newModule(t, p, patch.TypeMultiCtl)
		newModule(t, p, patch.TypeReverb)

		groups, err := LabelControls(p, NewNameGenerator(NewStream(4)), NewStream(5))
		require.NoError(t, err)

		seen := make(map[string]bool)
		exposed := 0
		for _, g := range groups {
			require.False(t, seen[g.Name])
			seen[g.Name] = true
			for _, e := range g.Entries {
				require.False(t, seen[e.Label])
				seen[e.Label] = true
				assert.NotEqual(t, p.Output(), e.Module)

				m, err := p.Module(e.Module)
				require.NoError(t, err)
				spec, ok := m.Type.Controller(e.Controller)
				require.True(t, ok)
				assert.True(t, spec.Attached())
				exposed++
			}
		}

		attached := 0
		for _, id := range p.ModuleIDs() {
			for _, c := range p.Controllers(id) {
				if c.Attached() {
					attached++
				}
			}
		}
		assert.Equal(t, min(attached, LabelGroups*LabelsPerGroup), exposed)
	})

	t.Run("bound targets stay off the surface", func(t *testing.T) {
		p := patch.NewProject("test", patch.DefaultCatalog())
		ctl := newModule(t, p, patch.TypeMultiCtl)
		fb1 := newModule(t, p, patch.TypeFeedback)
		fb2 := newModule(t, p, patch.TypeFeedback)
		require.NoError(t, p.Bind(ctl, "value", fb1, "volume"))
		require.NoError(t, p.Bind(ctl, "value", fb2, "volume"))

		groups, err := LabelControls(p, NewNameGenerator(NewStream(8)), NewStream(9))
		require.NoError(t, err)

		var ctlExposed bool
		for _, g := range groups {
			for _, e := range g.Entries {
				if e.Module == fb1 || e.Module == fb2 {
					assert.NotEqual(t, "volume", e.Controller)
				}
				if e.Module == ctl && e.Controller == "value" {
					ctlExposed = true
				}
			}
		}
		assert.True(t, ctlExposed)
	})

	t.Run("empty project still draws group names", func(t *testing.T) {
		p := patch.NewProject("test", patch.DefaultCatalog())
		names := NewNameGenerator(NewStream(6))

		groups, err := LabelControls(p, names, NewStream(7))
		require.NoError(t, err)
		assert.Empty(t, groups)

		replay := NewNameGenerator(NewStream(6))
		for range LabelGroups {
			assert.True(t, names.Used(replay.Next()))
		}
	})
}
