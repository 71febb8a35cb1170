package patch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProject(t *testing.T) *Project {
	t.Helper()
	return NewProject("test", DefaultCatalog())
}

func TestNewProject(t *testing.T) {
	p := newTestProject(t)

	assert.Equal(t, "test", p.Name)
	assert.Equal(t, 0, p.ModuleCount(), "output sink is not counted")
	assert.Empty(t, p.ModuleIDs())

	out, err := p.Module(p.Output())
	require.NoError(t, err)
	assert.Equal(t, TypeOutput, out.Type.Name)
}

func TestProjectNewModule(t *testing.T) {
	p := newTestProject(t)

	t.Run("applies defaults and params", func(t *testing.T) {
		id, err := p.NewModule(TypeAnalogGenerator, map[string]int{"polyphony_ch": 1})
		require.NoError(t, err)

		v, err := p.Value(id, "polyphony_ch")
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		v, err = p.Value(id, "volume")
		require.NoError(t, err)
		assert.Equal(t, 80, v)
	})

	t.Run("rejects unknown types", func(t *testing.T) {
		_, err := p.NewModule("Theremin", nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown module type")
	})

	t.Run("rejects params outside the domain without creating the module", func(t *testing.T) {
		before := p.ModuleCount()
		_, err := p.NewModule(TypeReverb, map[string]int{"wet": 1000})
		assert.Error(t, err)
		assert.Equal(t, before, p.ModuleCount())
	})

	t.Run("allocates harmonic arrays", func(t *testing.T) {
		id, err := p.NewModule(TypeSpectraVoice, nil)
		require.NoError(t, err)
		assert.Equal(t, 16, p.HarmonicCount(id))
	})
}

func TestProjectSetController(t *testing.T) {
	p := newTestProject(t)
	id, err := p.NewModule(TypeFilter, nil)
	require.NoError(t, err)

	require.NoError(t, p.SetController(id, "freq_hz", 440))
	v, _ := p.Value(id, "freq_hz")
	assert.Equal(t, 440, v)

	err = p.SetController(id, "freq_hz", 20000)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "outside domain")

	err = p.SetController(id, "nope", 1)
	assert.Error(t, err)

	err = p.SetController(ModuleID(99), "freq_hz", 1)
	assert.Error(t, err)
}

func TestProjectConnect(t *testing.T) {
	p := newTestProject(t)
	a, _ := p.NewModule(TypeKicker, nil)
	b, _ := p.NewModule(TypeReverb, nil)

	t.Run("is idempotent", func(t *testing.T) {
		require.NoError(t, p.Connect(a, b, Signal))
		require.NoError(t, p.Connect(a, b, Signal))
		assert.Len(t, p.Connections(), 1)
	})

	t.Run("distinguishes kinds", func(t *testing.T) {
		require.NoError(t, p.Connect(a, b, Modulation))
		assert.Len(t, p.Connections(), 2)
	})

	t.Run("rejects self connections", func(t *testing.T) {
		assert.Error(t, p.Connect(a, a, Signal))
	})

	t.Run("rejects unknown modules", func(t *testing.T) {
		assert.Error(t, p.Connect(a, ModuleID(42), Signal))
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		assert.Error(t, p.Connect(a, b, ConnectionKind("sidechain")))
	})

	t.Run("sink only takes signal input", func(t *testing.T) {
		assert.Error(t, p.Connect(b, p.Output(), Modulation))
		assert.Error(t, p.Connect(p.Output(), b, Signal))
		require.NoError(t, p.ConnectAll([]ModuleID{a, b}, p.Output()))
		assert.Equal(t, []ModuleID{a, b}, p.Inputs(p.Output()))
	})
}

func TestProjectBind(t *testing.T) {
	p := newTestProject(t)
	ctl, _ := p.NewModule(TypeMultiCtl, nil)
	fb1, _ := p.NewModule(TypeFeedback, nil)
	fb2, _ := p.NewModule(TypeFeedback, nil)
	rev, _ := p.NewModule(TypeReverb, nil)

	require.NoError(t, p.Bind(ctl, "value", fb1, "volume"))
	require.NoError(t, p.Bind(ctl, "value", fb2, "volume"))

	t.Run("moves targets in lock-step", func(t *testing.T) {
		require.NoError(t, p.SetController(ctl, "value", 16384))
		v1, _ := p.Value(fb1, "volume")
		v2, _ := p.Value(fb2, "volume")
		assert.Equal(t, 5000, v1)
		assert.Equal(t, v1, v2)
	})

	t.Run("requires control capabilities", func(t *testing.T) {
		assert.Error(t, p.Bind(fb1, "volume", fb2, "volume"))
		assert.Error(t, p.Bind(ctl, "value", rev, "wet"))
	})

	t.Run("requires known controllers", func(t *testing.T) {
		assert.Error(t, p.Bind(ctl, "nope", fb1, "volume"))
		assert.Error(t, p.Bind(ctl, "value", fb1, "nope"))
	})
}

func TestProjectSetHarmonic(t *testing.T) {
	p := newTestProject(t)
	sv, _ := p.NewModule(TypeSpectraVoice, nil)

	require.NoError(t, p.SetHarmonic(sv, 0, Harmonic{FreqHz: 440, Volume: 200, Width: 3, Type: 1}))
	m, _ := p.Module(sv)
	assert.Equal(t, 440, m.Harmonics[0].FreqHz)

	assert.Error(t, p.SetHarmonic(sv, 16, Harmonic{}))
	assert.Error(t, p.SetHarmonic(sv, 0, Harmonic{FreqHz: 30000}))
	assert.Error(t, p.SetHarmonic(sv, 0, Harmonic{Type: len(HarmonicTypes)}))
}

func TestProjectExpose(t *testing.T) {
	p := newTestProject(t)
	sv, _ := p.NewModule(TypeSpectraVoice, nil)

	require.NoError(t, p.Expose("g1", "first", sv, "volume"))
	require.NoError(t, p.Expose("g1", "second", sv, "attack"))
	require.NoError(t, p.Expose("g2", "third", sv, "release"))

	groups := p.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "g1", groups[0].Name)
	assert.Len(t, groups[0].Entries, 2)

	err := p.Expose("g1", "hidden", sv, "harmonic")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not attached")
}

func TestDocumentEncode(t *testing.T) {
	p := newTestProject(t)
	gen, _ := p.NewModule(TypeGenerator, nil)
	require.NoError(t, p.Connect(gen, p.Output(), Signal))

	t.Run("json round trip", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, p.Document(), FormatJSON))

		doc, err := DecodeJSON(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, p.Document(), doc)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, p.Document(), FormatYAML))
		assert.Contains(t, buf.String(), "type: Generator")
	})

	t.Run("identical projects encode identically", func(t *testing.T) {
		q := newTestProject(t)
		gen, _ := q.NewModule(TypeGenerator, nil)
		require.NoError(t, q.Connect(gen, q.Output(), Signal))

		var a, b bytes.Buffer
		require.NoError(t, Encode(&a, p.Document(), FormatJSON))
		require.NoError(t, Encode(&b, q.Document(), FormatJSON))
		assert.Equal(t, a.String(), b.String())
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := ParseFormat("toml")
		assert.Error(t, err)
	})
}
