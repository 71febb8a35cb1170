package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrasynth/gallery/pkg/patch"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	names := make(map[string]bool)
	for _, r := range rules {
		assert.False(t, names[r.Name], "duplicate rule %s", r.Name)
		names[r.Name] = true
		assert.Equal(t, DefaultProbability, r.Probability)
	}

	c := NewCatalog(rules, nil)
	assert.Len(t, c.Rules(Synth), 10)
	assert.Len(t, c.Rules(Effect), 18)
	assert.Len(t, c.Rules(Bifurcation), 1)
	assert.Len(t, c.Rules(Termination), 1)
	assert.Len(t, c.Rules(Reunion), 2)
	assert.Equal(t, "analog_gen", c.Rules(Synth)[0].Name)
	assert.Equal(t, RuleNames(), func() []string {
		var out []string
		for _, r := range c.All() {
			out = append(out, r.Name)
		}
		return out
	}())

	require.NoError(t, ValidateCatalog(c, patch.DefaultCatalog(), patch.TypeMultiSynth))
}

func TestNewCatalog_Overrides(t *testing.T) {
	c := NewCatalog(DefaultRules(), map[string]int{"reverb": 0, "bifurcate": 100})

	for _, r := range c.Rules(Effect) {
		if r.Name == "reverb" {
			assert.Equal(t, 0, r.Probability)
		}
	}
	assert.Equal(t, 100, c.Rules(Bifurcation)[0].Probability)
	assert.Nil(t, c.Rules(Category(42)))
}

func TestValidateCatalog(t *testing.T) {
	types := patch.DefaultCatalog()

	tests := []struct {
		name    string
		rules   []Rule
		root    string
		wantErr string
	}{
		{
			name:    "unknown root module",
			rules:   DefaultRules(),
			root:    "Theremin",
			wantErr: "unknown root module type",
		},
		{
			name:    "probability above range",
			rules:   []Rule{{Name: "terminate", Category: Termination, Probability: 101, Op: Op{Kind: OpTerminate}}},
			root:    patch.TypeMultiSynth,
			wantErr: "outside [0, 100]",
		},
		{
			name:    "unknown category",
			rules:   []Rule{{Name: "odd", Category: Category(9), Probability: 50, Op: Op{Kind: OpStub}}},
			root:    patch.TypeMultiSynth,
			wantErr: "invalid category",
		},
		{
			name:    "unknown module type",
			rules:   []Rule{module("theremin", Synth, "Theremin")},
			root:    patch.TypeMultiSynth,
			wantErr: "unknown module type",
		},
		{
			name:    "synth rule with effect module",
			rules:   []Rule{module("reverb", Synth, patch.TypeReverb)},
			root:    patch.TypeMultiSynth,
			wantErr: "cannot accept the input",
		},
		{
			name:    "skip names unknown controller",
			rules:   []Rule{module("amp", Effect, patch.TypeAmplifier, "nope")},
			root:    patch.TypeMultiSynth,
			wantErr: "no controller 'nope'",
		},
		{
			name: "reunion rule never reachable",
			rules: []Rule{
				module("glide", Synth, patch.TypeGlide),
				{Name: "reunion_amp", Category: Reunion, Probability: 50, Op: Op{Kind: OpReunionMix, Module: patch.TypeAmplifier}},
			},
			root:    patch.TypeMultiSynth,
			wantErr: "no track can ever support category reunion",
		},
		{
			name: "reunion reachable through a synth",
			rules: []Rule{
				module("generator", Synth, patch.TypeGenerator),
				{Name: "reunion_amp", Category: Reunion, Probability: 50, Op: Op{Kind: OpReunionMix, Module: patch.TypeAmplifier}},
			},
			root: patch.TypeMultiSynth,
		},
		{
			name:    "effect rule from audio root",
			rules:   []Rule{module("reverb", Effect, patch.TypeReverb)},
			root:    patch.TypeGenerator,
			wantErr: "",
		},
		{
			name:    "feedback outside effect category",
			rules:   []Rule{{Name: "fb", Category: Synth, Probability: 50, Op: Op{Kind: OpFeedback, Module: patch.TypeFeedback}}},
			root:    patch.TypeMultiSynth,
			wantErr: "must be in category effect",
		},
		{
			name:    "duplicate rule",
			rules:   []Rule{stub("x", Synth), stub("x", Synth)},
			root:    patch.TypeMultiSynth,
			wantErr: "duplicate rule 'x'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCatalog(NewCatalog(tt.rules, nil), types, tt.root)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedCatalog)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCategoriesFor(t *testing.T) {
	audio := patch.Caps(patch.ReceivesAudio, patch.SendsAudio)
	notes := patch.Caps(patch.ReceivesNotes, patch.SendsNotes)

	assert.Equal(t, CategorySet(0), CategoriesFor(audio, false, false))
	assert.Equal(t, "{effect,bifurcation,termination,reunion}", CategoriesFor(audio, true, false).String())
	assert.Equal(t, "{effect}", CategoriesFor(audio, true, true).String())
	assert.Equal(t, "{synth,bifurcation,termination}", CategoriesFor(notes, true, false).String())
	assert.Equal(t, "{synth}", CategoriesFor(notes, true, true).String())
	assert.Equal(t, "{}", CategoriesFor(patch.Caps(patch.SendsControls), true, true).String())
}

func TestCategory_Text(t *testing.T) {
	for _, c := range Categories {
		text, err := c.MarshalText()
		require.NoError(t, err)

		var back Category
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, c, back)
	}

	_, err := ParseCategory("mutation")
	assert.Error(t, err)
	_, err = Category(7).MarshalText()
	assert.Error(t, err)
}
