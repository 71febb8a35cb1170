package patch

import "fmt"

// Module type names registered by DefaultCatalog.
const (
	TypeOutput          = "Output"
	TypeMultiSynth      = "MultiSynth"
	TypeAnalogGenerator = "AnalogGenerator"
	TypeDrumSynth       = "DrumSynth"
	TypeFM              = "FM"
	TypeGenerator       = "Generator"
	TypeKicker          = "Kicker"
	TypeSpectraVoice    = "SpectraVoice"
	TypeAmplifier       = "Amplifier"
	TypeCompressor      = "Compressor"
	TypeDCBlocker       = "DCBlocker"
	TypeDelay           = "Delay"
	TypeDistortion      = "Distortion"
	TypeEcho            = "Echo"
	TypeEQ              = "EQ"
	TypeFilter          = "Filter"
	TypeFilterPro       = "FilterPro"
	TypeLFO             = "LFO"
	TypeLoop            = "Loop"
	TypePitchShifter    = "PitchShifter"
	TypeReverb          = "Reverb"
	TypeVibrato         = "Vibrato"
	TypeVocalFilter     = "VocalFilter"
	TypeWaveShaper      = "WaveShaper"
	TypeFeedback        = "Feedback"
	TypeGlide           = "Glide"
	TypeModulator       = "Modulator"
	TypeMultiCtl        = "MultiCtl"
)

// Catalog is an ordered registry of module types.
// Registration order is significant: it is the order Names returns.
type Catalog struct {
	types map[string]*ModuleType
	order []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{types: make(map[string]*ModuleType)}
}

// Register adds a module type. Names must be unique and controller defaults must
// lie within their domains.
func (c *Catalog) Register(t *ModuleType) error {
	if t.Name == "" {
		return fmt.Errorf("module type name cannot be empty")
	}
	if _, exists := c.types[t.Name]; exists {
		return fmt.Errorf("duplicate module type '%s'", t.Name)
	}
	seen := make(map[string]bool, len(t.Controllers))
	for _, ctl := range t.Controllers {
		if seen[ctl.Name] {
			return fmt.Errorf("module type '%s': duplicate controller '%s'", t.Name, ctl.Name)
		}
		seen[ctl.Name] = true
		if !ctl.Domain.Contains(ctl.Default) {
			return fmt.Errorf("module type '%s': controller '%s' default %d outside its domain", t.Name, ctl.Name, ctl.Default)
		}
	}
	c.types[t.Name] = t
	c.order = append(c.order, t.Name)
	return nil
}

// MustRegister is like Register but panics on error. Used for static catalogs.
func (c *Catalog) MustRegister(t *ModuleType) {
	if err := c.Register(t); err != nil {
		panic(err)
	}
}

// Lookup returns the module type with the given name.
func (c *Catalog) Lookup(name string) (*ModuleType, bool) {
	t, ok := c.types[name]
	return t, ok
}

// ModuleType is Lookup under the name Project uses, so a bare catalog can
// stand in wherever module types are resolved by name.
func (c *Catalog) ModuleType(name string) (*ModuleType, bool) {
	return c.Lookup(name)
}

// Names returns the registered type names in registration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

var (
	quality   = []string{"hq", "hq_mono", "lq", "lq_mono"}
	channels  = []string{"stereo", "mono"}
	waveforms = []string{"triangle", "saw", "square", "noise", "dirty", "sin", "half_sin", "abs_sin", "pulse", "sin_x2"}
	timeUnits = []string{"sec_div_256", "ms", "hz", "tick", "line", "line_div_2", "line_div_3"}
)

func ctl(name string, d Domain, def int) ControllerSpec {
	return ControllerSpec{Name: name, Domain: d, Default: def}
}

func internal(name string, d Domain, def int) ControllerSpec {
	return ControllerSpec{Name: name, Domain: d, Default: def, Internal: true}
}

var (
	synthCaps  = Caps(ReceivesNotes, SendsAudio)
	effectCaps = Caps(ReceivesAudio, SendsAudio)
	noteCaps   = Caps(ReceivesNotes, SendsNotes)
)

// DefaultCatalog returns the built-in module catalog.
func DefaultCatalog() *Catalog {
	c := NewCatalog()

	c.MustRegister(&ModuleType{Name: TypeOutput, Caps: Caps(ReceivesAudio)})

	c.MustRegister(&ModuleType{Name: TypeMultiSynth, Caps: noteCaps, Controllers: []ControllerSpec{
		ctl("transpose", Range(-128, 128), 0),
		ctl("random_pitch", Range(0, 4096), 0),
		ctl("velocity", Range(0, 256), 256),
		ctl("finetune", Range(-256, 256), 0),
		ctl("random_phase", Range(0, 32768), 0),
		ctl("random_velocity", Range(0, 32768), 0),
		ctl("phase", Range(0, 32768), 0),
		ctl("curve2_influence", Range(0, 256), 256),
	}})

	c.MustRegister(&ModuleType{Name: TypeAnalogGenerator, Caps: synthCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 256), 80),
		ctl("waveform", Enum(waveforms...), 0),
		ctl("panning", Range(-128, 128), 0),
		ctl("attack", Range(0, 512), 0),
		ctl("release", Range(0, 512), 0),
		ctl("sustain", Bool(), 1),
		ctl("exponential_envelope", Bool(), 1),
		ctl("duty_cycle", Range(0, 1022), 511),
		ctl("freq2", Range(0, 2000), 1000),
		ctl("filter", Enum("off", "lp_12db", "hp_12db", "bp_12db", "br_12db", "lp_24db", "hp_24db", "bp_24db", "br_24db"), 0),
		ctl("f_freq_hz", Range(0, 14000), 14000),
		ctl("f_resonance", Range(0, 1530), 0),
		ctl("f_envelope", Enum("off", "sustain_off", "sustain_on"), 0),
		ctl("polyphony_ch", Range(1, 32), 16),
		ctl("mode", Enum(quality...), 0),
		ctl("noise", Range(0, 256), 0),
		ctl("osc2_volume", Range(0, 32768), 0),
		ctl("osc2_mode", Enum("add", "sub", "mul", "min", "max", "and", "xor"), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeDrumSynth, Caps: synthCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 512), 256),
		ctl("panning", Range(-128, 128), 0),
		ctl("polyphony_ch", Range(1, 8), 4),
		ctl("bass_volume", Range(0, 512), 200),
		ctl("bass_power", Range(0, 256), 256),
		ctl("bass_tone", Range(0, 256), 64),
		ctl("bass_length", Range(0, 256), 64),
		ctl("hihat_volume", Range(0, 512), 256),
		ctl("hihat_length", Range(0, 256), 64),
		ctl("snare_volume", Range(0, 512), 256),
		ctl("snare_tone", Range(0, 256), 128),
		ctl("snare_length", Range(0, 256), 64),
	}})

	c.MustRegister(&ModuleType{Name: TypeFM, Caps: synthCaps, Controllers: []ControllerSpec{
		ctl("c_volume", Range(0, 256), 128),
		ctl("m_volume", Range(0, 256), 48),
		ctl("panning", Range(-128, 128), 0),
		ctl("c_freq_ratio", Range(0, 16), 1),
		ctl("m_freq_ratio", Range(0, 16), 1),
		ctl("m_feedback", Range(0, 256), 0),
		ctl("c_attack", Range(0, 512), 32),
		ctl("c_decay", Range(0, 512), 32),
		ctl("c_sustain", Range(0, 256), 128),
		ctl("c_release", Range(0, 512), 64),
		ctl("m_attack", Range(0, 512), 32),
		ctl("m_decay", Range(0, 512), 32),
		ctl("m_sustain", Range(0, 256), 128),
		ctl("m_release", Range(0, 512), 64),
		ctl("m_scaling_per_key", Range(0, 4), 0),
		ctl("polyphony_ch", Range(1, 16), 4),
		ctl("mode", Enum(quality...), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeGenerator, Caps: synthCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 256), 128),
		ctl("waveform", Enum(waveforms...), 0),
		ctl("panning", Range(-128, 128), 0),
		ctl("attack", Range(0, 512), 0),
		ctl("release", Range(0, 512), 0),
		ctl("polyphony_ch", Range(1, 16), 8),
		ctl("mode", Enum(quality...), 0),
		ctl("sustain", Bool(), 1),
		ctl("freq_modulation_input", Range(0, 256), 0),
		ctl("duty_cycle", Range(0, 1022), 511),
	}})

	c.MustRegister(&ModuleType{Name: TypeKicker, Caps: synthCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 256), 256),
		ctl("waveform", Enum("triangle", "square", "sin"), 0),
		ctl("panning", Range(-128, 128), 0),
		ctl("attack", Range(0, 512), 0),
		ctl("release", Range(0, 512), 32),
		ctl("boost", Range(0, 1024), 0),
		ctl("acceleration", Range(0, 1024), 256),
		ctl("polyphony_ch", Range(1, 4), 1),
		ctl("anticlick", Bool(), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeSpectraVoice, Caps: synthCaps, Harmonics: 16, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 256), 128),
		ctl("panning", Range(-128, 128), 0),
		ctl("attack", Range(0, 512), 10),
		ctl("release", Range(0, 512), 512),
		ctl("polyphony_ch", Range(1, 32), 8),
		ctl("mode", Enum("hq", "hq_mono", "lq", "lq_mono", "hq_spline"), 0),
		ctl("sustain", Bool(), 1),
		ctl("spectrum_resolution", Range(0, 5), 1),
		internal("harmonic", Range(0, 15), 0),
		internal("h_freq_hz", Range(0, 22050), 1098),
		internal("h_volume", Range(0, 255), 255),
		internal("h_width", Range(0, 255), 3),
		internal("h_type", Enum(HarmonicTypes...), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeAmplifier, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 1024), 256),
		ctl("balance", Range(-128, 128), 0),
		ctl("dc_offset", Range(-128, 128), 0),
		ctl("inverse", Bool(), 0),
		ctl("stereo_width", Range(0, 256), 128),
		ctl("absolute", Bool(), 0),
		ctl("fine_volume", Range(0, 32768), 32768),
		ctl("gain", Range(0, 5000), 1),
	}})

	c.MustRegister(&ModuleType{Name: TypeCompressor, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 512), 256),
		ctl("threshold", Range(0, 512), 256),
		ctl("slope_pct", Range(0, 200), 100),
		ctl("attack_ms", Range(1, 500), 1),
		ctl("release_ms", Range(1, 1000), 300),
		ctl("mode", Enum("peak", "rms"), 0),
		internal("sidechain_input", Range(0, 32), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeDCBlocker, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("channels", Enum(channels...), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeDelay, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("dry", Range(0, 512), 256),
		ctl("wet", Range(0, 512), 256),
		ctl("delay_l", Range(0, 256), 128),
		ctl("delay_r", Range(0, 256), 160),
		ctl("volume_l", Range(0, 256), 256),
		ctl("volume_r", Range(0, 256), 256),
		ctl("channels", Enum(channels...), 0),
		ctl("inverse", Bool(), 0),
		ctl("delay_units", Enum(timeUnits...), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeDistortion, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 256), 128),
		ctl("type", Enum("lim", "sat"), 0),
		ctl("power", Range(0, 256), 0),
		ctl("bit_depth", Range(1, 16), 16),
		ctl("freq_hz", Range(0, 44100), 44100),
		ctl("noise", Range(0, 256), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeEcho, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("dry", Range(0, 256), 256),
		ctl("wet", Range(0, 256), 40),
		ctl("feedback", Range(0, 256), 128),
		ctl("delay", Range(0, 256), 256),
		ctl("channels", Enum(channels...), 0),
		ctl("delay_units", Enum(timeUnits...), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeEQ, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("low", Range(0, 512), 256),
		ctl("middle", Range(0, 512), 256),
		ctl("high", Range(0, 512), 256),
		ctl("channels", Enum(channels...), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeFilter, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 256), 256),
		ctl("freq_hz", Range(0, 14000), 14000),
		ctl("resonance", Range(0, 1530), 0),
		ctl("type", Enum("lp", "hp", "bp", "notch"), 0),
		ctl("response", Range(0, 256), 8),
		ctl("mode", Enum(quality...), 0),
		ctl("impulse", Range(0, 14000), 0),
		ctl("mix", Range(0, 256), 256),
		ctl("lfo_freq", Range(0, 1024), 8),
		ctl("lfo_amp", Range(0, 256), 0),
		ctl("exponential_freq", Bool(), 0),
		ctl("rolloff", Enum("db12", "db24", "db36", "db48"), 0),
		ctl("lfo_waveform", Enum("sin", "saw", "saw2", "square", "random"), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeFilterPro, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 32768), 32768),
		ctl("type", Enum("lp", "hp", "bp_const_skirt_gain", "bp_const_peak_gain", "notch", "all_pass", "peaking", "low_shelf", "high_shelf", "lp_6db", "hp_6db"), 0),
		ctl("freq", Range(0, 22000), 22000),
		ctl("freq_finetune", Range(-1000, 1000), 0),
		ctl("freq_scale", Range(0, 200), 100),
		ctl("exponential_freq", Bool(), 0),
		ctl("q", Range(0, 32768), 16384),
		ctl("gain", Range(-16384, 16384), 0),
		ctl("roll_off", Enum("db12", "db24", "db36", "db48"), 0),
		ctl("response", Range(0, 1000), 250),
		ctl("mode", Enum(channels...), 0),
		ctl("mix", Range(0, 32768), 32768),
	}})

	c.MustRegister(&ModuleType{Name: TypeLFO, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 512), 256),
		ctl("type", Enum("amplitude", "panning"), 0),
		ctl("amplitude", Range(0, 256), 256),
		ctl("freq", Range(1, 2048), 256),
		ctl("waveform", Enum("sin", "square", "sin2", "saw", "saw2", "random", "triangle", "random_interpolated"), 0),
		ctl("set_phase", Range(0, 256), 0),
		ctl("channels", Enum(channels...), 0),
		ctl("frequency_unit", Enum("hz_div_64", "ms", "hz", "tick", "line", "line_div_2", "line_div_3"), 0),
		ctl("duty_cycle", Range(0, 256), 128),
		ctl("generator", Bool(), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeLoop, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 256), 256),
		ctl("delay", Range(0, 256), 256),
		ctl("channels", Enum("mono", "stereo"), 1),
		ctl("repeats", Range(0, 64), 0),
		ctl("mode", Enum("normal", "ping_pong"), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypePitchShifter, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 512), 256),
		ctl("pitch", Range(-600, 600), 0),
		ctl("pitch_scale", Range(0, 200), 100),
		ctl("feedback", Range(0, 256), 0),
		ctl("grain_size", Range(0, 256), 64),
		ctl("mode", Enum(quality...), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeReverb, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("dry", Range(0, 256), 256),
		ctl("wet", Range(0, 256), 64),
		ctl("feedback", Range(0, 256), 256),
		ctl("damp", Range(0, 256), 128),
		ctl("stereo_width", Range(0, 256), 256),
		ctl("freeze", Bool(), 0),
		ctl("mode", Enum(quality...), 0),
		ctl("all_pass_filter", Bool(), 1),
		ctl("room_size", Range(0, 128), 16),
		ctl("random_seed", Range(0, 32768), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeVibrato, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 256), 256),
		ctl("amplitude", Range(0, 256), 16),
		ctl("freq", Range(1, 2048), 256),
		ctl("channels", Enum(channels...), 0),
		ctl("set_phase", Range(0, 256), 0),
		ctl("frequency_units", Enum("hz_div_64", "ms", "hz", "tick", "line", "line_div_2", "line_div_3"), 0),
	}})

	vowels := []string{"a", "e", "i", "o", "u"}
	c.MustRegister(&ModuleType{Name: TypeVocalFilter, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 512), 256),
		ctl("formant_width_hz", Range(0, 256), 128),
		ctl("intensity", Range(0, 256), 128),
		ctl("formants", Range(1, 5), 5),
		ctl("vowel", Range(0, 256), 0),
		ctl("voice_type", Enum("soprano", "alto", "tenor", "bass", "child", "neutral"), 0),
		ctl("channels", Enum(channels...), 0),
		ctl("random_freq", Range(0, 256), 0),
		ctl("random_seed", Range(0, 32768), 0),
		ctl("vowel1", Enum(vowels...), 0),
		ctl("vowel2", Enum(vowels...), 1),
		ctl("vowel3", Enum(vowels...), 2),
		ctl("vowel4", Enum(vowels...), 3),
		ctl("vowel5", Enum(vowels...), 4),
	}})

	c.MustRegister(&ModuleType{Name: TypeWaveShaper, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("input_volume", Range(0, 512), 256),
		ctl("mix", Range(0, 256), 256),
		ctl("output_volume", Range(0, 512), 256),
		ctl("symmetric", Bool(), 1),
		ctl("mode", Enum(quality...), 0),
		ctl("dc_blocker", Bool(), 1),
	}})

	c.MustRegister(&ModuleType{Name: TypeFeedback, Caps: effectCaps | Caps(ReceivesControls), Controllers: []ControllerSpec{
		ctl("volume", Range(0, 10000), 1000),
		ctl("channels", Enum(channels...), 0),
	}})

	c.MustRegister(&ModuleType{Name: TypeGlide, Caps: noteCaps, Controllers: []ControllerSpec{
		ctl("response", Range(0, 1000), 500),
		ctl("sample_rate_hz", Range(1, 32768), 150),
		ctl("reset_on_first_note", Bool(), 1),
		ctl("polyphony", Bool(), 1),
		ctl("pitch", Range(-600, 600), 0),
		ctl("pitch_scale", Range(0, 200), 100),
	}})

	c.MustRegister(&ModuleType{Name: TypeModulator, Caps: effectCaps, Controllers: []ControllerSpec{
		ctl("volume", Range(0, 512), 256),
		ctl("modulation_type", Enum("amplitude", "phase", "phase_abs", "frequency", "min", "max", "and", "xor"), 0),
		ctl("channels", Enum(channels...), 0),
		ctl("max_phase_modulation_delay", Range(0, 1000), 512),
		ctl("max_frequency_modulation_delay", Range(0, 1000), 512),
	}})

	c.MustRegister(&ModuleType{Name: TypeMultiCtl, Caps: Caps(SendsControls), Controllers: []ControllerSpec{
		ctl("value", Range(0, 32768), 0),
		internal("gain", Range(0, 1024), 256),
		internal("quantization", Range(0, 32768), 32768),
		internal("out_offset", Range(-16384, 16384), 0),
		internal("response", Range(0, 1000), 1000),
		internal("sample_rate_hz", Range(1, 32768), 150),
	}})

	return c
}
