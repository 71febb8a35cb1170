package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/metrasynth/gallery/internal/generator"
)

// DefaultFile is the config file name used when none is given.
const DefaultFile = "kipple.yml"

// Version is the only supported config version.
const Version = "1.0"

// Config represents the top-level kipple.yml configuration
type Config struct {
	Version         string            `yaml:"version" validate:"required"`
	Name            string            `yaml:"name,omitempty"` // Project name; "<seed>-synth" when empty
	RandomSeed      int64             `yaml:"random_seed" validate:"gte=0,lte=1073741824"`
	ModuleCount     ModuleCountConfig `yaml:"module_count"`
	MaxBifurcations int               `yaml:"max_bifurcations" validate:"gte=2,lte=10"`
	MaxCycles       int               `yaml:"max_cycles" validate:"gte=1"`
	Categories      CategoriesConfig  `yaml:"categories"`
	Rules           map[string]int    `yaml:"rules,omitempty" validate:"dive,gte=0,lte=100"` // Per-rule activation probability
	Output          *OutputConfig     `yaml:"output,omitempty"`
	Store           *StoreConfig      `yaml:"store,omitempty"`
}

// ModuleCountConfig bounds the target module count of a run
type ModuleCountConfig struct {
	Min int `yaml:"min" validate:"gte=1,lte=200"`
	Max int `yaml:"max" validate:"gtefield=Min,lte=200"`
}

// CategoriesConfig holds the aggregate activation probability of each mutation
// category. Unset categories default to 50.
type CategoriesConfig struct {
	Synth       *int `yaml:"synth,omitempty" validate:"omitempty,gte=0,lte=100"`
	Effect      *int `yaml:"effect,omitempty" validate:"omitempty,gte=0,lte=100"`
	Bifurcation *int `yaml:"bifurcation,omitempty" validate:"omitempty,gte=0,lte=100"`
	Termination *int `yaml:"termination,omitempty" validate:"omitempty,gte=0,lte=100"`
	Reunion     *int `yaml:"reunion,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// OutputConfig controls where generated patches are written
type OutputConfig struct {
	Path   string `yaml:"path,omitempty"`
	Format string `yaml:"format,omitempty" validate:"omitempty,oneof=json yaml"`
}

// StoreConfig specifies the Redis instance generated patches are saved to
type StoreConfig struct {
	RedisAddr string `yaml:"redis_addr" validate:"required,hostname_port"`
	Instance  string `yaml:"instance" validate:"required,max=64"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their yaml names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Default returns the configuration written by 'kipple init'
func Default() *Config {
	opts := generator.DefaultOptions()
	return &Config{
		Version:         Version,
		ModuleCount:     ModuleCountConfig{Min: opts.ModuleCountMin, Max: opts.ModuleCountMax},
		MaxBifurcations: opts.MaxBifurcations,
		MaxCycles:       opts.MaxCycles,
		Categories:      defaultCategories(),
		Output:          &OutputConfig{Format: "json"},
	}
}

func defaultCategories() CategoriesConfig {
	p := func() *int {
		v := generator.DefaultProbability
		return &v
	}
	return CategoriesConfig{Synth: p(), Effect: p(), Bifurcation: p(), Termination: p(), Reunion: p()}
}

// Validate performs strict validation on the configuration
func (c *Config) Validate() error {
	if c.Version != Version {
		return fmt.Errorf("unsupported version: %s (expected: %s)", c.Version, Version)
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fieldErrors(verrs)
		}
		return err
	}

	// Rule names must exist in the mutation catalog
	known := make(map[string]bool)
	for _, name := range generator.RuleNames() {
		known[name] = true
	}
	var unknown []string
	for name := range c.Rules {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown rules: %s (valid: %s)", strings.Join(unknown, ", "), strings.Join(generator.RuleNames(), ", "))
	}

	return nil
}

// fieldErrors flattens validator errors into one readable error, naming each
// field by its yaml path.
func fieldErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "gtefield":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s, got %v", field, strings.ToLower(fe.Param()), fe.Value()))
		case "hostname_port":
			msgs = append(msgs, fmt.Sprintf("%s must be host:port, got '%v'", field, fe.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got '%v'", field, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s, got %v", field, fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ProjectName returns the configured name or "<seed>-synth"
func (c *Config) ProjectName() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%d-synth", c.RandomSeed)
}

// GeneratorOptions converts the configuration into generator options
func (c *Config) GeneratorOptions() generator.Options {
	opts := generator.Options{
		Seed:            c.RandomSeed,
		ModuleCountMin:  c.ModuleCount.Min,
		ModuleCountMax:  c.ModuleCount.Max,
		MaxBifurcations: c.MaxBifurcations,
		MaxCycles:       c.MaxCycles,
		Categories:      make(map[generator.Category]int),
	}

	for cat, p := range map[generator.Category]*int{
		generator.Synth:       c.Categories.Synth,
		generator.Effect:      c.Categories.Effect,
		generator.Bifurcation: c.Categories.Bifurcation,
		generator.Termination: c.Categories.Termination,
		generator.Reunion:     c.Categories.Reunion,
	} {
		if p != nil {
			opts.Categories[cat] = *p
		}
	}

	if len(c.Rules) > 0 {
		opts.RuleProbabilities = make(map[string]int, len(c.Rules))
		for name, p := range c.Rules {
			opts.RuleProbabilities[name] = p
		}
	}
	return opts
}

// Load reads and validates kipple.yml from the specified path. Fields missing
// from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a kipple.yml document
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Write saves the configuration as YAML
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
