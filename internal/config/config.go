package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"mlp-playground/internal/model"
	"mlp-playground/internal/target"
)

// Config captures the runtime knobs for the playground.
type Config struct {
	Architecture string  `yaml:"architecture"`
	Activation   string  `yaml:"activation"`
	LearningRate float64 `yaml:"learning_rate"`
	Momentum     float64 `yaml:"momentum"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	Target       string  `yaml:"target"`
	Samples      int     `yaml:"samples"`
	Seed         uint64  `yaml:"seed"`
	Resolution   int     `yaml:"resolution"`

	DatasetPath string `yaml:"dataset_path"`
	DatasetDir  string `yaml:"dataset_dir"`
	OutputDir   string `yaml:"output_dir"`
	WeightsOut  string `yaml:"weights_out"`
	WeightsIn   string `yaml:"weights_in"`
	DBPath      string `yaml:"db_path"`
	Listen      string `yaml:"listen"`
}

// Overrides captures CLI supplied values. LearningRate and Momentum are
// pointers because zero momentum is a valid setting; nil means not given.
type Overrides struct {
	Architecture string
	Activation   string
	LearningRate *float64
	Momentum     *float64
	Epochs       int
	BatchSize    int
	Target       string
	Samples      int
	Seed         uint64
	DatasetPath  string
	OutputDir    string
	WeightsOut   string
	WeightsIn    string
	DBPath       string
	Listen       string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Architecture: "2,4,1",
		Activation:   model.Sigmoid.String(),
		LearningRate: 0.1,
		Momentum:     0.9,
		Epochs:       500,
		BatchSize:    16,
		Target:       string(target.XOR),
		Resolution:   30,
		Listen:       ":8080",
	}
}

// Load reads and validates a Config from YAML. Keys missing from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := parseYAML(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Architecture != "" {
		c.Architecture = o.Architecture
	}
	if o.Activation != "" {
		c.Activation = o.Activation
	}
	if o.LearningRate != nil {
		c.LearningRate = *o.LearningRate
	}
	if o.Momentum != nil {
		c.Momentum = *o.Momentum
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Target != "" {
		c.Target = o.Target
	}
	if o.Samples > 0 {
		c.Samples = o.Samples
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.DatasetPath != "" {
		c.DatasetPath = o.DatasetPath
	}
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if o.WeightsOut != "" {
		c.WeightsOut = o.WeightsOut
	}
	if o.WeightsIn != "" {
		c.WeightsIn = o.WeightsIn
	}
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.Listen != "" {
		c.Listen = o.Listen
	}
}

// Validate verifies the config is runnable and normalizes enum fields.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	arch, err := model.ParseArchitecture(c.Architecture)
	if err != nil {
		return err
	}
	if err := arch.Validate(); err != nil {
		return err
	}
	act, err := model.ParseActivation(c.Activation)
	if err != nil {
		return err
	}
	c.Activation = act.String()
	if !(c.LearningRate > 0) {
		return fmt.Errorf("learning_rate must be > 0 (got %v)", c.LearningRate)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return fmt.Errorf("momentum must be in [0,1) (got %v)", c.Momentum)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must be >= 0 (got %d)", c.BatchSize)
	}
	if c.Samples < 0 {
		return fmt.Errorf("samples must be >= 0 (got %d)", c.Samples)
	}
	c.Target = string(target.ParseKind(c.Target))
	if c.Resolution == 0 {
		c.Resolution = 30
	}
	if c.Resolution < 2 {
		return fmt.Errorf("resolution must be >= 2 (got %d)", c.Resolution)
	}
	return nil
}

// Encode writes cfg as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

func parseYAML(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	cfg.Architecture = strings.TrimSpace(cfg.Architecture)
	return cfg, nil
}
