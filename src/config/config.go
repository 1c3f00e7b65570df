package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"idlelife/src/universe"
)

const (
	DefaultTemplate = "testSample1"
)

//ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Width       int                 `yaml:"width"`
	Height      int                 `yaml:"height"`
	Interval    time.Duration       `yaml:"interval"`
	MaxSteps    int                 `yaml:"max_steps"`
	Seed        int64               `yaml:"seed"`
	Engine      string              `yaml:"engine"`
	Demo        bool                `yaml:"demo"`
	Random      bool                `yaml:"random"`
	Template    string              `yaml:"template"`
	Policy      PolicyConfig        `yaml:"policy"`
	Templates   []universe.Template `yaml:"templates"`
	Interactive bool                `yaml:"interactive"`
	Print       bool                `yaml:"print"`
}

//PolicyConfig selects the dead-time bookkeeping of clear and push
type PolicyConfig struct {
	ClearResetsDeadTimes bool `yaml:"clear_resets_dead_times"`
	PushResetsDeadTimes  bool `yaml:"push_resets_dead_times"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:    universe.DefWidth,
		Height:   universe.DefHeight,
		Interval: universe.DefSimulationInterval,
		MaxSteps: universe.DefMaxSteps,
		Seed:     universe.DefSeed,
		Engine:   string(universe.StrategySwap),
		Template: DefaultTemplate,
	}
}

//Load reads the yaml file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

//Validate checks the values which cannot be fixed up silently
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: field %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: negative interval %v", ErrInvalid, c.Interval)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: negative max steps %d", ErrInvalid, c.MaxSteps)
	}
	if _, err := universe.ParseStrategy(c.Engine); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	for i, t := range c.Templates {
		if t.Name == "" {
			return fmt.Errorf("%w: template #%d has no name", ErrInvalid, i)
		}
	}
	return nil
}

//DeadTimePolicy converts the policy section to the engine policy
func (c *Config) DeadTimePolicy() universe.Policy {
	return universe.Policy{
		ClearResetsDeadTimes: c.Policy.ClearResetsDeadTimes,
		PushResetsDeadTimes:  c.Policy.PushResetsDeadTimes,
	}
}

//Options converts the configuration to the runner options
func (c *Config) Options() *universe.Options {
	return &universe.Options{
		Width:    c.Width,
		Height:   c.Height,
		Interval: c.Interval,
		MaxSteps: c.MaxSteps,
		Seed:     c.Seed,
	}
}

//NewUniverse builds the engine described by the configuration
func (c *Config) NewUniverse() (*universe.Universe, error) {
	strategy, err := universe.ParseStrategy(c.Engine)
	if err != nil {
		return nil, err
	}
	opts := []universe.Option{universe.WithStrategy(strategy), universe.WithPolicy(c.DeadTimePolicy())}
	if c.Demo {
		return universe.New(opts...), nil
	}
	return universe.WithCells(make([]universe.Cell, c.Width*c.Height), c.Height, c.Width, opts...)
}
