package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Config captures the runtime knobs for a training run. The network
// constants live with the session; this is only what varies run to run.
type Config struct {
	DataPath        string `yaml:"data_path"`
	LabelsPath      string `yaml:"labels_path"`
	Steps           int    `yaml:"steps"`
	BatchSize       int    `yaml:"batch_size"`
	Seed            int64  `yaml:"seed"`
	LogEvery        int    `yaml:"log_every"`
	CheckpointEvery int    `yaml:"checkpoint_every"`
	CheckpointPath  string `yaml:"checkpoint_path"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	DataPath        string
	LabelsPath      string
	Steps           int
	BatchSize       int
	Seed            int64
	LogEvery        int
	CheckpointEvery int
	CheckpointPath  string
}

// Default returns the run configuration used when no file is given.
func Default() *Config {
	return &Config{
		Steps:           2000,
		BatchSize:       200,
		Seed:            42,
		LogEvery:        25,
		CheckpointEvery: 100,
		CheckpointPath:  "adversarial-model.gob",
	}
}

// Load reads and validates a Config from YAML.
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
	if o.DataPath != "" {
		c.DataPath = o.DataPath
	}
	if o.LabelsPath != "" {
		c.LabelsPath = o.LabelsPath
	}
	if o.Steps > 0 {
		c.Steps = o.Steps
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.CheckpointEvery > 0 {
		c.CheckpointEvery = o.CheckpointEvery
	}
	if o.CheckpointPath != "" {
		c.CheckpointPath = o.CheckpointPath
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be > 0 (got %d)", c.Steps)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LabelsPath != "" && c.DataPath == "" {
		return errors.New("labels_path requires data_path")
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 25
	}
	if c.CheckpointEvery <= 0 {
		c.CheckpointEvery = 100
	}
	if c.CheckpointPath == "" {
		c.CheckpointPath = "adversarial-model.gob"
	}
	return nil
}

func parseYAML(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: missing ':'", lineNo)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, "\"'")
		switch key {
		case "data_path":
			cfg.DataPath = value
		case "labels_path":
			cfg.LabelsPath = value
		case "steps":
			v, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: steps: %w", lineNo, err)
			}
			cfg.Steps = v
		case "batch_size":
			v, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: batch_size: %w", lineNo, err)
			}
			cfg.BatchSize = v
		case "seed":
			v, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: seed: %w", lineNo, err)
			}
			cfg.Seed = v
		case "log_every":
			v, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: log_every: %w", lineNo, err)
			}
			cfg.LogEvery = v
		case "checkpoint_every":
			v, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: checkpoint_every: %w", lineNo, err)
			}
			cfg.CheckpointEvery = v
		case "checkpoint_path":
			cfg.CheckpointPath = value
		default:
			return nil, fmt.Errorf("line %d: unknown key %s", lineNo, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}
