// Package config loads the qnet YAML configuration file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ms584/Q-Net/internal/executor"
	"github.com/ms584/Q-Net/internal/publish"
)

// Environment overrides, applied after the file is read.
const (
	EnvMQTTURL = "QNET_MQTT_URL"
	EnvDBPath  = "QNET_DB"
)

// Executor kinds.
const (
	ExecutorIdeal   = "ideal"
	ExecutorCommand = "command"
)

// Config is the qnet configuration file.
//
//	version: 1
//	run:
//	  shots: 1024
//	executor:
//	  kind: command
//	  command:
//	    path: ./backends/ibm.py
//	    args: ["--backend", "ibm_brisbane"]
//	    timeout: 10m
//	store:
//	  path: qnet.db
//	mqtt:
//	  enabled: true
//	  broker: tcp://broker.local:1883
type Config struct {
	Version int `yaml:"version"`

	Run struct {
		Shots int64 `yaml:"shots"`
	} `yaml:"run"`

	Executor struct {
		Kind     string `yaml:"kind"`
		Sampling string `yaml:"sampling"`
		Seed     uint64 `yaml:"seed"`
		Command  struct {
			Path    string        `yaml:"path"`
			Args    []string      `yaml:"args"`
			Timeout time.Duration `yaml:"timeout"`
			Label   string        `yaml:"label"`
		} `yaml:"command"`
	} `yaml:"executor"`

	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	MQTT struct {
		Enabled  bool          `yaml:"enabled"`
		Broker   string        `yaml:"broker"`
		Topic    string        `yaml:"topic"`
		ClientID string        `yaml:"client_id"`
		QoS      *byte         `yaml:"qos"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"mqtt"`
}

// Default returns the configuration used when no file is given: the ideal
// executor with exact apportionment, 1024 shots, no history, no broker.
func Default() *Config {
	cfg := &Config{Version: 1}
	cfg.Run.Shots = 1024
	cfg.Executor.Kind = ExecutorIdeal
	cfg.Executor.Sampling = string(executor.SamplingExact)
	applyEnv(cfg)
	return cfg
}

// Load reads and validates a configuration file. Unknown fields are
// rejected. An empty path returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.Version = 0
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d", cfg.Version)
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if url := os.Getenv(EnvMQTTURL); url != "" {
		cfg.MQTT.Broker = url
	}
	if db := os.Getenv(EnvDBPath); db != "" {
		cfg.Store.Path = db
	}
}

// Validate checks field values that decoding cannot.
func (c *Config) Validate() error {
	if c.Run.Shots <= 0 {
		return fmt.Errorf("run.shots must be positive, got %d", c.Run.Shots)
	}
	switch c.Executor.Kind {
	case ExecutorIdeal:
		if _, err := executor.ParseSampling(c.Executor.Sampling); err != nil {
			return fmt.Errorf("executor.sampling: %w", err)
		}
	case ExecutorCommand:
		if c.Executor.Command.Path == "" {
			return fmt.Errorf("executor.command.path is required for kind %q", ExecutorCommand)
		}
	default:
		return fmt.Errorf("executor.kind must be %q or %q, got %q", ExecutorIdeal, ExecutorCommand, c.Executor.Kind)
	}
	if c.MQTT.QoS != nil && *c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", *c.MQTT.QoS)
	}
	return nil
}

// NewExecutor builds the configured executor.
func (c *Config) NewExecutor() (executor.Executor, error) {
	switch c.Executor.Kind {
	case ExecutorIdeal, "":
		sampling, err := executor.ParseSampling(c.Executor.Sampling)
		if err != nil {
			return nil, err
		}
		return &executor.Ideal{Sampling: sampling, Seed: c.Executor.Seed}, nil
	case ExecutorCommand:
		cmd := c.Executor.Command
		return &executor.Command{Path: cmd.Path, Args: cmd.Args, Timeout: cmd.Timeout, Label: cmd.Label}, nil
	default:
		return nil, fmt.Errorf("unknown executor kind %q", c.Executor.Kind)
	}
}

// PublishConfig returns the broker settings for the run publisher.
func (c *Config) PublishConfig() publish.Config {
	return publish.Config{
		BrokerURL: c.MQTT.Broker,
		ClientID:  c.MQTT.ClientID,
		Topic:     c.MQTT.Topic,
		QoS:       c.MQTT.QoS,
		Timeout:   c.MQTT.Timeout,
	}
}
