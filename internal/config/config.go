// Package config loads rpm-tool's YAML configuration file, grounded on
// vjache-cie/cmd/cie/config.go's LoadConfig/findConfigFile/
// applyEnvOverrides pattern: a default-filled struct, an upward directory
// search when no --config path is given, and environment variables that
// win over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "rpm-tool.yaml"

// Config is the parsed form of the YAML configuration file, §6.
type Config struct {
	Repodata RepodataConfig `yaml:"repodata"`
	Log      LogConfig      `yaml:"log"`
}

// RepodataConfig holds the repodata.* keys.
type RepodataConfig struct {
	Concurrency int    `yaml:"concurrency"`
	UsefulFiles string `yaml:"useful_files"`
}

// LogConfig holds the log.* keys. Level is never read from the YAML file —
// it is set only by RUST_LOG, and nil means "let --verbose/the default
// decide" (see applyEnvOverrides).
type LogConfig struct {
	Target string        `yaml:"target"`
	Level  *logrus.Level `yaml:"-"`
}

// Default returns a Config with the defaults: pool size of
// runtime.NumCPU(), which counts logical CPUs rather than physical cores,
// no extra useful_files pattern, syslog target.
func Default() *Config {
	return &Config{
		Repodata: RepodataConfig{
			Concurrency: runtime.NumCPU(),
		},
		Log: LogConfig{
			Target: "syslog",
		},
	}
}

// Load reads configPath if non-empty, otherwise searches upward from the
// working directory for rpm-tool.yaml. Missing config is not an error —
// the caller gets Default() — but a malformed file is.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		found, err := findConfigFile()
		if err != nil {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		configPath = found
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", configPath, err)
	}

	cfg.applyEnvOverrides()

	if cfg.Repodata.Concurrency <= 0 {
		cfg.Repodata.Concurrency = runtime.NumCPU()
	}

	return cfg, nil
}

// applyEnvOverrides applies RUST_LOG, which forces stdout logging at the
// given level regardless of the configured log.target, per §6. An
// unparseable level still forces stdout (the presence of RUST_LOG alone
// does that much) but leaves the level to whatever the caller otherwise
// resolves.
func (c *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv("RUST_LOG"); ok {
		c.Log.Target = "stdout"
		if lvl, err := logrus.ParseLevel(v); err == nil {
			c.Log.Level = &lvl
		}
	}
}

// UsefulFilesMatcher compiles the configured regex, returning nil (meaning
// "no extra pattern") when it is empty.
func (c *Config) UsefulFilesMatcher() (func(string) bool, error) {
	if c.Repodata.UsefulFiles == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.Repodata.UsefulFiles)
	if err != nil {
		return nil, fmt.Errorf("invalid repodata.useful_files pattern: %w", err)
	}
	return re.MatchString, nil
}

func findConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, defaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("no %s found", defaultConfigFile)
}
