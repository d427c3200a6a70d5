// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return LoadFile(configFile)
}

// Config contains the options of the solvers.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options

	sourceFile string
}

// Options are the settings shared by all the solvers of a run
type Options struct {
	// Loglevel controls the verbosity of the solvers
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`

	// FollowReturnsPastSeeds can be set to true to propagate the facts of the zero source past the exit of the
	// methods that have been seeded, into all the callers of those methods
	FollowReturnsPastSeeds bool `yaml:"follow-returns-past-seeds"`

	// MaxAccessPathLength bounds the length of the access paths that facts generated with an empty access path can
	// be refined into, when the problem does not provide its own zero handler.
	// If MaxAccessPathLength <= 0, then access paths are not bounded.
	MaxAccessPathLength int `yaml:"max-access-path-length"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		Options: Options{
			LogLevel:               int(InfoLevel),
			SilenceWarn:            false,
			FollowReturnsPastSeeds: false,
			MaxAccessPathLength:    DefaultMaxAccessPathLength,
		},
	}
}

// LoadFile reads a configuration from a file
func LoadFile(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Load(filename, b)
}

// Load parses the contents of a configuration file. filename is only used to resolve relative paths.
func Load(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %q: %w", filename, err)
	}

	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.LogLevel < int(ErrLevel) || cfg.LogLevel > int(TraceLevel) {
		return nil, fmt.Errorf("invalid log-level %d in %q: %w", cfg.LogLevel, filename, ErrInvalidOption)
	}

	if cfg.MaxAccessPathLength < 0 {
		cfg.MaxAccessPathLength = DefaultMaxAccessPathLength
	}

	return cfg, nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// ExceedsMaxAccessPathLength returns true if an access path of length n is longer than the maximum allowed by the
// configuration. If the setting is <= 0, then this returns false.
func (c Config) ExceedsMaxAccessPathLength(n int) bool {
	if c.MaxAccessPathLength <= 0 {
		return false
	}
	return n > c.MaxAccessPathLength
}
