// SPDX-License-Identifier: MPL-2.0

package config

import "time"

// SecretManagerType identifies which secret backend resolves references.
type SecretManagerType string

const (
	// SecretManagerOnePassword shells out to the 1Password CLI (`op read`).
	SecretManagerOnePassword SecretManagerType = "1password"
	// SecretManagerNone disables backend resolution; reference-free
	// variables still pass through the pipeline.
	SecretManagerNone SecretManagerType = "none"
)

type (
	// Config is the application configuration.
	Config struct {
		SecretManager SecretManagerConfig `mapstructure:"secret_manager" toml:"secret_manager"`
		Resolution    ResolutionConfig    `mapstructure:"resolution" toml:"resolution"`
		UI            UIConfig            `mapstructure:"ui" toml:"ui"`
	}

	// SecretManagerConfig selects and tunes the backend.
	SecretManagerConfig struct {
		// Type is the backend kind.
		Type SecretManagerType `mapstructure:"type" toml:"type"`
		// Binary is the backend client executable name or path.
		Binary string `mapstructure:"binary" toml:"binary"`
		// Timeout bounds one backend lookup.
		Timeout time.Duration `mapstructure:"timeout" toml:"timeout"`
	}

	// ResolutionConfig tunes the resolution phase.
	ResolutionConfig struct {
		// Workers bounds concurrent backend lookups.
		Workers int `mapstructure:"workers" toml:"workers"`
		// FailFast aborts the run on the first failed lookup instead of
		// collecting failures per entry.
		FailFast bool `mapstructure:"fail_fast" toml:"fail_fast"`
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		// Verbose enables debug-level logging.
		Verbose bool `mapstructure:"verbose" toml:"verbose"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		SecretManager: SecretManagerConfig{
			Type:    SecretManagerOnePassword,
			Binary:  "op",
			Timeout: 45 * time.Second,
		},
		Resolution: ResolutionConfig{
			Workers: 8,
		},
	}
}
