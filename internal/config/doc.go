// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with TOML as
// the file format.
//
// Configuration is loaded from ~/.config/runsec/config.toml (or the XDG
// equivalent on Linux, ~/Library/Application Support/runsec/config.toml on
// macOS, %APPDATA%\runsec\config.toml on Windows). It selects the secret
// manager backend, its client binary and per-lookup timeout, the size of
// the resolution worker pool, and UI settings. A missing config file is not
// an error: defaults select the 1Password CLI backend.
package config
