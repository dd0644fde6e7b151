// Package config loads, validates, and defaults the TOML configuration for
// the framepress CLI and its composition worker.
package config
