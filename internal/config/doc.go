// Package config holds the runtime configuration of the gridscan command:
// where results go, how much runs in parallel and how the table detector is
// tuned. Configuration is stored as YAML under the XDG config directory and
// command line flags override it.
package config
