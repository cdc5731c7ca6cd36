// Package config holds all configuration for the choirscore viewer.
//
// Configuration flows one way: CLI flags and an optional YAML file populate
// a Config, Validate runs once after parsing, and the Config is passed down
// by dependency injection. No package reads flags or files on its own and
// there is no global configuration state.
//
// The YAML file (.choirscore in the current or home directory, or an
// explicit --config path) can override the viewer tunables globally and per
// score.
package config
