// Package config loads and merges premerge configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PREMERGE_*, the GitHub Action INPUT_* variables
//     and GITHUB_TOKEN)
//  3. Config file ($XDG_CONFIG_HOME/premerge/config.yaml or --config)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write a config file, and
// [SetField] to update a single key.
package config
