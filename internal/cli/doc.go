// Package cli wires together the Cobra command tree for the premerge binary.
//
// It defines the root command and all subcommands (scan, github, action,
// detectors, config, hook, version), binds flags, reads configuration, runs
// the scan engine against the selected file source, and returns
// deterministic exit codes for CI gating.
package cli
