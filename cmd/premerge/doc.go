// Premerge scans pull requests and local changes for likely secrets and
// personally identifiable information before they are merged.
//
// It scans GitHub pull requests, staged, unstaged, commit, range, codebase,
// explicit files and stdin, emitting findings with deterministic exit codes
// suitable for CI gating, GitHub Actions and git hooks.
//
// Usage:
//
//	premerge github 42                   # scan PR #42 and comment the findings
//	premerge action                      # run as a GitHub Actions step
//	premerge scan staged                 # scan staged files
//	premerge scan range origin/main..HEAD  # scan a revision range
//	premerge scan files ./config         # scan files and directories
//	premerge detectors list              # show the detector catalogue
//
// See https://github.com/dshills/premerge for full documentation.
package main
