// Package gitctx lists changed files and reads their content from a local git
// repository, the filesystem or stdin.
//
// Git modes (staged, unstaged, commit, range and codebase) shell out to git
// for the file list and blob content. Repository metadata comes from go-git.
// Every source implements [scan.Source].
package gitctx
