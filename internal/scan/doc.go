// Package scan runs detectors over file contents and turns raw matches into
// an ordered, deduplicated list of findings.
//
// Scan evaluates one file. Aggregate merges the findings of a whole run.
// Engine drives both over a Source, skipping files that cannot be read.
package scan
