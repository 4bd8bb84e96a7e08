package redact

import (
	"strings"

	"github.com/dshills/premerge/internal/scan"
)

const (
	maskRune = '*'
	// keep is the number of runes left visible at each end of a long value.
	keep = 4
	// minVisible is the shortest value that keeps a visible prefix and suffix.
	minVisible = 3*keep + 1
)

// Mask hides the middle of s. Values shorter than minVisible runes are
// masked completely.
func Mask(s string) string {
	r := []rune(s)
	if len(r) < minVisible {
		return strings.Repeat(string(maskRune), len(r))
	}
	var b strings.Builder
	b.WriteString(string(r[:keep]))
	b.WriteString(strings.Repeat(string(maskRune), len(r)-2*keep))
	b.WriteString(string(r[len(r)-keep:]))
	return b.String()
}

// Findings returns copies of findings with Match masked. The input slice is
// left untouched.
func Findings(findings []scan.Finding) []scan.Finding {
	out := make([]scan.Finding, len(findings))
	for i, f := range findings {
		f.Match = Mask(f.Match)
		out[i] = f
	}
	return out
}

// Report returns a shallow copy of report whose findings are masked.
func Report(report *scan.Report) *scan.Report {
	if report == nil {
		return nil
	}
	cp := *report
	cp.Findings = Findings(report.Findings)
	return &cp
}
