package scan

import (
	"sort"

	"github.com/dshills/premerge/internal/detect"
)

// Aggregate removes findings with the same matched text in the same file,
// keeping the first, and orders the rest by severity (critical first). The
// sort is stable, so ties keep their scan order.
func Aggregate(findings []Finding) []Finding {
	type key struct{ match, file string }
	seen := make(map[key]bool, len(findings))
	result := make([]Finding, 0, len(findings))
	for _, f := range findings {
		k := key{f.Match, f.File}
		if seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, f)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return detect.SeverityRank(result[i].Severity) > detect.SeverityRank(result[j].Severity)
	})
	return result
}

// Summarize counts findings by severity.
func Summarize(findings []Finding) Summary {
	s := Summary{Total: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case detect.SeverityCritical:
			s.Critical++
		case detect.SeverityHigh:
			s.High++
		case detect.SeverityMedium:
			s.Medium++
		case detect.SeverityLow:
			s.Low++
		}
	}
	return s
}

// BySeverity groups findings by severity, preserving order within each group.
func BySeverity(findings []Finding) map[detect.Severity][]Finding {
	groups := make(map[detect.Severity][]Finding)
	for _, f := range findings {
		groups[f.Severity] = append(groups[f.Severity], f)
	}
	return groups
}
