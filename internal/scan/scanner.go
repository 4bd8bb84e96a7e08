package scan

import (
	"sort"
	"strings"

	ahocorasick "github.com/BobuSumisu/aho-corasick"

	"github.com/dshills/premerge/internal/detect"
)

// Scan evaluates detectors in order against content and returns one finding
// per match that is not excluded. Findings follow detector order, then match
// position within the content.
func Scan(content, filePath string, detectors []detect.Detector, ex Exclusions) []Finding {
	var findings []Finding
	for _, d := range detectors {
		for _, m := range d.FindAll(content) {
			if ex.Matches(filePath, m) {
				continue
			}
			findings = append(findings, Finding{
				Detector:    d.Name,
				Severity:    d.Severity,
				File:        filePath,
				Match:       m,
				Remediation: d.Remediation,
			})
		}
	}
	if len(findings) == 0 {
		return nil
	}

	matches := make([]string, len(findings))
	for i, f := range findings {
		matches[i] = f.Match
	}
	lines := firstLines(content, matches)
	for i := range findings {
		findings[i].Line = lines[findings[i].Match]
	}
	return findings
}

// LineOf returns the 1-based number of the first line containing match, or 0
// if no single line contains it. A repeated match always resolves to its first
// occurrence.
func LineOf(content, match string) int {
	return firstLines(content, []string{match})[match]
}

// firstLines maps each distinct match to the line of its first occurrence in
// content. All matches are located in a single pass. A match spanning a
// newline never fits on one line and maps to 0.
func firstLines(content string, matches []string) map[string]int {
	lines := make(map[string]int, len(matches))
	var patterns []string
	for _, m := range matches {
		if _, ok := lines[m]; ok {
			continue
		}
		switch {
		case m == "":
			lines[m] = 1
		case strings.Contains(m, "\n"):
			lines[m] = 0
		default:
			lines[m] = 0
			patterns = append(patterns, m)
		}
	}
	if len(patterns) == 0 {
		return lines
	}

	first := make([]int, len(patterns))
	for i := range first {
		first[i] = -1
	}
	trie := ahocorasick.NewTrieBuilder().AddStrings(patterns).Build()
	for _, hit := range trie.MatchString(content) {
		p := int(hit.Pattern())
		if pos := int(hit.Pos()); first[p] < 0 || pos < first[p] {
			first[p] = pos
		}
	}

	newlines := newlineOffsets(content)
	for i, m := range patterns {
		if first[i] >= 0 {
			lines[m] = sort.SearchInts(newlines, first[i]) + 1
		}
	}
	return lines
}

func newlineOffsets(content string) []int {
	var offsets []int
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i)
		}
	}
	return offsets
}
