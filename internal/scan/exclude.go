package scan

import "strings"

// Exclusions is a list of literal substrings. A finding is suppressed when its
// file path or matched text contains any entry. Matching is case-sensitive.
type Exclusions []string

// NewExclusions normalizes a list of exclusion entries. Empty entries are
// dropped since an empty substring would suppress every finding.
func NewExclusions(items []string) Exclusions {
	var ex Exclusions
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			ex = append(ex, item)
		}
	}
	return ex
}

// Matches reports whether a finding in file with the given match is excluded.
func (ex Exclusions) Matches(file, match string) bool {
	for _, e := range ex {
		if strings.Contains(file, e) || strings.Contains(match, e) {
			return true
		}
	}
	return false
}
