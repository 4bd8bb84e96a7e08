package scan

import (
	"crypto/sha256"
	"fmt"

	"github.com/dshills/premerge/internal/detect"
)

// Tool is the name reported in every Report.
const Tool = "premerge"

// Finding is a single detector match in a file.
type Finding struct {
	Detector    string          `json:"detectorName"`
	Severity    detect.Severity `json:"severity"`
	File        string          `json:"file"`
	Match       string          `json:"matchedText"`
	Line        int             `json:"line"`
	Remediation string          `json:"remediation"`
}

// ID returns a stable fingerprint of the finding.
func (f Finding) ID() string {
	h := sha256.Sum256([]byte(f.Detector + "\x00" + f.File + "\x00" + f.Match))
	return fmt.Sprintf("%x", h[:8])
}

// Input is one file to scan.
type Input struct {
	Filename  string
	Content   string
	Additions int
	Deletions int
}

// FileRef is a file listed by a Source before its content is fetched.
type FileRef struct {
	Filename  string
	Status    string
	Additions int
	Deletions int
}

// SourceInfo describes where scanned files came from.
type SourceInfo struct {
	Mode string `json:"mode"`
	Ref  string `json:"ref,omitempty"`
	Repo string `json:"repo,omitempty"`
}

// SkippedFile records a listed file that was not scanned.
type SkippedFile struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// Summary holds finding counts by severity.
type Summary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Timing contains performance metrics.
type Timing struct {
	ListMs  int64 `json:"listMs"`
	ScanMs  int64 `json:"scanMs"`
	TotalMs int64 `json:"totalMs"`
}

// Report is the top-level output structure.
type Report struct {
	Tool     string        `json:"tool"`
	Version  string        `json:"version"`
	RunID    string        `json:"runId"`
	Source   SourceInfo    `json:"source"`
	Files    []string      `json:"files"`
	Skipped  []SkippedFile `json:"skipped,omitempty"`
	Summary  Summary       `json:"summary"`
	Findings []Finding     `json:"findings"`
	Timing   Timing        `json:"timing"`
}

// HasFindings reports whether the run produced any findings.
func (r *Report) HasFindings() bool {
	return r != nil && len(r.Findings) > 0
}
