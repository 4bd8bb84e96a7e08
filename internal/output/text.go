package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dshills/premerge/internal/detect"
	"github.com/dshills/premerge/internal/scan"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct {
	// Color enables ANSI severity colors.
	Color bool
}

func (t *TextWriter) Write(w io.Writer, report *scan.Report) error {
	ew := &errWriter{w: w}
	pal := newPalette(t.Color)

	ew.printf("PreMerge Privacy Check (%s mode)\n", report.Source.Mode)
	if report.Source.Repo != "" {
		ew.printf("Repository: %s\n", report.Source.Repo)
	}
	if report.Source.Ref != "" {
		ew.printf("Ref: %s\n", report.Source.Ref)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Files scanned: %d", len(report.Files))
	if len(report.Skipped) > 0 {
		ew.printf(" (%d skipped)", len(report.Skipped))
	}
	ew.println("")

	s := report.Summary
	ew.printf("Findings: %d total", s.Total)
	if s.Total > 0 {
		ew.printf(" (%d critical, %d high, %d medium, %d low)", s.Critical, s.High, s.Medium, s.Low)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if s.Total == 0 {
		ew.println(pal.ok.Sprint("\nNo secrets or PII detected."))
	}

	grouped := scan.BySeverity(report.Findings)
	for _, sev := range detect.Severities {
		findings := grouped[sev]
		if len(findings) == 0 {
			continue
		}

		label := fmt.Sprintf("%s %s (%d)", sev.Icon(), strings.ToUpper(string(sev)), len(findings))
		ew.printf("\n%s\n", pal.severity(sev).Sprint(label))
		ew.println(strings.Repeat("─", 40))

		for _, f := range findings {
			ew.printf("\n  %s  %s\n", location(f), pal.bold.Sprint(f.Detector))
			ew.printf("    Detected: %s\n", f.Match)
			if f.Remediation != "" {
				ew.println("    Remediation:")
				for _, line := range wrapText(f.Remediation, 70) {
					ew.printf("      %s\n", line)
				}
			}
		}
	}

	if len(report.Skipped) > 0 {
		ew.println("\nSkipped files:")
		for _, sk := range report.Skipped {
			ew.printf("  %s: %s\n", sk.Filename, pal.dim.Sprint(sk.Reason))
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (list: %dms, scan: %dms)\n",
		report.Timing.TotalMs, report.Timing.ListMs, report.Timing.ScanMs)

	return ew.err
}

type palette struct {
	critical, high, medium, low *color.Color
	bold, dim, ok               *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		critical: color.New(color.FgRed, color.Bold),
		high:     color.New(color.FgRed),
		medium:   color.New(color.FgYellow),
		low:      color.New(color.FgCyan),
		bold:     color.New(color.Bold),
		dim:      color.New(color.Faint),
		ok:       color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.critical, p.high, p.medium, p.low, p.bold, p.dim, p.ok} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s detect.Severity) *color.Color {
	switch s {
	case detect.SeverityCritical:
		return p.critical
	case detect.SeverityHigh:
		return p.high
	case detect.SeverityMedium:
		return p.medium
	default:
		return p.low
	}
}

func location(f scan.Finding) string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return f.File
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
