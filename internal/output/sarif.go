package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/dshills/premerge/internal/scan"
)

const informationURI = "https://github.com/dshills/premerge"

// SARIFWriter outputs findings in SARIF v2.1.0 format, one rule per detector.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *scan.Report) error {
	doc, err := buildSARIF(report)
	if err != nil {
		return err
	}
	if err := doc.PrettyWrite(w); err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

func buildSARIF(report *scan.Report) (*sarif.Report, error) {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("creating SARIF report: %w", err)
	}

	tool := report.Tool
	if tool == "" {
		tool = scan.Tool
	}
	run := sarif.NewRunWithInformationURI(tool, informationURI)
	if report.Version != "" {
		run.Tool.Driver.WithVersion(report.Version)
	}

	for _, f := range report.Findings {
		id := ruleID(f.Detector)
		run.AddRule(id).
			WithName(f.Detector).
			WithDescription(f.Detector).
			WithTextHelp(f.Remediation).
			WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(f.Severity.SARIFLevel()))

		uri := toURI(f.File)
		run.AddDistinctArtifact(uri)

		phys := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewSimpleArtifactLocation(uri))
		if f.Line > 0 {
			phys.WithRegion(sarif.NewSimpleRegion(f.Line, f.Line))
		}

		// Matched text never goes into SARIF messages.
		msg := fmt.Sprintf("%s detected (%s severity). %s", f.Detector, f.Severity, f.Remediation)
		result := run.CreateResultForRule(id).
			WithLevel(f.Severity.SARIFLevel()).
			WithMessage(sarif.NewTextMessage(strings.TrimSpace(msg))).
			WithPartialFingerPrints(map[string]interface{}{"findingId/v1": f.ID()})
		result.AddLocation(sarif.NewLocationWithPhysicalLocation(phys))
	}

	doc.AddRun(run)
	return doc, nil
}

// ruleID turns a detector name into a stable kebab-case rule id.
func ruleID(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func toURI(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	return strings.TrimPrefix(p, "./")
}
