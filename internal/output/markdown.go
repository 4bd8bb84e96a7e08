package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/premerge/internal/detect"
	"github.com/dshills/premerge/internal/scan"
)

const (
	commentHeading = "## 🔍 PreMerge Privacy Check Results"
	commentIntro   = "I found potential secrets or PII in this PR that should be reviewed:"
	noFindingsLine = "✅ No secrets or PII detected in this PR"
)

var commentTips = []string{
	"Use environment variables for secrets",
	"Add sensitive files to `.gitignore`",
	"Use placeholder/test data for development",
	"Consider using secret management tools like Vault or AWS Secrets Manager",
}

// MarkdownWriter outputs the report as a PR comment.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *scan.Report) error {
	body := Comment(report.Findings)
	if body == "" {
		body = fmt.Sprintf("%s\n\n%s\n", commentHeading, noFindingsLine)
	}
	_, err := io.WriteString(w, body)
	return err
}

// Comment renders the PR comment body for findings, grouped by severity from
// critical to low. It returns "" when there is nothing to report.
func Comment(findings []scan.Finding) string {
	if len(findings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(commentHeading + "\n\n")
	b.WriteString(commentIntro + "\n\n")

	grouped := scan.BySeverity(findings)
	for _, sev := range detect.Severities {
		group := grouped[sev]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s %s (%d)\n\n", sev.Icon(), strings.ToUpper(string(sev)), len(group))
		for _, f := range group {
			fmt.Fprintf(&b, "**%s** in %s", f.Detector, inlineCode(f.File))
			if f.Line > 0 {
				fmt.Fprintf(&b, " (line %d)", f.Line)
			}
			b.WriteString(":\n")
			fmt.Fprintf(&b, "- **Detected:** %s\n", inlineCode(f.Match))
			fmt.Fprintf(&b, "- **Remediation:** %s\n\n", f.Remediation)
		}
	}

	b.WriteString("---\n")
	b.WriteString("💡 **Tips:**\n")
	for _, tip := range commentTips {
		b.WriteString("- " + tip + "\n")
	}
	return b.String()
}

// inlineCode wraps s in a code span, widening the fence when s itself
// contains backticks.
func inlineCode(s string) string {
	if !strings.Contains(s, "`") {
		return "`" + s + "`"
	}
	return "`` " + s + " ``"
}
