// Package output formats scan reports for display or machine consumption.
//
// Four formats are supported:
//   - text: human-readable terminal output, colored when writing to a TTY (default)
//   - json: full structured JSON report
//   - markdown: the PR comment body, grouped by severity with a tips footer
//   - sarif: SARIF v2.1.0 for upload to GitHub code scanning and other CI tools
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*scan.Report]. [WriteReport]
// handles destination selection.
package output
