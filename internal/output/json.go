package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/premerge/internal/scan"
)

// JSONWriter encodes the report as indented JSON. Matched text is written
// without HTML escaping.
type JSONWriter struct{}

func (JSONWriter) Write(w io.Writer, report *scan.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
