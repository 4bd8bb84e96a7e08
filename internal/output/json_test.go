package output

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONWriter{}
	if err := w.Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if parsed["tool"] != "premerge" {
		t.Errorf("tool = %v", parsed["tool"])
	}
	findings, ok := parsed["findings"].([]interface{})
	if !ok || len(findings) != 3 {
		t.Fatalf("findings = %v", parsed["findings"])
	}
	first := findings[0].(map[string]interface{})
	for _, key := range []string{"detectorName", "severity", "file", "matchedText", "line", "remediation"} {
		if _, ok := first[key]; !ok {
			t.Errorf("finding missing key %q", key)
		}
	}
	if first["severity"] != "critical" {
		t.Errorf("severity = %v", first["severity"])
	}
	summary := parsed["summary"].(map[string]interface{})
	if summary["total"] != float64(3) {
		t.Errorf("summary.total = %v", summary["total"])
	}
}

func TestJSONWriter_EmptyFindingsIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, emptyReport()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"findings": []`)) {
		t.Errorf("expected empty findings array, got:\n%s", buf.String())
	}
}

func TestJSONWriter_MatchNotHTMLEscaped(t *testing.T) {
	report := sampleReport()
	report.Findings[0].Match = "p<a&ss>word"

	var buf bytes.Buffer
	if err := (JSONWriter{}).Write(&buf, report); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"matchedText": "p<a&ss>word"`)) {
		t.Errorf("match was escaped:\n%s", buf.String())
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("}\n")) {
		t.Error("output should end with a newline")
	}
}
