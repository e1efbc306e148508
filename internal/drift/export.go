package drift

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Report returns a snapshot of the running total and trace.
func (s *Scorer) Report() Report {
	steps := s.Steps()
	if steps == nil {
		steps = []Step{}
	}
	return Report{TotalIDS: s.total, Steps: steps}
}

// ExportTrace returns the current report. When path is non-empty the report
// is also written there as indented JSON; a write failure is returned along
// with the report.
func (s *Scorer) ExportTrace(path string) (Report, error) {
	r := s.Report()
	if path == "" {
		return r, nil
	}
	if err := WriteReport(path, r); err != nil {
		return r, err
	}
	return r, nil
}

// WriteReport writes r to path as UTF-8 JSON with two-space indentation.
func WriteReport(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create trace directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write trace %s: %w", path, err)
	}
	return nil
}

// ReadReport loads a report previously written by WriteReport.
func ReadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read trace %s: %w", path, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("parse trace %s: %w", path, err)
	}
	return r, nil
}
