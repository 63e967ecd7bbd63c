package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jordfras/mocksmith/internal/errs"
)

// Report summarizes one run for the --report option.
type Report struct {
	Mode    string        `json:"mode" yaml:"mode"`
	Inputs  []InputReport `json:"inputs" yaml:"inputs"`
	Summary ReportSummary `json:"summary" yaml:"summary"`
}

// InputReport describes what one input header contributed.
type InputReport struct {
	Path     string   `json:"path" yaml:"path"`
	Classes  int      `json:"classes" yaml:"classes"`
	Mocks    []string `json:"mocks,omitempty" yaml:"mocks,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// ReportSummary totals the run.
type ReportSummary struct {
	Inputs         int `json:"inputs" yaml:"inputs"`
	Failed         int `json:"failed" yaml:"failed"`
	MocksGenerated int `json:"mocks_generated" yaml:"mocks_generated"`
	FilesWritten   int `json:"files_written" yaml:"files_written"`
}

func (p *pipeline) buildReport(results []*headerResult) Report {
	report := Report{Mode: p.config.Mode().String()}
	for _, r := range results {
		entry := InputReport{Path: displayPath(r.path)}
		if r.err != nil {
			entry.Error = r.err.Error()
			report.Summary.Failed++
		} else {
			entry.Classes = len(r.source.Classes)
			for _, m := range r.mocks {
				entry.Mocks = append(entry.Mocks, m.MockName)
			}
			entry.Warnings = r.warnings
			report.Summary.MocksGenerated += len(r.mocks)
		}
		report.Inputs = append(report.Inputs, entry)
	}
	report.Summary.Inputs = len(results)
	report.Summary.FilesWritten = p.written
	return report
}

// writeReport renders the report as YAML, JSON or plain text depending
// on the file extension, mirroring how generated mocks pick their
// delivery by destination.
func (p *pipeline) writeReport(results []*headerResult) error {
	report := p.buildReport(results)

	var data []byte
	var err error
	switch filepath.Ext(p.config.ReportFile) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(report)
	case ".json":
		data, err = json.MarshalIndent(report, "", "  ")
	default:
		data = []byte(formatReportText(report))
	}
	if err != nil {
		return errs.Wrapf(err, "Failed to render report")
	}

	if err := os.WriteFile(p.config.ReportFile, data, 0644); err != nil {
		return errs.FileSystem(err, "Failed to write report file %s", p.config.ReportFile)
	}
	return nil
}

func formatReportText(report Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mock generation report (%s mode)\n", report.Mode)
	fmt.Fprintf(&b, "================================\n\n")
	for _, in := range report.Inputs {
		fmt.Fprintf(&b, "%s\n", in.Path)
		if in.Error != "" {
			fmt.Fprintf(&b, "  error: %s\n", in.Error)
			continue
		}
		fmt.Fprintf(&b, "  classes: %d\n", in.Classes)
		if len(in.Mocks) > 0 {
			fmt.Fprintf(&b, "  mocks: %s\n", strings.Join(in.Mocks, ", "))
		}
		for _, w := range in.Warnings {
			fmt.Fprintf(&b, "  warning: %s\n", w)
		}
	}
	fmt.Fprintf(&b, "\nInputs: %d  Failed: %d  Mocks: %d  Files written: %d\n",
		report.Summary.Inputs, report.Summary.Failed,
		report.Summary.MocksGenerated, report.Summary.FilesWritten)
	return b.String()
}

func displayPath(path string) string {
	if path == "" {
		return "<stdin>"
	}
	return path
}
