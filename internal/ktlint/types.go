/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ktlint

// RawError is one finding as emitted by the ktlint JSON reporter.
type RawError struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
	Rule    string `json:"rule"`
}

// FileReport groups the findings for a single file.
type FileReport struct {
	File   string     `json:"file"`
	Errors []RawError `json:"errors"`
}

// Document is one parsed report file. A run may produce several.
type Document []FileReport

// Issue is the flattened projection of a FileReport and one of its errors.
type Issue struct {
	File    string `json:"file" yaml:"file"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
	Message string `json:"message" yaml:"message"`
	Rule    string `json:"rule" yaml:"rule"`
}

// ReportFormat selects the parser for on-disk reports.
type ReportFormat string

const (
	ReportFormatAuto       ReportFormat = "auto"
	ReportFormatJSON       ReportFormat = "json"
	ReportFormatCheckstyle ReportFormat = "checkstyle"
)

// ParseReportFormat validates a configured format name. Empty means auto.
func ParseReportFormat(s string) (ReportFormat, bool) {
	switch ReportFormat(s) {
	case "", ReportFormatAuto:
		return ReportFormatAuto, true
	case ReportFormatJSON:
		return ReportFormatJSON, true
	case ReportFormatCheckstyle:
		return ReportFormatCheckstyle, true
	default:
		return "", false
	}
}
