/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ktlint

import (
	"errors"
	"fmt"
	"strings"
)

// Messages shown to the review author when lint work has to be skipped.
const (
	ToolMissingMessage    = "Couldn't find ktlint command. Install first."
	ReportNotFoundMessage = "Couldn't find ktlint result json file.\n" +
		"You must specify it with `report_file=...` or `report_files_pattern=...` in your configuration."
)

var (
	// ErrToolMissing indicates the ktlint binary could not be resolved
	ErrToolMissing = errors.New("ktlint binary not found")

	// ErrReportNotFound indicates no report could be read from any configured source
	ErrReportNotFound = errors.New("ktlint report not found")
)

// ReportError indicates a report file exists but its content is unusable
type ReportError struct {
	// Path is the report file, or "-" for in-memory data
	Path string

	// Reason is a short description of what failed
	Reason string

	// Details holds per-field schema violations, when available
	Details []string

	Wrapped error
}

func (e *ReportError) Error() string {
	msg := fmt.Sprintf("invalid ktlint report %s: %s", e.Path, e.Reason)
	if len(e.Details) > 0 {
		msg += "\n  " + strings.Join(e.Details, "\n  ")
	}
	if e.Wrapped != nil {
		msg += fmt.Sprintf(": %v", e.Wrapped)
	}
	return msg
}

func (e *ReportError) Unwrap() error {
	return e.Wrapped
}

// UserMessage maps an operational error to the message reported to the review
// author. The boolean is false for errors that must propagate instead.
func UserMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrToolMissing):
		return ToolMissingMessage, true
	case errors.Is(err, ErrReportNotFound):
		return ReportNotFoundMessage, true
	default:
		return "", false
	}
}
