/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package exitcode

import (
	"testing"
)

func TestExitCodesAreDistinct(t *testing.T) {
	codes := []int{Success, GeneralError, ConfigError, IssuesFound, ReportError, PublishError, TimeoutError, ToolNotFound}
	seen := make(map[int]bool, len(codes))
	for _, c := range codes {
		if seen[c] {
			t.Errorf("exit code %d declared twice", c)
		}
		seen[c] = true
	}
	if Success != 0 {
		t.Errorf("Success = %v, expected 0", Success)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{GeneralError, "General error"},
		{ConfigError, "Configuration error"},
		{IssuesFound, "Lint issues reported"},
		{ReportError, "Unreadable lint report"},
		{PublishError, "Failed to publish review feedback"},
		{TimeoutError, "Timeout error"},
		{ToolNotFound, "Tool not found"},
		{999, "Unknown error"},
	}

	for _, test := range tests {
		if got := String(test.code); got != test.expected {
			t.Errorf("String(%d) = %q, expected %q", test.code, got, test.expected)
		}
	}
}
