/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package review

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedService indicates the platform identifier is not one of the supported platforms
	ErrUnsupportedService = errors.New("Unsupported service! Currently supported services are GitHub, GitLab and BitBucket server.") //nolint:staticcheck // user-facing sentence

	// ErrInvalidLimit indicates the comment limit is not a non-negative integer
	ErrInvalidLimit = errors.New("limit must be a non-negative integer")

	// ErrInvalidReportFormat indicates an unknown report_format value
	ErrInvalidReportFormat = errors.New("report format must be one of auto, json, checkstyle")
)

// ConfigError is returned from Lint before any I/O when configuration is unusable
type ConfigError struct {
	// Field is the configuration key at fault (e.g. "limit", "platform")
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
