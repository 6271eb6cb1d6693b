// Package exitcode provides standardized exit codes for ktlint-review
package exitcode

// Exit codes for the ktlint-review CLI
const (
	Success      = 0
	GeneralError = 1
	ConfigError  = 2
	// IssuesFound is only used with --fail-on-issues.
	IssuesFound  = 3
	ReportError  = 4
	PublishError = 5
	TimeoutError = 7
	ToolNotFound = 9
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case IssuesFound:
		return "Lint issues reported"
	case ReportError:
		return "Unreadable lint report"
	case PublishError:
		return "Failed to publish review feedback"
	case TimeoutError:
		return "Timeout error"
	case ToolNotFound:
		return "Tool not found"
	default:
		return "Unknown error"
	}
}
