/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/ktlint-review/internal/ktlint"
	"github.com/fulmenhq/ktlint-review/internal/review"
	"github.com/fulmenhq/ktlint-review/pkg/buildinfo"
	"github.com/fulmenhq/ktlint-review/pkg/config"
	"github.com/fulmenhq/ktlint-review/pkg/exitcode"
	"github.com/fulmenhq/ktlint-review/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	// errIssuesFound is returned by lint --fail-on-issues when feedback was reported
	errIssuesFound = errors.New("ktlint issues reported")
	// errPublish wraps failures delivering feedback
	errPublish = errors.New("failed to publish review feedback")
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ktlint-review",
		Short: "Report ktlint issues on the Kotlin files changed in a code review",
		Long: `ktlint-review runs ktlint (or reads existing ktlint reports), keeps the issues
found in changed Kotlin files and reports them as one aggregated summary or as
inline comments on GitHub, GitLab or Bitbucket Server reviews.

Examples:
   ktlint-review lint --platform github                # lint files changed in the worktree
   ktlint-review lint --base-ref origin/main --inline  # inline comments for a branch
   ktlint-review lint --report-file build/ktlint.json --output text
   ktlint-review version --extended`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json-logs", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().Bool("dry-run", false, "Render feedback locally instead of posting it")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("ktlint-review {{.Version}}\n")
	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newLintCommand())
	cmd.AddCommand(newVersionCommand())
}

// Execute runs the CLI and exits with a code describing the failure class.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := newRootCommand()
	registerSubcommands(root)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		code := exitCodeFor(err)
		if !errors.Is(err, errIssuesFound) {
			logger.Error("Command execution failed", logger.Err(err), logger.String("exit", exitcode.String(code)))
		}
		os.Exit(code)
	}
}

// exitCodeFor maps an error returned by a command to its exit code.
func exitCodeFor(err error) int {
	var (
		reviewCfg *review.ConfigError
		fileCfg   *config.ValidationError
		reportErr *ktlint.ReportError
	)
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, errIssuesFound):
		return exitcode.IssuesFound
	case errors.As(err, &reviewCfg), errors.As(err, &fileCfg):
		return exitcode.ConfigError
	case errors.As(err, &reportErr):
		return exitcode.ReportError
	case errors.Is(err, errPublish):
		return exitcode.PublishError
	case errors.Is(err, context.DeadlineExceeded):
		return exitcode.TimeoutError
	case errors.Is(err, ktlint.ErrToolMissing):
		return exitcode.ToolNotFound
	default:
		return exitcode.GeneralError
	}
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	noColor, _ := cmd.Flags().GetBool("no-color")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "ktlint-review",
		DryRun:    dryRun,
		Output:    cmd.ErrOrStderr(),
	}
	if err := logger.Initialize(cfg); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}
