/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package review

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fulmenhq/ktlint-review/internal/ktlint"
	"github.com/fulmenhq/ktlint-review/pkg/logger"
)

// Config is the caller configuration for a lint invocation
type Config struct {
	Source ktlint.SourceConfig
	// Limit caps the number of comments; nil means unlimited
	Limit *int
}

// Validate checks the configuration without touching the filesystem.
func (c Config) Validate() error {
	if c.Limit != nil && *c.Limit < 0 {
		return &ConfigError{Field: "limit", Value: *c.Limit, Err: ErrInvalidLimit}
	}
	if _, ok := ktlint.ParseReportFormat(string(c.Source.ReportFormat)); !ok {
		return &ConfigError{Field: "report_format", Value: c.Source.ReportFormat, Err: ErrInvalidReportFormat}
	}
	return nil
}

// ChangeSetProvider returns the added and modified files of the review
type ChangeSetProvider interface {
	ChangedFiles(ctx context.Context) ([]string, error)
}

// Request carries the per-call arguments of Lint
type Request struct {
	// Files overrides the change set. Nil falls back to the provider; an
	// explicit empty slice means no targets.
	Files  []string
	Inline bool
	Filter Filter
}

// Summary describes what one Lint call did
type Summary struct {
	Targets    int
	Issues     int
	Filtered   int
	Dispatched int
	// Skipped holds the user-visible reason when lint work was skipped
	Skipped string
}

// Linter runs ktlint (or reads its reports) and turns issues into review feedback
type Linter struct {
	Config Config
	// Platform is the raw platform identifier, validated on every Lint call
	Platform string
	Repo     RepoInfo
	// WorkDir defaults to the process working directory
	WorkDir string
	Changes ChangeSetProvider
	Sink    Sink
}

// Lint runs one review pass. Configuration problems are returned as
// *ConfigError before any I/O. A missing ktlint binary or report is reported
// through the sink and Lint returns nil.
func (l *Linter) Lint(ctx context.Context, req Request) (Summary, error) {
	var summary Summary

	platform, err := ParsePlatform(l.Platform)
	if err != nil {
		return summary, err
	}
	if err := l.Config.Validate(); err != nil {
		return summary, err
	}
	if l.Sink == nil {
		return summary, errors.New("review: no sink configured")
	}

	workDir := l.WorkDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return summary, fmt.Errorf("failed to resolve working directory: %w", err)
		}
	}

	files := req.Files
	if files == nil && l.Changes != nil {
		if files, err = l.Changes.ChangedFiles(ctx); err != nil {
			return summary, fmt.Errorf("failed to collect changed files: %w", err)
		}
	}
	targets := FilterTargets(files)
	summary.Targets = targets.Len()
	logger.Debug("resolved lint targets", logger.Int("changed", len(files)), logger.Strings("targets", targets.Paths()))

	docs, err := ktlint.NewSource(l.Config.Source, workDir).Obtain(ctx, targets.Paths())
	if err != nil {
		if msg, ok := ktlint.UserMessage(err); ok {
			logger.Warn("Skipping ktlint review", logger.Err(err))
			l.Sink.Fail(msg, nil)
			summary.Skipped = msg
			return summary, nil
		}
		return summary, err
	}

	issues := ktlint.Normalize(docs)
	summary.Issues = len(issues)
	issues = ApplyFilter(issues, req.Filter)
	summary.Filtered = summary.Issues - len(issues)

	mode := ModeAggregated
	if req.Inline {
		mode = ModeInline
	}
	d := &Dispatcher{
		Sink:    l.Sink,
		Links:   NewLinkFormatter(platform, l.Repo),
		WorkDir: workDir,
		Limit:   l.Config.Limit,
	}
	summary.Dispatched = d.Dispatch(issues, targets, mode)

	logger.Info(fmt.Sprintf("ktlint review completed: %d comment(s) from %d issue(s) on %d target(s)", summary.Dispatched, summary.Issues, summary.Targets),
		logger.String("mode", mode.String()), logger.String("platform", platform.String()))
	return summary, nil
}
