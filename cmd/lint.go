/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fulmenhq/ktlint-review/internal/gitctx"
	"github.com/fulmenhq/ktlint-review/internal/ktlint"
	"github.com/fulmenhq/ktlint-review/internal/policy"
	"github.com/fulmenhq/ktlint-review/internal/publish"
	"github.com/fulmenhq/ktlint-review/internal/review"
	"github.com/fulmenhq/ktlint-review/pkg/config"
	"github.com/fulmenhq/ktlint-review/pkg/ignore"
	"github.com/fulmenhq/ktlint-review/pkg/logger"
	"github.com/spf13/cobra"
)

// lintFlagKeys maps lint flags to configuration keys; only changed flags override.
var lintFlagKeys = map[string]string{
	"filtering":            "lint.filtering",
	"report-file":          "lint.report_file",
	"report-files-pattern": "lint.report_files_pattern",
	"report-format":        "lint.report_format",
	"skip-lint":            "lint.skip_lint",
	"limit":                "lint.limit",
	"inline":               "lint.inline",
	"timeout":              "lint.timeout",
	"ktlint-path":          "lint.ktlint_path",
	"exclude-rule":         "lint.exclude_rules",
	"changed-lines-only":   "lint.changed_lines_only",
	"policy":               "lint.policy",
	"gitignore":            "lint.gitignore",
	"platform":             "platform.name",
	"repo-url":             "platform.repo_url",
	"commit":               "platform.commit",
	"output":               "publish.output",
	"github-repository":    "publish.github.repository",
	"pull-request":         "publish.github.pull_request",
	"github-api-url":       "publish.github.api_url",
	"base-ref":             "changes.base_ref",
}

func newLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [files...]",
		Short: "Lint changed Kotlin files and report ktlint issues",
		Long: `Lint runs ktlint on the Kotlin files of the change set (or reads existing
ktlint reports) and reports every issue found in a changed file.

Files given as arguments replace the change set discovered from git.
Issues in files matched by .ktlint-reviewignore are never reported.
Configuration is read from .ktlint-review.{yaml,yml,json,toml}, KTLINT_REVIEW_*
environment variables and these flags, in increasing precedence.`,
		Args: cobra.ArbitraryArgs,
		RunE: runLint,
	}

	f := cmd.Flags()
	f.String("config", "", "Configuration file (default: .ktlint-review.yaml in --dir, then $HOME)")
	f.String("dir", ".", "Project directory to lint")
	f.Bool("filtering", true, "Run ktlint only on changed files instead of **/*.kt")
	f.String("report-file", "", "Read this ktlint report instead of running ktlint")
	f.String("report-files-pattern", "", "Read every ktlint report matching this glob (supports **)")
	f.String("report-format", "auto", "Report format: auto|json|checkstyle")
	f.Bool("skip-lint", false, "Never run ktlint; require report files")
	f.Int("limit", 0, "Maximum number of comments (unlimited when not set)")
	f.Bool("inline", false, "Report issues as inline comments")
	f.Duration("timeout", 0, "Maximum ktlint run time")
	f.String("ktlint-path", "", "Path to the ktlint binary")
	f.StringSlice("exclude-rule", nil, "Drop issues of this ktlint rule (repeatable)")
	f.Bool("changed-lines-only", false, "Only report issues on lines added by the change set")
	f.String("policy", "", "Rego policy; issues in data.ktlint_review.deny are dropped")
	f.Bool("gitignore", false, "Also drop issues in files matched by .gitignore")
	f.String("platform", "", "Review platform: github|gitlab|bitbucket_server")
	f.String("repo-url", "", "Repository web URL used for file links")
	f.String("commit", "", "Commit used for file links (default: HEAD)")
	f.String("output", "markdown", "Output: markdown|text|json|yaml|github")
	f.String("github-repository", "", "GitHub repository (owner/name) for --output github")
	f.Int("pull-request", 0, "Pull request number for --output github")
	f.String("github-api-url", "", "GitHub API base URL")
	f.String("base-ref", "", "Diff against merge-base(base-ref, HEAD) instead of the worktree")
	f.Bool("fail-on-issues", false, "Exit with a non-zero code when any feedback was reported")
	return cmd
}

func runLint(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dirFlag, _ := cmd.Flags().GetString("dir")
	configFile, _ := cmd.Flags().GetString("config")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	failOnIssues, _ := cmd.Flags().GetBool("fail-on-issues")

	workDir, err := filepath.Abs(dirFlag)
	if err != nil {
		return fmt.Errorf("failed to resolve --dir %s: %w", dirFlag, err)
	}

	cfg, err := config.Load(config.LoadOptions{
		Dir:      workDir,
		File:     configFile,
		Flags:    cmd.Flags(),
		FlagKeys: lintFlagKeys,
	})
	if err != nil {
		return err
	}
	if cfg.File != "" {
		logger.Debug("loaded configuration", logger.String("file", cfg.File))
	}
	// Nothing is read from the repository until the platform is known.
	if _, err := review.ParsePlatform(cfg.Platform.Name); err != nil {
		return err
	}

	if cfg.Platform.Commit == "" {
		if sha, err := gitctx.HeadCommit(workDir); err == nil {
			cfg.Platform.Commit = sha
		} else {
			logger.Debug("no commit for file links", logger.Err(err))
		}
	}

	prefix, err := gitctx.RepoRelative(workDir)
	if err != nil {
		logger.Debug("reporting paths relative to --dir", logger.Err(err))
	}

	changes := &gitctx.Provider{Dir: workDir, BaseRef: cfg.Changes.BaseRef}
	filter, err := buildFilter(ctx, cfg, changes, workDir)
	if err != nil {
		return err
	}

	var files []string
	if len(args) > 0 {
		files = args
	}

	report := &review.StatusReport{}
	linter := &review.Linter{
		Config: review.Config{
			Source: ktlint.SourceConfig{
				Filtering:          cfg.Lint.Filtering,
				SkipLint:           cfg.Lint.SkipLint,
				ReportFile:         cfg.Lint.ReportFile,
				ReportFilesPattern: cfg.Lint.ReportFilesPattern,
				ReportFormat:       ktlint.ReportFormat(cfg.Lint.ReportFormat),
				BinaryPath:         cfg.Lint.KtlintPath,
				Timeout:            cfg.Lint.Timeout,
			},
			Limit: cfg.Lint.Limit,
		},
		Platform: cfg.Platform.Name,
		Repo:     review.RepoInfo{URL: cfg.Platform.RepoURL, Commit: cfg.Platform.Commit, PathPrefix: prefix},
		WorkDir:  workDir,
		Changes:  changes,
		Sink:     report,
	}

	summary, err := linter.Lint(ctx, review.Request{Files: files, Inline: cfg.Lint.Inline, Filter: filter})
	if err != nil {
		return err
	}

	mode := review.ModeAggregated
	if cfg.Lint.Inline {
		mode = review.ModeInline
	}
	pub, err := publish.New(publish.Options{
		Output: cfg.Publish.Output,
		Writer: cmd.OutOrStdout(),
		DryRun: dryRun,
		GitHub: publish.GitHubOptions{
			Repository:  cfg.Publish.GitHub.Repository,
			PullRequest: cfg.Publish.GitHub.PullRequest,
			Token:       cfg.Publish.GitHub.Token,
			APIURL:      cfg.Publish.GitHub.APIURL,
			Commit:      cfg.Platform.Commit,
			WorkDir:     workDir,
			PathPrefix:  prefix,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errPublish, err)
	}
	if err := pub.Publish(ctx, publish.Result{Report: report, Summary: summary, Mode: mode}); err != nil {
		return fmt.Errorf("%w: %w", errPublish, err)
	}

	if failOnIssues && !report.Empty() {
		return fmt.Errorf("%w: %d message(s)", errIssuesFound, len(report.Failures))
	}
	return nil
}

// buildFilter combines ignore files, rule exclusions, the added-lines
// restriction and the issue policy. Every part is optional.
func buildFilter(ctx context.Context, cfg *config.Config, changes *gitctx.Provider, workDir string) (review.Filter, error) {
	home, _ := os.UserHomeDir()
	matcher, err := ignore.NewMatcher(workDir, ignore.Options{Gitignore: cfg.Lint.Gitignore, Home: home})
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore files: %w", err)
	}
	filters := []review.Filter{matcher.Filter(), review.ExcludeRules(cfg.Lint.ExcludeRules)}

	if cfg.Lint.ChangedLinesOnly {
		cs, err := changes.Collect(ctx)
		if err != nil {
			return nil, fmt.Errorf("changed-lines-only needs a git change set: %w", err)
		}
		logger.Debug("collected added lines", logger.Int("files", len(cs.AddedLines)), logger.String("base_ref", cs.BaseRef))
		filters = append(filters, review.OnlyAddedLines(cs.AddedLines, workDir))
	}

	if cfg.Lint.Policy != "" {
		path := cfg.Lint.Policy
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
		engine, err := policy.Load(ctx, path)
		if err != nil {
			return nil, &review.ConfigError{Field: "policy", Value: cfg.Lint.Policy, Err: err}
		}
		filters = append(filters, engine.Filter(ctx))
	}
	return review.AllOf(filters...), nil
}
