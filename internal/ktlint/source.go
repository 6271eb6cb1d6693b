/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ktlint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/ktlint-review/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// SourceConfig controls where lint reports come from
type SourceConfig struct {
	// Filtering restricts a ktlint run to the target files instead of the whole tree
	Filtering bool
	// SkipLint never runs ktlint; a report file or pattern is required
	SkipLint           bool
	ReportFile         string
	ReportFilesPattern string
	ReportFormat       ReportFormat
	// BinaryPath overrides PATH lookup for ktlint
	BinaryPath string
	// Timeout bounds the ktlint run; zero means no timeout
	Timeout time.Duration
}

// UsesReportFiles reports whether reports are read from disk rather than produced by a run.
func (c SourceConfig) UsesReportFiles() bool {
	return c.SkipLint || strings.TrimSpace(c.ReportFile) != "" || strings.TrimSpace(c.ReportFilesPattern) != ""
}

// Source obtains raw report documents for one lint invocation
type Source struct {
	Config SourceConfig
	// WorkDir is where ktlint runs and where relative report paths resolve
	WorkDir string
}

// NewSource creates a report source rooted at workDir
func NewSource(cfg SourceConfig, workDir string) *Source {
	return &Source{Config: cfg, WorkDir: workDir}
}

// Obtain returns the report documents for targets. Operational failures are
// ErrToolMissing or ErrReportNotFound; malformed reports are *ReportError.
func (s *Source) Obtain(ctx context.Context, targets []string) ([]Document, error) {
	if s.Config.UsesReportFiles() {
		paths, err := s.reportPaths()
		if err != nil {
			return nil, err
		}
		return s.readAll(ctx, paths, s.Config.ReportFormat)
	}
	return s.runKtlint(ctx, targets)
}

// reportPaths applies the report-file precedence: an existing report_file, then
// the glob pattern (zero matches is fine), otherwise ErrReportNotFound.
func (s *Source) reportPaths() ([]string, error) {
	if f := strings.TrimSpace(s.Config.ReportFile); f != "" {
		p := s.resolve(f)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return []string{p}, nil
		}
		logger.Debug("configured report file not found", logger.String("path", p))
	}

	if pattern := strings.TrimSpace(s.Config.ReportFilesPattern); pattern != "" {
		matches, err := doublestar.FilepathGlob(s.resolve(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid report_files_pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		logger.Debug("expanded report pattern", logger.String("pattern", pattern), logger.Int("matches", len(matches)))
		return matches, nil
	}

	return nil, ErrReportNotFound
}

// maxParallelReads bounds concurrent report parsing for large pattern matches.
const maxParallelReads = 8

// readAll parses paths concurrently; documents keep the order of paths.
func (s *Source) readAll(ctx context.Context, paths []string, format ReportFormat) ([]Document, error) {
	docs := make([]Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := ReadReport(p, format)
			if err != nil {
				var re *ReportError
				if errors.As(err, &re) {
					return err
				}
				return fmt.Errorf("failed to read report %s: %w", p, err)
			}
			logger.Debug("parsed report", logger.String("path", p), logger.Int("files", len(doc)))
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Source) runKtlint(ctx context.Context, targets []string) ([]Document, error) {
	bin, err := ResolveBinary(ResolveOptions{Explicit: s.Config.BinaryPath, EnvOverride: EnvBinaryOverride})
	if err != nil {
		return nil, err
	}

	pathArgs := TargetArgs(targets, s.Config.Filtering)
	if len(pathArgs) == 0 {
		logger.Info("No Kotlin targets; skipping ktlint run")
		return nil, nil
	}

	reportPath := filepath.Join(s.WorkDir, ReportFileName)
	// A stale report from an earlier run must never be mistaken for this one.
	if err := os.Remove(reportPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale report %s: %w", reportPath, err)
	}

	args := CommandArgs(pathArgs)
	logger.Info(fmt.Sprintf("Running ktlint on %d target(s)", len(pathArgs)), logger.Bool("filtering", s.Config.Filtering))
	logger.Debug("ktlint command", logger.String("bin", bin), logger.Strings("args", args))

	out, exitCode, err := runToolCapture(ctx, s.WorkDir, bin, args, s.Config.Timeout)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Warn("ktlint could not be executed", logger.Err(err))
	}
	logger.Debug("ktlint finished", logger.Int("exit_code", exitCode), logger.Int("output_bytes", len(out)))

	doc, err := ReadReport(reportPath, ReportFormatJSON)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("ktlint did not write a report", logger.String("path", reportPath), logger.String("output", strings.TrimSpace(string(out))))
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return []Document{doc}, nil
}

func (s *Source) resolve(p string) string {
	if filepath.IsAbs(p) || s.WorkDir == "" {
		return p
	}
	return filepath.Join(s.WorkDir, p)
}
