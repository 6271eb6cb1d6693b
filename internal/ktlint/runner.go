/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ktlint

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ReportFileName is where ktlint is told to write its JSON report, relative to the
// working directory. One invocation per process, so a fixed name is safe.
const ReportFileName = "ktlint_report.json"

// WholeTreeTarget is passed to ktlint when filtering is disabled.
const WholeTreeTarget = "**/*.kt"

// TargetArgs returns the path arguments for a ktlint run. With filtering the
// targets are passed as-is (possibly none); otherwise ktlint scans the tree.
func TargetArgs(targets []string, filtering bool) []string {
	if !filtering {
		return []string{WholeTreeTarget}
	}
	return append([]string(nil), targets...)
}

// CommandArgs builds the full ktlint argument list for the given path arguments.
func CommandArgs(pathArgs []string) []string {
	args := append([]string(nil), pathArgs...)
	return append(args, "--reporter=json,output="+ReportFileName, "--relative")
}

// runToolCapture runs bin in dir and returns combined output and exit code.
// A non-zero exit is not an error: ktlint exits 1 whenever it finds issues.
func runToolCapture(ctx context.Context, dir, bin string, args []string, timeout time.Duration) ([]byte, int, error) {
	tctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(tctx, bin, args...) // #nosec G204
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err == nil {
		return out, 0, nil
	}
	if tctx.Err() != nil {
		return out, 0, fmt.Errorf("%s did not finish: %w", bin, tctx.Err())
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return out, ee.ExitCode(), nil
	}
	return out, 0, fmt.Errorf("%s execution failed: %w", bin, err)
}
