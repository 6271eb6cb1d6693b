/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const modelKt = "app/src/main/java/com/mataku/Model.kt"

const modelReport = `[{"file":"app/src/main/java/com/mataku/Model.kt","errors":[` +
	`{"line":46,"column":1,"message":"Unexpected blank line(s) before \"}\"","rule":"no-blank-line-before-rbrace"},` +
	`{"line":47,"column":1,"message":"Unexpected blank line(s) before \"}\"","rule":"no-blank-line-before-rbrace"}]}]`

// execRoot runs a fresh command tree and returns stdout, stderr and the error.
func execRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCommand()
	registerSubcommands(root)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "error", "--no-color"}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

// newWorkspace returns a project dir holding the two-issue report, with ktlint
// off PATH and no user configuration in reach.
func newWorkspace(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PATH", t.TempDir())
	t.Setenv("KTLINT_REVIEW_KTLINT_PATH", "")
	for _, k := range []string{"GITHUB_ACTIONS", "GITLAB_CI", "GITHUB_BASE_REF", "CI_MERGE_REQUEST_TARGET_BRANCH_NAME"} {
		t.Setenv(k, "")
	}
	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, "ktlint_result.json"), []byte(modelReport), 0o644))
	return work
}
