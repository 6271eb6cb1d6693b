/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/ktlint-review/internal/ktlint"
	"github.com/fulmenhq/ktlint-review/internal/review"
	"github.com/fulmenhq/ktlint-review/pkg/buildinfo"
	"github.com/fulmenhq/ktlint-review/pkg/config"
	"github.com/fulmenhq/ktlint-review/pkg/exitcode"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitcode.Success},
		{"issues", fmt.Errorf("%w: 2 message(s)", errIssuesFound), exitcode.IssuesFound},
		{"lint config", &review.ConfigError{Field: "limit", Value: -1, Err: review.ErrInvalidLimit}, exitcode.ConfigError},
		{"config file", &config.ValidationError{Source: "x.yaml", Problems: []string{"bad"}}, exitcode.ConfigError},
		{"report", fmt.Errorf("wrapped: %w", &ktlint.ReportError{Path: "r.json", Reason: "bad"}), exitcode.ReportError},
		{"publish", fmt.Errorf("%w: %w", errPublish, errors.New("403")), exitcode.PublishError},
		{"timeout", fmt.Errorf("ktlint did not finish: %w", context.DeadlineExceeded), exitcode.TimeoutError},
		{"tool", ktlint.ErrToolMissing, exitcode.ToolNotFound},
		{"other", errors.New("boom"), exitcode.GeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}

func TestRootVersionFlag(t *testing.T) {
	out, _, err := execRoot(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "ktlint-review "+buildinfo.BinaryVersion+"\n", out)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execRoot(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ktlint-review "+buildinfo.BinaryVersion+"\n", out)

	out, _, err = execRoot(t, "version", "--extended")
	require.NoError(t, err)
	assert.Contains(t, out, "Go version:")
	assert.Contains(t, out, "Platform:")
}

func TestVersionJSON(t *testing.T) {
	out, _, err := execRoot(t, "version", "--json")
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	assert.Equal(t, buildinfo.BinaryVersion, v["version"])
	assert.NotEmpty(t, v["go_version"])
	assert.NotEmpty(t, v["platform"])
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := execRoot(t, "format")
	assert.Error(t, err)
}
