/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package review

import (
	"testing"

	"github.com/fulmenhq/ktlint-review/internal/ktlint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	modelKt      = "app/src/main/java/com/mataku/Model.kt"
	blankLineMsg = "Unexpected blank line(s) before \"}\""
)

func modelIssues() []ktlint.Issue {
	return []ktlint.Issue{
		{File: modelKt, Line: 46, Column: 1, Message: blankLineMsg, Rule: "no-blank-line-before-rbrace"},
		{File: modelKt, Line: 47, Column: 1, Message: blankLineMsg, Rule: "no-blank-line-before-rbrace"},
	}
}

func githubLinks() LinkFormatter {
	return NewLinkFormatter(PlatformGitHub, RepoInfo{URL: "https://github.com/mataku/android", Commit: "561827e"})
}

func intPtr(n int) *int { return &n }

func TestDispatchAggregated(t *testing.T) {
	sink := &StatusReport{}
	d := &Dispatcher{Sink: sink, Links: githubLinks()}

	n := d.Dispatch(modelIssues(), FilterTargets([]string{modelKt}), ModeAggregated)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{
		"<a href='https://github.com/mataku/android/blob/561827e/" + modelKt + "#L46'>" + modelKt + "#L46</a>: " + blankLineMsg,
		"<a href='https://github.com/mataku/android/blob/561827e/" + modelKt + "#L47'>" + modelKt + "#L47</a>: " + blankLineMsg,
	}, sink.Messages())
	assert.Empty(t, sink.InlineFailures())
}

func TestDispatchInlineKeepsOriginalPath(t *testing.T) {
	work := "/home/ci/repo"
	issues := []ktlint.Issue{{File: work + "/" + modelKt, Line: 46, Message: blankLineMsg}}
	sink := &StatusReport{}
	d := &Dispatcher{Sink: sink, Links: githubLinks(), WorkDir: work}

	n := d.Dispatch(issues, FilterTargets([]string{modelKt}), ModeInline)

	require.Equal(t, 1, n)
	assert.Equal(t, []Violation{{Message: blankLineMsg, File: work + "/" + modelKt, Line: 46}}, sink.Failures)
}

func TestDispatchAggregatedRelativizesLinks(t *testing.T) {
	work := "/home/ci/repo"
	issues := []ktlint.Issue{{File: work + "/" + modelKt, Line: 46, Message: "m"}}
	sink := &StatusReport{}
	d := &Dispatcher{Sink: sink, Links: NewLinkFormatter(PlatformBitbucketServer, RepoInfo{URL: "https://bb.example.com/projects/A/repos/b", Commit: "abc"}), WorkDir: work}

	d.Dispatch(issues, FilterTargets([]string{modelKt}), ModeAggregated)

	assert.Equal(t, []string{"<a href='https://bb.example.com/projects/A/repos/b/browse/" + modelKt + "?at=abc'>" + modelKt + "</a>: m"}, sink.Messages())
}

func TestDispatchLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit *int
		want  []int
	}{
		{"unlimited", nil, []int{46, 47}},
		{"one", intPtr(1), []int{46}},
		{"above issue count", intPtr(5), []int{46, 47}},
		{"zero", intPtr(0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &StatusReport{}
			d := &Dispatcher{Sink: sink, Links: githubLinks(), Limit: tt.limit}

			n := d.Dispatch(modelIssues(), FilterTargets([]string{modelKt}), ModeInline)

			var lines []int
			for _, f := range sink.Failures {
				lines = append(lines, f.Line)
			}
			assert.Equal(t, tt.want, lines)
			assert.Equal(t, len(tt.want), n)
		})
	}
}

func TestDispatchSkipsNonTargets(t *testing.T) {
	issues := append(modelIssues(), ktlint.Issue{File: "app/Other.kt", Line: 1, Message: "other"})
	sink := &StatusReport{}
	d := &Dispatcher{Sink: sink, Links: githubLinks(), Limit: intPtr(2)}

	// Non-target issues do not consume the limit.
	n := d.Dispatch([]ktlint.Issue{issues[2], issues[0], issues[1]}, FilterTargets([]string{modelKt}), ModeInline)

	assert.Equal(t, 2, n)
	for _, f := range sink.Failures {
		assert.Equal(t, modelKt, f.File)
	}
}

func TestDispatchNoTargets(t *testing.T) {
	sink := &StatusReport{}
	d := &Dispatcher{Sink: sink, Links: githubLinks()}

	assert.Zero(t, d.Dispatch(modelIssues(), FilterTargets(nil), ModeAggregated))
	assert.True(t, sink.Empty())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "aggregated", ModeAggregated.String())
	assert.Equal(t, "inline", ModeInline.String())
}
