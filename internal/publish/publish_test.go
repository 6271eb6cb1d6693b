/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/ktlint-review/internal/review"
)

const (
	modelKt  = "app/src/main/java/com/mataku/Model.kt"
	blankMsg = "Unexpected blank line(s) before \"}\""
	link46   = "<a href='https://github.com/mataku/android/blob/561827e/" + modelKt + "#L46'>" + modelKt + "#L46</a>"
)

func aggregatedResult() Result {
	r := &review.StatusReport{}
	r.Fail(link46+": "+blankMsg, nil)
	return Result{Report: r, Summary: review.Summary{Targets: 1, Issues: 2, Filtered: 1, Dispatched: 1}, Mode: review.ModeAggregated}
}

func inlineResult() Result {
	r := &review.StatusReport{}
	r.Fail(blankMsg, &review.Location{File: modelKt, Line: 46})
	r.Fail(blankMsg, &review.Location{File: modelKt, Line: 47})
	return Result{Report: r, Summary: review.Summary{Targets: 1, Issues: 2, Dispatched: 2}, Mode: review.ModeInline}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for output, want := range map[string]Publisher{
		"":         &Markdown{W: &buf},
		"markdown": &Markdown{W: &buf},
		"text":     &Text{W: &buf},
		"json":     &JSON{W: &buf},
		"yaml":     &YAML{W: &buf},
	} {
		p, err := New(Options{Output: output, Writer: &buf})
		require.NoError(t, err, output)
		assert.IsType(t, want, p, output)
	}

	_, err := New(Options{Output: "html"})
	assert.True(t, errors.Is(err, ErrUnknownOutput))

	_, err = New(Options{Output: "github"})
	assert.ErrorIs(t, err, ErrGitHubNotConfigured)

	p, err := New(Options{Output: "github", DryRun: true, Writer: &buf})
	require.NoError(t, err)
	assert.IsType(t, &Markdown{}, p, "dry run renders instead of posting")
}

func TestRenderMarkdownAggregated(t *testing.T) {
	out, err := RenderMarkdown(aggregatedResult())
	require.NoError(t, err)

	assert.Contains(t, out, "1 ktlint issue</th>")
	assert.Contains(t, out, "<td>"+link46+": "+blankMsg+"</td>", "links are not escaped")
	assert.NotContains(t, out, "#### Inline")
}

func TestRenderMarkdownInline(t *testing.T) {
	out, err := RenderMarkdown(inlineResult())
	require.NoError(t, err)

	assert.NotContains(t, out, "<table>")
	assert.Contains(t, out, "#### Inline (2)")
	assert.Contains(t, out, "- `"+modelKt+":46` Unexpected blank line(s) before &quot;}&quot;")
	assert.Contains(t, out, "- `"+modelKt+":47` Unexpected blank line(s) before &quot;}&quot;")
}

func TestRenderMarkdownEscapesInlineMessages(t *testing.T) {
	r := &review.StatusReport{}
	r.Fail("Unexpected token <script>alert(1)</script>", &review.Location{File: modelKt, Line: 3})

	out, err := RenderMarkdown(Result{Report: r, Mode: review.ModeInline})
	require.NoError(t, err)
	assert.Contains(t, out, "Unexpected token &lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, out, "<script>")
}

func TestRenderMarkdownEmpty(t *testing.T) {
	out, err := RenderMarkdown(Result{Report: &review.StatusReport{}, Summary: review.Summary{Targets: 3}})
	require.NoError(t, err)
	assert.Equal(t, ":white_check_mark: ktlint found no issues in 3 changed Kotlin file(s).\n", out)

	out, err = RenderMarkdown(Result{})
	require.NoError(t, err)
	assert.Contains(t, out, "no issues")
}

func TestMarkdownPluralizes(t *testing.T) {
	r := &review.StatusReport{}
	r.Fail("a", nil)
	r.Fail("b", nil)
	out, err := RenderMarkdown(Result{Report: r})
	require.NoError(t, err)
	assert.Contains(t, out, "2 ktlint issues</th>")
}

func TestTextAggregated(t *testing.T) {
	out := (&Text{}).Render(aggregatedResult())

	assert.Contains(t, out, "LOCATION")
	assert.Contains(t, out, modelKt+"#L46  "+blankMsg)
	assert.NotContains(t, out, "<a href")
	assert.Contains(t, out, "1 ktlint issue(s) reported (2 found, 1 filtered, aggregated mode)")
}

func TestTextInlineAlignment(t *testing.T) {
	r := &review.StatusReport{}
	r.Fail("short path", &review.Location{File: "A.kt", Line: 1})
	r.Fail("long path", &review.Location{File: "app/日本語/Model.kt", Line: 120})
	out := (&Text{}).Render(Result{Report: r, Mode: review.ModeInline})

	assert.Contains(t, out, "A.kt:1                   short path")
	assert.Contains(t, out, "app/日本語/Model.kt:120  long path")
}

func TestTextTruncatesMessages(t *testing.T) {
	r := &review.StatusReport{}
	r.Fail("0123456789abcdef", &review.Location{File: "A.kt", Line: 1})
	out := (&Text{MessageWidth: 8}).Render(Result{Report: r})
	assert.Contains(t, out, "0123456…")
	assert.NotContains(t, out, "abcdef")
}

func TestTextEmpty(t *testing.T) {
	out := (&Text{}).Render(Result{Summary: review.Summary{Targets: 2}})
	assert.Equal(t, "ktlint: no issues in 2 changed Kotlin file(s)\n", out)
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSON{W: &buf}).Publish(context.Background(), inlineResult()))

	var doc document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "inline", doc.Mode)
	assert.Equal(t, 2, doc.Summary.Dispatched)
	require.Len(t, doc.Failures, 2)
	assert.Equal(t, review.Violation{Message: blankMsg, File: modelKt, Line: 47}, doc.Failures[1])
	assert.NotContains(t, buf.String(), `<`)
}

func TestJSONEmptyFailuresIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSON{W: &buf}).Publish(context.Background(), Result{}))
	assert.Contains(t, buf.String(), `"failures": []`)
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAML{W: &buf}).Publish(context.Background(), aggregatedResult()))

	var doc document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "aggregated", doc.Mode)
	require.Len(t, doc.Failures, 1)
	assert.Equal(t, link46+": "+blankMsg, doc.Failures[0].Message)
	assert.Empty(t, doc.Failures[0].File)
}
