/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ktlint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONReport(t *testing.T) {
	t.Run("fixture", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join("testdata", "ktlint_result.json"))
		require.NoError(t, err)

		doc, err := ParseJSONReport(data, "fixture")
		require.NoError(t, err)
		require.Len(t, doc, 1)
		assert.Equal(t, "app/src/main/java/com/mataku/Model.kt", doc[0].File)
		require.Len(t, doc[0].Errors, 2)
		assert.Equal(t, RawError{Line: 46, Column: 1, Message: "Unexpected blank line(s) before \"}\"", Rule: "no-blank-line-before-rbrace"}, doc[0].Errors[0])
		assert.Equal(t, 47, doc[0].Errors[1].Line)
	})

	t.Run("empty input is an empty document", func(t *testing.T) {
		doc, err := ParseJSONReport([]byte("  \n"), "")
		require.NoError(t, err)
		assert.Empty(t, doc)
	})

	t.Run("empty array", func(t *testing.T) {
		doc, err := ParseJSONReport([]byte("[]"), "")
		require.NoError(t, err)
		assert.Empty(t, doc)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ParseJSONReport([]byte(`[{"file": "a.kt",`), "broken.json")
		var re *ReportError
		require.True(t, errors.As(err, &re), "expected *ReportError, got %v", err)
		assert.Equal(t, "broken.json", re.Path)
	})

	t.Run("schema violation", func(t *testing.T) {
		_, err := ParseJSONReport([]byte(`[{"file": "a.kt", "errors": [{"line": "46", "column": 1, "message": "m", "rule": "r"}]}]`), "typed.json")
		var re *ReportError
		require.True(t, errors.As(err, &re))
		assert.NotEmpty(t, re.Details)
		assert.Contains(t, err.Error(), "does not match the ktlint JSON reporter schema")
	})

	t.Run("missing errors key", func(t *testing.T) {
		_, err := ParseJSONReport([]byte(`[{"file": "a.kt"}]`), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid ktlint report -")
	})
}

func TestParseCheckstyleReport(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "ktlint_result.xml"))
	require.NoError(t, err)

	doc, err := ParseCheckstyleReport(data, "fixture.xml")
	require.NoError(t, err)
	require.Len(t, doc, 1)
	assert.Equal(t, "app/src/main/java/com/mataku/Model.kt", doc[0].File)
	require.Len(t, doc[0].Errors, 2)
	assert.Equal(t, RawError{Line: 46, Column: 1, Message: "Unexpected blank line(s) before \"}\"", Rule: "no-blank-line-before-rbrace"}, doc[0].Errors[0])

	t.Run("wrong root", func(t *testing.T) {
		_, err := ParseCheckstyleReport([]byte(`<report></report>`), "x.xml")
		assert.ErrorContains(t, err, "missing <checkstyle> root element")
	})

	t.Run("not xml", func(t *testing.T) {
		_, err := ParseCheckstyleReport([]byte(`<checkstyle><file`), "x.xml")
		var re *ReportError
		assert.True(t, errors.As(err, &re))
	})

	t.Run("bad line", func(t *testing.T) {
		_, err := ParseCheckstyleReport([]byte(`<checkstyle><file name="a.kt"><error line="x" column="1" message="m" source="r"/></file></checkstyle>`), "x.xml")
		assert.ErrorContains(t, err, "bad line number in a.kt")
	})
}

func TestReadReportDetectsFormat(t *testing.T) {
	jsonDoc, err := ReadReport(filepath.Join("testdata", "ktlint_result.json"), ReportFormatAuto)
	require.NoError(t, err)
	xmlDoc, err := ReadReport(filepath.Join("testdata", "ktlint_result.xml"), ReportFormatAuto)
	require.NoError(t, err)
	assert.Equal(t, jsonDoc, xmlDoc)

	_, err = ReadReport(filepath.Join("testdata", "missing.json"), ReportFormatJSON)
	assert.True(t, os.IsNotExist(err))
}

func TestParseReportFormat(t *testing.T) {
	for in, want := range map[string]ReportFormat{"": ReportFormatAuto, "auto": ReportFormatAuto, "json": ReportFormatJSON, "checkstyle": ReportFormatCheckstyle} {
		got, ok := ParseReportFormat(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseReportFormat("sarif")
	assert.False(t, ok)
}

func TestUserMessage(t *testing.T) {
	msg, ok := UserMessage(ErrToolMissing)
	assert.True(t, ok)
	assert.Equal(t, "Couldn't find ktlint command. Install first.", msg)

	msg, ok = UserMessage(errors.Join(errors.New("ctx"), ErrReportNotFound))
	assert.True(t, ok)
	assert.Contains(t, msg, "report_file")
	assert.Contains(t, msg, "report_files_pattern")

	_, ok = UserMessage(&ReportError{Path: "x", Reason: "bad"})
	assert.False(t, ok)
}
