/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ktlint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePreservesOrder(t *testing.T) {
	docs := []Document{
		{
			{File: "a.kt", Errors: []RawError{{Line: 2, Column: 1, Message: "a2", Rule: "r"}, {Line: 1, Column: 1, Message: "a1", Rule: "r"}}},
			{File: "b.kt", Errors: []RawError{}},
			{File: "c.kt", Errors: []RawError{{Line: 9, Column: 3, Message: "c9", Rule: "q"}}},
		},
		{
			{File: "a.kt", Errors: []RawError{{Line: 5, Column: 2, Message: "a5", Rule: "s"}}},
		},
	}

	issues := Normalize(docs)

	var messages []string
	for _, is := range issues {
		messages = append(messages, is.Message)
	}
	assert.Equal(t, []string{"a2", "a1", "c9", "a5"}, messages)
	assert.Equal(t, Issue{File: "c.kt", Line: 9, Column: 3, Message: "c9", Rule: "q"}, issues[2])
	assert.Equal(t, issues, Normalize(docs), "normalization must be reproducible")
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]Document{{}, {}}))
}

func TestNormalizeTwoErrorsOneFile(t *testing.T) {
	docs := []Document{{{File: "Model.kt", Errors: []RawError{
		{Line: 46, Column: 1, Message: "first", Rule: "r"},
		{Line: 47, Column: 1, Message: "second", Rule: "r"},
	}}}}

	issues := Normalize(docs)
	if assert.Len(t, issues, 2) {
		assert.Equal(t, 46, issues[0].Line)
		assert.Equal(t, 47, issues[1].Line)
	}
}
