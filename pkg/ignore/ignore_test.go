package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/ktlint-review/internal/ktlint"
)

func TestNewMatcherLayers(t *testing.T) {
	root := t.TempDir()
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n*.log\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("# generated code\n**/generated/**\n\n!build/keep/**\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".ktlint-review"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".ktlint-review", "ignore"), []byte("scratch/\n"), 0o644))

	m, err := NewMatcher(root, Options{Gitignore: true, Home: home})
	require.NoError(t, err)

	tests := []struct {
		path    string
		ignored bool
	}{
		{"app/src/main/java/com/mataku/Model.kt", false},
		{"app/src/generated/Api.kt", true},
		{"build/tmp/Stub.kt", true},
		{"build/keep/Kept.kt", false},
		{"scratch/Try.kt", true},
		{filepath.Join(root, "app", "generated", "Abs.kt"), true},
		{filepath.Join(root, "app", "Abs.kt"), false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ignored, m.IsIgnored(tt.path))
		})
	}
}

func TestNewMatcherWithoutGitignore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n"), 0o644))

	m, err := NewMatcher(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.IsIgnored("build/Stub.kt"))
	assert.Nil(t, m.Filter(), "no patterns means no filter")
}

func TestMatcherFilter(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, FileName, []byte("legacy/\n"), 0o644))

	m, err := newMatcher(fs, "/work", Options{})
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())

	keep := m.Filter()
	require.NotNil(t, keep)
	assert.False(t, keep(ktlint.Issue{File: "legacy/Old.kt", Line: 1}))
	assert.False(t, keep(ktlint.Issue{File: "/work/legacy/Old.kt", Line: 1}))
	assert.True(t, keep(ktlint.Issue{File: "app/New.kt", Line: 1}))
}

func TestSplitPath(t *testing.T) {
	assert.Empty(t, splitPath("."))
	assert.Equal(t, []string{"a", "b.kt"}, splitPath("/a/./b.kt"))
	assert.Equal(t, []string{"a", "b.kt"}, splitPath("a//b.kt"))
}
