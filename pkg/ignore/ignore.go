// Package ignore decides which reported files are excluded from review, using
// gitignore syntax through go-git
package ignore

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/fulmenhq/ktlint-review/internal/ktlint"
	"github.com/fulmenhq/ktlint-review/internal/review"
)

// FileName is the repository ignore file, read from the project root.
const FileName = ".ktlint-reviewignore"

// Matcher matches repository-relative paths against layered ignore patterns
type Matcher struct {
	root     string
	matcher  gitignore.Matcher
	patterns int
}

// Options controls which layers are loaded
type Options struct {
	// Gitignore also applies .gitignore files and .git/info/exclude
	Gitignore bool
	// Home is the directory holding the user-level .ktlint-review/ignore file; empty skips it
	Home string
}

// NewMatcher loads patterns in increasing priority:
//  1. .gitignore and .git/info/exclude (when opts.Gitignore)
//  2. .ktlint-reviewignore at root
//  3. $HOME/.ktlint-review/ignore
func NewMatcher(root string, opts Options) (*Matcher, error) {
	return newMatcher(osfs.New(root), root, opts)
}

func newMatcher(fs billy.Filesystem, root string, opts Options) (*Matcher, error) {
	var all []gitignore.Pattern

	if opts.Gitignore {
		if ps, err := gitignore.ReadPatterns(fs, nil); err == nil {
			all = append(all, ps...)
		}
	}

	ps, err := readIgnoreFile(fs, FileName)
	if err != nil {
		return nil, err
	}
	all = append(all, ps...)

	if opts.Home != "" {
		ps, err := readIgnoreFile(osfs.New(opts.Home), filepath.Join(".ktlint-review", "ignore"))
		if err != nil {
			return nil, err
		}
		all = append(all, ps...)
	}

	return &Matcher{root: root, matcher: gitignore.NewMatcher(all), patterns: len(all)}, nil
}

// readIgnoreFile parses name on fs; a missing file yields no patterns.
func readIgnoreFile(fs billy.Filesystem, name string) ([]gitignore.Pattern, error) {
	data, err := util.ReadFile(fs, name)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var patterns []gitignore.Pattern
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns, sc.Err()
}

// Len reports how many patterns were loaded.
func (m *Matcher) Len() int {
	return m.patterns
}

// IsIgnored checks a path relative to the matcher root; absolute paths under
// the root are relativized first.
func (m *Matcher) IsIgnored(path string) bool {
	parts := splitPath(review.Relativize(path, m.root))
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, false)
}

// Filter drops issues in ignored files. It returns nil when nothing is ignored.
func (m *Matcher) Filter() review.Filter {
	if m.patterns == 0 {
		return nil
	}
	return func(is ktlint.Issue) bool {
		return !m.IsIgnored(is.File)
	}
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	path = filepath.ToSlash(path)
	if path == "" || path == "." {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
