/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package review

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/fulmenhq/ktlint-review/internal/ktlint"
)

// KotlinSuffix is the literal, case-sensitive suffix of lintable files.
const KotlinSuffix = ".kt"

// TargetSet is the set of changed Kotlin files eligible to receive comments.
// Paths keeps first-seen order for building the ktlint command line.
type TargetSet struct {
	paths []string
	index map[string]struct{}
}

// FilterTargets keeps the changed files ending in ".kt". Duplicates collapse.
func FilterTargets(changed []string) TargetSet {
	ts := TargetSet{index: make(map[string]struct{})}
	for _, f := range changed {
		if !strings.HasSuffix(f, KotlinSuffix) {
			continue
		}
		key := norm.NFC.String(f)
		if _, dup := ts.index[key]; dup {
			continue
		}
		ts.index[key] = struct{}{}
		ts.paths = append(ts.paths, f)
	}
	return ts
}

// Contains reports whether path is a target. Paths compare in Unicode NFC so
// decomposed names (as written by some macOS tools) match their git spelling.
func (t TargetSet) Contains(path string) bool {
	_, ok := t.index[norm.NFC.String(path)]
	return ok
}

// Paths returns the targets in first-seen order.
func (t TargetSet) Paths() []string {
	return append([]string{}, t.paths...)
}

// Len returns the number of targets.
func (t TargetSet) Len() int {
	return len(t.paths)
}

// Relativize strips a leading workDir prefix so absolute paths reported by ktlint
// compare equal to repository-relative change-set paths. Paths without the
// prefix pass through unchanged.
func Relativize(path, workDir string) string {
	if workDir == "" {
		return path
	}
	prefix := strings.TrimSuffix(filepath.ToSlash(workDir), "/") + "/"
	return strings.TrimPrefix(filepath.ToSlash(path), prefix)
}

// Filter is a caller-supplied predicate. It must be free of side effects.
type Filter func(ktlint.Issue) bool

// ApplyFilter keeps the issues for which filter returns true, preserving order.
// A nil filter keeps everything.
func ApplyFilter(issues []ktlint.Issue, filter Filter) []ktlint.Issue {
	if filter == nil {
		return issues
	}
	kept := make([]ktlint.Issue, 0, len(issues))
	for _, is := range issues {
		if filter(is) {
			kept = append(kept, is)
		}
	}
	return kept
}
