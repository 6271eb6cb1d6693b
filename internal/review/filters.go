/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package review

import (
	"strings"

	"github.com/fulmenhq/ktlint-review/internal/ktlint"
)

// ExcludeRules drops issues whose rule id is listed. A bare id such as
// "no-wildcard-imports" also matches its rule-set qualified form
// "standard:no-wildcard-imports".
func ExcludeRules(rules []string) Filter {
	excluded := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if r = strings.TrimSpace(r); r != "" {
			excluded[r] = struct{}{}
		}
	}
	if len(excluded) == 0 {
		return nil
	}
	return func(is ktlint.Issue) bool {
		if _, ok := excluded[is.Rule]; ok {
			return false
		}
		if i := strings.LastIndex(is.Rule, ":"); i >= 0 {
			if _, ok := excluded[is.Rule[i+1:]]; ok {
				return false
			}
		}
		return true
	}
}

// OnlyAddedLines keeps issues that sit on a line added by the change set.
// addedLines is keyed by repository-relative path.
func OnlyAddedLines(addedLines map[string][]int, workDir string) Filter {
	index := make(map[string]map[int]struct{}, len(addedLines))
	for file, lines := range addedLines {
		set := make(map[int]struct{}, len(lines))
		for _, ln := range lines {
			set[ln] = struct{}{}
		}
		index[file] = set
	}
	return func(is ktlint.Issue) bool {
		lines, ok := index[Relativize(is.File, workDir)]
		if !ok {
			return false
		}
		_, ok = lines[is.Line]
		return ok
	}
}

// AllOf combines filters with logical AND. Nil filters are ignored; with none
// left the result is nil, meaning keep everything.
func AllOf(filters ...Filter) Filter {
	var active []Filter
	for _, f := range filters {
		if f != nil {
			active = append(active, f)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return func(is ktlint.Issue) bool {
		for _, f := range active {
			if !f(is) {
				return false
			}
		}
		return true
	}
}
