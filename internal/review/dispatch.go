/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package review

import (
	"github.com/fulmenhq/ktlint-review/internal/ktlint"
)

// Mode selects how each issue is rendered
type Mode int

const (
	// ModeAggregated reports "<link>: <message>" as general entries
	ModeAggregated Mode = iota
	// ModeInline reports the bare message scoped to the issue's file and line
	ModeInline
)

func (m Mode) String() string {
	if m == ModeInline {
		return "inline"
	}
	return "aggregated"
}

// Dispatcher walks normalized issues and emits one comment per eligible issue
type Dispatcher struct {
	Sink  Sink
	Links LinkFormatter
	// WorkDir is stripped from issue paths before the target check
	WorkDir string
	// Limit caps the number of comments; nil means unlimited
	Limit *int
}

// Dispatch reports issues whose relativized file is in targets, in order, and
// returns how many comments were emitted. Iteration stops as soon as the limit
// is reached.
func (d *Dispatcher) Dispatch(issues []ktlint.Issue, targets TargetSet, mode Mode) int {
	if d.Limit != nil && *d.Limit <= 0 {
		return 0
	}

	count := 0
	for _, is := range issues {
		relPath := Relativize(is.File, d.WorkDir)
		if !targets.Contains(relPath) {
			continue
		}

		switch mode {
		case ModeInline:
			// The original path is what the host resolves inline annotations against.
			d.Sink.Fail(is.Message, &Location{File: is.File, Line: is.Line})
		default:
			d.Sink.Fail(d.Links.FormatLink(relPath, is.Line)+": "+is.Message, nil)
		}
		count++

		if d.Limit != nil && count >= *d.Limit {
			break
		}
	}
	return count
}
