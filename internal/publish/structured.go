/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package publish

import (
	"context"
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/ktlint-review/internal/review"
)

// document is the machine-readable shape of a result
type document struct {
	Mode     string             `json:"mode" yaml:"mode"`
	Summary  summaryDoc         `json:"summary" yaml:"summary"`
	Failures []review.Violation `json:"failures" yaml:"failures"`
}

type summaryDoc struct {
	Targets    int    `json:"targets" yaml:"targets"`
	Issues     int    `json:"issues" yaml:"issues"`
	Filtered   int    `json:"filtered" yaml:"filtered"`
	Dispatched int    `json:"dispatched" yaml:"dispatched"`
	Skipped    string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

func newDocument(res Result) document {
	doc := document{
		Mode: res.Mode.String(),
		Summary: summaryDoc{
			Targets:    res.Summary.Targets,
			Issues:     res.Summary.Issues,
			Filtered:   res.Summary.Filtered,
			Dispatched: res.Summary.Dispatched,
			Skipped:    res.Summary.Skipped,
		},
		Failures: []review.Violation{},
	}
	if res.Report != nil && len(res.Report.Failures) > 0 {
		doc.Failures = res.Report.Failures
	}
	return doc
}

// JSON writes the result as indented JSON
type JSON struct {
	W io.Writer
}

// Publish implements Publisher
func (j *JSON) Publish(_ context.Context, res Result) error {
	enc := json.NewEncoder(j.W)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(newDocument(res))
}

// YAML writes the result as YAML
type YAML struct {
	W io.Writer
}

// Publish implements Publisher
func (y *YAML) Publish(_ context.Context, res Result) error {
	enc := yaml.NewEncoder(y.W)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(res)); err != nil {
		return err
	}
	return enc.Close()
}
