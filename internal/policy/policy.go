/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package policy evaluates Rego policies that decide which ktlint issues are reported
package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/fulmenhq/ktlint-review/internal/ktlint"
	"github.com/fulmenhq/ktlint-review/internal/review"
	"github.com/fulmenhq/ktlint-review/pkg/logger"
)

// Query is evaluated for each issue. A non-empty deny set drops the issue.
const Query = "data.ktlint_review.deny"

// Engine is a prepared issue policy
type Engine struct {
	path  string
	query rego.PreparedEvalQuery
}

// Load compiles the Rego module at path.
func Load(ctx context.Context, path string) (*Engine, error) {
	clean := filepath.Clean(path)
	src, err := os.ReadFile(clean) // #nosec G304 -- user-selected policy file
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return Compile(ctx, clean, string(src))
}

// Compile prepares a policy from source; name is used in compile errors.
func Compile(ctx context.Context, name, src string) (*Engine, error) {
	pq, err := rego.New(
		rego.Query(Query),
		rego.Module(name, src),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile policy %s: %w", name, err)
	}
	return &Engine{path: name, query: pq}, nil
}

func issueInput(is ktlint.Issue) map[string]interface{} {
	return map[string]interface{}{
		"file":    is.File,
		"line":    is.Line,
		"column":  is.Column,
		"message": is.Message,
		"rule":    is.Rule,
	}
}

// Deny returns the sorted reasons the policy gives for dropping is.
func (e *Engine) Deny(ctx context.Context, is ktlint.Issue) ([]string, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(issueInput(is)))
	if err != nil {
		return nil, err
	}
	var reasons []string
	for _, r := range rs {
		for _, expr := range r.Expressions {
			values, ok := expr.Value.([]interface{})
			if !ok {
				continue
			}
			for _, v := range values {
				reasons = append(reasons, fmt.Sprint(v))
			}
		}
	}
	sort.Strings(reasons)
	return reasons, nil
}

// Filter adapts the policy to a review filter. Issues the policy cannot
// evaluate are kept.
func (e *Engine) Filter(ctx context.Context) review.Filter {
	return func(is ktlint.Issue) bool {
		reasons, err := e.Deny(ctx, is)
		if err != nil {
			logger.Warn("policy evaluation failed; keeping issue", logger.String("policy", e.path), logger.String("file", is.File), logger.Err(err))
			return true
		}
		if len(reasons) > 0 {
			logger.Debug("issue dropped by policy", logger.String("file", is.File), logger.Int("line", is.Line), logger.Strings("reasons", reasons))
			return false
		}
		return true
	}
}
