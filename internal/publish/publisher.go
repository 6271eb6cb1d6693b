/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fulmenhq/ktlint-review/internal/review"
	"github.com/fulmenhq/ktlint-review/pkg/logger"
)

// Output names accepted by New
const (
	OutputMarkdown = "markdown"
	OutputText     = "text"
	OutputJSON     = "json"
	OutputYAML     = "yaml"
	OutputGitHub   = "github"
)

// ErrUnknownOutput is returned by New for an unsupported output name
var ErrUnknownOutput = errors.New("unknown output")

// Result is what a lint run hands to a publisher
type Result struct {
	Report  *review.StatusReport
	Summary review.Summary
	Mode    review.Mode
}

// Publisher delivers review feedback to its destination
type Publisher interface {
	Publish(ctx context.Context, res Result) error
}

// Options configures New
type Options struct {
	Output string
	// Writer receives rendered output; defaults to stdout
	Writer io.Writer
	GitHub GitHubOptions
	// DryRun renders what would be posted instead of calling a remote API
	DryRun bool
}

// New returns the publisher for opts.Output.
func New(opts Options) (Publisher, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	switch opts.Output {
	case "", OutputMarkdown:
		return &Markdown{W: w}, nil
	case OutputText:
		return &Text{W: w}, nil
	case OutputJSON:
		return &JSON{W: w}, nil
	case OutputYAML:
		return &YAML{W: w}, nil
	case OutputGitHub:
		if opts.DryRun {
			logger.Info("Dry run: rendering GitHub feedback as markdown instead of posting")
			return &Markdown{W: w}, nil
		}
		return NewGitHub(opts.GitHub)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownOutput, opts.Output)
	}
}
