/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/go-github/v82/github"

	"github.com/fulmenhq/ktlint-review/internal/gitctx"
	"github.com/fulmenhq/ktlint-review/internal/review"
	"github.com/fulmenhq/ktlint-review/pkg/logger"
)

// ErrGitHubNotConfigured is returned when repository, pull request or token is missing
var ErrGitHubNotConfigured = errors.New("github publishing needs a repository (owner/name), a pull request number and a token")

// GitHubOptions configures the pull request publisher
type GitHubOptions struct {
	Repository  string // owner/name
	PullRequest int
	Token       string
	// APIURL overrides https://api.github.com/, e.g. for GitHub Enterprise
	APIURL string
	// Commit anchors inline review comments; empty uses the PR head
	Commit string
	// WorkDir is stripped from inline comment paths
	WorkDir string
	// PathPrefix is WorkDir relative to the repository root; it is prepended
	// to inline comment paths
	PathPrefix string
	// HTTPClient is used instead of http.DefaultClient
	HTTPClient *http.Client
}

// GitHub posts results to a pull request
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
	opts   GitHubOptions
}

// NewGitHub validates opts and builds the API client.
func NewGitHub(opts GitHubOptions) (*GitHub, error) {
	owner, repo, err := ParseRepoFullName(opts.Repository)
	if err != nil || opts.PullRequest <= 0 || opts.Token == "" {
		return nil, ErrGitHubNotConfigured
	}

	client := github.NewClient(opts.HTTPClient).WithAuthToken(opts.Token)
	if opts.APIURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid github api_url %q: %w", opts.APIURL, err)
		}
		client.BaseURL = base
	}
	return &GitHub{client: client, owner: owner, repo: repo, opts: opts}, nil
}

// ParseRepoFullName splits "owner/repo" into parts
func ParseRepoFullName(fullName string) (owner, repo string, err error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name: %s", fullName)
	}
	return parts[0], parts[1], nil
}

// Publish implements Publisher. General failures become one pull request
// comment; inline failures become a single review whose body carries any
// general failures.
func (g *GitHub) Publish(ctx context.Context, res Result) error {
	if res.Report == nil || res.Report.Empty() {
		logger.Info("No ktlint feedback to post", logger.Int("pull_request", g.opts.PullRequest))
		return nil
	}

	inline := res.Report.InlineFailures()
	if len(inline) == 0 {
		return g.postComment(ctx, res)
	}
	return g.postReview(ctx, res, inline)
}

func (g *GitHub) postComment(ctx context.Context, res Result) error {
	body, err := RenderMarkdown(res)
	if err != nil {
		return err
	}
	_, _, err = g.client.Issues.CreateComment(ctx, g.owner, g.repo, g.opts.PullRequest, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("create pr comment: %w", err)
	}
	logger.Info(fmt.Sprintf("Posted ktlint summary to %s/%s#%d", g.owner, g.repo, g.opts.PullRequest))
	return nil
}

// postReview posts one review. GitHub rejects a whole review when any comment
// sits outside the pull request diff, so those failures are listed in the
// review body instead.
func (g *GitHub) postReview(ctx context.Context, res Result, inline []review.Violation) error {
	commentable, err := g.commentableLines(ctx)
	if err != nil {
		return err
	}

	var comments []*github.DraftReviewComment
	folded := res.Report.General()
	for _, v := range inline {
		p := g.repoPath(v.File)
		if _, ok := commentable[p][v.Line]; !ok {
			folded = append(folded, v)
			continue
		}
		comments = append(comments, &github.DraftReviewComment{
			Path: github.Ptr(p),
			Line: github.Ptr(v.Line),
			Side: github.Ptr("RIGHT"),
			Body: github.Ptr(v.Message),
		})
	}
	if len(comments) == 0 {
		logger.Debug("no inline failure is inside the pull request diff", logger.Int("failures", len(inline)))
		return g.postComment(ctx, res)
	}

	body := fmt.Sprintf("ktlint found %d issue(s) in changed Kotlin files.", len(inline))
	if len(folded) > 0 {
		rendered, err := RenderMarkdown(Result{Report: &review.StatusReport{Failures: folded}, Summary: res.Summary, Mode: res.Mode})
		if err != nil {
			return err
		}
		body += "\n\n" + rendered
	}

	req := &github.PullRequestReviewRequest{
		Body:     github.Ptr(body),
		Event:    github.Ptr("COMMENT"),
		Comments: comments,
	}
	if g.opts.Commit != "" {
		req.CommitID = github.Ptr(g.opts.Commit)
	}
	if _, _, err := g.client.PullRequests.CreateReview(ctx, g.owner, g.repo, g.opts.PullRequest, req); err != nil {
		return fmt.Errorf("create pr review: %w", err)
	}
	logger.Info(fmt.Sprintf("Posted ktlint review with %d inline comment(s) to %s/%s#%d", len(comments), g.owner, g.repo, g.opts.PullRequest),
		logger.Int("folded", len(folded)))
	return nil
}

// repoPath maps a reported file to its repository-relative path.
func (g *GitHub) repoPath(file string) string {
	rel := review.Relativize(file, g.opts.WorkDir)
	if g.opts.PathPrefix == "" {
		return rel
	}
	return path.Join(g.opts.PathPrefix, rel)
}

// commentableLines returns, per file, the new-side lines covered by the pull
// request diff.
func (g *GitHub) commentableLines(ctx context.Context) (map[string]map[int]struct{}, error) {
	lines := make(map[string]map[int]struct{})
	opts := &github.ListOptions{PerPage: 100}
	for {
		files, resp, err := g.client.PullRequests.ListFiles(ctx, g.owner, g.repo, g.opts.PullRequest, opts)
		if err != nil {
			return nil, fmt.Errorf("list pr files: %w", err)
		}
		for _, f := range files {
			set := make(map[int]struct{})
			for _, ln := range gitctx.HunkLines(f.GetPatch()) {
				set[ln] = struct{}{}
			}
			lines[f.GetFilename()] = set
		}
		if resp == nil || resp.NextPage == 0 {
			return lines, nil
		}
		opts.Page = resp.NextPage
	}
}
