/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package review

import (
	"fmt"
	"html"
	"strings"
)

// Platform is the code-review host receiving feedback
type Platform int

const (
	PlatformUnknown Platform = iota
	PlatformGitHub
	PlatformGitLab
	PlatformBitbucketServer
)

// platformNames maps the accepted identifiers; matching is exact.
var platformNames = map[string]Platform{
	"github":           PlatformGitHub,
	"gitlab":           PlatformGitLab,
	"bitbucket_server": PlatformBitbucketServer,
}

// ParsePlatform resolves a platform identifier. Anything but an exact
// supported identifier yields ErrUnsupportedService.
func ParsePlatform(name string) (Platform, error) {
	if p, ok := platformNames[name]; ok {
		return p, nil
	}
	return PlatformUnknown, &ConfigError{Field: "platform", Value: fmt.Sprintf("%q", name), Err: ErrUnsupportedService}
}

// String returns the configuration identifier of the platform
func (p Platform) String() string {
	switch p {
	case PlatformGitHub:
		return "github"
	case PlatformGitLab:
		return "gitlab"
	case PlatformBitbucketServer:
		return "bitbucket_server"
	default:
		return "unknown"
	}
}

// SupportsLineAnchors reports whether file links may carry a #L<line> anchor.
func (p Platform) SupportsLineAnchors() bool {
	return p == PlatformGitHub || p == PlatformGitLab
}

// RepoInfo locates the reviewed revision on the hosting platform
type RepoInfo struct {
	// URL is the web URL of the repository, e.g. https://github.com/owner/repo.
	// For Bitbucket Server: https://host/projects/KEY/repos/slug
	URL string
	// Commit is the head revision being reviewed
	Commit string
	// PathPrefix locates the working directory inside the repository; link
	// targets are prefixed with it while link text stays as reported
	PathPrefix string
}

// LinkRenderer turns a file reference (path, optionally with an anchor) into an HTML link
type LinkRenderer interface {
	HTMLLink(ref string) string
}

// NewLinkRenderer returns the renderer for a platform.
func NewLinkRenderer(p Platform, repo RepoInfo) LinkRenderer {
	base := strings.TrimSuffix(repo.URL, "/")
	switch p {
	case PlatformGitHub, PlatformGitLab:
		return blobLinkRenderer{base: base, commit: repo.Commit, prefix: repo.PathPrefix}
	case PlatformBitbucketServer:
		return browseLinkRenderer{base: base, commit: repo.Commit, prefix: repo.PathPrefix}
	default:
		return plainLinkRenderer{}
	}
}

// blobLinkRenderer produces <repo>/blob/<commit>/<path>[#L<n>] links. Without a
// known commit the link points at HEAD.
type blobLinkRenderer struct {
	base   string
	commit string
	prefix string
}

func (r blobLinkRenderer) HTMLLink(ref string) string {
	if r.base == "" {
		return plainLinkRenderer{}.HTMLLink(ref)
	}
	commit := r.commit
	if commit == "" {
		commit = "HEAD"
	}
	href := r.base + "/blob/" + commit + "/" + withPrefix(r.prefix, ref)
	return anchor(href, ref)
}

// browseLinkRenderer produces Bitbucket Server <repo>/browse/<path>?at=<commit> links.
type browseLinkRenderer struct {
	base   string
	commit string
	prefix string
}

func (r browseLinkRenderer) HTMLLink(ref string) string {
	if r.base == "" {
		return plainLinkRenderer{}.HTMLLink(ref)
	}
	href := r.base + "/browse/" + withPrefix(r.prefix, ref)
	if r.commit != "" {
		href += "?at=" + r.commit
	}
	return anchor(href, ref)
}

// plainLinkRenderer is used when no repository URL is known.
type plainLinkRenderer struct{}

func (plainLinkRenderer) HTMLLink(ref string) string {
	return "<code>" + html.EscapeString(ref) + "</code>"
}

func withPrefix(prefix, ref string) string {
	ref = strings.TrimPrefix(ref, "/")
	if prefix = strings.Trim(prefix, "/"); prefix == "" {
		return ref
	}
	return prefix + "/" + ref
}

func anchor(href, text string) string {
	return fmt.Sprintf("<a href='%s'>%s</a>", html.EscapeString(href), html.EscapeString(text))
}

// LinkFormatter renders clickable references to files at a line
type LinkFormatter struct {
	Platform Platform
	Renderer LinkRenderer
}

// NewLinkFormatter builds the formatter for a platform and repository.
func NewLinkFormatter(p Platform, repo RepoInfo) LinkFormatter {
	return LinkFormatter{Platform: p, Renderer: NewLinkRenderer(p, repo)}
}

// FormatLink links relativePath, anchored at line where the platform supports it.
func (f LinkFormatter) FormatLink(relativePath string, line int) string {
	ref := relativePath
	if f.Platform.SupportsLineAnchors() {
		ref = fmt.Sprintf("%s#L%d", relativePath, line)
	}
	return f.Renderer.HTMLLink(ref)
}
