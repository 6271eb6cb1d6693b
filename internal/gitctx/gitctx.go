package gitctx

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-git/go-billy/v5/util"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/fulmenhq/ktlint-review/pkg/logger"
)

// ErrNotRepository is returned when the directory is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// ChangeSet captures the added and modified files of a review.
type ChangeSet struct {
	// Files are relative to the provider's Dir, slash-separated and sorted.
	// Changes outside Dir are not part of the set.
	Files []string
	// AddedLines maps a file, keyed like Files, to the new-side line numbers it gained
	AddedLines map[string][]int
	BaseRef    string
}

// Provider computes change sets for the repository containing Dir.
// With BaseRef set the change set is merge-base(BaseRef, HEAD)..HEAD;
// otherwise it is the staged, unstaged and untracked work of the worktree.
type Provider struct {
	Dir     string
	BaseRef string
}

// ChangedFiles returns the added and modified files of the change set.
func (p *Provider) ChangedFiles(ctx context.Context) ([]string, error) {
	cs, err := p.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return cs.Files, nil
}

// Collect gathers the change set. go-git is preferred; the git CLI is used
// when the repository cannot be opened by go-git.
func (p *Provider) Collect(ctx context.Context) (*ChangeSet, error) {
	dir := p.Dir
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", p.Dir, err)
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err == nil {
		cs, root, gerr := p.collectGoGit(ctx, repo, dir)
		if gerr == nil {
			scopeTo(cs, root, dir)
			return cs, nil
		}
		logger.Debug("go-git change collection failed, trying git CLI", logger.Err(gerr))
	}

	if _, lerr := exec.LookPath("git"); lerr != nil {
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, dir)
		}
		return nil, fmt.Errorf("failed to collect changes in %s: git CLI unavailable", dir)
	}
	if !isRepoCLI(ctx, dir) {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, dir)
	}
	cs, root := p.collectCLI(ctx, dir)
	scopeTo(cs, root, dir)
	return cs, nil
}

func (p *Provider) collectGoGit(ctx context.Context, repo *git.Repository, dir string) (*ChangeSet, string, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open worktree: %w", err)
	}
	cs := &ChangeSet{BaseRef: p.BaseRef, AddedLines: make(map[string][]int)}

	if p.BaseRef != "" {
		if err := collectRange(ctx, repo, p.BaseRef, head.Hash(), cs); err != nil {
			return nil, "", err
		}
	} else {
		if err := collectWorktree(wt, cs); err != nil {
			return nil, "", err
		}
		// go-git has no worktree diff; line numbers come from the CLI when present.
		if _, lerr := exec.LookPath("git"); lerr == nil {
			parseUnifiedInto(cs.AddedLines, runGitBytes(ctx, dir, "diff", "--unified=0"))
			parseUnifiedInto(cs.AddedLines, runGitBytes(ctx, dir, "diff", "--cached", "--unified=0"))
		}
	}

	finish(cs)
	return cs, wt.Filesystem.Root(), nil
}

func collectRange(ctx context.Context, repo *git.Repository, baseRef string, headHash plumbing.Hash, cs *ChangeSet) error {
	baseHash, err := repo.ResolveRevision(plumbing.Revision(baseRef))
	if err != nil {
		return fmt.Errorf("failed to resolve base ref %q: %w", baseRef, err)
	}
	headCommit, err := repo.CommitObject(headHash)
	if err != nil {
		return fmt.Errorf("failed to load HEAD commit: %w", err)
	}
	baseCommit, err := repo.CommitObject(*baseHash)
	if err != nil {
		return fmt.Errorf("failed to load base commit %s: %w", baseRef, err)
	}
	if bases, err := headCommit.MergeBase(baseCommit); err == nil && len(bases) > 0 {
		baseCommit = bases[0]
	}

	baseTree, err := baseCommit.Tree()
	if err != nil {
		return err
	}
	headTree, err := headCommit.Tree()
	if err != nil {
		return err
	}
	changes, err := baseTree.DiffContext(ctx, headTree)
	if err != nil {
		return fmt.Errorf("failed to diff %s..HEAD: %w", baseRef, err)
	}

	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return err
		}
		if action == merkletrie.Delete {
			continue
		}
		cs.Files = append(cs.Files, filepath.ToSlash(ch.To.Name))

		patch, err := ch.PatchContext(ctx)
		if err != nil {
			logger.Debug("skipping line information", logger.String("file", ch.To.Name), logger.Err(err))
			continue
		}
		for _, fp := range patch.FilePatches() {
			addPatchLines(cs, fp)
		}
	}
	return nil
}

// addPatchLines records the new-side line numbers of added chunks.
func addPatchLines(cs *ChangeSet, fp fdiff.FilePatch) {
	if fp.IsBinary() {
		return
	}
	_, to := fp.Files()
	if to == nil {
		return
	}
	file := filepath.ToSlash(to.Path())
	line := 1
	for _, chunk := range fp.Chunks() {
		n := countLines(chunk.Content())
		switch chunk.Type() {
		case fdiff.Add:
			for i := 0; i < n; i++ {
				cs.AddedLines[file] = append(cs.AddedLines[file], line+i)
			}
			line += n
		case fdiff.Equal:
			line += n
		}
	}
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// addWholeFile marks every line of an untracked file as added.
func addWholeFile(cs *ChangeSet, file string, data []byte) {
	for ln := 1; ln <= countLines(string(data)); ln++ {
		cs.AddedLines[file] = append(cs.AddedLines[file], ln)
	}
}

func collectWorktree(wt *git.Worktree, cs *ChangeSet) error {
	st, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to read worktree status: %w", err)
	}
	for path, s := range st {
		if !isAddedOrModified(s.Staging) && !isAddedOrModified(s.Worktree) {
			continue
		}
		file := filepath.ToSlash(path)
		cs.Files = append(cs.Files, file)
		if s.Worktree == git.Untracked {
			if data, err := util.ReadFile(wt.Filesystem, path); err == nil {
				addWholeFile(cs, file, data)
			}
		}
	}
	return nil
}

func isAddedOrModified(code git.StatusCode) bool {
	switch code {
	case git.Added, git.Modified, git.Untracked, git.Renamed, git.Copied:
		return true
	}
	return false
}

// collectCLI is the git CLI rendition of collectGoGit. It returns the change
// set with repository-relative paths and the worktree root.
func (p *Provider) collectCLI(ctx context.Context, dir string) (*ChangeSet, string) {
	root := runGit(ctx, dir, "rev-parse", "--show-toplevel")
	cs := &ChangeSet{BaseRef: p.BaseRef, AddedLines: make(map[string][]int)}
	diff := func(args ...string) {
		cs.Files = append(cs.Files, parseNameOnly(runGitBytes(ctx, dir, append([]string{"diff", "--name-only", "--diff-filter=ACMR"}, args...)...))...)
		parseUnifiedInto(cs.AddedLines, runGitBytes(ctx, dir, append([]string{"diff", "--unified=0", "--diff-filter=ACMR"}, args...)...))
	}

	if p.BaseRef != "" {
		diff(p.BaseRef + "...HEAD")
	} else {
		diff()
		diff("--cached")
		for _, f := range parseNameOnly(runGitBytes(ctx, dir, "ls-files", "--others", "--exclude-standard", "--full-name")) {
			cs.Files = append(cs.Files, f)
			if data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f))); err == nil { // #nosec G304 -- file listed by git
				addWholeFile(cs, f, data)
			}
		}
	}
	finish(cs)
	return cs, root
}

// parseNameOnly splits `git diff --name-only` style output into slash paths.
func parseNameOnly(data []byte) []string {
	var files []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if f := strings.TrimSpace(sc.Text()); f != "" {
			files = append(files, filepath.ToSlash(f))
		}
	}
	return files
}

func finish(cs *ChangeSet) {
	sort.Strings(cs.Files)
	cs.Files = dedupeSorted(cs.Files)
	for f, lines := range cs.AddedLines {
		sort.Ints(lines)
		cs.AddedLines[f] = dedupeSortedInts(lines)
	}
}

// scopeTo rewrites repository-relative paths to be relative to dir and drops
// everything outside it.
func scopeTo(cs *ChangeSet, root, dir string) {
	prefix, err := filepath.Rel(resolvePath(root), resolvePath(dir))
	if err != nil || prefix == "." {
		return
	}
	prefix = filepath.ToSlash(prefix) + "/"

	files := cs.Files[:0]
	for _, f := range cs.Files {
		if rest, ok := strings.CutPrefix(f, prefix); ok {
			files = append(files, rest)
		}
	}
	cs.Files = files

	lines := make(map[string][]int, len(cs.AddedLines))
	for f, ls := range cs.AddedLines {
		if rest, ok := strings.CutPrefix(f, prefix); ok {
			lines[rest] = ls
		}
	}
	cs.AddedLines = lines
}

func resolvePath(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	return p
}

func dedupeSorted(in []string) []string {
	out := in[:0]
	for i, s := range in {
		if i == 0 || s != in[i-1] {
			out = append(out, s)
		}
	}
	return out
}

func dedupeSortedInts(in []int) []int {
	out := in[:0]
	for i, n := range in {
		if i == 0 || n != in[i-1] {
			out = append(out, n)
		}
	}
	return out
}

// HeadCommit returns the HEAD revision of the repository containing dir.
func HeadCommit(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotRepository, dir)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// RepoRelative returns dir relative to the root of its worktree,
// slash-separated, or "" when dir is the root.
func RepoRelative(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotRepository, dir)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}
	rel, err := filepath.Rel(resolvePath(wt.Filesystem.Root()), resolvePath(abs))
	if err != nil || rel == "." {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// HunkRange parses the new-side range of a hunk header such as
// "@@ -10,2 +12,3 @@ fun main()". count is 0 for pure deletions.
func HunkRange(header string) (start, count int, ok bool) {
	if !strings.HasPrefix(header, "@@") {
		return 0, 0, false
	}
	for _, field := range strings.Fields(header)[1:] {
		if field == "@@" {
			break
		}
		spec, found := strings.CutPrefix(field, "+")
		if !found {
			continue
		}
		count = 1
		if s, c, hasCount := strings.Cut(spec, ","); hasCount {
			spec = s
			if count, ok = atoi(c); !ok {
				return 0, 0, false
			}
		}
		if start, ok = atoi(spec); !ok {
			return 0, 0, false
		}
		return start, count, true
	}
	return 0, 0, false
}

// HunkLines returns every new-side line covered by the hunks of a patch,
// context lines included.
func HunkLines(patch string) []int {
	var lines []int
	sc := bufio.NewScanner(strings.NewReader(patch))
	for sc.Scan() {
		start, count, ok := HunkRange(sc.Text())
		if !ok {
			continue
		}
		for ln := start; ln < start+count; ln++ {
			lines = append(lines, ln)
		}
	}
	return lines
}

// parseUnifiedInto reads `git diff --unified=0` output and appends the added
// line numbers to dst, keyed by repository-relative path.
func parseUnifiedInto(dst map[string][]int, data []byte) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	var file string
	for sc.Scan() {
		line := sc.Text()
		if rest, ok := strings.CutPrefix(line, "+++ "); ok {
			file, _ = strings.CutPrefix(rest, "b/")
			if rest == "/dev/null" {
				file = ""
			}
			continue
		}
		if file == "" {
			continue
		}
		start, count, ok := HunkRange(line)
		if !ok {
			continue
		}
		for ln := start; ln < start+count; ln++ {
			dst[file] = append(dst[file], ln)
		}
	}
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil && n >= 0
}

func isRepoCLI(ctx context.Context, dir string) bool {
	return runGit(ctx, dir, "rev-parse", "--is-inside-work-tree") == "true"
}

func runGit(ctx context.Context, dir string, args ...string) string {
	return strings.TrimSpace(string(runGitBytes(ctx, dir, args...)))
}

func runGitBytes(ctx context.Context, dir string, args ...string) []byte {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, _ := cmd.Output()
	return out
}
