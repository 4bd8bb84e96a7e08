package gitctx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/dshills/premerge/internal/content"
	"github.com/dshills/premerge/internal/scan"
)

// Mode selects which files a git Source lists.
type Mode string

const (
	ModeStaged   Mode = "staged"
	ModeUnstaged Mode = "unstaged"
	ModeCommit   Mode = "commit"
	ModeRange    Mode = "range"
	ModeCodebase Mode = "codebase"
)

// Options controls how a git Source is opened.
type Options struct {
	// Dir is any directory inside the repository; empty means the current
	// directory.
	Dir string
	// MaxFileBytes skips larger files; zero disables the limit.
	MaxFileBytes int
	// MergeBase rewrites "a..b" ranges to "a...b".
	MergeBase bool
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// GetRepoMeta collects repository metadata for the repository containing dir.
func GetRepoMeta(dir string) (RepoMeta, error) {
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return RepoMeta{}, err
	}
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}

	var meta RepoMeta
	wt, err := r.Worktree()
	if err != nil {
		return RepoMeta{}, fmt.Errorf("opening worktree: %w", err)
	}
	meta.Root = wt.Filesystem.Root()

	head, err := r.Head()
	if err != nil {
		return meta, nil // new repo with no commits
	}
	meta.Head = head.Hash().String()
	if head.Name().IsBranch() {
		meta.Branch = head.Name().Short()
	}
	return meta, nil
}

// Source lists added and modified files from a git repository.
type Source struct {
	mode Mode
	rev  string
	opts Options
	meta RepoMeta
}

var _ scan.Source = (*Source)(nil)

// NewSource opens the repository containing opts.Dir. rev is the commit for
// ModeCommit and the revision range for ModeRange; it is ignored otherwise.
func NewSource(mode Mode, rev string, opts Options) (*Source, error) {
	switch mode {
	case ModeStaged, ModeUnstaged, ModeCodebase:
		rev = ""
	case ModeCommit, ModeRange:
		if rev == "" {
			return nil, fmt.Errorf("%s mode requires a revision", mode)
		}
	default:
		return nil, fmt.Errorf("unknown git mode %q", mode)
	}
	meta, err := GetRepoMeta(opts.Dir)
	if err != nil {
		return nil, err
	}
	if mode == ModeRange && opts.MergeBase {
		rev = mergeBaseRange(rev)
	}
	return &Source{mode: mode, rev: rev, opts: opts, meta: meta}, nil
}

// Meta returns the metadata of the opened repository.
func (s *Source) Meta() RepoMeta { return s.meta }

func (s *Source) Describe() scan.SourceInfo {
	ref := s.rev
	if ref == "" {
		ref = s.meta.Branch
	}
	return scan.SourceInfo{
		Mode: string(s.mode),
		Ref:  ref,
		Repo: s.meta.Root,
	}
}

// ListFiles runs git to find the files of the selected mode. Deleted and
// renamed files are not listed.
func (s *Source) ListFiles(ctx context.Context) ([]scan.FileRef, error) {
	numstat := []string{"--numstat", "-z", "--diff-filter=AM"}
	var out string
	var err error

	switch s.mode {
	case ModeStaged:
		out, err = s.git(ctx, append(append([]string{"diff", "--cached"}, numstat...), "--")...)
	case ModeUnstaged:
		out, err = s.git(ctx, append(append([]string{"diff"}, numstat...), "--")...)
	case ModeCommit:
		out, err = s.git(ctx, append(append([]string{"diff", s.rev + "~1", s.rev}, numstat...), "--")...)
		if err != nil {
			// Might be the initial commit.
			out, err = s.git(ctx, append(append([]string{"show", "--format="}, numstat...), s.rev, "--")...)
		}
	case ModeRange:
		out, err = s.git(ctx, append(append([]string{"diff", s.rev}, numstat...), "--")...)
	case ModeCodebase:
		out, err = s.git(ctx, "ls-files", "-z")
		if err != nil {
			return nil, fmt.Errorf("git ls-files: %w", err)
		}
		return parseLsFiles(out), nil
	}
	if err != nil {
		return nil, fmt.Errorf("git diff (%s): %w", s.mode, err)
	}
	return parseNumstat(out), nil
}

// ReadFile returns the file content as of the side of the diff being scanned:
// the index for staged changes, the commit for commit and range modes, and
// the working tree otherwise.
func (s *Source) ReadFile(ctx context.Context, ref scan.FileRef) (string, error) {
	var data []byte
	var err error
	switch s.mode {
	case ModeStaged:
		data, err = s.gitBytes(ctx, "show", ":"+ref.Filename)
	case ModeCommit:
		data, err = s.gitBytes(ctx, "show", s.rev+":"+ref.Filename)
	case ModeRange:
		if rev := rangeTip(s.rev); rev != "" {
			data, err = s.gitBytes(ctx, "show", rev+":"+ref.Filename)
		} else {
			data, err = os.ReadFile(filepath.Join(s.meta.Root, ref.Filename))
		}
	default:
		data, err = os.ReadFile(filepath.Join(s.meta.Root, ref.Filename))
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", ref.Filename, err)
	}
	return content.Decode(ref.Filename, data, s.opts.MaxFileBytes)
}

func mergeBaseRange(revRange string) string {
	if strings.Contains(revRange, "..") && !strings.Contains(revRange, "...") {
		return strings.Replace(revRange, "..", "...", 1)
	}
	return revRange
}

// rangeTip returns the revision whose tree a range diff compares against.
// A single revision diffs against the working tree, signalled by "".
func rangeTip(revRange string) string {
	var tip string
	if i := strings.Index(revRange, "..."); i >= 0 {
		tip = revRange[i+3:]
	} else if i := strings.Index(revRange, ".."); i >= 0 {
		tip = revRange[i+2:]
	} else {
		return ""
	}
	if tip == "" {
		return "HEAD"
	}
	return tip
}

// parseNumstat parses `git diff --numstat -z` output. Binary files report
// "-" for both counts, which are read as zero.
func parseNumstat(out string) []scan.FileRef {
	var refs []scan.FileRef
	for _, rec := range strings.Split(out, "\x00") {
		rec = strings.TrimLeft(rec, "\n")
		if rec == "" {
			continue
		}
		parts := strings.SplitN(rec, "\t", 3)
		if len(parts) != 3 || parts[2] == "" {
			continue
		}
		add, _ := strconv.Atoi(parts[0])
		del, _ := strconv.Atoi(parts[1])
		refs = append(refs, scan.FileRef{
			Filename:  parts[2],
			Status:    "changed",
			Additions: add,
			Deletions: del,
		})
	}
	return refs
}

func parseLsFiles(out string) []scan.FileRef {
	var refs []scan.FileRef
	for _, name := range strings.Split(out, "\x00") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		refs = append(refs, scan.FileRef{Filename: name, Status: "tracked"})
	}
	return refs
}

func (s *Source) git(ctx context.Context, args ...string) (string, error) {
	out, err := s.gitBytes(ctx, args...)
	return string(out), err
}

func (s *Source) gitBytes(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.meta.Root
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return out, fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return out, nil
}
