// Package diff retrieves the staged changeset from git and splits oversized
// diffs into size-bounded, per-file chunks for partial summarization.
//
// # Staged changes
// Only changes added to the index are considered; the working tree is out of
// scope. An empty staged diff is reported as ErrNoChanges before any remote
// call is made.
//
// # Exclusions
// Exclusion patterns are passed to git as :(exclude) pathspecs, so lockfiles
// and generated artifacts never reach the prompt at all.
package diff

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// ErrNoChanges indicates the index holds no staged changes to describe.
var ErrNoChanges = errors.New("no staged changes")

// Staged returns the staged changeset of the repository at repoRoot as
// unified-diff text. filter, when non-empty, is passed as --diff-filter
// (e.g. "ACMRT" to skip deletions). excludes are :(exclude) pathspec
// patterns. Empty output after trimming returns ErrNoChanges.
func Staged(ctx context.Context, repoRoot, filter string, excludes []string) (string, error) {
	args := stagedArgs(filter, excludes)
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoRoot
	cmd.Env = minimalEnv()
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git diff --staged: %w: %s", err, strings.TrimSpace(string(out)))
	}
	if strings.TrimSpace(string(out)) == "" {
		return "", ErrNoChanges
	}
	return string(out), nil
}

// stagedArgs builds the git argv (without the leading "git") for Staged.
func stagedArgs(filter string, excludes []string) []string {
	args := []string{"diff", "--staged", "--no-color", "--no-ext-diff"}
	if filter != "" {
		args = append(args, "--diff-filter="+filter)
	}
	if len(excludes) > 0 {
		args = append(args, "--", ".")
		for _, pattern := range excludes {
			if pattern == "" {
				continue
			}
			args = append(args, ":(exclude)"+pattern)
		}
	}
	return args
}

func minimalEnv() []string {
	return []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
		"GIT_TERMINAL_PROMPT=0",
	}
}

// Stats summarizes a changeset for progress reporting.
type Stats struct {
	Files   int
	Added   int
	Deleted int
}

// Stat parses raw unified-diff text and counts files and added/deleted
// lines. Binary files count toward Files but contribute no line counts.
func Stat(raw string) (Stats, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return Stats{}, fmt.Errorf("parse diff: %w", err)
	}
	var st Stats
	st.Files = len(files)
	for _, f := range files {
		for _, frag := range f.TextFragments {
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					st.Added++
				case gitdiff.OpDelete:
					st.Deleted++
				}
			}
		}
	}
	return st, nil
}
