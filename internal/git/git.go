// Package git provides repository discovery and the commit sink. The commit
// message is passed as a single argv element, so no shell escaping is
// involved; length limiting happens upstream.
package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"autocommit/internal/errkind"
)

// RepoRoot returns the absolute path of the git repository root containing
// dir. Runs "git rev-parse --show-toplevel" with Dir=dir. Not being inside a
// repository is a precondition error.
func RepoRoot(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	cmd.Env = minimalEnv()
	out, err := cmd.Output()
	if err != nil {
		return "", errkind.New(errkind.Precondition, "This directory is not inside a Git repository.", err)
	}
	root := strings.TrimSpace(string(out))
	return filepath.Abs(root)
}

// Commit records the staged changes with message. The caller is responsible
// for keeping message to a single capped line.
func Commit(ctx context.Context, repoRoot, message string) error {
	cmd := exec.CommandContext(ctx, "git", "commit", "-m", message)
	cmd.Dir = repoRoot
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errkind.New(errkind.Precondition, "Could not create the commit.",
			fmt.Errorf("git commit: %w: %s", err, strings.TrimSpace(string(out))))
	}
	return nil
}

// AmendEdit opens the user's editor on the commit just created, via
// "git commit --amend" with inherited stdio.
func AmendEdit(ctx context.Context, repoRoot string) error {
	cmd := exec.CommandContext(ctx, "git", "commit", "--amend")
	cmd.Dir = repoRoot
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errkind.New(errkind.Precondition, "Could not amend the commit.", err)
	}
	return nil
}

func minimalEnv() []string {
	return []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
		"GIT_TERMINAL_PROMPT=0",
	}
}
