package diff

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestStagedArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filter   string
		excludes []string
		want     []string
	}{
		{
			name: "no_filter_no_excludes",
			want: []string{"diff", "--staged", "--no-color", "--no-ext-diff"},
		},
		{
			name:   "filter_only",
			filter: "ACMRT",
			want:   []string{"diff", "--staged", "--no-color", "--no-ext-diff", "--diff-filter=ACMRT"},
		},
		{
			name:     "excludes_become_pathspecs",
			excludes: []string{"package-lock.json", "*.lock"},
			want: []string{
				"diff", "--staged", "--no-color", "--no-ext-diff",
				"--", ".", ":(exclude)package-lock.json", ":(exclude)*.lock",
			},
		},
		{
			name:     "empty_exclude_entries_skipped",
			excludes: []string{"", "go.sum"},
			want: []string{
				"diff", "--staged", "--no-color", "--no-ext-diff",
				"--", ".", ":(exclude)go.sum",
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := stagedArgs(tt.filter, tt.excludes)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("stagedArgs(%q, %v) = %v, want %v", tt.filter, tt.excludes, got, tt.want)
			}
		})
	}
}

func TestStat(t *testing.T) {
	t.Parallel()

	raw := `diff --git a/foo.txt b/foo.txt
index e69de29..4b825dc 100644
--- a/foo.txt
+++ b/foo.txt
@@ -1,2 +1,2 @@
-old line
+new line
 context
`
	st, err := Stat(raw)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st.Files != 1 || st.Added != 1 || st.Deleted != 1 {
		t.Errorf("Stat = %+v, want Files=1 Added=1 Deleted=1", st)
	}
}

func TestStat_invalidDiff(t *testing.T) {
	t.Parallel()

	// Fragment header declares five lines but the body is truncated.
	truncated := `diff --git a/x.txt b/x.txt
--- a/x.txt
+++ b/x.txt
@@ -1,5 +1,5 @@
 one
`
	if _, err := Stat(truncated); err == nil {
		t.Error("Stat of truncated fragment: want error, got nil")
	}
}

// initTestRepo creates a git repository with local identity configured and
// returns its path. Skips the test when git is not installed.
func initTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v: %s", args, err, out)
		}
	}
	return dir
}

func TestStaged(t *testing.T) {
	t.Parallel()
	dir := initTestRepo(t)
	ctx := context.Background()

	// Empty index: no changes.
	_, err := Staged(ctx, dir, "", nil)
	if !errors.Is(err, ErrNoChanges) {
		t.Fatalf("Staged on empty index: err = %v, want ErrNoChanges", err)
	}

	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	add := exec.Command("git", "add", "hello.txt")
	add.Dir = dir
	if out, err := add.CombinedOutput(); err != nil {
		t.Fatalf("git add: %v: %s", err, out)
	}

	raw, err := Staged(ctx, dir, "", nil)
	if err != nil {
		t.Fatalf("Staged: %v", err)
	}
	if !strings.Contains(raw, "hello.txt") || !strings.Contains(raw, "+hello") {
		t.Errorf("Staged output missing expected content:\n%s", raw)
	}

	// Excluding the only staged file leaves no changes.
	_, err = Staged(ctx, dir, "", []string{"hello.txt"})
	if !errors.Is(err, ErrNoChanges) {
		t.Errorf("Staged with excluding pathspec: err = %v, want ErrNoChanges", err)
	}
}
