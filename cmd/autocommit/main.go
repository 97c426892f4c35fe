// Command autocommit generates a git commit message for the staged changes
// using a remote text-generation service, prints it, and optionally performs
// the commit.
package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"autocommit/internal/config"
	"autocommit/internal/diff"
	"autocommit/internal/errkind"
	"autocommit/internal/git"
	"autocommit/internal/llm"
	"autocommit/internal/logger"
	"autocommit/internal/message"
	"autocommit/internal/version"
)

// errExit is an error that carries an exit code for the CLI. Use errors.As
// to detect it.
type errExit int

func (e errExit) Error() string {
	return "exit " + strconv.Itoa(int(e))
}

// messageOut is the writer for the generated commit message. Tests may
// replace it to capture output.
var messageOut io.Writer = os.Stdout

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		var exitErr errExit
		if errors.As(err, &exitErr) {
			return int(exitErr)
		}
		fmt.Fprintln(os.Stderr, err)
		if u := errors.Unwrap(err); u != nil {
			fmt.Fprintf(os.Stderr, "Details: %v\n", u)
		}
		return exitCodeFor(err)
	}
	return 0
}

// exitCodeFor maps an error to the process exit code: remote and service
// failures use 2 so scripts can tell them from local precondition errors.
func exitCodeFor(err error) int {
	if kind, ok := errkind.KindOf(err); ok {
		switch kind {
		case errkind.Remote, errkind.Service:
			return 2
		}
	}
	return 1
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autocommit",
		Short: "Generate a commit message for staged changes with an LLM",
		Long: `Generate a single-line commit message for the staged changes and print it
to stdout. With --auto-commit the message is committed directly.

Exit codes:
  0  message generated (and committed, if requested)
  1  precondition failure: not a git repository, nothing staged, missing
     API token, unknown model
  2  the generation service was unreachable, rejected the request, or
     returned an unusable reply`,
		Version: version.String(),
		RunE:    runGenerate,
	}
	cmd.Flags().String("model", "", "Generation model name (overrides config)")
	cmd.Flags().String("language", "", "Output language for the message (overrides config)")
	cmd.Flags().String("endpoint", "", "Generation API root (overrides config)")
	cmd.Flags().Int("response-tokens", 0, "Tokens reserved for the model response (overrides config)")
	cmd.Flags().String("diff-filter", "", "git --diff-filter value, e.g. ACMRT (overrides config)")
	cmd.Flags().StringSlice("exclude", nil, "Pathspec patterns to exclude from the diff (overrides config)")
	cmd.Flags().BoolP("auto-commit", "a", false, "Commit with the generated message")
	cmd.Flags().BoolP("edit", "e", false, "Open the editor on the commit afterwards (implies --auto-commit behavior only when committing)")
	cmd.Flags().BoolP("quiet", "q", false, "Suppress progress output")
	cmd.Flags().BoolP("verbose", "v", false, "Print diagnostic output")
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd
}

// overridesFromFlags returns config overrides for every flag the user set.
func overridesFromFlags(cmd *cobra.Command) *config.Overrides {
	o := &config.Overrides{}
	changed := false
	if cmd.Flags().Changed("model") {
		v, _ := cmd.Flags().GetString("model")
		o.Model = &v
		changed = true
	}
	if cmd.Flags().Changed("language") {
		v, _ := cmd.Flags().GetString("language")
		o.Language = &v
		changed = true
	}
	if cmd.Flags().Changed("endpoint") {
		v, _ := cmd.Flags().GetString("endpoint")
		o.Endpoint = &v
		changed = true
	}
	if cmd.Flags().Changed("response-tokens") {
		v, _ := cmd.Flags().GetInt("response-tokens")
		o.ResponseTokens = &v
		changed = true
	}
	if cmd.Flags().Changed("diff-filter") {
		v, _ := cmd.Flags().GetString("diff-filter")
		o.DiffFilter = &v
		changed = true
	}
	if cmd.Flags().Changed("exclude") {
		v, _ := cmd.Flags().GetStringSlice("exclude")
		o.ExcludePatterns = &v
		changed = true
	}
	if cmd.Flags().Changed("auto-commit") {
		v, _ := cmd.Flags().GetBool("auto-commit")
		o.AutoCommit = &v
		changed = true
	}
	if cmd.Flags().Changed("edit") {
		v, _ := cmd.Flags().GetBool("edit")
		o.EditAfterCommit = &v
		changed = true
	}
	if !changed {
		return nil
	}
	return o
}

func runGenerate(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool("verbose")
	log := logger.New(nil, quiet, verbose)

	cwd, err := os.Getwd()
	if err != nil {
		return errkind.New(errkind.Precondition, "Could not determine current directory.", err)
	}
	repoRoot, err := git.RepoRoot(cwd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(config.LoadOptions{RepoRoot: repoRoot, Overrides: overridesFromFlags(cmd)})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	raw, err := diff.Staged(cmd.Context(), repoRoot, cfg.DiffFilter, cfg.ExcludePatterns)
	if err != nil {
		if errors.Is(err, diff.ErrNoChanges) {
			return errkind.New(errkind.Precondition,
				"No detectable changes staged for commit. Stage changes with git add first.", err)
		}
		return errkind.New(errkind.Precondition, "Could not read the staged diff.", err)
	}
	if st, statErr := diff.Stat(raw); statErr == nil {
		log.Info().
			Int("files", st.Files).
			Int("added", st.Added).
			Int("deleted", st.Deleted).
			Msg("staged changes")
	} else {
		log.Debug().Err(statErr).Msg("could not compute diff stats")
	}

	client := llm.NewClient(cfg.Endpoint, cfg.APIToken, &http.Client{Timeout: cfg.Timeout})
	log.Info().Str("model", cfg.Model).Msg("generating commit message")
	msg, err := message.Synthesize(cmd.Context(), client, message.Options{
		Model:          cfg.Model,
		Language:       cfg.Language,
		ResponseTokens: cfg.ResponseTokens,
		Temperature:    cfg.Temperature,
	}, raw)
	if err != nil {
		return err
	}

	fmt.Fprintln(messageOut, msg)

	if !cfg.AutoCommit {
		log.Info().Msg("auto-commit disabled; review the message and commit manually")
		return nil
	}
	if err := git.Commit(cmd.Context(), repoRoot, msg); err != nil {
		return err
	}
	log.Info().Msg("changes committed")
	if cfg.EditAfterCommit {
		return git.AmendEdit(cmd.Context(), repoRoot)
	}
	return nil
}
