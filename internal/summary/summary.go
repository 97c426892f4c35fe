// Package summary generates per-chunk partial summaries of an oversized diff
// concurrently and merges them back into one compact diff-like text. Requests
// fan out one per chunk; the first failure cancels in-flight siblings and
// aborts the run. The merged output preserves original chunk order regardless
// of completion order.
package summary

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"autocommit/internal/diff"
	"autocommit/internal/llm"
)

// Generator is the single generation capability the pipeline depends on.
// *llm.Client implements it; tests substitute fakes.
type Generator interface {
	Complete(ctx context.Context, prompt string, opts *llm.CompleteOptions) (*llm.Completion, error)
}

// Partial is one chunk's summary, correlated to the chunk's filename.
type Partial struct {
	Filename string
	Summary  string
}

// partialMaxTokens caps each partial summary; 1–2 sentences never need more.
const partialMaxTokens = 200

// partialPromptFormat scopes the model to one chunk. The summary must not
// reference line numbers or filenames so the reduced diff stays compact.
const partialPromptFormat = `Summarize in one or two sentences the reasoning behind the changes in the following partial git diff. Answer in %s. Do not reference line numbers or file names.

%s`

// PartialPrompt formats the scoped prompt for one chunk in the given output
// language.
func PartialPrompt(chunk diff.Chunk, language string) string {
	return fmt.Sprintf(partialPromptFormat, language, chunk.Content)
}

// PromptOverhead returns the partial prompt text surrounding an empty chunk,
// so callers can budget chunk content against the full wrapped prompt.
func PromptOverhead(language string) string {
	return PartialPrompt(diff.Chunk{}, language)
}

// Summarize requests one partial summary per chunk, all concurrently. opts
// sets the model and temperature; the per-request token cap is fixed. The
// returned slice is in chunk order. Any request error cancels the remaining
// requests and is returned as-is; no partial results survive a failure.
func Summarize(ctx context.Context, gen Generator, opts *llm.CompleteOptions, language string, chunks []diff.Chunk) ([]Partial, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	results := make([]Partial, len(chunks))
	g, ctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			requestOpts := llm.CompleteOptions{
				Model:       opts.Model,
				Temperature: opts.Temperature,
				MaxTokens:   partialMaxTokens,
			}
			completion, err := gen.Complete(ctx, PartialPrompt(chunk, language), &requestOpts)
			if err != nil {
				return fmt.Errorf("summarize %s: %w", chunk.Filename, err)
			}
			results[i] = Partial{
				Filename: chunk.Filename,
				Summary:  strings.TrimSpace(completion.Text),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Reduce merges ordered partial summaries into a single synthetic diff-like
// text: one "diff --git <filename>" block per partial, joined by a blank
// line. Pure function; reducing the same input always yields the same text.
func Reduce(partials []Partial) string {
	blocks := make([]string, 0, len(partials))
	for _, p := range partials {
		blocks = append(blocks, fmt.Sprintf("diff --git %s\n%s", p.Filename, p.Summary))
	}
	return strings.Join(blocks, "\n\n")
}
