// Package message turns a staged diff into a single-line commit message via
// the generation service. Diffs that fit the model's prompt budget are sent
// directly; oversized diffs are segmented, summarized per chunk, reduced to a
// compact synthetic diff, and regenerated from that. All failures are
// returned as tagged errkind errors; nothing here exits the process.
package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"autocommit/internal/diff"
	"autocommit/internal/errkind"
	"autocommit/internal/llm"
	"autocommit/internal/summary"
	"autocommit/internal/tokens"
)

// MaxLength caps the commit message so it stays usable as a single command
// argument.
const MaxLength = 100

const truncationMarker = "\n[truncated]"

// promptFormat is the final-message prompt. The diff may be raw or the
// reduced per-chunk summary text.
const promptFormat = `Suggest one concise git commit message describing the following git diff. Use the imperative mood. Answer in %s with a single line of plain text: no quotes, no code blocks, no explanation.

%s`

// Options configures one synthesis run. All fields are read-only for the
// duration of the run.
type Options struct {
	Model          string
	Language       string
	ResponseTokens int
	Temperature    float64
}

// buildPrompt formats the final-generation prompt for diffText.
func buildPrompt(language, diffText string) string {
	return fmt.Sprintf(promptFormat, language, diffText)
}

// Synthesize produces the commit message for rawDiff. Within budget the
// prompt is sent as-is; over budget the diff is segmented, each chunk is
// summarized concurrently, and the reduced text replaces the diff in a fresh
// prompt. The reduced prompt is re-checked against the same budget and
// hard-truncated with a marker if model summaries were too verbose to fit.
func Synthesize(ctx context.Context, gen summary.Generator, opts Options, rawDiff string) (string, error) {
	reserved := opts.ResponseTokens
	if reserved <= 0 {
		reserved = tokens.DefaultResponseTokens
	}
	budget, err := tokens.Available(opts.Model, reserved)
	if err != nil {
		msg := "The response reserve leaves no room for a prompt."
		if errors.Is(err, tokens.ErrUnknownModel) {
			msg = "Unknown or unsupported model."
		}
		return "", errkind.New(errkind.Precondition, msg, err)
	}

	prompt := buildPrompt(opts.Language, rawDiff)
	if !tokens.Fits(prompt, budget) {
		prompt, err = chunkedPrompt(ctx, gen, opts, rawDiff, budget)
		if err != nil {
			return "", err
		}
	}

	completion, err := gen.Complete(ctx, prompt, &llm.CompleteOptions{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   reserved,
	})
	if err != nil {
		return "", errkind.New(errkind.Remote, "The generation service failed.", err)
	}
	return Extract(completion.Text)
}

// chunkedPrompt runs the segment → summarize → reduce path and returns a
// fresh prompt built from the reduced diff, guaranteed to fit budget.
func chunkedPrompt(ctx context.Context, gen summary.Generator, opts Options, rawDiff string, budget int) (string, error) {
	overhead := tokens.Estimate(summary.PromptOverhead(opts.Language))
	contentBudget := budget - overhead
	if contentBudget <= 0 {
		return "", errkind.New(errkind.Precondition,
			"Model context is too small to summarize the diff in chunks.", nil)
	}
	chunks := diff.Segment(rawDiff, contentBudget)
	if len(chunks) == 0 {
		return "", errkind.New(errkind.Precondition, "No summarizable content in the staged diff.", nil)
	}
	partials, err := summary.Summarize(ctx, gen, &llm.CompleteOptions{
		Model:       opts.Model,
		Temperature: opts.Temperature,
	}, opts.Language, chunks)
	if err != nil {
		return "", errkind.New(errkind.Remote, "The generation service failed while summarizing the diff.", err)
	}
	reduced := summary.Reduce(partials)

	prompt := buildPrompt(opts.Language, reduced)
	if tokens.Fits(prompt, budget) {
		return prompt, nil
	}
	// Summaries were verbose enough to overflow the original budget; cut the
	// reduced text down rather than recursing.
	scaffold := tokens.Estimate(buildPrompt(opts.Language, ""))
	allowed := budget - scaffold - tokens.Estimate(truncationMarker)
	if allowed <= 0 {
		return "", errkind.New(errkind.Precondition,
			"Model context is too small to hold the reduced diff.", nil)
	}
	maxBytes := tokens.Bytes(allowed)
	if maxBytes < len(reduced) {
		reduced = truncateBytes(reduced, maxBytes) + truncationMarker
	}
	return buildPrompt(opts.Language, reduced), nil
}

// truncateBytes cuts s down to at most maxBytes bytes, backing off to the
// previous rune boundary so summaries in multibyte scripts never yield
// invalid UTF-8.
func truncateBytes(s string, maxBytes int) string {
	if maxBytes >= len(s) {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Extract takes the first line of generated text as the commit message. A
// first line that parses entirely as a JSON object with an "error" member is
// a service error surfaced to the user; plain text (including non-JSON
// braces) passes through. Wrapping quotes and backticks are stripped and the
// result is capped at MaxLength characters.
func Extract(output string) (string, error) {
	line := output
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errkind.New(errkind.Service, "The generation service returned an empty message.", nil)
	}
	if detail, ok := errorPayload(line); ok {
		return "", errkind.New(errkind.Service, "The generation service returned an error: "+detail, nil)
	}
	line = strings.Trim(line, "\"'`")
	line = strings.TrimSpace(line)
	runes := []rune(line)
	if len(runes) > MaxLength {
		line = string(runes[:MaxLength])
	}
	return line, nil
}

// errorPayload reports whether line is a structured error object and, if so,
// its error text. The "error" member may itself be a string or an object.
func errorPayload(line string) (string, bool) {
	if !strings.HasPrefix(line, "{") {
		return "", false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return "", false
	}
	raw, ok := obj["error"]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), true
}
