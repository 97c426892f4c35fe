// Package tokens provides token estimation and context-window budgeting for
// generation requests. Estimation uses a byte-based chars/4 heuristic;
// model-specific estimators can be added later.
package tokens

import (
	"errors"
	"fmt"
)

// charsPerToken is the divisor for the simple byte-based estimator
// (roughly 4 bytes per token for typical English/code).
const charsPerToken = 4

// DefaultResponseTokens is the default allowance reserved for the model's
// response when computing the prompt budget.
const DefaultResponseTokens = 500

// ErrUnknownModel indicates the model name has no known context-window size.
// This is a configuration error; it is never retried.
var ErrUnknownModel = errors.New("unknown model")

// contextWindows maps model names to their total context size in tokens.
var contextWindows = map[string]int{
	"gpt-4o":            128000,
	"gpt-4o-mini":       128000,
	"gpt-4-turbo":       128000,
	"gpt-4":             8192,
	"gpt-4-32k":         32768,
	"gpt-3.5-turbo":     4096,
	"gpt-3.5-turbo-16k": 16384,
}

// Estimate returns an estimated token count for the given text.
// It uses a simple heuristic: (len(text)+3)/4 (bytes), so 0–3 bytes map to
// 1 token, 4–7 to 2, etc. Empty string returns 0. This is byte-based to
// align with typical tokenizer behavior.
func Estimate(text string) int {
	n := len(text)
	if n == 0 {
		return 0
	}
	return (n + charsPerToken - 1) / charsPerToken
}

// Bytes returns the number of bytes the estimator maps to n tokens. Used to
// convert a token budget into a byte bound for size-driven splitting.
func Bytes(n int) int {
	if n <= 0 {
		return 0
	}
	return n * charsPerToken
}

// ContextWindow returns the total context size in tokens for the given model.
// Unknown models return ErrUnknownModel (wrapped with the model name).
func ContextWindow(model string) (int, error) {
	size, ok := contextWindows[model]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	return size, nil
}

// Available returns the prompt budget for model: its context window minus
// the tokens reserved for the response. A reserve that consumes the whole
// window is a configuration error.
func Available(model string, reservedForResponse int) (int, error) {
	window, err := ContextWindow(model)
	if err != nil {
		return 0, err
	}
	if reservedForResponse < 0 {
		reservedForResponse = 0
	}
	budget := window - reservedForResponse
	if budget <= 0 {
		return 0, fmt.Errorf("response reserve %d leaves no prompt budget for model %q (context %d)",
			reservedForResponse, model, window)
	}
	return budget, nil
}

// Fits reports whether text's estimated token count is within budget.
func Fits(text string, budget int) bool {
	return Estimate(text) <= budget
}
